package github

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v71/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prtrack/internal/domain"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func ghTime(t time.Time) *gh.Timestamp { return &gh.Timestamp{Time: t} }

func TestMapPullRequest(t *testing.T) {
	created := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)

	pr := &gh.PullRequest{
		Number:    intPtr(7),
		User:      &gh.User{Login: strPtr("alice")},
		Draft:     func() *bool { b := true; return &b }(),
		CreatedAt: ghTime(created),
		UpdatedAt: ghTime(updated),
		Head: &gh.PullRequestBranch{
			Repo: &gh.Repository{FullName: strPtr("xlsynth/xlsynth")},
		},
	}

	got := mapPullRequest(pr)

	assert.Equal(t, 7, got.Number)
	assert.Equal(t, "alice", got.Author)
	assert.Equal(t, "xlsynth/xlsynth", got.HeadRepo)
	assert.True(t, got.Draft)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, created.Equal(*got.CreatedAt))
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, updated.Equal(*got.UpdatedAt))
	assert.Nil(t, got.ClosedAt)
}

func TestMapTimelineEvent(t *testing.T) {
	when := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	got := mapTimelineEvent(&gh.Timeline{
		Event:     strPtr("labeled"),
		Actor:     &gh.User{Login: strPtr("bob")},
		CreatedAt: ghTime(when),
		Label:     &gh.Label{Name: strPtr("reviewing internally")},
	})

	assert.Equal(t, domain.KindLabeled, got.Kind)
	assert.Equal(t, "bob", got.Actor)
	assert.Equal(t, "reviewing internally", got.Label)
	require.NotNil(t, got.Timestamp)
	assert.True(t, when.Equal(*got.Timestamp))
}

func TestMapTimelineEvent_ReviewedFallsBackToSubmittedAt(t *testing.T) {
	when := time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)

	got := mapTimelineEvent(&gh.Timeline{
		Event:       strPtr("reviewed"),
		Actor:       &gh.User{Login: strPtr("rev")},
		SubmittedAt: ghTime(when),
		State:       strPtr("APPROVED"),
	})

	assert.Equal(t, domain.KindReviewSubmitted, got.Kind)
	require.NotNil(t, got.Timestamp)
	assert.True(t, when.Equal(*got.Timestamp))
	assert.True(t, got.IsApproval())
}

func TestMapTimelineEvent_UnknownKind(t *testing.T) {
	got := mapTimelineEvent(&gh.Timeline{Event: strPtr("cross-referenced")})

	assert.Equal(t, domain.KindUnknown, got.Kind)
}

func TestMapReview_LowercasesState(t *testing.T) {
	when := time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)

	got := mapReview(&gh.PullRequestReview{
		User:        &gh.User{Login: strPtr("rev")},
		State:       strPtr("APPROVED"),
		SubmittedAt: ghTime(when),
	})

	assert.Equal(t, domain.KindReviewSubmitted, got.Kind)
	assert.Equal(t, "approved", got.ReviewState)
	assert.True(t, got.IsApproval())
}

func TestMapCommit(t *testing.T) {
	when := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		commit    *gh.Commit
		wantActor string
	}{
		{
			name: "author identity preferred",
			commit: &gh.Commit{
				Author:    &gh.CommitAuthor{Name: strPtr("Alice A"), Date: ghTime(when)},
				Committer: &gh.CommitAuthor{Name: strPtr("GitHub"), Date: ghTime(when.Add(time.Minute))},
			},
			wantActor: "Alice A",
		},
		{
			name: "committer fallback",
			commit: &gh.Commit{
				Committer: &gh.CommitAuthor{Name: strPtr("GitHub"), Date: ghTime(when)},
			},
			wantActor: "GitHub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapCommit(&gh.RepositoryCommit{Commit: tt.commit})

			assert.Equal(t, domain.KindCommitted, got.Kind)
			assert.Equal(t, tt.wantActor, got.Actor)
			require.NotNil(t, got.Timestamp)
		})
	}
}
