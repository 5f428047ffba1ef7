package github

import (
	"strings"
	"time"

	gh "github.com/google/go-github/v71/github"

	"prtrack/internal/domain"
)

func mapPullRequest(pr *gh.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Number:    pr.GetNumber(),
		Author:    pr.GetUser().GetLogin(),
		HeadRepo:  pr.GetHead().GetRepo().GetFullName(),
		Draft:     pr.GetDraft(),
		CreatedAt: tsPtr(pr.CreatedAt),
		UpdatedAt: tsPtr(pr.UpdatedAt),
		ClosedAt:  tsPtr(pr.ClosedAt),
	}
}

func mapTimelineEvent(ev *gh.Timeline) domain.Event {
	// Reviewed timeline entries carry submitted_at, not created_at.
	ts := tsPtr(ev.CreatedAt)
	if ts == nil {
		ts = tsPtr(ev.SubmittedAt)
	}
	return domain.Event{
		Kind:        timelineKind(ev.GetEvent()),
		Timestamp:   ts,
		Actor:       ev.GetActor().GetLogin(),
		Label:       ev.GetLabel().GetName(),
		ReviewState: strings.ToLower(ev.GetState()),
	}
}

func timelineKind(event string) domain.EventKind {
	switch event {
	case "review_requested":
		return domain.KindReviewRequested
	case "review_request_removed":
		return domain.KindReviewRequestRemoved
	case "reviewed":
		return domain.KindReviewSubmitted
	case "commented":
		return domain.KindCommented
	case "committed":
		return domain.KindCommitted
	case "labeled":
		return domain.KindLabeled
	case "unlabeled":
		return domain.KindUnlabeled
	case "ready_for_review":
		return domain.KindReadyForReview
	case "convert_to_draft":
		return domain.KindConvertedToDraft
	case "closed":
		return domain.KindClosed
	case "reopened":
		return domain.KindReopened
	case "head_ref_force_pushed":
		return domain.KindHeadRefForcePushed
	default:
		return domain.KindUnknown
	}
}

func mapReview(r *gh.PullRequestReview) domain.Event {
	return domain.Event{
		Kind:        domain.KindReviewSubmitted,
		Timestamp:   tsPtr(r.SubmittedAt),
		Actor:       r.GetUser().GetLogin(),
		ReviewState: strings.ToLower(r.GetState()),
	}
}

// mapCommit resolves the actor from the git author or committer
// identity. Raw commits carry no platform-level acting user, so the
// login-shaped Actor field holds a git display name here; the turn-state
// machine treats commits as acknowledgments regardless of actor.
func mapCommit(rc *gh.RepositoryCommit) domain.Event {
	commit := rc.GetCommit()

	actor := commit.GetAuthor().GetName()
	if actor == "" {
		actor = commit.GetCommitter().GetName()
	}

	var ts *time.Time
	if a := commit.GetAuthor(); a != nil && a.Date != nil {
		t := a.Date.Time.UTC()
		ts = &t
	} else if cm := commit.GetCommitter(); cm != nil && cm.Date != nil {
		t := cm.Date.Time.UTC()
		ts = &t
	}

	return domain.Event{
		Kind:      domain.KindCommitted,
		Timestamp: ts,
		Actor:     actor,
	}
}

func tsPtr(ts *gh.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}
