package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prtrack/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "pr_data.csv"), filepath.Join(dir, "pr_data_meta.json"), zap.NewNop().Sugar())
}

func utc(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	parsed = parsed.UTC()
	return &parsed
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	records := []domain.Record{
		{
			Number:                200,
			HeadRepo:              "xlsynth/xlsynth",
			Author:                "alice",
			CreatedAt:             utc(t, "2026-01-03T08:00:00Z"),
			ReviewRequestedAt:     utc(t, "2026-01-03T09:00:00Z"),
			ReviewingInternallyAt: utc(t, "2026-01-03T10:00:00Z"),
			ClosedAt:              utc(t, "2026-01-05T10:00:00Z"),
			UpdatedAt:             utc(t, "2026-01-05T10:00:00Z"),
			LastRelevantActor:     "bob",
			LastRelevantAt:        utc(t, "2026-01-05T09:00:00Z"),
			IsForeignTurn:         boolPtr(true),
			LatencyHours:          floatPtr(25.5),
		},
		{
			Number:   150,
			HeadRepo: "xlsynth/xlsynth",
			Author:   "carol",
			IsDraft:  true,
			// Optional columns stay unset for a PR with no review yet.
		},
	}

	require.NoError(t, store.Save(context.Background(), records))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Save orders by PR number regardless of input order.
	assert.Equal(t, 150, loaded[0].Number)
	assert.Equal(t, records[1], loaded[0])
	assert.Equal(t, records[0], loaded[1])
}

func TestStore_LoadSkipsRowsWithUnexpectedBooleans(t *testing.T) {
	store := newTestStore(t)
	content := "pr_number,head_repo,author,created_at,review_requested_at,reviewing_internally_at,closed_at,is_draft,pr_updated_at,last_relevant_actor,last_relevant_at,is_foreign_turn,latency_hours\n" +
		"1,repo,alice,,,,,false,,,,maybe,\n" +
		"2,repo,bob,,,,,false,,,,yes,\n"
	require.NoError(t, os.WriteFile(store.path, []byte(content), 0o644))

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Number)
	require.NotNil(t, records[0].IsForeignTurn)
	assert.True(t, *records[0].IsForeignTurn)
}

func TestStore_LoadLegacyBooleanSpellings(t *testing.T) {
	tests := []struct {
		raw  string
		want *bool
	}{
		{raw: "", want: nil},
		{raw: "none", want: nil},
		{raw: "True", want: boolPtr(true)},
		{raw: "1", want: boolPtr(true)},
		{raw: "n", want: boolPtr(false)},
		{raw: "0", want: boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			got, err := parseOptionalBool(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_ParseOptionalBoolRejectsGarbage(t *testing.T) {
	_, err := parseOptionalBool("maybe")

	assert.ErrorIs(t, err, domain.ErrBadBoolean)
}

func TestStore_ScrapeMetaRoundtrip(t *testing.T) {
	store := newTestStore(t)

	missing, err := store.LastScrape(context.Background())
	require.NoError(t, err)
	assert.Nil(t, missing)

	when := time.Date(2026, 2, 1, 17, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastScrape(context.Background(), when))

	got, err := store.LastScrape(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, when.Equal(*got))
}
