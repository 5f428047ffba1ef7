package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prtrack/internal/domain"
)

func TestCountsByMonth(t *testing.T) {
	records := []domain.Record{
		{Number: 1, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-01-05T10:00:00Z")},
		{Number: 2, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-01-20T10:00:00Z")},
		{Number: 3, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-02-01T10:00:00Z")},
		{Number: 4, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-02-10T10:00:00Z")},
		{Number: 5, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-02-28T10:00:00Z")},
		{Number: 6, HeadRepo: "google/xls", CreatedAt: created(t, "2023-02-15T10:00:00Z")},
		{Number: 7, HeadRepo: "xlsynth/xlsynth"}, // no creation time
	}

	months, counts := CountsByMonth(records, "xlsynth/xlsynth")

	assert.Equal(t, []string{"2023-01", "2023-02"}, months)
	assert.Equal(t, []int{2, 3}, counts)
}

func TestCountsByMonth_Empty(t *testing.T) {
	months, counts := CountsByMonth(nil, "xlsynth/xlsynth")

	assert.Empty(t, months)
	assert.Empty(t, counts)
}

func TestSaveCountsPlot_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.png")
	records := []domain.Record{
		{Number: 1, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-01-05T10:00:00Z")},
		{Number: 2, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-02-01T10:00:00Z")},
	}

	err := SaveCountsPlot(records, "xlsynth/xlsynth", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), path)

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSaveCountsPlot_ErrorsOnEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.png")

	err := SaveCountsPlot(nil, "xlsynth/xlsynth", time.Now(), path)

	assert.Error(t, err)
}

func TestSaveDelaysPlot_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delays.png")
	records := []domain.Record{
		{
			Number:                1,
			HeadRepo:              "xlsynth/xlsynth",
			CreatedAt:             created(t, "2023-01-05T10:00:00Z"),
			ReviewRequestedAt:     created(t, "2023-01-05T12:00:00Z"),
			ReviewingInternallyAt: created(t, "2023-01-06T10:00:00Z"),
			ClosedAt:              created(t, "2023-01-07T10:00:00Z"),
		},
		{
			Number:            2,
			HeadRepo:          "xlsynth/xlsynth",
			CreatedAt:         created(t, "2023-01-08T10:00:00Z"),
			ReviewRequestedAt: created(t, "2023-01-08T18:00:00Z"),
		},
	}

	err := SaveDelaysPlot(records, "xlsynth/xlsynth", path)

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSaveDelaysPlot_ErrorsWithoutMeasurableDelays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delays.png")
	records := []domain.Record{
		{Number: 1, HeadRepo: "xlsynth/xlsynth", CreatedAt: created(t, "2023-01-05T10:00:00Z")},
	}

	err := SaveDelaysPlot(records, "xlsynth/xlsynth", path)

	assert.Error(t, err)
}
