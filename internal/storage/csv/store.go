// Package csv persists derived PR records to a flat CSV file keyed by
// PR number, with a JSON sidecar for scrape metadata.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"prtrack/internal/domain"
)

var header = []string{
	"pr_number",
	"head_repo",
	"author",
	"created_at",
	"review_requested_at",
	"reviewing_internally_at",
	"closed_at",
	"is_draft",
	"pr_updated_at",
	"last_relevant_actor",
	"last_relevant_at",
	"is_foreign_turn",
	"latency_hours",
}

type Store struct {
	path     string
	metaPath string
	log      *zap.SugaredLogger
}

func NewStore(path, metaPath string, log *zap.SugaredLogger) *Store {
	return &Store{path: path, metaPath: metaPath, log: log}
}

// Load reads all records. A missing file is an empty store, not an
// error. Rows with unexpected boolean encodings are skipped with a
// warning; guessing at their meaning would poison the cache columns.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Infow("csv file not found, a new one will be created", "path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}

	out := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRecord(row, cols)
		if err != nil {
			s.log.Warnw("skipping malformed record", "path", s.path, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save rewrites the whole file sorted by PR number.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	sorted := make([]domain.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range sorted {
		if err := w.Write(encodeRecord(rec)); err != nil {
			return fmt.Errorf("write record %d: %w", rec.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return nil
}

func parseRecord(row []string, cols map[string]int) (domain.Record, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	number, err := strconv.Atoi(field("pr_number"))
	if err != nil {
		return domain.Record{}, fmt.Errorf("pr_number %q: %w", field("pr_number"), err)
	}

	isDraft, err := parseOptionalBool(field("is_draft"))
	if err != nil {
		return domain.Record{}, fmt.Errorf("record %d is_draft: %w", number, err)
	}
	foreignTurn, err := parseOptionalBool(field("is_foreign_turn"))
	if err != nil {
		return domain.Record{}, fmt.Errorf("record %d is_foreign_turn: %w", number, err)
	}

	var latency *float64
	if raw := field("latency_hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Record{}, fmt.Errorf("record %d latency_hours %q: %w", number, raw, err)
		}
		latency = &v
	}

	return domain.Record{
		Number:                number,
		HeadRepo:              field("head_repo"),
		Author:                field("author"),
		CreatedAt:             domain.ParseTime(field("created_at")),
		ReviewRequestedAt:     domain.ParseTime(field("review_requested_at")),
		ReviewingInternallyAt: domain.ParseTime(field("reviewing_internally_at")),
		ClosedAt:              domain.ParseTime(field("closed_at")),
		IsDraft:               isDraft != nil && *isDraft,
		UpdatedAt:             domain.ParseTime(field("pr_updated_at")),
		LastRelevantActor:     field("last_relevant_actor"),
		LastRelevantAt:        domain.ParseTime(field("last_relevant_at")),
		IsForeignTurn:         foreignTurn,
		LatencyHours:          latency,
	}, nil
}

func encodeRecord(rec domain.Record) []string {
	return []string{
		strconv.Itoa(rec.Number),
		rec.HeadRepo,
		rec.Author,
		domain.FormatTime(rec.CreatedAt),
		domain.FormatTime(rec.ReviewRequestedAt),
		domain.FormatTime(rec.ReviewingInternallyAt),
		domain.FormatTime(rec.ClosedAt),
		strconv.FormatBool(rec.IsDraft),
		domain.FormatTime(rec.UpdatedAt),
		rec.LastRelevantActor,
		domain.FormatTime(rec.LastRelevantAt),
		formatOptionalBool(rec.IsForeignTurn),
		formatOptionalFloat(rec.LatencyHours),
	}
}
