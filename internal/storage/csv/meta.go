package csv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"prtrack/internal/domain"
)

type scrapeMeta struct {
	LastScrape string `json:"last_scrape"`
}

// SetLastScrape records when the data set was last refreshed.
func (s *Store) SetLastScrape(ctx context.Context, t time.Time) error {
	utc := t.UTC()
	data, err := json.Marshal(scrapeMeta{LastScrape: domain.FormatTime(&utc)})
	if err != nil {
		return fmt.Errorf("marshal scrape meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.metaPath, err)
	}
	return nil
}

// LastScrape returns the recorded refresh time, or nil when the sidecar
// is missing or unreadable.
func (s *Store) LastScrape(ctx context.Context) (*time.Time, error) {
	data, err := os.ReadFile(s.metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.metaPath, err)
	}
	var meta scrapeMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil
	}
	return domain.ParseTime(meta.LastScrape), nil
}
