package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"prtrack/internal/domain"
)

// Load returns every persisted record ordered by PR number.
func (s *Storage) Load(ctx context.Context) ([]domain.Record, error) {
	const query = `
		SELECT
		    pr_number,
		    head_repo,
		    author,
		    created_at,
		    review_requested_at,
		    reviewing_internally_at,
		    closed_at,
		    is_draft,
		    pr_updated_at,
		    last_relevant_actor,
		    last_relevant_at,
		    is_foreign_turn,
		    latency_hours
		  FROM pr_records
		 ORDER BY pr_number;
	`

	rows, err := s.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0)
	for rows.Next() {
		var dao recordDAO
		if err := rows.Scan(
			&dao.Number,
			&dao.HeadRepo,
			&dao.Author,
			&dao.CreatedAt,
			&dao.ReviewRequestedAt,
			&dao.ReviewingInternallyAt,
			&dao.ClosedAt,
			&dao.IsDraft,
			&dao.UpdatedAt,
			&dao.LastRelevantActor,
			&dao.LastRelevantAt,
			&dao.IsForeignTurn,
			&dao.LatencyHours,
		); err != nil {
			return nil, err
		}
		out = append(out, recordDAOToDomain(dao))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Save upserts all records in one transaction.
func (s *Storage) Save(ctx context.Context, records []domain.Record) error {
	const query = `
		INSERT INTO pr_records (
		    pr_number, head_repo, author,
		    created_at, review_requested_at, reviewing_internally_at, closed_at,
		    is_draft, pr_updated_at,
		    last_relevant_actor, last_relevant_at, is_foreign_turn, latency_hours
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (pr_number) DO UPDATE SET
		    head_repo               = EXCLUDED.head_repo,
		    author                  = EXCLUDED.author,
		    created_at              = EXCLUDED.created_at,
		    review_requested_at     = EXCLUDED.review_requested_at,
		    reviewing_internally_at = EXCLUDED.reviewing_internally_at,
		    closed_at               = EXCLUDED.closed_at,
		    is_draft                = EXCLUDED.is_draft,
		    pr_updated_at           = EXCLUDED.pr_updated_at,
		    last_relevant_actor     = EXCLUDED.last_relevant_actor,
		    last_relevant_at        = EXCLUDED.last_relevant_at,
		    is_foreign_turn         = EXCLUDED.is_foreign_turn,
		    latency_hours           = EXCLUDED.latency_hours;
	`

	return s.withTx(ctx, func(ctx context.Context) error {
		exec := s.getExecutor(ctx)
		for _, rec := range records {
			if _, err := exec.Exec(ctx, query,
				rec.Number,
				rec.HeadRepo,
				rec.Author,
				ptrToAny(rec.CreatedAt),
				ptrToAny(rec.ReviewRequestedAt),
				ptrToAny(rec.ReviewingInternallyAt),
				ptrToAny(rec.ClosedAt),
				rec.IsDraft,
				ptrToAny(rec.UpdatedAt),
				rec.LastRelevantActor,
				ptrToAny(rec.LastRelevantAt),
				ptrToAny(rec.IsForeignTurn),
				ptrToAny(rec.LatencyHours),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetLastScrape records when the data set was last refreshed.
func (s *Storage) SetLastScrape(ctx context.Context, t time.Time) error {
	const query = `
		INSERT INTO scrape_meta (key, value)
		VALUES ('last_scrape', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;
	`

	_, err := s.getExecutor(ctx).Exec(ctx, query, t.UTC())
	return err
}

// LastScrape returns the recorded refresh time, or nil when none was
// recorded yet.
func (s *Storage) LastScrape(ctx context.Context) (*time.Time, error) {
	const query = `SELECT value FROM scrape_meta WHERE key = 'last_scrape';`

	var t time.Time
	err := s.getExecutor(ctx).QueryRow(ctx, query).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
