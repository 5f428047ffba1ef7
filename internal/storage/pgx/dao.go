package pgx

import (
	"database/sql"
	"time"

	"prtrack/internal/domain"
)

type recordDAO struct {
	Number                int
	HeadRepo              string
	Author                string
	CreatedAt             sql.NullTime
	ReviewRequestedAt     sql.NullTime
	ReviewingInternallyAt sql.NullTime
	ClosedAt              sql.NullTime
	IsDraft               bool
	UpdatedAt             sql.NullTime
	LastRelevantActor     string
	LastRelevantAt        sql.NullTime
	IsForeignTurn         sql.NullBool
	LatencyHours          sql.NullFloat64
}

func recordDAOToDomain(dao recordDAO) domain.Record {
	var foreignTurn *bool
	if dao.IsForeignTurn.Valid {
		v := dao.IsForeignTurn.Bool
		foreignTurn = &v
	}

	var latency *float64
	if dao.LatencyHours.Valid {
		v := dao.LatencyHours.Float64
		latency = &v
	}

	return domain.Record{
		Number:                dao.Number,
		HeadRepo:              dao.HeadRepo,
		Author:                dao.Author,
		CreatedAt:             nullTimeToPtr(dao.CreatedAt),
		ReviewRequestedAt:     nullTimeToPtr(dao.ReviewRequestedAt),
		ReviewingInternallyAt: nullTimeToPtr(dao.ReviewingInternallyAt),
		ClosedAt:              nullTimeToPtr(dao.ClosedAt),
		IsDraft:               dao.IsDraft,
		UpdatedAt:             nullTimeToPtr(dao.UpdatedAt),
		LastRelevantActor:     dao.LastRelevantActor,
		LastRelevantAt:        nullTimeToPtr(dao.LastRelevantAt),
		IsForeignTurn:         foreignTurn,
		LatencyHours:          latency,
	}
}

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func ptrToAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
