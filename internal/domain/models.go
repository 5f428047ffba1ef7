package domain

import "time"

// PullRequest is the live head data of a pull request as reported by the
// event source.
type PullRequest struct {
	Number    int
	Author    string
	HeadRepo  string
	Draft     bool
	CreatedAt *time.Time
	UpdatedAt *time.Time
	ClosedAt  *time.Time
}

// TurnVerdict is the outcome of one turn-state reduction. A nil
// IsForeignTurn means there was no decidable history.
type TurnVerdict struct {
	IsForeignTurn *bool
	LastActor     string
	LastAt        *time.Time
}

// Record is the derived row persisted per pull request. UpdatedAt caches
// the upstream pr_updated_at so unchanged PRs are skipped on the next
// accumulation run.
type Record struct {
	Number                int
	HeadRepo              string
	Author                string
	CreatedAt             *time.Time
	ReviewRequestedAt     *time.Time
	ReviewingInternallyAt *time.Time
	ClosedAt              *time.Time
	IsDraft               bool
	UpdatedAt             *time.Time
	LastRelevantActor     string
	LastRelevantAt        *time.Time
	IsForeignTurn         *bool
	LatencyHours          *float64
}

// IsWIP reports whether the record is work in progress: open and not a
// draft.
func (r Record) IsWIP() bool {
	return r.ClosedAt == nil && !r.IsDraft
}

// ClearTurnCache drops the cached turn-analysis fields. Clearing
// UpdatedAt forces the next accumulation run to reprocess the PR.
func (r *Record) ClearTurnCache() {
	r.UpdatedAt = nil
	r.LastRelevantActor = ""
	r.LastRelevantAt = nil
	r.IsForeignTurn = nil
}
