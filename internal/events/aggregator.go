// Package events merges the per-PR event streams into one deduplicated,
// causally ordered sequence and extracts lifecycle milestones from it.
package events

import (
	"sort"
	"strings"
	"time"

	"prtrack/internal/domain"
)

type dedupKey struct {
	kind  domain.EventKind
	unix  int64
	timed bool
}

// Merge concatenates the primary stream and the supplemental streams,
// drops duplicates by (kind, timestamp) keeping the first occurrence,
// stable-sorts with timestamp-less events last, and truncates the result
// at the first closure. Events lacking both a kind and a timestamp carry
// nothing the state machine can use and are discarded.
func Merge(primary []domain.Event, supplemental ...[]domain.Event) []domain.Event {
	size := len(primary)
	for _, s := range supplemental {
		size += len(s)
	}

	seen := make(map[dedupKey]struct{}, size)
	merged := make([]domain.Event, 0, size)

	appendStream := func(stream []domain.Event) {
		for _, ev := range stream {
			if ev.Kind == domain.KindUnknown && ev.Timestamp == nil {
				continue
			}
			key := dedupKey{kind: ev.Kind}
			if ev.Timestamp != nil {
				key.unix = ev.Timestamp.UnixNano()
				key.timed = true
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, ev)
		}
	}

	appendStream(primary)
	for _, s := range supplemental {
		appendStream(s)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := merged[i].Timestamp, merged[j].Timestamp
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.Before(*tj)
		}
	})

	return truncateAtClosure(merged)
}

// truncateAtClosure keeps the sequence up to and including the first
// closed event. Anything after it, reopen cycles included, never reaches
// the turn-state machine.
func truncateAtClosure(seq []domain.Event) []domain.Event {
	for i, ev := range seq {
		if ev.Kind == domain.KindClosed {
			return seq[:i+1]
		}
	}
	return seq
}

// Milestones are the first occurrences of the lifecycle markers the
// tracker persists per PR.
type Milestones struct {
	ReviewRequestedAt     *time.Time
	ReviewingInternallyAt *time.Time
	ClosedAt              *time.Time
}

// ExtractMilestones scans an ordered sequence for the first review
// request, the first application of the given label, and the first
// closure. Label comparison is case-insensitive.
func ExtractMilestones(seq []domain.Event, label string) Milestones {
	var ms Milestones
	for _, ev := range seq {
		switch ev.Kind {
		case domain.KindReviewRequested:
			if ms.ReviewRequestedAt == nil {
				ms.ReviewRequestedAt = ev.Timestamp
			}
		case domain.KindLabeled:
			if ms.ReviewingInternallyAt == nil && strings.EqualFold(ev.Label, label) {
				ms.ReviewingInternallyAt = ev.Timestamp
			}
		case domain.KindClosed:
			if ms.ClosedAt == nil {
				ms.ClosedAt = ev.Timestamp
			}
		}
	}
	return ms
}
