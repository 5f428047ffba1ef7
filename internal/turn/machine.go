// Package turn reduces an ordered pull-request event sequence to a
// turn-state verdict: whose side currently owes an action.
package turn

import (
	"context"
	"time"

	"prtrack/internal/domain"
	"prtrack/internal/membership"
)

// Classifier resolves an actor login to a side for one PR.
type Classifier interface {
	Classify(ctx context.Context, login, author string) membership.Side
}

// Evaluate makes a single forward pass over the ordered sequence.
//
// Foreign feedback timestamps accumulate on a LIFO stack of pending,
// unacknowledged feedback. An approval clears the stack entirely. A
// thread resolution pops the most recent entry; this approximates "a
// resolution closes the most recently opened thread" without tracking
// thread identity, and is kept that way on purpose. A commit, or any
// feedback by the author, acknowledges every pending entry not strictly
// after its timestamp.
func Evaluate(ctx context.Context, seq []domain.Event, author string, cls Classifier) domain.TurnVerdict {
	var (
		pending         []time.Time
		lastActor       string
		lastAt          *time.Time
		lastWasApproval bool
	)

	for _, ev := range seq {
		if ev.IsTurnRelevant() && ev.Actor != "" && ev.Timestamp != nil {
			lastActor = ev.Actor
			lastAt = ev.Timestamp
			lastWasApproval = ev.IsApproval()
		}

		switch {
		case ev.IsFeedback() && ev.Actor != "" && ev.Timestamp != nil:
			switch {
			case ev.IsApproval():
				// Approval supersedes and forgives all earlier
				// unresolved feedback.
				pending = pending[:0]
			case ev.Actor == author:
				pending = dropThrough(pending, *ev.Timestamp)
			case cls.Classify(ctx, ev.Actor, author) == membership.SideForeign:
				pending = append(pending, *ev.Timestamp)
			}
		case ev.Kind == domain.KindReviewThreadResolved:
			if n := len(pending); n > 0 {
				pending = pending[:n-1]
			}
		case ev.Kind == domain.KindCommitted && ev.Timestamp != nil:
			pending = dropThrough(pending, *ev.Timestamp)
		}
	}

	verdict := domain.TurnVerdict{LastActor: lastActor, LastAt: lastAt}
	switch {
	case len(pending) > 0:
		verdict.IsForeignTurn = boolPtr(false)
	case lastActor == "":
		// No decidable history.
	case lastWasApproval:
		verdict.IsForeignTurn = boolPtr(true)
	default:
		home := cls.Classify(ctx, lastActor, author) == membership.SideHome
		verdict.IsForeignTurn = boolPtr(home)
	}
	return verdict
}

// dropThrough removes every pending entry not strictly after the cutoff.
func dropThrough(pending []time.Time, cutoff time.Time) []time.Time {
	out := pending[:0]
	for _, ts := range pending {
		if ts.After(cutoff) {
			out = append(out, ts)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
