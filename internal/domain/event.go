package domain

import (
	"strings"
	"time"
)

// EventKind enumerates every pull-request lifecycle event the tracker
// understands. Adding a kind means deciding which predicate sets below
// it joins.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindReviewRequested
	KindReviewRequestRemoved
	KindReviewSubmitted
	KindCommented
	KindReviewComment
	KindCommitted
	KindLabeled
	KindUnlabeled
	KindReadyForReview
	KindConvertedToDraft
	KindReviewThreadResolved
	KindClosed
	KindReopened
	KindHeadRefForcePushed
)

func (k EventKind) String() string {
	switch k {
	case KindReviewRequested:
		return "review_requested"
	case KindReviewRequestRemoved:
		return "review_request_removed"
	case KindReviewSubmitted:
		return "reviewed"
	case KindCommented:
		return "commented"
	case KindReviewComment:
		return "review_comment"
	case KindCommitted:
		return "committed"
	case KindLabeled:
		return "labeled"
	case KindUnlabeled:
		return "unlabeled"
	case KindReadyForReview:
		return "ready_for_review"
	case KindConvertedToDraft:
		return "convert_to_draft"
	case KindReviewThreadResolved:
		return "review_thread_resolved"
	case KindClosed:
		return "closed"
	case KindReopened:
		return "reopened"
	case KindHeadRefForcePushed:
		return "head_ref_force_pushed"
	default:
		return "unknown"
	}
}

// ReviewStateApproved is the review state that marks a submission as an
// approval.
const ReviewStateApproved = "approved"

// Event is a single timestamped occurrence on a pull request. Timestamp
// and Actor may be absent; the aggregator and the turn-state machine
// treat such events accordingly. Identity for deduplication is
// (Kind, Timestamp).
type Event struct {
	Kind        EventKind
	Timestamp   *time.Time
	Actor       string
	Label       string
	ReviewState string
}

// IsFeedback reports whether the event is reviewer feedback: a review
// submission, a generic comment, or an inline review comment.
func (e Event) IsFeedback() bool {
	switch e.Kind {
	case KindReviewSubmitted, KindCommented, KindReviewComment:
		return true
	default:
		return false
	}
}

// IsApproval reports whether the event is a feedback event carrying the
// "approved" review state.
func (e Event) IsApproval() bool {
	return e.IsFeedback() && strings.EqualFold(e.ReviewState, ReviewStateApproved)
}

// IsTurnRelevant reports whether the event can shift whose turn it is:
// any feedback plus review requests/removals, draft/ready transitions,
// labeling, and force pushes.
func (e Event) IsTurnRelevant() bool {
	if e.IsFeedback() {
		return true
	}
	switch e.Kind {
	case KindReviewRequested, KindReviewRequestRemoved,
		KindReadyForReview, KindConvertedToDraft,
		KindLabeled, KindUnlabeled,
		KindHeadRefForcePushed:
		return true
	default:
		return false
	}
}

// EventStreams groups the raw per-PR event streams before aggregation.
// Timeline is the primary stream; the rest supplement it with kinds the
// timeline does not cover.
type EventStreams struct {
	Timeline       []Event
	Reviews        []Event
	ReviewComments []Event
	IssueComments  []Event
	Commits        []Event
}

// Supplemental returns the non-primary streams in merge order.
func (s EventStreams) Supplemental() [][]Event {
	return [][]Event{s.Reviews, s.ReviewComments, s.IssueComments, s.Commits}
}
