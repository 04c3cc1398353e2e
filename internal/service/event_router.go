package service

import (
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
)

// Per-kind base deltas. Watch scales with duration (seconds); the rest
// are flat.
const (
	DeltaWatchPerSecond = 0.05
	DeltaLike           = 0.10
	DeltaComment        = 0.30
	DeltaGift           = 0.60
	DeltaBoost          = 1.20

	// UnverifiedPenalty is applied instead of a reward when the event
	// failed verification. Invalid events are punished, not ignored.
	UnverifiedPenalty = -0.1

	// RiskDiscount shrinks (or reverses) the reward proportionally to
	// the caller-supplied suspicion score.
	RiskDiscount = 0.5
)

// EventRouter maps attention events onto trust score deltas and forwards
// them to the trust store.
type EventRouter struct {
	store *TrustStore
}

func NewEventRouter(store *TrustStore) *EventRouter {
	return &EventRouter{store: store}
}

// Route computes the score delta for an event and applies it, returning
// the new score. High risk can drive the delta negative even for
// high-value events; risk dominates reward.
func (r *EventRouter) Route(ev model.AttentionEvent) float64 {
	if !ev.Verified {
		return r.store.Mutate(UnverifiedPenalty)
	}

	duration := ev.Duration
	if duration <= 0 {
		duration = 1
	}

	var base float64
	switch ev.Kind {
	case model.EventWatch:
		base = DeltaWatchPerSecond * duration
	case model.EventLike:
		base = DeltaLike
	case model.EventComment:
		base = DeltaComment
	case model.EventGift:
		base = DeltaGift
	case model.EventBoost:
		base = DeltaBoost
	default:
		base = 0
	}

	return r.store.Mutate(base - ev.Risk*RiskDiscount)
}
