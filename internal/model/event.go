package model

// EventKind identifies the type of an attention event.
type EventKind string

const (
	EventWatch   EventKind = "watch"
	EventLike    EventKind = "like"
	EventComment EventKind = "comment"
	EventGift    EventKind = "gift"
	EventBoost   EventKind = "boost"
)

// ValidEventKinds are the attention event kinds accepted by the API.
var ValidEventKinds = map[EventKind]bool{
	EventWatch:   true,
	EventLike:    true,
	EventComment: true,
	EventGift:    true,
	EventBoost:   true,
}

// AttentionEvent is a transient attention signal consumed once by the
// event router. Duration only matters for watch events (seconds watched);
// Risk is a caller-supplied suspicion score, conventionally in [0, 1].
type AttentionEvent struct {
	Kind     EventKind `json:"kind"`
	Duration float64   `json:"duration"`
	Verified bool      `json:"verified"`
	Risk     float64   `json:"risk"`
}

// AttentionReport is the payload delivered to the server-side validation
// boundary. Delivery is best-effort and never gates local state.
type AttentionReport struct {
	SessionID       string            `json:"session_id"`
	TargetID        string            `json:"target_id,omitempty"`
	InteractionType string            `json:"interaction_type"`
	DurationMS      int64             `json:"duration_ms,omitempty"`
	ContentHash     string            `json:"content_hash,omitempty"`
	ContextHash     string            `json:"context_hash,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
