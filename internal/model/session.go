package model

// SessionResponse is the API response when a session is started.
type SessionResponse struct {
	SessionID  string    `json:"sessionId"`
	UPS        float64   `json:"ups"`
	TrustState TrustTier `json:"trustState"`
}

// StandingResponse combines the local session standing with the
// authoritative server-side figures when a database is configured. The
// two are not expected to match exactly; the local score is a soft
// session signal.
type StandingResponse struct {
	SessionID  string           `json:"sessionId"`
	UPS        float64          `json:"ups"`
	TrustState TrustTier        `json:"trustState"`
	Balance    int64            `json:"balance"`
	Account    *AccountStanding `json:"account,omitempty"`
}

// AccountStanding holds the authoritative account figures read from the
// balance/trust boundary.
type AccountStanding struct {
	Balance     int64   `json:"balance"`
	TrustState  string  `json:"trust_state"`
	UPS         float64 `json:"ups"`
	AccountType string  `json:"account_type"`
}

// AttentionRequest is the API request for reporting an attention event.
type AttentionRequest struct {
	SessionID       string            `json:"sessionId"`
	TargetID        string            `json:"targetId,omitempty"`
	InteractionType string            `json:"interactionType"`
	DurationMS      int64             `json:"durationMs,omitempty"`
	Verified        *bool             `json:"verified,omitempty"`
	Risk            float64           `json:"risk,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// AttentionResponse is the API response after an attention event is
// routed through the trust engine.
type AttentionResponse struct {
	SessionID  string    `json:"sessionId"`
	UPS        float64   `json:"ups"`
	TrustState TrustTier `json:"trustState"`
	Reward     int64     `json:"reward"`
	Balance    int64     `json:"balance"`
}
