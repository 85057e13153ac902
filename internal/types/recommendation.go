package types

// ScoredActivity pairs an activity name with its content-based cosine
// similarity. Collaborative-only entries carry score 0.
type ScoredActivity struct {
	Activity string  `json:"activity"`
	Score    float64 `json:"score"`
}

// Recommendation is the engine's output for one guest: the merged,
// ranked activity list plus the suggestion sentence the UI renders.
type Recommendation struct {
	GuestID  string           `json:"guest_id"`
	Items    []ScoredActivity `json:"items"`
	Message  string           `json:"message"`
	Fallback bool             `json:"fallback"`
}
