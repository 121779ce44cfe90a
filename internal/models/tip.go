package models

// Tip is an ephemeral tactical recommendation computed per gameplan request.
// Tips are never persisted.
type Tip struct {
	Theme    string  `json:"theme"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Evidence string  `json:"evidence"`
}

// Factor is one model-coefficient contribution to the home-win logit,
// used to explain a prediction.
type Factor struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"` // signed, standardized value x weight
}
