package models

// ScoringTable maps a participant count to a map from finishing position to points.
// JSON keys are the decimal counts and positions, e.g. {"3": {"1": 10}}.
type ScoringTable map[int]map[int]int

type Game struct {
	ID         ID           `json:"id"`
	Name       string       `json:"name"`
	Scoring    ScoringTable `json:"scoring"`
	IsPlusRule bool         `json:"isPlusRule"`
}
