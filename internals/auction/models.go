package auction

import "strings"

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Label is the capitalised form shown next to a recommendation ("Medium").
func (c Confidence) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

type BidRange struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

type SuggestedRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Recommendation is derived on request and only ever cached, never stored.
type Recommendation struct {
	PlayerID        uint           `json:"player_id,omitempty"`
	PlayerName      string         `json:"player_name"`
	RecommendedBid  int            `json:"recommended_bid"`
	Confidence      Confidence     `json:"confidence"`
	ConfidenceLabel string         `json:"confidence_label"`
	ProjectedValue  *int           `json:"projected_value,omitempty"`
	BidRange        *BidRange      `json:"bid_range,omitempty"`
	SuggestedRange  SuggestedRange `json:"suggested_range"`
	SampleSize      int            `json:"sample_size"`
	Reasoning       []string       `json:"reasoning"`
}

type Candidate struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}
