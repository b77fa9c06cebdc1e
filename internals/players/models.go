package players

type CreatePlayerRequest struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	MLBTeam     string `json:"mlb_team"`
	FangraphsID *int   `json:"fangraphs_id"`
}

// ProjectionRequest carries projected stats for a season. When
// ProjectedValue is absent it is derived from the pitching stats if any
// are set, otherwise from the batting stats.
type ProjectionRequest struct {
	Year           int      `json:"year"`
	BattingAvg     *float64 `json:"projected_batting_avg"`
	HomeRuns       *int     `json:"projected_home_runs"`
	RBIs           *int     `json:"projected_rbis"`
	StolenBases    *int     `json:"projected_stolen_bases"`
	Wins           *int     `json:"projected_wins"`
	ERA            *float64 `json:"projected_era"`
	Strikeouts     *int     `json:"projected_strikeouts"`
	Saves          *int     `json:"projected_saves"`
	ProjectedValue *float64 `json:"projected_value"`
	Source         string   `json:"source"`
}

func (p ProjectionRequest) isPitcher() bool {
	return p.Wins != nil || p.ERA != nil || p.Strikeouts != nil || p.Saves != nil
}

func (p ProjectionRequest) isHitter() bool {
	return p.BattingAvg != nil || p.HomeRuns != nil || p.RBIs != nil || p.StolenBases != nil
}

func intOr0(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
