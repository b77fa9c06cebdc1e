package roster

import "github.com/juniorleague/api-server/db"

// TeamAddedMessage acknowledges a successful team registration.
const TeamAddedMessage = "Team added successfully!"

// rotationSalaries maps a rotation draft round to its fixed salary.
var rotationSalaries = map[int]int{
	1: 15,
	2: 10, 3: 10, 4: 10, 5: 10, 6: 10, 7: 10, 8: 10, 9: 10, 10: 10,
	11: 5, 12: 5, 13: 5, 14: 5,
	15: 2,
}

var contractTypes = map[string]bool{
	db.ContractAuction:       true,
	db.ContractAuctionKeeper: true,
	db.ContractInSeason:      true,
	db.ContractRotation:      true,
}

type RegisterTeamRequest struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type CreateContractRequest struct {
	PlayerID       uint   `json:"player_id"`
	TeamID         uint   `json:"team_id"`
	Salary         int    `json:"salary"`
	ContractType   string `json:"contract_type"`
	Year           int    `json:"year"`
	YearsRemaining int    `json:"years_remaining"`
	RotationRound  *int   `json:"rotation_round"`
	Notes          string `json:"notes"`
}

type Validation struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons"`
}

type ContractBreakdown struct {
	Keepers  int `json:"keepers"`
	InSeason int `json:"in_season"`
	Rotation int `json:"rotation"`
	Auction  int `json:"auction"`
}

type RosterPlayer struct {
	PlayerID       uint   `json:"player_id"`
	Name           string `json:"name"`
	Position       string `json:"position"`
	Salary         int    `json:"salary"`
	ContractType   string `json:"contract_type"`
	YearsRemaining int    `json:"years_remaining"`
}

type TeamInfo struct {
	TeamID               uint              `json:"team_id"`
	TeamName             string            `json:"team_name"`
	Owner                string            `json:"owner"`
	TotalSalary          int               `json:"total_salary"`
	RemainingBudget      int               `json:"remaining_budget"`
	BudgetPercentageUsed float64           `json:"budget_percentage_used"`
	RosterSize           int               `json:"roster_size"`
	ContractBreakdown    ContractBreakdown `json:"contract_breakdown"`
	Players              []RosterPlayer    `json:"players"`
}

type AuctionBudget struct {
	TotalBudget     int  `json:"total_budget"`
	CommittedSalary int  `json:"committed_salary"`
	RemainingBudget int  `json:"remaining_budget"`
	CanBid          bool `json:"can_bid"`
}

type TimelineEntry struct {
	PlayerID       uint   `json:"player_id"`
	PlayerName     string `json:"player_name"`
	Salary         int    `json:"salary"`
	YearsRemaining int    `json:"years_remaining"`
	ExpiresYear    int    `json:"expires_year"`
	ContractType   string `json:"contract_type"`
}
