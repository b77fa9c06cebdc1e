package history

// Row is one player/salary cell pair from the league spreadsheet.
type Row struct {
	Year     int
	Position string
	Player   string
	LastName string
	Salary   int
	TeamIdx  int
}

type Sheet struct {
	Teams []string
	Rows  []Row
}

type AmbiguousRow struct {
	Year        int      `json:"year"`
	Team        string   `json:"team"`
	LastName    string   `json:"last_name"`
	FullName    string   `json:"full_name"`
	Position    string   `json:"position"`
	Salary      int      `json:"salary"`
	Suggestions []string `json:"suggestions"`
}

type ImportStats struct {
	Year            int            `json:"year"`
	Teams           []string       `json:"teams"`
	CreatedTeams    int            `json:"created_teams"`
	CreatedPlayers  int            `json:"created_players"`
	MatchedPlayers  int            `json:"matched_players"`
	CreatedAuctions int            `json:"created_auctions"`
	Ambiguous       []AmbiguousRow `json:"ambiguous"`
}

type Keeper struct {
	PlayerID   uint   `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     uint   `json:"team_id"`
	TeamName   string `json:"team_name"`
	Years      int    `json:"years"`
	FirstYear  int    `json:"first_year"`
	LastYear   int    `json:"last_year"`
}

type DuplicateName struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TeamSeason is one team's auction haul for a season.
type TeamSeason struct {
	TeamID   uint   `json:"team_id"`
	TeamName string `json:"team_name"`
	Year     int    `json:"year"`
	Players  int    `json:"players"`
	Total    int    `json:"total"`
}

// SalaryChange compares a kept player's first and last salary with a team.
type SalaryChange struct {
	PlayerID    uint   `json:"player_id"`
	PlayerName  string `json:"player_name"`
	TeamID      uint   `json:"team_id"`
	TeamName    string `json:"team_name"`
	FirstYear   int    `json:"first_year"`
	FirstSalary int    `json:"first_salary"`
	LastYear    int    `json:"last_year"`
	LastSalary  int    `json:"last_salary"`
	Change      int    `json:"change"`
}
