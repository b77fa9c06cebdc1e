package db

import "time"

type Team struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Owner     string    `json:"owner" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type Player struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:100;not null;index"`
	FangraphsID  *int      `json:"fangraphs_id,omitempty" gorm:"uniqueIndex"`
	Position     string    `json:"position" gorm:"size:50"`
	MLBTeam      string    `json:"mlb_team" gorm:"column:mlb_team;size:10"`
	RosterTeamID *uint     `json:"roster_team_id,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contract types a roster entry can carry.
const (
	ContractAuction       = "auction"
	ContractAuctionKeeper = "auction_keeper"
	ContractInSeason      = "in_season"
	ContractRotation      = "rotation"
)

type Contract struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerID       uint      `json:"player_id" gorm:"not null;index"`
	TeamID         uint      `json:"team_id" gorm:"not null;index"`
	Salary         int       `json:"salary" gorm:"not null"`
	ContractType   string    `json:"contract_type" gorm:"size:50;not null"`
	Year           int       `json:"year" gorm:"not null"`
	YearsRemaining int       `json:"years_remaining" gorm:"default:0"`
	RotationRound  *int      `json:"rotation_round,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type HistoricalAuction struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerID     uint      `json:"player_id" gorm:"not null;index"`
	TeamID       uint      `json:"team_id" gorm:"not null;index"`
	Year         int       `json:"year" gorm:"not null"`
	Salary       int       `json:"salary" gorm:"not null"`
	ContractType string    `json:"contract_type" gorm:"size:50;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProjectedStats struct {
	ID       uint `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerID uint `json:"player_id" gorm:"not null;uniqueIndex:idx_projection_player_year"`
	Year     int  `json:"year" gorm:"not null;uniqueIndex:idx_projection_player_year"`

	BattingAvg  *float64 `json:"projected_batting_avg,omitempty"`
	HomeRuns    *int     `json:"projected_home_runs,omitempty"`
	RBIs        *int     `json:"projected_rbis,omitempty" gorm:"column:rbis"`
	StolenBases *int     `json:"projected_stolen_bases,omitempty"`
	Wins        *int     `json:"projected_wins,omitempty"`
	ERA         *float64 `json:"projected_era,omitempty" gorm:"column:era"`
	Strikeouts  *int     `json:"projected_strikeouts,omitempty"`
	Saves       *int     `json:"projected_saves,omitempty"`

	ProjectedValue *float64  `json:"projected_value,omitempty"`
	Source         string    `json:"source,omitempty" gorm:"size:100"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuctionBid is a live bid. Exactly one bid per player is winning once any
// bid has been accepted for that player.
type AuctionBid struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerID  uint      `json:"player_id" gorm:"not null;index"`
	TeamID    uint      `json:"team_id" gorm:"not null;index"`
	BidAmount int       `json:"bid_amount" gorm:"not null"`
	IsWinning bool      `json:"is_winning" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TeamID      uint      `json:"team_id" gorm:"not null;index"`
	BidID       uint      `json:"bid_id"`
	Description string    `json:"description" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:10;default:'unseen';not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is an operator account allowed to mutate league data.
type User struct {
	UserID       int    `json:"user_id" gorm:"primaryKey;autoIncrement;not null"`
	UserName     string `json:"user_name" gorm:"not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"not null"`
	MailID       string `json:"mail_id" gorm:"not null;uniqueIndex"`
}
