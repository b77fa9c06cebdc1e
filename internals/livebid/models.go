package livebid

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	EventBid   = "bid"
	EventAward = "award"
)

// Amount is a bid amount as typed into a form. It accepts a JSON number or
// a string so that an empty field can be told apart from a zero bid.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

type SubmitBidRequest struct {
	PlayerID  uint   `json:"player_id"`
	TeamID    uint   `json:"team_id"`
	BidAmount Amount `json:"bid_amount"`
}

// Ack acknowledges a recorded bid.
type Ack struct {
	BidID     uint   `json:"bid_id"`
	PlayerID  uint   `json:"player_id"`
	TeamID    uint   `json:"team_id"`
	BidAmount int    `json:"bid_amount"`
	Message   string `json:"message"`
}

type BidView struct {
	ID        uint      `json:"id"`
	PlayerID  uint      `json:"player_id"`
	TeamID    uint      `json:"team_id"`
	TeamName  string    `json:"team_name"`
	BidAmount int       `json:"bid_amount"`
	IsWinning bool      `json:"is_winning"`
	CreatedAt time.Time `json:"created_at"`
}

type BoardEntry struct {
	PlayerID  uint `json:"player_id"`
	TeamID    uint `json:"team_id"`
	BidAmount int  `json:"bid_amount"`
}

// BidEvent is pushed to live clients whenever a bid is accepted or a player
// is awarded.
type BidEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	BidID          uint      `json:"bid_id"`
	PlayerID       uint      `json:"player_id"`
	PlayerName     string    `json:"player_name"`
	TeamID         uint      `json:"team_id"`
	TeamName       string    `json:"team_name"`
	BidAmount      int       `json:"bid_amount"`
	PreviousTeamID uint      `json:"previous_team_id,omitempty"`
	At             time.Time `json:"at"`
}
