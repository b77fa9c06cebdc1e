package livebid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/roster"
	"github.com/juniorleague/api-server/pkg/kvstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const boardKey = "winning_bids"

var (
	ErrBidAmountRequired = errors.New("Please enter a bid amount")
	ErrInvalidBidAmount  = errors.New("bid amount must be a whole dollar amount")
	ErrPlayerRequired    = errors.New("player_id is required")
	ErrTeamRequired      = errors.New("team_id is required")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrBidTooLow         = errors.New("bid too low")
	ErrOverBudget        = errors.New("bid exceeds remaining budget")
	ErrNoWinningBid      = errors.New("player has no winning bid")
	ErrPlayerRostered    = errors.New("player is already on a roster")
)

// BidTooLowError reports the smallest bid that would have been accepted.
type BidTooLowError struct {
	Minimum int
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least $%d", e.Minimum)
}

func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

type Publisher interface {
	Publish(ctx context.Context, event BidEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event BidEvent) error

func (f PublisherFunc) Publish(ctx context.Context, event BidEvent) error {
	return f(ctx, event)
}

type Notifier interface {
	NotifyTx(tx *gorm.DB, teamID, bidID uint, description string) error
}

type Options struct {
	MinimumBid       int
	MinimumIncrement int
}

type LiveBidService struct {
	DB       *gorm.DB
	KV       kvstore.KVStore
	Log      *zap.Logger
	Roster   *roster.RosterService
	Notifier Notifier
	Events   Publisher
	Opts     Options

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func New(db *gorm.DB, kv kvstore.KVStore, log *zap.Logger, rs *roster.RosterService, notifier Notifier, events Publisher, opts Options) *LiveBidService {
	return &LiveBidService{
		DB:       db,
		KV:       kv,
		Log:      log,
		Roster:   rs,
		Notifier: notifier,
		Events:   events,
		Opts:     opts,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// lockPlayer serializes bidding on one player.
func (s *LiveBidService) lockPlayer(playerID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func parseAmount(raw Amount) (int, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, ErrBidAmountRequired
	}
	amount, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBidAmount, string(raw))
	}
	return amount, nil
}

func formatBoardValue(teamID uint, amount int) string {
	return fmt.Sprintf("%d,%d", teamID, amount)
}

// Submit records a live bid and makes it the winning bid for the player.
func (s *LiveBidService) Submit(ctx context.Context, req SubmitBidRequest) (*Ack, error) {
	if strings.TrimSpace(string(req.BidAmount)) == "" {
		return nil, ErrBidAmountRequired
	}

	s.Log.Info("Submitting bid",
		zap.Uint("player_id", req.PlayerID),
		zap.String("bid_amount", string(req.BidAmount)))

	amount, err := parseAmount(req.BidAmount)
	if err != nil {
		return nil, err
	}
	if req.PlayerID == 0 {
		return nil, ErrPlayerRequired
	}
	if req.TeamID == 0 {
		return nil, ErrTeamRequired
	}
	if amount < s.Opts.MinimumBid {
		return nil, &BidTooLowError{Minimum: s.Opts.MinimumBid}
	}

	event, err := s.recordBid(ctx, req, amount)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *event)

	return &Ack{
		BidID:     event.BidID,
		PlayerID:  event.PlayerID,
		TeamID:    event.TeamID,
		BidAmount: amount,
		Message:   fmt.Sprintf("Bid of $%d recorded!", amount),
	}, nil
}

// recordBid holds the player's lock; callers publish only after it returns.
func (s *LiveBidService) recordBid(ctx context.Context, req SubmitBidRequest, amount int) (*BidEvent, error) {
	unlock := s.lockPlayer(req.PlayerID)
	defer unlock()

	var (
		bid      db.AuctionBid
		player   db.Player
		team     db.Team
		previous db.AuctionBid
		outbid   bool
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&player, req.PlayerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		if player.RosterTeamID != nil {
			return ErrPlayerRostered
		}
		if err := tx.First(&team, req.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		err := tx.Where("player_id = ? AND is_winning = ?", req.PlayerID, true).Order("id DESC").First(&previous).Error
		switch {
		case err == nil:
			outbid = true
			if minimum := previous.BidAmount + s.Opts.MinimumIncrement; amount < minimum {
				return &BidTooLowError{Minimum: minimum}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		committed, err := s.Roster.CommittedSalary(tx, team.ID)
		if err != nil {
			return err
		}
		if remaining := s.Roster.Budget - committed; amount > remaining {
			return fmt.Errorf("%w: $%d left", ErrOverBudget, remaining)
		}

		if err := tx.Model(&db.AuctionBid{}).Where("player_id = ?", req.PlayerID).Update("is_winning", false).Error; err != nil {
			return err
		}

		bid = db.AuctionBid{
			PlayerID:  player.ID,
			TeamID:    team.ID,
			BidAmount: amount,
			IsWinning: true,
		}
		if err := tx.Create(&bid).Error; err != nil {
			return err
		}

		if outbid && previous.TeamID != team.ID {
			desc := fmt.Sprintf("Your bid of $%d on %s was outbid by %s ($%d)", previous.BidAmount, player.Name, team.Name, amount)
			if err := s.Notifier.NotifyTx(tx, previous.TeamID, bid.ID, desc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.KV.HSet(boardKey, strconv.FormatUint(uint64(player.ID), 10), formatBoardValue(team.ID, amount)); err != nil {
		s.Log.Warn("Updating bid board failed", zap.Uint("player_id", player.ID), zap.Error(err))
	}

	event := BidEvent{
		EventID:    uuid.NewString(),
		Type:       EventBid,
		BidID:      bid.ID,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TeamID:     team.ID,
		TeamName:   team.Name,
		BidAmount:  amount,
		At:         time.Now().UTC(),
	}
	if outbid {
		event.PreviousTeamID = previous.TeamID
	}
	return &event, nil
}

func (s *LiveBidService) publish(ctx context.Context, event BidEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Log.Warn("Publishing bid event failed",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.Error(err))
	}
}

// History lists all bids on a player, oldest first.
func (s *LiveBidService) History(ctx context.Context, playerID uint) ([]BidView, error) {
	bids := make([]BidView, 0)
	err := s.DB.WithContext(ctx).Table("auction_bids").
		Select("auction_bids.id, auction_bids.player_id, auction_bids.team_id, teams.name AS team_name, auction_bids.bid_amount, auction_bids.is_winning, auction_bids.created_at").
		Joins("JOIN teams ON teams.id = auction_bids.team_id").
		Where("auction_bids.player_id = ?", playerID).
		Order("auction_bids.id").
		Scan(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (s *LiveBidService) Winning(ctx context.Context, playerID uint) (*db.AuctionBid, error) {
	var bid db.AuctionBid
	err := s.DB.WithContext(ctx).Where("player_id = ? AND is_winning = ?", playerID, true).First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoWinningBid
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// Board returns the current winning bid of every player still open for
// bidding, as kept in the KV store.
func (s *LiveBidService) Board(ctx context.Context) ([]BoardEntry, error) {
	raw, err := s.KV.HGetAll(boardKey)
	if err != nil {
		return nil, err
	}

	board := make([]BoardEntry, 0, len(raw))
	for field, value := range raw {
		playerID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid player id %q in bid board", field)
		}
		parts := strings.Split(value, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data format for team and amount")
		}
		teamID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, err
		}
		board = append(board, BoardEntry{PlayerID: uint(playerID), TeamID: uint(teamID), BidAmount: amount})
	}

	sort.Slice(board, func(i, j int) bool {
		return board[i].PlayerID < board[j].PlayerID
	})
	return board, nil
}

// Award closes bidding on a player and signs the winning team to an auction
// contract at the winning amount.
func (s *LiveBidService) Award(ctx context.Context, playerID uint, year int) (*db.Contract, error) {
	contract, event, err := s.award(ctx, playerID, year)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, *event)
	return contract, nil
}

func (s *LiveBidService) award(ctx context.Context, playerID uint, year int) (*db.Contract, *BidEvent, error) {
	unlock := s.lockPlayer(playerID)
	defer unlock()

	var (
		contract *db.Contract
		winning  db.AuctionBid
		player   db.Player
		team     db.Team
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("player_id = ? AND is_winning = ?", playerID, true).First(&winning).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoWinningBid
		}
		if err != nil {
			return err
		}

		contract, err = s.Roster.CreateContractTx(tx, roster.CreateContractRequest{
			PlayerID:     winning.PlayerID,
			TeamID:       winning.TeamID,
			Salary:       winning.BidAmount,
			ContractType: db.ContractAuction,
			Year:         year,
		})
		if err != nil {
			return err
		}

		if err := tx.First(&player, playerID).Error; err != nil {
			return err
		}
		return tx.First(&team, winning.TeamID).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.KV.HDel(boardKey, strconv.FormatUint(uint64(playerID), 10)); err != nil {
		s.Log.Warn("Clearing bid board failed", zap.Uint("player_id", playerID), zap.Error(err))
	}

	s.Log.Info("Awarded player",
		zap.Uint("player_id", playerID),
		zap.Uint("team_id", winning.TeamID),
		zap.Int("salary", winning.BidAmount))

	return contract, &BidEvent{
		EventID:    uuid.NewString(),
		Type:       EventAward,
		BidID:      winning.ID,
		PlayerID:   playerID,
		PlayerName: player.Name,
		TeamID:     team.ID,
		TeamName:   team.Name,
		BidAmount:  winning.BidAmount,
		At:         time.Now().UTC(),
	}, nil
}
