package players

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/auction"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNameRequired     = errors.New("player name is required")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrYearRequired     = errors.New("projection year is required")
	ErrNothingToProject = errors.New("projection needs a projected value or projected stats")
)

// Invalidator drops derived data cached for a player.
type Invalidator interface {
	InvalidatePlayer(playerID uint) error
}

type PlayerService struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Cache Invalidator
}

func New(db *gorm.DB, log *zap.Logger, cache Invalidator) *PlayerService {
	return &PlayerService{
		DB:    db,
		Log:   log,
		Cache: cache,
	}
}

func (ps *PlayerService) Create(ctx context.Context, req CreatePlayerRequest) (*db.Player, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	player := db.Player{
		Name:        name,
		Position:    strings.TrimSpace(req.Position),
		MLBTeam:     strings.TrimSpace(req.MLBTeam),
		FangraphsID: req.FangraphsID,
	}
	if err := ps.DB.WithContext(ctx).Create(&player).Error; err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return &player, nil
}

// Search returns players whose name contains query, ignoring case. An empty
// query lists every player.
func (ps *PlayerService) Search(ctx context.Context, query string) ([]db.Player, error) {
	players := make([]db.Player, 0)

	q := ps.DB.WithContext(ctx).Order("name").Order("id")
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(db.ContainsLower("name"), db.ContainsPattern(query))
	}
	if err := q.Find(&players).Error; err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	return players, nil
}

func (ps *PlayerService) Get(ctx context.Context, id uint) (*db.Player, error) {
	var player db.Player
	err := ps.DB.WithContext(ctx).First(&player, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// UpsertProjection stores the projection for (player, year), replacing an
// earlier one for the same season.
func (ps *PlayerService) UpsertProjection(ctx context.Context, playerID uint, req ProjectionRequest) (*db.ProjectedStats, error) {
	if req.Year == 0 {
		return nil, ErrYearRequired
	}
	if _, err := ps.Get(ctx, playerID); err != nil {
		return nil, err
	}

	value := req.ProjectedValue
	if value == nil {
		var derived float64
		switch {
		case req.isPitcher():
			derived = auction.PitcherValue(intOr0(req.Wins), floatOr0(req.ERA), intOr0(req.Strikeouts), intOr0(req.Saves)).Round(2).InexactFloat64()
		case req.isHitter():
			derived = auction.HitterValue(intOr0(req.HomeRuns), intOr0(req.RBIs), intOr0(req.StolenBases), floatOr0(req.BattingAvg)).Round(2).InexactFloat64()
		default:
			return nil, ErrNothingToProject
		}
		value = &derived
	}

	projection := db.ProjectedStats{
		PlayerID:       playerID,
		Year:           req.Year,
		BattingAvg:     req.BattingAvg,
		HomeRuns:       req.HomeRuns,
		RBIs:           req.RBIs,
		StolenBases:    req.StolenBases,
		Wins:           req.Wins,
		ERA:            req.ERA,
		Strikeouts:     req.Strikeouts,
		Saves:          req.Saves,
		ProjectedValue: value,
		Source:         req.Source,
	}

	err := ps.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"batting_avg", "home_runs", "rbis", "stolen_bases",
			"wins", "era", "strikeouts", "saves", "projected_value", "source",
		}),
	}).Create(&projection).Error
	if err != nil {
		return nil, fmt.Errorf("saving projection: %w", err)
	}

	if err := ps.Cache.InvalidatePlayer(playerID); err != nil {
		ps.Log.Warn("Invalidating cached recommendation failed", zap.Uint("player_id", playerID), zap.Error(err))
	}

	return &projection, nil
}
