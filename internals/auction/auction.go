package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/pkg/kvstore"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrPlayerNameRequired = errors.New("Please enter a player name")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAmbiguousPlayer    = errors.New("player name matches more than one player")
)

// AmbiguousPlayerError carries the players a search matched so the caller
// can ask for a more specific name.
type AmbiguousPlayerError struct {
	Query      string
	Candidates []Candidate
}

func (e *AmbiguousPlayerError) Error() string {
	return fmt.Sprintf("%q matches %d players", e.Query, len(e.Candidates))
}

func (e *AmbiguousPlayerError) Is(target error) bool {
	return target == ErrAmbiguousPlayer
}

type AuctionService struct {
	KV       kvstore.KVStore
	DB       *gorm.DB
	Log      *zap.Logger
	CacheTTL time.Duration

	flight singleflight.Group
}

func New(kv kvstore.KVStore, db *gorm.DB, log *zap.Logger, cacheTTL time.Duration) *AuctionService {
	return &AuctionService{
		KV:       kv,
		DB:       db,
		Log:      log,
		CacheTTL: cacheTTL,
	}
}

func cacheKey(playerID uint) string {
	return "recommendation_" + strconv.FormatUint(uint64(playerID), 10)
}

// Recommend resolves playerName to a single player and returns its bid
// recommendation, served from the KV cache when present.
func (s *AuctionService) Recommend(ctx context.Context, playerName string) (*Recommendation, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, ErrPlayerNameRequired
	}

	player, err := s.resolvePlayer(ctx, playerName)
	if err != nil {
		return nil, err
	}

	if rec, ok := s.cached(player.ID); ok {
		return rec, nil
	}

	v, err, _ := s.flight.Do(cacheKey(player.ID), func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), player)
	})
	if err != nil {
		return nil, err
	}
	rec := *v.(*Recommendation)
	return &rec, nil
}

// compute builds a fresh recommendation for player and caches it. Concurrent
// requests for the same player share one computation.
func (s *AuctionService) compute(ctx context.Context, player *db.Player) (*Recommendation, error) {
	var salaries []int
	err := s.DB.WithContext(ctx).Model(&db.HistoricalAuction{}).
		Where("player_id = ?", player.ID).
		Order("year").
		Pluck("salary", &salaries).Error
	if err != nil {
		return nil, fmt.Errorf("loading auction history: %w", err)
	}

	var projection db.ProjectedStats
	var projected *decimal.Decimal
	err = s.DB.WithContext(ctx).
		Where("player_id = ? AND projected_value IS NOT NULL", player.ID).
		Order("year DESC").
		First(&projection).Error
	switch {
	case err == nil:
		pv := decimal.NewFromFloat(*projection.ProjectedValue)
		projected = &pv
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("loading projection: %w", err)
	}

	rec := Calculate(player.Name, salaries, projected)
	rec.PlayerID = player.ID

	s.Log.Debug("Computed bid recommendation",
		zap.Uint("player_id", player.ID),
		zap.Int("recommended_bid", rec.RecommendedBid),
		zap.String("confidence", string(rec.Confidence)),
		zap.Int("sample_size", rec.SampleSize))

	s.store(rec)
	return &rec, nil
}

// InvalidatePlayer drops a cached recommendation after its inputs change.
func (s *AuctionService) InvalidatePlayer(playerID uint) error {
	return s.KV.Delete(cacheKey(playerID))
}

func (s *AuctionService) resolvePlayer(ctx context.Context, name string) (*db.Player, error) {
	lower := strings.ToLower(name)

	var exact []db.Player
	err := s.DB.WithContext(ctx).Where("LOWER(name) = ?", lower).Order("id").Find(&exact).Error
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) > 1 {
		return nil, ambiguous(name, exact)
	}

	var partial []db.Player
	err = s.DB.WithContext(ctx).Where(db.ContainsLower("name"), db.ContainsPattern(name)).Order("id").Find(&partial).Error
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	switch len(partial) {
	case 0:
		return nil, ErrPlayerNotFound
	case 1:
		return &partial[0], nil
	default:
		return nil, ambiguous(name, partial)
	}
}

func ambiguous(query string, players []db.Player) error {
	candidates := make([]Candidate, 0, len(players))
	for _, p := range players {
		candidates = append(candidates, Candidate{ID: p.ID, Name: p.Name, Position: p.Position})
	}
	return &AmbiguousPlayerError{Query: query, Candidates: candidates}
}

func (s *AuctionService) cached(playerID uint) (*Recommendation, bool) {
	raw, err := s.KV.Get(cacheKey(playerID))
	if err != nil {
		if !errors.Is(err, kvstore.Nil) {
			s.Log.Warn("Reading cached recommendation failed", zap.Uint("player_id", playerID), zap.Error(err))
		}
		return nil, false
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.Log.Warn("Discarding corrupt cached recommendation", zap.Uint("player_id", playerID), zap.Error(err))
		return nil, false
	}
	return &rec, true
}

func (s *AuctionService) store(rec Recommendation) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.Log.Warn("Encoding recommendation for cache failed", zap.Error(err))
		return
	}
	if err := s.KV.SetEx(cacheKey(rec.PlayerID), data, s.CacheTTL); err != nil {
		s.Log.Warn("Caching recommendation failed", zap.Uint("player_id", rec.PlayerID), zap.Error(err))
	}
}
