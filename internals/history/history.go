package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/juniorleague/api-server/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoYear = errors.New("could not extract year from filename")

const maxSuggestions = 5

// Invalidator drops derived data cached for a player.
type Invalidator interface {
	InvalidatePlayer(playerID uint) error
}

type Importer struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Cache Invalidator
}

func New(db *gorm.DB, log *zap.Logger, cache Invalidator) *Importer {
	return &Importer{
		DB:    db,
		Log:   log,
		Cache: cache,
	}
}

// ImportFile imports one season spreadsheet; the season comes from the file
// name.
func (im *Importer) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	year, ok := YearFromFilename(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoYear, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := ParseWideCSV(f, year)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	im.Log.Info("Importing auction history",
		zap.String("file", path),
		zap.Int("year", year),
		zap.Strings("teams", sheet.Teams),
		zap.Int("records", len(sheet.Rows)))

	return im.Import(ctx, sheet, year)
}

// Import stores a parsed sheet. Players are matched on last name: a single
// match is reused, several matches are reported as ambiguous and skipped, no
// match creates the player.
func (im *Importer) Import(ctx context.Context, sheet *Sheet, year int) (*ImportStats, error) {
	stats := &ImportStats{
		Year:      year,
		Teams:     sheet.Teams,
		Ambiguous: make([]AmbiguousRow, 0),
	}
	touched := make(map[uint]bool)

	err := im.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teamIDs := make([]uint, len(sheet.Teams))
		for i, name := range sheet.Teams {
			team, created, err := getOrCreateTeam(tx, name)
			if err != nil {
				return err
			}
			if created {
				stats.CreatedTeams++
			}
			teamIDs[i] = team.ID
		}

		for _, row := range sheet.Rows {
			if row.TeamIdx >= len(teamIDs) {
				continue
			}

			var matches []db.Player
			err := tx.Where(db.ContainsLower("name"), db.ContainsPattern(row.LastName)).Order("id").Find(&matches).Error
			if err != nil {
				return err
			}

			var player db.Player
			switch len(matches) {
			case 0:
				player = db.Player{Name: row.Player, Position: row.Position, MLBTeam: "UNK"}
				if err := tx.Create(&player).Error; err != nil {
					return fmt.Errorf("creating player %q: %w", row.Player, err)
				}
				stats.CreatedPlayers++
			case 1:
				player = matches[0]
				stats.MatchedPlayers++
			default:
				suggestions := make([]string, 0, maxSuggestions)
				for _, m := range matches {
					if len(suggestions) == maxSuggestions {
						break
					}
					suggestions = append(suggestions, fmt.Sprintf("%s (ID: %d)", m.Name, m.ID))
				}
				stats.Ambiguous = append(stats.Ambiguous, AmbiguousRow{
					Year:        year,
					Team:        sheet.Teams[row.TeamIdx],
					LastName:    row.LastName,
					FullName:    row.Player,
					Position:    row.Position,
					Salary:      row.Salary,
					Suggestions: suggestions,
				})
				continue
			}

			auction := db.HistoricalAuction{
				PlayerID:     player.ID,
				TeamID:       teamIDs[row.TeamIdx],
				Year:         year,
				Salary:       row.Salary,
				ContractType: db.ContractAuction,
			}
			if err := tx.Create(&auction).Error; err != nil {
				return fmt.Errorf("creating historical auction: %w", err)
			}
			stats.CreatedAuctions++
			touched[player.ID] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for id := range touched {
		if err := im.Cache.InvalidatePlayer(id); err != nil {
			im.Log.Warn("Invalidating cached recommendation failed", zap.Uint("player_id", id), zap.Error(err))
		}
	}

	im.Log.Info("Import summary",
		zap.Int("year", year),
		zap.Int("created_players", stats.CreatedPlayers),
		zap.Int("matched_players", stats.MatchedPlayers),
		zap.Int("created_auctions", stats.CreatedAuctions),
		zap.Int("ambiguous", len(stats.Ambiguous)))

	return stats, nil
}

func getOrCreateTeam(tx *gorm.DB, name string) (*db.Team, bool, error) {
	var team db.Team
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&team).Error
	if err == nil {
		return &team, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// Owner is unknown from the spreadsheet.
	team = db.Team{Name: name, Owner: "TBD"}
	if err := tx.Create(&team).Error; err != nil {
		return nil, false, fmt.Errorf("creating team %q: %w", name, err)
	}
	return &team, true, nil
}

// KeeperCandidates finds players a team bought in more than one season,
// most seasons first.
func (im *Importer) KeeperCandidates(ctx context.Context) ([]Keeper, error) {
	keepers := make([]Keeper, 0)
	err := im.DB.WithContext(ctx).Table("historical_auctions AS h").
		Select("h.player_id, p.name AS player_name, h.team_id, t.name AS team_name, COUNT(*) AS years, MIN(h.year) AS first_year, MAX(h.year) AS last_year").
		Joins("JOIN players p ON p.id = h.player_id").
		Joins("JOIN teams t ON t.id = h.team_id").
		Group("h.player_id, p.name, h.team_id, t.name").
		Having("COUNT(*) > 1").
		Order("years DESC, h.player_id").
		Scan(&keepers).Error
	if err != nil {
		return nil, err
	}
	return keepers, nil
}

// DuplicateNames lists player names shared by more than one player record.
func (im *Importer) DuplicateNames(ctx context.Context) ([]DuplicateName, error) {
	names := make([]DuplicateName, 0)
	err := im.DB.WithContext(ctx).Model(&db.Player{}).
		Select("name, COUNT(*) AS count").
		Group("name").
		Having("COUNT(*) > 1").
		Order("name").
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// TeamSpending reports players bought and dollars spent per team and season.
func (im *Importer) TeamSpending(ctx context.Context) ([]TeamSeason, error) {
	seasons := make([]TeamSeason, 0)
	err := im.DB.WithContext(ctx).Table("historical_auctions AS h").
		Select("h.team_id, t.name AS team_name, h.year, COUNT(*) AS players, SUM(h.salary) AS total").
		Joins("JOIN teams t ON t.id = h.team_id").
		Group("h.team_id, t.name, h.year").
		Order("t.name, h.year").
		Scan(&seasons).Error
	if err != nil {
		return nil, err
	}
	return seasons, nil
}

type auctionRow struct {
	PlayerID   uint
	PlayerName string
	TeamID     uint
	TeamName   string
	Year       int
	Salary     int
}

// SalaryChanges finds players a team bought in several seasons at different
// prices, biggest move first.
func (im *Importer) SalaryChanges(ctx context.Context) ([]SalaryChange, error) {
	var rows []auctionRow
	err := im.DB.WithContext(ctx).Table("historical_auctions AS h").
		Select("h.player_id, p.name AS player_name, h.team_id, t.name AS team_name, h.year, h.salary").
		Joins("JOIN players p ON p.id = h.player_id").
		Joins("JOIN teams t ON t.id = h.team_id").
		Order("h.player_id, h.team_id, h.year, h.salary").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	changes := make([]SalaryChange, 0)
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].PlayerID == rows[start].PlayerID && rows[end].TeamID == rows[start].TeamID {
			end++
		}

		first, last := rows[start], rows[end-1]
		if end-start > 1 && first.Salary != last.Salary {
			changes = append(changes, SalaryChange{
				PlayerID:    first.PlayerID,
				PlayerName:  first.PlayerName,
				TeamID:      first.TeamID,
				TeamName:    first.TeamName,
				FirstYear:   first.Year,
				FirstSalary: first.Salary,
				LastYear:    last.Year,
				LastSalary:  last.Salary,
				Change:      last.Salary - first.Salary,
			})
		}
		start = end
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return abs(changes[i].Change) > abs(changes[j].Change)
	})
	return changes, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
