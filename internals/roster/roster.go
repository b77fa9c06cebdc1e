package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/juniorleague/api-server/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTeamFieldsRequired  = errors.New("Please fill in both fields")
	ErrTeamExists          = errors.New("team already exists")
	ErrTeamNotFound        = errors.New("team not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidContractType = errors.New("invalid contract type")
	ErrInvalidSalary       = errors.New("salary must be positive")
	ErrYearRequired        = errors.New("contract year is required")
	ErrRosterViolation     = errors.New("roster add not allowed")
)

// RosterViolationError lists every rule a roster add broke.
type RosterViolationError struct {
	Reasons []string
}

func (e *RosterViolationError) Error() string {
	return "roster add not allowed: " + strings.Join(e.Reasons, "; ")
}

func (e *RosterViolationError) Is(target error) bool {
	return target == ErrRosterViolation
}

type RosterService struct {
	DB     *gorm.DB
	Log    *zap.Logger
	Budget int
}

func New(db *gorm.DB, log *zap.Logger, budget int) *RosterService {
	return &RosterService{
		DB:     db,
		Log:    log,
		Budget: budget,
	}
}

// RegisterTeam creates a team. Names are unique ignoring case.
func (rs *RosterService) RegisterTeam(ctx context.Context, req RegisterTeamRequest) (*db.Team, error) {
	name := strings.TrimSpace(req.Name)
	owner := strings.TrimSpace(req.Owner)
	if name == "" || owner == "" {
		return nil, ErrTeamFieldsRequired
	}

	var count int64
	err := rs.DB.WithContext(ctx).Model(&db.Team{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrTeamExists
	}

	team := db.Team{Name: name, Owner: owner}
	if err := insertTeam(rs.DB.WithContext(ctx), &team); err != nil {
		return nil, err
	}

	rs.Log.Info("Adding team", zap.String("team_name", team.Name), zap.String("owner_name", team.Owner))
	return &team, nil
}

// insertTeam reports a registration that lost the race for its name as
// ErrTeamExists.
func insertTeam(tx *gorm.DB, team *db.Team) error {
	err := tx.Create(team).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTeamExists
	}

	var count int64
	if cerr := tx.Model(&db.Team{}).Where("LOWER(name) = ?", strings.ToLower(team.Name)).Count(&count).Error; cerr == nil && count > 0 {
		return ErrTeamExists
	}
	return fmt.Errorf("creating team: %w", err)
}

func (rs *RosterService) ListTeams(ctx context.Context) ([]db.Team, error) {
	teams := make([]db.Team, 0)
	if err := rs.DB.WithContext(ctx).Order("id").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (rs *RosterService) GetTeam(ctx context.Context, id uint) (*db.Team, error) {
	return getTeam(rs.DB.WithContext(ctx), id)
}

func getTeam(tx *gorm.DB, id uint) (*db.Team, error) {
	var team db.Team
	err := tx.First(&team, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func teamContracts(tx *gorm.DB, teamID uint) ([]db.Contract, error) {
	contracts := make([]db.Contract, 0)
	if err := tx.Where("team_id = ?", teamID).Order("id").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func totalSalary(contracts []db.Contract) int {
	total := 0
	for _, c := range contracts {
		total += c.Salary
	}
	return total
}

// CommittedSalary is the salary already owed by the team's contracts.
func (rs *RosterService) CommittedSalary(tx *gorm.DB, teamID uint) (int, error) {
	contracts, err := teamContracts(tx, teamID)
	if err != nil {
		return 0, err
	}
	return totalSalary(contracts), nil
}

// ValidateRosterAdd checks a proposed contract against the budget and the
// player's current roster. playerTeam is the team the player is rostered on,
// nil for a free agent.
func (rs *RosterService) ValidateRosterAdd(team db.Team, player db.Player, playerTeam *db.Team, salary int, contracts []db.Contract) Validation {
	v := Validation{Valid: true, Reasons: make([]string, 0)}

	withNew := totalSalary(contracts) + salary
	if withNew > rs.Budget {
		v.Valid = false
		v.Reasons = append(v.Reasons, fmt.Sprintf("Would exceed budget: $%d > $%d", withNew, rs.Budget))
	}

	if player.RosterTeamID != nil && *player.RosterTeamID != team.ID {
		v.Valid = false
		name := "another team"
		if playerTeam != nil {
			name = playerTeam.Name
		}
		v.Reasons = append(v.Reasons, fmt.Sprintf("Player is on %s's roster", name))
	}

	return v
}

func (rs *RosterService) CreateContract(ctx context.Context, req CreateContractRequest) (*db.Contract, error) {
	var contract *db.Contract
	err := rs.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		contract, err = rs.CreateContractTx(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// CreateContractTx validates and stores a contract inside tx and moves the
// player onto the team's roster.
func (rs *RosterService) CreateContractTx(tx *gorm.DB, req CreateContractRequest) (*db.Contract, error) {
	if !contractTypes[req.ContractType] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContractType, req.ContractType)
	}
	if req.Year <= 0 {
		return nil, ErrYearRequired
	}

	salary := req.Salary
	if salary == 0 && req.ContractType == db.ContractRotation && req.RotationRound != nil {
		salary = rotationSalaries[*req.RotationRound]
	}
	if salary <= 0 {
		return nil, ErrInvalidSalary
	}

	team, err := getTeam(tx, req.TeamID)
	if err != nil {
		return nil, err
	}

	var player db.Player
	err = tx.First(&player, req.PlayerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	var playerTeam *db.Team
	if player.RosterTeamID != nil && *player.RosterTeamID != team.ID {
		playerTeam, err = getTeam(tx, *player.RosterTeamID)
		if err != nil && !errors.Is(err, ErrTeamNotFound) {
			return nil, err
		}
	}

	contracts, err := teamContracts(tx, team.ID)
	if err != nil {
		return nil, err
	}

	if v := rs.ValidateRosterAdd(*team, player, playerTeam, salary, contracts); !v.Valid {
		return nil, &RosterViolationError{Reasons: v.Reasons}
	}

	contract := db.Contract{
		PlayerID:       player.ID,
		TeamID:         team.ID,
		Salary:         salary,
		ContractType:   req.ContractType,
		Year:           req.Year,
		YearsRemaining: req.YearsRemaining,
		RotationRound:  req.RotationRound,
		Notes:          req.Notes,
	}
	if err := tx.Create(&contract).Error; err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}

	if err := tx.Model(&db.Player{}).Where("id = ?", player.ID).Update("roster_team_id", team.ID).Error; err != nil {
		return nil, fmt.Errorf("updating roster: %w", err)
	}

	return &contract, nil
}

type contractRow struct {
	db.Contract
	PlayerName     string
	PlayerPosition string
}

func (rs *RosterService) contractsWithPlayers(ctx context.Context, teamID uint) ([]contractRow, error) {
	rows := make([]contractRow, 0)
	err := rs.DB.WithContext(ctx).Table("contracts").
		Select("contracts.*, players.name AS player_name, players.position AS player_position").
		Joins("JOIN players ON players.id = contracts.player_id").
		Where("contracts.team_id = ?", teamID).
		Order("contracts.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (rs *RosterService) TeamInfo(ctx context.Context, teamID uint) (*TeamInfo, error) {
	team, err := rs.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	rows, err := rs.contractsWithPlayers(ctx, teamID)
	if err != nil {
		return nil, err
	}

	info := &TeamInfo{
		TeamID:   team.ID,
		TeamName: team.Name,
		Owner:    team.Owner,
		Players:  make([]RosterPlayer, 0, len(rows)),
	}

	for _, r := range rows {
		info.TotalSalary += r.Salary
		switch r.ContractType {
		case db.ContractAuctionKeeper:
			info.ContractBreakdown.Keepers++
		case db.ContractInSeason:
			info.ContractBreakdown.InSeason++
		case db.ContractRotation:
			info.ContractBreakdown.Rotation++
		case db.ContractAuction:
			info.ContractBreakdown.Auction++
		}
		info.Players = append(info.Players, RosterPlayer{
			PlayerID:       r.PlayerID,
			Name:           r.PlayerName,
			Position:       r.PlayerPosition,
			Salary:         r.Salary,
			ContractType:   r.ContractType,
			YearsRemaining: r.YearsRemaining,
		})
	}

	info.RemainingBudget = rs.Budget - info.TotalSalary
	info.BudgetPercentageUsed = float64(info.TotalSalary) / float64(rs.Budget) * 100
	info.RosterSize = len(info.Players)

	return info, nil
}

func (rs *RosterService) RemainingBudget(ctx context.Context, teamID uint) (*AuctionBudget, error) {
	if _, err := rs.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	committed, err := rs.CommittedSalary(rs.DB.WithContext(ctx), teamID)
	if err != nil {
		return nil, err
	}

	remaining := rs.Budget - committed
	return &AuctionBudget{
		TotalBudget:     rs.Budget,
		CommittedSalary: committed,
		RemainingBudget: remaining,
		CanBid:          remaining > 0,
	}, nil
}

// ContractTimeline lists the team's contracts by the season they expire in.
func (rs *RosterService) ContractTimeline(ctx context.Context, teamID uint) ([]TimelineEntry, error) {
	if _, err := rs.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	rows, err := rs.contractsWithPlayers(ctx, teamID)
	if err != nil {
		return nil, err
	}

	timeline := make([]TimelineEntry, 0, len(rows))
	for _, r := range rows {
		timeline = append(timeline, TimelineEntry{
			PlayerID:       r.PlayerID,
			PlayerName:     r.PlayerName,
			Salary:         r.Salary,
			YearsRemaining: r.YearsRemaining,
			ExpiresYear:    r.Year + r.YearsRemaining,
			ContractType:   r.ContractType,
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].ExpiresYear < timeline[j].ExpiresYear
	})
	return timeline, nil
}
