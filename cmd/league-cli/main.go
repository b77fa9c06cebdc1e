package main

import (
	"fmt"
	"os"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/internals/auction"
	"github.com/juniorleague/api-server/internals/history"
	"github.com/juniorleague/api-server/pkg/conf"
	"github.com/juniorleague/api-server/pkg/kvstore"
	"github.com/juniorleague/api-server/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var confDir string

var rootCmd = &cobra.Command{
	Use:          "league-cli",
	Short:        "Maintenance tasks for the league database",
	SilenceUsage: true,
}

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import historical auction spreadsheets",
	Long: `Imports one CSV export per season. The season is read from the file
name, e.g. JuniorLeague2025.csv. Rows whose last name matches several
players are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var keepersCmd = &cobra.Command{
	Use:   "keepers",
	Short: "List players a team bought in more than one season",
	Args:  cobra.NoArgs,
	RunE:  runKeepers,
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List player names shared by several player records",
	Args:  cobra.NoArgs,
	RunE:  runDuplicates,
}

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Show each team's auction spend per season",
	Args:  cobra.NoArgs,
	RunE:  runSpending,
}

var salaryChangesCmd = &cobra.Command{
	Use:   "salary-changes",
	Short: "List the largest salary moves for players kept by the same team",
	Args:  cobra.NoArgs,
	RunE:  runSalaryChanges,
}

var changeLimit int

func init() {
	rootCmd.PersistentFlags().StringVarP(&confDir, "config", "c", ".", "directory holding conf.yaml")
	salaryChangesCmd.Flags().IntVarP(&changeLimit, "limit", "n", 30, "number of changes to print, 0 for all")
	rootCmd.AddCommand(importCmd, keepersCmd, duplicatesCmd, spendingCmd, salaryChangesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newImporter() (*history.Importer, *zap.Logger, error) {
	cfg, err := conf.Load(confDir)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	gdb, err := db.Open(cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	var kv kvstore.KVStore
	if cfg.Redis.Enabled {
		kv, err = kvstore.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
	} else if kv, err = kvstore.NewEmbedded(); err != nil {
		return nil, nil, err
	}

	cache := auction.New(kv, gdb, log, cfg.Recommendation.CacheTTL)
	return history.New(gdb, log, cache), log, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	im, log, err := newImporter()
	if err != nil {
		return err
	}
	defer log.Sync()

	out := cmd.OutOrStdout()
	var ambiguous []history.AmbiguousRow
	for _, path := range args {
		stats, err := im.ImportFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d: %d teams, %d new players, %d matched, %d auctions, %d ambiguous\n",
			stats.Year, len(stats.Teams), stats.CreatedPlayers, stats.MatchedPlayers,
			stats.CreatedAuctions, len(stats.Ambiguous))
		ambiguous = append(ambiguous, stats.Ambiguous...)
	}

	if len(ambiguous) > 0 {
		fmt.Fprintln(out, "\nNeeds manual review:")
		for _, a := range ambiguous {
			fmt.Fprintf(out, "  %d %s: %s (%s, $%d) could be %v\n", a.Year, a.Team, a.FullName, a.Position, a.Salary, a.Suggestions)
		}
	}
	return nil
}

func runKeepers(cmd *cobra.Command, args []string) error {
	im, log, err := newImporter()
	if err != nil {
		return err
	}
	defer log.Sync()

	keepers, err := im.KeeperCandidates(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(keepers) == 0 {
		fmt.Fprintln(out, "No keeper candidates found")
		return nil
	}
	for _, k := range keepers {
		fmt.Fprintf(out, "%-25s %-20s %d seasons (%d-%d)\n", k.PlayerName, k.TeamName, k.Years, k.FirstYear, k.LastYear)
	}
	return nil
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	im, log, err := newImporter()
	if err != nil {
		return err
	}
	defer log.Sync()

	names, err := im.DuplicateNames(cmd.Context())
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", n.Name, n.Count)
	}
	return nil
}

func runSpending(cmd *cobra.Command, args []string) error {
	im, log, err := newImporter()
	if err != nil {
		return err
	}
	defer log.Sync()

	seasons, err := im.TeamSpending(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	team := ""
	for _, s := range seasons {
		if s.TeamName != team {
			team = s.TeamName
			fmt.Fprintf(out, "\n%s\n", team)
		}
		fmt.Fprintf(out, "  %d: %2d players  $%d\n", s.Year, s.Players, s.Total)
	}
	return nil
}

func runSalaryChanges(cmd *cobra.Command, args []string) error {
	im, log, err := newImporter()
	if err != nil {
		return err
	}
	defer log.Sync()

	changes, err := im.SalaryChanges(cmd.Context())
	if err != nil {
		return err
	}
	if changeLimit > 0 && len(changes) > changeLimit {
		changes = changes[:changeLimit]
	}
	for _, c := range changes {
		fmt.Fprintf(cmd.OutOrStdout(), "%-25s %-20s $%d (%d) -> $%d (%d)  %+d\n",
			c.PlayerName, c.TeamName, c.FirstSalary, c.FirstYear, c.LastSalary, c.LastYear, c.Change)
	}
	return nil
}
