// Package testutil wires in-memory backends for service tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/juniorleague/api-server/db"
	"github.com/juniorleague/api-server/pkg/kvstore"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB returns a migrated SQLite database private to the test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "league.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return gdb
}

// KV returns a store served by an embedded Redis, closed with the test.
func KV(t *testing.T) *kvstore.Embedded {
	t.Helper()
	kv, err := kvstore.NewEmbedded()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func Logger() *zap.Logger {
	return zap.NewNop()
}

func Team(t *testing.T, gdb *gorm.DB, name, owner string) db.Team {
	t.Helper()
	team := db.Team{Name: name, Owner: owner}
	require.NoError(t, gdb.Create(&team).Error)
	return team
}

func Player(t *testing.T, gdb *gorm.DB, name, position string) db.Player {
	t.Helper()
	player := db.Player{Name: name, Position: position}
	require.NoError(t, gdb.Create(&player).Error)
	return player
}
