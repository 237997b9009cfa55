package database

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/model"
)

func TestDialector_UnsupportedDriver(t *testing.T) {
	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDialector_Names(t *testing.T) {
	for driver, name := range map[string]string{"mysql": "mysql", "postgres": "postgres", "sqlite": "sqlite"} {
		d, err := Dialector(&config.DatabaseConfig{Driver: driver, Host: "localhost", Port: 1, Database: "x"})
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}
}

func TestNewDB_SQLiteMigratesAndTranslatesErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.db")
	db, err := NewDB(&config.DatabaseConfig{Driver: "sqlite", Database: path, AutoMigrate: true})
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	email := "dup@example.com"
	require.NoError(t, db.Create(&model.User{Username: "a", Email: &email}).Error)
	err = db.Create(&model.User{Username: "b", Email: &email}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestNewRedisAndRedsync(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(&config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)})
	require.NoError(t, err)
	defer rdb.Close()

	rs := NewRedsync(rdb)
	ctx := context.Background()

	m1 := rs.NewMutex("lock:test", redsync.WithExpiry(time.Second), redsync.WithTries(1))
	require.NoError(t, m1.LockContext(ctx))

	m2 := rs.NewMutex("lock:test", redsync.WithExpiry(time.Second), redsync.WithTries(1))
	assert.Error(t, m2.LockContext(ctx))

	ok, err := m1.UnlockContext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, m2.LockContext(ctx))
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	p, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return p
}
