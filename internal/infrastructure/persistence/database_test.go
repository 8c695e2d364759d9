package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/config"
)

// newPingableDatabase wraps a sqlmock connection that records pings
func newPingableDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), GormConfig(gormlogger.Discard))
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestNewDatabase_UnreachableHost(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:         "127.0.0.1",
		Port:         1,
		User:         "hotel",
		Password:     "hotel",
		DBName:       "hotel",
		SSLMode:      "disable",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := NewDatabase(cfg, nil)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestGormConfig(t *testing.T) {
	cfg := GormConfig(gormlogger.Discard)
	assert.True(t, cfg.SkipDefaultTransaction)
	assert.True(t, cfg.TranslateError)
	assert.Equal(t, gormlogger.Discard, cfg.Logger)
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newPingableDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newPingableDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		err := db.Ping()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_PingContext(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newPingableDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, db.PingContext(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping surfaces the driver error", func(t *testing.T) {
		db, mock, mockDB := newPingableDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("server closed the connection"))
		err := db.PingContext(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server closed")
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newPingableDatabase(t)
	defer mockDB.Close()

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(7)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.Equal(t, int64(0), stats.WaitCount)
}

func TestDatabase_Close(t *testing.T) {
	db, mock, mockDB := newPingableDatabase(t)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())

	// the pool refuses work once closed
	assert.Error(t, mockDB.Ping())
}
