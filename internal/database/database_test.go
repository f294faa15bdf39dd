package database

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"accessdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.Account{}))
	assert.True(t, db.Migrator().HasTable(&models.Message{}))
	assert.True(t, db.Migrator().HasColumn(&models.Account{}, "subject_id"))
	assert.True(t, db.Migrator().HasColumn(&models.Message{}, "read_at"))

	// re-running is a no-op
	require.NoError(t, Migrate(db))
}

func newCapturedLogger(buf *strings.Builder, level logger.LogLevel) *CustomGormLogger {
	return &CustomGormLogger{
		logger: slog.New(slog.NewTextHandler(buf, nil)),
		Config: logger.Config{
			SlowThreshold:             time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	}
}

func TestCustomGormLogger_IgnoresRecordNotFound(t *testing.T) {
	var buf strings.Builder
	l := newCapturedLogger(&buf, logger.Warn)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 0
	}, gorm.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestCustomGormLogger_LogsErrors(t *testing.T) {
	var buf strings.Builder
	l := newCapturedLogger(&buf, logger.Warn)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT broken", 0
	}, errors.New("syntax error"))

	assert.Contains(t, buf.String(), "GORM query error")
	assert.Contains(t, buf.String(), "syntax error")
}

func TestCustomGormLogger_SlowQueryWarning(t *testing.T) {
	var buf strings.Builder
	l := newCapturedLogger(&buf, logger.Warn)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT pg_sleep(1)", 1
	}, nil)

	assert.Contains(t, buf.String(), "GORM slow query")
}

func TestCustomGormLogger_LogMode(t *testing.T) {
	var buf strings.Builder
	l := newCapturedLogger(&buf, logger.Warn)

	silent := l.LogMode(logger.Silent)
	silent.(*CustomGormLogger).Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))

	assert.Empty(t, buf.String())
	// the original logger keeps its level
	assert.Equal(t, logger.Warn, l.Config.LogLevel)
}
