package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (PresenceRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewPresenceRepository(db), mock
}

func TestPresenceRepository_DeleteStale(t *testing.T) {
	repo, mock := setupMockDB(t)

	cutoff := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `user_presences` WHERE last_activity_at < ?")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := repo.DeleteStale(cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPresenceRepository_DeleteExpiredTyping(t *testing.T) {
	repo, mock := setupMockDB(t)

	at := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `typing_indicators` WHERE expires_at <= ?")).
		WithArgs(at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.DeleteExpiredTyping(at)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPresenceRepository_Touch(t *testing.T) {
	repo, mock := setupMockDB(t)

	at := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `user_presences` SET `last_activity_at`=? WHERE user_id = ? AND workspace_id = ?")).
		WithArgs(at, uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Touch(1, 2, at)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
