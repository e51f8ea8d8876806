package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

func TestAnchorRepository_GetAnchor_Found(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewAnchorRepository(newDBFromSQL(db), testMemberID, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT anchor_value FROM anchors WHERE anchor_key = ? AND member_id = ?")).
		WithArgs("device", testMemberID).
		WillReturnRows(sqlmock.NewRows([]string{"anchor_value"}).AddRow("42"))

	value, ok, err := repo.GetAnchor(context.Background(), "device")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", value)
}

func TestAnchorRepository_GetAnchor_Missing(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewAnchorRepository(newDBFromSQL(db), testMemberID, logger.Nop())

	mock.ExpectQuery("SELECT anchor_value FROM anchors").
		WillReturnRows(sqlmock.NewRows([]string{"anchor_value"}))

	value, ok, err := repo.GetAnchor(context.Background(), "device")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestAnchorRepository_GetAnchor_Error(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewAnchorRepository(newDBFromSQL(db), testMemberID, logger.Nop())

	mock.ExpectQuery("SELECT anchor_value FROM anchors").WillReturnError(errors.New("disk I/O error"))

	_, _, err := repo.GetAnchor(context.Background(), "device")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestAnchorRepository_SetAnchor(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewAnchorRepository(newDBFromSQL(db), testMemberID, logger.Nop()).(*anchorRepository)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO anchors (member_id,anchor_key,anchor_value,updated_at) VALUES (?,?,?,?) ON CONFLICT")).
		WithArgs(testMemberID, "config", "abc", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetAnchor(context.Background(), "config", "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnchorRepository_SetAnchor_Error(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewAnchorRepository(newDBFromSQL(db), testMemberID, logger.Nop())

	mock.ExpectExec("INSERT INTO anchors").WillReturnError(errors.New("readonly database"))

	err := repo.SetAnchor(context.Background(), "config", "abc")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, ErrExecutingStatement)
}
