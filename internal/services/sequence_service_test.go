// internal/services/sequence_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/madatrans/license-backend/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	require.NoError(t, err)

	return db, mock
}

// beginTx opens an explicit transaction on the mock, mirroring how Next is
// always called inside the caller's transaction in production.
func beginTx(t *testing.T, db *gorm.DB, mock sqlmock.Sqlmock) *gorm.DB {
	t.Helper()
	mock.ExpectBegin()
	tx := db.Begin()
	require.NoError(t, tx.Error)
	return tx
}

func expectCounter(mock sqlmock.Sqlmock, name string, value int64) {
	mock.ExpectExec(`INSERT INTO "sequence_counters"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM "sequence_counters"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}).
			AddRow(name, value, time.Now()))
	mock.ExpectExec(`UPDATE "sequence_counters"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestSequenceNextIncrements(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	expectCounter(mock, "TXN:20260901", 5)

	value, err := svc.Next(tx, "TXN:20260901")
	require.NoError(t, err)
	assert.Equal(t, int64(6), value)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNextSeedsMissingCounter(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	// The seed insert hits an existing row (zero rows affected), then the
	// locking read picks up whatever the winning transaction committed.
	mock.ExpectExec(`INSERT INTO "sequence_counters"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "sequence_counters"`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}).
			AddRow("app:ATN:NL:2026", 7, time.Now()))
	mock.ExpectExec(`UPDATE "sequence_counters"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	value, err := svc.Next(tx, "app:ATN:NL:2026")
	require.NoError(t, err)
	assert.Equal(t, int64(8), value)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextApplicationNumberFormat(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	expectCounter(mock, "app:ATN:NL:2026", 41)

	number, err := svc.NextApplicationNumber(tx, "ATN", models.ApplicationTypeNewLicense, now)
	require.NoError(t, err)
	assert.Equal(t, "ATN-NL-2026-0042", number)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextTransactionNumberFormat(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	expectCounter(mock, "TXN:20260901", 0)

	number, err := svc.NextTransactionNumber(tx, now)
	require.NoError(t, err)
	assert.Equal(t, "TXN202609010001", number)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextReceiptAndOrderNumberFormat(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	expectCounter(mock, "RCP:20260901", 12)
	receipt, err := svc.NextReceiptNumber(tx, now)
	require.NoError(t, err)
	assert.Equal(t, "RCP202609010013", receipt)

	expectCounter(mock, "CO:20260901", 0)
	order, err := svc.NextOrderNumber(tx, now)
	require.NoError(t, err)
	assert.Equal(t, "CO202609010001", order)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextLicenseNumberFormat(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSequenceService(db)
	tx := beginTx(t, db, mock)

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	expectCounter(mock, "lic:ATN:2026", 122)

	number, err := svc.NextLicenseNumber(tx, "ATN", now)
	require.NoError(t, err)
	assert.Equal(t, "ATN2026000123", number)

	mock.ExpectCommit()
	require.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
