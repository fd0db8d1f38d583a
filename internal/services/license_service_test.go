// internal/services/license_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madatrans/license-backend/internal/models"
)

func TestIssueLicenseReturnsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewLicenseService(db, NewSequenceService(db), NewAuditService(db), 5)

	appID := uuid.New()
	licID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "licenses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "license_number", "created_from_application_id"}).
			AddRow(licID.String(), "ATN2026000001", appID.String()))

	license, err := svc.IssueLicense(appID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "ATN2026000001", license.LicenseNumber)
	assert.Equal(t, appID, license.CreatedFromApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpiryFor(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewLicenseService(db, NewSequenceService(db), NewAuditService(db), 5)

	issued := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	standard := svc.expiryFor(models.ApplicationTypeNewLicense, issued)
	require.NotNil(t, standard)
	assert.Equal(t, 2031, standard.Year())

	temp := svc.expiryFor(models.ApplicationTypeTemporaryLicense, issued)
	require.NotNil(t, temp)
	assert.Equal(t, time.December, temp.Month())
	assert.Equal(t, 2026, temp.Year())

	learner := svc.expiryFor(models.ApplicationTypeLearnersPermit, issued)
	require.NotNil(t, learner)
	assert.Equal(t, 2027, learner.Year())
}
