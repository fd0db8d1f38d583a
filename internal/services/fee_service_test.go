// internal/services/fee_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madatrans/license-backend/internal/models"
)

func testSchedule() FeeSchedule {
	schedule := make(FeeSchedule)
	for _, fee := range models.DefaultFeeSchedule() {
		schedule[fee.FeeType] = fee.Amount
	}
	return schedule
}

func testResult(r models.TestResult) *models.TestResult {
	return &r
}

func TestRequiredFeesNewLicenseLight(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeNewLicense,
		LicenseCategory: models.CategoryB,
		Status:          models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypePracticalTestLight, Amount: 10000},
	}, lines)
	assert.Equal(t, int64(10000), TotalAmount(lines))
}

func TestRequiredFeesNewLicenseHeavy(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeNewLicense,
		LicenseCategory: models.CategoryC,
		Status:          models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypePracticalTestHeavy, Amount: 15000},
	}, lines)
}

func TestRequiredFeesLearnersPermitTheoryOnly(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeLearnersPermit,
		LicenseCategory: models.CategoryLearners1,
		Status:          models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypeTheoryTestLight, Amount: 10000},
	}, lines)
}

func TestRequiredFeesCardStageAfterPass(t *testing.T) {
	app := &models.Application{
		ApplicationType:      models.ApplicationTypeNewLicense,
		LicenseCategory:      models.CategoryB,
		Status:               models.ApplicationStatusCardPaymentPending,
		TestPaymentCompleted: true,
		TestResult:           testResult(models.TestResultPassed),
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypeNewLicense, Amount: 38000},
	}, lines)
}

func TestRequiredFeesNothingAfterCardPaid(t *testing.T) {
	app := &models.Application{
		ApplicationType:      models.ApplicationTypeNewLicense,
		LicenseCategory:      models.CategoryB,
		Status:               models.ApplicationStatusApproved,
		TestPaymentCompleted: true,
		CardPaymentCompleted: true,
		TestResult:           testResult(models.TestResultPassed),
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRequiredFeesNothingAfterFail(t *testing.T) {
	app := &models.Application{
		ApplicationType:      models.ApplicationTypeNewLicense,
		LicenseCategory:      models.CategoryB,
		Status:               models.ApplicationStatusFailed,
		TestPaymentCompleted: true,
		TestResult:           testResult(models.TestResultFailed),
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRequiredFeesOnHoldRetest(t *testing.T) {
	app := &models.Application{
		ApplicationType:      models.ApplicationTypeNewLicense,
		LicenseCategory:      models.CategoryB,
		Status:               models.ApplicationStatusOnHold,
		TestPaymentCompleted: true,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypePracticalTestLight, Amount: 10000},
	}, lines, "retest owes the test fee again")
}

func TestRequiredFeesLearnersPermitHeavy(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeLearnersPermit,
		LicenseCategory: models.CategoryC,
		Status:          models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Equal(t, []FeeLine{
		{FeeType: models.FeeTypeTheoryTestHeavy, Amount: 15000},
	}, lines)
}

func TestRequiredFeesSingleTypes(t *testing.T) {
	cases := map[models.ApplicationType]models.FeeType{
		models.ApplicationTypeRenewal:               models.FeeTypeRenewal,
		models.ApplicationTypeReplacement:           models.FeeTypeReplacement,
		models.ApplicationTypeTemporaryLicense:      models.FeeTypeTemporaryLicense,
		models.ApplicationTypeInternationalPermit:   models.FeeTypeInternationalPermit,
		models.ApplicationTypeProfessionalLicense:   models.FeeTypeProfessionalLicense,
		models.ApplicationTypeForeignConversion:     models.FeeTypeForeignConversion,
		models.ApplicationTypeDriversLicenseCapture: models.FeeTypeDriversLicenseCapture,
		models.ApplicationTypeLearnersPermitCapture: models.FeeTypeLearnersPermitCapture,
	}

	schedule := testSchedule()
	for appType, feeType := range cases {
		app := &models.Application{
			ApplicationType: appType,
			LicenseCategory: models.CategoryB,
			Status:          models.ApplicationStatusSubmitted,
		}
		lines, err := RequiredFees(app, schedule)
		require.NoError(t, err, "%s", appType)
		require.Len(t, lines, 1, "%s", appType)
		assert.Equal(t, feeType, lines[0].FeeType)
	}
}

func TestRequiredFeesSinglePaid(t *testing.T) {
	app := &models.Application{
		ApplicationType:      models.ApplicationTypeRenewal,
		LicenseCategory:      models.CategoryB,
		Status:               models.ApplicationStatusApproved,
		CardPaymentCompleted: true,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Empty(t, lines, "a paid renewal owes nothing")

	// The test-stage flag is meaningless for single-payment types and must
	// not resurrect the fee.
	app.TestPaymentCompleted = false
	lines, err = RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRequiredFeesTemporaryAmount(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeTemporaryLicense,
		LicenseCategory: models.CategoryB,
		Status:          models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(10000), lines[0].Amount)
}

func TestRequiredFeesTerminal(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeRenewal,
		LicenseCategory: models.CategoryB,
		Status:          models.ApplicationStatusCancelled,
	}

	lines, err := RequiredFees(app, testSchedule())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRequiredFeesMissingSchedule(t *testing.T) {
	app := &models.Application{
		ApplicationType: models.ApplicationTypeRenewal,
		LicenseCategory: models.CategoryB,
		Status:          models.ApplicationStatusSubmitted,
	}

	_, err := RequiredFees(app, FeeSchedule{})
	assert.Error(t, err)
}
