// internal/services/transaction_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/models"
)

// applyAdvance mirrors what advanceAfterPayment persists, so scenario tests
// can walk an application through its lifecycle without a store.
func applyAdvance(t *testing.T, app *models.Application, plan paymentAdvance) {
	t.Helper()
	if plan.markTestPaid {
		app.TestPaymentCompleted = true
	}
	if plan.markCardPaid {
		app.CardPaymentCompleted = true
	}
	for _, step := range plan.steps {
		require.True(t, models.TransitionAllowed(app.ApplicationType, app.Status, step.status),
			"step %s -> %s", app.Status, step.status)
		app.Status = step.status
	}
}

func TestPlanPaymentAdvanceTestStage(t *testing.T) {
	app := &models.Application{
		ApplicationNumber: "ATN-NL-2026-0001",
		ApplicationType:   models.ApplicationTypeNewLicense,
		Status:            models.ApplicationStatusSubmitted,
	}

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	assert.True(t, plan.markTestPaid)
	assert.False(t, plan.markCardPaid)
	require.Len(t, plan.steps, 1)
	assert.Equal(t, models.ApplicationStatusPaid, plan.steps[0].status)
}

func TestPlanPaymentAdvanceRetest(t *testing.T) {
	app := &models.Application{
		ApplicationNumber:    "ATN-NL-2026-0002",
		ApplicationType:      models.ApplicationTypeNewLicense,
		Status:               models.ApplicationStatusOnHold,
		TestPaymentCompleted: true,
	}

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	assert.True(t, plan.markTestPaid)
	require.Len(t, plan.steps, 1)
	assert.Equal(t, models.ApplicationStatusPaid, plan.steps[0].status)
	assert.Equal(t, "retest fees paid", plan.steps[0].reason)
}

func TestPlanPaymentAdvanceCardStage(t *testing.T) {
	passed := models.TestResultPassed
	app := &models.Application{
		ApplicationNumber:    "ATN-NL-2026-0003",
		ApplicationType:      models.ApplicationTypeNewLicense,
		Status:               models.ApplicationStatusCardPaymentPending,
		TestPaymentCompleted: true,
		TestResult:           &passed,
	}

	plan, err := planPaymentAdvance(app, true)
	require.NoError(t, err)
	assert.True(t, plan.markCardPaid)
	assert.True(t, plan.markCardOrder)
	require.Len(t, plan.steps, 1)
	assert.Equal(t, models.ApplicationStatusApproved, plan.steps[0].status)
}

func TestPlanPaymentAdvanceSingleType(t *testing.T) {
	app := &models.Application{
		ApplicationNumber: "ATN-RN-2026-0004",
		ApplicationType:   models.ApplicationTypeRenewal,
		Status:            models.ApplicationStatusSubmitted,
	}

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	assert.True(t, plan.markCardPaid, "single types complete the card stage")
	assert.False(t, plan.markTestPaid)
	require.Len(t, plan.steps, 2)
	assert.Equal(t, models.ApplicationStatusPaid, plan.steps[0].status)
	assert.Equal(t, models.ApplicationStatusApproved, plan.steps[1].status)
}

func TestPlanPaymentAdvanceCapture(t *testing.T) {
	app := &models.Application{
		ApplicationNumber: "ATN-DC-2026-0005",
		ApplicationType:   models.ApplicationTypeDriversLicenseCapture,
		Status:            models.ApplicationStatusSubmitted,
	}

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	assert.True(t, plan.markCardPaid, "captures complete the card stage")
	require.Len(t, plan.steps, 1)
	assert.Equal(t, models.ApplicationStatusApproved, plan.steps[0].status)
}

func TestPlanPaymentAdvanceConflicts(t *testing.T) {
	passed := models.TestResultPassed

	cases := []struct {
		name        string
		app         models.Application
		cardPayment bool
	}{
		{
			name: "test fees paid twice",
			app: models.Application{
				ApplicationType:      models.ApplicationTypeNewLicense,
				Status:               models.ApplicationStatusPaid,
				TestPaymentCompleted: true,
			},
		},
		{
			name: "card fee before test fees",
			app: models.Application{
				ApplicationType: models.ApplicationTypeNewLicense,
				Status:          models.ApplicationStatusSubmitted,
			},
			cardPayment: true,
		},
		{
			name: "card fee paid twice",
			app: models.Application{
				ApplicationType:      models.ApplicationTypeNewLicense,
				Status:               models.ApplicationStatusApproved,
				TestPaymentCompleted: true,
				CardPaymentCompleted: true,
				TestResult:           &passed,
			},
			cardPayment: true,
		},
		{
			name: "single type cancelled before capture",
			app: models.Application{
				ApplicationType: models.ApplicationTypeRenewal,
				Status:          models.ApplicationStatusCancelled,
			},
		},
		{
			name: "single type already paid",
			app: models.Application{
				ApplicationType:      models.ApplicationTypeRenewal,
				Status:               models.ApplicationStatusApproved,
				CardPaymentCompleted: true,
			},
		},
		{
			name: "capture cancelled before capture",
			app: models.Application{
				ApplicationType: models.ApplicationTypeDriversLicenseCapture,
				Status:          models.ApplicationStatusCancelled,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := planPaymentAdvance(&tc.app, tc.cardPayment)
			require.Error(t, err)
			assert.True(t, apperrors.IsConflict(err), "want conflict, got %v", err)
		})
	}
}

// Walks a new-license application end to end: submit, pay the practical
// test fee, pass the examination, pay the card fee, reach APPROVED.
func TestNewLicenseLifecycle(t *testing.T) {
	schedule := testSchedule()
	app := &models.Application{
		ApplicationNumber: "ATN-NL-2026-0010",
		ApplicationType:   models.ApplicationTypeNewLicense,
		LicenseCategory:   models.CategoryB,
		Status:            models.ApplicationStatusDraft,
	}

	require.True(t, models.TransitionAllowed(app.ApplicationType, app.Status, models.ApplicationStatusSubmitted))
	app.Status = models.ApplicationStatusSubmitted

	lines, err := RequiredFees(app, schedule)
	require.NoError(t, err)
	require.Equal(t, []FeeLine{{FeeType: models.FeeTypePracticalTestLight, Amount: 10000}}, lines)

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	applyAdvance(t, app, plan)
	assert.Equal(t, models.ApplicationStatusPaid, app.Status)
	assert.True(t, app.TestPaymentCompleted)

	// Examiner records a pass.
	require.True(t, models.TransitionAllowed(app.ApplicationType, app.Status, models.ApplicationStatusPassed))
	app.Status = models.ApplicationStatusPassed
	passed := models.TestResultPassed
	app.TestResult = &passed
	require.True(t, models.TransitionAllowed(app.ApplicationType, app.Status, models.ApplicationStatusCardPaymentPending))
	app.Status = models.ApplicationStatusCardPaymentPending

	lines, err = RequiredFees(app, schedule)
	require.NoError(t, err)
	require.Equal(t, []FeeLine{{FeeType: models.FeeTypeNewLicense, Amount: 38000}}, lines)

	plan, err = planPaymentAdvance(app, true)
	require.NoError(t, err)
	applyAdvance(t, app, plan)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	assert.True(t, app.CardPaymentCompleted)

	lines, err = RequiredFees(app, schedule)
	require.NoError(t, err)
	assert.Empty(t, lines, "nothing owed after the card fee")
}

// Walks a learner's permit whose candidate fails the test: the application
// dead-ends with no further fee, and FAILED has no outgoing transitions.
func TestLearnersPermitFailedLifecycle(t *testing.T) {
	schedule := testSchedule()
	app := &models.Application{
		ApplicationNumber: "ATN-LP-2026-0011",
		ApplicationType:   models.ApplicationTypeLearnersPermit,
		LicenseCategory:   models.CategoryLearners1,
		Status:            models.ApplicationStatusSubmitted,
	}

	lines, err := RequiredFees(app, schedule)
	require.NoError(t, err)
	require.Equal(t, []FeeLine{{FeeType: models.FeeTypeTheoryTestLight, Amount: 10000}}, lines)

	plan, err := planPaymentAdvance(app, false)
	require.NoError(t, err)
	applyAdvance(t, app, plan)
	assert.Equal(t, models.ApplicationStatusPaid, app.Status)

	require.True(t, models.TransitionAllowed(app.ApplicationType, app.Status, models.ApplicationStatusFailed))
	app.Status = models.ApplicationStatusFailed
	failed := models.TestResultFailed
	app.TestResult = &failed

	lines, err = RequiredFees(app, schedule)
	require.NoError(t, err)
	assert.Empty(t, lines, "no fee after a failed test")

	assert.True(t, app.Status.IsTerminal())
	assert.Empty(t, models.TransitionTable(app.ApplicationType)[app.Status])
}
