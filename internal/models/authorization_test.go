// internal/models/authorization_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func result(r TestResult) *TestResult {
	return &r
}

func TestTestPassed(t *testing.T) {
	passed := ApplicationAuthorization{
		EyeTestResult:     result(TestResultPassed),
		DrivingTestResult: result(TestResultPassed),
	}
	assert.True(t, passed.TestPassed())
	assert.Equal(t, TestResultPassed, passed.Outcome())

	absent := ApplicationAuthorization{IsAbsent: true}
	assert.False(t, absent.TestPassed())
	assert.Equal(t, TestResultAbsent, absent.Outcome())

	flaggedFailed := ApplicationAuthorization{
		IsFailed:          true,
		EyeTestResult:     result(TestResultPassed),
		DrivingTestResult: result(TestResultPassed),
	}
	assert.False(t, flaggedFailed.TestPassed())

	eyeFailed := ApplicationAuthorization{
		EyeTestResult:     result(TestResultFailed),
		DrivingTestResult: result(TestResultPassed),
	}
	assert.False(t, eyeFailed.TestPassed())
	assert.Equal(t, TestResultFailed, eyeFailed.Outcome())

	missingResults := ApplicationAuthorization{}
	assert.False(t, missingResults.TestPassed())
}

func TestRestrictionCodes(t *testing.T) {
	auth := ApplicationAuthorization{
		DriverRestrictionGlasses:    true,
		VehicleRestrictionAutomatic: true,
	}
	assert.Equal(t, RestrictionCodeList{
		RestrictionCorrectiveLenses,
		RestrictionAutomaticTransmission,
	}, auth.RestrictionCodes())

	limb := ApplicationAuthorization{DriverRestrictionArtificialLimb: true}
	assert.Equal(t, RestrictionCodeList{RestrictionProsthetics}, limb.RestrictionCodes())
}

func TestRestrictionCodesGlassesAndLimb(t *testing.T) {
	// The combined flag expands to both codes, once each.
	auth := ApplicationAuthorization{
		DriverRestrictionGlasses:        true,
		DriverRestrictionGlassesAndLimb: true,
	}
	assert.Equal(t, RestrictionCodeList{
		RestrictionCorrectiveLenses,
		RestrictionProsthetics,
	}, auth.RestrictionCodes())
}

func TestRestrictionCodesEmpty(t *testing.T) {
	auth := ApplicationAuthorization{VehicleRestrictionNone: true, DriverRestrictionNone: true}
	assert.Empty(t, auth.RestrictionCodes())
}

func TestRestrictionCodesVehicleFlags(t *testing.T) {
	electric := ApplicationAuthorization{VehicleRestrictionElectric: true}
	assert.Equal(t, RestrictionCodeList{RestrictionElectricPowered}, electric.RestrictionCodes())

	disabled := ApplicationAuthorization{VehicleRestrictionDisabled: true}
	assert.Equal(t, RestrictionCodeList{RestrictionPhysicalDisabled}, disabled.RestrictionCodes())
}
