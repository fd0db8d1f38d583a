// internal/models/application_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardTransitions(t *testing.T) {
	cases := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{ApplicationStatusDraft, ApplicationStatusSubmitted, true},
		{ApplicationStatusDraft, ApplicationStatusCancelled, true},
		{ApplicationStatusDraft, ApplicationStatusPaid, false},
		{ApplicationStatusSubmitted, ApplicationStatusPaid, true},
		{ApplicationStatusSubmitted, ApplicationStatusRejected, true},
		{ApplicationStatusSubmitted, ApplicationStatusApproved, false},
		{ApplicationStatusPaid, ApplicationStatusPassed, true},
		{ApplicationStatusPaid, ApplicationStatusFailed, true},
		{ApplicationStatusPaid, ApplicationStatusAbsent, true},
		{ApplicationStatusPaid, ApplicationStatusOnHold, true},
		{ApplicationStatusPaid, ApplicationStatusApproved, true},
		{ApplicationStatusPaid, ApplicationStatusCompleted, false},
		{ApplicationStatusPassed, ApplicationStatusCardPaymentPending, true},
		{ApplicationStatusPassed, ApplicationStatusApproved, true},
		{ApplicationStatusOnHold, ApplicationStatusPaid, true},
		{ApplicationStatusOnHold, ApplicationStatusApproved, false},
		{ApplicationStatusCardPaymentPending, ApplicationStatusApproved, true},
		{ApplicationStatusApproved, ApplicationStatusSentToPrinter, true},
		{ApplicationStatusSentToPrinter, ApplicationStatusCardProduction, true},
		{ApplicationStatusSentToPrinter, ApplicationStatusApproved, true},
		{ApplicationStatusCardProduction, ApplicationStatusReadyForCollection, true},
		{ApplicationStatusCardProduction, ApplicationStatusSentToPrinter, true},
		{ApplicationStatusReadyForCollection, ApplicationStatusCompleted, true},
		{ApplicationStatusReadyForCollection, ApplicationStatusCancelled, false},
		{ApplicationStatusCompleted, ApplicationStatusCancelled, false},
		{ApplicationStatusFailed, ApplicationStatusPaid, false},
		{ApplicationStatusCancelled, ApplicationStatusDraft, false},
	}

	for _, tc := range cases {
		got := TransitionAllowed(ApplicationTypeNewLicense, tc.from, tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestCaptureTransitions(t *testing.T) {
	assert.True(t, TransitionAllowed(ApplicationTypeDriversLicenseCapture, ApplicationStatusSubmitted, ApplicationStatusApproved))
	assert.True(t, TransitionAllowed(ApplicationTypeDriversLicenseCapture, ApplicationStatusApproved, ApplicationStatusCompleted))
	assert.False(t, TransitionAllowed(ApplicationTypeDriversLicenseCapture, ApplicationStatusSubmitted, ApplicationStatusPaid))
	assert.False(t, TransitionAllowed(ApplicationTypeLearnersPermitCapture, ApplicationStatusApproved, ApplicationStatusSentToPrinter))

	// The same target is illegal for a standard type.
	assert.False(t, TransitionAllowed(ApplicationTypeNewLicense, ApplicationStatusSubmitted, ApplicationStatusApproved))
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []ApplicationStatus{
		ApplicationStatusFailed, ApplicationStatusAbsent, ApplicationStatusCompleted,
		ApplicationStatusRejected, ApplicationStatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.Empty(t, standardTransitions[s], "%s should have no outgoing transitions", s)
	}

	for _, s := range []ApplicationStatus{
		ApplicationStatusDraft, ApplicationStatusSubmitted, ApplicationStatusPaid,
		ApplicationStatusPassed, ApplicationStatusOnHold, ApplicationStatusCardPaymentPending,
		ApplicationStatusApproved, ApplicationStatusSentToPrinter,
		ApplicationStatusCardProduction, ApplicationStatusReadyForCollection,
	} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestApplicationTypeCodes(t *testing.T) {
	expected := map[ApplicationType]string{
		ApplicationTypeNewLicense:            "NL",
		ApplicationTypeLearnersPermit:        "LP",
		ApplicationTypeRenewal:               "RN",
		ApplicationTypeReplacement:           "RP",
		ApplicationTypeTemporaryLicense:      "TL",
		ApplicationTypeInternationalPermit:   "IP",
		ApplicationTypeProfessionalLicense:   "PL",
		ApplicationTypeForeignConversion:     "FC",
		ApplicationTypeDriversLicenseCapture: "DC",
		ApplicationTypeLearnersPermitCapture: "LC",
	}
	for appType, code := range expected {
		assert.Equal(t, code, appType.Code())
		assert.True(t, appType.IsValid())
	}
	assert.Equal(t, "XX", ApplicationType("BOGUS").Code())
	assert.False(t, ApplicationType("BOGUS").IsValid())
}

func TestTypeFlags(t *testing.T) {
	assert.True(t, ApplicationTypeNewLicense.IsStagedPayment())
	assert.True(t, ApplicationTypeLearnersPermit.IsStagedPayment())
	assert.False(t, ApplicationTypeRenewal.IsStagedPayment())

	assert.True(t, ApplicationTypeDriversLicenseCapture.UsesCaptureFlow())
	assert.True(t, ApplicationTypeLearnersPermitCapture.UsesCaptureFlow())
	assert.False(t, ApplicationTypeNewLicense.UsesCaptureFlow())
}

func TestHeavyCategories(t *testing.T) {
	heavy := []LicenseCategory{CategoryC1, CategoryC, CategoryC1E, CategoryCE, CategoryD1, CategoryD, CategoryD2}
	for _, c := range heavy {
		assert.True(t, c.IsHeavy(), "%s should be heavy", c)
	}
	light := []LicenseCategory{CategoryA1, CategoryA, CategoryB, CategoryBE, CategoryLearners1}
	for _, c := range light {
		assert.False(t, c.IsHeavy(), "%s should be light", c)
	}
}

func TestMinimumAge(t *testing.T) {
	assert.Equal(t, 16, CategoryA1.MinimumAge())
	assert.Equal(t, 18, CategoryB.MinimumAge())
	assert.Equal(t, 21, CategoryC.MinimumAge())
	assert.Equal(t, 24, CategoryD.MinimumAge())
}
