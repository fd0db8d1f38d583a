// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthForbidden    = "auth.forbidden"

	// Applications
	KeyApplicationCreated      = "application.created"
	KeyApplicationUpdated      = "application.updated"
	KeyApplicationSubmitted    = "application.submitted"
	KeyApplicationCancelled    = "application.cancelled"
	KeyApplicationNotFound     = "application.not_found"
	KeyApplicationBadStatus    = "application.invalid_status"
	KeyApplicationUnderage     = "application.underage"
	KeyApplicationCycle        = "application.parent_cycle"
	KeyApplicationStatusMoved  = "application.status_changed"
	KeyApplicationDraftExpired = "application.draft_expired"

	// Payments
	KeyPaymentCreated      = "payment.created"
	KeyPaymentCompleted    = "payment.completed"
	KeyPaymentNotFound     = "payment.not_found"
	KeyPaymentAlreadyPaid  = "payment.already_paid"
	KeyPaymentNothingDue   = "payment.nothing_due"
	KeyPaymentStageBlocked = "payment.stage_blocked"

	// Authorizations
	KeyAuthorizationRecorded  = "authorization.recorded"
	KeyAuthorizationExists    = "authorization.exists"
	KeyAuthorizationBadType   = "authorization.invalid_type"
	KeyAuthorizationBadStatus = "authorization.invalid_status"

	// Licenses
	KeyLicenseIssued   = "license.issued"
	KeyLicenseNotFound = "license.not_found"

	// Fees
	KeyFeeTheoryTestLight       = "fees.theory_test_light"
	KeyFeeTheoryTestHeavy       = "fees.theory_test_heavy"
	KeyFeePracticalTestLight    = "fees.practical_test_light"
	KeyFeePracticalTestHeavy    = "fees.practical_test_heavy"
	KeyFeeNewLicense            = "fees.new_license"
	KeyFeeRenewal               = "fees.renewal"
	KeyFeeReplacement           = "fees.replacement"
	KeyFeeTemporaryLicense      = "fees.temporary_license"
	KeyFeeInternationalPermit   = "fees.international_permit"
	KeyFeeProfessionalLicense   = "fees.professional_license"
	KeyFeeForeignConversion     = "fees.foreign_conversion"
	KeyFeeDriversLicenseCapture = "fees.drivers_license_capture"
	KeyFeeLearnersPermitCapture = "fees.learners_permit_capture"

	// System
	KeyInternalError    = "system.internal_error"
	KeyValidationFailed = "system.validation_failed"
	KeyRateLimited      = "system.rate_limited"
)
