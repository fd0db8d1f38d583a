// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	BaseModel
	ApplicationNumber string            `json:"application_number" gorm:"uniqueIndex;size:30;not null"`
	ApplicationType   ApplicationType   `json:"application_type" gorm:"type:varchar(30);not null;index"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(30);default:'DRAFT';index"`
	LicenseCategory   LicenseCategory   `json:"license_category" gorm:"type:varchar(5);not null"`

	PersonID   uuid.UUID `json:"person_id" gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `json:"location_id" gorm:"type:uuid;not null;index"`

	// Staged-payment tracking. A staged type can never have the card payment
	// completed before the test payment.
	TestPaymentCompleted bool        `json:"test_payment_completed" gorm:"default:false"`
	CardPaymentCompleted bool        `json:"card_payment_completed" gorm:"default:false"`
	TestResult           *TestResult `json:"test_result" gorm:"type:varchar(10)"`

	ParentApplicationID *uuid.UUID `json:"parent_application_id" gorm:"type:uuid;index"`

	SubmittedDate        *time.Time `json:"submitted_date"`
	TestPaymentDate      *time.Time `json:"test_payment_date"`
	CardPaymentDate      *time.Time `json:"card_payment_date"`
	ApprovedDate         *time.Time `json:"approved_date"`
	ActualCompletionDate *time.Time `json:"actual_completion_date"`
	DraftExpiresAt       *time.Time `json:"draft_expires_at"`

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid"`
	UpdatedBy uuid.UUID `json:"updated_by" gorm:"type:uuid"`

	// Relationships
	Person            Person                    `json:"person,omitempty" gorm:"foreignKey:PersonID"`
	Location          Location                  `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	ParentApplication *Application              `json:"parent_application,omitempty" gorm:"foreignKey:ParentApplicationID"`
	ChildApplications []Application             `json:"child_applications,omitempty" gorm:"foreignKey:ParentApplicationID"`
	Authorization     *ApplicationAuthorization `json:"authorization,omitempty" gorm:"foreignKey:ApplicationID"`
	StatusHistory     []StatusHistory           `json:"status_history,omitempty" gorm:"foreignKey:ApplicationID"`
}

// StatusHistory is the append-only log of status changes. Rows are written
// in the same transaction as the status update and never mutated.
type StatusHistory struct {
	ID            uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ApplicationID uuid.UUID          `json:"application_id" gorm:"type:uuid;not null;index"`
	FromStatus    *ApplicationStatus `json:"from_status" gorm:"type:varchar(30)"`
	ToStatus      ApplicationStatus  `json:"to_status" gorm:"type:varchar(30);not null"`
	ChangedBy     uuid.UUID          `json:"changed_by" gorm:"type:uuid;not null"`
	Reason        string             `json:"reason,omitempty" gorm:"type:text"`
	Notes         string             `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (StatusHistory) TableName() string {
	return "application_status_history"
}

// applicationTypeCodes feed the application-number format
// {OFFICE}-{TYPE}-{YEAR}-{SEQ}.
var applicationTypeCodes = map[ApplicationType]string{
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

func (t ApplicationType) Code() string {
	if code, ok := applicationTypeCodes[t]; ok {
		return code
	}
	return "XX"
}

func (t ApplicationType) IsValid() bool {
	_, ok := applicationTypeCodes[t]
	return ok
}

// UsesCaptureFlow reports whether the type follows the simplified capture
// transition table used for digitizing pre-existing paper licenses.
func (t ApplicationType) UsesCaptureFlow() bool {
	return t == ApplicationTypeDriversLicenseCapture || t == ApplicationTypeLearnersPermitCapture
}

// IsStagedPayment reports whether the type pays a test fee before a card fee.
func (t ApplicationType) IsStagedPayment() bool {
	return t == ApplicationTypeNewLicense || t == ApplicationTypeLearnersPermit
}

// RequiresTest reports whether an examiner decision is part of the lifecycle.
func (t ApplicationType) RequiresTest() bool {
	return t.IsStagedPayment()
}

// standardTransitions is the table for every non-capture application type.
var standardTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:     {ApplicationStatusSubmitted, ApplicationStatusCancelled},
	ApplicationStatusSubmitted: {ApplicationStatusPaid, ApplicationStatusRejected, ApplicationStatusCancelled},
	ApplicationStatusPaid: {
		ApplicationStatusPassed, ApplicationStatusFailed, ApplicationStatusAbsent,
		ApplicationStatusApproved, ApplicationStatusOnHold, ApplicationStatusCancelled,
	},
	ApplicationStatusPassed:             {ApplicationStatusCardPaymentPending, ApplicationStatusApproved, ApplicationStatusCancelled},
	ApplicationStatusOnHold:             {ApplicationStatusPaid, ApplicationStatusCancelled},
	ApplicationStatusCardPaymentPending: {ApplicationStatusApproved, ApplicationStatusCancelled},
	ApplicationStatusApproved:           {ApplicationStatusSentToPrinter, ApplicationStatusCancelled},
	ApplicationStatusSentToPrinter:      {ApplicationStatusCardProduction, ApplicationStatusApproved},
	ApplicationStatusCardProduction:     {ApplicationStatusReadyForCollection, ApplicationStatusSentToPrinter},
	ApplicationStatusReadyForCollection: {ApplicationStatusCompleted},
	ApplicationStatusFailed:             {},
	ApplicationStatusAbsent:             {},
	ApplicationStatusCompleted:          {},
	ApplicationStatusRejected:           {},
	ApplicationStatusCancelled:          {},
}

// captureTransitions is the linear flow for capture types.
var captureTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:     {ApplicationStatusSubmitted, ApplicationStatusCancelled},
	ApplicationStatusSubmitted: {ApplicationStatusApproved, ApplicationStatusCancelled},
	ApplicationStatusApproved:  {ApplicationStatusCompleted, ApplicationStatusCancelled},
	ApplicationStatusCompleted: {},
	ApplicationStatusCancelled: {},
}

// TransitionTable returns the transition table for an application type.
func TransitionTable(t ApplicationType) map[ApplicationStatus][]ApplicationStatus {
	if t.UsesCaptureFlow() {
		return captureTransitions
	}
	return standardTransitions
}

// TransitionAllowed reports whether from→to is legal for the given type.
func TransitionAllowed(t ApplicationType, from, to ApplicationStatus) bool {
	for _, allowed := range TransitionTable(t)[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusFailed, ApplicationStatusAbsent, ApplicationStatusCompleted,
		ApplicationStatusRejected, ApplicationStatusCancelled:
		return true
	}
	return false
}

// heavyCategories carry the higher test fee tier.
var heavyCategories = map[LicenseCategory]bool{
	CategoryC1:  true,
	CategoryC:   true,
	CategoryC1E: true,
	CategoryCE:  true,
	CategoryD1:  true,
	CategoryD:   true,
	CategoryD2:  true,
}

func (c LicenseCategory) IsHeavy() bool {
	return heavyCategories[c]
}

func (c LicenseCategory) IsValid() bool {
	switch c {
	case CategoryA1, CategoryA2, CategoryA, CategoryB1, CategoryB, CategoryB2, CategoryBE,
		CategoryC1, CategoryC, CategoryC1E, CategoryCE, CategoryD1, CategoryD, CategoryD2,
		CategoryLearners1, CategoryLearners2, CategoryLearners3:
		return true
	}
	return false
}

// MinimumAge returns the minimum applicant age for a category.
func (c LicenseCategory) MinimumAge() int {
	switch c {
	case CategoryA1, CategoryB1, CategoryLearners1, CategoryLearners2, CategoryLearners3:
		return 16
	case CategoryA2, CategoryA, CategoryB, CategoryBE, CategoryC1, CategoryC1E:
		return 18
	case CategoryB2, CategoryC, CategoryCE, CategoryD1:
		return 21
	case CategoryD, CategoryD2:
		return 24
	}
	return 18
}
