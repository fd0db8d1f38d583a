// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// RestrictionCodeList is stored as a JSONB array of restriction codes.
type RestrictionCodeList []RestrictionCode

func (l RestrictionCodeList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *RestrictionCodeList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Enums

type ApplicationType string

const (
	ApplicationTypeNewLicense            ApplicationType = "NEW_LICENSE"
	ApplicationTypeLearnersPermit        ApplicationType = "LEARNERS_PERMIT"
	ApplicationTypeRenewal               ApplicationType = "RENEWAL"
	ApplicationTypeReplacement           ApplicationType = "REPLACEMENT"
	ApplicationTypeTemporaryLicense      ApplicationType = "TEMPORARY_LICENSE"
	ApplicationTypeInternationalPermit   ApplicationType = "INTERNATIONAL_PERMIT"
	ApplicationTypeProfessionalLicense   ApplicationType = "PROFESSIONAL_LICENSE"
	ApplicationTypeForeignConversion     ApplicationType = "FOREIGN_CONVERSION"
	ApplicationTypeDriversLicenseCapture ApplicationType = "DRIVERS_LICENSE_CAPTURE"
	ApplicationTypeLearnersPermitCapture ApplicationType = "LEARNERS_PERMIT_CAPTURE"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft              ApplicationStatus = "DRAFT"
	ApplicationStatusSubmitted          ApplicationStatus = "SUBMITTED"
	ApplicationStatusPaid               ApplicationStatus = "PAID"
	ApplicationStatusPassed             ApplicationStatus = "PASSED"
	ApplicationStatusFailed             ApplicationStatus = "FAILED"
	ApplicationStatusAbsent             ApplicationStatus = "ABSENT"
	ApplicationStatusOnHold             ApplicationStatus = "ON_HOLD"
	ApplicationStatusCardPaymentPending ApplicationStatus = "CARD_PAYMENT_PENDING"
	ApplicationStatusApproved           ApplicationStatus = "APPROVED"
	ApplicationStatusSentToPrinter      ApplicationStatus = "SENT_TO_PRINTER"
	ApplicationStatusCardProduction     ApplicationStatus = "CARD_PRODUCTION"
	ApplicationStatusReadyForCollection ApplicationStatus = "READY_FOR_COLLECTION"
	ApplicationStatusCompleted          ApplicationStatus = "COMPLETED"
	ApplicationStatusRejected           ApplicationStatus = "REJECTED"
	ApplicationStatusCancelled          ApplicationStatus = "CANCELLED"
)

type TestResult string

const (
	TestResultPassed TestResult = "PASSED"
	TestResultFailed TestResult = "FAILED"
	TestResultAbsent TestResult = "ABSENT"
)

// LicenseCategory follows the SADC categories plus the three learner codes.
type LicenseCategory string

const (
	CategoryA1  LicenseCategory = "A1"
	CategoryA2  LicenseCategory = "A2"
	CategoryA   LicenseCategory = "A"
	CategoryB1  LicenseCategory = "B1"
	CategoryB   LicenseCategory = "B"
	CategoryB2  LicenseCategory = "B2"
	CategoryBE  LicenseCategory = "BE"
	CategoryC1  LicenseCategory = "C1"
	CategoryC   LicenseCategory = "C"
	CategoryC1E LicenseCategory = "C1E"
	CategoryCE  LicenseCategory = "CE"
	CategoryD1  LicenseCategory = "D1"
	CategoryD   LicenseCategory = "D"
	CategoryD2  LicenseCategory = "D2"

	CategoryLearners1 LicenseCategory = "1"
	CategoryLearners2 LicenseCategory = "2"
	CategoryLearners3 LicenseCategory = "3"
)

type TransactionType string

const (
	TransactionTypeApplicationPayment TransactionType = "APPLICATION_PAYMENT"
	TransactionTypeCardOrderPayment   TransactionType = "CARD_ORDER_PAYMENT"
	TransactionTypeMixedPayment       TransactionType = "MIXED_PAYMENT"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusPaid      TransactionStatus = "PAID"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

type FeeType string

const (
	FeeTypeTheoryTestLight    FeeType = "THEORY_TEST_LIGHT"
	FeeTypeTheoryTestHeavy    FeeType = "THEORY_TEST_HEAVY"
	FeeTypePracticalTestLight FeeType = "PRACTICAL_TEST_LIGHT"
	FeeTypePracticalTestHeavy FeeType = "PRACTICAL_TEST_HEAVY"

	FeeTypeNewLicense            FeeType = "NEW_LICENSE_FEE"
	FeeTypeRenewal               FeeType = "RENEWAL_FEE"
	FeeTypeReplacement           FeeType = "REPLACEMENT_FEE"
	FeeTypeTemporaryLicense      FeeType = "TEMPORARY_LICENSE_FEE"
	FeeTypeInternationalPermit   FeeType = "INTERNATIONAL_PERMIT_FEE"
	FeeTypeProfessionalLicense   FeeType = "PROFESSIONAL_LICENSE_FEE"
	FeeTypeForeignConversion     FeeType = "FOREIGN_CONVERSION_FEE"
	FeeTypeDriversLicenseCapture FeeType = "DRIVERS_LICENSE_CAPTURE_FEE"
	FeeTypeLearnersPermitCapture FeeType = "LEARNERS_PERMIT_CAPTURE_FEE"
)

type CardOrderStatus string

const (
	CardOrderStatusPendingPayment     CardOrderStatus = "PENDING_PAYMENT"
	CardOrderStatusPaid               CardOrderStatus = "PAID"
	CardOrderStatusOrdered            CardOrderStatus = "ORDERED"
	CardOrderStatusInProduction       CardOrderStatus = "IN_PRODUCTION"
	CardOrderStatusReadyForCollection CardOrderStatus = "READY_FOR_COLLECTION"
	CardOrderStatusCollected          CardOrderStatus = "COLLECTED"
	CardOrderStatusCancelled          CardOrderStatus = "CANCELLED"
)

type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "ACTIVE"
	LicenseStatusSuspended LicenseStatus = "SUSPENDED"
	LicenseStatusRevoked   LicenseStatus = "REVOKED"
	LicenseStatusExpired   LicenseStatus = "EXPIRED"
)

// RestrictionCode is a coded limitation attached to an issued license.
type RestrictionCode string

const (
	RestrictionCorrectiveLenses      RestrictionCode = "01"
	RestrictionProsthetics           RestrictionCode = "02"
	RestrictionAutomaticTransmission RestrictionCode = "03"
	RestrictionElectricPowered       RestrictionCode = "04"
	RestrictionPhysicalDisabled      RestrictionCode = "05"
	RestrictionTractorOnly           RestrictionCode = "06"
	RestrictionIndustrialAgriculture RestrictionCode = "07"
)

// SequenceCounter backs the race-free number generators. One row per scope,
// incremented under a row lock inside the consuming transaction.
type SequenceCounter struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	Value     int64     `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
