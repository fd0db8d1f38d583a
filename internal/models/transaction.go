// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// FeeStructure holds one configurable fee line. Amounts are in Ariary.
type FeeStructure struct {
	BaseModel
	FeeType     FeeType `json:"fee_type" gorm:"type:varchar(40);uniqueIndex;not null"`
	Amount      int64   `json:"amount" gorm:"not null"`
	Description string  `json:"description" gorm:"size:255"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`
}

func (FeeStructure) TableName() string {
	return "fee_structures"
}

// Transaction is one payment event at a counter. It may cover fee items for
// several applications of the same person (a mixed payment).
type Transaction struct {
	BaseModel
	TransactionNumber string            `json:"transaction_number" gorm:"uniqueIndex;size:20;not null"`
	ReceiptNumber     *string           `json:"receipt_number" gorm:"uniqueIndex;size:20"`
	TransactionType   TransactionType   `json:"transaction_type" gorm:"type:varchar(30);not null"`
	Status            TransactionStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	PaymentMethod     *PaymentMethod    `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentReference  string            `json:"payment_reference,omitempty" gorm:"size:100"`

	PersonID   uuid.UUID `json:"person_id" gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `json:"location_id" gorm:"type:uuid;not null;index"`

	TotalAmount int64      `json:"total_amount" gorm:"not null"`
	PaidAt      *time.Time `json:"paid_at"`
	CashierID   uuid.UUID  `json:"cashier_id" gorm:"type:uuid"`
	Notes       string     `json:"notes,omitempty" gorm:"type:text"`

	Person   Person            `json:"person,omitempty" gorm:"foreignKey:PersonID"`
	Location Location          `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	Items    []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
}

// TransactionItem is one fee line inside a transaction, tied to the
// application it pays for.
type TransactionItem struct {
	BaseModel
	TransactionID uuid.UUID `json:"transaction_id" gorm:"type:uuid;not null;index"`
	ApplicationID uuid.UUID `json:"application_id" gorm:"type:uuid;not null;index"`
	FeeType       FeeType   `json:"fee_type" gorm:"type:varchar(40);not null"`
	Amount        int64     `json:"amount" gorm:"not null"`
	Description   string    `json:"description" gorm:"size:255"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}

// CardOrder tracks physical card production for an approved application.
type CardOrder struct {
	BaseModel
	OrderNumber   string          `json:"order_number" gorm:"uniqueIndex;size:20;not null"`
	ApplicationID uuid.UUID       `json:"application_id" gorm:"type:uuid;uniqueIndex;not null"`
	Status        CardOrderStatus `json:"status" gorm:"type:varchar(30);default:'PENDING_PAYMENT';index"`
	Amount        int64           `json:"amount" gorm:"not null"`
	OrderedAt     *time.Time      `json:"ordered_at"`
	CollectedAt   *time.Time      `json:"collected_at"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}

// DefaultFeeSchedule seeds the fee_structures table. Values match the
// official counter price list.
func DefaultFeeSchedule() []FeeStructure {
	return []FeeStructure{
		{FeeType: FeeTypeTheoryTestLight, Amount: 10000, Description: "fees.theory_test_light"},
		{FeeType: FeeTypeTheoryTestHeavy, Amount: 15000, Description: "fees.theory_test_heavy"},
		{FeeType: FeeTypePracticalTestLight, Amount: 10000, Description: "fees.practical_test_light"},
		{FeeType: FeeTypePracticalTestHeavy, Amount: 15000, Description: "fees.practical_test_heavy"},
		{FeeType: FeeTypeNewLicense, Amount: 38000, Description: "fees.new_license"},
		{FeeType: FeeTypeRenewal, Amount: 38000, Description: "fees.renewal"},
		{FeeType: FeeTypeReplacement, Amount: 38000, Description: "fees.replacement"},
		{FeeType: FeeTypeTemporaryLicense, Amount: 10000, Description: "fees.temporary_license"},
		{FeeType: FeeTypeInternationalPermit, Amount: 38000, Description: "fees.international_permit"},
		{FeeType: FeeTypeProfessionalLicense, Amount: 38000, Description: "fees.professional_license"},
		{FeeType: FeeTypeForeignConversion, Amount: 38000, Description: "fees.foreign_conversion"},
		{FeeType: FeeTypeDriversLicenseCapture, Amount: 38000, Description: "fees.drivers_license_capture"},
		{FeeType: FeeTypeLearnersPermitCapture, Amount: 38000, Description: "fees.learners_permit_capture"},
	}
}
