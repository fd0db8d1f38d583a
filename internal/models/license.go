// internal/models/license.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// License is an issued driving license. The unique index on
// created_from_application_id guarantees one license per application even
// when two issuers race.
type License struct {
	BaseModel
	LicenseNumber            string        `json:"license_number" gorm:"uniqueIndex;size:30;not null"`
	CreatedFromApplicationID uuid.UUID     `json:"created_from_application_id" gorm:"type:uuid;uniqueIndex;not null"`
	PersonID                 uuid.UUID     `json:"person_id" gorm:"type:uuid;not null;index"`
	LicenseCategory          LicenseCategory `json:"license_category" gorm:"type:varchar(5);not null"`
	Status                   LicenseStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`

	Restrictions RestrictionCodeList `json:"restrictions" gorm:"type:jsonb"`

	IssueDate  time.Time  `json:"issue_date" gorm:"not null"`
	ExpiryDate *time.Time `json:"expiry_date"`
	IssuedBy   uuid.UUID  `json:"issued_by" gorm:"type:uuid"`

	Person      Person       `json:"person,omitempty" gorm:"foreignKey:PersonID"`
	Application *Application `json:"application,omitempty" gorm:"foreignKey:CreatedFromApplicationID"`
}

// ValidityYears is the standard card validity period.
const ValidityYears = 5
