// internal/models/authorization.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationAuthorization is the examiner's decision sheet for one
// application. At most one row exists per application.
type ApplicationAuthorization struct {
	BaseModel
	ApplicationID uuid.UUID `json:"application_id" gorm:"type:uuid;uniqueIndex;not null"`

	ExaminerID            uuid.UUID  `json:"examiner_id" gorm:"type:uuid;not null"`
	ExaminerName          string     `json:"examiner_name" gorm:"size:150;not null"`
	ExaminerSignaturePath string     `json:"examiner_signature_path,omitempty" gorm:"size:500"`
	AuthorizationDate     *time.Time `json:"authorization_date"`

	IsAbsent bool `json:"is_absent" gorm:"default:false"`
	IsFailed bool `json:"is_failed" gorm:"default:false"`

	EyeTestResult     *TestResult `json:"eye_test_result" gorm:"type:varchar(10)"`
	DrivingTestResult *TestResult `json:"driving_test_result" gorm:"type:varchar(10)"`

	// Restriction flags from the examiner's test form. At most one flag is
	// true within each group.
	VehicleRestrictionNone      bool `json:"vehicle_restriction_none" gorm:"default:true"`
	VehicleRestrictionAutomatic bool `json:"vehicle_restriction_automatic" gorm:"default:false"`
	VehicleRestrictionElectric  bool `json:"vehicle_restriction_electric" gorm:"default:false"`
	VehicleRestrictionDisabled  bool `json:"vehicle_restriction_disabled" gorm:"default:false"`

	DriverRestrictionNone           bool `json:"driver_restriction_none" gorm:"default:true"`
	DriverRestrictionGlasses        bool `json:"driver_restriction_glasses" gorm:"default:false"`
	DriverRestrictionArtificialLimb bool `json:"driver_restriction_artificial_limb" gorm:"default:false"`
	DriverRestrictionGlassesAndLimb bool `json:"driver_restriction_glasses_and_limb" gorm:"default:false"`

	AppliedRestrictions RestrictionCodeList `json:"applied_restrictions" gorm:"type:jsonb"`
	IsAuthorized        bool                `json:"is_authorized" gorm:"default:false"`
	Notes               string              `json:"notes,omitempty" gorm:"type:text"`

	RecordedBy uuid.UUID `json:"recorded_by" gorm:"type:uuid"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}

func (ApplicationAuthorization) TableName() string {
	return "application_authorizations"
}

// TestPassed applies the authorization rule: the candidate must be present,
// not flagged failed, and have passed both the eye and driving tests.
func (a *ApplicationAuthorization) TestPassed() bool {
	if a.IsAbsent || a.IsFailed {
		return false
	}
	return a.EyeTestResult != nil && *a.EyeTestResult == TestResultPassed &&
		a.DrivingTestResult != nil && *a.DrivingTestResult == TestResultPassed
}

// Outcome maps the sheet to the candidate's test result.
func (a *ApplicationAuthorization) Outcome() TestResult {
	switch {
	case a.IsAbsent:
		return TestResultAbsent
	case a.TestPassed():
		return TestResultPassed
	default:
		return TestResultFailed
	}
}

// RestrictionCodes derives the restriction codes from the flag groups.
// Order is stable, lowest code first, and the result is de-duplicated even
// though the flags are exclusive within each group.
func (a *ApplicationAuthorization) RestrictionCodes() RestrictionCodeList {
	var codes RestrictionCodeList
	seen := make(map[RestrictionCode]bool)
	add := func(code RestrictionCode) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	if a.DriverRestrictionGlasses || a.DriverRestrictionGlassesAndLimb {
		add(RestrictionCorrectiveLenses)
	}
	if a.DriverRestrictionArtificialLimb || a.DriverRestrictionGlassesAndLimb {
		add(RestrictionProsthetics)
	}
	if a.VehicleRestrictionAutomatic {
		add(RestrictionAutomaticTransmission)
	}
	if a.VehicleRestrictionElectric {
		add(RestrictionElectricPowered)
	}
	if a.VehicleRestrictionDisabled {
		add(RestrictionPhysicalDisabled)
	}
	return codes
}
