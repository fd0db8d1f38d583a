// internal/services/fee_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/models"
)

// FeeSchedule maps fee types to amounts in Ariary.
type FeeSchedule map[models.FeeType]int64

// FeeLine is one fee an application owes at its current stage.
type FeeLine struct {
	FeeType models.FeeType `json:"fee_type"`
	Amount  int64          `json:"amount"`
}

type FeeService struct {
	db *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{db: db}
}

// LoadSchedule reads the active fee structures into a schedule.
func (s *FeeService) LoadSchedule() (FeeSchedule, error) {
	var fees []models.FeeStructure
	if err := s.db.Where("is_active = ?", true).Find(&fees).Error; err != nil {
		return nil, apperrors.NewPersistence("load fee schedule", err)
	}

	schedule := make(FeeSchedule, len(fees))
	for _, fee := range fees {
		schedule[fee.FeeType] = fee.Amount
	}
	return schedule, nil
}

// ListFeeStructures returns the full fee table, active entries first.
func (s *FeeService) ListFeeStructures() ([]models.FeeStructure, error) {
	var fees []models.FeeStructure
	if err := s.db.Order("is_active DESC, fee_type ASC").Find(&fees).Error; err != nil {
		return nil, apperrors.NewPersistence("list fee structures", err)
	}
	return fees, nil
}

// singleFeeTypes maps each single-payment application type to its one fee.
var singleFeeTypes = map[models.ApplicationType]models.FeeType{
	models.ApplicationTypeRenewal:               models.FeeTypeRenewal,
	models.ApplicationTypeReplacement:           models.FeeTypeReplacement,
	models.ApplicationTypeTemporaryLicense:      models.FeeTypeTemporaryLicense,
	models.ApplicationTypeInternationalPermit:   models.FeeTypeInternationalPermit,
	models.ApplicationTypeProfessionalLicense:   models.FeeTypeProfessionalLicense,
	models.ApplicationTypeForeignConversion:     models.FeeTypeForeignConversion,
	models.ApplicationTypeDriversLicenseCapture: models.FeeTypeDriversLicenseCapture,
	models.ApplicationTypeLearnersPermitCapture: models.FeeTypeLearnersPermitCapture,
}

// RequiredFees returns the fee lines currently payable for the application.
// Pure: depends only on the application's type, category, stage flags and
// the schedule. An empty result means nothing is due at this stage.
func RequiredFees(app *models.Application, schedule FeeSchedule) ([]FeeLine, error) {
	if app.Status.IsTerminal() {
		return nil, nil
	}

	if !app.ApplicationType.IsStagedPayment() {
		feeType, ok := singleFeeTypes[app.ApplicationType]
		if !ok {
			return nil, apperrors.NewValidationf("application_type",
				"no fee mapping for type %s", app.ApplicationType)
		}
		if app.CardPaymentCompleted {
			return nil, nil
		}
		amount, ok := schedule[feeType]
		if !ok {
			return nil, fmt.Errorf("fee schedule missing %s", feeType)
		}
		return []FeeLine{{FeeType: feeType, Amount: amount}}, nil
	}

	// Staged types: test fees first, then the card fee once the test is
	// passed. An ON_HOLD application owes its test fees again before the
	// retest.
	if !app.TestPaymentCompleted || app.Status == models.ApplicationStatusOnHold {
		lines, err := testFees(app, schedule)
		if err != nil {
			return nil, err
		}
		return lines, nil
	}

	if app.TestResult != nil && *app.TestResult == models.TestResultPassed && !app.CardPaymentCompleted {
		amount, ok := schedule[models.FeeTypeNewLicense]
		if !ok {
			return nil, fmt.Errorf("fee schedule missing %s", models.FeeTypeNewLicense)
		}
		return []FeeLine{{FeeType: models.FeeTypeNewLicense, Amount: amount}}, nil
	}

	return nil, nil
}

// Learner's permit candidates sit the theory test; new-license candidates
// sit the practical test, their theory fee having been paid on the prior
// learner's permit application.
func testFees(app *models.Application, schedule FeeSchedule) ([]FeeLine, error) {
	heavy := app.LicenseCategory.IsHeavy()

	var feeType models.FeeType
	if app.ApplicationType == models.ApplicationTypeLearnersPermit {
		feeType = models.FeeTypeTheoryTestLight
		if heavy {
			feeType = models.FeeTypeTheoryTestHeavy
		}
	} else {
		feeType = models.FeeTypePracticalTestLight
		if heavy {
			feeType = models.FeeTypePracticalTestHeavy
		}
	}

	amount, ok := schedule[feeType]
	if !ok {
		return nil, fmt.Errorf("fee schedule missing %s", feeType)
	}
	return []FeeLine{{FeeType: feeType, Amount: amount}}, nil
}

// TotalAmount sums a set of fee lines.
func TotalAmount(lines []FeeLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Amount
	}
	return total
}
