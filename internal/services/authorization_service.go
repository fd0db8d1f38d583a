// internal/services/authorization_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/database"
	"github.com/madatrans/license-backend/internal/models"
	"github.com/madatrans/license-backend/internal/utils"
)

type AuthorizationService struct {
	db        *gorm.DB
	sequences *SequenceService
	fees      *FeeService
	licenses  *LicenseService
	audit     *AuditService
}

type RecordAuthorizationRequest struct {
	ExaminerID   uuid.UUID `json:"examiner_id" validate:"required"`
	ExaminerName string    `json:"examiner_name" validate:"required,max=150"`

	IsAbsent bool `json:"is_absent"`
	IsFailed bool `json:"is_failed"`

	EyeTestResult     *models.TestResult `json:"eye_test_result,omitempty"`
	DrivingTestResult *models.TestResult `json:"driving_test_result,omitempty"`

	VehicleRestrictionNone      bool `json:"vehicle_restriction_none"`
	VehicleRestrictionAutomatic bool `json:"vehicle_restriction_automatic"`
	VehicleRestrictionElectric  bool `json:"vehicle_restriction_electric"`
	VehicleRestrictionDisabled  bool `json:"vehicle_restriction_disabled"`

	DriverRestrictionNone           bool `json:"driver_restriction_none"`
	DriverRestrictionGlasses        bool `json:"driver_restriction_glasses"`
	DriverRestrictionArtificialLimb bool `json:"driver_restriction_artificial_limb"`
	DriverRestrictionGlassesAndLimb bool `json:"driver_restriction_glasses_and_limb"`

	Notes string `json:"notes,omitempty"`
}

func NewAuthorizationService(db *gorm.DB, sequences *SequenceService, fees *FeeService, licenses *LicenseService, audit *AuditService) *AuthorizationService {
	return &AuthorizationService{
		db:        db,
		sequences: sequences,
		fees:      fees,
		licenses:  licenses,
		audit:     audit,
	}
}

func countFlags(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func (r *RecordAuthorizationRequest) validate() error {
	if countFlags(r.VehicleRestrictionNone, r.VehicleRestrictionAutomatic,
		r.VehicleRestrictionElectric, r.VehicleRestrictionDisabled) > 1 {
		return apperrors.NewValidation("vehicle_restrictions", "at most one vehicle restriction flag may be set")
	}
	if countFlags(r.DriverRestrictionNone, r.DriverRestrictionGlasses,
		r.DriverRestrictionArtificialLimb, r.DriverRestrictionGlassesAndLimb) > 1 {
		return apperrors.NewValidation("driver_restrictions", "at most one driver restriction flag may be set")
	}

	if r.IsAbsent {
		if r.IsFailed {
			return apperrors.NewValidation("is_absent", "an absent candidate cannot also be marked failed")
		}
		if r.EyeTestResult != nil || r.DrivingTestResult != nil {
			return apperrors.NewValidation("is_absent", "an absent candidate cannot have test results")
		}
		return nil
	}

	if r.EyeTestResult == nil || r.DrivingTestResult == nil {
		return apperrors.NewValidation("test_results", "eye and driving results are required for a present candidate")
	}

	bothPassed := *r.EyeTestResult == models.TestResultPassed && *r.DrivingTestResult == models.TestResultPassed
	if r.IsFailed && bothPassed {
		return apperrors.NewValidation("is_failed", "cannot mark failed when both tests passed")
	}
	if !r.IsFailed && !bothPassed {
		return apperrors.NewValidation("is_failed", "a candidate with a failed test must be marked failed")
	}
	return nil
}

// RecordAuthorization writes the examiner decision sheet for a PAID
// application, sets the test result, and advances the status accordingly.
func (s *AuthorizationService) RecordAuthorization(applicationID uuid.UUID, req *RecordAuthorizationRequest, recordedBy uuid.UUID) (*models.ApplicationAuthorization, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation("", err.Error())
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	var auth *models.ApplicationAuthorization
	var issueEarly bool

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		app, err := LockApplication(tx, applicationID)
		if err != nil {
			return err
		}

		if !app.ApplicationType.RequiresTest() {
			return apperrors.NewValidationf("application_id",
				"type %s has no examination step", app.ApplicationType)
		}
		if app.Status != models.ApplicationStatusPaid {
			return apperrors.NewConflict("application %s is not awaiting examination (status %s)",
				app.ApplicationNumber, app.Status)
		}

		var existing models.ApplicationAuthorization
		err = tx.First(&existing, "application_id = ?", app.ID).Error
		if err == nil {
			return apperrors.NewConflict("an examiner decision already exists for %s", app.ApplicationNumber)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewPersistence("check existing authorization", err)
		}

		now := time.Now()
		auth = &models.ApplicationAuthorization{
			ApplicationID:     app.ID,
			ExaminerID:        req.ExaminerID,
			ExaminerName:      req.ExaminerName,
			AuthorizationDate: &now,
			IsAbsent:          req.IsAbsent,
			IsFailed:          req.IsFailed,
			EyeTestResult:     req.EyeTestResult,
			DrivingTestResult: req.DrivingTestResult,

			VehicleRestrictionNone:      req.VehicleRestrictionNone,
			VehicleRestrictionAutomatic: req.VehicleRestrictionAutomatic,
			VehicleRestrictionElectric:  req.VehicleRestrictionElectric,
			VehicleRestrictionDisabled:  req.VehicleRestrictionDisabled,

			DriverRestrictionNone:           req.DriverRestrictionNone,
			DriverRestrictionGlasses:        req.DriverRestrictionGlasses,
			DriverRestrictionArtificialLimb: req.DriverRestrictionArtificialLimb,
			DriverRestrictionGlassesAndLimb: req.DriverRestrictionGlassesAndLimb,

			Notes:      req.Notes,
			RecordedBy: recordedBy,
		}
		auth.IsAuthorized = auth.TestPassed()
		auth.AppliedRestrictions = auth.RestrictionCodes()

		if err := tx.Create(auth).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewConflict("an examiner decision already exists for %s", app.ApplicationNumber)
			}
			return apperrors.NewPersistence("create authorization", err)
		}

		outcome := auth.Outcome()
		if err := tx.Model(app).Update("test_result", outcome).Error; err != nil {
			return apperrors.NewPersistence("set test result", err)
		}
		app.TestResult = &outcome

		switch outcome {
		case models.TestResultAbsent:
			return ApplyStatusChange(tx, app, models.ApplicationStatusAbsent, recordedBy, "candidate absent")
		case models.TestResultFailed:
			return ApplyStatusChange(tx, app, models.ApplicationStatusFailed, recordedBy, "test failed")
		}

		if err := ApplyStatusChange(tx, app, models.ApplicationStatusPassed, recordedBy, "test passed"); err != nil {
			return err
		}
		if err := ApplyStatusChange(tx, app, models.ApplicationStatusCardPaymentPending, recordedBy, "awaiting card fee"); err != nil {
			return err
		}
		if err := s.openCardOrder(tx, app); err != nil {
			return err
		}

		issueEarly = app.ApplicationType == models.ApplicationTypeNewLicense
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("authorization.recorded", "application", &applicationID, &recordedBy, string(auth.Outcome()))

	// The license can exist as soon as the test is passed; the card is a
	// separate purchase. Failure here is retried by the payment path.
	if issueEarly {
		if _, err := s.licenses.IssueLicense(applicationID, recordedBy); err != nil {
			logrus.WithError(err).WithField("application_id", applicationID).Error("Early license issuance failed")
		}
	}

	return auth, nil
}

func (s *AuthorizationService) openCardOrder(tx *gorm.DB, app *models.Application) error {
	schedule, err := s.fees.LoadSchedule()
	if err != nil {
		return err
	}
	amount, ok := schedule[models.FeeTypeNewLicense]
	if !ok {
		return apperrors.NewPersistence("open card order", errors.New("fee schedule missing NEW_LICENSE_FEE"))
	}

	number, err := s.sequences.NextOrderNumber(tx, time.Now())
	if err != nil {
		return err
	}

	order := &models.CardOrder{
		OrderNumber:   number,
		ApplicationID: app.ID,
		Status:        models.CardOrderStatusPendingPayment,
		Amount:        amount,
	}
	if err := tx.Create(order).Error; err != nil {
		return apperrors.NewPersistence("create card order", err)
	}
	return nil
}

func (s *AuthorizationService) GetAuthorization(applicationID uuid.UUID) (*models.ApplicationAuthorization, error) {
	var auth models.ApplicationAuthorization
	err := s.db.First(&auth, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("authorization", applicationID.String())
		}
		return nil, apperrors.NewPersistence("load authorization", err)
	}
	return &auth, nil
}

// AttachSignature stores the S3 key of the examiner's signature image and
// returns the key it replaced, if any, so the caller can clean up.
func (s *AuthorizationService) AttachSignature(applicationID uuid.UUID, path string) (string, error) {
	var previous string
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var auth models.ApplicationAuthorization
		if err := tx.Where("application_id = ?", applicationID).First(&auth).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("authorization", applicationID.String())
			}
			return apperrors.NewPersistence("load authorization", err)
		}
		previous = auth.ExaminerSignaturePath
		if err := tx.Model(&auth).Update("examiner_signature_path", path).Error; err != nil {
			return apperrors.NewPersistence("attach signature", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}
