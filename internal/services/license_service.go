// internal/services/license_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/database"
	"github.com/madatrans/license-backend/internal/metrics"
	"github.com/madatrans/license-backend/internal/models"
	"github.com/madatrans/license-backend/internal/utils"
)

type LicenseService struct {
	db            *gorm.DB
	sequences     *SequenceService
	audit         *AuditService
	validityYears int
}

func NewLicenseService(db *gorm.DB, sequences *SequenceService, audit *AuditService, validityYears int) *LicenseService {
	if validityYears <= 0 {
		validityYears = models.ValidityYears
	}
	return &LicenseService{
		db:            db,
		sequences:     sequences,
		audit:         audit,
		validityYears: validityYears,
	}
}

// issuableStatuses lists the statuses in which an application may carry a
// license. NEW_LICENSE applications are additionally issuable at
// CARD_PAYMENT_PENDING so the license exists before the card is ordered.
var issuableStatuses = map[models.ApplicationStatus]bool{
	models.ApplicationStatusApproved:           true,
	models.ApplicationStatusSentToPrinter:      true,
	models.ApplicationStatusCardProduction:     true,
	models.ApplicationStatusReadyForCollection: true,
	models.ApplicationStatusCompleted:          true,
}

// IssueLicense creates the license for an application, exactly once. A
// second call, concurrent or later, returns the already-issued license.
func (s *LicenseService) IssueLicense(applicationID uuid.UUID, issuedBy uuid.UUID) (*models.License, error) {
	// Fast path outside any transaction.
	if existing, err := s.GetByApplication(applicationID); err == nil {
		metrics.IssueDuplicatesSuppressed.Inc()
		return existing, nil
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	var license *models.License
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		app, err := LockApplication(tx, applicationID)
		if err != nil {
			return err
		}

		if !issuableStatuses[app.Status] {
			earlyIssue := app.ApplicationType == models.ApplicationTypeNewLicense &&
				app.Status == models.ApplicationStatusCardPaymentPending
			if !earlyIssue {
				return apperrors.NewConflict("application %s is not issuable (status %s)",
					app.ApplicationNumber, app.Status)
			}
		}

		var location models.Location
		if err := tx.First(&location, "id = ?", app.LocationID).Error; err != nil {
			return apperrors.NewPersistence("load location", err)
		}

		var restrictions models.RestrictionCodeList
		var auth models.ApplicationAuthorization
		err = tx.First(&auth, "application_id = ?", app.ID).Error
		if err == nil {
			restrictions = auth.AppliedRestrictions
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewPersistence("load authorization", err)
		}

		now := time.Now()
		number, err := s.sequences.NextLicenseNumber(tx, location.Code, now)
		if err != nil {
			return err
		}

		expiry := s.expiryFor(app.ApplicationType, now)
		license = &models.License{
			LicenseNumber:            number,
			CreatedFromApplicationID: app.ID,
			PersonID:                 app.PersonID,
			LicenseCategory:          app.LicenseCategory,
			Status:                   models.LicenseStatusActive,
			Restrictions:             restrictions,
			IssueDate:                now,
			ExpiryDate:               expiry,
			IssuedBy:                 issuedBy,
		}
		if err := tx.Create(license).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race; the unique index on the application did
				// its job.
				return errDuplicateIssue
			}
			return apperrors.NewPersistence("create license", err)
		}
		return nil
	})

	if errors.Is(err, errDuplicateIssue) {
		metrics.IssueDuplicatesSuppressed.Inc()
		return s.GetByApplication(applicationID)
	}
	if err != nil {
		return nil, err
	}

	metrics.LicensesIssued.Inc()
	s.audit.Record("license.issued", "license", &license.ID, &issuedBy, license.LicenseNumber)

	logrus.WithFields(logrus.Fields{
		"license_number": license.LicenseNumber,
		"application_id": applicationID,
	}).Info("License issued")

	return license, nil
}

var errDuplicateIssue = errors.New("license already issued")

func (s *LicenseService) expiryFor(appType models.ApplicationType, issued time.Time) *time.Time {
	var expiry time.Time
	switch appType {
	case models.ApplicationTypeTemporaryLicense:
		expiry = issued.AddDate(0, 3, 0)
	case models.ApplicationTypeLearnersPermit, models.ApplicationTypeLearnersPermitCapture:
		expiry = issued.AddDate(1, 0, 0)
	default:
		expiry = issued.AddDate(s.validityYears, 0, 0)
	}
	return &expiry
}

func (s *LicenseService) GetByApplication(applicationID uuid.UUID) (*models.License, error) {
	var license models.License
	err := s.db.First(&license, "created_from_application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("license", applicationID.String())
		}
		return nil, apperrors.NewPersistence("load license", err)
	}
	return &license, nil
}

func (s *LicenseService) GetByNumber(number string) (*models.License, error) {
	var license models.License
	err := s.db.Preload("Person").First(&license, "license_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("license", number)
		}
		return nil, apperrors.NewPersistence("load license", err)
	}
	return &license, nil
}

func (s *LicenseService) ListForPerson(personID uuid.UUID) ([]models.License, error) {
	var licenses []models.License
	err := s.db.Where("person_id = ?", personID).
		Order("issue_date DESC").Find(&licenses).Error
	if err != nil {
		return nil, apperrors.NewPersistence("list licenses", err)
	}
	return licenses, nil
}

func (s *LicenseService) ListLicenses(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.License{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		query = query.Where("license_number ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.NewPersistence("count licenses", err)
	}

	var licenses []models.License
	query = utils.ApplySort(query, params, []string{"created_at", "license_number", "issue_date", "expiry_date"})
	if err := utils.ApplyPagination(query, params).Preload("Person").Find(&licenses).Error; err != nil {
		return nil, apperrors.NewPersistence("list licenses", err)
	}

	result := utils.CreatePaginationResult(licenses, total, params)
	return &result, nil
}
