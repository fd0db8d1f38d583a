// internal/services/application_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/database"
	"github.com/madatrans/license-backend/internal/metrics"
	"github.com/madatrans/license-backend/internal/models"
	"github.com/madatrans/license-backend/internal/utils"
)

// maxParentDepth bounds the parent chain walk when checking for cycles.
const maxParentDepth = 32

type ApplicationService struct {
	db        *gorm.DB
	sequences *SequenceService
	audit     *AuditService
	draftTTL  time.Duration
}

type CreateApplicationRequest struct {
	ApplicationType     models.ApplicationType `json:"application_type" validate:"required,application_type"`
	LicenseCategory     models.LicenseCategory `json:"license_category" validate:"required,license_category"`
	PersonID            uuid.UUID              `json:"person_id" validate:"required"`
	LocationID          uuid.UUID              `json:"location_id" validate:"required"`
	ParentApplicationID *uuid.UUID             `json:"parent_application_id,omitempty"`
	Notes               string                 `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
	Reason string                   `json:"reason,omitempty"`
	Notes  string                   `json:"notes,omitempty"`
}

func NewApplicationService(db *gorm.DB, sequences *SequenceService, audit *AuditService, draftTTLDays int) *ApplicationService {
	return &ApplicationService{
		db:        db,
		sequences: sequences,
		audit:     audit,
		draftTTL:  time.Duration(draftTTLDays) * 24 * time.Hour,
	}
}

func (s *ApplicationService) CreateApplication(req *CreateApplicationRequest, createdBy uuid.UUID) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation("", err.Error())
	}

	var person models.Person
	if err := s.db.First(&person, "id = ?", req.PersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("person", req.PersonID.String())
		}
		return nil, apperrors.NewPersistence("load person", err)
	}

	var location models.Location
	if err := s.db.First(&location, "id = ? AND is_active = ?", req.LocationID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("location", req.LocationID.String())
		}
		return nil, apperrors.NewPersistence("load location", err)
	}

	now := time.Now()
	if age := person.AgeAt(now); age < req.LicenseCategory.MinimumAge() {
		return nil, apperrors.NewValidationf("license_category",
			"applicant is %d, category %s requires %d", age, req.LicenseCategory, req.LicenseCategory.MinimumAge())
	}

	if req.ParentApplicationID != nil {
		if err := s.checkParentChain(*req.ParentApplicationID, req.PersonID); err != nil {
			return nil, err
		}
	}

	expires := now.Add(s.draftTTL)
	app := &models.Application{
		ApplicationType:     req.ApplicationType,
		LicenseCategory:     req.LicenseCategory,
		Status:              models.ApplicationStatusDraft,
		PersonID:            req.PersonID,
		LocationID:          req.LocationID,
		ParentApplicationID: req.ParentApplicationID,
		DraftExpiresAt:      &expires,
		Notes:               req.Notes,
		CreatedBy:           createdBy,
		UpdatedBy:           createdBy,
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		number, err := s.sequences.NextApplicationNumber(tx, location.Code, req.ApplicationType, now)
		if err != nil {
			return err
		}
		app.ApplicationNumber = number

		if err := tx.Create(app).Error; err != nil {
			return apperrors.NewPersistence("create application", err)
		}

		history := &models.StatusHistory{
			ApplicationID: app.ID,
			FromStatus:    nil,
			ToStatus:      models.ApplicationStatusDraft,
			ChangedBy:     createdBy,
		}
		if err := tx.Create(history).Error; err != nil {
			return apperrors.NewPersistence("create status history", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsCreated.WithLabelValues(string(app.ApplicationType)).Inc()
	s.audit.Record("application.created", "application", &app.ID, &createdBy, app.ApplicationNumber)

	logrus.WithFields(logrus.Fields{
		"application_id":     app.ID,
		"application_number": app.ApplicationNumber,
		"type":               app.ApplicationType,
	}).Info("Application created")

	return app, nil
}

// checkParentChain rejects a missing parent, a parent belonging to another
// person, and a parent chain that would loop.
func (s *ApplicationService) checkParentChain(parentID, personID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	current := &parentID

	for depth := 0; current != nil; depth++ {
		if depth >= maxParentDepth {
			return apperrors.NewValidation("parent_application_id", "parent chain too deep")
		}
		if seen[*current] {
			return apperrors.NewValidation("parent_application_id", "parent chain forms a cycle")
		}
		seen[*current] = true

		var parent models.Application
		if err := s.db.Select("id", "person_id", "parent_application_id").
			First(&parent, "id = ?", *current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("application", current.String())
			}
			return apperrors.NewPersistence("load parent application", err)
		}
		if depth == 0 && parent.PersonID != personID {
			return apperrors.NewValidation("parent_application_id", "parent belongs to a different person")
		}
		current = parent.ParentApplicationID
	}

	return nil
}

func (s *ApplicationService) GetApplication(id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := s.db.
		Preload("Person").
		Preload("Location").
		Preload("Authorization").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("application", id.String())
		}
		return nil, apperrors.NewPersistence("load application", err)
	}
	return &app, nil
}

func (s *ApplicationService) GetByNumber(number string) (*models.Application, error) {
	var app models.Application
	err := s.db.Preload("Person").First(&app, "application_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("application", number)
		}
		return nil, apperrors.NewPersistence("load application", err)
	}
	return &app, nil
}

func (s *ApplicationService) ListApplications(params utils.PaginationParams, appType string, personID *uuid.UUID) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Application{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if appType != "" {
		query = query.Where("application_type = ?", appType)
	}
	if personID != nil {
		query = query.Where("person_id = ?", *personID)
	}
	if params.Search != "" {
		query = query.Where("application_number ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.NewPersistence("count applications", err)
	}

	var apps []models.Application
	query = utils.ApplySort(query, params, []string{"created_at", "application_number", "status", "submitted_date"})
	if err := utils.ApplyPagination(query, params).Preload("Person").Find(&apps).Error; err != nil {
		return nil, apperrors.NewPersistence("list applications", err)
	}

	result := utils.CreatePaginationResult(apps, total, params)
	return &result, nil
}

// ApplyStatusChange moves a locked application to a new status inside the
// caller's transaction. It validates the transition against the type's
// table, stamps stage timestamps, and appends the history row.
func ApplyStatusChange(tx *gorm.DB, app *models.Application, to models.ApplicationStatus, changedBy uuid.UUID, reason string) error {
	return applyStatusChange(tx, app, to, changedBy, reason, "")
}

func applyStatusChange(tx *gorm.DB, app *models.Application, to models.ApplicationStatus, changedBy uuid.UUID, reason, notes string) error {
	from := app.Status
	if !models.TransitionAllowed(app.ApplicationType, from, to) {
		metrics.TransitionsRejected.Inc()
		return apperrors.NewValidationf("status",
			"transition %s -> %s is not allowed for %s", from, to, app.ApplicationType)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_by": changedBy,
	}

	switch to {
	case models.ApplicationStatusSubmitted:
		updates["submitted_date"] = now
		updates["draft_expires_at"] = nil
		app.SubmittedDate = &now
		app.DraftExpiresAt = nil
	case models.ApplicationStatusApproved:
		if app.ApprovedDate == nil {
			updates["approved_date"] = now
			app.ApprovedDate = &now
		}
	case models.ApplicationStatusCompleted:
		updates["actual_completion_date"] = now
		app.ActualCompletionDate = &now
	}

	if err := tx.Model(app).Updates(updates).Error; err != nil {
		return apperrors.NewPersistence("update application status", err)
	}
	app.Status = to

	history := &models.StatusHistory{
		ApplicationID: app.ID,
		FromStatus:    &from,
		ToStatus:      to,
		ChangedBy:     changedBy,
		Reason:        reason,
		Notes:         notes,
	}
	if err := tx.Create(history).Error; err != nil {
		return apperrors.NewPersistence("create status history", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

// LockApplication loads the row FOR UPDATE inside tx.
func LockApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("application", id.String())
		}
		return nil, apperrors.NewPersistence("lock application", err)
	}
	return &app, nil
}

// UpdateStatus applies one externally requested transition.
func (s *ApplicationService) UpdateStatus(id uuid.UUID, req *UpdateStatusRequest, changedBy uuid.UUID) (*models.Application, error) {
	var app *models.Application
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		app, err = LockApplication(tx, id)
		if err != nil {
			return err
		}
		return applyStatusChange(tx, app, req.Status, changedBy, req.Reason, req.Notes)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("application.status_changed", "application", &app.ID, &changedBy, string(req.Status))
	return app, nil
}

// Submit moves a draft to SUBMITTED.
func (s *ApplicationService) Submit(id uuid.UUID, changedBy uuid.UUID) (*models.Application, error) {
	return s.UpdateStatus(id, &UpdateStatusRequest{Status: models.ApplicationStatusSubmitted}, changedBy)
}

// Cancel is legal from any non-terminal status except the production tail.
func (s *ApplicationService) Cancel(id uuid.UUID, reason string, changedBy uuid.UUID) (*models.Application, error) {
	return s.UpdateStatus(id, &UpdateStatusRequest{Status: models.ApplicationStatusCancelled, Reason: reason}, changedBy)
}

// GetAssociatedApplications returns the full family: the root ancestor and
// every descendant, ordered by creation time.
func (s *ApplicationService) GetAssociatedApplications(id uuid.UUID) ([]models.Application, error) {
	app, err := s.GetApplication(id)
	if err != nil {
		return nil, err
	}

	// Walk up to the root.
	root := app
	for depth := 0; root.ParentApplicationID != nil && depth < maxParentDepth; depth++ {
		var parent models.Application
		if err := s.db.First(&parent, "id = ?", *root.ParentApplicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, apperrors.NewPersistence("load parent application", err)
		}
		root = &parent
	}

	// Collect descendants breadth-first.
	family := []models.Application{*root}
	frontier := []uuid.UUID{root.ID}
	for len(frontier) > 0 {
		var children []models.Application
		if err := s.db.Where("parent_application_id IN ?", frontier).
			Order("created_at ASC").Find(&children).Error; err != nil {
			return nil, apperrors.NewPersistence("load child applications", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			family = append(family, child)
			frontier = append(frontier, child.ID)
		}
	}

	return family, nil
}

// ExpireDrafts cancels drafts whose expiry date has passed. Each draft gets
// its own transaction so one conflict does not abort the sweep.
func (s *ApplicationService) ExpireDrafts() (int, error) {
	var expired []models.Application
	err := s.db.Where("status = ? AND draft_expires_at < ?", models.ApplicationStatusDraft, time.Now()).
		Limit(500).Find(&expired).Error
	if err != nil {
		return 0, apperrors.NewPersistence("find expired drafts", err)
	}

	count := 0
	for _, candidate := range expired {
		err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
			app, err := LockApplication(tx, candidate.ID)
			if err != nil {
				return err
			}
			if app.Status != models.ApplicationStatusDraft {
				return nil
			}
			return ApplyStatusChange(tx, app, models.ApplicationStatusCancelled, uuid.Nil, "draft expired")
		})
		if err != nil {
			logrus.WithError(err).WithField("application_id", candidate.ID).Warn("Failed to expire draft")
			continue
		}
		count++
		metrics.DraftsExpired.Inc()
	}

	if count > 0 {
		logrus.WithField("count", count).Info("Expired draft applications")
	}
	return count, nil
}
