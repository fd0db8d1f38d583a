// internal/services/audit_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/madatrans/license-backend/internal/models"
)

// AuditService appends audit events outside the request transaction. A
// failed write is logged and dropped; auditing never fails the operation it
// describes.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(action, entityType string, entityID, actorID *uuid.UUID, detail string) {
	event := &models.AuditEvent{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Detail:     detail,
	}

	go func() {
		if err := s.db.Create(event).Error; err != nil {
			logrus.WithError(err).WithField("action", action).Error("Failed to write audit event")
		}
	}()
}

func (s *AuditService) ListForEntity(entityType string, entityID uuid.UUID, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []models.AuditEvent
	err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
