// internal/models/audit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is an append-only record of who did what. Rows are written by
// the audit service and never updated or deleted.
type AuditEvent struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Action     string     `json:"action" gorm:"size:60;not null;index"`
	EntityType string     `json:"entity_type" gorm:"size:40;not null;index"`
	EntityID   *uuid.UUID `json:"entity_id" gorm:"type:uuid;index"`
	ActorID    *uuid.UUID `json:"actor_id" gorm:"type:uuid;index"`
	Detail     string     `json:"detail,omitempty" gorm:"type:text"`
	IPAddress  string     `json:"ip_address,omitempty" gorm:"size:45"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
