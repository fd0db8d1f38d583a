// internal/services/sequence_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/madatrans/license-backend/internal/models"
)

// SequenceService hands out gapless-per-name counters backed by the
// sequence_counters table. Next must run inside the caller's transaction so
// the increment commits or rolls back together with the row that consumed
// the number.
type SequenceService struct {
	db *gorm.DB
}

func NewSequenceService(db *gorm.DB) *SequenceService {
	return &SequenceService{db: db}
}

// Next increments and returns the counter for name. The row is seeded with
// an ON CONFLICT DO NOTHING insert so a lost insert race never aborts the
// surrounding transaction, then locked with FOR UPDATE so two concurrent
// callers serialize on the same name and can never observe the same value.
func (s *SequenceService) Next(tx *gorm.DB, name string) (int64, error) {
	seed := models.SequenceCounter{Name: name, Value: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("failed to seed sequence %s: %w", name, err)
	}

	var counter models.SequenceCounter
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error; err != nil {
		return 0, fmt.Errorf("failed to lock sequence %s: %w", name, err)
	}

	counter.Value++
	if err := tx.Model(&models.SequenceCounter{}).
		Where("name = ?", name).
		Update("value", counter.Value).Error; err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}

	return counter.Value, nil
}

// NextApplicationNumber formats {OFFICE}-{TYPE}-{YEAR}-{SEQ}. The counter
// is scoped per office, type and year so each office starts at 0001 every
// January.
func (s *SequenceService) NextApplicationNumber(tx *gorm.DB, officeCode string, appType models.ApplicationType, now time.Time) (string, error) {
	year := now.Year()
	name := fmt.Sprintf("app:%s:%s:%d", officeCode, appType.Code(), year)
	seq, err := s.Next(tx, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d-%04d", officeCode, appType.Code(), year, seq), nil
}

// NextTransactionNumber formats TXN{YYYYMMDD}{SEQ}.
func (s *SequenceService) NextTransactionNumber(tx *gorm.DB, now time.Time) (string, error) {
	return s.nextDated(tx, "TXN", now)
}

// NextReceiptNumber formats RCP{YYYYMMDD}{SEQ}.
func (s *SequenceService) NextReceiptNumber(tx *gorm.DB, now time.Time) (string, error) {
	return s.nextDated(tx, "RCP", now)
}

// NextOrderNumber formats CO{YYYYMMDD}{SEQ}.
func (s *SequenceService) NextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	return s.nextDated(tx, "CO", now)
}

func (s *SequenceService) nextDated(tx *gorm.DB, prefix string, now time.Time) (string, error) {
	day := now.Format("20060102")
	seq, err := s.Next(tx, fmt.Sprintf("%s:%s", prefix, day))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%04d", prefix, day, seq), nil
}

// NextLicenseNumber formats {OFFICE}{YEAR}{SEQ:06d}.
func (s *SequenceService) NextLicenseNumber(tx *gorm.DB, officeCode string, now time.Time) (string, error) {
	year := now.Year()
	seq, err := s.Next(tx, fmt.Sprintf("lic:%s:%d", officeCode, year))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%06d", officeCode, year, seq), nil
}
