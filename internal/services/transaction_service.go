// internal/services/transaction_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/config"
	"github.com/madatrans/license-backend/internal/database"
	"github.com/madatrans/license-backend/internal/metrics"
	"github.com/madatrans/license-backend/internal/models"
	"github.com/madatrans/license-backend/internal/utils"
)

type TransactionService struct {
	db        *gorm.DB
	config    *config.Config
	sequences *SequenceService
	fees      *FeeService
	licenses  *LicenseService
	audit     *AuditService
}

type CreateTransactionRequest struct {
	ApplicationIDs []uuid.UUID `json:"application_ids" validate:"required,min=1"`
	LocationID     uuid.UUID   `json:"location_id" validate:"required"`
	Notes          string      `json:"notes,omitempty"`
}

type CompletePaymentRequest struct {
	PaymentMethod    models.PaymentMethod `json:"payment_method" validate:"required,payment_method"`
	PaymentReference string               `json:"payment_reference,omitempty"`
}

type PayableSummary struct {
	ApplicationID     uuid.UUID `json:"application_id"`
	ApplicationNumber string    `json:"application_number"`
	Lines             []FeeLine `json:"lines"`
	Total             int64     `json:"total"`
}

type DailySummary struct {
	Date         string                         `json:"date"`
	LocationID   uuid.UUID                      `json:"location_id"`
	Total        int64                          `json:"total"`
	Transactions int64                          `json:"transactions"`
	ByMethod     map[models.PaymentMethod]int64 `json:"by_method"`
	ByFeeType    map[models.FeeType]int64       `json:"by_fee_type"`
}

func NewTransactionService(db *gorm.DB, cfg *config.Config, sequences *SequenceService, fees *FeeService, licenses *LicenseService, audit *AuditService) *TransactionService {
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
	}
	return &TransactionService{
		db:        db,
		config:    cfg,
		sequences: sequences,
		fees:      fees,
		licenses:  licenses,
		audit:     audit,
	}
}

// PayableFees returns what one application owes at its current stage.
func (s *TransactionService) PayableFees(applicationID uuid.UUID) (*PayableSummary, error) {
	var app models.Application
	if err := s.db.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("application", applicationID.String())
		}
		return nil, apperrors.NewPersistence("load application", err)
	}

	schedule, err := s.fees.LoadSchedule()
	if err != nil {
		return nil, err
	}

	lines, err := RequiredFees(&app, schedule)
	if err != nil {
		return nil, err
	}

	return &PayableSummary{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Lines:             lines,
		Total:             TotalAmount(lines),
	}, nil
}

// PersonPayableFees returns the payable summary for every open application
// of a person that currently owes something. Cashiers use it to build a
// transaction at the counter.
func (s *TransactionService) PersonPayableFees(personID uuid.UUID) ([]PayableSummary, error) {
	var apps []models.Application
	err := s.db.Where("person_id = ?", personID).
		Where("status IN ?", []models.ApplicationStatus{
			models.ApplicationStatusSubmitted,
			models.ApplicationStatusOnHold,
			models.ApplicationStatusCardPaymentPending,
		}).
		Order("created_at ASC").Find(&apps).Error
	if err != nil {
		return nil, apperrors.NewPersistence("list applications", err)
	}

	schedule, err := s.fees.LoadSchedule()
	if err != nil {
		return nil, err
	}

	summaries := make([]PayableSummary, 0, len(apps))
	for i := range apps {
		lines, err := RequiredFees(&apps[i], schedule)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			continue
		}
		summaries = append(summaries, PayableSummary{
			ApplicationID:     apps[i].ID,
			ApplicationNumber: apps[i].ApplicationNumber,
			Lines:             lines,
			Total:             TotalAmount(lines),
		})
	}
	return summaries, nil
}

// CreateTransaction opens a PENDING transaction covering the fees currently
// due for the listed applications. All applications must belong to the same
// person.
func (s *TransactionService) CreateTransaction(req *CreateTransactionRequest, cashierID uuid.UUID) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation("", err.Error())
	}

	schedule, err := s.fees.LoadSchedule()
	if err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var personID uuid.UUID
		var items []models.TransactionItem
		var total int64
		hasTestFees, hasCardFees := false, false

		for i, appID := range req.ApplicationIDs {
			app, err := LockApplication(tx, appID)
			if err != nil {
				return err
			}

			if i == 0 {
				personID = app.PersonID
			} else if app.PersonID != personID {
				return apperrors.NewValidation("application_ids", "applications belong to different persons")
			}

			if app.Status != models.ApplicationStatusSubmitted &&
				app.Status != models.ApplicationStatusOnHold &&
				app.Status != models.ApplicationStatusCardPaymentPending {
				return apperrors.NewConflict("application %s is not awaiting payment (status %s)",
					app.ApplicationNumber, app.Status)
			}

			lines, err := RequiredFees(app, schedule)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return apperrors.NewValidationf("application_ids",
					"nothing is due for application %s", app.ApplicationNumber)
			}

			for _, line := range lines {
				if line.FeeType == models.FeeTypeNewLicense {
					hasCardFees = true
				} else {
					hasTestFees = true
				}
				items = append(items, models.TransactionItem{
					ApplicationID: app.ID,
					FeeType:       line.FeeType,
					Amount:        line.Amount,
					Description:   string(line.FeeType),
				})
				total += line.Amount
			}
		}

		txnType := models.TransactionTypeApplicationPayment
		switch {
		case hasTestFees && hasCardFees:
			txnType = models.TransactionTypeMixedPayment
		case hasCardFees:
			txnType = models.TransactionTypeCardOrderPayment
		}

		number, err := s.sequences.NextTransactionNumber(tx, time.Now())
		if err != nil {
			return err
		}

		txn = &models.Transaction{
			TransactionNumber: number,
			TransactionType:   txnType,
			Status:            models.TransactionStatusPending,
			PersonID:          personID,
			LocationID:        req.LocationID,
			TotalAmount:       total,
			CashierID:         cashierID,
			Notes:             req.Notes,
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.NewPersistence("create transaction", err)
		}

		for i := range items {
			items[i].TransactionID = txn.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperrors.NewPersistence("create transaction items", err)
		}
		txn.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("transaction.created", "transaction", &txn.ID, &cashierID, txn.TransactionNumber)
	return txn, nil
}

// CompletePayment marks a PENDING transaction PAID and advances every
// covered application. Stage flags and transitions are applied under row
// locks; a stale application status aborts the whole payment.
func (s *TransactionService) CompletePayment(txnID uuid.UUID, req *CompletePaymentRequest, cashierID uuid.UUID) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation("", err.Error())
	}

	var txn models.Transaction
	var approved []uuid.UUID

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&txn, "id = ?", txnID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("transaction", txnID.String())
			}
			return apperrors.NewPersistence("lock transaction", err)
		}

		if txn.Status == models.TransactionStatusPaid {
			return apperrors.NewConflict("transaction %s is already paid", txn.TransactionNumber)
		}
		if txn.Status != models.TransactionStatusPending {
			return apperrors.NewConflict("transaction %s is %s", txn.TransactionNumber, txn.Status)
		}

		reference := req.PaymentReference
		if req.PaymentMethod == models.PaymentMethodCard && s.config.Payment.CardCaptureEnabled {
			intentID, err := s.captureCardPayment(&txn)
			if err != nil {
				return err
			}
			reference = intentID
		}

		// Group the items per application, then advance each one once.
		perApp := map[uuid.UUID][]models.TransactionItem{}
		for _, item := range txn.Items {
			perApp[item.ApplicationID] = append(perApp[item.ApplicationID], item)
		}

		now := time.Now()
		for appID, items := range perApp {
			app, err := LockApplication(tx, appID)
			if err != nil {
				return err
			}

			isCardPayment := false
			for _, item := range items {
				if item.FeeType == models.FeeTypeNewLicense {
					isCardPayment = true
				}
			}

			if err := s.advanceAfterPayment(tx, app, isCardPayment, now, cashierID); err != nil {
				return err
			}
			if app.Status == models.ApplicationStatusApproved {
				approved = append(approved, app.ID)
			}
		}

		receipt, err := s.sequences.NextReceiptNumber(tx, now)
		if err != nil {
			return err
		}

		method := req.PaymentMethod
		updates := map[string]interface{}{
			"status":            models.TransactionStatusPaid,
			"receipt_number":    receipt,
			"payment_method":    method,
			"payment_reference": reference,
			"paid_at":           now,
		}
		if err := tx.Model(&txn).Updates(updates).Error; err != nil {
			return apperrors.NewPersistence("update transaction", err)
		}
		txn.Status = models.TransactionStatusPaid
		txn.ReceiptNumber = &receipt
		txn.PaymentMethod = &method
		txn.PaymentReference = reference
		txn.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsCompleted.WithLabelValues(string(req.PaymentMethod)).Inc()
	for _, item := range txn.Items {
		metrics.PaymentAmount.WithLabelValues(string(item.FeeType)).Add(float64(item.Amount))
	}
	s.audit.Record("transaction.paid", "transaction", &txn.ID, &cashierID, txn.TransactionNumber)

	// Issue licenses after commit. The issuer is idempotent, so a crash
	// between commit and here only delays issuance until the next trigger.
	for _, appID := range approved {
		if _, err := s.licenses.IssueLicense(appID, cashierID); err != nil {
			logrus.WithError(err).WithField("application_id", appID).Error("Post-payment license issuance failed")
		}
	}

	return &txn, nil
}

// stageStep is one status transition the payment advance walks through.
type stageStep struct {
	status models.ApplicationStatus
	reason string
}

// paymentAdvance is the planned effect of one paid application. Computing
// it is pure so the stage rules can be checked without a store.
type paymentAdvance struct {
	markTestPaid  bool
	markCardPaid  bool
	markCardOrder bool
	steps         []stageStep
}

// planPaymentAdvance applies the stage rules for one paid application.
// Stale statuses surface as conflicts so a racing payment is rejected
// rather than silently skipped.
func planPaymentAdvance(app *models.Application, isCardPayment bool) (paymentAdvance, error) {
	appType := app.ApplicationType

	switch {
	case appType.UsesCaptureFlow():
		// Captures are approved directly once the capture fee is paid.
		if app.CardPaymentCompleted {
			return paymentAdvance{}, apperrors.NewConflict("capture fee already paid for %s", app.ApplicationNumber)
		}
		if app.Status != models.ApplicationStatusSubmitted {
			return paymentAdvance{}, apperrors.NewConflict("application %s is not awaiting payment (status %s)",
				app.ApplicationNumber, app.Status)
		}
		return paymentAdvance{
			markCardPaid: true,
			steps:        []stageStep{{models.ApplicationStatusApproved, "capture fee paid"}},
		}, nil

	case appType.IsStagedPayment() && !isCardPayment:
		if app.TestPaymentCompleted && app.Status != models.ApplicationStatusOnHold {
			return paymentAdvance{}, apperrors.NewConflict("test fees already paid for %s", app.ApplicationNumber)
		}
		if app.Status != models.ApplicationStatusSubmitted && app.Status != models.ApplicationStatusOnHold {
			return paymentAdvance{}, apperrors.NewConflict("application %s is not awaiting payment (status %s)",
				app.ApplicationNumber, app.Status)
		}
		reason := "test fees paid"
		if app.Status == models.ApplicationStatusOnHold {
			reason = "retest fees paid"
		}
		return paymentAdvance{
			markTestPaid: true,
			steps:        []stageStep{{models.ApplicationStatusPaid, reason}},
		}, nil

	case appType.IsStagedPayment() && isCardPayment:
		if !app.TestPaymentCompleted {
			return paymentAdvance{}, apperrors.NewConflict("card fee cannot precede test fees for %s", app.ApplicationNumber)
		}
		if app.CardPaymentCompleted {
			return paymentAdvance{}, apperrors.NewConflict("card fee already paid for %s", app.ApplicationNumber)
		}
		if app.Status != models.ApplicationStatusCardPaymentPending {
			return paymentAdvance{}, apperrors.NewConflict("application %s is not awaiting the card fee (status %s)",
				app.ApplicationNumber, app.Status)
		}
		return paymentAdvance{
			markCardPaid:  true,
			markCardOrder: true,
			steps:         []stageStep{{models.ApplicationStatusApproved, "card fee paid"}},
		}, nil

	default:
		// Single-payment types go through PAID on their way to APPROVED so
		// the history shows the payment step.
		if app.CardPaymentCompleted {
			return paymentAdvance{}, apperrors.NewConflict("fees already paid for %s", app.ApplicationNumber)
		}
		if app.Status != models.ApplicationStatusSubmitted {
			return paymentAdvance{}, apperrors.NewConflict("application %s is not awaiting payment (status %s)",
				app.ApplicationNumber, app.Status)
		}
		return paymentAdvance{
			markCardPaid: true,
			steps: []stageStep{
				{models.ApplicationStatusPaid, "fees paid"},
				{models.ApplicationStatusApproved, "no examination required"},
			},
		}, nil
	}
}

// advanceAfterPayment executes the planned stage effects inside tx.
func (s *TransactionService) advanceAfterPayment(tx *gorm.DB, app *models.Application, isCardPayment bool, now time.Time, cashierID uuid.UUID) error {
	plan, err := planPaymentAdvance(app, isCardPayment)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if plan.markTestPaid {
		updates["test_payment_completed"] = true
		updates["test_payment_date"] = now
	}
	if plan.markCardPaid {
		updates["card_payment_completed"] = true
		updates["card_payment_date"] = now
	}
	if len(updates) > 0 {
		if err := tx.Model(app).Updates(updates).Error; err != nil {
			return apperrors.NewPersistence("mark payment stage", err)
		}
		if plan.markTestPaid {
			app.TestPaymentCompleted = true
		}
		if plan.markCardPaid {
			app.CardPaymentCompleted = true
		}
	}

	if plan.markCardOrder {
		if err := s.markCardOrderPaid(tx, app.ID); err != nil {
			return err
		}
	}

	for _, step := range plan.steps {
		if err := ApplyStatusChange(tx, app, step.status, cashierID, step.reason); err != nil {
			return err
		}
	}
	return nil
}

func (s *TransactionService) markCardOrderPaid(tx *gorm.DB, applicationID uuid.UUID) error {
	var order models.CardOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "application_id = ?", applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewPersistence("lock card order", err)
	}
	if order.Status != models.CardOrderStatusPendingPayment {
		return nil
	}
	now := time.Now()
	if err := tx.Model(&order).Updates(map[string]interface{}{
		"status":     models.CardOrderStatusPaid,
		"ordered_at": now,
	}).Error; err != nil {
		return apperrors.NewPersistence("update card order", err)
	}
	return nil
}

// captureCardPayment creates and confirms a Stripe PaymentIntent for the
// transaction total. Ariary has no minor unit.
func (s *TransactionService) captureCardPayment(txn *models.Transaction) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(txn.TotalAmount),
		Currency: stripe.String("mga"),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
	}
	params.AddMetadata("transaction_number", txn.TransactionNumber)
	params.AddMetadata("person_id", txn.PersonID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", apperrors.NewPersistence("stripe payment intent", err)
	}
	return intent.ID, nil
}

// CancelTransaction voids a PENDING transaction.
func (s *TransactionService) CancelTransaction(txnID uuid.UUID, cashierID uuid.UUID) error {
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&txn, "id = ?", txnID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("transaction", txnID.String())
			}
			return apperrors.NewPersistence("lock transaction", err)
		}
		if txn.Status != models.TransactionStatusPending {
			return apperrors.NewConflict("transaction %s is %s", txn.TransactionNumber, txn.Status)
		}
		return tx.Model(&txn).Update("status", models.TransactionStatusCancelled).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record("transaction.cancelled", "transaction", &txnID, &cashierID, "")
	return nil
}

func (s *TransactionService) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Preload("Items").Preload("Person").First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("transaction", id.String())
		}
		return nil, apperrors.NewPersistence("load transaction", err)
	}
	return &txn, nil
}

func (s *TransactionService) ListTransactions(params utils.PaginationParams, locationID *uuid.UUID) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Transaction{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}
	if params.Search != "" {
		query = query.Where("transaction_number ILIKE ? OR receipt_number ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.NewPersistence("count transactions", err)
	}

	var txns []models.Transaction
	query = utils.ApplySort(query, params, []string{"created_at", "transaction_number", "paid_at", "total_amount"})
	if err := utils.ApplyPagination(query, params).Preload("Items").Find(&txns).Error; err != nil {
		return nil, apperrors.NewPersistence("list transactions", err)
	}

	result := utils.CreatePaginationResult(txns, total, params)
	return &result, nil
}

// GetDailySummary aggregates the paid transactions of one office for one
// day.
func (s *TransactionService) GetDailySummary(locationID uuid.UUID, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var txns []models.Transaction
	err := s.db.Preload("Items").
		Where("location_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?",
			locationID, models.TransactionStatusPaid, start, end).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.NewPersistence("load daily transactions", err)
	}

	summary := &DailySummary{
		Date:       start.Format("2006-01-02"),
		LocationID: locationID,
		ByMethod:   make(map[models.PaymentMethod]int64),
		ByFeeType:  make(map[models.FeeType]int64),
	}

	for _, txn := range txns {
		summary.Total += txn.TotalAmount
		summary.Transactions++
		if txn.PaymentMethod != nil {
			summary.ByMethod[*txn.PaymentMethod] += txn.TotalAmount
		}
		for _, item := range txn.Items {
			summary.ByFeeType[item.FeeType] += item.Amount
		}
	}

	return summary, nil
}
