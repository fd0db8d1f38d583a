// internal/handlers/transaction.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/madatrans/license-backend/internal/i18n"
	"github.com/madatrans/license-backend/internal/services"
	"github.com/madatrans/license-backend/internal/utils"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// GET /applications/:id/payable
func (h *TransactionHandler) GetPayableFees(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	summary, err := h.transactionService.PayableFees(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /persons/:id/payable
func (h *TransactionHandler) GetPersonPayableFees(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid person ID", nil)
		return
	}

	summaries, err := h.transactionService.PersonPayableFees(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, summaries)
}

// POST /transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	txn, err := h.transactionService.CreateTransaction(&req, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyPaymentCreated),
		"transaction": txn,
	})
}

// POST /transactions/:id/pay
func (h *TransactionHandler) CompletePayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID", nil)
		return
	}

	var req services.CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	txn, err := h.transactionService.CompletePayment(id, &req, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyPaymentCompleted),
		"transaction": txn,
	})
}

// POST /transactions/:id/cancel
func (h *TransactionHandler) CancelTransaction(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID", nil)
		return
	}

	if err := h.transactionService.CancelTransaction(id, userID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cancelled": true})
}

// GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID", nil)
		return
	}

	txn, err := h.transactionService.GetTransaction(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, txn)
}

// GET /transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var locationID *uuid.UUID
	if locationIDStr := c.Query("location_id"); locationIDStr != "" {
		if parsed, err := uuid.Parse(locationIDStr); err == nil {
			locationID = &parsed
		}
	}

	result, err := h.transactionService.ListTransactions(params, locationID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /transactions/summary
func (h *TransactionHandler) GetDailySummary(c *gin.Context) {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid location ID", nil)
		return
	}

	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD", nil)
			return
		}
		day = parsed
	}

	summary, err := h.transactionService.GetDailySummary(locationID, day)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}
