// internal/handlers/fee.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/madatrans/license-backend/internal/services"
	"github.com/madatrans/license-backend/internal/utils"
)

type FeeHandler struct {
	feeService *services.FeeService
}

func NewFeeHandler(feeService *services.FeeService) *FeeHandler {
	return &FeeHandler{
		feeService: feeService,
	}
}

// GET /fee-structures
func (h *FeeHandler) ListFeeStructures(c *gin.Context) {
	fees, err := h.feeService.ListFeeStructures()
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, fees)
}
