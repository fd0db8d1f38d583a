// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/madatrans/license-backend/internal/i18n"
	"github.com/madatrans/license-backend/internal/services"
	"github.com/madatrans/license-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /applications/:id/issue
func (h *LicenseHandler) IssueLicense(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := actorID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	license, err := h.licenseService.IssueLicense(id, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseIssued),
		"license": license,
	})
}

// GET /licenses
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.licenseService.ListLicenses(params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /licenses/:number
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	license, err := h.licenseService.GetByNumber(c.Param("number"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, license)
}

// GET /persons/:id/licenses
func (h *LicenseHandler) ListPersonLicenses(c *gin.Context) {
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid person ID", nil)
		return
	}

	licenses, err := h.licenseService.ListForPerson(personID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, licenses)
}
