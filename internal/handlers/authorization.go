// internal/handlers/authorization.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/madatrans/license-backend/internal/i18n"
	"github.com/madatrans/license-backend/internal/services"
	"github.com/madatrans/license-backend/internal/utils"
)

type AuthorizationHandler struct {
	authorizationService *services.AuthorizationService
	storageService       *services.StorageService
}

func NewAuthorizationHandler(authorizationService *services.AuthorizationService, storageService *services.StorageService) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationService: authorizationService,
		storageService:       storageService,
	}
}

// POST /applications/:id/authorization
func (h *AuthorizationHandler) RecordAuthorization(c *gin.Context) {
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

	var req services.RecordAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auth, err := h.authorizationService.RecordAuthorization(id, &req, userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyAuthorizationRecorded),
		"authorization": auth,
	})
}

// GET /applications/:id/authorization
func (h *AuthorizationHandler) GetAuthorization(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	auth, err := h.authorizationService.GetAuthorization(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, auth)
}

// POST /applications/:id/authorization/signature
func (h *AuthorizationHandler) UploadSignature(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("signature")
	if err != nil {
		utils.BadRequestResponse(c, "signature file is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions("signatures")
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	previous, err := h.authorizationService.AttachSignature(id, result.Key)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	// Best effort removal of the replaced file.
	if previous != "" && previous != result.Key {
		if err := h.storageService.DeleteFile(previous); err != nil {
			logrus.WithError(err).WithField("key", previous).Warn("Failed to delete replaced signature")
		}
	}

	utils.SuccessResponse(c, result)
}

// GET /applications/:id/authorization/signature
func (h *AuthorizationHandler) GetSignatureURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	auth, err := h.authorizationService.GetAuthorization(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	if auth.ExaminerSignaturePath == "" {
		utils.NotFoundResponse(c, "signature")
		return
	}

	url, err := h.storageService.GeneratePresignedURL(auth.ExaminerSignaturePath, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url, "expires_in": int((15 * time.Minute).Seconds())})
}
