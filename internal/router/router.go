// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/madatrans/license-backend/internal/config"
	"github.com/madatrans/license-backend/internal/handlers"
	"github.com/madatrans/license-backend/internal/middleware"
	"github.com/madatrans/license-backend/internal/services"
	"github.com/madatrans/license-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.ApplicationService) {
	// Initialize services
	auditService := services.NewAuditService(db)
	sequenceService := services.NewSequenceService(db)
	feeService := services.NewFeeService(db)
	storageService, _ := services.NewStorageService(cfg)
	licenseService := services.NewLicenseService(db, sequenceService, auditService, cfg.Lifecycle.LicenseValidityYears)
	applicationService := services.NewApplicationService(db, sequenceService, auditService, cfg.Lifecycle.DraftTTLDays)
	transactionService := services.NewTransactionService(db, cfg, sequenceService, feeService, licenseService, auditService)
	authorizationService := services.NewAuthorizationService(db, sequenceService, feeService, licenseService, auditService)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	authorizationHandler := handlers.NewAuthorizationHandler(authorizationService, storageService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	auditHandler := handlers.NewAuditHandler(auditService)
	feeHandler := handlers.NewFeeHandler(feeService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired())
	{
		// Application routes
		applications := v1.Group("/applications")
		{
			applications.GET("", applicationHandler.ListApplications)
			applications.GET("/:id", applicationHandler.GetApplication)
			applications.GET("/number/:number", applicationHandler.GetApplicationByNumber)
			applications.GET("/:id/associated", applicationHandler.GetAssociatedApplications)
			applications.GET("/:id/payable", transactionHandler.GetPayableFees)
			applications.GET("/:id/authorization", authorizationHandler.GetAuthorization)
			applications.GET("/:id/authorization/signature", authorizationHandler.GetSignatureURL)
			applications.GET("/:id/audit", auditHandler.ListApplicationAudit)

			officers := applications.Group("")
			officers.Use(middleware.RoleRequired(utils.RoleOfficer))
			{
				officers.POST("", applicationHandler.CreateApplication)
				officers.POST("/:id/submit", applicationHandler.SubmitApplication)
				officers.POST("/:id/cancel", applicationHandler.CancelApplication)
				officers.PUT("/:id/status", applicationHandler.UpdateStatus)
				officers.POST("/:id/issue", licenseHandler.IssueLicense)
			}

			examiners := applications.Group("")
			examiners.Use(middleware.RoleRequired(utils.RoleExaminer))
			{
				examiners.POST("/:id/authorization", authorizationHandler.RecordAuthorization)
				examiners.POST("/:id/authorization/signature", authorizationHandler.UploadSignature)
			}
		}

		// Transaction routes
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.ListTransactions)
			transactions.GET("/summary", transactionHandler.GetDailySummary)
			transactions.GET("/:id", transactionHandler.GetTransaction)

			cashiers := transactions.Group("")
			cashiers.Use(middleware.RoleRequired(utils.RoleCashier))
			{
				cashiers.POST("", transactionHandler.CreateTransaction)
				cashiers.POST("/:id/pay", transactionHandler.CompletePayment)
				cashiers.POST("/:id/cancel", transactionHandler.CancelTransaction)
			}
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("", licenseHandler.ListLicenses)
			licenses.GET("/:number", licenseHandler.GetLicense)
		}

		// Person routes
		persons := v1.Group("/persons")
		{
			persons.GET("/:id/licenses", licenseHandler.ListPersonLicenses)
			persons.GET("/:id/payable", transactionHandler.GetPersonPayableFees)
		}

		// Fee schedule
		v1.GET("/fee-structures", feeHandler.ListFeeStructures)
	}

	return r, applicationService
}
