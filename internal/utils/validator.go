// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/madatrans/license-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("license_category", validateLicenseCategory)
	validate.RegisterValidation("application_type", validateApplicationType)
	validate.RegisterValidation("payment_method", validatePaymentMethod)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateLicenseCategory(fl validator.FieldLevel) bool {
	return models.LicenseCategory(fl.Field().String()).IsValid()
}

func validateApplicationType(fl validator.FieldLevel) bool {
	return models.ApplicationType(fl.Field().String()).IsValid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch models.PaymentMethod(fl.Field().String()) {
	case models.PaymentMethodCash, models.PaymentMethodMobileMoney,
		models.PaymentMethodBankTransfer, models.PaymentMethodCard,
		models.PaymentMethodCheque:
		return true
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "license_category":
		return "Unknown license category"
	case "application_type":
		return "Unknown application type"
	case "payment_method":
		return "Unknown payment method"
	default:
		return e.Field() + " is invalid"
	}
}
