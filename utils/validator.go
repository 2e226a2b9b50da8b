package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"tourguard/models"
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("alert_type", validateAlertType)
	v.RegisterValidation("alert_severity", validateAlertSeverity)
	v.RegisterValidation("geofence_type", validateGeofenceType)
	v.RegisterValidation("location_source", validateLocationSource)

	return &ValidationService{
		validator: v,
	}
}

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []ValidationError{{Message: err.Error()}}
		}
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Value:   fmt.Sprintf("%v", fe.Value()),
				Message: vs.getErrorMessage(fe),
			})
		}
	}

	return validationErrors
}

// Validate wraps ValidateStruct into a VALIDATION_ERROR service error.
func (vs *ValidationService) Validate(s interface{}) error {
	if validationErrors := vs.ValidateStruct(s); len(validationErrors) > 0 {
		return NewValidationErrorWithDetails(validationErrors[0].Message, validationErrors)
	}
	return nil
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "alert_type":
		return "Invalid alert type"
	case "alert_severity":
		return "Invalid alert severity"
	case "geofence_type":
		return "Geofence type must be one of safe, warning, danger"
	case "location_source":
		return "Invalid location source"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Custom validation functions
func validateAlertType(fl validator.FieldLevel) bool {
	return models.AlertType(fl.Field().String()).Valid()
}

func validateAlertSeverity(fl validator.FieldLevel) bool {
	return models.AlertSeverity(fl.Field().String()).Valid()
}

func validateGeofenceType(fl validator.FieldLevel) bool {
	return models.GeofenceType(fl.Field().String()).Valid()
}

func validateLocationSource(fl validator.FieldLevel) bool {
	return models.LocationSource(fl.Field().String()).Valid()
}
