package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// defaultValidator holds the singleton instance of the validator.
var defaultValidator *validator.Validate

var entityIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-:.]{1,64}$`)

func init() {
	defaultValidator = validator.New()
	_ = defaultValidator.RegisterValidation("entity_id", validateEntityID)
}

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request error listing every failing field.
func ValidateStruct(s interface{}) errors.RiskError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	msgs := make([]string, 0, len(validationErrors))
	riskErr := errors.ErrInvalidRequest("request validation failed")
	for _, fe := range validationErrors {
		field := toSnakeCase(fe.Field())
		msg := formatValidationError(fe)
		riskErr.WithMetadata(field, msg)
		msgs = append(msgs, field+" "+msg)
	}
	sort.Strings(msgs)
	return riskErr.WithMetadata("summary", strings.Join(msgs, "; "))
}

// validateEntityID accepts warehouse entity identifiers.
func validateEntityID(fl validator.FieldLevel) bool {
	return entityIDPattern.MatchString(fl.Field().String())
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "entity_id":
		return "must be a valid entity id"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

// toSnakeCase converts a string from CamelCase to snake_case.
// This is used to format field names in the validation error response.
func toSnakeCase(str string) string {
	var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// ValidateNotEmpty checks if a string is not empty.
func ValidateNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

//Personal.AI order the ending
