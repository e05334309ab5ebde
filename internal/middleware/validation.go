package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ordersdash/internal/errors"
)

// Validator checks request structs against their validate tags and
// renders failures as field-level validation errors.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a validator that names fields by their json tag
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()
	_ = v.RegisterValidation("sheetname", isValidSheetName)
	_ = v.RegisterValidation("filename", isValidFilename)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// ValidateStruct returns an *apperrors.APIError listing every failed field
func (m *Validator) ValidateStruct(v any) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidRequestWithError(err)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe.Field(), fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// ValidateVar checks a single value against a tag, e.g. "omitempty,sheetname"
func (m *Validator) ValidateVar(field string, value any, tag string) error {
	err := m.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.ErrValidation(field, formatValidationError(field, fieldErrs[0]))
	}
	return apperrors.ErrValidation(field, err.Error())
}

// IntParam parses an integer query parameter within [min, max]
func IntParam(r *http.Request, param string, min, max, defaultValue int) (int, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param))
	}
	if n < min || n > max {
		return 0, apperrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max))
	}
	return n, nil
}

// EnumParam returns a query parameter that must be one of allowed
func EnumParam(r *http.Request, param string, allowed []string, defaultValue string) (string, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, nil
		}
	}
	return "", apperrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
}

// fieldPath drops the struct name from the namespace, e.g. "join_keys[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(field string, err validator.FieldError) string {
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "sheetname":
		return fmt.Sprintf("%s must be a valid worksheet name", field)
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidSheetName applies the workbook rules for sheet names
func isValidSheetName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len([]rune(name)) > 31 {
		return false
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return false
	}
	return !strings.ContainsAny(name, `[]:*?/\`)
}

func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" || len(filename) > 255 {
		return false
	}
	return !strings.Contains(filename, "..") && !strings.ContainsAny(filename, `/\`)
}
