package middleware

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare decimals numerically so gt/gte/lt tags apply to prices
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	if err := validate.RegisterValidation("price", validatePrice); err != nil {
		panic(err)
	}
}

// maxPrice is the largest value a NUMERIC(12,2) column holds
var maxPrice = decimal.RequireFromString("9999999999.99")

// validatePrice checks a decimal.Decimal or *decimal.Decimal field for at
// most two fractional digits and the column maximum. The registered custom
// type hands tags a float64, so the exact value is read from the parent.
func validatePrice(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() != reflect.Struct {
		return false
	}
	field := parent.FieldByName(fl.StructFieldName())
	if !field.IsValid() {
		return false
	}
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.Equal(d.Truncate(2)) && d.LessThanOrEqual(maxPrice)
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// RequireJSON rejects requests with a body whose content type is not JSON
func RequireJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					logger.Debug("Rejected non-JSON body",
						zap.String("path", r.URL.Path),
						zap.String("content_type", r.Header.Get("Content-Type")),
					)
					RespondWithError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errors
}

// RespondWithDecodeError answers a failed DecodeAndValidate: field errors
// become 422, malformed JSON becomes 400.
func RespondWithDecodeError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		RespondWithValidationErrors(w, FormatValidationErrors(validationErrors))
		return
	}
	RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return "At least " + e.Param() + " item(s) required"
		}
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "oneof":
		return "Value must be one of: " + e.Param()
	case "url", "http_url":
		return "Invalid URL"
	case "uuid", "uuid4":
		return "Invalid UUID"
	case "price":
		return "Value must have at most 2 decimal places and not exceed 9999999999.99"
	default:
		return "Invalid value"
	}
}
