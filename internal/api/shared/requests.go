package shared

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Validate is the shared request validator. Field errors report JSON names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ValidateRequest validates v with its own Validate method when it has one,
// and with struct tags otherwise.
func ValidateRequest(v any) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return Validate.Struct(v)
}

// ParsePage reads skip and limit query parameters. Missing values use the
// defaults; malformed ones are a validation error.
func ParsePage(r *http.Request) (domain.Page, error) {
	var page domain.Page
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, domain.NewValidationError("skip", "must be a non-negative integer", domain.ErrValidation)
		}
		page.Skip = skip
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > domain.MaxPageSize {
			return page, domain.NewValidationError("limit", "must be between 1 and 1000", domain.ErrValidation)
		}
		page.Limit = limit
	}
	return page.Normalize(), nil
}

// ParseBool reads an optional boolean query parameter.
func ParseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewValidationError(name, "must be true or false", domain.ErrValidation)
	}
	return v, nil
}
