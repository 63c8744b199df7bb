package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/agenda/internal/domain"
)

const maxBodyBytes = 1 << 20

// requestValidator checks request DTOs and reports the first failing field by its JSON name.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &requestValidator{v: v}
}

// Struct validates s, returning a domain.InvalidArgumentError.
func (rv *requestValidator) Struct(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewInvalidArgument("body", err.Error())
	}
	fe := fieldErrs[0]
	return domain.NewInvalidArgument(fieldPath(fe), friendlyMessage(fe))
}

// fieldPath drops the root struct name from the namespace: "createContactRequest.address.city" -> "address.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

// decodeJSON reads a JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewInvalidArgument("body", "request body is empty")
		}
		return domain.NewInvalidArgument("body", "malformed JSON")
	}
	return s.validate.Struct(dst)
}
