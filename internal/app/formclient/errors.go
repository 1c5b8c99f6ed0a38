package formclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/keycase"
)

const defaultFieldMessage = "Invalid input"

// FieldError is one field-level complaint from the backend. Loc is already
// stripped of its leading body marker and converted to camelCase.
type FieldError struct {
	Loc     []string `json:"loc"`
	Message string   `json:"message"`
}

// Path renders Loc in dotted form
func (f FieldError) Path() string { return strings.Join(f.Loc, ".") }

// ValidationError is a rejected submission carrying field errors
type ValidationError struct {
	Status  int
	Message string
	Fields  []FieldError
	// Structured is true for loc/msg lists, false for a plain field map
	Structured bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("backend validation failed (%d): %d field error(s)", e.Status, len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrBackendRejected }

// decodeFailure turns a non-2xx response into an error. The backend is not
// consistent: field errors arrive under detail, errors.detail, or as an
// errors map of field to message or message list.
func decodeFailure(status int, body []byte) error {
	parsed := gjson.ParseBytes(body)

	message := parsed.Get("message").String()
	if message == "" {
		if d := parsed.Get("detail"); d.Type == gjson.String {
			message = d.String()
		}
	}
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}

	if fields, ok := locErrors(parsed.Get("detail")); ok {
		return &ValidationError{Status: status, Message: message, Fields: fields, Structured: true}
	}
	if fields, ok := locErrors(parsed.Get("errors.detail")); ok {
		return &ValidationError{Status: status, Message: message, Fields: fields, Structured: true}
	}
	if errs := parsed.Get("errors"); errs.IsObject() {
		var fields []FieldError
		errs.ForEach(func(key, value gjson.Result) bool {
			msg := value.String()
			if value.IsArray() {
				msg = value.Get("0").String()
			}
			if msg == "" {
				msg = defaultFieldMessage
			}
			segs := strings.Split(key.String(), ".")
			fields = append(fields, FieldError{Loc: keycase.Segments(segs, keycase.ToCamel), Message: msg})
			return true
		})
		if len(fields) > 0 {
			return &ValidationError{Status: status, Message: message, Fields: fields}
		}
	}

	if status == http.StatusNotFound {
		return apperrors.NewResourceNotFoundError(message)
	}
	return apperrors.NewCustomError(apperrors.ErrBackendRejected, message).WithCode(fmt.Sprintf("HTTP_%d", status))
}

func locErrors(list gjson.Result) ([]FieldError, bool) {
	if !list.IsArray() {
		return nil, false
	}
	var fields []FieldError
	for _, item := range list.Array() {
		loc := item.Get("loc").Array()
		if len(loc) < 2 {
			continue
		}
		segs := make([]string, 0, len(loc)-1)
		for _, s := range loc[1:] {
			segs = append(segs, s.String())
		}
		msg := item.Get("msg").String()
		if msg == "" {
			msg = defaultFieldMessage
		}
		fields = append(fields, FieldError{Loc: keycase.Segments(segs, keycase.ToCamel), Message: msg})
	}
	return fields, len(fields) > 0
}
