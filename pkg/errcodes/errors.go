package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	Fields   []FieldError
}

// FieldError is a single failed rule on a submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Fields = err.Fields
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     "not_found",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
		Fields:   []FieldError{{Message: msg}},
	}
}

// ValidationTypeErrors reports submitted values that couldn't be converted to
// their field's type.
func ValidationTypeErrors(fields []FieldError) error {
	msg := ""
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
		Fields:   fields,
	}
}

// ValidationErrors returns a 422 error carrying every failed field, in the
// order the fields are declared. The message is the first failure.
func ValidationErrors(fields []FieldError) error {
	msg := ""
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_error",
		Fields:   fields,
	}
}

// AsValidation extracts the field errors from a validation or type error. ok
// is false for any other kind of error.
func AsValidation(err error) (fields []FieldError, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	if e.Code != "validation_error" && e.Code != "validation_type_error" {
		return nil, false
	}
	return e.Fields, true
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}

// IsNotFound reports whether err is a not-found error for any resource.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == "not_found"
}
