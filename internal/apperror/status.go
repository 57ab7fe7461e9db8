package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-variation-service/pkg/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is the machine readable error code returned to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	case errors.Is(err, ErrBusy):
		return "busy"
	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch Code(err) {
	case "validation_failed":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "out_of_stock":
		return http.StatusConflict
	case "forbidden":
		return http.StatusForbidden
	case "busy":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func GRPCCode(err error) codes.Code {
	switch Code(err) {
	case "validation_failed":
		return codes.InvalidArgument
	case "not_found":
		return codes.NotFound
	case "out_of_stock":
		return codes.FailedPrecondition
	case "forbidden":
		return codes.PermissionDenied
	case "persistence_failure":
		return codes.Aborted
	case "busy":
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// GRPCError converts err into a status error with a localized message.
func GRPCError(err error, langs ...string) error {
	return status.Error(GRPCCode(err), Message(err, langs...))
}

// Message localizes the top-level message for err. Internal errors never leak
// their cause.
func Message(err error, langs ...string) string {
	var nf *NotFoundError
	switch Code(err) {
	case "validation_failed":
		return i18n.T("validation.failed", nil, langs...)
	case "not_found":
		resource := "Resource"
		if errors.As(err, &nf) {
			resource = nf.Resource
		}
		return i18n.T("error.not_found", map[string]any{"Resource": resource}, langs...)
	case "out_of_stock":
		return i18n.T("error.out_of_stock", nil, langs...)
	case "forbidden":
		return i18n.T("error.forbidden", nil, langs...)
	case "persistence_failure":
		return i18n.T("error.persistence", nil, langs...)
	case "busy":
		return i18n.T("error.busy", nil, langs...)
	default:
		return i18n.T("error.internal", nil, langs...)
	}
}

// FieldMessage is a localized field error as sent to clients.
type FieldMessage struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Body is the JSON error envelope: {code, message, fields}.
type Body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Fields  []FieldMessage `json:"fields,omitempty"`
}

func NewBody(err error, langs ...string) Body {
	b := Body{Code: Code(err), Message: Message(err, langs...)}
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			data := map[string]any{"Field": fieldName(f.Field)}
			for k, v := range f.Data {
				data[k] = v
			}
			b.Fields = append(b.Fields, FieldMessage{
				Field:   f.Field,
				Code:    f.MessageID,
				Message: i18n.T(f.MessageID, data, langs...),
			})
		}
	}
	return b
}

// fieldName is the last segment of a field path: "variations[2].price" gives "price".
func fieldName(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
