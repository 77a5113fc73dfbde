package httperr

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

type HTTPError struct {
	Success bool     `json:"success"`
	Kind    Kind     `json:"error_kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

var statusByKind = map[Kind]int{
	KindValidation:            http.StatusBadRequest,
	KindUnauthorized:          http.StatusUnauthorized,
	KindForbidden:             http.StatusForbidden,
	KindNotFound:              http.StatusNotFound,
	KindInviteeNotFound:       http.StatusNotFound,
	KindInvalidState:          http.StatusConflict,
	KindInvalidTransition:     http.StatusConflict,
	KindAlreadyResponded:      http.StatusConflict,
	KindExpiredInvite:         http.StatusGone,
	KindInvitesExpired:        http.StatusGone,
	KindNoInvitees:            http.StatusUnprocessableEntity,
	KindNoPendingInvitees:     http.StatusUnprocessableEntity,
	KindPrematureFinalization: http.StatusUnprocessableEntity,
	KindInternal:              http.StatusInternalServerError,
}

// StatusCode maps a kind to the HTTP status it is reported with.
func StatusCode(kind Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func Write(c *gin.Context, status int, kind Kind, message string, details ...string) {
	c.JSON(status, HTTPError{
		Kind:    kind,
		Message: message,
		Details: details,
	})
}

// FromError renders err as an error envelope. Internal errors are logged with
// their cause and reported with a generic message.
func FromError(c *gin.Context, err error) {
	be := AsBusiness(err)
	if be.Kind == KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed", logging.ErrKey, err)
		Write(c, http.StatusInternalServerError, KindInternal, "internal error")
		return
	}
	Write(c, StatusCode(be.Kind), be.Kind, be.Message, be.Details...)
}

func BadRequest(c *gin.Context, message string, details ...string) {
	Write(c, http.StatusBadRequest, KindValidation, message, details...)
}

func Unauthorized(c *gin.Context, message string) {
	Write(c, http.StatusUnauthorized, KindUnauthorized, message)
}
