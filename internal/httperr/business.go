package httperr

import (
	"errors"
	"fmt"
)

// Kind identifies an expected business outcome. Every rejected operation
// reports exactly one kind.
type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindNotFound              Kind = "not_found"
	KindInviteeNotFound       Kind = "invitee_not_found"
	KindForbidden             Kind = "forbidden"
	KindInvalidState          Kind = "invalid_state"
	KindInvalidTransition     Kind = "invalid_transition"
	KindAlreadyResponded      Kind = "already_responded"
	KindExpiredInvite         Kind = "expired_invite"
	KindInvitesExpired        Kind = "invites_expired"
	KindNoInvitees            Kind = "no_invitees"
	KindNoPendingInvitees     Kind = "no_pending_invitees"
	KindPrematureFinalization Kind = "premature_finalization"
	KindUnauthorized          Kind = "unauthorized"
	KindInternal              Kind = "internal_error"
)

type BusinessError struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e BusinessError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

func ErrBusiness(kind Kind, message string, details ...string) error {
	return BusinessError{Kind: kind, Message: message, Details: details}
}

func Validation(details ...string) error {
	return BusinessError{
		Kind:    KindValidation,
		Message: "validation failed",
		Details: details,
	}
}

func NotFound(message string) error {
	return BusinessError{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) error {
	return BusinessError{Kind: KindForbidden, Message: message}
}

func InvalidState(message string) error {
	return BusinessError{Kind: KindInvalidState, Message: message}
}

// AlreadyResponded carries the invitee's current status as its only detail.
func AlreadyResponded(current string) error {
	return BusinessError{
		Kind:    KindAlreadyResponded,
		Message: fmt.Sprintf("invitee already %s", current),
		Details: []string{current},
	}
}

// Internal wraps a store or transport failure. The cause stays available to
// logs through Unwrap and is never rendered to clients.
func Internal(message string, err error) error {
	return BusinessError{Kind: KindInternal, Message: message, Err: err}
}

func IsBusiness(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf returns the kind carried by err, or KindInternal for anything that is
// not a BusinessError.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// AsBusiness returns err as a BusinessError, wrapping unknown errors as internal.
func AsBusiness(err error) BusinessError {
	var be BusinessError
	if errors.As(err, &be) {
		return be
	}
	return BusinessError{Kind: KindInternal, Message: "internal error", Err: err}
}
