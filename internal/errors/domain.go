package errors

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies domain errors independently of transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidState
	KindInvalid
	KindUnavailable
)

// DomainError is an error carrying a Kind. Services define their sentinel
// errors with the constructors below and callers branch with errors.Is.
type DomainError struct {
	kind Kind
	msg  string
}

func (e *DomainError) Error() string {
	return e.msg
}

func (e *DomainError) Kind() Kind {
	return e.kind
}

func NewNotFound(msg string) *DomainError {
	return &DomainError{kind: KindNotFound, msg: msg}
}

func NewForbidden(msg string) *DomainError {
	return &DomainError{kind: KindForbidden, msg: msg}
}

func NewConflict(msg string) *DomainError {
	return &DomainError{kind: KindConflict, msg: msg}
}

func NewInvalidState(msg string) *DomainError {
	return &DomainError{kind: KindInvalidState, msg: msg}
}

func NewInvalid(msg string) *DomainError {
	return &DomainError{kind: KindInvalid, msg: msg}
}

func NewUnavailable(msg string) *DomainError {
	return &DomainError{kind: KindUnavailable, msg: msg}
}

// KindOf extracts the Kind from an error chain.
func KindOf(err error) Kind {
	var de *DomainError
	if goerrors.As(err, &de) {
		return de.Kind()
	}
	return KindUnknown
}

// RespondWithDomainError maps a service error onto the API error shape.
func RespondWithDomainError(c *gin.Context, err error) {
	switch KindOf(err) {
	case KindNotFound:
		NotFound(c, err.Error())
	case KindForbidden:
		Forbidden(c, err.Error())
	case KindConflict:
		Conflict(c, err.Error())
	case KindInvalidState:
		UnprocessableEntity(c, err.Error())
	case KindInvalid:
		BadRequest(c, err.Error())
	case KindUnavailable:
		RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, err.Error()))
	default:
		InternalError(c, "")
	}
}
