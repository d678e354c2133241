package Models

import (
	"fmt"
	"net/http"
)

// ErrorKind is the machine-readable classification the API returns alongside
// each failure. Clients branch on it: retryable conflicts are re-fetched and
// retried, everything else is a terminal answer.
type ErrorKind string

const (
	ErrNotFound                  ErrorKind = "NotFound"
	ErrValidation                ErrorKind = "ValidationError"
	ErrInvalidState              ErrorKind = "InvalidState"
	ErrConcurrentModification    ErrorKind = "ConcurrentModification"
	ErrStaleLine                 ErrorKind = "StaleLine"
	ErrOverpaymentRejected       ErrorKind = "OverpaymentRejected"
	ErrDuplicateActiveOdontogram ErrorKind = "DuplicateActiveOdontogram"
	ErrUnknownTreatmentCode      ErrorKind = "UnknownTreatmentCode"
	ErrEmptySelection            ErrorKind = "EmptySelection"
	ErrDuplicateSurface          ErrorKind = "DuplicateSurface"
	ErrInvalidTooth              ErrorKind = "InvalidTooth"
	ErrInvoiceNotPayable         ErrorKind = "InvoiceNotPayable"
	ErrAlreadyCancelled          ErrorKind = "AlreadyCancelled"
	ErrAlreadyPaid               ErrorKind = "AlreadyPaid"
	ErrCatalogUnavailable        ErrorKind = "CatalogUnavailable"
)

// Retryable reports whether the caller can expect a different outcome by
// re-reading current state and trying again.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrConcurrentModification, ErrStaleLine, ErrCatalogUnavailable:
		return true
	}
	return false
}

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConcurrentModification, ErrStaleLine, ErrDuplicateActiveOdontogram,
		ErrDuplicateSurface, ErrInvoiceNotPayable, ErrAlreadyCancelled, ErrAlreadyPaid:
		return http.StatusConflict
	case ErrCatalogUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// DomainError carries a kind plus a human-readable message across package
// boundaries without losing the classification.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Retryable() bool {
	return e.Kind.Retryable()
}

func (e *DomainError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func Errf(kind ErrorKind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error, or "" for errors that did not
// originate in this package.
func KindOf(err error) ErrorKind {
	if derr, ok := err.(*DomainError); ok {
		return derr.Kind
	}
	return ""
}
