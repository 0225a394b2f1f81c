// Package errors renders failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is the body of every non-2xx API response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// WithDetail copies p with an occurrence-specific message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension copies p with one more extension member. The receiver's map
// is never written to, so templates stay shareable.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

const (
	TypeBadRequest        = "/problems/bad-request"
	TypeValidation        = "/problems/validation-error"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeForbidden         = "/problems/forbidden"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeInsufficientStock = "/problems/insufficient-stock"
	TypeInvalidState      = "/problems/invalid-state"
	TypeInternal          = "/problems/internal-error"
)

func template(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	// ErrBadRequest covers bodies and parameters that could not be parsed.
	ErrBadRequest = template(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	// ErrValidation covers well-formed requests with unacceptable values,
	// including non-positive quantities and unknown statuses.
	ErrValidation   = template(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrUnauthorized = template(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = template(TypeForbidden, "Forbidden", http.StatusForbidden)
	ErrNotFound     = template(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	// ErrConflict covers duplicate line items, names, barcodes and reused
	// idempotency keys.
	ErrConflict = template(TypeConflict, "Conflict", http.StatusConflict)
	// ErrInsufficientStock is returned when completing a sale would take an
	// inventory record below zero.
	ErrInsufficientStock = template(TypeInsufficientStock, "Insufficient Stock", http.StatusConflict)
	// ErrInvalidState is returned when the order's status forbids the change.
	ErrInvalidState = template(TypeInvalidState, "Invalid Order State", http.StatusConflict)
	ErrInternal     = template(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
)
