// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// Problem types as URI references.
const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeInternal     = "/problems/internal-error"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeBadRequest   = "/problems/bad-request"
	TypeTransition   = "/problems/invalid-transition"
	TypeUnavailable  = "/problems/service-unavailable"
)

var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound}

	// ErrValidation indicates the request was well formed but its values were rejected.
	ErrValidation = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}

	// ErrBadRequest indicates the request could not be decoded.
	ErrBadRequest = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}

	// ErrUnauthorized indicates the caller identity is missing.
	ErrUnauthorized = ProblemDetail{Type: TypeUnauthorized, Title: "Unauthorized", Status: http.StatusUnauthorized}

	// ErrForbidden indicates the caller may not perform the action.
	ErrForbidden = ProblemDetail{Type: TypeForbidden, Title: "Forbidden", Status: http.StatusForbidden}

	// ErrInvalidTransition indicates the resource is not in a state that allows the operation.
	ErrInvalidTransition = ProblemDetail{Type: TypeTransition, Title: "Invalid State Transition", Status: http.StatusConflict}

	// ErrUnavailable indicates a transient failure the client may retry.
	ErrUnavailable = ProblemDetail{Type: TypeUnavailable, Title: "Service Unavailable", Status: http.StatusServiceUnavailable}
)
