package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/playersvc/internal/jsonpatch"
	"github.com/mcoot/playersvc/internal/model"
)

// Detail is a single field-level problem attached to an error response
type Detail struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// APIError represents an API error response
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidFilter    = "INVALID_FILTER"
	CodeInvalidPlayer    = "INVALID_PLAYER"
	CodeMalformedPayload = "MALFORMED_PAYLOAD"
	CodeInvalidPatch     = "INVALID_PATCH"
	CodePatchConflict    = "PATCH_CONFLICT"
	CodePlayerExists     = "PLAYER_EXISTS"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeAmbiguousResult  = "AMBIGUOUS_RESULT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var filterErr *model.FilterValidationError
	if errors.As(err, &filterErr) {
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeInvalidFilter,
			Message: "Invalid filter",
			Details: details(filterErr.Violations),
		}}
	}

	var entityErr *model.EntityValidationError
	if errors.As(err, &entityErr) {
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeInvalidPlayer,
			Message: "Invalid player",
			Details: details(entityErr.Violations),
		}}
	}

	var malformed *model.MalformedPayloadError
	if errors.As(err, &malformed) {
		message := "Malformed request body"
		if malformed.Reason != "" {
			message += ": " + malformed.Reason
		}
		return &httpError{http.StatusBadRequest, APIError{Code: CodeMalformedPayload, Message: message}}
	}

	var patchErr *jsonpatch.Error
	if errors.As(err, &patchErr) {
		if errors.Is(err, jsonpatch.ErrTestFailed) {
			return &httpError{http.StatusConflict, APIError{Code: CodePatchConflict, Message: patchErr.Error()}}
		}
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPatch, Message: patchErr.Error()}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrPlayerExists):
		return &httpError{http.StatusConflict, APIError{Code: CodePlayerExists, Message: "Player already exists"}}
	case errors.Is(err, model.ErrAmbiguousResult):
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeAmbiguousResult, Message: "More than one player matches the id"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

func details(violations model.Violations) []Detail {
	out := make([]Detail, len(violations))
	for i, v := range violations {
		out[i] = Detail{Field: v.Field, Rule: v.Rule, Message: v.Message}
	}
	return out
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}

// NewRouteError creates an error for requests that match no route or method
func NewRouteError(status int, message string) error {
	code := CodeRouteNotFound
	if status == http.StatusMethodNotAllowed {
		code = CodeMethodNotAllowed
	}
	return &httpError{status, APIError{Code: code, Message: message}}
}
