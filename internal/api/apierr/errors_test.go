package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/playersvc/internal/jsonpatch"
	"github.com/mcoot/playersvc/internal/model"
)

func TestToHTTPError(t *testing.T) {
	violations := model.Violations{{Field: "name", Rule: model.RuleRequired, Message: "name is required"}}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"filter", &model.FilterValidationError{Violations: violations}, http.StatusBadRequest, CodeInvalidFilter},
		{"entity", &model.EntityValidationError{Violations: violations}, http.StatusBadRequest, CodeInvalidPlayer},
		{"wrapped entity", fmt.Errorf("create: %w", &model.EntityValidationError{Violations: violations}), http.StatusBadRequest, CodeInvalidPlayer},
		{"malformed", &model.MalformedPayloadError{Reason: "unknown field"}, http.StatusBadRequest, CodeMalformedPayload},
		{"invalid patch", &jsonpatch.Error{Kind: jsonpatch.ErrInvalidOperation, Index: 0}, http.StatusBadRequest, CodeInvalidPatch},
		{"test failed", &jsonpatch.Error{Kind: jsonpatch.ErrTestFailed, Index: 1}, http.StatusConflict, CodePatchConflict},
		{"not found", fmt.Errorf("get player: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"exists", model.ErrPlayerExists, http.StatusConflict, CodePlayerExists},
		{"ambiguous", model.ErrAmbiguousResult, http.StatusInternalServerError, CodeAmbiguousResult},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
		{"route", NewRouteError(http.StatusNotFound, "no route"), http.StatusNotFound, CodeRouteNotFound},
		{"method", NewRouteError(http.StatusMethodNotAllowed, "no method"), http.StatusMethodNotAllowed, CodeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.status, he.status)
			assert.Equal(t, tt.code, he.apiError.Code)
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestWriteErrorIncludesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, &model.EntityValidationError{Violations: model.Violations{
		{Field: "name", Rule: model.RuleRequired, Message: "name is required"},
		{Field: "age", Rule: model.RuleRange, Message: "age must be between 14 and 60"},
	}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, Detail{Field: "age", Rule: model.RuleRange, Message: "age must be between 14 and 60"}, resp.Error.Details[1])
}

func TestWriteErrorOmitsEmptyDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.ErrPlayerNotFound)

	assert.JSONEq(t, `{"error":{"code":"PLAYER_NOT_FOUND","message":"Player not found"}}`, rr.Body.String())
}

func TestInternalErrorHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("password=hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hunter2")
}
