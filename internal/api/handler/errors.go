package handler

import (
	"net/http"

	"github.com/mcoot/playersvc/internal/api/apierr"
)

// Re-export error codes
const (
	CodeInvalidFilter    = apierr.CodeInvalidFilter
	CodeInvalidPlayer    = apierr.CodeInvalidPlayer
	CodeMalformedPayload = apierr.CodeMalformedPayload
	CodeInvalidPatch     = apierr.CodeInvalidPatch
	CodePatchConflict    = apierr.CodePatchConflict
	CodePlayerExists     = apierr.CodePlayerExists
	CodePlayerNotFound   = apierr.CodePlayerNotFound
	CodeAmbiguousResult  = apierr.CodeAmbiguousResult
	CodeInternalError    = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// errorStatus is the status WriteError would use for err, for bodiless responses
func errorStatus(err error) int {
	return apierr.Status(err)
}
