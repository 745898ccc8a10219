package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mcoot/playersvc/internal/model"
)

// MaxBodyBytes caps the size of any request body
const MaxBodyBytes = 1 << 20

// ReadBody reads the whole request body, refusing anything over MaxBodyBytes.
// Oversized or unreadable bodies are reported as *model.MalformedPayloadError.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &model.MalformedPayloadError{
				Reason: fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit),
				Err:    err,
			}
		}
		return nil, &model.MalformedPayloadError{Reason: "body could not be read", Err: err}
	}
	return data, nil
}
