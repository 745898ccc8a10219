// Package codec converts players to and from their JSON document form.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/playersvc/internal/model"
)

// document is the canonical wire representation of a player.
// Every field is always emitted so JSON Patch paths resolve against it.
type document struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	Nationality string     `json:"nationality"`
	Age         int        `json:"age"`
	Rating      int        `json:"rating"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// JSON serializes players as JSON documents
type JSON struct{}

// New creates a new JSON codec
func New() *JSON {
	return &JSON{}
}

// Serialize renders p as its canonical JSON document
func (c *JSON) Serialize(p *model.Player) ([]byte, error) {
	if p == nil {
		return nil, errors.New("codec: cannot serialize nil player")
	}
	return json.Marshal(fromModel(p))
}

// Deserialize decodes a JSON document into a player.
// Any decoding problem is reported as a *model.MalformedPayloadError.
func (c *JSON) Deserialize(data []byte) (*model.Player, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &model.MalformedPayloadError{Reason: "body is empty"}
	}
	if trimmed[0] != '{' {
		return nil, &model.MalformedPayloadError{Reason: "body must be a JSON object"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, &model.MalformedPayloadError{Reason: describe(err), Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &model.MalformedPayloadError{Reason: "unexpected data after JSON object", Err: err}
	}

	return doc.toModel(), nil
}

func fromModel(p *model.Player) document {
	doc := document{
		ID:          p.ID,
		Name:        p.Name,
		Position:    string(p.Position),
		Nationality: p.Nationality,
		Age:         p.Age,
		Rating:      p.Rating,
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt.UTC()
		doc.CreatedAt = &t
	}
	return doc
}

func (d document) toModel() *model.Player {
	p := &model.Player{
		ID:          d.ID,
		Name:        d.Name,
		Position:    model.Position(d.Position),
		Nationality: d.Nationality,
		Age:         d.Age,
		Rating:      d.Rating,
	}
	if d.CreatedAt != nil {
		p.CreatedAt = d.CreatedAt.UTC()
	}
	return p
}

// describe turns a decoding error into a client-facing reason
func describe(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("field %q must be of type %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Sprintf("value must be of type %s", typeErr.Type)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "unexpected end of JSON input"
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return err.Error()
	}
}
