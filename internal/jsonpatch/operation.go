// Package jsonpatch applies RFC 6902 JSON Patch documents to JSON documents.
//
// A patch is decoded into a list of operations, the target is decoded into a
// private in-memory tree and the operations are applied to that tree in order.
// If any operation fails the tree is discarded, so callers never observe a
// partially patched document.
package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// OpKind names a patch operation
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
	OpMove    OpKind = "move"
	OpCopy    OpKind = "copy"
	OpTest    OpKind = "test"
)

func (k OpKind) valid() bool {
	switch k {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
		return true
	}
	return false
}

func (k OpKind) needsValue() bool {
	return k == OpAdd || k == OpReplace || k == OpTest
}

func (k OpKind) needsFrom() bool {
	return k == OpMove || k == OpCopy
}

// Operation is one decoded patch step
type Operation struct {
	Op    OpKind
	Path  string
	From  string // move and copy only
	Value any    // add, replace and test only; numbers are json.Number

	path pointer
	from pointer
}

// Decode parses a JSON Patch document. Structural problems are reported as
// *Error with Kind ErrInvalidPatchDocument.
func Decode(patch []byte) ([]Operation, error) {
	trimmed := bytes.TrimSpace(patch)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, documentError(ErrInvalidPatchDocument, "patch must be a JSON array")
	}

	var raw []map[string]json.RawMessage
	if err := decodeStrict(trimmed, &raw); err != nil {
		return nil, documentError(ErrInvalidPatchDocument, err.Error())
	}

	ops := make([]Operation, 0, len(raw))
	for i, fields := range raw {
		op, err := decodeOperation(fields)
		if err != nil {
			return nil, &Error{
				Kind:   ErrInvalidPatchDocument,
				Index:  i,
				Op:     op.Op,
				Path:   op.Path,
				Reason: err.Error(),
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOperation(fields map[string]json.RawMessage) (Operation, error) {
	var op Operation
	if fields == nil {
		return op, errors.New("operation must be a JSON object")
	}

	var kind string
	if err := stringMember(fields, "op", &kind); err != nil {
		return op, err
	}
	op.Op = OpKind(kind)
	if !op.Op.valid() {
		return op, fmt.Errorf("unknown op %q", kind)
	}

	if err := stringMember(fields, "path", &op.Path); err != nil {
		return op, err
	}
	path, err := parsePointer(op.Path)
	if err != nil {
		return op, err
	}
	op.path = path

	if op.Op.needsFrom() {
		if err := stringMember(fields, "from", &op.From); err != nil {
			return op, err
		}
		from, err := parsePointer(op.From)
		if err != nil {
			return op, err
		}
		op.from = from
	}

	if op.Op.needsValue() {
		rawValue, ok := fields["value"]
		if !ok {
			return op, fmt.Errorf("member \"value\" is required for %s", op.Op)
		}
		if err := decodeStrict(rawValue, &op.Value); err != nil {
			return op, fmt.Errorf("member \"value\": %w", err)
		}
	}

	return op, nil
}

func stringMember(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("member %q is required", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("member %q must be a string", name)
	}
	return nil
}

// decodeStrict decodes exactly one JSON value, keeping numbers as json.Number
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
