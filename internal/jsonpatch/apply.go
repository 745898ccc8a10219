package jsonpatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// Patcher applies JSON Patch documents to serialized documents
type Patcher struct{}

// NewPatcher creates a new Patcher
func NewPatcher() *Patcher {
	return &Patcher{}
}

// Patch applies patch to document and returns the patched document
func (p *Patcher) Patch(document, patch []byte) ([]byte, error) {
	return Apply(document, patch)
}

// Apply decodes patch and document and applies every operation in order.
// The input slices are never modified.
func Apply(document, patch []byte) ([]byte, error) {
	ops, err := Decode(patch)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(document)) == 0 {
		return nil, documentError(ErrInvalidTargetDocument, "document is empty")
	}
	var tree any
	if err := decodeStrict(document, &tree); err != nil {
		return nil, documentError(ErrInvalidTargetDocument, err.Error())
	}

	tree, err = ApplyOperations(tree, ops)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(tree)
	if err != nil {
		return nil, documentError(ErrInvalidTargetDocument, err.Error())
	}
	return out, nil
}

// ApplyOperations applies ops to a copy of tree and returns the result.
// tree itself is left untouched.
func ApplyOperations(tree any, ops []Operation) (any, error) {
	doc := deepCopy(tree)
	for i, op := range ops {
		var err error
		doc, err = op.apply(doc)
		if err != nil {
			kind := ErrInvalidOperation
			if errors.Is(err, errTestMismatch) {
				kind = ErrTestFailed
			}
			return nil, &Error{Kind: kind, Index: i, Op: op.Op, Path: op.Path, Reason: err.Error()}
		}
	}
	return doc, nil
}

var errTestMismatch = errors.New("value does not match")

func (op Operation) apply(doc any) (any, error) {
	// operations built by hand rather than through Decode
	if op.path == nil {
		p, err := parsePointer(op.Path)
		if err != nil {
			return nil, err
		}
		op.path = p
	}
	if op.Op.needsFrom() && op.from == nil {
		p, err := parsePointer(op.From)
		if err != nil {
			return nil, err
		}
		op.from = p
	}

	switch op.Op {
	case OpAdd:
		return add(doc, op.path, deepCopy(op.Value))
	case OpRemove:
		if len(op.path) == 0 {
			return nil, errors.New("cannot remove the document root")
		}
		out, _, err := remove(doc, op.path)
		return out, err
	case OpReplace:
		return replace(doc, op.path, deepCopy(op.Value))
	case OpMove:
		if op.from.isPrefixOf(op.path) {
			return nil, errors.New("cannot move a value into one of its own children")
		}
		if op.From == op.Path {
			if _, err := get(doc, op.from); err != nil {
				return nil, err
			}
			return doc, nil
		}
		if len(op.from) == 0 {
			return nil, errors.New("cannot move the document root")
		}
		out, value, err := remove(doc, op.from)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		return add(out, op.path, value)
	case OpCopy:
		value, err := get(doc, op.from)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		return add(doc, op.path, deepCopy(value))
	case OpTest:
		actual, err := get(doc, op.path)
		if err != nil {
			return nil, err
		}
		if !equal(actual, op.Value) {
			return nil, errTestMismatch
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}

func get(node any, path pointer) (any, error) {
	for _, tok := range path {
		switch n := node.(type) {
		case map[string]any:
			child, ok := n[tok]
			if !ok {
				return nil, fmt.Errorf("path member %q not found", tok)
			}
			node = child
		case []any:
			idx, err := arrayIndex(tok, len(n), false)
			if err != nil {
				return nil, err
			}
			node = n[idx]
		default:
			return nil, fmt.Errorf("cannot traverse into a scalar at %q", tok)
		}
	}
	return node, nil
}

func add(node any, path pointer, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	tok, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		if len(rest) == 0 {
			n[tok] = value
			return n, nil
		}
		child, ok := n[tok]
		if !ok {
			return nil, fmt.Errorf("path member %q not found", tok)
		}
		updated, err := add(child, rest, value)
		if err != nil {
			return nil, err
		}
		n[tok] = updated
		return n, nil
	case []any:
		if len(rest) == 0 {
			idx, err := arrayIndex(tok, len(n), true)
			if err != nil {
				return nil, err
			}
			n = append(n, nil)
			copy(n[idx+1:], n[idx:])
			n[idx] = value
			return n, nil
		}
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, err
		}
		updated, err := add(n[idx], rest, value)
		if err != nil {
			return nil, err
		}
		n[idx] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("cannot traverse into a scalar at %q", tok)
	}
}

// remove deletes the value at path and returns the updated node and the removed value
func remove(node any, path pointer) (any, any, error) {
	tok, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		child, ok := n[tok]
		if !ok {
			return nil, nil, fmt.Errorf("path member %q not found", tok)
		}
		if len(rest) == 0 {
			delete(n, tok)
			return n, child, nil
		}
		updated, removed, err := remove(child, rest)
		if err != nil {
			return nil, nil, err
		}
		n[tok] = updated
		return n, removed, nil
	case []any:
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 {
			removed := n[idx]
			n = append(n[:idx], n[idx+1:]...)
			return n, removed, nil
		}
		updated, removed, err := remove(n[idx], rest)
		if err != nil {
			return nil, nil, err
		}
		n[idx] = updated
		return n, removed, nil
	default:
		return nil, nil, fmt.Errorf("cannot traverse into a scalar at %q", tok)
	}
}

func replace(node any, path pointer, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	if _, err := get(node, path); err != nil {
		return nil, err
	}
	out, _, err := remove(node, path)
	if err != nil {
		return nil, err
	}
	return add(out, path, value)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}

// equal compares two decoded JSON values. Numbers compare by value, objects
// ignore member order.
func equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && numbersEqual(av, bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, child := range av {
			other, ok := bv[k]
			if !ok || !equal(child, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ra, okA := new(big.Rat).SetString(string(a))
	rb, okB := new(big.Rat).SetString(string(b))
	return okA && okB && ra.Cmp(rb) == 0
}
