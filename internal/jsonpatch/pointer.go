package jsonpatch

import (
	"fmt"
	"strconv"
	"strings"
)

// pointer is a parsed RFC 6901 JSON Pointer. The empty pointer addresses the whole document.
type pointer []string

func parsePointer(s string) (pointer, error) {
	if s == "" {
		return pointer{}, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("pointer %q must start with '/'", s)
	}
	raw := strings.Split(s[1:], "/")
	tokens := make(pointer, len(raw))
	for i, tok := range raw {
		unescaped, err := unescapeToken(tok)
		if err != nil {
			return nil, fmt.Errorf("pointer %q: %w", s, err)
		}
		tokens[i] = unescaped
	}
	return tokens, nil
}

func unescapeToken(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	var b strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			b.WriteByte(tok[i])
			continue
		}
		if i+1 >= len(tok) {
			return "", fmt.Errorf("dangling '~' in %q", tok)
		}
		switch tok[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape '~%c' in %q", tok[i+1], tok)
		}
		i++
	}
	return b.String(), nil
}

// isPrefixOf reports whether p addresses a proper ancestor of other
func (p pointer) isPrefixOf(other pointer) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// arrayIndex parses an array index token. "0" or a digit string without a leading zero.
func arrayIndex(tok string, length int, allowEnd bool) (int, error) {
	if tok == "-" {
		if allowEnd {
			return length, nil
		}
		return 0, fmt.Errorf("index '-' refers past the end of the array")
	}
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("invalid array index %q", tok)
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, fmt.Errorf("invalid array index %q", tok)
		}
	}
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid array index %q", tok)
	}
	limit := length - 1
	if allowEnd {
		limit = length
	}
	if idx > limit {
		return 0, fmt.Errorf("array index %d out of bounds", idx)
	}
	return idx, nil
}
