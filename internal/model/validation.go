package model

import "strings"

// Validation rule identifiers
const (
	RuleRequired  = "required"
	RuleMaxLength = "max_length"
	RuleOneOf     = "one_of"
	RuleFormat    = "format"
	RuleRange     = "range"
	RuleInteger   = "integer"
	RuleOrder     = "order"
	RuleImmutable = "immutable"
)

// Violation is a single field-level rule failure
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// Violations is the result of validating one value; empty means valid
type Violations []Violation

// Fields returns the distinct field names in order of first appearance
func (v Violations) Fields() []string {
	seen := make(map[string]bool, len(v))
	fields := make([]string, 0, len(v))
	for _, violation := range v {
		if !seen[violation.Field] {
			seen[violation.Field] = true
			fields = append(fields, violation.Field)
		}
	}
	return fields
}

func (v Violations) String() string {
	parts := make([]string, len(v))
	for i, violation := range v {
		parts[i] = violation.Field + ": " + violation.Message
	}
	return strings.Join(parts, "; ")
}

// Validatable is implemented by the closed set of values that can be validated:
// *Player and PlayerFilter
type Validatable interface {
	validatable()
}
