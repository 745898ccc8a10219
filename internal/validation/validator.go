// Package validation evaluates the rule sets of players and list filters.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/mcoot/playersvc/internal/model"
)

// Limits enforced by the player rule set
const (
	MaxNameLength = 100
	MinAge        = 14
	MaxAge        = 60
	MinRating     = 0
	MaxRating     = 100
)

// Validator checks players and filters against their rule sets
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate returns every violation found in v. An empty result means v is valid.
func (v *Validator) Validate(value model.Validatable) model.Violations {
	switch t := value.(type) {
	case nil:
		return model.Violations{{Field: "value", Rule: model.RuleRequired, Message: "value is required"}}
	case *model.Player:
		return validatePlayer(t)
	case model.PlayerFilter:
		return validateFilter(t)
	case *model.PlayerFilter:
		if t == nil {
			return model.Violations{{Field: "filter", Rule: model.RuleRequired, Message: "filter is required"}}
		}
		return validateFilter(*t)
	default:
		panic(fmt.Sprintf("validation: unsupported type %T", value))
	}
}

func validatePlayer(p *model.Player) model.Violations {
	if p == nil {
		return model.Violations{{Field: "player", Rule: model.RuleRequired, Message: "player is required"}}
	}

	var out model.Violations

	// The id becomes a single path segment of /players/{id}
	if p.ID != "" && (strings.TrimSpace(p.ID) == "" || strings.Contains(p.ID, "/")) {
		out = append(out, model.Violation{
			Field:   "id",
			Rule:    model.RuleFormat,
			Message: "id must not be blank or contain '/'",
		})
	}

	name := strings.TrimSpace(p.Name)
	switch {
	case name == "":
		out = append(out, model.Violation{Field: "name", Rule: model.RuleRequired, Message: "name is required"})
	case utf8.RuneCountInString(name) > MaxNameLength:
		out = append(out, model.Violation{
			Field:   "name",
			Rule:    model.RuleMaxLength,
			Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength),
		})
	}

	if p.Position != "" && !p.Position.Valid() {
		out = append(out, positionViolation())
	}

	if p.Nationality != "" && !isCountryCode(p.Nationality) {
		out = append(out, model.Violation{
			Field:   "nationality",
			Rule:    model.RuleFormat,
			Message: "nationality must be a two-letter upper-case country code",
		})
	}

	if p.Age != 0 && (p.Age < MinAge || p.Age > MaxAge) {
		out = append(out, rangeViolation("age", MinAge, MaxAge))
	}

	if p.Rating < MinRating || p.Rating > MaxRating {
		out = append(out, rangeViolation("rating", MinRating, MaxRating))
	}

	return out
}

func validateFilter(f model.PlayerFilter) model.Violations {
	out := append(model.Violations{}, f.ParseViolations()...)

	if utf8.RuneCountInString(f.Name) > MaxNameLength {
		out = append(out, model.Violation{
			Field:   model.FilterParamName,
			Rule:    model.RuleMaxLength,
			Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength),
		})
	}
	if f.Position != "" && !f.Position.Valid() {
		out = append(out, positionViolation())
	}
	if f.Nationality != "" && !isCountryCode(strings.ToUpper(f.Nationality)) {
		out = append(out, model.Violation{
			Field:   model.FilterParamNationality,
			Rule:    model.RuleFormat,
			Message: "nationality must be a two-letter country code",
		})
	}

	out = append(out, boundViolations(model.FilterParamMinAge, f.MinAge, 0, MaxAge)...)
	out = append(out, boundViolations(model.FilterParamMaxAge, f.MaxAge, 0, MaxAge)...)
	out = append(out, boundViolations(model.FilterParamMinRating, f.MinRating, MinRating, MaxRating)...)
	out = append(out, boundViolations(model.FilterParamMaxRating, f.MaxRating, MinRating, MaxRating)...)

	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		out = append(out, orderViolation(model.FilterParamMinAge, model.FilterParamMaxAge))
	}
	if f.MinRating != nil && f.MaxRating != nil && *f.MinRating > *f.MaxRating {
		out = append(out, orderViolation(model.FilterParamMinRating, model.FilterParamMaxRating))
	}

	return out
}

func boundViolations(field string, value *int, lo, hi int) model.Violations {
	if value == nil || (*value >= lo && *value <= hi) {
		return nil
	}
	return model.Violations{rangeViolation(field, lo, hi)}
}

func rangeViolation(field string, lo, hi int) model.Violation {
	return model.Violation{
		Field:   field,
		Rule:    model.RuleRange,
		Message: fmt.Sprintf("%s must be between %d and %d", field, lo, hi),
	}
}

func orderViolation(minField, maxField string) model.Violation {
	return model.Violation{
		Field:   minField,
		Rule:    model.RuleOrder,
		Message: fmt.Sprintf("%s must not be greater than %s", minField, maxField),
	}
}

func positionViolation() model.Violation {
	names := make([]string, len(model.Positions))
	for i, p := range model.Positions {
		names[i] = string(p)
	}
	return model.Violation{
		Field:   "position",
		Rule:    model.RuleOneOf,
		Message: "position must be one of " + strings.Join(names, ", "),
	}
}

// isCountryCode reports whether s is an upper-case ISO 3166-1 alpha-2 code
// of an assigned country
func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	region, err := language.ParseRegion(s)
	return err == nil && region.IsCountry()
}
