package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names recognised by FilterFromQuery
const (
	FilterParamName        = "name"
	FilterParamPosition    = "position"
	FilterParamNationality = "nationality"
	FilterParamMinAge      = "min_age"
	FilterParamMaxAge      = "max_age"
	FilterParamMinRating   = "min_rating"
	FilterParamMaxRating   = "max_rating"
)

// PlayerFilter holds the optional constraints of a list query.
// A nil pointer or empty string means the constraint is not set.
type PlayerFilter struct {
	Name        string // case-insensitive substring
	Position    Position
	Nationality string
	MinAge      *int
	MaxAge      *int
	MinRating   *int
	MaxRating   *int

	// parameters that were present but could not be parsed
	unparsed Violations
}

// FilterFromQuery builds a filter from request query parameters.
// Unrecognised parameters are ignored. Numeric parameters that fail to parse
// are kept aside and reported by validation.
func FilterFromQuery(values url.Values) PlayerFilter {
	f := PlayerFilter{
		Name:        strings.TrimSpace(values.Get(FilterParamName)),
		Position:    Position(strings.ToLower(strings.TrimSpace(values.Get(FilterParamPosition)))),
		Nationality: strings.TrimSpace(values.Get(FilterParamNationality)),
	}
	f.MinAge = f.intParam(values, FilterParamMinAge)
	f.MaxAge = f.intParam(values, FilterParamMaxAge)
	f.MinRating = f.intParam(values, FilterParamMinRating)
	f.MaxRating = f.intParam(values, FilterParamMaxRating)
	return f
}

func (f *PlayerFilter) intParam(values url.Values, key string) *int {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.unparsed = append(f.unparsed, Violation{
			Field:   key,
			Rule:    RuleInteger,
			Message: key + " must be an integer",
		})
		return nil
	}
	return &n
}

// ParseViolations returns the violations recorded while parsing query parameters
func (f PlayerFilter) ParseViolations() Violations {
	return f.unparsed
}

// Matches reports whether p satisfies every constraint of the filter
func (f PlayerFilter) Matches(p *Player) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Position != "" && p.Position != f.Position {
		return false
	}
	if f.Nationality != "" && !strings.EqualFold(p.Nationality, f.Nationality) {
		return false
	}
	if f.MinAge != nil && p.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && p.Age > *f.MaxAge {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && p.Rating > *f.MaxRating {
		return false
	}
	return true
}

func (PlayerFilter) validatable() {}
