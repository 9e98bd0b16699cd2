package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/catalog"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
)

var truthyValues = map[string]bool{
	"true": true, "1": true, "si": true, "sí": true,
	"positivo": true, "reactivo": true,
}

var falsyValues = map[string]bool{
	"false": true, "0": true, "no": true,
	"negativo": true, "no reactivo": true,
}

// interpretValue validates and normalizes a raw value against its field
// definition. Numbers accept comma decimals, booleans accept the usual
// Spanish lab vocabulary, selects must match a configured option.
func interpretValue(field *catalog.FieldDefinition, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("value is empty: %w", apperror.ErrValidation)
	}

	switch field.Type {
	case catalog.FieldNumber:
		normalized := strings.ReplaceAll(raw, ",", ".")
		if _, err := strconv.ParseFloat(normalized, 64); err != nil {
			return "", fmt.Errorf("%q is not a number: %w", raw, apperror.ErrValidation)
		}
		return normalized, nil

	case catalog.FieldBoolean:
		normalized, ok := coerceBool(raw)
		if !ok {
			return "", fmt.Errorf("%q is not a recognized boolean: %w", raw, apperror.ErrValidation)
		}
		return normalized, nil

	case catalog.FieldSelect:
		for _, opt := range field.Options {
			if strings.EqualFold(opt, raw) {
				return opt, nil
			}
		}
		return "", fmt.Errorf("%q is not among the field options: %w", raw, apperror.ErrValidation)

	default: // text, textarea
		return raw, nil
	}
}

// coerceBool maps the accepted boolean vocabulary to canonical "true"/"false".
func coerceBool(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if truthyValues[lower] {
		return "true", true
	}
	if falsyValues[lower] {
		return "false", true
	}
	return "", false
}

// referenceRange is a parsed numeric reference range.
type referenceRange struct {
	low, high   float64
	hasLow      bool
	hasHigh     bool
	lowAllowed  bool // boundary value itself is in range
	highAllowed bool
}

func (r referenceRange) outOfRange(v float64) bool {
	if r.hasLow {
		if r.lowAllowed && v < r.low {
			return true
		}
		if !r.lowAllowed && v <= r.low {
			return true
		}
	}
	if r.hasHigh {
		if r.highAllowed && v > r.high {
			return true
		}
		if !r.highAllowed && v >= r.high {
			return true
		}
	}
	return false
}

// parseReferenceRange understands "low-high", "<x", ">x", "<=x" and ">=x".
func parseReferenceRange(s string) (referenceRange, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return referenceRange{}, fmt.Errorf("empty range")
	}

	parseNum := func(part string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(part), 64)
	}

	switch {
	case strings.HasPrefix(s, "<="):
		v, err := parseNum(s[2:])
		if err != nil {
			return referenceRange{}, err
		}
		return referenceRange{high: v, hasHigh: true, highAllowed: true}, nil
	case strings.HasPrefix(s, ">="):
		v, err := parseNum(s[2:])
		if err != nil {
			return referenceRange{}, err
		}
		return referenceRange{low: v, hasLow: true, lowAllowed: true}, nil
	case strings.HasPrefix(s, "<"):
		v, err := parseNum(s[1:])
		if err != nil {
			return referenceRange{}, err
		}
		return referenceRange{high: v, hasHigh: true}, nil
	case strings.HasPrefix(s, ">"):
		v, err := parseNum(s[1:])
		if err != nil {
			return referenceRange{}, err
		}
		return referenceRange{low: v, hasLow: true}, nil
	}

	// "low-high": split on the first '-' that is not a leading sign.
	sep := strings.Index(s[1:], "-")
	if sep < 0 {
		return referenceRange{}, fmt.Errorf("unrecognized range %q", s)
	}
	sep++
	low, err := parseNum(s[:sep])
	if err != nil {
		return referenceRange{}, err
	}
	high, err := parseNum(s[sep+1:])
	if err != nil {
		return referenceRange{}, err
	}
	if low > high {
		return referenceRange{}, fmt.Errorf("inverted range %q", s)
	}
	return referenceRange{
		low: low, high: high,
		hasLow: true, hasHigh: true,
		lowAllowed: true, highAllowed: true,
	}, nil
}

// evaluateRange flags a normalized value against the field's reference range.
// Numbers compare against the parsed numeric range; booleans compare against
// the expected boolean the range text names; selects are flagged when the
// value is not among the options the range text lists (comma separated).
// An unparsable range never rejects the value: the flag stays false and the
// returned warning tells the caller why.
func evaluateRange(field *catalog.FieldDefinition, normalized string) (outOfRange bool, warning string) {
	if field.ReferenceRange == nil || strings.TrimSpace(*field.ReferenceRange) == "" {
		return false, ""
	}
	rangeText := strings.TrimSpace(*field.ReferenceRange)

	switch field.Type {
	case catalog.FieldNumber:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return false, ""
		}
		r, err := parseReferenceRange(rangeText)
		if err != nil {
			return false, fmt.Sprintf("reference range %q could not be evaluated", rangeText)
		}
		return r.outOfRange(v), ""

	case catalog.FieldBoolean:
		expected, ok := coerceBool(rangeText)
		if !ok {
			return false, fmt.Sprintf("reference range %q could not be evaluated", rangeText)
		}
		return normalized != expected, ""

	case catalog.FieldSelect:
		for _, opt := range strings.Split(rangeText, ",") {
			if strings.EqualFold(strings.TrimSpace(opt), normalized) {
				return false, ""
			}
		}
		return true, ""
	}
	return false, ""
}
