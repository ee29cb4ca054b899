package clause

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"

	// EqualOperator is applied to comparisons given as bare values.
	EqualOperator = "="

	// Empty is the WHERE fragment emitted when no filter applies.
	Empty = " "
)

// Comparison is one `<property> <operator> '<value>'` term.
type Comparison struct {
	Property string
	Operator string
	Value    any

	// set when decoded JSON carried a non-string operator
	badOperator bool
}

// Where is an ordered filter over process properties. Comparisons are joined
// by Operator, which defaults to AND when empty.
type Where struct {
	Operator    string
	Comparisons []Comparison

	malformed bool
}

// Eq returns an equality comparison.
func Eq(property string, value any) Comparison {
	return Comparison{Property: property, Operator: EqualOperator, Value: value}
}

// Cmp returns a comparison with an explicit operator.
func Cmp(property, operator string, value any) Comparison {
	return Comparison{Property: property, Operator: operator, Value: value}
}

// NewWhere returns an AND-joined filter over the given comparisons.
func NewWhere(comparisons ...Comparison) *Where {
	return &Where{Operator: OperatorAnd, Comparisons: comparisons}
}

// Or switches the filter to OR-joining and returns it.
func (w *Where) Or() *Where {
	w.Operator = OperatorOr
	return w
}

// BuildWhere renders w as ` where "<cmp> [AND|OR <cmp>]..." `.
//
// A nil or empty w is an error unless optional is set, in which case the
// single-space Empty fragment is returned. The boolean operator is checked
// regardless of optional. Comparisons are validated in order and the first
// invalid one is reported; no partial clause is returned on error.
func BuildWhere(w *Where, optional bool) (string, error) {
	if w == nil || w.malformed {
		if optional {
			return Empty, nil
		}
		return "", fmt.Errorf("%w: where must be an object", ErrInvalidArgument)
	}
	if len(w.Comparisons) == 0 {
		if optional {
			return Empty, nil
		}
		return "", fmt.Errorf("%w: where was empty", ErrEmptyCollection)
	}

	joiner, err := resolveOperator(w.Operator)
	if err != nil {
		return "", err
	}

	terms := make([]string, 0, len(w.Comparisons))
	for _, cmp := range w.Comparisons {
		term, err := cmp.render()
		if err != nil {
			return "", err
		}
		terms = append(terms, term)
	}

	var b strings.Builder
	b.WriteString(` where "`)
	b.WriteString(strings.Join(terms, " "+joiner+" "))
	b.WriteString(`" `)
	return b.String(), nil
}

func resolveOperator(raw string) (string, error) {
	if raw == "" {
		return OperatorAnd, nil
	}
	switch op := strings.ToUpper(raw); op {
	case OperatorAnd, OperatorOr:
		return op, nil
	default:
		return "", fmt.Errorf("%w: where operator must be %q or %q, got %q", ErrInvalidOperator, OperatorAnd, OperatorOr, raw)
	}
}

func (c Comparison) render() (string, error) {
	if c.Property == "" {
		return "", fmt.Errorf("%w: where property name was empty", ErrInvalidArgument)
	}
	if c.badOperator {
		return "", fmt.Errorf("%w: where property %q: operator is not a string", ErrInvalidArgument, c.Property)
	}
	if c.Operator == "" {
		return "", fmt.Errorf("%w: where property %q: operator was empty", ErrInvalidArgument, c.Property)
	}
	value, ok := valueText(c.Value)
	if !ok {
		return "", fmt.Errorf("%w: where property %q: value is not a string or number", ErrInvalidArgument, c.Property)
	}
	if value == "" {
		return "", fmt.Errorf("%w: where property %q: value was an empty string", ErrInvalidArgument, c.Property)
	}
	return c.Property + " " + c.Operator + " '" + value + "'", nil
}

// valueText returns the textual form of string and numeric values.
func valueText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}
