package clause

import (
	"fmt"
	"strings"
)

// ParseWhere reads a fragment produced by BuildWhere back into a filter.
// Values come back as strings. A blank fragment yields nil.
func ParseWhere(fragment string) (*Where, error) {
	body := strings.TrimSpace(fragment)
	if body == "" {
		return nil, nil
	}
	body, ok := strings.CutPrefix(body, `where "`)
	if !ok || !strings.HasSuffix(body, `"`) {
		return nil, malformedClause(fragment, "missing where quotes")
	}
	body = strings.TrimSuffix(body, `"`)

	w := &Where{}
	for {
		property, rest, ok := strings.Cut(body, " ")
		if !ok || property == "" {
			return nil, malformedClause(fragment, "missing property")
		}
		operator, rest, ok := strings.Cut(rest, " '")
		if !ok || operator == "" {
			return nil, malformedClause(fragment, "missing operator")
		}
		value, rest, ok := strings.Cut(rest, "'")
		if !ok {
			return nil, malformedClause(fragment, "unterminated value")
		}
		w.Comparisons = append(w.Comparisons, Comparison{Property: property, Operator: operator, Value: value})
		if rest == "" {
			break
		}

		rest, ok = strings.CutPrefix(rest, " ")
		if !ok {
			return nil, malformedClause(fragment, "missing separator")
		}
		joiner, next, ok := strings.Cut(rest, " ")
		if !ok {
			return nil, malformedClause(fragment, "dangling operator")
		}
		joiner, err := resolveOperator(joiner)
		if err != nil {
			return nil, err
		}
		if w.Operator != "" && w.Operator != joiner {
			return nil, malformedClause(fragment, "mixed AND/OR operators")
		}
		w.Operator = joiner
		body = next
	}
	if w.Operator == "" {
		w.Operator = OperatorAnd
	}
	return w, nil
}

func malformedClause(fragment, reason string) error {
	return fmt.Errorf("%w: where clause %q: %s", ErrInvalidArgument, fragment, reason)
}
