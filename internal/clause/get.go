package clause

import (
	"fmt"
	"strings"
)

// BuildGet renders fields as ` get f1,f2,... ` preserving their order.
func BuildGet(fields []string) (string, error) {
	if fields == nil {
		return "", fmt.Errorf("%w: get must be a list of field names", ErrInvalidArgument)
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: get list was empty", ErrEmptyCollection)
	}
	for i, field := range fields {
		if field == "" {
			return "", fmt.Errorf("%w: get value at index %d was an empty string", ErrInvalidArgument, i)
		}
	}
	return " get " + strings.Join(fields, ",") + " ", nil
}
