package clause

import "errors"

var (
	ErrInvalidArgument = errors.New("wmic: invalid argument")
	ErrEmptyCollection = errors.New("wmic: empty collection")
	ErrInvalidOperator = errors.New("wmic: invalid operator")
)
