package wmicctl

import (
	"errors"

	"github.com/danmuck/wmicctl/internal/clause"
	"github.com/danmuck/wmicctl/internal/executor"
	"github.com/danmuck/wmicctl/internal/output"
)

var (
	ErrInvalidArgument = clause.ErrInvalidArgument
	ErrEmptyCollection = clause.ErrEmptyCollection
	ErrInvalidOperator = clause.ErrInvalidOperator
	ErrToolFailure     = executor.ErrToolFailure
	ErrSpawnFailed     = executor.ErrSpawnFailed
	ErrDecode          = output.ErrDecode
	ErrNoInstances     = errors.New("wmic: no instances available")
)

// ToolError is returned when the host tool wrote to its error stream.
type ToolError = executor.ToolError

// NoInstancesError reports a terminate whose target did not exist. Its
// message is the tool's raw output.
type NoInstancesError struct {
	Output string
}

func (e *NoInstancesError) Error() string { return e.Output }
func (e *NoInstancesError) Unwrap() error { return ErrNoInstances }
