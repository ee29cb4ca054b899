package wmicctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/wmicctl/internal/clause"
	"github.com/danmuck/wmicctl/internal/executor"
	"github.com/danmuck/wmicctl/internal/observability"
	"github.com/danmuck/wmicctl/internal/output"
	"github.com/danmuck/wmicctl/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	subject     = "process"
	formatCSV   = "/format:csv"
	noInstances = "No Instance(s) Available"

	opGet       = "get"
	opList      = "list"
	opCall      = "call"
	opTerminate = "terminate"
	opExec      = "exec"
)

type (
	Where      = clause.Where
	Comparison = clause.Comparison
	ResultSet  = output.ResultSet
	Record     = output.Record
	Spawner    = tools.Spawner
	Process    = tools.Process
)

// GetOptions selects which fields to fetch for the processes matching Where.
// A nil Where fetches every process.
type GetOptions struct {
	Where *Where
	Get   []string
}

// CallOptions names a method to invoke on the processes matching Where.
type CallOptions struct {
	Where *Where
	Call  string
}

// CommandExecutor runs one command text against the host tool.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Client composes clause building, execution and output decoding.
// It is safe for concurrent use; every call spawns its own process.
type Client struct {
	exec CommandExecutor
}

type clientOptions struct {
	binary  string
	spawner Spawner
	exec    CommandExecutor
}

type Option func(*clientOptions)

// WithBinary overrides the host tool binary (default "wmic").
func WithBinary(binary string) Option {
	return func(o *clientOptions) { o.binary = binary }
}

// WithSpawner overrides how the host tool process is started.
func WithSpawner(spawner Spawner) Option {
	return func(o *clientOptions) { o.spawner = spawner }
}

// WithExecutor replaces the executor entirely; binary and spawner are ignored.
func WithExecutor(exec CommandExecutor) Option {
	return func(o *clientOptions) { o.exec = exec }
}

func New(opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.exec == nil {
		o.exec = executor.NewWithSpawner(o.binary, o.spawner)
	}
	return &Client{exec: o.exec}
}

// Get runs `process<where> get <fields> /format:csv`. The filter is
// optional; the field list is required.
func (c *Client) Get(ctx context.Context, opts GetOptions) (ResultSet, error) {
	start := time.Now()
	where, err := clause.BuildWhere(opts.Where, true)
	if err != nil {
		return c.rejectQuery(opGet, start, err)
	}
	get, err := clause.BuildGet(opts.Get)
	if err != nil {
		return c.rejectQuery(opGet, start, err)
	}
	return c.query(ctx, opGet, start, subject+where+get+formatCSV)
}

// List runs `process<where> list /format:csv`. A nil filter lists every process.
func (c *Client) List(ctx context.Context, where *Where) (ResultSet, error) {
	start := time.Now()
	clauseText, err := clause.BuildWhere(where, true)
	if err != nil {
		return c.rejectQuery(opList, start, err)
	}
	return c.query(ctx, opList, start, subject+clauseText+"list "+formatCSV)
}

// Call runs `process<where> call <method>` and returns the tool's raw text.
// The filter is required.
func (c *Client) Call(ctx context.Context, opts CallOptions) (string, error) {
	return c.call(ctx, opCall, opts)
}

// Terminate calls the terminate method on the matching processes. Output
// reporting that nothing matched is returned as a *NoInstancesError.
func (c *Client) Terminate(ctx context.Context, where *Where) (string, error) {
	out, err := c.call(ctx, opTerminate, CallOptions{Where: where, Call: opTerminate})
	if err != nil {
		return out, err
	}
	if strings.Contains(out, noInstances) {
		return out, &NoInstancesError{Output: out}
	}
	return out, nil
}

// Execute runs command text as-is and returns the filtered output.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	start := time.Now()
	out, err := c.exec.Execute(ctx, command)
	record(opExec, start, err)
	return out, err
}

func (c *Client) call(ctx context.Context, operation string, opts CallOptions) (string, error) {
	start := time.Now()
	where, err := clause.BuildWhere(opts.Where, false)
	if err == nil {
		err = validateMethod(opts.Call)
	}
	if err != nil {
		record(operation, start, err)
		return "", err
	}

	out, err := c.exec.Execute(ctx, subject+where+"call "+opts.Call)
	if err == nil && operation == opTerminate && strings.Contains(out, noInstances) {
		record(operation, start, ErrNoInstances)
	} else {
		record(operation, start, err)
	}
	return out, err
}

func (c *Client) query(ctx context.Context, operation string, start time.Time, command string) (ResultSet, error) {
	raw, err := c.exec.Execute(ctx, command)
	set, err := output.ParseResult(err, raw)
	record(operation, start, err)
	return set, err
}

func (c *Client) rejectQuery(operation string, start time.Time, err error) (ResultSet, error) {
	record(operation, start, err)
	return ResultSet{}, err
}

func validateMethod(method string) error {
	if method == "" {
		return fmt.Errorf("%w: call method was an empty string", ErrInvalidArgument)
	}
	return nil
}

func record(operation string, start time.Time, err error) {
	outcome := Outcome(err)
	observability.RecordOperation(operation, outcome, time.Since(start))
	if err != nil {
		log.Debug().Str("operation", operation).Str("outcome", outcome).Err(err).Msg("wmicctl operation failed")
	}
}

// Outcome classifies err into a short metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrEmptyCollection), errors.Is(err, ErrInvalidOperator):
		return "invalid"
	case errors.Is(err, ErrNoInstances):
		return "no_instances"
	case errors.Is(err, ErrToolFailure):
		return "tool_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "error"
	}
}

// NewWhere returns an AND-joined filter over the given comparisons.
func NewWhere(comparisons ...Comparison) *Where {
	return clause.NewWhere(comparisons...)
}

// Eq returns an equality comparison.
func Eq(property string, value any) Comparison {
	return clause.Eq(property, value)
}

// Cmp returns a comparison with an explicit operator such as ">" or "LIKE".
func Cmp(property, operator string, value any) Comparison {
	return clause.Cmp(property, operator, value)
}
