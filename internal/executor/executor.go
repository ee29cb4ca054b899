// Package executor runs one host query tool invocation per command.
//
// The command text is written to the tool's stdin, which is then closed so
// the interactive tool runs it and exits. Stdout and stderr are collected
// separately; interactive banner lines are dropped from stdout and any
// stderr text turns the run into a ToolError.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/wmicctl/internal/clause"
	"github.com/danmuck/wmicctl/internal/observability"
	"github.com/danmuck/wmicctl/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBinary = "wmic"

	bannerPrefix = "wmic:"
)

var (
	ErrToolFailure = errors.New("wmic: tool reported failure")
	ErrSpawnFailed = errors.New("wmic: spawn failed")
)

// ToolError carries the trimmed stderr text of a run as its message.
type ToolError struct {
	Stderr string
}

func (e *ToolError) Error() string { return e.Stderr }
func (e *ToolError) Unwrap() error { return ErrToolFailure }

// Executor spawns the host tool through a Spawner. It holds no per-run
// state and is safe for concurrent use.
type Executor struct {
	binary  string
	spawner tools.Spawner
}

// New returns an executor running the default binary on the local host.
func New() *Executor {
	return NewWithSpawner(DefaultBinary, tools.ExecSpawner{})
}

// NewWithSpawner returns an executor with explicit binary and spawner.
func NewWithSpawner(binary string, spawner tools.Spawner) *Executor {
	resolved := strings.TrimSpace(binary)
	if resolved == "" {
		resolved = DefaultBinary
	}
	if spawner == nil {
		spawner = tools.ExecSpawner{}
	}
	return &Executor{binary: resolved, spawner: spawner}
}

// Binary returns the tool this executor spawns.
func (e *Executor) Binary() string {
	return e.binary
}

// Execute feeds command to a fresh tool process and returns its filtered,
// trimmed stdout. When stderr is non-empty the filtered stdout is still
// returned alongside a *ToolError.
//
// A command that is empty or only whitespace is rejected with
// clause.ErrInvalidArgument before anything is spawned.
func (e *Executor) Execute(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("%w: command text must not be empty", clause.ErrInvalidArgument)
	}

	id := uuid.NewString()
	start := time.Now()
	log.Debug().
		Str("exec_id", id).
		Str("binary", e.binary).
		Str("command", command).
		Msg("executor.Execute start")

	out, err := e.run(ctx, id, command)
	outcome := outcomeOf(err)
	observability.RecordExecution(outcome, time.Since(start))

	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.
		Str("exec_id", id).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Int("stdout_bytes", len(out)).
		Msg("executor.Execute done")
	return out, err
}

func (e *Executor) run(ctx context.Context, id, command string) (string, error) {
	proc, err := e.spawner.Spawn(ctx, e.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSpawnFailed, e.binary, err)
	}

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, &stdout, proc.Stdout())
	go drain(&wg, &stderr, proc.Stderr())

	_, writeErr := io.WriteString(proc.Stdin(), command)
	closeErr := proc.Stdin().Close()
	wg.Wait()
	waitErr := proc.Wait()

	out := FilterBanner(stdout.String())
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return out, &ToolError{Stderr: msg}
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if writeErr != nil {
		return out, fmt.Errorf("%w: write command: %v", ErrSpawnFailed, writeErr)
	}
	if closeErr != nil {
		return out, fmt.Errorf("%w: close stdin: %v", ErrSpawnFailed, closeErr)
	}
	if waitErr != nil {
		// The stream contract decides success; exit status alone does not.
		log.Debug().Str("exec_id", id).Err(waitErr).Msg("executor.run non-zero exit with empty stderr")
	}
	return out, nil
}

func drain(wg *sync.WaitGroup, dst *bytes.Buffer, src io.Reader) {
	defer wg.Done()
	if _, err := io.Copy(dst, src); err != nil {
		log.Debug().Err(err).Msg("executor.drain read failed")
	}
}

// FilterBanner drops lines whose first five characters case-insensitively
// equal "wmic:" and returns the remaining lines joined and trimmed.
func FilterBanner(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isBanner(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isBanner(line string) bool {
	return len(line) >= len(bannerPrefix) && strings.EqualFold(line[:len(bannerPrefix)], bannerPrefix)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrToolFailure):
		return "tool_error"
	case errors.Is(err, ErrSpawnFailed):
		return "spawn_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
