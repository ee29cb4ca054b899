package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/wmicctl"
	"github.com/danmuck/wmicctl/internal/testutil/testlog"
)

type recordingExecutor struct {
	out      string
	commands []string
}

func (e *recordingExecutor) Execute(_ context.Context, command string) (string, error) {
	e.commands = append(e.commands, command)
	return e.out, nil
}

func run(t *testing.T, exec *recordingExecutor, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a := &app{out: &buf, client: wmicctl.New(wmicctl.WithExecutor(exec))}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestExplainPrintsClauseAndRoundTrip(t *testing.T) {
	testlog.Start(t)
	out, err := run(t, &recordingExecutor{}, "explain", "--where", `{"Name":"notepad.exe","ProcessId":{"operator":">","value":4},"operator":"or"}`)
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	var got struct {
		Clause string        `json:"clause"`
		Parsed wmicctl.Where `json:"parsed"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := ` where "Name = 'notepad.exe' OR ProcessId > '4'" `
	if got.Clause != want {
		t.Fatalf("unexpected clause\nwant: %q\ngot:  %q", want, got.Clause)
	}
	if got.Parsed.Operator != "OR" || len(got.Parsed.Comparisons) != 2 || got.Parsed.Comparisons[1].Value != "4" {
		t.Fatalf("unexpected parsed filter %+v", got.Parsed)
	}
}

func TestExplainRejectsEmptyFilter(t *testing.T) {
	testlog.Start(t)
	if _, err := run(t, &recordingExecutor{}, "explain", "--where", `{}`); !errors.Is(err, wmicctl.ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection, got %v", err)
	}
}

func TestGetBuildsCommand(t *testing.T) {
	testlog.Start(t)
	exec := &recordingExecutor{out: "Node,Name\nHOST,notepad.exe"}
	out, err := run(t, exec, "get", "--where", `{"Name":"notepad.exe"}`, "--fields", "Name, ProcessId")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	want := `process where "Name = 'notepad.exe'"  get Name,ProcessId /format:csv`
	if len(exec.commands) != 1 || exec.commands[0] != want {
		t.Fatalf("unexpected command\nwant: %s\ngot:  %v", want, exec.commands)
	}
	if !strings.Contains(out, `"notepad.exe"`) {
		t.Fatalf("expected decoded record in output, got %s", out)
	}
}

func TestExecJoinsArgs(t *testing.T) {
	testlog.Start(t)
	exec := &recordingExecutor{out: "Caption\nWindows"}
	out, err := run(t, exec, "exec", "os", "get", "Caption")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if exec.commands[0] != "os get Caption" || strings.TrimSpace(out) != "Caption\nWindows" {
		t.Fatalf("unexpected exec command=%v out=%q", exec.commands, out)
	}
}

func TestBadWhereFlag(t *testing.T) {
	testlog.Start(t)
	exec := &recordingExecutor{}
	if _, err := run(t, exec, "list", "--where", `{"Name":`); err == nil {
		t.Fatalf("expected malformed --where to fail")
	}
	if len(exec.commands) != 0 {
		t.Fatalf("nothing should execute, got %v", exec.commands)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "wmicctl.toml")
	if _, err := run(t, &recordingExecutor{}, "config", "init", "--output", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	out, err := run(t, &recordingExecutor{}, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, `"Binary": "wmic"`) {
		t.Fatalf("unexpected validate output %s", out)
	}
}
