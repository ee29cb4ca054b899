package wmicctl

import (
	"context"
	"errors"
	"testing"

	"github.com/danmuck/wmicctl/internal/testutil/testlog"
)

type fakeExecutor struct {
	out      string
	err      error
	commands []string
}

func (e *fakeExecutor) Execute(_ context.Context, command string) (string, error) {
	e.commands = append(e.commands, command)
	return e.out, e.err
}

func newTestClient(out string, err error) (*Client, *fakeExecutor) {
	exec := &fakeExecutor{out: out, err: err}
	return New(WithExecutor(exec)), exec
}

func TestGetBuildsCommandAndDecodes(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("Node,Name,ProcessId\r\r\nHOST,notepad.exe,1200", nil)

	set, err := c.Get(context.Background(), GetOptions{
		Where: NewWhere(Eq("Name", "notepad.exe")),
		Get:   []string{"Name", "ProcessId"},
	})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	want := `process where "Name = 'notepad.exe'"  get Name,ProcessId /format:csv`
	if len(exec.commands) != 1 || exec.commands[0] != want {
		t.Fatalf("unexpected command\nwant: %s\ngot:  %v", want, exec.commands)
	}
	if len(set.Records) != 1 || set.Records[0]["ProcessId"] != "1200" {
		t.Fatalf("unexpected records: %+v", set.Records)
	}
}

func TestGetWithoutWhere(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("Name\nSystem", nil)
	if _, err := c.Get(context.Background(), GetOptions{Get: []string{"Name"}}); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if exec.commands[0] != "process  get Name /format:csv" {
		t.Fatalf("unexpected command %q", exec.commands[0])
	}
}

func TestGetValidationSkipsExecution(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("", nil)

	if _, err := c.Get(context.Background(), GetOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing get, got %v", err)
	}
	if _, err := c.Get(context.Background(), GetOptions{Get: []string{}}); !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection, got %v", err)
	}
	bad := &Where{Operator: "NAND", Comparisons: []Comparison{Eq("Name", "a")}}
	if _, err := c.Get(context.Background(), GetOptions{Where: bad, Get: []string{"Name"}}); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
	if len(exec.commands) != 0 {
		t.Fatalf("nothing should execute on validation failure, got %v", exec.commands)
	}
}

func TestGetToolFailureCarriesRaw(t *testing.T) {
	testlog.Start(t)
	toolErr := &ToolError{Stderr: "Invalid query"}
	c, _ := newTestClient("partial", toolErr)

	set, err := c.Get(context.Background(), GetOptions{Get: []string{"Name"}})
	if !errors.Is(err, ErrToolFailure) || err.Error() != "Invalid query" {
		t.Fatalf("expected tool failure to pass through, got %v", err)
	}
	if len(set.Records) != 0 || set.Raw != "partial" {
		t.Fatalf("expected empty records with raw text, got %+v", set)
	}
}

func TestListCommands(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("Name\nx", nil)

	if _, err := c.List(context.Background(), nil); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	or := NewWhere(Eq("Name", "a.exe"), Cmp("ProcessId", ">", 10)).Or()
	if _, err := c.List(context.Background(), or); err != nil {
		t.Fatalf("list with where failed: %v", err)
	}
	if _, err := c.List(context.Background(), &Where{}); err != nil {
		t.Fatalf("empty where should be relaxed on list: %v", err)
	}

	want := []string{
		"process list /format:csv",
		`process where "Name = 'a.exe' OR ProcessId > '10'" list /format:csv`,
		"process list /format:csv",
	}
	if len(exec.commands) != len(want) {
		t.Fatalf("unexpected commands %v", exec.commands)
	}
	for i := range want {
		if exec.commands[i] != want[i] {
			t.Fatalf("command %d\nwant: %s\ngot:  %s", i, want[i], exec.commands[i])
		}
	}
}

func TestCallRequiresWhereAndMethod(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("", nil)

	if _, err := c.Call(context.Background(), CallOptions{Call: "getowner"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing where, got %v", err)
	}
	if _, err := c.Call(context.Background(), CallOptions{Where: &Where{}, Call: "getowner"}); !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection for empty where, got %v", err)
	}
	if _, err := c.Call(context.Background(), CallOptions{Where: NewWhere(Eq("ProcessId", 4))}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty method, got %v", err)
	}
	if len(exec.commands) != 0 {
		t.Fatalf("nothing should execute, got %v", exec.commands)
	}
}

func TestCallReturnsRawOutput(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("Method execution successful.\nOut Parameters:", nil)

	out, err := c.Call(context.Background(), CallOptions{Where: NewWhere(Eq("ProcessId", 1200)), Call: "getowner"})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if exec.commands[0] != `process where "ProcessId = '1200'" call getowner` {
		t.Fatalf("unexpected command %q", exec.commands[0])
	}
	if out != "Method execution successful.\nOut Parameters:" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTerminateNoInstances(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("No Instance(s) Available.", nil)

	out, err := c.Terminate(context.Background(), NewWhere(Eq("Name", "ghost.exe")))
	if !errors.Is(err, ErrNoInstances) {
		t.Fatalf("expected ErrNoInstances, got %v", err)
	}
	var noInst *NoInstancesError
	if !errors.As(err, &noInst) || err.Error() != "No Instance(s) Available." || noInst.Output != out {
		t.Fatalf("error should carry the raw output, got %v out=%q", err, out)
	}
	if exec.commands[0] != `process where "Name = 'ghost.exe'" call terminate` {
		t.Fatalf("unexpected command %q", exec.commands[0])
	}
}

func TestTerminateSuccessAndToolFailure(t *testing.T) {
	testlog.Start(t)
	c, _ := newTestClient("Method execution successful.\nReturnValue = 0;", nil)
	if _, err := c.Terminate(context.Background(), NewWhere(Eq("ProcessId", 1200))); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}

	c, _ = newTestClient("", &ToolError{Stderr: "Access denied"})
	_, err := c.Terminate(context.Background(), NewWhere(Eq("ProcessId", 4)))
	if !errors.Is(err, ErrToolFailure) || errors.Is(err, ErrNoInstances) {
		t.Fatalf("expected tool failure only, got %v", err)
	}

	c, exec := newTestClient("", nil)
	if _, err := c.Terminate(context.Background(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("terminate must require a where, got %v", err)
	}
	if len(exec.commands) != 0 {
		t.Fatalf("nothing should execute without where")
	}
}

func TestExecutePassthrough(t *testing.T) {
	testlog.Start(t)
	c, exec := newTestClient("ok", nil)
	out, err := c.Execute(context.Background(), "os get Caption")
	if err != nil || out != "ok" || exec.commands[0] != "os get Caption" {
		t.Fatalf("unexpected passthrough out=%q err=%v cmds=%v", out, err, exec.commands)
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":           nil,
		"invalid":      ErrEmptyCollection,
		"no_instances": &NoInstancesError{Output: "x"},
		"tool_error":   &ToolError{Stderr: "x"},
		"decode_error": ErrDecode,
		"error":        errors.New("other"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %q want %q", err, got, want)
		}
	}
}
