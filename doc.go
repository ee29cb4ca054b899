// Package wmicctl is a programmatic front end to the Windows host query tool
// (wmic) for processes.
//
// Structured filters and field lists are turned into `process ...` command
// text, fed to the tool's interactive input in a fresh subprocess, and the
// tool's CSV output is decoded back into records:
//
//	c := wmicctl.New()
//	set, err := c.Get(ctx, wmicctl.GetOptions{
//		Where: wmicctl.NewWhere(wmicctl.Eq("Name", "notepad.exe")),
//		Get:   []string{"Name", "ProcessId"},
//	})
//
// Values are embedded in the generated command verbatim. Single quotes and
// the tool's wildcard characters are not escaped, so callers passing
// untrusted input must sanitize it first.
package wmicctl
