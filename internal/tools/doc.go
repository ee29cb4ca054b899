// Package tools provides process spawning for the host query tool.
//
// Ownership boundary:
// - the Process/Spawner stream abstraction
//
// - local (os/exec) and remote (SSH session) spawners
package tools
