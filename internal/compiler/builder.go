package compiler

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/Norgate-AV/wclang/internal/cache"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// CommandBuilder handles running resolved compiler invocations
type CommandBuilder struct {
	execCommand func(name string, args ...string) Commander
	environ     func() []string
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

// NewCommandBuilder creates a new command builder wired to the process stdio
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
		environ: os.Environ,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithExecCommand replaces the process launcher
func (cb *CommandBuilder) WithExecCommand(fn func(name string, args ...string) Commander) *CommandBuilder {
	cb.execCommand = fn
	return cb
}

// WithOutput redirects the compiler's stdout and stderr
func (cb *CommandBuilder) WithOutput(stdout, stderr io.Writer) *CommandBuilder {
	cb.stdout = stdout
	cb.stderr = stderr
	return cb
}

// BuildCommandArgs returns the argument vector to execute for rec. Only the
// late append-exe rewrite is applied; everything else runs unchanged.
func (cb *CommandBuilder) BuildCommandArgs(rec *cache.Record) []string {
	args := append([]string(nil), rec.Args...)
	if !rec.AppendExe {
		return args
	}

	args, renamed := AppendExeSuffix(args)
	if renamed != "" {
		fmt.Fprintf(cb.stderr, "wclang: appending \".exe\" to output filename \"%s\"\n", renamed)
	}

	return args
}

// ExecuteCommand runs rec.Compiler with args (argv0 included) and the record's
// environment, and returns the compiler's exit code
func (cb *CommandBuilder) ExecuteCommand(rec *cache.Record, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("empty command line")
	}

	c := cb.execCommand(rec.Compiler, args[1:]...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Args = args
		cmd.Env = MergeEnv(cb.environ(), rec.Env)
		cmd.Stdin = cb.stdin
		cmd.Stdout = cb.stdout
		cmd.Stderr = cb.stderr
	}

	err := c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}

		return 1, fmt.Errorf("invoking compiler failed (%s not installed?): %w", rec.Compiler, err)
	}

	return 0, nil
}

// MergeEnv applies assignments over base. Inside assignments the first
// occurrence of a name wins; any assignment replaces the base value.
func MergeEnv(base, assignments []string) []string {
	seen := make(map[string]bool)

	var updates []string
	for _, kv := range assignments {
		name, _, _ := strings.Cut(kv, "=")
		if seen[name] {
			continue
		}

		seen[name] = true
		updates = append(updates, kv)
	}

	merged := make([]string, 0, len(base)+len(updates))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if !seen[name] {
			merged = append(merged, kv)
		}
	}

	return append(merged, updates...)
}

// AppendExeSuffix appends ".exe" to the first output filename (-o file or
// -ofile) unless it already names an .exe, .dll or .S file or the command
// line contains -c anywhere. It returns the rewritten copy of args and the
// original filename, or "" if nothing changed.
func AppendExeSuffix(args []string) ([]string, string) {
	for _, arg := range args {
		if arg == "-c" {
			return args, ""
		}
	}

	for i, arg := range args {
		if !strings.HasPrefix(arg, "-o") {
			continue
		}

		idx, filename := i, arg[2:]
		if arg == "-o" {
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return args, ""
			}

			idx, filename = i+1, args[i+1]
		}

		switch path.Ext(filename) {
		case ".exe", ".dll", ".S":
			return args, ""
		}

		out := append([]string(nil), args...)
		out[idx] += ".exe"

		return out, filename
	}

	return args, ""
}
