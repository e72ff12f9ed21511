package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/codes"
	"github.com/Norgate-AV/wclang/internal/utils"
	"github.com/Norgate-AV/wclang/internal/version"
)

// CommandPrefix marks arguments that belong to wclang rather than clang
const CommandPrefix = "-wc-"

// Query is a -wc- command that prints something and ends the run
type Query int

const (
	NoQuery Query = iota
	QueryHelp
	QueryVersion
	QueryTarget
	QueryArch
	QueryEnv
	QueryEnvVar
)

// Invocation is the user's command line split into wclang options and
// arguments for clang
type Invocation struct {
	Verbose   bool
	AppendExe bool

	// First query command seen, if any
	Query    Query
	QueryArg string

	// Args are forwarded to clang unchanged
	Args []string
}

// ParseArgs splits args (without argv0). -wc- commands may also be spelled --wc-.
func ParseArgs(args []string) (*Invocation, error) {
	inv := &Invocation{}

	for _, arg := range args {
		name, ok := wcCommand(arg)
		if !ok {
			inv.Args = append(inv.Args, arg)
			continue
		}

		query := NoQuery
		queryArg := ""

		switch {
		case name == "verbose":
			inv.Verbose = true
		case name == "append-exe":
			inv.AppendExe = true
		case name == "help" || name == "h":
			query = QueryHelp
		case name == "version" || name == "v":
			query = QueryVersion
		case name == "target" || name == "t":
			query = QueryTarget
		case name == "arch" || name == "a":
			query = QueryArch
		case name == "env" || name == "e":
			query = QueryEnv
		case strings.HasPrefix(name, "env-") || strings.HasPrefix(name, "e-"):
			_, v, _ := strings.Cut(name, "-")
			query = QueryEnvVar
			queryArg = strings.ToUpper(v)
		default:
			return nil, &codes.UsageError{Msg: "invalid argument: " + CommandPrefix + name}
		}

		if query != NoQuery && inv.Query == NoQuery {
			inv.Query = query
			inv.QueryArg = queryArg
		}
	}

	return inv, nil
}

func wcCommand(arg string) (string, bool) {
	if strings.HasPrefix(arg, "--") {
		arg = arg[1:]
	}

	if !strings.HasPrefix(arg, CommandPrefix) {
		return "", false
	}

	return arg[len(CommandPrefix):], true
}

// NeedsRecord reports whether q prints something derived from the resolved invocation
func (q Query) NeedsRecord() bool {
	return q != QueryHelp && q != QueryVersion
}

// RunQuery prints the answer to q. rec may be nil when q does not need it.
func RunQuery(w io.Writer, q Query, arg string, rec *cache.Record) error {
	switch q {
	case QueryHelp:
		printHeader(w)
		for _, c := range [][2]string{
			{"version", "show version"},
			{"target", "show target"},
			{"env-<var>", "show environment variable  [e.g: " + CommandPrefix + "env-ld]"},
			{"env", "show all environment variables at once"},
			{"arch", "show target architecture"},
			{"append-exe", "append .exe automatically to output filenames"},
			{"verbose", "enable verbose messages"},
		} {
			fmt.Fprintf(w, " %s%s: %s\n", CommandPrefix, c[0], c[1])
		}
	case QueryVersion:
		printHeader(w)
	case QueryTarget:
		fmt.Fprintln(w, rec.Target)
	case QueryArch:
		fmt.Fprintln(w, utils.Arch(rec.Target))
	case QueryEnv:
		fmt.Fprintln(w, strings.Join(rec.Env, " "))
	case QueryEnvVar:
		if !isEnvTool(arg) {
			return &codes.UsageError{Msg: fmt.Sprintf("environment variable %s not found\navailable environment variables: %s",
				arg, strings.Join(EnvTools, " "))}
		}

		v, _ := rec.Getenv(arg)
		fmt.Fprintln(w, v)
	}

	return nil
}

func isEnvTool(name string) bool {
	for _, tool := range EnvTools {
		if tool == name {
			return true
		}
	}

	return false
}

func printHeader(w io.Writer) {
	fmt.Fprintf(w, "wclang, Version: %s (%s) %s\n", version.Version, version.Commit, version.BuildTime)
}
