package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/config"
	"github.com/Norgate-AV/wclang/internal/utils"
)

// EnvTools are the binutils exported to the compiler as NAME=<target>-<name>
var EnvTools = []string{
	"AR", "AS", "CPP", "DLLTOOL", "DLLWRAP",
	"ELFEDIT", "GCOV", "GNAT", "LD", "NM",
	"OBJCOPY", "OBJDUMP", "RANLIB", "READELF",
	"SIZE", "STRINGS", "STRIP", "WINDMC", "WINDRES",
}

// Resolver turns a personality and configuration into an invocation record
type Resolver struct {
	lookPath func(file string) (string, error)
	getenv   func(key string) string
}

// NewResolver creates a resolver searching PATH for the compiler
func NewResolver() *Resolver {
	return &Resolver{
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
}

// Resolve builds the record for p. userArgs are appended after wclang's own flags.
func (r *Resolver) Resolve(cfg *config.Config, p utils.Personality, userArgs []string) (*cache.Record, error) {
	compiler, err := r.compilerPath(cfg, p)
	if err != nil {
		return nil, err
	}

	rec := &cache.Record{
		Verbose:  cfg.Verbose,
		Target:   p.Target,
		Compiler: compiler,
		Env:      ToolEnv(p.Target),
		IsCxx:    p.IsCxx,
	}

	if cfg.MingwPath != "" {
		path := cfg.MingwPath
		if cur := r.getenv("PATH"); cur != "" {
			path += string(os.PathListSeparator) + cur
		}

		rec.Env = append(rec.Env, "PATH="+path)
	}

	flags := cfg.CFlags
	if p.IsCxx {
		flags = cfg.CXXFlags
	}

	args := []string{compiler}
	args = append(args, flags...)
	args = append(args, "-target", p.Target)

	// Keep clang away from the host headers once we know where the target's are
	if len(cfg.IncludeDirs) > 0 {
		args = append(args, "-nostdinc")

		for _, dir := range cfg.IncludeDirs {
			args = append(args, "-isystem", dir)
		}
	}

	if cfg.NoIntegratedAs {
		args = append(args, "-no-integrated-as")
	}

	rec.Args = append(args, userArgs...)

	return rec, nil
}

func (r *Resolver) compilerPath(cfg *config.Config, p utils.Personality) (string, error) {
	name := p.Compiler()
	if cfg.ClangDir != "" {
		name = filepath.Join(cfg.ClangDir, name)
	}

	if filepath.IsAbs(name) {
		return name, nil
	}

	path, err := r.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("cannot find '%s' executable: %w", name, err)
	}

	return path, nil
}

// ToolEnv returns the binutils assignments for target
func ToolEnv(target string) []string {
	env := make([]string, 0, len(EnvTools))
	for _, tool := range EnvTools {
		env = append(env, tool+"="+target+"-"+strings.ToLower(tool))
	}

	return env
}
