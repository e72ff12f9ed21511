package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/codes"
	"github.com/Norgate-AV/wclang/internal/compiler"
	"github.com/Norgate-AV/wclang/internal/config"
	wlog "github.com/Norgate-AV/wclang/internal/log"
	"github.com/Norgate-AV/wclang/internal/utils"
)

// shim is one compiler invocation through a personality like w64-clang++
type shim struct {
	stdout io.Writer
	stderr io.Writer

	loader   *config.Loader
	resolver *compiler.Resolver
	builder  *compiler.CommandBuilder
	getwd    func() (string, error)
}

func newShim(stdout, stderr io.Writer) *shim {
	return &shim{
		stdout:   stdout,
		stderr:   stderr,
		loader:   config.NewLoader(),
		resolver: compiler.NewResolver(),
		builder:  compiler.NewCommandBuilder().WithOutput(stdout, stderr),
		getwd:    os.Getwd,
	}
}

// Run executes the invocation argv0 args... and returns the exit status.
// Errors are reported on stderr.
func (s *shim) Run(argv0 string, args []string) int {
	code, err := s.run(argv0, args)
	if err != nil {
		fmt.Fprintf(s.stderr, "wclang: %v\n", err)
		return codes.FromError(err)
	}

	return code
}

func (s *shim) run(argv0 string, args []string) (int, error) {
	sw := utils.NewStopwatch()
	sw.Mark("start")

	p, err := utils.ParseInvocationName(argv0)
	if err != nil {
		return codes.Usage, &codes.UsageError{Msg: err.Error()}
	}

	inv, err := compiler.ParseArgs(args)
	if err != nil {
		return codes.Usage, err
	}

	if inv.Query != compiler.NoQuery && !inv.Query.NeedsRecord() {
		return codes.Success, compiler.RunQuery(s.stdout, inv.Query, inv.QueryArg, nil)
	}

	dir, err := s.getwd()
	if err != nil {
		return codes.Failure, fmt.Errorf("cannot determine working directory: %w", err)
	}

	cfg, err := s.loader.LoadForShim(dir)
	if err != nil {
		return codes.Failure, err
	}

	wlog.InitLogger(s.stderr, cfg.LogLevel, cfg.Verbose || inv.Verbose)

	rec, err := s.record(cfg, p, inv, sw)
	if err != nil {
		return codes.Failure, err
	}

	if rec.Verbose {
		wlog.InitLogger(s.stderr, cfg.LogLevel, true)
	}

	if inv.Query != compiler.NoQuery {
		return codes.Success, compiler.RunQuery(s.stdout, inv.Query, inv.QueryArg, rec)
	}

	if !rec.Cached && cfg.WriteCache(p.IsCxx) {
		path, err := cache.Write(cfg.CacheDir, rec)
		if err != nil {
			return codes.Failure, err
		}

		log.WithField("path", path).Debug("cache written")
		fmt.Fprintln(s.stdout, path)

		return codes.Success, nil
	}

	cmdArgs := s.builder.BuildCommandArgs(rec)

	log.Debugf("command in: %s", strings.Join(append([]string{argv0}, args...), " "))
	log.Debugf("command out: %s", strings.Join(cmdArgs, " "))

	code, err := s.builder.ExecuteCommand(rec, cmdArgs)
	sw.Mark("end")

	for _, tp := range sw.Points() {
		log.WithField("ms", tp.Elapsed.Milliseconds()).Debug(tp.Name)
	}

	return code, err
}

// record loads the cached invocation for p when one was handed over, and
// resolves a fresh one otherwise
func (s *shim) record(cfg *config.Config, p utils.Personality, inv *compiler.Invocation, sw *utils.Stopwatch) (*cache.Record, error) {
	if path := cfg.LoadCache(p.IsCxx); path != "" {
		rec, err := cache.Load(path, p.IsCxx)
		if err != nil {
			return nil, err
		}

		sw.Mark("load cache")

		if len(inv.Args) > 0 {
			log.WithField("count", len(inv.Args)).Warn("ignoring command line arguments, running cached invocation")
		}

		return rec, nil
	}

	rec, err := s.resolver.Resolve(cfg, p, inv.Args)
	if err != nil {
		return nil, err
	}

	rec.Verbose = cfg.Verbose || inv.Verbose
	rec.AppendExe = inv.AppendExe
	sw.Mark("resolve")

	return rec, nil
}
