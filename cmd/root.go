package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wclang/internal/codes"
	"github.com/Norgate-AV/wclang/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "wclang",
	Short: "Cross compile Windows binaries with clang",
	Long: `wclang runs clang as a mingw cross compiler.

Invoke it through a link named after the target, for example w64-clang++,
w32-clang or x86_64-w64-mingw32-clang, or use "wclang run <name> ...".`,
	Args:          usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// usageArgs reports argument validation failures as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &codes.UsageError{Msg: err.Error()}
		}

		return nil
	}
}

// exitCodeError carries a compiler's exit status through cobra. The message
// has already been reported when it is created.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run dispatches on the invocation name and returns the process exit status
func run(argv []string, stdout, stderr io.Writer) int {
	if len(argv) > 0 && isShimName(argv[0]) {
		return newShim(stdout, stderr).Run(argv[0], argv[1:])
	}

	args := []string{}
	if len(argv) > 1 {
		args = argv[1:]
	}

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return exitStatus(rootCmd.Execute(), stderr)
}

// isShimName reports whether argv0 names a compiler personality rather than
// wclang itself
func isShimName(argv0 string) bool {
	return strings.Contains(filepath.Base(argv0), "-clang")
}

func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return codes.Success
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	fmt.Fprintf(stderr, "wclang: %v\n", err)

	return codes.FromError(err)
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &codes.UsageError{Msg: err.Error()}
	})
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cacheCmd)
}
