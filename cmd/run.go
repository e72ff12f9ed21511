package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <name> [clang args...]",
	Short: "Run a compiler personality without a link",
	Long: `Run wclang as if it had been invoked as <name>, for example:

  wclang run w64-clang++ -c foo.cpp -o foo.o`,
	Args:               usageArgs(cobra.MinimumNArgs(1)),
	DisableFlagParsing: true,
	RunE:               runShim,
}

func runShim(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		return cmd.Help()
	}

	code := newShim(cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(args[0], args[1:])
	if code != 0 {
		return &exitCodeError{code: code}
	}

	return nil
}
