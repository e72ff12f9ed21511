package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/codes"
	"github.com/Norgate-AV/wclang/internal/config"
	wlog "github.com/Norgate-AV/wclang/internal/log"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain cache files",
	Long: `Cache files are written when WCLANG_WRITE_CC_CACHE or WCLANG_WRITE_CXX_CACHE
is set and replayed through WCLANG_LOAD_CC_CACHE or WCLANG_LOAD_CXX_CACHE.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a cache file",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  runCacheShow,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cache files in the cache directory",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runCacheList,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old cache files from the cache directory",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runCacheClean,
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "Cache directory (defaults to the OS temp dir)")
	cacheShowCmd.Flags().String("as", "any", "Personality to load the file for: c, cxx or any")
	cacheShowCmd.Flags().StringP("format", "f", "text", "Output format: text or yaml")
	cacheCleanCmd.Flags().Duration("older-than", 24*time.Hour, "Only remove files older than this (0 removes all)")

	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

// loadCommandConfig loads configuration for a cache subcommand and sets up logging
func loadCommandConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	cfg, err := config.NewLoader().LoadForCommand(cmd, dir)
	if err != nil {
		return nil, err
	}

	wlog.InitLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Verbose)

	return cfg, nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	as, _ := cmd.Flags().GetString("as")
	format, _ := cmd.Flags().GetString("format")

	if format != "text" && format != "yaml" {
		return &codes.UsageError{Msg: fmt.Sprintf("invalid format %q: expected text or yaml", format)}
	}

	var (
		rec *cache.Record
		err error
	)

	switch as {
	case "any":
		rec, err = cache.Read(args[0])
	case "c", "cxx":
		rec, err = cache.Load(args[0], as == "cxx")
	default:
		return &codes.UsageError{Msg: fmt.Sprintf("invalid personality %q: expected c, cxx or any", as)}
	}

	if err != nil {
		return err
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)

		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}

		return enc.Close()
	}

	printRecord(cmd.OutOrStdout(), args[0], rec)

	return nil
}

func printRecord(w io.Writer, path string, rec *cache.Record) {
	personality := "C"
	if rec.IsCxx {
		personality = "C++"
	}

	fmt.Fprintf(w, "File:        %s\n", path)
	fmt.Fprintf(w, "Personality: %s\n", personality)
	fmt.Fprintf(w, "Target:      %s\n", rec.Target)
	fmt.Fprintf(w, "Compiler:    %s\n", rec.Compiler)
	fmt.Fprintf(w, "Verbose:     %t\n", rec.Verbose)
	fmt.Fprintf(w, "Append exe:  %t\n", rec.AppendExe)

	fmt.Fprintf(w, "Environment:\n")
	for _, kv := range rec.Env {
		fmt.Fprintf(w, "  %s\n", kv)
	}

	fmt.Fprintf(w, "Arguments:\n")
	for _, arg := range rec.Args {
		fmt.Fprintf(w, "  %s\n", arg)
	}
}

func runCacheList(cmd *cobra.Command, args []string) error {
	cfg, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}

	files, err := cache.List(cfg.CacheDir)
	if err != nil {
		return err
	}

	log.WithField("dir", cfg.CacheDir).Debugf("found %d cache files", len(files))

	w := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintf(w, "No cache files in %s\n", cfg.CacheDir)
		return nil
	}

	var total int64
	for _, f := range files {
		total += f.Size
		fmt.Fprintf(w, "%-8s  %-16s  %s\n", humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime), f.Path)
	}

	fmt.Fprintf(w, "%d files, %s\n", len(files), humanize.Bytes(uint64(total)))

	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan < 0 {
		return &codes.UsageError{Msg: "--older-than must not be negative"}
	}

	removed, err := cache.Clean(cfg.CacheDir, olderThan)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache files from %s\n", removed, cfg.CacheDir)

	return nil
}
