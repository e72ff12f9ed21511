package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/codes"
)

// resetFlags puts every flag of c and its subcommands back to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}

	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runWclang runs the wclang binary with args and returns its exit status and output
func runWclang(args ...string) (int, string, string) {
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"wclang"}, args...), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

// runCLI runs wclang with args and requires it to succeed
func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	code, stdout, stderr := runWclang(args...)
	require.Equal(t, codes.Success, code, stderr)

	return stdout
}

func testRecord(isCxx bool) *cache.Record {
	return &cache.Record{
		Target:   "x86_64-w64-mingw32",
		Compiler: "/usr/bin/clang++",
		Env:      []string{"AR=x86_64-w64-mingw32-ar"},
		Args:     []string{"/usr/bin/clang++", "-target", "x86_64-w64-mingw32", "-c", "foo.cpp"},
		IsCxx:    isCxx,
	}
}

func TestIsShimName(t *testing.T) {
	assert.True(t, isShimName("/usr/bin/w64-clang++"))
	assert.True(t, isShimName("i686-w64-mingw32-clang"))
	assert.False(t, isShimName("/usr/bin/wclang"))
	assert.False(t, isShimName("clang"))
}

func TestRun_DispatchesOnInvocationName(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"/opt/wclang/bin/w32-clang", "-wc-target"}, &stdout, &stderr)

	require.Equal(t, codes.Success, code, stderr.String())
	assert.Equal(t, "i686-w64-mingw32\n", stdout.String())
}

func TestRun_RunCommand(t *testing.T) {
	isolate(t)

	out := runCLI(t, "run", "w64-clang++", "-wc-arch")
	assert.Equal(t, "x86_64\n", out)
}

func TestRun_RunCommandExitStatus(t *testing.T) {
	isolate(t)

	code, _, stderr := runWclang("run", "w64-clang", "-wc-bogus")

	assert.Equal(t, codes.Usage, code)
	assert.Equal(t, "wclang: invalid argument: -wc-bogus\n", stderr, "Errors are reported once")
}

func TestRun_Version(t *testing.T) {
	out := runCLI(t, "--version")
	assert.Contains(t, out, "wclang version dev")
}

func TestCacheShow(t *testing.T) {
	isolate(t)

	path, err := cache.Write(t.TempDir(), testRecord(true))
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		out := runCLI(t, "cache", "show", path, "--as", "cxx", "--format", "text")

		assert.Contains(t, out, "Personality: C++\n")
		assert.Contains(t, out, "Target:      x86_64-w64-mingw32\n")
		assert.Contains(t, out, "  AR=x86_64-w64-mingw32-ar\n")
		assert.Contains(t, out, "  foo.cpp\n")
	})

	t.Run("yaml", func(t *testing.T) {
		out := runCLI(t, "cache", "show", path, "--as", "any", "--format", "yaml")

		var got cache.Record
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, *testRecord(true), got)
	})

	t.Run("identity mismatch", func(t *testing.T) {
		code, _, stderr := runWclang("cache", "show", path, "--as", "c")

		assert.Equal(t, codes.IdentityMismatch, code)
		assert.Contains(t, stderr, "wclang: ")
	})

	t.Run("invalid format", func(t *testing.T) {
		code, _, _ := runWclang("cache", "show", path, "--format", "json")
		assert.Equal(t, codes.Usage, code)
	})
}

func TestCacheListAndClean(t *testing.T) {
	_, cacheDir := isolate(t)

	out := runCLI(t, "cache", "list", "--cache-dir", cacheDir)
	assert.Equal(t, "No cache files in "+cacheDir+"\n", out)

	oldPath, err := cache.Write(cacheDir, testRecord(false))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, old, old))

	newPath, err := cache.Write(cacheDir, testRecord(true))
	require.NoError(t, err)

	out = runCLI(t, "cache", "list", "--cache-dir", cacheDir)
	assert.Contains(t, out, oldPath)
	assert.Contains(t, out, newPath)
	assert.Contains(t, out, "2 days ago")
	assert.Contains(t, out, "2 files, ")

	out = runCLI(t, "cache", "clean", "--cache-dir", cacheDir, "--older-than", "24h")
	assert.Equal(t, "Removed 1 cache files from "+cacheDir+"\n", out)
	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, newPath)

	out = runCLI(t, "cache", "clean", "--cache-dir", cacheDir, "--older-than", "0s")
	assert.Equal(t, "Removed 1 cache files from "+cacheDir+"\n", out)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheList_UsesConfiguredDirectory(t *testing.T) {
	_, cacheDir := isolate(t)

	path, err := cache.Write(cacheDir, testRecord(false))
	require.NoError(t, err)

	out := runCLI(t, "cache", "list")
	assert.Contains(t, out, filepath.Base(path))
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"unknown cache command", []string{"cache", "frob"}},
		{"missing file", []string{"cache", "show"}},
		{"too many files", []string{"cache", "show", "a", "b"}},
		{"unexpected argument", []string{"cache", "list", "extra"}},
		{"unknown flag", []string{"cache", "list", "--bogus"}},
		{"invalid duration", []string{"cache", "clean", "--older-than", "soon"}},
		{"run without name", []string{"run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			code, stdout, stderr := runWclang(tt.args...)

			assert.Equal(t, codes.Usage, code, stderr)
			assert.Empty(t, stdout)
			assert.True(t, strings.HasPrefix(stderr, "wclang: "), stderr)
		})
	}
}

func TestRun_HelpWithoutArguments(t *testing.T) {
	out := runCLI(t)
	assert.Contains(t, out, "Usage:")

	out = runCLI(t, "cache")
	assert.Contains(t, out, "show")
}
