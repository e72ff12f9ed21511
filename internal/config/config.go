package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultVerbose  = false
	DefaultLogLevel = "warn"
)

// Environment variables handing cache files between runs. Each personality
// has its own pair so C and C++ caches never collide.
const (
	EnvLoadCCCache   = "WCLANG_LOAD_CC_CACHE"
	EnvLoadCXXCache  = "WCLANG_LOAD_CXX_CACHE"
	EnvWriteCCCache  = "WCLANG_WRITE_CC_CACHE"
	EnvWriteCXXCache = "WCLANG_WRITE_CXX_CACHE"
)

// Holds the configuration options for wclang
type Config struct {
	// Directory for new cache files (defaults to the OS temp dir)
	CacheDir string

	// Enable verbose output
	Verbose bool

	// apex/log level name
	LogLevel string

	// Directory holding the clang drivers; PATH is searched when empty
	ClangDir string

	// Root of a mingw installation, prepended to PATH for the compiler
	MingwPath string

	// Extra flags for the C and C++ personalities
	CFlags   []string
	CXXFlags []string

	// Header directories passed as -isystem, replacing the default search path
	IncludeDirs []string

	// Pass -no-integrated-as to clang
	NoIntegratedAs bool

	// Cache hand-off for the C and C++ personalities
	LoadCCCache   string
	LoadCXXCache  string
	WriteCCCache  bool
	WriteCXXCache bool
}

func Load() (*Config, error) {
	cfg := &Config{
		CacheDir:       viper.GetString("cache_dir"),
		Verbose:        viper.GetBool("verbose"),
		LogLevel:       viper.GetString("log_level"),
		ClangDir:       viper.GetString("clang_dir"),
		MingwPath:      viper.GetString("mingw_path"),
		CFlags:         stringSlice("cflags"),
		CXXFlags:       stringSlice("cxxflags"),
		IncludeDirs:    stringSlice("include_dirs"),
		NoIntegratedAs: IsRequested(viper.GetString("no_integrated_as")),
		LoadCCCache:    viper.GetString("load_cc_cache"),
		LoadCXXCache:   viper.GetString("load_cxx_cache"),
		WriteCCCache:   IsRequested(viper.GetString("write_cc_cache")),
		WriteCXXCache:  IsRequested(viper.GetString("write_cxx_cache")),
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = os.TempDir()
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	abs, err := filepath.Abs(c.CacheDir)
	if err != nil {
		return fmt.Errorf("invalid cache directory: %v", err)
	}

	c.CacheDir = abs

	// Resolve include directories
	for i, dir := range c.IncludeDirs {
		if dir == "" {
			return fmt.Errorf("empty include directory at position %d", i)
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("invalid include directory: %v", err)
		}

		c.IncludeDirs[i] = abs
	}

	return nil
}

// stringSlice returns nil for unset and empty lists alike
func stringSlice(key string) []string {
	v := viper.GetStringSlice(key)
	if len(v) == 0 {
		return nil
	}

	return v
}

// LoadCache returns the cache file to load for a personality, if any
func (c *Config) LoadCache(isCxx bool) string {
	if isCxx {
		return c.LoadCXXCache
	}

	return c.LoadCCCache
}

// WriteCache reports whether a cache write was requested for a personality
func (c *Config) WriteCache(isCxx bool) bool {
	if isCxx {
		return c.WriteCXXCache
	}

	return c.WriteCCCache
}

// IsRequested interprets a boolean-ish environment value: set, non-empty and
// not an explicit no
func IsRequested(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
