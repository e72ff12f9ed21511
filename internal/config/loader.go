package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables overriding them
var envBindings = map[string]string{
	"cache_dir":        "WCLANG_CACHE_DIR",
	"verbose":          "WCLANG_VERBOSE",
	"log_level":        "WCLANG_LOG",
	"clang_dir":        "WCLANG_CLANG_DIR",
	"mingw_path":       "MINGW_PATH",
	"no_integrated_as": "WCLANG_NO_INTEGRATED_AS",
	"load_cc_cache":    EnvLoadCCCache,
	"load_cxx_cache":   EnvLoadCXXCache,
	"write_cc_cache":   EnvWriteCCCache,
	"write_cxx_cache":  EnvWriteCXXCache,
}

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForShim loads configuration for a compiler run started in dir
func (l *Loader) LoadForShim(dir string) (*Config, error) {
	l.setupViperDefaults()
	l.bindEnv()
	l.loadGlobalConfig()
	l.loadLocalConfig(dir)

	return Load()
}

// LoadForCommand loads configuration for a maintenance command and lets its
// flags override everything else
func (l *Loader) LoadForCommand(cmd *cobra.Command, dir string) (*Config, error) {
	l.setupViperDefaults()
	l.bindEnv()
	l.loadGlobalConfig()
	l.loadLocalConfig(dir)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("log_level", DefaultLogLevel)
}

// bindEnv binds every key to its environment variable
func (l *Loader) bindEnv() {
	for key, env := range envBindings {
		_ = viper.BindEnv(key, env)
	}
}

// loadGlobalConfig loads the user's global configuration
func (l *Loader) loadGlobalConfig() {
	if path := FindGlobalConfig(); path != "" {
		viper.SetConfigFile(path)
		_ = viper.MergeInConfig()
	}
}

// loadLocalConfig layers the nearest project configuration over the global one
func (l *Loader) loadLocalConfig(dir string) {
	if dir == "" {
		return
	}

	if path := FindLocalConfig(dir); path != "" {
		viper.SetConfigFile(path)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if f := cmd.Flag("cache-dir"); f != nil {
		_ = viper.BindPFlag("cache_dir", f)
	}

	if f := cmd.Flag("verbose"); f != nil {
		_ = viper.BindPFlag("verbose", f)
	}
}
