package config

import (
	"os"
	"path/filepath"
)

// ConfigExtensions are the config file formats viper is asked to read, in
// lookup order
var ConfigExtensions = []string{"yml", "yaml", "json", "toml"}

// LocalConfigName is the base name of a project config file
const LocalConfigName = ".wclang"

// FindLocalConfig returns the nearest .wclang.<ext> in dir or one of its
// parents, or "" if there is none
func FindLocalConfig(dir string) string {
	for {
		if path := findConfigFile(dir, LocalConfigName); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

// FindGlobalConfig returns <UserConfigDir>/wclang/config.<ext>, or "" if the
// user has none
func FindGlobalConfig() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}

	return findConfigFile(filepath.Join(base, "wclang"), "config")
}

func findConfigFile(dir, name string) string {
	for _, ext := range ConfigExtensions {
		path := filepath.Join(dir, name+"."+ext)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}
