package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocalConfig(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	src := filepath.Join(project, "src", "win32")
	require.NoError(t, os.MkdirAll(src, 0o755))

	configYML := filepath.Join(project, ".wclang.yml")
	require.NoError(t, os.WriteFile(configYML, []byte("verbose: true"), 0o644))

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"same directory", project, configYML},
		{"nested directory", src, configYML},
		{"missing directory below project", filepath.Join(src, "deep"), configYML},
		{"outside project", root, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindLocalConfig(tt.dir))
		})
	}
}

func TestFindLocalConfig_ExtensionOrder(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{".wclang.toml", ".wclang.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	assert.Equal(t, filepath.Join(dir, ".wclang.yaml"), FindLocalConfig(dir))
}

func TestFindLocalConfig_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".wclang.yml"), 0o755))

	assert.Equal(t, "", findConfigFile(dir, LocalConfigName))
}

func TestFindGlobalConfig(t *testing.T) {
	isolate(t)

	assert.Equal(t, "", FindGlobalConfig())

	base, err := os.UserConfigDir()
	require.NoError(t, err)

	dir := filepath.Join(base, "wclang")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	configTOML := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configTOML, []byte("verbose = true"), 0o644))

	assert.Equal(t, configTOML, FindGlobalConfig())
}
