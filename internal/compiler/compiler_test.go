package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wclang/internal/cache"
	"github.com/Norgate-AV/wclang/internal/config"
	"github.com/Norgate-AV/wclang/internal/utils"
)

func newTestResolver(path string) *Resolver {
	return &Resolver{
		lookPath: func(file string) (string, error) {
			if file == "clang" || file == "clang++" {
				return "/usr/bin/" + file, nil
			}

			return "", errors.New("executable file not found in $PATH")
		},
		getenv: func(key string) string {
			if key == "PATH" {
				return path
			}

			return ""
		},
	}
}

func TestToolEnv(t *testing.T) {
	env := ToolEnv("i686-w64-mingw32")

	require.Len(t, env, len(EnvTools))
	assert.Equal(t, "AR=i686-w64-mingw32-ar", env[0])
	assert.Contains(t, env, "WINDRES=i686-w64-mingw32-windres")
	assert.Contains(t, env, "OBJDUMP=i686-w64-mingw32-objdump")
}

func TestResolver_Resolve(t *testing.T) {
	cxx := utils.Personality{Name: "w64-clang++", Target: "x86_64-w64-mingw32", IsCxx: true}
	c := utils.Personality{Name: "w32-clang", Target: "i686-w64-mingw32"}

	tests := []struct {
		name        string
		cfg         *config.Config
		personality utils.Personality
		userArgs    []string
		wantArgs    []string
		wantEnv     []string
		wantCompile string
		errContains string
	}{
		{
			name:        "C++ with PATH lookup",
			cfg:         &config.Config{},
			personality: cxx,
			userArgs:    []string{"-c", "foo.cpp"},
			wantCompile: "/usr/bin/clang++",
			wantArgs:    []string{"/usr/bin/clang++", "-target", "x86_64-w64-mingw32", "-c", "foo.cpp"},
		},
		{
			name:        "C uses cflags, not cxxflags",
			cfg:         &config.Config{CFlags: []string{"-O2"}, CXXFlags: []string{"-fno-rtti"}},
			personality: c,
			userArgs:    []string{"main.c"},
			wantCompile: "/usr/bin/clang",
			wantArgs:    []string{"/usr/bin/clang", "-O2", "-target", "i686-w64-mingw32", "main.c"},
		},
		{
			name:        "clang dir skips lookup",
			cfg:         &config.Config{ClangDir: "/opt/llvm/bin"},
			personality: cxx,
			wantCompile: "/opt/llvm/bin/clang++",
			wantArgs:    []string{"/opt/llvm/bin/clang++", "-target", "x86_64-w64-mingw32"},
		},
		{
			name:        "include dirs and integrated as",
			cfg:         &config.Config{IncludeDirs: []string{"/mingw/include", "/mingw/include/c++"}, NoIntegratedAs: true},
			personality: cxx,
			userArgs:    []string{"-c", "foo.cpp"},
			wantCompile: "/usr/bin/clang++",
			wantArgs: []string{
				"/usr/bin/clang++", "-target", "x86_64-w64-mingw32",
				"-nostdinc", "-isystem", "/mingw/include", "-isystem", "/mingw/include/c++",
				"-no-integrated-as", "-c", "foo.cpp",
			},
		},
		{
			name:        "mingw path prepended to PATH",
			cfg:         &config.Config{MingwPath: "/opt/mingw/bin"},
			personality: c,
			wantCompile: "/usr/bin/clang",
			wantArgs:    []string{"/usr/bin/clang", "-target", "i686-w64-mingw32"},
			wantEnv:     []string{"PATH=/opt/mingw/bin:/usr/bin:/bin"},
		},
		{
			name:        "compiler not found",
			cfg:         &config.Config{ClangDir: "relative/bin"},
			personality: c,
			errContains: "cannot find 'relative/bin/clang' executable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver("/usr/bin:/bin")

			rec, err := r.Resolve(tt.cfg, tt.personality, tt.userArgs)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.personality.Target, rec.Target)
			assert.Equal(t, tt.personality.IsCxx, rec.IsCxx)
			assert.Equal(t, tt.wantCompile, rec.Compiler)
			assert.Equal(t, tt.wantArgs, rec.Args)
			assert.False(t, rec.Cached)

			ar, ok := rec.Getenv("AR")
			assert.True(t, ok)
			assert.Equal(t, tt.personality.Target+"-ar", ar)

			for _, kv := range tt.wantEnv {
				assert.Contains(t, rec.Env, kv)
			}
		})
	}
}

func TestResolver_ResolvedRecordRoundTrips(t *testing.T) {
	r := newTestResolver("/usr/bin")
	p := utils.Personality{Name: "w64-clang++", Target: "x86_64-w64-mingw32", IsCxx: true}

	rec, err := r.Resolve(&config.Config{Verbose: true}, p, []string{"-c", "foo.cpp"})
	require.NoError(t, err)

	path, err := cache.Write(t.TempDir(), rec)
	require.NoError(t, err)

	loaded, err := cache.Load(path, true)
	require.NoError(t, err)

	rec.Cached = true
	assert.Equal(t, rec, loaded)
}

func TestNewResolver(t *testing.T) {
	r := NewResolver()
	assert.NotNil(t, r.lookPath)
	assert.NotNil(t, r.getenv)
}
