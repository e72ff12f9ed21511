package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Known mingw target triples, preferred first
var (
	Targets32 = []string{
		"i686-w64-mingw32",
		"i686-pc-mingw32",
		"i586-mingw32",
		"i586-mingw32msvc",
		"i486-mingw32",
	}

	Targets64 = []string{
		"x86_64-w64-mingw32",
		"x86_64-pc-mingw32",
		"amd64-mingw32msvc",
	}
)

// Personality is what an invocation name like "w64-clang++" selects
type Personality struct {
	// Name is the invocation name without directory
	Name string

	// Target is the resolved target triple
	Target string

	// IsCxx is true for the C++ compiler personality
	IsCxx bool
}

// Compiler returns the clang driver name for the personality
func (p Personality) Compiler() string {
	if p.IsCxx {
		return "clang++"
	}

	return "clang"
}

// ParseInvocationName parses argv0 (e.g., "/usr/bin/w32-clang" or
// "x86_64-w64-mingw32-clang++") into a personality
func ParseInvocationName(argv0 string) (Personality, error) {
	name := filepath.Base(argv0)

	idx := strings.LastIndex(name, "-clang")
	if idx <= 0 {
		return Personality{}, fmt.Errorf("invalid invocation name %q: clang should be followed after target (e.g: w32-clang)", name)
	}

	var isCxx bool
	switch suffix := name[idx+len("-clang"):]; suffix {
	case "":
	case "++":
		isCxx = true
	default:
		return Personality{}, fmt.Errorf("invalid invocation name %q: ++ (or nothing) should be followed after clang (e.g: w32-clang++)", name)
	}

	target := FindTarget(name[:idx])
	if target == "" {
		return Personality{}, fmt.Errorf("invalid target: %s", name[:idx])
	}

	return Personality{Name: name, Target: target, IsCxx: isCxx}, nil
}

// FindTarget resolves an invocation prefix into a target triple.
// "w32" and "w64" select the preferred triple; any other prefix must be the
// start of a known triple.
func FindTarget(prefix string) string {
	switch prefix {
	case "w32":
		return Targets32[0]
	case "w64":
		return Targets64[0]
	}

	for _, targets := range [][]string{Targets32, Targets64} {
		for _, target := range targets {
			if strings.HasPrefix(target, prefix) {
				return target
			}
		}
	}

	return ""
}

// Arch returns the architecture component of a target triple
func Arch(target string) string {
	arch, _, _ := strings.Cut(target, "-")
	return arch
}
