package cache

import "strings"

// Record is a fully resolved compiler invocation
type Record struct {
	// Verbose enables verbose messages for the run that executes this record
	Verbose bool `yaml:"verbose"`

	// Target is the target triple (e.g., "x86_64-w64-mingw32")
	Target string `yaml:"target"`

	// Compiler is the path of the compiler to execute, absolute or a bare command name
	Compiler string `yaml:"compiler"`

	// Env holds "NAME=value" assignments for the compiler's environment.
	// Order matters: the first assignment of a name wins.
	Env []string `yaml:"env"`

	// Args is the exact argument vector to execute, program name first
	Args []string `yaml:"args"`

	// IsCxx selects the C++ personality this record belongs to
	IsCxx bool `yaml:"is_cxx"`

	// AppendExe requests ".exe" to be appended to output filenames at exec time
	AppendExe bool `yaml:"append_exe"`

	// Cached is set when the record was loaded from a cache file. Never serialized.
	Cached bool `yaml:"-"`
}

// Getenv returns the value of the first assignment of name in r.Env
func (r *Record) Getenv(name string) (string, bool) {
	prefix := name + "="
	for _, kv := range r.Env {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):], true
		}
	}

	return "", false
}

// validate applies the bounds the reader enforces
func (r *Record) validate() error {
	if len(r.Args) == 0 {
		return errEmptyArgs
	}

	if err := checkLength("target", len(r.Target)); err != nil {
		return err
	}

	if err := checkLength("compiler", len(r.Compiler)); err != nil {
		return err
	}

	for _, field := range []struct {
		name   string
		values []string
	}{
		{"env", r.Env},
		{"args", r.Args},
	} {
		if err := checkLength(field.name+" count", len(field.values)); err != nil {
			return err
		}

		for _, s := range field.values {
			if err := checkLength(field.name, len(s)); err != nil {
				return err
			}
		}
	}

	return nil
}
