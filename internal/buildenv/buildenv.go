package buildenv

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Well-known keys, named after the variables PlatformIO puts into its
// SCons construction environment.
const (
	KeyProjectDir   = "PROJECT_DIR"
	KeyProfile      = "PIOENV"
	KeyWorkspaceDir = "PROJECT_WORKSPACE_DIR"
)

// DefaultWorkspaceDirName is the cache directory PlatformIO creates inside
// the project root when workspace_dir is not overridden.
const DefaultWorkspaceDirName = ".pio"

// ErrMissingKey is returned when a required key is absent or empty.
var ErrMissingKey = errors.New("build environment key missing")

// Environment is an immutable string-to-string mapping.
type Environment struct {
	vars map[string]string
}

// New copies vars into a new Environment. Later changes to vars are not
// visible through the returned value.
func New(vars map[string]string) Environment {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return Environment{vars: cp}
}

// Get returns the value for key, or "" when absent.
func (e Environment) Get(key string) string {
	return e.vars[key]
}

// Lookup returns the value for key and whether it was present.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Require returns the value for key or an error wrapping ErrMissingKey.
func (e Environment) Require(key string) (string, error) {
	v := e.vars[key]
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return v, nil
}

// Keys returns all keys in sorted order.
func (e Environment) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that the keys every hook relies on are set.
func (e Environment) Validate() error {
	var errs []error
	for _, key := range []string{KeyProjectDir, KeyProfile} {
		if _, err := e.Require(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProjectDir is the project root directory.
func (e Environment) ProjectDir() string {
	return e.Get(KeyProjectDir)
}

// Profile is the build profile (PlatformIO environment) being built.
func (e Environment) Profile() string {
	return e.Get(KeyProfile)
}

// WorkspaceDir is the build cache directory, <project>/.pio unless the
// orchestrator supplied one. Relative values are taken from the project root.
func (e Environment) WorkspaceDir() string {
	ws := e.Get(KeyWorkspaceDir)
	if ws == "" {
		return filepath.Join(e.ProjectDir(), DefaultWorkspaceDirName)
	}
	if !filepath.IsAbs(ws) {
		return filepath.Join(e.ProjectDir(), ws)
	}
	return filepath.Clean(ws)
}

// LibDepsDir is the per-profile directory the dependency libraries are
// installed into: <workspace>/libdeps/<profile>.
func (e Environment) LibDepsDir() string {
	return filepath.Join(e.WorkspaceDir(), "libdeps", e.Profile())
}

// CtyValue returns the mapping as a cty object so it can be referenced from
// HCL expressions as env.<KEY>.
func (e Environment) CtyValue() cty.Value {
	if len(e.vars) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(e.vars))
	for k, v := range e.vars {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}
