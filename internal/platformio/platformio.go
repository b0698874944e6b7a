// Package platformio reads the parts of a PlatformIO project file
// (platformio.ini) that decide where a build's library dependencies live.
package platformio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/specialistvlad/pioconf/internal/fsutil"
)

// FileName is the project file PlatformIO looks for in the project root.
const FileName = "platformio.ini"

const envSectionPrefix = "env:"

// ErrNoEnv is returned when no build environment can be chosen.
var ErrNoEnv = errors.New("no build environment selected")

// Project holds the settings read from platformio.ini.
type Project struct {
	Dir          string
	DefaultEnvs  []string
	Envs         []string
	WorkspaceDir string
}

// Load reads <projectDir>/platformio.ini. A missing file yields a Project
// with only Dir set.
func Load(projectDir string) (*Project, error) {
	p := &Project{Dir: projectDir}
	path := filepath.Join(projectDir, FileName)

	ok, err := fsutil.IsRegularFile(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !ok {
		return p, nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if sec, err := cfg.GetSection("platformio"); err == nil {
		p.DefaultEnvs = splitList(sec.Key("default_envs").String())
		if ws := strings.TrimSpace(sec.Key("workspace_dir").String()); ws != "" {
			p.WorkspaceDir = p.expand(ws)
		}
	}

	for _, sec := range cfg.Sections() {
		if name, ok := strings.CutPrefix(sec.Name(), envSectionPrefix); ok {
			p.Envs = append(p.Envs, strings.TrimSpace(name))
		}
	}
	return p, nil
}

// ResolveEnv picks the build environment: requested when set, otherwise the
// first default env, otherwise the only declared env.
func (p *Project) ResolveEnv(requested string) (string, error) {
	if requested != "" {
		if len(p.Envs) > 0 && !p.hasEnv(requested) {
			return "", fmt.Errorf("unknown build environment %q, %s declares %s", requested, FileName, strings.Join(p.Envs, ", "))
		}
		return requested, nil
	}
	if len(p.DefaultEnvs) > 0 {
		return p.DefaultEnvs[0], nil
	}
	if len(p.Envs) == 1 {
		return p.Envs[0], nil
	}
	return "", ErrNoEnv
}

func (p *Project) hasEnv(name string) bool {
	for _, e := range p.Envs {
		if e == name {
			return true
		}
	}
	return false
}

// expand substitutes ${PROJECT_DIR}; anything else is taken literally.
func (p *Project) expand(v string) string {
	v = strings.ReplaceAll(v, "${PROJECT_DIR}", p.Dir)
	v = strings.ReplaceAll(v, "$PROJECT_DIR", p.Dir)
	return filepath.FromSlash(v)
}

func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
