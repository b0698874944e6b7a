// Package configinstall installs the project's custom TFT_eSPI and LVGL
// configuration headers into the library dependency cache before the
// program image is built.
package configinstall

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
	"github.com/specialistvlad/pioconf/internal/hook"
	"github.com/specialistvlad/pioconf/internal/installer"
	"github.com/specialistvlad/pioconf/internal/manifest"
)

// ActionName is the name the pre-build action is registered under.
const ActionName = "copy_configs"

// Module implements the hook.Module interface for this package.
type Module struct {
	// Out receives one confirmation line per copied file.
	Out io.Writer
	// Manifest overrides the compiled-in task list. Used by tests.
	Manifest *manifest.Manifest
}

// Tasks resolves the copy tasks for env.
func (m *Module) Tasks(ctx context.Context, env buildenv.Environment) ([]installer.CopyTask, error) {
	man := m.Manifest
	if man == nil {
		var err error
		if man, err = manifest.Default(); err != nil {
			return nil, err
		}
	}
	return man.Resolve(ctx, env)
}

// Sources lists the custom configuration files the tasks copy from.
func (m *Module) Sources(ctx context.Context, env buildenv.Environment) ([]string, error) {
	tasks, err := m.Tasks(ctx, env)
	if err != nil {
		return nil, err
	}
	srcs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		srcs = append(srcs, t.Source)
	}
	return srcs, nil
}

// BeforeBuild is the pre-build action. A missing custom file is not an
// error; any copy failure is.
func (m *Module) BeforeBuild(ctx context.Context, env buildenv.Environment) error {
	logger := ctxlog.FromContext(ctx)

	if err := env.Validate(); err != nil {
		return err
	}

	tasks, err := m.Tasks(ctx, env)
	if err != nil {
		return fmt.Errorf("resolve copy tasks: %w", err)
	}

	report, err := installer.New(m.Out).Install(ctx, tasks)
	if err != nil {
		return err
	}
	logger.Debug("Custom configuration files installed.", "copied", report.Copied(), "skipped", report.Skipped())
	return nil
}

// Register adds BeforeBuild as a pre-action of the program target.
func (m *Module) Register(r *hook.Registry) {
	r.AddPreAction(hook.TargetProgram, ActionName, m.BeforeBuild)
}
