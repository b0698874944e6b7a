package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
	"github.com/specialistvlad/pioconf/internal/fsutil"
	"github.com/specialistvlad/pioconf/internal/platformio"
	"github.com/specialistvlad/pioconf/internal/watch"
)

// Run executes the pre-build actions for the configured target once, then,
// in watch mode, again whenever a watched source changes until ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger.With("run_id", uuid.NewString()))
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	env, err := a.buildEnvironment(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Build environment ready.", "project_dir", env.ProjectDir(), "env", env.Profile(), "libdeps_dir", env.LibDepsDir())

	if err := a.hooks.RunPre(ctx, a.config.Target, env); err != nil {
		return fmt.Errorf("pre-build failed: %w", err)
	}

	if a.config.Watch {
		return a.watchSources(ctx, env)
	}

	logger.Debug("App.Run method finished.")
	return nil
}

// buildEnvironment assembles the BuildEnvironment from the config and the
// project file. Explicit Vars win over anything derived.
func (a *App) buildEnvironment(ctx context.Context) (buildenv.Environment, error) {
	logger := ctxlog.FromContext(ctx)

	projectDir, err := filepath.Abs(a.config.ProjectDir)
	if err != nil {
		return buildenv.Environment{}, fmt.Errorf("resolve project dir: %w", err)
	}

	project, err := platformio.Load(projectDir)
	if err != nil {
		return buildenv.Environment{}, err
	}

	profile := a.config.Env
	if v := a.config.Vars[buildenv.KeyProfile]; profile == "" && v != "" {
		profile = v
	}
	profile, err = project.ResolveEnv(profile)
	if err != nil {
		return buildenv.Environment{}, err
	}
	logger.Debug("Build environment selected.", "env", profile, "declared", project.Envs)

	vars := map[string]string{
		buildenv.KeyProjectDir: projectDir,
		buildenv.KeyProfile:    profile,
	}
	if project.WorkspaceDir != "" {
		vars[buildenv.KeyWorkspaceDir] = project.WorkspaceDir
	}
	for k, v := range a.config.Vars {
		if k == buildenv.KeyProfile {
			continue
		}
		vars[k] = v
	}

	env := buildenv.New(vars)
	if err := env.Validate(); err != nil {
		return buildenv.Environment{}, err
	}
	return env, nil
}

func (a *App) watchSources(ctx context.Context, env buildenv.Environment) error {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, mod := range a.modules {
		lister, ok := mod.(sourceLister)
		if !ok {
			continue
		}
		srcs, err := lister.Sources(ctx, env)
		if err != nil {
			return fmt.Errorf("collect watched sources: %w", err)
		}
		for _, src := range srcs {
			ok, err := fsutil.IsDir(filepath.Dir(src))
			if err != nil {
				return err
			}
			if !ok {
				logger.Debug("Not watching source, its directory does not exist.", "source", src)
				continue
			}
			files = append(files, src)
		}
	}
	if len(files) == 0 {
		logger.Warn("Watch mode requested but no module has sources to watch.")
		return nil
	}

	w := watch.New(files, a.config.Debounce, func(ctx context.Context) error {
		return a.hooks.RunPre(ctx, a.config.Target, env)
	})
	return w.Run(ctx)
}
