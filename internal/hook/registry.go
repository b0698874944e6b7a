package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
)

// TargetProgram is the build target that links the final program image.
const TargetProgram = "buildprog"

// Action is a pre-build callback.
type Action func(ctx context.Context, env buildenv.Environment) error

// Module is the interface that all compiled-in modules implement to add
// their actions.
type Module interface {
	Register(r *Registry)
}

type namedAction struct {
	name string
	fn   Action
}

// Registry maps build targets to their pre-build actions.
type Registry struct {
	pre map[string][]namedAction
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{pre: make(map[string][]namedAction)}
}

// AddPreAction registers fn to run before target is built. Registering the
// same name twice for one target is a programming error and panics.
func (r *Registry) AddPreAction(target, name string, fn Action) {
	for _, a := range r.pre[target] {
		if a.name == name {
			panic(fmt.Sprintf("pre-build action '%s' already registered for target '%s'", name, target))
		}
	}
	slog.Debug("Registering pre-build action.", "target", target, "name", name)
	r.pre[target] = append(r.pre[target], namedAction{name: name, fn: fn})
}

// PreActions returns the action names registered for target, in order.
func (r *Registry) PreActions(target string) []string {
	names := make([]string, 0, len(r.pre[target]))
	for _, a := range r.pre[target] {
		names = append(names, a.name)
	}
	return names
}

// Validate checks the registry for entries that could never run.
func (r *Registry) Validate() error {
	var errs []error
	for target, actions := range r.pre {
		if target == "" {
			errs = append(errs, errors.New("pre-build action registered with an empty target"))
		}
		for _, a := range actions {
			if a.name == "" {
				errs = append(errs, fmt.Errorf("target '%s': pre-build action with an empty name", target))
			}
			if a.fn == nil {
				errs = append(errs, fmt.Errorf("target '%s': pre-build action '%s' has no function", target, a.name))
			}
		}
	}
	return errors.Join(errs...)
}

// RunPre runs the actions registered for target and stops at the first
// error.
func (r *Registry) RunPre(ctx context.Context, target string, env buildenv.Environment) error {
	logger := ctxlog.FromContext(ctx)

	actions := r.pre[target]
	if len(actions) == 0 {
		logger.Warn("No pre-build actions registered for target.", "target", target)
		return nil
	}

	for _, a := range actions {
		logger.Debug("Running pre-build action.", "target", target, "action", a.name)
		if err := a.fn(ctxlog.With(ctx, "action", a.name), env); err != nil {
			return fmt.Errorf("pre-build action '%s' for target '%s': %w", a.name, target, err)
		}
	}
	return nil
}
