// Package buildenv holds the BuildEnvironment: the read-only set of
// directory and build-profile values a build orchestrator exposes to its
// pre-build hooks.
//
// An Environment is built once per hook invocation and is never mutated
// afterwards. Destination paths for copy tasks are derived from it at call
// time, so nothing computed from one build leaks into the next.
package buildenv
