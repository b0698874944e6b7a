// Package hook provides the pre-build extension point.
//
// Actions are registered against a build target name and run, in
// registration order, immediately before the orchestrator builds that
// target. Modules register their actions through the Module interface so the
// set of compiled-in actions lives in one list.
package hook
