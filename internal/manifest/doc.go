// Package manifest holds the compiled-in list of copy tasks and turns it into
// concrete installer.CopyTask values for a given build environment.
//
// The list is an HCL document embedded in the binary. Each `copy` block names
// a source and a destination; both are HCL expressions evaluated against the
// build environment, so destination paths follow the active build profile.
// The following variables are available to expressions:
//
//	env            object of every BuildEnvironment key, e.g. env.PIOENV
//	project_dir    the project root
//	workspace_dir  the build cache directory (<project>/.pio by default)
//	libdeps_dir    <workspace_dir>/libdeps/<profile>
//
// Relative sources are taken from the project root.
package manifest
