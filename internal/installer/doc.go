// Package installer copies custom configuration files into the library
// dependency cache before a build compiles those libraries.
//
// Each CopyTask is handled with a check-then-copy sequence: a task whose
// source is not a regular file is skipped without error, and any other
// failure stops the run and is returned as a *CopyError. Destination files
// are replaced as a whole, never partially written.
package installer
