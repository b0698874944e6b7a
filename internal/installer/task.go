package installer

import (
	"errors"
	"fmt"
)

// CopyTask describes one file to install.
type CopyTask struct {
	Name        string
	Source      string
	Destination string
}

func (t CopyTask) String() string {
	return fmt.Sprintf("%s (%s -> %s)", t.Name, t.Source, t.Destination)
}

// Outcome is what happened to a single task.
type Outcome int

const (
	OutcomeCopied Outcome = iota
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var (
	// ErrDestinationDirMissing means the directory that should hold the
	// destination file does not exist. Directories are never created.
	ErrDestinationDirMissing = errors.New("destination directory does not exist")

	// ErrDestinationIsDir means the destination path names a directory.
	ErrDestinationIsDir = errors.New("destination is a directory")
)

// CopyError is a failure to install one task. It aborts the run.
type CopyError struct {
	Task CopyTask
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("install %q: copy %s to %s: %v", e.Task.Name, e.Task.Source, e.Task.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Result records the outcome of one task.
type Result struct {
	Task    CopyTask
	Outcome Outcome
	Bytes   int64
	SHA256  string
	Changed bool // destination content differs from what was there before
}

// Report is the per-task record of one Install call, in task order.
type Report struct {
	Results []Result
}

// Copied counts tasks whose file was installed.
func (r *Report) Copied() int {
	return r.count(OutcomeCopied)
}

// Skipped counts tasks whose source was absent.
func (r *Report) Skipped() int {
	return r.count(OutcomeSkipped)
}

func (r *Report) count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
