package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/pioconf/internal/ctxlog"
	"github.com/specialistvlad/pioconf/internal/fsutil"
)

// Installer runs copy tasks and prints one confirmation line per copied file.
type Installer struct {
	out io.Writer
}

// New returns an Installer writing confirmation lines to out. A nil out
// discards them.
func New(out io.Writer) *Installer {
	if out == nil {
		out = io.Discard
	}
	return &Installer{out: out}
}

// Install processes tasks in order. It returns the report for every task
// handled so far together with the first *CopyError, if any.
func (in *Installer) Install(ctx context.Context, tasks []CopyTask) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Installer started.", "tasks", len(tasks))

	report := &Report{Results: make([]Result, 0, len(tasks))}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := in.installOne(ctx, task)
		if err != nil {
			logger.Error("Failed to install configuration file.", "task", task.Name, "error", err)
			return report, &CopyError{Task: task, Err: err}
		}
		report.Results = append(report.Results, res)
	}

	logger.Debug("Installer finished.", "copied", report.Copied(), "skipped", report.Skipped())
	return report, nil
}

func (in *Installer) installOne(ctx context.Context, task CopyTask) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("task", task.Name)

	ok, err := fsutil.IsRegularFile(task.Source)
	if err != nil {
		return Result{}, fmt.Errorf("stat source: %w", err)
	}
	if !ok {
		logger.Debug("No custom configuration file, keeping the one in place.", "source", task.Source)
		return Result{Task: task, Outcome: OutcomeSkipped}, nil
	}

	// Links are followed so the file the library build reads is the one
	// that gets replaced.
	dst, err := fsutil.ResolveLink(task.Destination)
	if err != nil {
		return Result{}, fmt.Errorf("resolve destination: %w", err)
	}
	if dst != task.Destination {
		logger.Debug("Destination is a symbolic link.", "destination", task.Destination, "target", dst)
	}

	prev, known := existingSHA256(ctx, dst)

	n, sum, err := copyFile(ctx, task.Source, dst)
	if err != nil {
		return Result{}, err
	}
	changed := !known || prev != sum

	fmt.Fprintf(in.out, "Copied %s to %s\n", task.Source, task.Destination)
	logger.Info("Copied custom configuration file.",
		"source", task.Source,
		"destination", task.Destination,
		"bytes", n,
		"sha256", sum,
		"changed", changed,
	)
	return Result{Task: task, Outcome: OutcomeCopied, Bytes: n, SHA256: sum, Changed: changed}, nil
}

// existingSHA256 hashes the current destination. known is false when there
// is no destination or it cannot be read; only write access is required to
// replace it.
func existingSHA256(ctx context.Context, dst string) (sum string, known bool) {
	ok, err := fsutil.IsRegularFile(dst)
	if err != nil || !ok {
		return "", false
	}
	sum, err = fsutil.FileSHA256(dst)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Previous destination content unknown.", "destination", dst, "error", err)
		return "", false
	}
	return sum, true
}

// copyFile replaces dst with the contents of src. The parent of dst must
// already exist, and an existing dst must be writable by this process.
func copyFile(ctx context.Context, src, dst string) (int64, string, error) {
	parent := filepath.Dir(dst)
	ok, err := fsutil.IsDir(parent)
	if err != nil {
		return 0, "", fmt.Errorf("stat destination directory: %w", err)
	}
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", ErrDestinationDirMissing, parent)
	}

	isDir, err := fsutil.IsDir(dst)
	if err != nil {
		return 0, "", fmt.Errorf("stat destination: %w", err)
	}
	if isDir {
		return 0, "", fmt.Errorf("%w: %s", ErrDestinationIsDir, dst)
	}
	if err := fsutil.CheckWritable(dst); err != nil {
		return 0, "", fmt.Errorf("open destination for writing: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	h := sha256.New()
	n, err := replaceFile(ctx, dst, io.TeeReader(in, h))
	if err != nil {
		return 0, "", err
	}

	return n, hex.EncodeToString(h.Sum(nil)), nil
}
