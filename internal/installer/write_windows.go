//go:build windows

package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// replaceFile writes r to a temp file next to dst and renames it over dst.
func replaceFile(_ context.Context, dst string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp.*")
	if err != nil {
		return 0, fmt.Errorf("create pending destination file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("write destination: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, fmt.Errorf("replace destination: %w", err)
	}
	return n, nil
}
