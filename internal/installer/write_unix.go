//go:build !windows

package installer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
)

// defaultPerm is used when the destination does not exist yet.
const defaultPerm os.FileMode = 0o644

// replaceFile swaps dst for the contents of r. Readers of dst see either
// the old or the new file, never a mix.
func replaceFile(ctx context.Context, dst string, r io.Reader) (int64, error) {
	logger := ctxlog.FromContext(ctx)

	pending, err := renameio.NewPendingFile(dst,
		renameio.WithPermissions(defaultPerm),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return 0, fmt.Errorf("create pending destination file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug("Cleanup of pending destination file failed.", "destination", dst, "error", err)
		}
	}()

	n, err := io.Copy(pending, r)
	if err != nil {
		return 0, fmt.Errorf("write destination: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("replace destination: %w", err)
	}
	return n, nil
}
