// Package testutil holds helpers shared by the package and system tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/pioconf/internal/app"
	"github.com/specialistvlad/pioconf/internal/hook"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteProject creates a project tree in a fresh temp dir. Keys of files are
// slash-separated paths relative to the root; a key ending in "/" creates an
// empty directory.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
}

// RunApp builds an App for cfg and runs it once. A panic during startup is
// returned as an error.
func RunApp(t *testing.T, cfg *app.Config, modules ...hook.Module) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, cfg, modules...)
}

// RunAppWithContext is RunApp with a caller supplied context.
func RunAppWithContext(ctx context.Context, t *testing.T, cfg *app.Config, modules ...hook.Module) *HarnessResult {
	t.Helper()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	out := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("PIOCONF_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	var (
		testApp  *app.App
		panicErr any
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, cfg, modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			Output: out.String(),
			Err:    fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	err := testApp.Run(ctx)
	return &HarnessResult{Output: out.String(), Err: err, App: testApp}
}
