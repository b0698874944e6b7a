package configinstall

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/hook"
	"github.com/specialistvlad/pioconf/internal/installer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_UnderProgramTarget(t *testing.T) {
	r := hook.New()
	(&Module{}).Register(r)

	assert.Equal(t, []string{ActionName}, r.PreActions(hook.TargetProgram))
}

func TestBeforeBuild_CopiesThroughRegistry(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "lvgl_conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "lvgl_conf", "lv_conf.h"), []byte("#define LV_COLOR_DEPTH 16\n"), 0o644))
	dstDir := filepath.Join(root, ".pio", "libdeps", "esp32dev", "lvgl")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))

	out := &bytes.Buffer{}
	r := hook.New()
	(&Module{Out: out}).Register(r)
	env := buildenv.New(map[string]string{buildenv.KeyProjectDir: root, buildenv.KeyProfile: "esp32dev"})

	// --- Act ---
	err := r.RunPre(context.Background(), hook.TargetProgram, env)

	// --- Assert ---
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dstDir, "lv_conf.h"))
	require.NoError(t, err)
	assert.Equal(t, "#define LV_COLOR_DEPTH 16\n", string(got))
	assert.Contains(t, out.String(), "Copied ")
	assert.Contains(t, out.String(), "lv_conf.h")
}

func TestBeforeBuild_MissingEnvironment(t *testing.T) {
	err := (&Module{}).BeforeBuild(context.Background(), buildenv.New(nil))
	require.ErrorIs(t, err, buildenv.ErrMissingKey)
}

func TestBeforeBuild_MissingLibDepsAborts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "TFT_eSPI"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "TFT_eSPI", "User_Setup.h"), []byte("X"), 0o644))
	env := buildenv.New(map[string]string{buildenv.KeyProjectDir: root, buildenv.KeyProfile: "esp32dev"})

	err := (&Module{}).BeforeBuild(context.Background(), env)

	require.ErrorIs(t, err, installer.ErrDestinationDirMissing)
	assert.NoDirExists(t, filepath.Join(root, ".pio"))
}

func TestSources(t *testing.T) {
	root := t.TempDir()
	env := buildenv.New(map[string]string{buildenv.KeyProjectDir: root, buildenv.KeyProfile: "esp32dev"})

	srcs, err := (&Module{}).Sources(context.Background(), env)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "lib", "TFT_eSPI", "User_Setup.h"),
		filepath.Join(root, "lib", "lvgl_conf", "lv_conf.h"),
	}, srcs)
}
