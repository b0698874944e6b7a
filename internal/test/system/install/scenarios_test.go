package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/pioconf/internal/app"
	"github.com/specialistvlad/pioconf/internal/installer"
	"github.com/specialistvlad/pioconf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ini = "[platformio]\ndefault_envs = esp32dev\n\n[env:esp32dev]\nboard = esp32dev\n"

func tftDest(root string) string {
	return filepath.Join(root, ".pio", "libdeps", "esp32dev", "TFT_eSPI", "User_Setup.h")
}

func lvglDest(root string) string {
	return filepath.Join(root, ".pio", "libdeps", "esp32dev", "lvgl", "lv_conf.h")
}

func copyLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "Copied ") {
			lines = append(lines, l)
		}
	}
	return lines
}

func newConfig(t *testing.T, root string) *app.Config {
	t.Helper()
	cfg, err := app.NewConfig(app.Config{ProjectDir: root, LogLevel: "warn"})
	require.NoError(t, err)
	return cfg
}

// Test for: source present, destination absent, parent present.
func TestInstall_SingleCustomFile(t *testing.T) {
	// --- Arrange ---
	root := testutil.WriteProject(t, map[string]string{
		"platformio.ini":                  ini,
		"lib/TFT_eSPI/User_Setup.h":       "X",
		".pio/libdeps/esp32dev/TFT_eSPI/": "",
		".pio/libdeps/esp32dev/lvgl/":     "",
	})

	// --- Act ---
	res := testutil.RunApp(t, newConfig(t, root))

	// --- Assert ---
	require.NoError(t, res.Err)
	got, err := os.ReadFile(tftDest(root))
	require.NoError(t, err)
	assert.Equal(t, "X", string(got))
	assert.NoFileExists(t, lvglDest(root))
	assert.Len(t, copyLines(res.Output), 1)
}

// Test for: both sources present, vendor defaults replaced.
func TestInstall_BothFilesOverwriteVendorDefaults(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"platformio.ini":                              ini,
		"lib/TFT_eSPI/User_Setup.h":                   "#define ST7789_DRIVER\n",
		"lib/lvgl_conf/lv_conf.h":                     "#define LV_USE_LOG 1\n",
		".pio/libdeps/esp32dev/TFT_eSPI/User_Setup.h": "vendor tft default, rather long",
		".pio/libdeps/esp32dev/lvgl/lv_conf.h":        "vendor lvgl default, rather long",
	})

	res := testutil.RunApp(t, newConfig(t, root))

	require.NoError(t, res.Err)
	tft, err := os.ReadFile(tftDest(root))
	require.NoError(t, err)
	lv, err := os.ReadFile(lvglDest(root))
	require.NoError(t, err)
	assert.Equal(t, "#define ST7789_DRIVER\n", string(tft))
	assert.Equal(t, "#define LV_USE_LOG 1\n", string(lv))
	assert.Len(t, copyLines(res.Output), 2)
}

// Test for: no custom files at all.
func TestInstall_NoCustomFiles(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"platformio.ini":                       ini,
		".pio/libdeps/esp32dev/lvgl/lv_conf.h": "vendor default",
	})

	res := testutil.RunApp(t, newConfig(t, root))

	require.NoError(t, res.Err)
	assert.Empty(t, copyLines(res.Output))
	got, err := os.ReadFile(lvglDest(root))
	require.NoError(t, err)
	assert.Equal(t, "vendor default", string(got))
	assert.NoFileExists(t, tftDest(root))
}

// Test for: libdeps not populated yet.
func TestInstall_MissingDestinationDirAborts(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"platformio.ini":            ini,
		"lib/TFT_eSPI/User_Setup.h": "X",
	})

	res := testutil.RunApp(t, newConfig(t, root))

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, installer.ErrDestinationDirMissing)
	assert.NoDirExists(t, filepath.Join(root, ".pio"))
	assert.Empty(t, copyLines(res.Output))
}

// Test for: running twice gives the same result.
func TestInstall_Idempotent(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"platformio.ini":                  ini,
		"lib/lvgl_conf/lv_conf.h":         "lvgl",
		".pio/libdeps/esp32dev/lvgl/":     "",
		".pio/libdeps/esp32dev/TFT_eSPI/": "",
	})

	for i := 0; i < 2; i++ {
		res := testutil.RunApp(t, newConfig(t, root))
		require.NoError(t, res.Err)
		got, err := os.ReadFile(lvglDest(root))
		require.NoError(t, err)
		assert.Equal(t, "lvgl", string(got), "run %d", i+1)
	}
}
