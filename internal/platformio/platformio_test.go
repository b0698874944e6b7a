package platformio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIni = `; PlatformIO Project Configuration File

[platformio]
default_envs = esp32dev, esp32s3

[env]
framework = arduino

[env:esp32dev]
platform = espressif32
board = esp32dev
lib_deps =
    bodmer/TFT_eSPI@^2.5.43
    lvgl/lvgl@^8.3.11
extra_scripts = pre:copy_configs.py

[env:esp32s3]
platform = espressif32
board = esp32-s3-devkitc-1
`

func writeIni(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeIni(t, sampleIni)

	p, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, p.Dir)
	assert.Equal(t, []string{"esp32dev", "esp32s3"}, p.DefaultEnvs)
	assert.Equal(t, []string{"esp32dev", "esp32s3"}, p.Envs)
	assert.Empty(t, p.WorkspaceDir)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()

	p, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, &Project{Dir: dir}, p)
}

func TestLoad_WorkspaceDir(t *testing.T) {
	dir := writeIni(t, "[platformio]\nworkspace_dir = ${PROJECT_DIR}/build_cache\n\n[env:only]\nboard = x\n")

	p, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "build_cache"), filepath.Clean(p.WorkspaceDir))
}

func TestResolveEnv(t *testing.T) {
	tests := []struct {
		name      string
		project   Project
		requested string
		want      string
		wantErr   bool
	}{
		{name: "requested and declared", project: Project{Envs: []string{"a", "b"}}, requested: "b", want: "b"},
		{name: "requested undeclared", project: Project{Envs: []string{"a"}}, requested: "z", wantErr: true},
		{name: "requested without ini", project: Project{}, requested: "z", want: "z"},
		{name: "first default", project: Project{DefaultEnvs: []string{"b", "a"}, Envs: []string{"a", "b"}}, want: "b"},
		{name: "single env", project: Project{Envs: []string{"only"}}, want: "only"},
		{name: "ambiguous", project: Project{Envs: []string{"a", "b"}}, wantErr: true},
		{name: "nothing", project: Project{}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.project.ResolveEnv(tc.requested)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveEnv_NoEnvSentinel(t *testing.T) {
	_, err := (&Project{}).ResolveEnv("")
	require.ErrorIs(t, err, ErrNoEnv)
}
