package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolateHome points HOME and XDG_CONFIG_HOME at a scratch directory so the
// loader's search paths cannot pick up configuration from the host running
// the tests. Returns the scratch home directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

// writeYAML marshals doc with yaml.v3 and writes it to path.
func writeYAML(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	isolateHome(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, infoLevel, cfg.LogLevel)
	assert.Equal(t, DefaultTemplatesPath, cfg.TemplatesPath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "auto", cfg.OCR.Backend)
}

func TestLoadWithFile(t *testing.T) {
	isolateHome(t)
	configFile := filepath.Join(t.TempDir(), "wasl.yaml")
	writeYAML(t, configFile, map[string]any{
		"log_level":      "debug",
		"verbose":        true,
		"templates_path": "/srv/wasl/templates.json",
		"ocr": map[string]any{
			"backend":     "cli",
			"binary":      "/usr/local/bin/tesseract",
			"timeout_sec": 10,
		},
		"server": map[string]any{
			"host": "0.0.0.0",
			"port": 9090,
		},
		"layout": map[string]any{
			"min_area": 750,
		},
	})

	cfg, err := NewLoader().LoadWithFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, debugLevel, cfg.LogLevel)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/srv/wasl/templates.json", cfg.TemplatesPath)
	assert.Equal(t, "cli", cfg.OCR.Backend)
	assert.Equal(t, "/usr/local/bin/tesseract", cfg.OCR.Binary)
	assert.Equal(t, 10, cfg.OCR.TimeoutSec)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 750, cfg.Layout.MinArea)

	// Settings the file omits keep their defaults.
	assert.Equal(t, DefaultConfig().Extract.Workers, cfg.Extract.Workers)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
}

func TestLoadWithInvalidYAMLFile(t *testing.T) {
	isolateHome(t)
	configFile := filepath.Join(t.TempDir(), "wasl.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log_level: debug\n  dangling: indent\n"), 0o644))

	_, err := NewLoader().LoadWithFile(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadWithNonExistentFile(t *testing.T) {
	_, err := NewLoader().LoadWithFile("/nonexistent/path/wasl.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateHome(t)
	configFile := filepath.Join(t.TempDir(), "wasl.yaml")
	writeYAML(t, configFile, map[string]any{
		"log_level": "trace",
		"server":    map[string]any{"port": -1},
	})

	_, err := NewLoader().LoadWithFile(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestEnvOverridesFile(t *testing.T) {
	isolateHome(t)
	configFile := filepath.Join(t.TempDir(), "wasl.yaml")
	writeYAML(t, configFile, map[string]any{"log_level": "warn"})

	t.Setenv("WASL_LOG_LEVEL", "debug")

	cfg, err := NewLoader().LoadWithFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, debugLevel, cfg.LogLevel)
}

func TestEnvNestedKeys(t *testing.T) {
	isolateHome(t)
	t.Setenv("WASL_OCR_BACKEND", "cli")
	t.Setenv("WASL_SERVER_PORT", "9999")
	t.Setenv("WASL_EXTRACT_WORKERS", "8")
	t.Setenv("WASL_LAYOUT_KERNEL_WIDTH", "25")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "cli", cfg.OCR.Backend)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Extract.Workers)
	assert.Equal(t, 25, cfg.Layout.KernelWidth)
}

func TestLoadFindsFileInHomeSearchPath(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".wasl")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeYAML(t, filepath.Join(dir, "wasl.yaml"), map[string]any{"log_level": "warn"})

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, warnLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "wasl.yaml"), loader.GetConfigFileUsed())
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	isolateHome(t)
	outputFile := filepath.Join(t.TempDir(), "default.yaml")

	require.NoError(t, GenerateDefaultConfigFile(outputFile))
	require.FileExists(t, outputFile)

	cfg, err := NewLoader().LoadWithFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGenerateDefaultConfigFileDefaultName(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	require.NoError(t, GenerateDefaultConfigFile(""))
	require.FileExists(t, filepath.Join(dir, "wasl.yaml"))
}

func TestGetSetValues(t *testing.T) {
	loader := NewLoader()
	loader.Set("probe_key", "probe_value")

	assert.Equal(t, "probe_value", loader.GetString("probe_key"))
	assert.Equal(t, "probe_value", loader.Get("probe_key"))
}

func TestLoadersAreIsolated(t *testing.T) {
	a := NewLoader()
	b := NewLoader()
	a.Set("probe_key", "probe_value")

	assert.Empty(t, b.GetString("probe_key"))
	assert.NotSame(t, a.GetViper(), b.GetViper())
}

func TestGetConfigSearchPaths(t *testing.T) {
	home := isolateHome(t)

	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, filepath.Join(home, ".wasl"))
	assert.Contains(t, paths, "/etc/wasl")
}
