package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ordersdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "left", cfg.Pipeline.JoinMode)
	assert.Empty(t, cfg.Pipeline.JoinKeys)
	assert.Equal(t, []string{"Order Date"}, cfg.Pipeline.DateColumns)
	assert.Equal(t, "_Sum", cfg.Pipeline.PrimarySuffix)
	assert.Equal(t, "_Sec", cfg.Pipeline.SecondarySuffix)
	assert.Equal(t, 200, cfg.Pipeline.PreviewRows)
	assert.True(t, cfg.Export.BOM)
	assert.Equal(t, "filtered_export.csv", cfg.Export.CSVFileName)
	assert.Equal(t, "filtered_export.xlsx", cfg.Export.XLSXFileName)
	assert.Equal(t, "Summary.xlsx", cfg.Sources.PrimaryPath)
	assert.Equal(t, "Secondary.xlsx", cfg.Sources.SecondaryPath)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults and keeps the rest",
			file: `
server:
  port: 9100
  read_timeout: 5s
pipeline:
  join_mode: outer
  join_keys: [User]
sources:
  primary_path: /data/Summary.xlsx
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
				assert.Equal(t, "outer", cfg.Pipeline.JoinMode)
				assert.Equal(t, []string{"User"}, cfg.Pipeline.JoinKeys)
				assert.Equal(t, "/data/Summary.xlsx", cfg.Sources.PrimaryPath)
				assert.Equal(t, "Secondary.xlsx", cfg.Sources.SecondaryPath)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9100\n",
			env: map[string]string{
				"ORDERSDASH_SERVER_PORT":        "9200",
				"ORDERSDASH_PIPELINE_JOIN_KEYS": "User,Order Date",
				"ORDERSDASH_EXPORT_BOM":         "false",
				"ORDERSDASH_LOGGING_LEVEL":      "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9200, cfg.Server.Port)
				assert.Equal(t, []string{"User", "Order Date"}, cfg.Pipeline.JoinKeys)
				assert.False(t, cfg.Export.BOM)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid join mode",
			env:     map[string]string{"ORDERSDASH_PIPELINE_JOIN_MODE": "inner"},
			wantErr: true,
		},
		{
			name:    "invalid port",
			file:    "server:\n  port: 70000\n",
			wantErr: true,
		},
		{
			name:    "identical suffixes",
			file:    "pipeline:\n  primary_suffix: _X\n  secondary_suffix: _X\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// run from an empty directory so no stray config file is picked up
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "ordersdash.yaml"), []byte("pipeline:\n  preview_rows: 50\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Pipeline.PreviewRows)
}
