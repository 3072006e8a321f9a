package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, content string) string {
	t.Helper()
	filename := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfig(t *testing.T) {
	type tc struct {
		name      string
		file      string
		env       map[string]string
		check     func(t *testing.T, config Config)
		wantError bool
	}

	tests := []tc{
		{
			name: "defaults_without_file",
			check: func(t *testing.T, config Config) {
				require.Equal(t, EnvironmentProduction, config.Environment)
				require.Equal(t, "0.0.0.0:8080", config.HTTPServerAddress)
				require.Equal(t, int64(1<<20), config.MaxTextBytes)
				require.Equal(t, 4, config.Workers)
				require.Equal(t, "dark", config.Theme)
				require.Equal(t, zerolog.InfoLevel, config.Level())
				require.False(t, config.IsDevelopment())
				require.Nil(t, config.Indent)
				require.Nil(t, config.SimplifySpaces)
			},
		},
		{
			name: "values_from_file",
			file: "ENVIRONMENT=development\nLOG_LEVEL=debug\nRULES_FILE=grammar.yaml\nINDENT=-1\nSIMPLIFY_SPACES=true\nMAX_TEXT_BYTES=100\n",
			check: func(t *testing.T, config Config) {
				require.True(t, config.IsDevelopment())
				require.Equal(t, zerolog.DebugLevel, config.Level())
				require.Equal(t, "grammar.yaml", config.RulesFile)
				require.NotNil(t, config.Indent)
				require.Equal(t, -1, *config.Indent)
				require.NotNil(t, config.SimplifySpaces)
				require.True(t, *config.SimplifySpaces)
				require.Equal(t, int64(100), config.MaxTextBytes)
			},
		},
		{
			name: "environment_overrides_file",
			file: "WORKERS=2\nTHEME=light\n",
			env:  map[string]string{"WORKERS": "8", "INDENT": "2"},
			check: func(t *testing.T, config Config) {
				require.Equal(t, 8, config.Workers)
				require.Equal(t, 2, *config.Indent)
				require.Equal(t, "light", config.Theme)
			},
		},
		{
			name:      "invalid_log_level",
			file:      "LOG_LEVEL=loud\n",
			wantError: true,
		},
		{
			name:      "invalid_workers",
			env:       map[string]string{"WORKERS": "0"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeEnvFile(t, dir, tt.file)
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			config, err := LoadConfig(dir)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	filename := writeEnvFile(t, t.TempDir(), "THEME=light\nINDENT=4\n")

	config, err := LoadConfigFile(filename)
	require.NoError(t, err)
	require.Equal(t, "light", config.Theme)
	require.Equal(t, 4, *config.Indent)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
