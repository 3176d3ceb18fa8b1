package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		dotenv      string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "Students_Grading_Dataset.csv", cfg.Data.Path)
				assert.Equal(t, "insights.db", cfg.Store.DBPath)
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name: "yaml file overrides defaults",
			yaml: "server:\n  port: 9090\ndata:\n  path: data/grades.csv\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "data/grades.csv", cfg.Data.Path)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "environment overrides yaml",
			yaml: "server:\n  port: 9090\n",
			env:  map[string]string{"INSIGHTS_SERVER_PORT": "7070", "INSIGHTS_STORE_DB_PATH": ""},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "", cfg.Store.DBPath)
			},
		},
		{
			name:   "dotenv file is read",
			dotenv: "INSIGHTS_LOGGING_LEVEL=debug\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"INSIGHTS_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "empty data path",
			yaml:    "data:\n  path: \"  \"\n",
			wantErr: true,
		},
		{
			name: "unknown log output falls back to console",
			env:  map[string]string{"INSIGHTS_LOGGING_OUTPUT": "syslog"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			// godotenv sets process env directly; register it for cleanup.
			t.Setenv("INSIGHTS_LOGGING_LEVEL", os.Getenv("INSIGHTS_LOGGING_LEVEL"))
			if os.Getenv("INSIGHTS_LOGGING_LEVEL") == "" {
				require.NoError(t, os.Unsetenv("INSIGHTS_LOGGING_LEVEL"))
			}

			dir := t.TempDir()
			var configFile, dotEnv string
			if tt.yaml != "" {
				configFile = filepath.Join(dir, "config.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.yaml), 0o644))
			}
			if tt.dotenv != "" {
				dotEnv = filepath.Join(dir, ".env")
				require.NoError(t, os.WriteFile(dotEnv, []byte(tt.dotenv), 0o644))
			}

			cfg, err := LoadFrom(dotEnv, configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 9000
	assert.Equal(t, ":9000", cfg.Addr())
}
