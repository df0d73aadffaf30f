package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "textfinder"}
	cmd.PersistentFlags().String("server", DefaultConfig.Server, "")
	cmd.PersistentFlags().Bool("debug", false, "")
	cmd.PersistentFlags().Duration("timeout", 0, "")
	return cmd
}

func withConfigFile(t *testing.T, path string) {
	t.Helper()
	old := File
	File = path
	t.Cleanup(func() { File = old })
}

func TestLoad_Defaults(t *testing.T) {
	withConfigFile(t, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), testCommand())
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5055", cfg.Server)
	assert.Equal(t, "127.0.0.1:5056", cfg.Listen)
	assert.False(t, cfg.Debug)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: http://search.local:8080/\ntimeout: 30s\nfallback: true\n"), 0644))
	withConfigFile(t, path)

	t.Setenv("TEXTFINDER_CACHE_DIR", "/var/cache/tf")

	cmd := testCommand()
	require.NoError(t, cmd.PersistentFlags().Set("debug", "true"))

	cfg, err := Load(viper.New(), cmd)
	require.NoError(t, err)

	assert.Equal(t, "http://search.local:8080", cfg.Server)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Fallback)
	assert.Equal(t, "/var/cache/tf", cfg.CacheDir)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	withConfigFile(t, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load(viper.New(), testCommand())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig, false},
		{"empty server", Config{}, true},
		{"bad scheme", Config{Server: "ftp://x"}, true},
		{"negative timeout", Config{Server: "http://x", Timeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
