package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	cfg := new(Config)

	err := Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.NotEmpty(t, cfg.InstallRoot)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	// Bad base URL.
	cfg = &Config{BaseURL: "not a url"}

	err = Validate(cfg)
	require.Error(t, err)

	// Proxy with wrong scheme is rejected.
	cfg = &Config{Proxy: "https://proxy:8080"}

	err = Validate(cfg)
	require.ErrorIs(t, err, ErrInvalidProxyScheme)
}

// TestValidateProxy verifies the scheme restriction on proxy URLs.
func TestValidateProxy(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateProxy(""))
	require.NoError(t, ValidateProxy("http://proxy.local:3128"))
	require.ErrorIs(t, ValidateProxy("https://proxy:8080"), ErrInvalidProxyScheme)
	require.ErrorIs(t, ValidateProxy("socks5://proxy"), ErrInvalidProxyScheme)
	require.ErrorIs(t, ValidateProxy("proxy:8080"), ErrInvalidProxyScheme)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		BaseURL:     "https://updates.local/veracode-cli",
		InstallRoot: dir,
		Proxy:       "http://proxy.local:3128",
		Timeout:     10 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.BaseURL, loaded.BaseURL)
	require.Equal(t, cfg.InstallRoot, loaded.InstallRoot)
	require.Equal(t, cfg.Proxy, loaded.Proxy)
	require.Equal(t, cfg.Timeout, loaded.Timeout)
}

// TestLoadMissingFileUsesDefaults ensures a missing settings file is not fatal.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
}
