package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds installer settings shared by the install and uninstall flows.
type Config struct {
	// BaseURL is the root URL hosting the LATEST_VERSION pointer and release archives.
	BaseURL string `yaml:"base_url"`
	// InstallRoot is the directory under which the tool is installed.
	// Defaults to the user's application data directory.
	InstallRoot string `yaml:"install_root"`
	// Proxy is an optional HTTP proxy URL routed through for all requests.
	// Only the http:// scheme is accepted.
	Proxy string `yaml:"proxy"`
	// Timeout is the duration for individual network operations.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for installer settings.
	DefaultConfigFilename = "veracode-installer-settings.yaml"

	// DefaultBaseURL points at the official release distribution endpoint.
	DefaultBaseURL = "https://tools.veracode.com/veracode-cli"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrInvalidProxyScheme is returned when the proxy URL does not use the http scheme.
	ErrInvalidProxyScheme = errors.New("proxy URL must use the http:// scheme")
)

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned instead, so the
// installer works out of the box without a settings file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling in defaults where a value is absent.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.InstallRoot == "" {
		cfg.InstallRoot = xdg.DataHome
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return ValidateProxy(cfg.Proxy)
}

// ValidateProxy rejects any proxy value whose scheme is not plain http.
// The check runs before any network call is attempted.
func ValidateProxy(proxy string) error {
	if proxy == "" {
		return nil
	}

	u, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	if u.Scheme != "http" {
		return fmt.Errorf("%w, got %q", ErrInvalidProxyScheme, proxy)
	}

	return nil
}
