package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenTTL        = 72 * time.Hour
	defaultUploadMaxBytes  = 5 << 20 // 5 MiB
	defaultVerifierTimeout = 10 * time.Second
)

type VerifierConfig struct {
	Endpoint string        `koanf:"endpoint" mapstructure:"endpoint"`
	APIKey   string        `koanf:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxBytes     int64    `koanf:"max_bytes" mapstructure:"max_bytes"`
	AllowedTypes []string `koanf:"allowed_types" mapstructure:"allowed_types"`
}

type Config struct {
	ServiceName string `koanf:"service_name" mapstructure:"service_name"`

	// BaseURL is the public prefix confirmation links are built from. It
	// must use an encrypted transport scheme since the raw token rides in
	// the query string.
	BaseURL string `koanf:"base_url" mapstructure:"base_url"`

	// SigningSecret is the process-wide token signing key. Loaded once at
	// startup, never logged.
	SigningSecret string        `koanf:"signing_secret" mapstructure:"signing_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl" mapstructure:"token_ttl"`

	Verifier VerifierConfig `koanf:"verifier" mapstructure:"verifier"`
	Upload   UploadConfig   `koanf:"upload" mapstructure:"upload"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "confirm",
		TokenTTL:    defaultTokenTTL,
		Verifier: VerifierConfig{
			Timeout: defaultVerifierTimeout,
		},
		Upload: UploadConfig{
			MaxBytes: defaultUploadMaxBytes,
			AllowedTypes: []string{
				"image/jpeg",
				"image/png",
				"application/pdf",
			},
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("core: base_url must use https, got %q", parsed.Scheme)
	}
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("core: signing_secret is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("core: token_ttl must be positive")
	}
	if strings.TrimSpace(c.Verifier.Endpoint) == "" {
		return fmt.Errorf("core: verifier.endpoint is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("core: upload.max_bytes must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("core: upload.allowed_types is required")
	}
	return nil
}
