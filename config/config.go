// Package config centralises runtime configuration for the trade panel.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wealthocean/tradepanel/errs"
)

const (
	// EnvBaseURL points the panel at its backend.
	EnvBaseURL = "PANEL_BASE_URL"
	// EnvPollInterval overrides the order-book poll cadence.
	EnvPollInterval = "PANEL_POLL_INTERVAL"
	// EnvHTTPTimeout overrides the per-request timeout.
	EnvHTTPTimeout = "PANEL_HTTP_TIMEOUT"
	// EnvRequestsPerSecond overrides the client-side request throttle.
	EnvRequestsPerSecond = "PANEL_REQUESTS_PER_SECOND"
	// EnvOTLPEndpoint configures the metrics exporter endpoint.
	EnvOTLPEndpoint = "PANEL_OTLP_ENDPOINT"
)

// TelemetryConfig configures OTLP metric export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	ServiceName  string `yaml:"serviceName"`
	OTLPInsecure bool   `yaml:"otlpInsecure"`
}

// Settings contains the panel configuration tree loaded from defaults,
// an optional yaml file, and environment overrides.
type Settings struct {
	BaseURL           string          `yaml:"baseURL"`
	PollInterval      time.Duration   `yaml:"pollInterval"`
	HTTPTimeout       time.Duration   `yaml:"httpTimeout"`
	RequestsPerSecond float64         `yaml:"requestsPerSecond"`
	Telemetry         TelemetryConfig `yaml:"telemetry"`
}

// Default returns the default panel configuration.
func Default() Settings {
	return Settings{
		BaseURL:           "",
		PollInterval:      3 * time.Second,
		HTTPTimeout:       10 * time.Second,
		RequestsPerSecond: 8,
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "",
			ServiceName:  "tradepanel",
			OTLPInsecure: false,
		},
	}
}

// Load builds Settings from defaults, the yaml file at path (skipped when
// path is empty or missing), and finally environment overrides.
func Load(path string) (Settings, error) {
	settings := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &settings); err != nil {
				return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env + defaults
		default:
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&settings)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func applyEnv(s *Settings) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		s.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPollInterval)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.PollInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.HTTPTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRequestsPerSecond)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			s.RequestsPerSecond = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvOTLPEndpoint)); v != "" {
		s.Telemetry.OTLPEndpoint = v
	}
}

// Validate ensures the settings are usable.
func (s Settings) Validate() error {
	base := strings.TrimSpace(s.BaseURL)
	if base == "" {
		return errs.New("config", errs.CodeInvalid, errs.WithMessage("baseURL required"))
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errs.New("config", errs.CodeInvalid, errs.WithMessage("baseURL must be an absolute http(s) URL"))
	}
	if s.PollInterval <= 0 {
		return errs.New("config", errs.CodeInvalid, errs.WithMessage("pollInterval must be >0"))
	}
	if s.HTTPTimeout <= 0 {
		return errs.New("config", errs.CodeInvalid, errs.WithMessage("httpTimeout must be >0"))
	}
	if s.RequestsPerSecond <= 0 {
		return errs.New("config", errs.CodeInvalid, errs.WithMessage("requestsPerSecond must be >0"))
	}
	return nil
}
