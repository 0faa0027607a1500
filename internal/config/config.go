// Package config loads and validates rpcsurge run configuration from files
// and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Transport selects the wire transport for the JSON-RPC exchanges.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

// Mode selects the scheduling policy. The entry point is chosen here, never
// inferred from which optional fields happen to be set.
type Mode string

const (
	ModeBurst     Mode = "burst"
	ModeSustained Mode = "sustained"
)

// Config holds everything a run needs.
type Config struct {
	TargetURL  string            `mapstructure:"target"`
	Transport  Transport         `mapstructure:"transport"`
	Headers    map[string]string `mapstructure:"headers"`
	ClientName string            `mapstructure:"client_name"`

	Mode        Mode          `mapstructure:"mode"`
	Concurrency int           `mapstructure:"concurrency"`
	Duration    time.Duration `mapstructure:"duration"`   // sustained runs only
	Iterations  int           `mapstructure:"iterations"` // burst runs: workflows per client
	RampUp      time.Duration `mapstructure:"ramp_up"`    // burst runs: staggered release window

	Timeout          time.Duration `mapstructure:"timeout"`           // per-request (http)
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"` // websocket dial
	ReceiveTimeout   time.Duration `mapstructure:"receive_timeout"`   // websocket read
	IdleInterval     time.Duration `mapstructure:"idle_interval"`     // sustained loop throttle

	PrintJSON  bool     `mapstructure:"print_json"`
	Dashboard  bool     `mapstructure:"dashboard"`
	LogErrors  bool     `mapstructure:"log_errors"`
	JSONOutput string   `mapstructure:"json_output"`
	CSVOutput  string   `mapstructure:"csv_output"`
	HTMLOutput string   `mapstructure:"html_output"`
	Thresholds []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

// TracingConfig configures OTLP span export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// ValidationError collects every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual problems behind the error.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration and returns a ValidationError listing
// every problem. Configuration failures are fatal: nothing is silently
// defaulted away here.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	switch c.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		issues = append(issues, fmt.Sprintf("unknown transport %q: use \"http\" or \"websocket\"", c.Transport))
	}

	switch c.Mode {
	case ModeBurst:
		// duration is ignored by the burst policy.
	case ModeSustained:
		if c.Duration <= 0 {
			issues = append(issues, "sustained mode requires a positive duration")
		}
	default:
		issues = append(issues, fmt.Sprintf("unknown mode %q: use \"burst\" or \"sustained\"", c.Mode))
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Iterations < 0 {
		issues = append(issues, "iterations must be >= 0")
	}
	if c.RampUp < 0 {
		issues = append(issues, "ramp-up must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.IdleInterval < 0 {
		issues = append(issues, "idle-interval must be >= 0")
	}
	if c.Dashboard && c.PrintJSON {
		issues = append(issues, "dashboard and print-json are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
