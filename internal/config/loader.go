package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Flags override file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Transport:        TransportHTTP,
		Headers:          map[string]string{},
		ClientName:       "rpcsurge",
		Mode:             ModeBurst,
		Concurrency:      1,
		Iterations:       1,
		Timeout:          30 * time.Second,
		HandshakeTimeout: 30 * time.Second,
		ReceiveTimeout:   10 * time.Second,
		IdleInterval:     10 * time.Millisecond,
		Tracing:          TracingConfig{Protocol: "grpc", SampleRate: 1.0},
		ConfigFile:       configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "transport"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("transport: %w", err)
		}
		if val != "" {
			cfg.Transport = Transport(strings.ToLower(strings.TrimSpace(val)))
		}
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "client_name", "client-name", "clientname"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("client_name: %w", err)
		}
		if val != "" {
			cfg.ClientName = val
		}
	}

	if raw, ok := lookupSetting(settings, "mode"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("mode: %w", err)
		}
		if val != "" {
			cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
		}
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = val
	}

	if raw, ok := lookupSetting(settings, "iterations"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("iterations: %w", err)
		}
		cfg.Iterations = val
	}

	if raw, ok := lookupSetting(settings, "ramp_up", "ramp-up", "rampup"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("ramp_up: %w", err)
		}
		cfg.RampUp = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = val
	}

	if raw, ok := lookupSetting(settings, "handshake_timeout", "handshake-timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("handshake_timeout: %w", err)
		}
		cfg.HandshakeTimeout = val
	}

	if raw, ok := lookupSetting(settings, "receive_timeout", "receive-timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("receive_timeout: %w", err)
		}
		cfg.ReceiveTimeout = val
	}

	if raw, ok := lookupSetting(settings, "idle_interval", "idle-interval"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("idle_interval: %w", err)
		}
		cfg.IdleInterval = val
	}

	if raw, ok := lookupSetting(settings, "print_json", "print-json"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("print_json: %w", err)
		}
		cfg.PrintJSON = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("log_errors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "json_output", "json-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("json_output: %w", err)
		}
		cfg.JSONOutput = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "csv_output", "csv-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("csv_output: %w", err)
		}
		cfg.CSVOutput = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "html_output", "html-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("html_output: %w", err)
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return err
		}
	}

	return nil
}

func applyTracingSettings(cfg *TracingConfig, raw interface{}) error {
	nested, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("tracing: expected a settings block, got %T", raw)
	}

	if v, ok := lookupSetting(nested, "enabled"); ok {
		val, err := asBool(v)
		if err != nil {
			return fmt.Errorf("tracing.enabled: %w", err)
		}
		cfg.Enabled = val
	}
	if v, ok := lookupSetting(nested, "endpoint"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.endpoint: %w", err)
		}
		cfg.Endpoint = strings.TrimSpace(val)
	}
	if v, ok := lookupSetting(nested, "protocol"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.protocol: %w", err)
		}
		if val != "" {
			cfg.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if v, ok := lookupSetting(nested, "service_name", "service-name"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.service_name: %w", err)
		}
		cfg.ServiceName = strings.TrimSpace(val)
	}
	if v, ok := lookupSetting(nested, "insecure"); ok {
		val, err := asBool(v)
		if err != nil {
			return fmt.Errorf("tracing.insecure: %w", err)
		}
		cfg.Insecure = val
	}
	if v, ok := lookupSetting(nested, "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(v)
		if err != nil {
			return fmt.Errorf("tracing.sample_rate: %w", err)
		}
		cfg.SampleRate = val
	}
	return nil
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("transport") {
		val, err := fs.GetString("transport")
		if err != nil {
			return err
		}
		cfg.Transport = Transport(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("header") {
		vals, err := fs.GetStringSlice("header")
		if err != nil {
			return err
		}
		hdrs, err := parseHeaderFlags(vals)
		if err != nil {
			return err
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}
	if fs.Changed("client-name") {
		val, err := fs.GetString("client-name")
		if err != nil {
			return err
		}
		cfg.ClientName = val
	}
	if fs.Changed("mode") {
		val, err := fs.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("iterations") {
		val, err := fs.GetInt("iterations")
		if err != nil {
			return err
		}
		cfg.Iterations = val
	}
	if fs.Changed("ramp-up") {
		val, err := fs.GetDuration("ramp-up")
		if err != nil {
			return err
		}
		cfg.RampUp = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("handshake-timeout") {
		val, err := fs.GetDuration("handshake-timeout")
		if err != nil {
			return err
		}
		cfg.HandshakeTimeout = val
	}
	if fs.Changed("receive-timeout") {
		val, err := fs.GetDuration("receive-timeout")
		if err != nil {
			return err
		}
		cfg.ReceiveTimeout = val
	}
	if fs.Changed("idle-interval") {
		val, err := fs.GetDuration("idle-interval")
		if err != nil {
			return err
		}
		cfg.IdleInterval = val
	}
	if fs.Changed("print-json") {
		val, err := fs.GetBool("print-json")
		if err != nil {
			return err
		}
		cfg.PrintJSON = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetString("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = strings.TrimSpace(val)
	}
	if fs.Changed("csv-output") {
		val, err := fs.GetString("csv-output")
		if err != nil {
			return err
		}
		cfg.CSVOutput = strings.TrimSpace(val)
	}
	if fs.Changed("html-output") {
		val, err := fs.GetString("html-output")
		if err != nil {
			return err
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		vals, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = vals
	}
	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enabled = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}
