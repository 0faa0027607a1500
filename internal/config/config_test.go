package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		TargetURL:   "http://localhost:8080/rpc",
		Transport:   config.TransportHTTP,
		Mode:        config.ModeBurst,
		Concurrency: 1,
		Iterations:  1,
	}
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresTarget(t *testing.T) {
	cfg := validConfig()
	cfg.TargetURL = "  "
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "target is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSustainedRequiresDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = config.ModeSustained
	cfg.Duration = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for sustained mode without duration")
	}

	cfg.Duration = 10 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid sustained config, got %v", err)
	}
}

func TestValidateBurstIgnoresDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Duration = time.Minute
	if err := cfg.Validate(); err != nil {
		t.Errorf("burst mode must tolerate a set duration, got %v", err)
	}
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	cfg := validConfig()
	cfg.Transport = "carrier-pigeon"
	cfg.Mode = "spike"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "transport") || !strings.Contains(msg, "mode") {
		t.Errorf("expected both enum issues reported, got %v", msg)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	cfg := config.Config{
		Transport:   config.TransportHTTP,
		Mode:        config.ModeBurst,
		Concurrency: 0,
		RampUp:      -time.Second,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr config.ValidationError
	ok := false
	if v, isVal := err.(config.ValidationError); isVal {
		verr, ok = v, true
	}
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Issues()) < 3 {
		t.Errorf("expected at least 3 issues, got %v", verr.Issues())
	}
}

func TestValidateDashboardAndPrintJSONExclusive(t *testing.T) {
	cfg := validConfig()
	cfg.Dashboard = true
	cfg.PrintJSON = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for dashboard with print-json")
	}
}

func TestValidateSampleRateRange(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.SampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for sample rate > 1")
	}
}
