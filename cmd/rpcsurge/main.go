package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkrell/rpcsurge/internal/config"
	"github.com/mkrell/rpcsurge/internal/dashboard"
	"github.com/mkrell/rpcsurge/internal/logging"
	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/output"
	"github.com/mkrell/rpcsurge/internal/pool"
	"github.com/mkrell/rpcsurge/internal/rpcclient"
	"github.com/mkrell/rpcsurge/internal/runner"
	"github.com/mkrell/rpcsurge/internal/threshold"
	"github.com/mkrell/rpcsurge/internal/tracing"
	"github.com/mkrell/rpcsurge/internal/workflow"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	caller, err := newCaller(cfg)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout stays clean for --print-json.
	var sink logging.Sink = logging.NewWriterSink(os.Stderr)
	if cfg.Dashboard {
		sink = logging.NopSink{}
	}
	var debugSink logging.Sink = logging.NopSink{}
	if cfg.LogErrors {
		debugSink = sink
	}

	exec := workflow.New(caller, debugSink, provider.Tracer())
	clients := pool.New(func(ctx context.Context, id int) (*rpcclient.Session, error) {
		return caller.NewSession(ctx, id)
	})
	defer func() {
		if err := clients.Reset(); err != nil {
			sink.Warnf("client teardown: %v", err)
		}
	}()

	engine := metrics.NewEngine()

	var reporter runner.Reporter
	if !cfg.PrintJSON {
		reporter = output.SummaryRenderer{Sink: sink}
	}

	orch := runner.New(runner.Options{
		Pool:         clients,
		Executor:     exec,
		Engine:       engine,
		Sink:         sink,
		Reporter:     reporter,
		IdleInterval: cfg.IdleInterval,
	})

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(engine, dashboardConfig(cfg), cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var progress *output.ProgressReporter
	if !cfg.PrintJSON && !cfg.Dashboard {
		progress = output.NewProgressReporter(engine, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			if progress != nil {
				progress.Stop()
				fmt.Fprintln(os.Stdout)
			}
		}()
	}

	rc := runner.RunConfig{
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		Iterations:  cfg.Iterations,
		RampUp:      cfg.RampUp,
	}

	var report *metrics.Report
	switch cfg.Mode {
	case config.ModeSustained:
		report, err = orch.RunSustained(ctx, rc)
	default:
		report, err = orch.RunBurst(ctx, rc)
	}
	if err != nil {
		return err
	}

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
		progress = nil
	}

	if cfg.PrintJSON {
		if err := output.WriteJSONReport(os.Stdout, report); err != nil {
			return err
		}
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(report.Metrics)
	for _, res := range results {
		status := "PASS"
		if !res.Pass {
			status = "FAIL"
		}
		sink.Infof("threshold %s: %s (actual %.2f)", res.Threshold.Raw, status, res.Actual)
	}

	if err := exportReports(cfg, report, results); err != nil {
		return err
	}

	if !threshold.AllPassed(results) {
		return fmt.Errorf("thresholds failed")
	}
	return nil
}

func newCaller(cfg *config.Config) (rpcclient.Caller, error) {
	headers := http.Header{}
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	switch cfg.Transport {
	case config.TransportWebSocket:
		return rpcclient.NewWSCaller(rpcclient.WSOptions{
			URL:              cfg.TargetURL,
			Headers:          headers,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReceiveTimeout:   cfg.ReceiveTimeout,
			ClientName:       cfg.ClientName,
		})
	default:
		return rpcclient.NewHTTPCaller(rpcclient.HTTPOptions{
			Endpoint:   cfg.TargetURL,
			Headers:    headers,
			Timeout:    cfg.Timeout,
			ClientName: cfg.ClientName,
		})
	}
}

func dashboardConfig(cfg *config.Config) dashboard.RunConfig {
	return dashboard.RunConfig{
		TargetURL:   cfg.TargetURL,
		Transport:   string(cfg.Transport),
		Mode:        string(cfg.Mode),
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		Iterations:  cfg.Iterations,
		RampUp:      cfg.RampUp,
		ConfigFile:  cfg.ConfigFile,
	}
}

func exportReports(cfg *config.Config, report *metrics.Report, results []threshold.Result) error {
	if cfg.JSONOutput != "" {
		if err := output.WriteJSONFile(cfg.JSONOutput, report); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
	}
	if cfg.CSVOutput != "" {
		if err := output.WriteCSVFile(cfg.CSVOutput, report); err != nil {
			return fmt.Errorf("write CSV report: %w", err)
		}
	}
	if cfg.HTMLOutput != "" {
		if err := output.WriteHTMLFile(cfg.HTMLOutput, report, results, cfg.TargetURL); err != nil {
			return fmt.Errorf("write HTML report: %w", err)
		}
	}
	return nil
}
