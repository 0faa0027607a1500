package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rpcsurge",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", "", "Target JSON-RPC endpoint to load test")
	flags.String("transport", string(TransportHTTP), "Wire transport: 'http' or 'websocket'")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("client-name", "rpcsurge", "Client name sent with session.initialize")

	// Load control flags
	flags.String("mode", string(ModeBurst), "Scheduling policy: 'burst' or 'sustained'")
	flags.IntP("concurrency", "c", 1, "Number of concurrent virtual clients")
	flags.DurationP("duration", "d", 0, "How long a sustained run lasts (e.g. 30s, 1m)")
	flags.IntP("iterations", "i", 1, "Workflows per client in a burst run")
	flags.Duration("ramp-up", 0, "Window over which burst clients are released (0 = all at once)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout (http transport)")
	flags.Duration("handshake-timeout", 30*time.Second, "WebSocket handshake timeout")
	flags.Duration("receive-timeout", 10*time.Second, "WebSocket receive timeout")
	flags.Duration("idle-interval", 10*time.Millisecond, "Pause between sustained workflow iterations")

	// Output flags
	flags.Bool("print-json", false, "Emit the JSON report to stdout instead of the summary")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed operation to stderr")
	flags.String("json-output", "", "Write the JSON report to the specified file path")
	flags.String("csv-output", "", "Write the CSV report to the specified file path")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g., 'op_duration:p95 < 500')")

	// Tracing flags
	flags.Bool("trace", false, "Enable OpenTelemetry span export")
	flags.String("trace-endpoint", "", "OTLP endpoint (defaults to OTEL_EXPORTER_OTLP_ENDPOINT)")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("trace-service-name", "", "Service name reported on spans")
	flags.Bool("trace-insecure", false, "Disable TLS for OTLP export")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}
