// Package dashboard renders a live terminal UI for an in-progress load run.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

// RunConfig holds run parameters for display.
type RunConfig struct {
	TargetURL   string
	Transport   string
	Mode        string
	Concurrency int
	Duration    time.Duration // 0 for burst runs
	Iterations  int           // 0 for sustained runs
	RampUp      time.Duration
	ConfigFile  string
}

// Dashboard renders live engine snapshots until stopped.
type Dashboard struct {
	engine       *metrics.Engine
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	opsGauge       *widgets.Gauge
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	runConfig      RunConfig
}

// New creates a Dashboard. shutdownFunc is invoked when the user requests an
// early stop (q or Ctrl-C) so the caller can cancel the run context.
func New(engine *metrics.Engine, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		engine:         engine,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "P50: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.opsGauge = widgets.NewGauge()
	d.opsGauge.Title = "Operations Per Second"
	d.opsGauge.Percent = 0
	d.opsGauge.BarColor = ui.ColorBlue
	d.opsGauge.BorderStyle.Fg = ui.ColorCyan
	d.opsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.25,
			ui.NewCol(0.5, d.opsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.55,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Wait for Stop() to cancel the context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	snap := d.engine.Snapshot(elapsed)

	if snap.P50Ms > 0 {
		d.latencyHistory = append(d.latencyHistory, snap.P50Ms)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | P50: %.2fms | P99: %.2fms",
			snap.P50Ms,
			snap.P99Ms,
		)
	}

	currentOps := snap.OpsPerSec
	maxOps := 100.0
	if currentOps > maxOps {
		maxOps = currentOps
	}
	opsPercent := int((currentOps / maxOps) * 100)
	if opsPercent > 100 {
		opsPercent = 100
	}
	d.opsGauge.Percent = opsPercent
	d.opsGauge.Label = fmt.Sprintf("%.1f ops/s", currentOps)

	successRate := 0.0
	if snap.Total > 0 {
		successRate = (float64(snap.Successes) / float64(snap.Total)) * 100
	}

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Total: %d | Success Rate: %.1f%%",
		d.runConfig.TargetURL,
		d.formatRunParams(),
		elapsed.Round(time.Second),
		snap.Total,
		successRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Operations:  %d\nSuccessful:        %d\nFailed:            %d\nCurrent Ops/s:     %.2f\nSuccess Rate:      %.1f%%",
		snap.Total,
		snap.Successes,
		snap.Failures,
		currentOps,
		successRate,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"P50:  %.2fms\nP99:  %.2fms",
		snap.P50Ms,
		snap.P99Ms,
	)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.runConfig.Transport != "" && d.runConfig.Transport != "http" {
		parts = append(parts, fmt.Sprintf("Transport: %s", d.runConfig.Transport))
	}
	if d.runConfig.Mode != "" {
		parts = append(parts, fmt.Sprintf("Mode: %s", d.runConfig.Mode))
	}
	if d.runConfig.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Clients: %d", d.runConfig.Concurrency))
	}
	if d.runConfig.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.runConfig.Duration))
	}
	if d.runConfig.Iterations > 0 {
		parts = append(parts, fmt.Sprintf("Iterations: %d", d.runConfig.Iterations))
	}
	if d.runConfig.RampUp > 0 {
		parts = append(parts, fmt.Sprintf("Ramp-Up: %s", d.runConfig.RampUp))
	}
	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
