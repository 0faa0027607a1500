package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Report           *metrics.Report
	Metrics          metrics.Aggregate
	ThresholdSummary *ThresholdSummary
	Steps            []StepRow
	SamplesJSON      string
	TargetURL        string
}

// ThresholdSummary aggregates threshold results for presentation.
type ThresholdSummary struct {
	Total   int
	Passed  int
	Failed  int
	Results []ThresholdResultJSON
}

// ThresholdResultJSON is a flattened threshold result for templates.
type ThresholdResultJSON struct {
	Threshold string  `json:"threshold"`
	Metric    string  `json:"metric"`
	Aggregate string  `json:"aggregate"`
	Operator  string  `json:"operator"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	Pass      bool    `json:"pass"`
}

// StepRow is a per-workflow-step breakdown line.
type StepRow struct {
	Step      string
	Total     int64
	Successes int64
	Failures  int64
	MeanMs    float64
}

type latencySample struct {
	Timestamp int64   `json:"t"`
	LatencyMs float64 `json:"ms"`
}

// GenerateHTMLReport writes a standalone HTML report with embedded charts.
func GenerateHTMLReport(w io.Writer, report *metrics.Report, thresholdResults []threshold.Result, targetURL string) error {
	var thresholdSummary *ThresholdSummary
	if len(thresholdResults) > 0 {
		thresholdSummary = &ThresholdSummary{
			Total:   len(thresholdResults),
			Results: make([]ThresholdResultJSON, len(thresholdResults)),
		}
		for i, tr := range thresholdResults {
			thresholdSummary.Results[i] = ThresholdResultJSON{
				Threshold: tr.Threshold.Raw,
				Metric:    tr.Threshold.Metric,
				Aggregate: tr.Threshold.Aggregate,
				Operator:  tr.Threshold.Operator,
				Expected:  tr.Threshold.Value,
				Actual:    tr.Actual,
				Pass:      tr.Pass,
			}
			if tr.Pass {
				thresholdSummary.Passed++
			} else {
				thresholdSummary.Failed++
			}
		}
	}

	steps := stepBreakdown(report.Outcomes)

	samples := make([]latencySample, 0, len(report.Outcomes))
	for _, out := range report.Outcomes {
		if !out.Success {
			continue
		}
		samples = append(samples, latencySample{Timestamp: out.StartedAt, LatencyMs: out.LatencyMs})
	}
	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("marshal latency samples: %w", err)
	}

	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Report:           report,
		Metrics:          report.Metrics,
		ThresholdSummary: thresholdSummary,
		Steps:            steps,
		SamplesJSON:      string(samplesJSON),
		TargetURL:        targetURL,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int64) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

func stepBreakdown(outcomes []metrics.Outcome) []StepRow {
	byStep := make(map[string]*StepRow)
	sums := make(map[string]float64)
	for _, out := range outcomes {
		row, ok := byStep[string(out.Step)]
		if !ok {
			row = &StepRow{Step: string(out.Step)}
			byStep[string(out.Step)] = row
		}
		row.Total++
		if out.Success {
			row.Successes++
			sums[string(out.Step)] += out.LatencyMs
		} else {
			row.Failures++
		}
	}
	rows := make([]StepRow, 0, len(byStep))
	for step, row := range byStep {
		if row.Successes > 0 {
			row.MeanMs = sums[step] / float64(row.Successes)
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>rpcsurge Load Test Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        .chart-container {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 30px;
            border: 1px solid #e5e7eb;
        }
        .chart-container h3 {
            font-size: 1.1rem;
            margin-bottom: 15px;
            color: #4b5563;
        }
        .chart {
            width: 100%;
            height: 300px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>rpcsurge Load Test Report</h1>
            {{if .TargetURL}}
            <div class="meta" style="margin-top: 5px;">Target: {{.TargetURL}}</div>
            {{end}}
            <div class="meta">Run {{.Report.RunID}} ({{.Report.RunKind}}) | Generated: {{.GeneratedAt}} | Duration: {{formatFloat .Metrics.DurationMs}}ms</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Total Operations</h3>
                    <div class="value">{{.Metrics.TotalOperations}}</div>
                </div>
                <div class="card success">
                    <h3>Successful</h3>
                    <div class="value">{{.Metrics.SuccessfulOperations}}</div>
                    <div class="subvalue">{{formatPercent .Metrics.SuccessfulOperations .Metrics.TotalOperations}}%</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Metrics.FailedOperations}}</div>
                    <div class="subvalue">{{formatPercent .Metrics.FailedOperations .Metrics.TotalOperations}}%</div>
                </div>
                <div class="card">
                    <h3>Operations/sec</h3>
                    <div class="value">{{formatFloat .Metrics.Throughput}}</div>
                </div>
            </div>

            {{if .SamplesJSON}}
            <div class="section">
                <h2>Latency Over Time</h2>
                <div class="chart-container">
                    <h3>Successful Operation Latency (ms)</h3>
                    <div id="latency-chart" class="chart"></div>
                </div>
            </div>
            {{end}}

            <!-- Latency Statistics -->
            <div class="section">
                <h2>Latency Statistics</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatFloat .Metrics.Dispersion.Min}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatFloat .Metrics.Dispersion.Max}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Mean</div>
                        <div class="value">{{formatFloat .Metrics.Dispersion.Mean}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">StdDev</div>
                        <div class="value">{{formatFloat .Metrics.Dispersion.StdDev}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{formatFloat .Metrics.Percentiles.P50}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatFloat .Metrics.Percentiles.P90}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P95</div>
                        <div class="value">{{formatFloat .Metrics.Percentiles.P95}}ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatFloat .Metrics.Percentiles.P99}}ms</div>
                    </div>
                </div>
            </div>

            <!-- Thresholds -->
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Metric</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{.Metric}} ({{.Aggregate}})</td>
                            <td>{{.Operator}} {{formatFloat .Expected}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">PASS</span>
                                {{else}}
                                <span class="badge badge-error">FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Step Breakdown -->
            {{if .Steps}}
            <div class="section">
                <h2>Workflow Step Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Step</th>
                            <th>Total</th>
                            <th>Success</th>
                            <th>Failed</th>
                            <th>Mean Latency</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Steps}}
                        <tr>
                            <td><strong>{{.Step}}</strong></td>
                            <td>{{.Total}} ({{formatPercent .Total $.Metrics.TotalOperations}}%)</td>
                            <td>{{.Successes}}</td>
                            <td>{{.Failures}}</td>
                            <td>{{formatFloat .MeanMs}}ms</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>

    {{if .SamplesJSON}}
    <script>
        const samples = JSON.parse({{.SamplesJSON}});

        if (samples && samples.length > 0) {
            const start = samples[0].t;
            const data = [
                samples.map(s => (s.t - start) / 1000),
                samples.map(s => s.ms)
            ];

            new uPlot({
                title: "Latency",
                width: document.getElementById('latency-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Time (s)" },
                    {
                        label: "Latency (ms)",
                        stroke: "#667eea",
                        width: 2,
                        paths: () => null,
                        points: { show: true, size: 4 }
                    }
                ],
                axes: [
                    { label: "Time (seconds)" },
                    { label: "Latency (ms)" }
                ]
            }, data, document.getElementById('latency-chart'));
        }
    </script>
    {{end}}
</body>
</html>
`
