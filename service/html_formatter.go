package service

import (
	"html/template"
	"io"

	"github.com/ludo-technologies/sqgate/domain"
)

// HTMLData represents the data for HTML template
type HTMLData struct {
	Report      *domain.QualityGateReport
	Summary     domain.ReportSummary
	GateName    string
	Status      string
	Conditions  []domain.ConditionStatus
	ShowPassing bool
}

var htmlFuncs = template.FuncMap{
	"statusClass": func(status string) string {
		switch status {
		case domain.StatusOK:
			return "status-ok"
		case domain.StatusError:
			return "status-error"
		case domain.StatusWarn:
			return "status-warn"
		default:
			return "status-none"
		}
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(htmlTemplate))

// WriteHTML writes the quality gate report as a standalone HTML page
func (f *OutputFormatterImpl) WriteHTML(report *domain.QualityGateReport, writer io.Writer) error {
	data := HTMLData{
		Report:      report,
		Summary:     report.Summarize(),
		Status:      domain.StatusNone,
		ShowPassing: f.showPassing,
	}
	if report.QualityGate != nil {
		data.GateName = report.QualityGate.Name
	}
	if report.Status != nil {
		data.Status = report.Status.Status
		for _, c := range report.Status.Conditions {
			if !c.Passed || f.showPassing {
				data.Conditions = append(data.Conditions, c)
			}
		}
	}

	return reportTemplate.Execute(writer, data)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Quality Gate Report: {{.Report.ProjectKey}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f0f2f5;
            min-height: 100vh;
        }
        .container {
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.08);
        }
        .card h1 { color: #236a97; margin-bottom: 10px; }
        .subtitle { color: #666; font-size: 14px; }
        .status-badge {
            display: inline-block;
            padding: 10px 20px;
            border-radius: 50px;
            font-size: 24px;
            font-weight: bold;
            margin: 10px 0;
            color: white;
        }
        .status-ok { background: #4caf50; }
        .status-error { background: #f44336; }
        .status-warn { background: #ff9800; }
        .status-none { background: #9e9e9e; }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .metric-card {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 8px;
            text-align: center;
        }
        .metric-value { font-size: 32px; font-weight: bold; color: #236a97; }
        .metric-label { color: #666; margin-top: 5px; }

        .table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        .table th, .table td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
        .table th { background: #f8f9fa; font-weight: 600; }
        .pill { display: inline-block; padding: 2px 10px; border-radius: 12px; color: white; font-size: 12px; font-weight: 700; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <h1>Quality Gate Report</h1>
            <p class="subtitle">Project: {{.Report.ProjectKey}}{{if .Report.Branch}} | Branch: {{.Report.Branch}}{{end}} | Generated: {{.Report.GeneratedAt}} | Duration: {{.Report.DurationMs}}ms | Version: {{.Report.Version}}</p>
            <div class="status-badge {{statusClass .Status}}">{{.Status}}</div>
            {{if .GateName}}<p class="subtitle">Quality gate: {{.GateName}}{{if .Report.QualityGate.IsDefault}} (default){{end}}</p>{{end}}
        </div>

        <div class="card">
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.TotalConditions}}</div>
                    <div class="metric-label">Conditions</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.FailedConditions}}</div>
                    <div class="metric-label">Failed</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Summary.PassedConditions}}</div>
                    <div class="metric-label">Passed</div>
                </div>
            </div>

            {{if .Conditions}}
            <table class="table">
                <thead>
                    <tr>
                        <th>Status</th>
                        <th>Metric</th>
                        <th>Actual</th>
                        <th>Threshold</th>
                        <th>Explanation</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Conditions}}
                    <tr>
                        <td><span class="pill {{statusClass .Status}}">{{.Status}}</span></td>
                        <td title="{{.MetricKey}}">{{.DisplayName}}</td>
                        <td>{{.ActualValue}}</td>
                        <td>{{.Condition.Comparator}} {{.Condition.ErrorThreshold}}</td>
                        <td>{{.Explanation}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{else}}
            <p>{{if .ShowPassing}}No conditions evaluated.{{else}}All conditions passed.{{end}}</p>
            {{end}}
        </div>
    </div>
</body>
</html>
`
