// Package report summarizes one harvest cycle for human and machine
// consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"
)

// Summary aggregates the outcome of one harvest cycle.
type Summary struct {
	PackagesProcessed  int
	DocURLsDiscovered  int
	PagesCrawled       int
	PageVersionsStored int
	ProcessedDocs      int
	QualityRejections  int
	DedupRemovals      int
	StatusCodes        map[int]int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewSummary returns a zero-valued Summary with its maps initialized.
func NewSummary() Summary {
	return Summary{StatusCodes: make(map[int]int)}
}

// Finish stamps EndTime and derives Duration from start.
func (s *Summary) Finish(start, end time.Time) {
	s.StartTime = start
	s.EndTime = end
	s.Duration = end.Sub(start)
}

// WriteJSON writes the summary to w in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: write json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to w.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Harvest Cycle Summary
---------------------
Time:               {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:            {{.Duration}}
Packages processed:  {{.PackagesProcessed}}
Doc URLs discovered:  {{.DocURLsDiscovered}}
Pages crawled:       {{.PagesCrawled}}
Page versions stored: {{.PageVersionsStored}}
Processed docs:      {{.ProcessedDocs}}
Quality rejections:  {{.QualityRejections}}
Dedup removals:      {{.DedupRemovals}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text template: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to w.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Harvest Cycle Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Harvest Cycle Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Packages Processed</div>
    <div class="stat-val">{{.PackagesProcessed}}</div>
  </div>
  <div class="stat-card">
    <div>Pages Crawled</div>
    <div class="stat-val">{{.PagesCrawled}}</div>
  </div>
  <div class="stat-card">
    <div>Page Versions Stored</div>
    <div class="stat-val">{{.PageVersionsStored}}</div>
  </div>
  <div class="stat-card">
    <div>Processed Docs</div>
    <div class="stat-val">{{.ProcessedDocs}}</div>
  </div>
  <div class="stat-card">
    <div>Quality Rejections</div>
    <div class="stat-val">{{.QualityRejections}}</div>
  </div>
  <div class="stat-card">
    <div>Dedup Removals</div>
    <div class="stat-val">{{.DedupRemovals}}</div>
  </div>

  <h3>Status Codes</h3>
  <table>
    <tr><th>Code</th><th>Count</th></tr>
    {{- range $code, $count := .StatusCodes}}
    <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html template: %w", err)
	}
	return nil
}
