// Package summary renders the outcome of a click-through as a browsable HTML page.
package summary

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/splitlease/parity/internal/e2e"
)

// Builder creates run summaries from e2e results
type Builder struct {
	template *template.Template
	now      func() time.Time
}

// New creates a new summary builder
func New() (*Builder, error) {
	tmpl, err := template.New("summary").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		template: tmpl,
		now:      time.Now,
	}, nil
}

// Summary is a rendered run summary
type Summary struct {
	Title     string
	HTMLBody  string
	PlainBody string
	CreatedAt time.Time
}

// SummaryData is the template data structure
type SummaryData struct {
	Title       string
	Date        string
	Passed      bool
	Error       string
	Steps       []string
	Warnings    []string
	Screenshots []ScreenshotData
	Checks      []CheckData
	Styles      map[string]string
}

// ScreenshotData is a screenshot linked from the summary
type ScreenshotData struct {
	Name string
	Path string
}

// CheckData is one live structure check
type CheckData struct {
	Label  string
	Passed bool
}

// Build renders res. Screenshot links are made relative to dir, where the summary is written.
func (b *Builder) Build(res *e2e.Result, dir string) (*Summary, error) {
	if res == nil {
		return nil, fmt.Errorf("no result to summarize")
	}

	now := b.now()
	data := SummaryData{
		Title:    fmt.Sprintf("%s - %s", res.TestName, status(res.Passed())),
		Date:     now.Format("Monday, January 2 15:04"),
		Passed:   res.Passed(),
		Steps:    res.StepsCompleted,
		Warnings: res.Warnings,
		Styles:   res.Styles,
	}
	if res.Error != nil {
		data.Error = *res.Error
	}

	for _, p := range res.Screenshots {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		data.Screenshots = append(data.Screenshots, ScreenshotData{
			Name: filepath.Base(p),
			Path: filepath.ToSlash(rel),
		})
	}

	if res.Structure != nil {
		for _, c := range res.Structure.Results() {
			data.Checks = append(data.Checks, CheckData{Label: c.Label, Passed: c.Passed})
		}
	}

	// Render HTML
	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Summary{
		Title:     data.Title,
		HTMLBody:  htmlBuf.String(),
		PlainBody: buildPlainText(data),
		CreatedAt: now,
	}, nil
}

func status(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}

func buildPlainText(data SummaryData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n\n", data.Title, data.Date)

	if data.Error != "" {
		fmt.Fprintf(&buf, "Error: %s\n\n", data.Error)
	}
	for i, s := range data.Steps {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, s)
	}
	if len(data.Warnings) > 0 {
		buf.WriteString("\nWarnings:\n")
		for _, w := range data.Warnings {
			fmt.Fprintf(&buf, "  - %s\n", w)
		}
	}
	if len(data.Screenshots) > 0 {
		buf.WriteString("\nScreenshots:\n")
		for _, s := range data.Screenshots {
			fmt.Fprintf(&buf, "  %s\n", s.Path)
		}
	}

	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #31135d; margin-bottom: 5px; }
        h2 { color: #6135cd; font-size: 18px; margin-top: 24px; }
        .date { color: #666; margin-bottom: 20px; }
        .status { display: inline-block; padding: 4px 12px; border-radius: 12px; color: white; font-weight: bold; }
        .passed { background: #2e7d32; }
        .failed { background: #c62828; }
        .error { color: #c62828; margin: 10px 0; }
        .warning { color: #8d6e00; }
        .check-pass { color: #2e7d32; }
        .check-fail { color: #c62828; }
        .shot { margin: 12px 0; }
        .shot img { max-width: 100%; border: 1px solid #c4c6d0; }
        table { border-collapse: collapse; }
        td { padding: 2px 12px 2px 0; font-size: 13px; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}}</div>
        {{if .Passed}}<span class="status passed">passed</span>{{else}}<span class="status failed">failed</span>{{end}}
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}

        <h2>Steps</h2>
        <ol>
            {{range .Steps}}<li>{{.}}</li>{{end}}
        </ol>

        {{if .Warnings}}
        <h2>Warnings</h2>
        <ul>
            {{range .Warnings}}<li class="warning">{{.}}</li>{{end}}
        </ul>
        {{end}}

        {{if .Checks}}
        <h2>Filter structure</h2>
        <ul>
            {{range .Checks}}<li class="{{if .Passed}}check-pass{{else}}check-fail{{end}}">{{if .Passed}}[PASS]{{else}}[FAIL]{{end}} {{.Label}}</li>{{end}}
        </ul>
        {{end}}

        {{if .Styles}}
        <h2>Computed styles</h2>
        <table>
            {{range $k, $v := .Styles}}<tr><td>{{$k}}</td><td>{{$v}}</td></tr>{{end}}
        </table>
        {{end}}

        <h2>Screenshots</h2>
        {{range .Screenshots}}
        <div class="shot">
            <div>{{.Name}}</div>
            <a href="{{.Path}}"><img src="{{.Path}}" alt="{{.Name}}"></a>
        </div>
        {{end}}

        <div class="footer">
            {{len .Steps}} steps · {{len .Screenshots}} screenshots · Generated by parity
        </div>
    </div>
</body>
</html>`
