package visuals

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"mcs-risk/internal/archive"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"pct":   func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"days":  func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"money": func(f float64) string { return fmt.Sprintf("%.0f", f) },
}).ParseFS(templatesFS, "templates/*.html"))

type reportView struct {
	Record      archive.Record
	RunAt       string
	Criticality []CriticalityEntry
	Charts      []string
}

// WriteReport renders a self-contained HTML report of an archived run.
// Charts are rendered client-side by Mermaid; the tables stand on their own.
func WriteReport(w io.Writer, rec archive.Record) error {
	view := reportView{
		Record:      rec,
		RunAt:       rec.RunAt.Format("2006-01-02 15:04 MST"),
		Criticality: RankCriticality(rec.Result.Criticality),
	}
	for _, chart := range []string{
		GenerateDurationCDF(rec.Result.DurationCurve),
		GenerateCostCDF(rec.Result.CostCurve),
		GenerateCriticalityChart(rec.Result.Criticality),
	} {
		if chart != "" {
			view.Charts = append(view.Charts, stripFence(chart))
		}
	}

	if err := templates.ExecuteTemplate(w, "report.html", view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func stripFence(chart string) string {
	chart = strings.TrimPrefix(chart, "```mermaid\n")
	return strings.TrimSuffix(chart, "```")
}
