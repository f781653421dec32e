package advisory

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/report"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders a comparison report into the advisory prompt.
// Only aggregated sums leave the process; individual expense records are never included.
type PromptBuilder struct {
	prompt  *template.Template
	system  string
	maxRows int
}

// NewPromptBuilder parses the embedded templates.
func NewPromptBuilder(businessName string, maxRows int) (*PromptBuilder, error) {
	system, err := template.ParseFS(templateFS, "templates/system_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt template: %w", err)
	}
	var sys bytes.Buffer
	if err := system.Execute(&sys, struct{ BusinessName string }{businessName}); err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}

	// shareA and shareB are rebound per report in Build.
	funcMap := template.FuncMap{
		"money":  formatMoney,
		"signed": formatSigned,
		"shareA": func(int) string { return "" },
		"shareB": func(int) string { return "" },
	}
	prompt, err := template.New("advisory_prompt.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/advisory_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse advisory prompt template: %w", err)
	}

	return &PromptBuilder{prompt: prompt, system: sys.String(), maxRows: maxRows}, nil
}

// System returns the system prompt.
func (pb *PromptBuilder) System() string {
	return pb.system
}

type promptData struct {
	Report  report.ComparisonReport
	Rows    []report.CategoryDelta
	Omitted int
}

// Build renders the prompt for a report.
func (pb *PromptBuilder) Build(rep report.ComparisonReport) (string, error) {
	data := promptData{Report: rep, Rows: rep.CategoryDeltas}
	if pb.maxRows > 0 && len(data.Rows) > pb.maxRows {
		data.Omitted = len(data.Rows) - pb.maxRows
		data.Rows = data.Rows[:pb.maxRows]
	}

	tmpl, err := pb.prompt.Clone()
	if err != nil {
		return "", fmt.Errorf("failed to clone prompt template: %w", err)
	}
	tmpl.Funcs(template.FuncMap{
		"shareA": shareFunc(rep.PeriodA),
		"shareB": shareFunc(rep.PeriodB),
	})

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render advisory prompt: %w", err)
	}
	return buf.String(), nil
}

func shareFunc(s report.PeriodSummary) func(int) string {
	return func(id int) string {
		return fmt.Sprintf("%.1f%%", s.Share(id))
	}
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
