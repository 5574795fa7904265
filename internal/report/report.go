// Package report composes prompts from prisoner records and hands them to
// the text generator. Failures never surface as errors to the reader: each
// report kind has a fixed fallback text.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"prison-records/internal/logging"
	"prison-records/internal/models"
	"prison-records/internal/textgen"

	"go.uber.org/zap"
)

const (
	SummaryFailedText = "Error: Could not generate the report. Please check the API key and network connection."
	RangeFailedText   = "Error: Could not generate the detailed report."
)

const defaultFacility = "District Prison Malir"

// Composer builds report prompts. It holds no state between calls.
type Composer struct {
	Gen      textgen.Generator
	Model    string
	Facility string
	Logger   *zap.Logger
}

func (c *Composer) facility() string {
	if c.Facility == "" {
		return defaultFacility
	}
	return c.Facility
}

func (c *Composer) generate(ctx context.Context, prompt string) (string, error) {
	gen := c.Gen
	if gen == nil {
		gen = textgen.Unavailable
	}
	return gen.GenerateText(ctx, textgen.Request{Model: c.Model, Prompt: prompt})
}

// summaryRow is the reduced projection sent for the filtered report.
type summaryRow struct {
	Category      models.Category `json:"category"`
	Status        models.Status   `json:"status"`
	CrimeType     string          `json:"crimeType"`
	Nationality   string          `json:"nationality"`
	Sentence      string          `json:"sentence"`
	AdmissionDate string          `json:"admissionDate"`
}

// Summary reports on records, which are expected to be the currently
// filtered view. It returns SummaryFailedText when generation fails.
func (c *Composer) Summary(ctx context.Context, records []models.Prisoner, f models.Filters) string {
	rows := make([]summaryRow, len(records))
	for i := range records {
		p := &records[i]
		rows[i] = summaryRow{
			Category:      p.Category,
			Status:        p.Status,
			CrimeType:     p.CrimeType,
			Nationality:   p.Nationality,
			Sentence:      p.Sentence,
			AdmissionDate: p.AdmissionDate,
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following dataset of prisoners from %s.\n", c.facility())
	b.WriteString("The data is provided in JSON format.\n\n")
	b.WriteString("Dataset:\n")
	b.WriteString(toJSON(rows))
	b.WriteString("\n\nCurrent Filters Applied:\n")
	fmt.Fprintf(&b, "- Nationality: %s\n", orAll(f.Nationality))
	fmt.Fprintf(&b, "- Category: %s\n", orAll(f.Category))
	fmt.Fprintf(&b, "- Crime Type: %s\n", orAll(f.CrimeType))
	fmt.Fprintf(&b, "- Status: %s\n", orAll(f.Status))
	fmt.Fprintf(&b, "- Under Section: %s\n\n", orAll(f.UnderSection))
	b.WriteString("Based on the provided data and filters, generate a concise and insightful report. The report should summarize key statistics and trends.\n")
	b.WriteString("Structure the report with the following sections in Markdown format:\n")
	b.WriteString("1.  **Overall Summary:** A brief overview of the filtered prisoner population.\n")
	b.WriteString("2.  **Key Statistics:** Use bullet points for key numbers (e.g., total prisoners, breakdown by status, most common crime type).\n")
	b.WriteString("3.  **Trends & Insights:** Identify any notable patterns or insights (e.g., a high number of prisoners for a specific crime, trends in admission dates).\n\n")
	b.WriteString("The tone should be formal and analytical. Do not just list the data; provide interpretation. If the dataset is empty, state that no data matches the filters.\n")

	text, err := c.generate(ctx, b.String())
	if err != nil {
		logging.OrNop(c.Logger).Error("generate summary report", zap.Int("records", len(records)), zap.Error(err))
		return SummaryFailedText
	}
	return text
}

func orAll(s string) string {
	if s == "" {
		return models.FilterAll
	}
	return s
}

// toJSON renders v indented by two spaces, leaving &, < and > unescaped.
func toJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
