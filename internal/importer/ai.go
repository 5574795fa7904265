package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"prison-records/internal/logging"
	"prison-records/internal/models"
	"prison-records/internal/sheet"
	"prison-records/internal/textgen"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultAIRows caps how many rows are sent to the model in one request.
const DefaultAIRows = 100

// AINormalizer delegates column mapping and cleanup to the language model,
// then re-checks and completes every entry it returns.
type AINormalizer struct {
	Gen        textgen.Generator
	Model      string
	MaxRows    int
	Facility   string
	Normalizer *Normalizer
	Logger     *zap.Logger
}

// NormalizeRowsWithAI returns the usable records and how many returned
// entries were dropped for missing required data. A failed call or a reply
// that is not a JSON array of objects aborts with a *textgen.CapabilityError.
func (a *AINormalizer) NormalizeRowsWithAI(ctx context.Context, rows []sheet.Row) ([]models.Prisoner, int, error) {
	if len(rows) == 0 {
		return nil, 0, nil
	}
	log := logging.OrNop(a.Logger)

	prompt, err := a.prompt(rows)
	if err != nil {
		return nil, 0, err
	}

	text, err := a.Gen.GenerateText(ctx, textgen.Request{
		Model:  a.Model,
		Prompt: prompt,
		Schema: ImportSchema(),
	})
	if err != nil {
		log.Error("ai import request failed", zap.Error(err))
		return nil, 0, asCapability("process import data", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &entries); err != nil {
		log.Error("ai import response is not a JSON array", zap.Error(err))
		return nil, 0, &textgen.CapabilityError{Op: "parse import response", Err: err}
	}

	out := make([]models.Prisoner, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		get := rowLookup(entry)
		if len(missingRequired(get)) > 0 {
			dropped++
			continue
		}
		out = append(out, a.Normalizer.build(get, func(v any) string { return toString(v, "") }))
	}
	log.Info("ai import normalized",
		zap.Int("rows_sent", min(len(rows), a.maxRows())),
		zap.Int("entries", len(entries)),
		zap.Int("dropped", dropped))
	return out, dropped, nil
}

func asCapability(op string, err error) error {
	var ce *textgen.CapabilityError
	if errors.As(err, &ce) {
		return err
	}
	return &textgen.CapabilityError{Op: op, Err: err}
}

func (a *AINormalizer) maxRows() int {
	if a.MaxRows <= 0 {
		return DefaultAIRows
	}
	return a.MaxRows
}

func (a *AINormalizer) prompt(rows []sheet.Row) (string, error) {
	if len(rows) > a.maxRows() {
		rows = rows[:a.maxRows()]
	}
	raw, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	facility := a.Facility
	if facility == "" {
		facility = "District Prison Malir"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an intelligent data processing assistant for the %s Management System.\n", facility)
	b.WriteString("Your task is to analyze the raw JSON data extracted from an uploaded spreadsheet, and then clean, standardize, and map it to the required prisoner data structure.\n\n")
	b.WriteString("**Instructions:**\n")
	b.WriteString("1.  **Map Columns:** The source data may have different column names. Intelligently map them to the target schema. For example, \"Convict ID\" or \"Number\" should map to \"convictNo\". \"Inmate Name\" should map to \"name\". \"F/Name\" to \"fatherName\".\n")
	b.WriteString("2.  **Standardize Data:**\n")
	b.WriteString("    *   **Dates:** All dates (admissionDate, sentenceDate, statusUpdateDate) MUST be in 'YYYY-MM-DD' format. The source data might have different formats (e.g., 'DD/MM/YYYY', 'MM-DD-YY', Excel date numbers). Correctly interpret and convert them.\n")
	fmt.Fprintf(&b, "    *   **Status:** The 'status' field must be one of these exact values: %s. Map common terms (e.g., \"In Jail\" -> \"Confined\", \"Bailed Out\" -> \"On Bail\", \"Freed\" -> \"Released\"). Default to \"Confined\" if unclear.\n", quoted(statusValues()))
	fmt.Fprintf(&b, "    *   **Category:** The 'category' field must be one of: %s. Default to \"General Convict\" if unclear.\n", quoted(categoryValues()))
	fmt.Fprintf(&b, "    *   **FineType (runningIn):** The 'runningIn' field must be one of: %s. Default to \"N/A\" if not specified.\n", quoted(fineTypeValues()))
	b.WriteString("    *   **Numbers:** Ensure 'amount' is a valid number. If it's not a number or missing, default to 0.\n")
	b.WriteString("3.  **Handle Missing Data:** If a row is missing essential data for 'convictNo', 'name', or 'admissionDate', SKIP that entire row and do not include it in the output. For other non-required fields, use empty strings \"\" if data is not available.\n")
	b.WriteString("4.  **Output:** Return ONLY a valid JSON array containing the processed prisoner objects, strictly adhering to the provided schema. Do not include any explanations, introductory text, or markdown formatting.\n\n")
	fmt.Fprintf(&b, "**Raw Data from Spreadsheet (first %d rows):**\n", a.maxRows())
	b.Write(raw)
	b.WriteString("\n")
	return b.String(), nil
}

func quoted(vals []string) string {
	return "'" + strings.Join(vals, "', '") + "'"
}

func statusValues() []string {
	out := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = string(s)
	}
	return out
}

func categoryValues() []string {
	out := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out
}

func fineTypeValues() []string {
	out := make([]string, len(models.FineTypes))
	for i, f := range models.FineTypes {
		out[i] = string(f)
	}
	return out
}

// ImportSchema is the structured-output schema: an array of record partials.
func ImportSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"convictNo":        str("Convict number/ID. This is a required field."),
				"admissionDate":    str("Date of admission in YYYY-MM-DD format. This is a required field."),
				"sentenceDate":     str("Date of sentencing in YYYY-MM-DD format. Can be empty string."),
				"name":             str("Prisoner's full name. This is a required field."),
				"fatherName":       str("Prisoner's father's name. Can be empty string."),
				"district":         str(""),
				"underSection":     str("Legal section under which convicted"),
				"crimeNo":          str(""),
				"ps":               str("Police Station"),
				"sentencingCourt":  str(""),
				"sentence":         str("Length and type of sentence"),
				"runningIn":        str("Type of fine. Must be one of: " + strings.Join(fineTypeValues(), ", ")),
				"amount":           {Type: genai.TypeNumber, Description: "Fine amount. Must be a number."},
				"defaultOfPayment": str("Consequence for not paying the fine"),
				"specialRemarks":   str(""),
				"medicalReport":    str(""),
				"highCourtCaseNo":  str(""),
				"highCourtStatus":  str(""),
				"crimeType":        str(""),
				"nationality":      str(""),
				"status":           str("Current status. Must be one of: " + strings.Join(statusValues(), ", ") + ". This is a required field."),
				"category":         str("Prisoner category. Must be one of: " + strings.Join(categoryValues(), ", ") + ". This is a required field."),
				"statusUpdateDate": str("Date of last status update in YYYY-MM-DD format. Can be empty string."),
			},
		},
	}
}
