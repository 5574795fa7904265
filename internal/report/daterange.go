package report

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"prison-records/internal/logging"
	"prison-records/internal/models"

	"go.uber.org/zap"
)

// Section names accepted by DateRange.
const (
	SectionAdmissions             = "admissions"
	SectionReleases               = "releases"
	SectionSentenceCompletion     = "sentenceCompletion"
	SectionFineRelated            = "fineRelated"
	SectionBreakdownByCategory    = "breakdownByCategory"
	SectionBreakdownByCrimeType   = "breakdownByCrimeType"
	SectionBreakdownByDistrict    = "breakdownByDistrict"
	SectionBreakdownByNationality = "breakdownByNationality"
	SectionBreakdownByPS          = "breakdownByPS"
	SectionBreakdownByCourt       = "breakdownByCourt"
	SectionBreakdownBySection     = "breakdownBySection"
)

var (
	ErrMissingDates  = errors.New("please select both a start and end date")
	ErrStartAfterEnd = errors.New("start date cannot be after the end date")
	ErrNoSections    = errors.New("please select at least one report section to include")
)

type breakdown struct {
	field string
	title string
}

var breakdowns = map[string]breakdown{
	SectionBreakdownByCategory:    {"category", "Admissions by Category"},
	SectionBreakdownByCrimeType:   {"crimeType", "Admissions by Crime Type"},
	SectionBreakdownByDistrict:    {"district", "Admissions by District"},
	SectionBreakdownByNationality: {"nationality", "Admissions by Nationality"},
	SectionBreakdownByPS:          {"ps", "Admissions by Police Station"},
	SectionBreakdownByCourt:       {"sentencingCourt", "Admissions by Sentencing Court"},
	SectionBreakdownBySection:     {"underSection", "Admissions by Under Section"},
}

// Sections lists every section in the order the report form offers them.
var Sections = []string{
	SectionAdmissions, SectionReleases, SectionSentenceCompletion, SectionFineRelated,
	SectionBreakdownByCategory, SectionBreakdownByCrimeType, SectionBreakdownByDistrict,
	SectionBreakdownByNationality, SectionBreakdownByPS, SectionBreakdownByCourt, SectionBreakdownBySection,
}

// ValidateRange checks the inputs of DateRange. Dates are YYYY-MM-DD and
// compare as strings.
func ValidateRange(start, end string, sections []string) error {
	if start == "" || end == "" {
		return ErrMissingDates
	}
	if start > end {
		return ErrStartAfterEnd
	}
	if len(sections) == 0 {
		return ErrNoSections
	}
	return nil
}

type admissionRow struct {
	Name          string `json:"name"`
	ConvictNo     string `json:"convictNo"`
	AdmissionDate string `json:"admissionDate"`
	Sentence      string `json:"sentence"`
}

type releaseRow struct {
	Name        string        `json:"name"`
	ConvictNo   string        `json:"convictNo"`
	Status      models.Status `json:"status"`
	ReleaseDate string        `json:"releaseDate"`
}

type confinedRow struct {
	Name         string `json:"name"`
	ConvictNo    string `json:"convictNo"`
	Sentence     string `json:"sentence"`
	SentenceDate string `json:"sentenceDate"`
}

type fineRow struct {
	Name      string          `json:"name"`
	ConvictNo string          `json:"convictNo"`
	RunningIn models.FineType `json:"runningIn"`
	Amount    float64         `json:"amount"`
}

func inRange(date, start, end string) bool {
	return date >= start && date <= end
}

// Admissions are records admitted within [start, end].
func Admissions(all []models.Prisoner, start, end string) []models.Prisoner {
	out := []models.Prisoner{}
	for _, p := range all {
		if inRange(p.AdmissionDate, start, end) {
			out = append(out, p)
		}
	}
	return out
}

// Releases are records released or with an expired sentence whose status
// changed within [start, end].
func Releases(all []models.Prisoner, start, end string) []models.Prisoner {
	out := []models.Prisoner{}
	for _, p := range all {
		if (p.Status == models.StatusReleased || p.Status == models.StatusExpiredSentence) &&
			inRange(p.StatusUpdateDate, start, end) {
			out = append(out, p)
		}
	}
	return out
}

// FineConfinements are confined records held for an unpaid penalty.
func FineConfinements(all []models.Prisoner) []models.Prisoner {
	out := []models.Prisoner{}
	for _, p := range all {
		if p.Status == models.StatusConfined && p.RunningIn != models.FineTypeNA && p.Amount > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Frequency counts the values of field over records; empty values count as "N/A".
func Frequency(records []models.Prisoner, field string) map[string]int {
	out := map[string]int{}
	for i := range records {
		v, _ := records[i].Field(field)
		s := fmt.Sprint(v)
		if s == "" {
			s = "N/A"
		}
		out[s]++
	}
	return out
}

// DateRange reports on all records for the period and the requested
// sections. Unknown section names are ignored. Invalid inputs return an
// error; a failed generation returns RangeFailedText.
func (c *Composer) DateRange(ctx context.Context, all []models.Prisoner, start, end string, sections []string) (string, error) {
	if err := ValidateRange(start, end, sections); err != nil {
		return "", err
	}
	prompt := c.rangePrompt(all, start, end, sections)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		logging.OrNop(c.Logger).Error("generate date range report",
			zap.String("start", start), zap.String("end", end),
			zap.Strings("sections", sections), zap.Error(err))
		return RangeFailedText, nil
	}
	return text, nil
}

func (c *Composer) rangePrompt(all []models.Prisoner, start, end string, sections []string) string {
	has := func(s string) bool { return slices.Contains(sections, s) }
	facility := c.facility()

	var data, instr strings.Builder
	fmt.Fprintf(&instr, "Generate a detailed report for %s for the period from %s to %s.\n\n", facility, start, end)
	instr.WriteString("Based on the data provided, generate a report with the following structure in Markdown format. Only include the sections that have been requested.\n\n")
	fmt.Fprintf(&instr, "# Report for %s\n**Period:** %s to %s.\n\n", facility, start, end)

	needAdmissions := has(SectionAdmissions) || slices.ContainsFunc(sections, func(s string) bool {
		return strings.HasPrefix(s, "breakdownBy")
	})
	var admissions []models.Prisoner
	if needAdmissions {
		admissions = Admissions(all, start, end)
	}

	if has(SectionAdmissions) {
		rows := make([]admissionRow, len(admissions))
		for i, p := range admissions {
			rows[i] = admissionRow{p.Name, p.ConvictNo, p.AdmissionDate, p.Sentence}
		}
		fmt.Fprintf(&data, "Data for New Admissions in this period:\n%s\n\n", toJSON(rows))
		instr.WriteString("## Admissions Summary\n")
		fmt.Fprintf(&instr, "*   Total New Admissions: %d\n", len(admissions))
		instr.WriteString("*   **Sentence Breakdown for New Admissions:** Analyze the provided sentences and categorize them (e.g., \"Short-term (under 5 years)\", \"Medium-term (5-15 years)\", \"Long-term (over 15 years)\", \"Life Imprisonment\", \"Under Investigation/Other\"). Provide a count for each category you define.\n\n")
	}

	var released []models.Prisoner
	if has(SectionReleases) || has(SectionSentenceCompletion) {
		released = Releases(all, start, end)
	}
	releaseData := func() {
		rows := make([]releaseRow, len(released))
		for i, p := range released {
			rows[i] = releaseRow{p.Name, p.ConvictNo, p.Status, p.StatusUpdateDate}
		}
		fmt.Fprintf(&data, "Data for Released Prisoners in this period:\n%s\n\n", toJSON(rows))
	}

	if has(SectionReleases) {
		releaseData()
		instr.WriteString("## Releases Summary\n")
		fmt.Fprintf(&instr, "*   Total Released Prisoners: %d\n", len(released))
		instr.WriteString("*   List the names and convict numbers of the prisoners released during this period.\n\n")
	}

	if has(SectionSentenceCompletion) {
		confined := []confinedRow{}
		for _, p := range all {
			if p.Status == models.StatusConfined {
				confined = append(confined, confinedRow{p.Name, p.ConvictNo, p.Sentence, p.SentenceDate})
			}
		}
		if !has(SectionReleases) {
			releaseData()
		}
		fmt.Fprintf(&data, "Data for All Currently Confined Prisoners (for sentence analysis):\n%s\n\n", toJSON(confined))
		instr.WriteString("## Sentence Completion Analysis\n")
		fmt.Fprintf(&instr, "*   **Nearing Completion:** Based on the 'All Currently Confined Prisoners' data (using their sentence and sentenceDate), identify any prisoners whose sentences are likely to end in the near future (e.g., within the next 6 months from %s). List their name, convict number, sentence, and sentence date. If none, state that.\n", end)
		instr.WriteString("*   **Completed During Period:** From the 'Released Prisoners' data, list those whose status is 'Expired Sentence'. If none, state that.\n\n")
	}

	if has(SectionFineRelated) {
		fines := FineConfinements(all)
		rows := make([]fineRow, len(fines))
		for i, p := range fines {
			rows[i] = fineRow{p.Name, p.ConvictNo, p.RunningIn, p.Amount}
		}
		fmt.Fprintf(&data, "Data for Prisoners Confined due to Non-Payment of Fines/Diyat/etc.:\n%s\n\n", toJSON(rows))
		instr.WriteString("## Fine & Diyat Related Confinements\n")
		fmt.Fprintf(&instr, "*   Total prisoners currently confined due to non-payment: %d\n", len(fines))
		instr.WriteString("*   List the names, convict numbers, the type of penalty (e.g., Fine, Diyat), and the amount for each prisoner confined for this reason. If none, state that.\n\n")
	}

	// breakdowns follow the order they were requested in
	for _, s := range sections {
		bd, ok := breakdowns[s]
		if !ok {
			continue
		}
		freq := Frequency(admissions, bd.field)
		fmt.Fprintf(&instr, "## %s\n", bd.title)
		if len(freq) == 0 {
			instr.WriteString("*   No new admissions data to analyze for this breakdown.\n\n")
			continue
		}
		fmt.Fprintf(&data, "Data for %s:\n%s\n\n", bd.title, toJSON(freq))
		fmt.Fprintf(&instr, "*   Analyze the provided frequency map for '%s'. List the top entries with their counts and provide a brief summary of the distribution.\n\n", bd.title)
	}

	instr.WriteString("Provide a concise, formal summary for each requested section. If a section has no data, state it clearly.")
	return data.String() + "\n" + instr.String()
}
