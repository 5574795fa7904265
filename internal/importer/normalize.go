// Package importer turns spreadsheet rows into prisoner records, either by
// direct column mapping or through the language model, and commits them to
// the store in one batch.
package importer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"prison-records/internal/models"
	"prison-records/internal/sheet"
)

// RequiredFields must be filled in on every imported row.
var RequiredFields = []string{"convictNo", "name", "admissionDate"}

// ValidationError reports the first row of a file that lacks required data.
// Row is 1-based and counts the header line.
type ValidationError struct {
	Row     int
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Row %d is missing required data (convictNo, name, admissionDate are required): missing %s",
		e.Row, strings.Join(e.Missing, ", "))
}

// Normalizer maps header-keyed rows onto records.
type Normalizer struct {
	// Location is used for "today" and for dates written without a zone.
	Location *time.Location
	Now      func() time.Time
}

func (n *Normalizer) loc() *time.Location {
	if n == nil || n.Location == nil {
		return time.Local
	}
	return n.Location
}

func (n *Normalizer) today() string {
	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	return now().In(n.loc()).Format(dateLayout)
}

// lookup finds a field by its exact name first, then by a header spelled
// with different case or punctuation ("Convict No" for convictNo). When two
// headers reduce to the same key the one sorting first wins.
type lookup func(field string) any

func rowLookup(row map[string]any) lookup {
	var canon map[string]any
	return func(field string) any {
		if v, ok := row[field]; ok {
			return v
		}
		if canon == nil {
			canon = make(map[string]any, len(row))
			for _, k := range slices.Sorted(maps.Keys(row)) {
				key := canonical(k)
				if _, dup := canon[key]; !dup {
					canon[key] = row[k]
				}
			}
		}
		return canon[canonical(field)]
	}
}

func canonical(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func missingRequired(get lookup) []string {
	var missing []string
	for _, f := range RequiredFields {
		if !truthy(get(f)) {
			missing = append(missing, f)
		}
	}
	return missing
}

// build fills every record field from get, using date to read the three
// date columns. Required fields are not checked here.
func (n *Normalizer) build(get lookup, date func(any) string) models.Prisoner {
	p := models.Prisoner{
		ConvictNo:        toString(get("convictNo"), ""),
		AdmissionDate:    date(get("admissionDate")),
		SentenceDate:     date(get("sentenceDate")),
		Name:             toString(get("name"), ""),
		FatherName:       toString(get("fatherName"), ""),
		District:         toString(get("district"), ""),
		UnderSection:     toString(get("underSection"), ""),
		CrimeNo:          toString(get("crimeNo"), ""),
		PS:               toString(get("ps"), ""),
		SentencingCourt:  toString(get("sentencingCourt"), ""),
		Sentence:         toString(get("sentence"), ""),
		RunningIn:        toFineType(get("runningIn")),
		Amount:           toAmount(get("amount")),
		DefaultOfPayment: toString(get("defaultOfPayment"), ""),
		SpecialRemarks:   toString(get("specialRemarks"), ""),
		MedicalReport:    toString(get("medicalReport"), ""),
		HighCourtCaseNo:  toString(get("highCourtCaseNo"), ""),
		HighCourtStatus:  toString(get("highCourtStatus"), ""),
		CrimeType:        toString(get("crimeType"), "N/A"),
		Nationality:      toString(get("nationality"), models.NationalityPakistani),
		Status:           toStatus(get("status")),
		Category:         toCategory(get("category")),
		StatusUpdateDate: date(get("statusUpdateDate")),
	}
	if p.StatusUpdateDate == "" {
		p.StatusUpdateDate = n.today()
	}
	if p.Category != models.CategoryForeigner {
		p.Nationality = models.NationalityPakistani
	}
	return p
}

// NormalizeRow converts row number index (0-based, header excluded) into a
// record without id or sNo. Only the presence of the required cells is
// checked; an admissionDate that does not parse imports as "".
func (n *Normalizer) NormalizeRow(row sheet.Row, index int) (models.Prisoner, error) {
	get := rowLookup(row)
	if missing := missingRequired(get); len(missing) > 0 {
		return models.Prisoner{}, &ValidationError{Row: index + 2, Missing: missing}
	}
	loc := n.loc()
	return n.build(get, func(v any) string { return FormatDate(v, loc) }), nil
}

// NormalizeRows stops at the first invalid row.
func (n *Normalizer) NormalizeRows(rows []sheet.Row) ([]models.Prisoner, error) {
	out := make([]models.Prisoner, 0, len(rows))
	for i, row := range rows {
		p, err := n.NormalizeRow(row, i)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
