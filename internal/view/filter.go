// Package view derives the rendered rows from the record collection: page
// scope and user filters, then sort, then pagination.
package view

import (
	"strings"

	"prison-records/internal/models"
)

// InScope reports whether p belongs on the given navigational page.
func InScope(page models.Page, p *models.Prisoner) bool {
	switch page {
	case models.PageGeneral:
		return p.Category == models.CategoryGeneralConvict && p.Status == models.StatusConfined
	case models.PageCivil:
		return p.Category == models.CategoryCivil && p.Status == models.StatusConfined
	case models.PageForeigner:
		return p.Category == models.CategoryForeigner && p.Status == models.StatusConfined
	case models.PageDetainees:
		return p.Category == models.CategoryDetainee
	case models.PageFineRelated:
		return p.RunningIn != models.FineTypeNA
	case models.PageReleased:
		return p.Status == models.StatusReleased || p.Status == models.StatusExpiredSentence
	}
	return true
}

// Matches reports whether p satisfies every active criterion.
func Matches(f models.Filters, p *models.Prisoner) bool {
	if f.Nationality != "" && p.Nationality != f.Nationality {
		return false
	}
	if active(f.Category) && string(p.Category) != f.Category {
		return false
	}
	if f.CrimeType != "" && p.CrimeType != f.CrimeType {
		return false
	}
	if f.UnderSection != "" && p.UnderSection != f.UnderSection {
		return false
	}
	if active(f.Status) && string(p.Status) != f.Status {
		return false
	}
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.ConvictNo), term) {
			return false
		}
	}
	return true
}

func active(v string) bool {
	return v != "" && v != models.FilterAll
}

// Filter keeps the records in scope for page that match f, in input order.
func Filter(records []models.Prisoner, page models.Page, f models.Filters) []models.Prisoner {
	out := make([]models.Prisoner, 0, len(records))
	for i := range records {
		if InScope(page, &records[i]) && Matches(f, &records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Options are the distinct values offered by the free-text filter selects.
type Options struct {
	Nationalities []string `json:"nationalities"`
	CrimeTypes    []string `json:"crimeTypes"`
	UnderSections []string `json:"underSections"`
}

// FilterOptions collects distinct values in first-seen order.
func FilterOptions(records []models.Prisoner) Options {
	return Options{
		Nationalities: distinct(records, func(p *models.Prisoner) string { return p.Nationality }),
		CrimeTypes:    distinct(records, func(p *models.Prisoner) string { return p.CrimeType }),
		UnderSections: distinct(records, func(p *models.Prisoner) string { return p.UnderSection }),
	}
}

func distinct(records []models.Prisoner, get func(*models.Prisoner) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		v := get(&records[i])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
