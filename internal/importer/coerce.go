package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"prison-records/internal/models"
)

// excelEpochDays is the spreadsheet serial of 1970-01-01 (serial day 0 is
// 1899-12-30).
const excelEpochDays = 25569

const dateLayout = "2006-01-02"

// Layouts tried, in order, for textual dates. Month-first slash dates follow
// the usual spreadsheet export convention.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
}

// zonedLayouts carry an explicit offset; the result is the UTC calendar date.
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
}

// FormatDate turns a native time, a spreadsheet serial or a date string into
// YYYY-MM-DD. Anything it cannot read becomes "".
func FormatDate(v any, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		// the value's own wall clock, so a midnight stamp never slides a day
		return x.Format(dateLayout)
	case float64:
		return serialDate(x)
	case float32:
		return serialDate(float64(x))
	case int:
		return serialDate(float64(x))
	case int64:
		return serialDate(float64(x))
	case string:
		return parseDateString(x, loc)
	}
	return ""
}

// SerialToDate converts a spreadsheet serial day number to a UTC time.
func SerialToDate(serial float64) time.Time {
	secs := math.Round((serial - excelEpochDays) * 86400)
	return time.Unix(int64(secs), 0).UTC()
}

func serialDate(serial float64) string {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 {
		return ""
	}
	return SerialToDate(serial).Format(dateLayout)
}

func parseDateString(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(dateLayout)
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(dateLayout)
		}
	}
	return ""
}

// truthy mirrors "is this cell filled in": nil, "", 0, NaN, false and the
// zero time are all empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case int64:
		return x != 0
	case bool:
		return x
	case time.Time:
		return !x.IsZero()
	}
	return true
}

// toString coerces v to text, returning def for empty values.
func toString(v any, def string) string {
	if !truthy(v) {
		return def
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(dateLayout)
	}
	return fmt.Sprint(v)
}

// toAmount reads a non-negative number; anything else is 0.
func toAmount(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func toStatus(v any) models.Status {
	if s, ok := v.(string); ok {
		if st, ok := models.ParseStatus(s); ok {
			return st
		}
	}
	return models.StatusConfined
}

func toCategory(v any) models.Category {
	if s, ok := v.(string); ok {
		if c, ok := models.ParseCategory(s); ok {
			return c
		}
	}
	return models.CategoryGeneralConvict
}

func toFineType(v any) models.FineType {
	if s, ok := v.(string); ok {
		if f, ok := models.ParseFineType(s); ok {
			return f
		}
	}
	return models.FineTypeNA
}
