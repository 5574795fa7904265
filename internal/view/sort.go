package view

import (
	"sort"
	"strings"

	"prison-records/internal/models"
)

// Sort orders a copy of records by cfg. A nil cfg returns records unchanged.
// Equal keys keep their relative input order.
func Sort(records []models.Prisoner, cfg *models.SortConfig) []models.Prisoner {
	if cfg == nil {
		return records
	}
	out := make([]models.Prisoner, len(records))
	copy(out, records)

	desc := cfg.Direction == models.Descending
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(&out[i], &out[j], cfg.Key)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compare orders numbers numerically and strings lexicographically.
func compare(a, b *models.Prisoner, key string) int {
	av, ok := a.Field(key)
	if !ok {
		return 0
	}
	bv, _ := b.Field(key)
	switch x := av.(type) {
	case float64:
		y := bv.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, bv.(string))
	}
	return 0
}

// ToggleSort returns the next sort config after the user picks key: the same
// key while ascending flips to descending, anything else starts ascending.
func ToggleSort(cur *models.SortConfig, key string) *models.SortConfig {
	dir := models.Ascending
	if cur != nil && cur.Key == key && cur.Direction == models.Ascending {
		dir = models.Descending
	}
	return &models.SortConfig{Key: key, Direction: dir}
}

// Sortable reports whether key names a Prisoner field.
func Sortable(key string) bool {
	var p models.Prisoner
	_, ok := p.Field(key)
	return ok
}
