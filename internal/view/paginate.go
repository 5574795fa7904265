package view

import "prison-records/internal/models"

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 10

// TotalPages is ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns page index of records. Out-of-range indexes yield an
// empty page rather than an error.
func Paginate(records []models.Prisoner, index, size int) ([]models.Prisoner, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(records), size)
	if index < 0 || index >= total {
		return []models.Prisoner{}, total
	}
	start := index * size
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total
}
