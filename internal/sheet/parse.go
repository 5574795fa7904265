// Package sheet reads uploaded spreadsheets into header-keyed rows and
// writes the prisoner export files.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a header name to a raw cell value. Parsed files yield string or
// float64 values; rows built elsewhere may also carry time.Time. Blank cells
// are absent.
type Row map[string]any

// ErrNoSheet is returned for a workbook without worksheets.
var ErrNoSheet = errors.New("sheet: workbook has no worksheets")

// Parse reads the first worksheet of an .xlsx file, or a .csv file, chosen
// by the file name extension. The first row is the header.
func Parse(name string, data []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ParseCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return ParseXLSX(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("sheet: unsupported file type %q", filepath.Ext(name))
}

// ParseXLSX reads raw cell values so that date cells keep their serial number.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsFromGrid(grid), nil
}

func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\ufeff")
	}
	return rowsFromGrid(grid), nil
}

func rowsFromGrid(grid [][]string) []Row {
	if len(grid) == 0 {
		return []Row{}
	}
	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := Row{}
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			row[header[i]] = Typed(cell)
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Typed turns a cell that is exactly a number into float64. Text such as
// "007", "1,500" or "NaN" stays a string.
func Typed(cell string) any {
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return cell
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != cell {
		return cell
	}
	return f
}
