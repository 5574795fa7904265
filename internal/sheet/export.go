package sheet

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"prison-records/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	CSVFileName  = "prisoners_export.csv"
	XLSXFileName = "prisoners_export.xlsx"
	xlsxSheet    = "Prisoners"
)

// WriteCSV writes the header row of field names followed by one row per
// record. Every value is wrapped in double quotes with inner quotes doubled;
// rows are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, records []models.Prisoner) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(models.FieldNames, ","))
	for i := range records {
		bw.WriteByte('\n')
		for j, v := range records[i].Values() {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(v, `"`, `""`))
			bw.WriteByte('"')
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the same table as WriteCSV into a workbook. sNo and
// amount are stored as numbers.
func WriteXLSX(w io.Writer, records []models.Prisoner) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := make([]any, len(models.FieldNames))
	for i, name := range models.FieldNames {
		header[i] = name
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		row := make([]any, len(models.FieldNames))
		for j, name := range models.FieldNames {
			v, _ := records[i].Field(name)
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(models.FieldNames))
	f.SetColWidth(xlsxSheet, "A", last, 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
