package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
)

const xlsxSheet = "Leveringen"

// WriteXLSX renders the rows as an XLSX workbook with the same columns as
// the CSV export plus the source file, page and warnings, so a reviewer can
// trace a row back to its scan.
func WriteXLSX(w io.Writer, rows []domain.DeliveryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := append(append([]string{}, columns...), "Bestand", "Pagina", "Waarschuwingen")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i := range rows {
		row := &rows[i]
		record := rowToRecord(row)
		values := make([]any, 0, len(record)+3)
		for _, v := range record {
			values = append(values, v)
		}
		values = append(values, row.FileName, row.PageIndex, strings.Join(row.Warnings, "; "))

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", i+1, err)
			}
		}
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 14)
	_ = f.SetColWidth(xlsxSheet, "B", "C", 10)
	_ = f.SetColWidth(xlsxSheet, "D", "F", 16)
	_ = f.SetColWidth(xlsxSheet, "G", "G", 10)
	_ = f.SetColWidth(xlsxSheet, "H", "H", 28)
	_ = f.SetColWidth(xlsxSheet, "J", "J", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
