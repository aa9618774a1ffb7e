package xlsx

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

const SheetName = "Documents"

var headers = []string{
	"Document ID",
	"Filename",
	"Type",
	"Confidence",
	"Status",
	"Error",
	"Processed At",
	"Metadata",
}

// SummaryWorkbook renders one row per result and returns the XLSX bytes.
func SummaryWorkbook(results []domain.DocumentResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, r := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		metadata := r.Metadata
		if metadata == nil {
			metadata = domain.Metadata{}
		}
		metaJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}

		write(1, r.ID)
		write(2, r.Filename)
		write(3, r.Classification.Type)
		write(4, r.Classification.Confidence)
		write(5, string(r.Status))
		write(6, r.Error)
		if !r.ProcessedAt.IsZero() {
			write(7, r.ProcessedAt.UTC().Format(time.RFC3339))
		} else {
			write(7, "")
		}
		write(8, string(metaJSON))
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "B", 32)
	_ = f.SetColWidth(SheetName, "C", "E", 14)
	_ = f.SetColWidth(SheetName, "F", "F", 40)
	_ = f.SetColWidth(SheetName, "G", "G", 22)
	_ = f.SetColWidth(SheetName, "H", "H", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
