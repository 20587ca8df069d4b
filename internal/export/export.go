// Package export writes distilled records to an Excel workbook: one summary
// sheet with a row per record and one minute grid sheet per record.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/models"
)

const maxSheetName = 31

var summaryHeader = []any{"Record", "Annotator", "Minutes", "Apnea minutes", "Unknown minutes", "Bucket"}

// Workbook builds the workbook for results. The caller closes the file.
func Workbook(results []models.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), constants.SummarySheetName); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummary(f, results, bold); err != nil {
		f.Close()
		return nil, err
	}

	used := map[string]bool{strings.ToLower(constants.SummarySheetName): true}
	for _, r := range results {
		if !r.Found {
			continue
		}
		name := uniqueSheetName(r.Record, used)
		if err := writeGrid(f, name, r, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write grid for %s: %w", r.Record, err)
		}
	}
	return f, nil
}

// WriteFile builds the workbook and saves it to path
func WriteFile(path string, results []models.Result) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, results []models.Result, headerStyle int) error {
	sheet := constants.SummarySheetName
	if err := f.SetSheetRow(sheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Record, r.Annotator}
		if r.Found {
			row = append(row, len(r.Slots), r.ApneaMinutes, unknownMinutes(r), r.Bucket.String())
		} else {
			row = append(row, nil, nil, nil, strings.TrimSpace(constants.NoAnnotationsMarker))
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "F", 16)
}

func writeGrid(f *excelize.File, sheet string, r models.Result, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"Hour"}
	for m := 0; m < constants.MinutesPerHour; m++ {
		header = append(header, m)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for h, slots := range r.Hours() {
		row := []any{h}
		for _, k := range slots {
			row = append(row, string(k.Symbol()))
		}
		cell, err := excelize.CoordinatesToCellName(1, h+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(constants.MinutesPerHour + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", last, 3)
}

func unknownMinutes(r models.Result) int {
	n := 0
	for _, k := range r.Slots {
		if k == models.SlotUnknown {
			n++
		}
	}
	return n
}

// uniqueSheetName turns a record id into a valid, unused sheet name
func uniqueSheetName(record string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, record)
	if base == "" {
		base = "record"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		name = base[:min(len(base), maxSheetName-len(suffix))] + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
