// Package charts renders per-device series into an xlsx workbook, one sheet and line chart per device.
package charts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Mause/tuya-graphing/series"
)

const (
	MAX_SHEET_NAME = 31
	TIME_HEADER    = "Time"
	TIME_FORMAT    = "2006-01-02 15:04:05"
	defaultSheet   = "Sheet1"
)

var ErrNoSheets = errors.New("workbook has no device sheets")

var invalidSheetChars = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "", "'", "")

type Workbook struct {
	file   *excelize.File
	sheets []string
	// Lower-cased, since sheet names are case insensitive.
	taken map[string]struct{}
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile(), taken: map[string]struct{}{}}
}

// Names of the device sheets, in insertion order.
func (w *Workbook) Sheets() []string {
	return w.sheets
}

// Add a sheet for a device holding a Time column and one column per code in codes that has a series,
// followed by a line chart of those columns. Returns the sheet name, or "" when set is empty.
func (w *Workbook) AddDevice(deviceName string, codes []string, set series.Set) (string, error) {
	columns := make([]series.Series, 0, len(set))
	for _, code := range codes {
		if s, ok := set[code]; ok {
			columns = append(columns, s)
		}
	}
	if len(columns) == 0 {
		return "", nil
	}
	sheet := w.claimSheetName(deviceName)

	// Create sheet. The default sheet is renamed rather than deleted
	if len(w.sheets) == 0 {
		err := w.file.SetSheetName(defaultSheet, sheet)
		if err != nil {
			return "", fmt.Errorf("error renaming default sheet to %v: %w", sheet, err)
		}
	} else {
		_, err := w.file.NewSheet(sheet)
		if err != nil {
			return "", fmt.Errorf("error creating sheet %v: %w", sheet, err)
		}
	}
	w.sheets = append(w.sheets, sheet)

	// Write header
	headerStyle, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("error creating header style: %w", err)
	}
	header := []any{TIME_HEADER}
	for _, column := range columns {
		header = append(header, column.Code)
	}
	err = w.file.SetSheetRow(sheet, "A1", &header)
	if err != nil {
		return "", fmt.Errorf("error writing header of %v: %w", sheet, err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return "", err
	}
	err = w.file.SetCellStyle(sheet, "A1", lastHeader, headerStyle)
	if err != nil {
		return "", fmt.Errorf("error styling header of %v: %w", sheet, err)
	}

	// Write rows
	times := unionIndex(columns)
	positions := make([]map[int64]int, len(columns))
	for i, column := range columns {
		positions[i] = lastIndexByTime(column)
	}
	for rowIndex, t := range times {
		row := rowIndex + 2
		err := setCell(w.file, sheet, 1, row, t.Format(TIME_FORMAT))
		if err != nil {
			return "", err
		}
		for columnIndex, column := range columns {
			index, ok := positions[columnIndex][t.UnixNano()]
			if !ok {
				continue
			}
			value := cellValue(column, index)
			err = setCell(w.file, sheet, columnIndex+2, row, value)
			if err != nil {
				return "", err
			}
		}
	}
	err = w.file.SetColWidth(sheet, "A", "A", 20)
	if err != nil {
		return "", fmt.Errorf("error sizing time column of %v: %w", sheet, err)
	}
	err = w.file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return "", fmt.Errorf("error freezing header of %v: %w", sheet, err)
	}

	// Add chart beside the data
	err = w.addChart(sheet, deviceName, len(columns), len(times))
	if err != nil {
		return "", err
	}
	return sheet, nil
}

func (w *Workbook) addChart(sheet string, title string, columns int, rows int) error {
	lastRow := rows + 1
	chartSeries := make([]excelize.ChartSeries, 0, columns)
	for i := 0; i < columns; i++ {
		column, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		chartSeries = append(chartSeries, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, column),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, lastRow),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, column, column, lastRow),
		})
	}
	anchor, err := excelize.CoordinatesToCellName(columns+3, 2)
	if err != nil {
		return err
	}
	err = w.file.AddChart(sheet, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: chartSeries,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{
			Width:  960,
			Height: 480,
		},
	})
	if err != nil {
		return fmt.Errorf("error adding chart to %v: %w", sheet, err)
	}
	return nil
}

// Save the workbook to path, overwriting it. Fails with ErrNoSheets when no device was added.
func (w *Workbook) SaveAs(path string) error {
	if len(w.sheets) == 0 {
		return ErrNoSheets
	}
	err := w.file.SaveAs(path)
	if err != nil {
		return fmt.Errorf("error saving workbook to %v: %w", path, err)
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// Excel sheet names are at most 31 characters, unique, and exclude :\/?*[]'.
func (w *Workbook) claimSheetName(deviceName string) string {
	base := strings.TrimSpace(invalidSheetChars.Replace(deviceName))
	if base == "" {
		base = "Device"
	}
	base = truncate(base, MAX_SHEET_NAME)

	name := base
	for n := 2; ; n++ {
		if _, taken := w.taken[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, MAX_SHEET_NAME-len(suffix)) + suffix
	}
	w.taken[strings.ToLower(name)] = struct{}{}
	return name
}

func setCell(f *excelize.File, sheet string, col int, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	err = f.SetCellValue(sheet, cell, value)
	if err != nil {
		return fmt.Errorf("error writing %v of %v: %w", cell, sheet, err)
	}
	return nil
}

func truncate(s string, runes int) string {
	if utf8.RuneCountInString(s) <= runes {
		return s
	}
	return string([]rune(s)[:runes])
}

// Distinct sample times across all columns, ascending.
func unionIndex(columns []series.Series) []time.Time {
	seen := map[int64]struct{}{}
	times := []time.Time{}
	for _, column := range columns {
		for _, t := range column.Index {
			if _, ok := seen[t.UnixNano()]; ok {
				continue
			}
			seen[t.UnixNano()] = struct{}{}
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// Position of the last sample at each time of the column's index.
func lastIndexByTime(column series.Series) map[int64]int {
	positions := make(map[int64]int, column.Len())
	for i, t := range column.Index {
		positions[t.UnixNano()] = i
	}
	return positions
}

// Booleans are written as 1 or 0.
func cellValue(column series.Series, i int) any {
	if column.Kind == series.Boolean {
		return int(column.Float(i))
	}
	return column.Ints[i]
}
