// Package sheetexport copies a flattened report into a new Google Sheet and
// charts its first metric.
package sheetexport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gareporting/internal/report"

	"google.golang.org/api/sheets/v4"
)

const dataSheet = "Data"

// Export creates a spreadsheet holding tbl and adds a chart of the first
// metric against the first dimension on its own sheet.
// Returns: spreadsheetID, chartID, error. chartID is 0 when tbl has no
// dimension to chart against.
func Export(ctx context.Context, sheetsSvc *sheets.Service, title string, tbl *report.Table) (string, int64, error) {
	if sheetsSvc == nil {
		return "", 0, fmt.Errorf("sheetsSvc is nil")
	}
	if tbl == nil || len(tbl.Rows) == 0 {
		return "", 0, fmt.Errorf("no rows to export")
	}

	spreadsheet, err := sheetsSvc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: nonEmpty(title, "Analytics report")},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: dataSheet}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("create spreadsheet: %w", err)
	}
	spreadsheetID := spreadsheet.SpreadsheetId
	if spreadsheetID == "" || len(spreadsheet.Sheets) == 0 || spreadsheet.Sheets[0].Properties == nil {
		return "", 0, fmt.Errorf("invalid spreadsheet create response")
	}
	sheetID := spreadsheet.Sheets[0].Properties.SheetId

	vr := &sheets.ValueRange{Values: makeCells(tbl)}
	if _, err := sheetsSvc.Spreadsheets.Values.Update(spreadsheetID, dataSheet+"!A1", vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", 0, fmt.Errorf("write values: %w", err)
	}

	if len(tbl.Dimensions) == 0 || len(tbl.Metrics) == 0 {
		return spreadsheetID, 0, nil
	}

	breq := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{AddChart: addChartRequest(sheetID, tbl)}}}
	bresp, err := sheetsSvc.Spreadsheets.BatchUpdate(spreadsheetID, breq).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("batch update (add chart): %w", err)
	}
	if bresp == nil || len(bresp.Replies) == 0 || bresp.Replies[0].AddChart == nil || bresp.Replies[0].AddChart.Chart == nil {
		return "", 0, fmt.Errorf("missing add chart reply")
	}
	return spreadsheetID, bresp.Replies[0].AddChart.Chart.ChartId, nil
}

func addChartRequest(sheetID int64, tbl *report.Table) *sheets.AddChartRequest {
	rowCount := int64(len(tbl.Rows) + 1) // including header
	metricCol := int64(len(tbl.Dimensions))
	domainRange := &sheets.GridRange{SheetId: sheetID, StartRowIndex: 1, EndRowIndex: rowCount, StartColumnIndex: 0, EndColumnIndex: 1}
	seriesRange := &sheets.GridRange{SheetId: sheetID, StartRowIndex: 1, EndRowIndex: rowCount, StartColumnIndex: metricCol, EndColumnIndex: metricCol + 1}

	return &sheets.AddChartRequest{
		Chart: &sheets.EmbeddedChart{
			Spec: &sheets.ChartSpec{
				Title: fmt.Sprintf("%s by %s", tbl.Metrics[0], tbl.Dimensions[0]),
				BasicChart: &sheets.BasicChartSpec{
					ChartType:      chartType(tbl.Dimensions[0]),
					LegendPosition: "BOTTOM_LEGEND",
					Domains: []*sheets.BasicChartDomain{
						{Domain: &sheets.ChartData{SourceRange: &sheets.ChartSourceRange{Sources: []*sheets.GridRange{domainRange}}}},
					},
					Series: []*sheets.BasicChartSeries{
						{Series: &sheets.ChartData{SourceRange: &sheets.ChartSourceRange{Sources: []*sheets.GridRange{seriesRange}}}, TargetAxis: "LEFT_AXIS"},
					},
				},
			},
			Position: &sheets.EmbeddedObjectPosition{NewSheet: true},
		},
	}
}

// chartType draws time dimensions as lines and everything else as columns.
func chartType(dimension string) string {
	switch strings.TrimPrefix(dimension, "ga:") {
	case "date", "dateHour", "dateHourMinute", "hour", "week", "isoWeek", "month", "year", "yearMonth", "yearWeek", "isoYearIsoWeek", "nthDay", "nthWeek", "nthMonth":
		return "LINE"
	default:
		return "COLUMN"
	}
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// makeCells converts the table into [][]interface{} expected by the Sheets
// API. Metric values that parse as numbers are written as numbers.
func makeCells(tbl *report.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(tbl.Rows)+1)
	out = append(out, toCells(tbl.Header(), -1)) //nolint
	for _, row := range tbl.Rows {
		out = append(out, toCells(row, len(tbl.Dimensions))) //nolint
	}
	return out
}

func toCells(values []string, firstMetric int) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if firstMetric >= 0 && i >= firstMetric {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = f
			}
		}
	}
	return cells
}
