package report

import (
	"context"
	"fmt"

	"google.golang.org/api/analyticsreporting/v4"
)

// Table is one report flattened to strings: dimension columns first, then
// one column per metric and date range.
type Table struct {
	Dimensions    []string   `json:"dimensions"`
	Metrics       []string   `json:"metrics"`
	Rows          [][]string `json:"rows"`
	Totals        []string   `json:"totals,omitempty"`
	RowCount      int64      `json:"row_count"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

// Header returns the column names in row order.
func (t *Table) Header() []string {
	out := make([]string, 0, len(t.Dimensions)+len(t.Metrics))
	out = append(out, t.Dimensions...)
	return append(out, t.Metrics...)
}

// Run issues q as a single batchGet and flattens the first report. Only the
// first page is fetched; NextPageToken tells the caller whether more exist.
func Run(ctx context.Context, svc *analyticsreporting.Service, q Query) (*Table, error) {
	if svc == nil {
		return nil, fmt.Errorf("analytics service is nil")
	}
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	resp, err := svc.Reports.BatchGet(q.Request()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("batch get reports: %w", err)
	}
	if resp == nil || len(resp.Reports) == 0 {
		return &Table{}, nil
	}
	return Flatten(resp.Reports[0]), nil
}

// Flatten converts a report into a Table. A nil report yields an empty table.
func Flatten(r *analyticsreporting.Report) *Table {
	t := &Table{}
	if r == nil {
		return t
	}
	t.NextPageToken = r.NextPageToken

	var metricNames []string
	if h := r.ColumnHeader; h != nil {
		t.Dimensions = append(t.Dimensions, h.Dimensions...)
		if h.MetricHeader != nil {
			for _, e := range h.MetricHeader.MetricHeaderEntries {
				if e != nil {
					metricNames = append(metricNames, e.Name)
				}
			}
		}
	}

	d := r.Data
	if d == nil {
		t.Metrics = metricNames
		return t
	}
	t.RowCount = d.RowCount

	ranges := 1
	for _, row := range d.Rows {
		if row != nil && len(row.Metrics) > ranges {
			ranges = len(row.Metrics)
		}
	}
	t.Metrics = metricColumns(metricNames, ranges)

	for _, row := range d.Rows {
		if row == nil {
			continue
		}
		out := make([]string, 0, len(t.Dimensions)+len(t.Metrics))
		out = append(out, row.Dimensions...)
		out = appendValues(out, row.Metrics)
		t.Rows = append(t.Rows, out)
	}
	t.Totals = appendValues(nil, d.Totals)
	return t
}

// metricColumns suffixes metric names with their date range index when the
// report compares more than one range.
func metricColumns(names []string, ranges int) []string {
	if ranges <= 1 {
		return names
	}
	out := make([]string, 0, len(names)*ranges)
	for i := 0; i < ranges; i++ {
		for _, n := range names {
			out = append(out, fmt.Sprintf("%s (range %d)", n, i+1))
		}
	}
	return out
}

func appendValues(out []string, ranges []*analyticsreporting.DateRangeValues) []string {
	for _, v := range ranges {
		if v != nil {
			out = append(out, v.Values...)
		}
	}
	return out
}
