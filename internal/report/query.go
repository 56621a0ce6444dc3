// Package report runs Analytics Reporting v4 queries and renders the result.
package report

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/analyticsreporting/v4"
)

const (
	DefaultStartDate = "7daysAgo"
	DefaultEndDate   = "today"
	DefaultMetric    = "ga:sessions"

	maxMetrics    = 10
	maxDimensions = 7
	maxPageSize   = 100000
)

// Query describes a single-view, single-date-range report.
type Query struct {
	ViewID     string
	StartDate  string // YYYY-MM-DD, today, yesterday or NdaysAgo
	EndDate    string
	Metrics    []string // e.g. ga:sessions
	Dimensions []string // e.g. ga:country
	PageSize   int64
}

// Normalize trims fields, drops blank entries and fills in defaults.
func (q Query) Normalize() Query {
	q.ViewID = strings.TrimSpace(q.ViewID)
	q.StartDate = firstNonEmpty(q.StartDate, DefaultStartDate)
	q.EndDate = firstNonEmpty(q.EndDate, DefaultEndDate)
	q.Metrics = compact(q.Metrics)
	if len(q.Metrics) == 0 {
		q.Metrics = []string{DefaultMetric}
	}
	q.Dimensions = compact(q.Dimensions)
	return q
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.ViewID) == "" {
		return errors.New("view ID is required")
	}
	if len(q.Metrics) == 0 {
		return errors.New("at least one metric is required")
	}
	if len(q.Metrics) > maxMetrics {
		return fmt.Errorf("too many metrics: %d > %d", len(q.Metrics), maxMetrics)
	}
	if len(q.Dimensions) > maxDimensions {
		return fmt.Errorf("too many dimensions: %d > %d", len(q.Dimensions), maxDimensions)
	}
	if q.PageSize < 0 || q.PageSize > maxPageSize {
		return fmt.Errorf("page size %d out of range", q.PageSize)
	}
	return nil
}

// Request builds the batchGet body for q.
func (q Query) Request() *analyticsreporting.GetReportsRequest {
	rr := &analyticsreporting.ReportRequest{
		ViewId: q.ViewID,
		DateRanges: []*analyticsreporting.DateRange{
			{StartDate: q.StartDate, EndDate: q.EndDate},
		},
		PageSize: q.PageSize,
	}
	for _, m := range q.Metrics {
		rr.Metrics = append(rr.Metrics, &analyticsreporting.Metric{Expression: m})
	}
	for _, d := range q.Dimensions {
		rr.Dimensions = append(rr.Dimensions, &analyticsreporting.Dimension{Name: d})
	}
	return &analyticsreporting.GetReportsRequest{ReportRequests: []*analyticsreporting.ReportRequest{rr}}
}

// SplitList parses a comma separated flag value.
func SplitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
