package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/option"
)

func TestQuery_Normalize(t *testing.T) {
	got := Query{
		ViewID:     " 12345 ",
		Metrics:    []string{" ", "ga:users"},
		Dimensions: []string{"ga:country", ""},
	}.Normalize()

	want := Query{
		ViewID:     "12345",
		StartDate:  DefaultStartDate,
		EndDate:    DefaultEndDate,
		Metrics:    []string{"ga:users"},
		Dimensions: []string{"ga:country"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}

	if m := (Query{ViewID: "1"}).Normalize().Metrics; !reflect.DeepEqual(m, []string{DefaultMetric}) {
		t.Errorf("default metrics = %v, want %v", m, []string{DefaultMetric})
	}
}

func TestQuery_Validate(t *testing.T) {
	many := func(n int) []string { return make([]string, n) }

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{name: "valid", query: Query{ViewID: "1", Metrics: []string{"ga:sessions"}}},
		{name: "missing view", query: Query{Metrics: []string{"ga:sessions"}}, wantErr: true},
		{name: "no metrics", query: Query{ViewID: "1"}, wantErr: true},
		{name: "too many metrics", query: Query{ViewID: "1", Metrics: many(11)}, wantErr: true},
		{name: "too many dimensions", query: Query{ViewID: "1", Metrics: many(1), Dimensions: many(8)}, wantErr: true},
		{name: "negative page size", query: Query{ViewID: "1", Metrics: many(1), PageSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.query.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("ga:sessions, ga:users,,")
	if want := []string{"ga:sessions", "ga:users"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SplitList() = %v, want %v", got, want)
	}
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %v, want nil", got)
	}
}

func sampleReport() *analyticsreporting.Report {
	return &analyticsreporting.Report{
		ColumnHeader: &analyticsreporting.ColumnHeader{
			Dimensions: []string{"ga:country"},
			MetricHeader: &analyticsreporting.MetricHeader{
				MetricHeaderEntries: []*analyticsreporting.MetricHeaderEntry{
					{Name: "ga:sessions", Type: "INTEGER"},
					{Name: "ga:users", Type: "INTEGER"},
				},
			},
		},
		Data: &analyticsreporting.ReportData{
			Rows: []*analyticsreporting.ReportRow{
				{Dimensions: []string{"Chile"}, Metrics: []*analyticsreporting.DateRangeValues{{Values: []string{"120", "80"}}}},
				{Dimensions: []string{"Peru"}, Metrics: []*analyticsreporting.DateRangeValues{{Values: []string{"30", "25"}}}},
			},
			Totals:   []*analyticsreporting.DateRangeValues{{Values: []string{"150", "105"}}},
			RowCount: 2,
		},
		NextPageToken: "2",
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(sampleReport())
	want := &Table{
		Dimensions:    []string{"ga:country"},
		Metrics:       []string{"ga:sessions", "ga:users"},
		Rows:          [][]string{{"Chile", "120", "80"}, {"Peru", "30", "25"}},
		Totals:        []string{"150", "105"},
		RowCount:      2,
		NextPageToken: "2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %+v, want %+v", got, want)
	}
}

func TestFlatten_DateRangeComparison(t *testing.T) {
	r := &analyticsreporting.Report{
		ColumnHeader: &analyticsreporting.ColumnHeader{
			MetricHeader: &analyticsreporting.MetricHeader{
				MetricHeaderEntries: []*analyticsreporting.MetricHeaderEntry{{Name: "ga:sessions"}},
			},
		},
		Data: &analyticsreporting.ReportData{
			Rows: []*analyticsreporting.ReportRow{
				{Metrics: []*analyticsreporting.DateRangeValues{{Values: []string{"10"}}, {Values: []string{"12"}}}},
			},
		},
	}

	got := Flatten(r)
	if want := []string{"ga:sessions (range 1)", "ga:sessions (range 2)"}; !reflect.DeepEqual(got.Metrics, want) {
		t.Errorf("Metrics = %v, want %v", got.Metrics, want)
	}
	if want := [][]string{{"10", "12"}}; !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := Flatten(nil); !reflect.DeepEqual(got, &Table{}) {
		t.Errorf("Flatten(nil) = %+v, want empty table", got)
	}
	got := Flatten(&analyticsreporting.Report{ColumnHeader: sampleReport().ColumnHeader})
	if len(got.Rows) != 0 || len(got.Metrics) != 2 {
		t.Errorf("Flatten(no data) = %+v", got)
	}
}

func TestRun(t *testing.T) {
	var gotReq analyticsreporting.GetReportsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v4/reports:batchGet" {
			http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&analyticsreporting.GetReportsResponse{
			Reports: []*analyticsreporting.Report{sampleReport()},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := analyticsreporting.NewService(ctx,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tbl, err := Run(ctx, svc, Query{ViewID: "12345", Dimensions: []string{"ga:country"}, Metrics: []string{"ga:sessions", "ga:users"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][0] != "Chile" {
		t.Errorf("Run() rows = %v", tbl.Rows)
	}

	if len(gotReq.ReportRequests) != 1 {
		t.Fatalf("server received %d report requests, want 1", len(gotReq.ReportRequests))
	}
	rr := gotReq.ReportRequests[0]
	if rr.ViewId != "12345" {
		t.Errorf("ViewId = %q, want 12345", rr.ViewId)
	}
	if len(rr.DateRanges) != 1 || rr.DateRanges[0].StartDate != DefaultStartDate || rr.DateRanges[0].EndDate != DefaultEndDate {
		t.Errorf("DateRanges = %+v", rr.DateRanges)
	}
	if len(rr.Metrics) != 2 || rr.Metrics[1].Expression != "ga:users" {
		t.Errorf("Metrics = %+v", rr.Metrics)
	}
}

func TestRun_InvalidQuery(t *testing.T) {
	svc, err := analyticsreporting.NewService(context.Background(), option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := Run(context.Background(), svc, Query{}); err == nil {
		t.Fatal("Run() with no view ID succeeded")
	}
	if _, err := Run(context.Background(), nil, Query{ViewID: "1"}); err == nil {
		t.Fatal("Run() with nil service succeeded")
	}
}

func TestTable_Render(t *testing.T) {
	tbl := Flatten(sampleReport())

	var buf bytes.Buffer
	if err := tbl.Render(&buf, FormatTable); err != nil {
		t.Fatalf("Render(table): %v", err)
	}
	// go-pretty upper-cases headers and footers by default.
	out := strings.ToUpper(buf.String())
	for _, want := range []string{"GA:COUNTRY", "CHILE", "PERU", "120", "150", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := tbl.Render(&buf, FormatJSON); err != nil {
		t.Fatalf("Render(json): %v", err)
	}
	var decoded Table
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if !reflect.DeepEqual(&decoded, tbl) {
		t.Errorf("json output = %+v, want %+v", decoded, tbl)
	}

	if err := tbl.Render(&buf, "xml"); err == nil {
		t.Error("Render(xml) succeeded")
	}
}
