package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gareporting/internal/report"
	"gareporting/internal/servicefactory"
	"gareporting/internal/sheetexport"
	"gareporting/internal/slidesexport"

	"github.com/joho/godotenv"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

func main() {
	_ = godotenv.Load()

	keyFile := flag.String("key-file", "", "Service account JSON key file (default $GA_KEY_FILE or $GOOGLE_APPLICATION_CREDENTIALS)")
	viewID := flag.String("view-id", "", "Analytics view ID (default $GA_VIEW_ID)")
	start := flag.String("start", report.DefaultStartDate, "Start date: YYYY-MM-DD, today, yesterday or NdaysAgo")
	end := flag.String("end", report.DefaultEndDate, "End date")
	metrics := flag.String("metrics", report.DefaultMetric, "Comma separated metric expressions")
	dimensions := flag.String("dimensions", "", "Comma separated dimension names (optional)")
	pageSize := flag.Int64("page-size", 0, "Max rows to fetch (0 = API default)")
	format := flag.String("format", report.FormatTable, "Output format: table|json")
	exportSheet := flag.Bool("export-sheet", false, "Also copy the report into a new Google Sheet")
	presentationID := flag.String("presentation-id", "", "Google Slides presentation to append a summary slide to (optional)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	flag.Parse()

	*keyFile = firstNonEmpty(*keyFile, os.Getenv("GA_KEY_FILE"), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if *keyFile == "" {
		log.Fatal("--key-file is required (or set GA_KEY_FILE)")
	}
	*viewID = firstNonEmpty(*viewID, os.Getenv("GA_VIEW_ID"))
	if *viewID == "" {
		log.Fatal("--view-id is required (or set GA_VIEW_ID)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc, err := servicefactory.InitializeService(ctx, *keyFile)
	if err != nil {
		log.Fatal(err)
	}

	q := report.Query{
		ViewID:     *viewID,
		StartDate:  *start,
		EndDate:    *end,
		Metrics:    report.SplitList(*metrics),
		Dimensions: report.SplitList(*dimensions),
		PageSize:   *pageSize,
	}
	tbl, err := report.Run(ctx, svc, q)
	if err != nil {
		log.Fatal(err)
	}
	if err := tbl.Render(os.Stdout, *format); err != nil {
		log.Fatal(err)
	}
	if tbl.NextPageToken != "" {
		log.Printf("showing %d of %d rows", len(tbl.Rows), tbl.RowCount)
	}

	if *exportSheet {
		title := fmt.Sprintf("GA %s %s..%s", *viewID, q.Normalize().StartDate, q.Normalize().EndDate)
		exportToSheet(ctx, *keyFile, title, tbl)
	}
	if *presentationID != "" {
		exportToSlides(ctx, *keyFile, *presentationID, tbl)
	}
}

func exportToSheet(ctx context.Context, keyFile, title string, tbl *report.Table) {
	h, err := servicefactory.GetService(ctx, "sheets", "v4", []string{sheets.SpreadsheetsScope}, keyFile)
	if err != nil {
		log.Printf("sheets service: %v", err)
		return
	}
	svc, ok := h.Client.(*sheets.Service)
	if !ok {
		log.Printf("sheets service: unexpected client %T", h.Client)
		return
	}
	spreadsheetID, _, err := sheetexport.Export(ctx, svc, title, tbl)
	if err != nil {
		log.Printf("export sheet: %v", err)
		return
	}
	log.Printf("exported to https://docs.google.com/spreadsheets/d/%s", spreadsheetID)
}

func exportToSlides(ctx context.Context, keyFile, presentationID string, tbl *report.Table) {
	h, err := servicefactory.GetService(ctx, "slides", "v1", []string{slides.PresentationsScope}, keyFile)
	if err != nil {
		log.Printf("slides service: %v", err)
		return
	}
	svc, ok := h.Client.(*slides.Service)
	if !ok {
		log.Printf("slides service: unexpected client %T", h.Client)
		return
	}
	slideID, err := slidesexport.Write(ctx, svc, presentationID, tbl)
	if err != nil {
		log.Printf("slides export: %v", err)
		return
	}
	log.Printf("added slide %s to presentation %s", slideID, presentationID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
