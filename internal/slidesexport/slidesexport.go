// Package slidesexport appends a report summary slide to a Google Slides
// presentation.
package slidesexport

import (
	"context"
	"fmt"
	"strings"

	"gareporting/internal/report"

	"github.com/google/uuid"
	"google.golang.org/api/slides/v1"
)

// DefaultMaxRows caps the bullet list on a summary slide.
const DefaultMaxRows = 8

// Summary returns the plain text of the title and body boxes Write puts on
// the slide.
func Summary(tbl *report.Table, maxRows int) (title, body string) {
	t, b := summarySegments(tbl, maxRows)
	return plainText(t), plainText(b)
}

// summarySegments lays out tbl as a title and a body: the totals in bold,
// then one bullet per row with its dimension values in bold.
func summarySegments(tbl *report.Table, maxRows int) (title, body []segment) {
	if tbl == nil || len(tbl.Metrics) == 0 {
		return []segment{{Text: "Analytics report"}}, []segment{{Text: "No data"}}
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	heading := strings.Join(tbl.Metrics, ", ")
	if len(tbl.Dimensions) > 0 {
		heading += " by " + strings.Join(tbl.Dimensions, ", ")
	}
	title = []segment{{Text: heading}}

	if len(tbl.Totals) > 0 {
		body = append(body, segment{Text: "Total: "}, segment{Text: strings.Join(tbl.Totals, " / "), Bold: true})
	} else {
		body = append(body, segment{Text: "No totals"})
	}
	dims := len(tbl.Dimensions)
	for i, row := range tbl.Rows {
		if i == maxRows {
			body = append(body, segment{Text: "\n"}, segment{Text: fmt.Sprintf("…and %d more rows", len(tbl.Rows)-maxRows)})
			break
		}
		label := "(all)"
		if dims > 0 && len(row) >= dims {
			label = strings.Join(row[:dims], " / ")
		}
		values := row
		if len(row) >= dims {
			values = row[dims:]
		}
		body = append(body,
			segment{Text: "\n"},
			segment{Text: label, Bold: true, Bullet: true},
			segment{Text: " - " + strings.Join(values, " / "), Bullet: true},
		)
	}
	return title, body
}

// Write appends one slide summarizing tbl to presentationID and returns the
// new slide's object ID.
func Write(ctx context.Context, svc *slides.Service, presentationID string, tbl *report.Table) (string, error) {
	if svc == nil {
		return "", fmt.Errorf("slides service is nil")
	}
	if strings.TrimSpace(presentationID) == "" {
		return "", fmt.Errorf("presentation ID is required")
	}

	title, body := summarySegments(tbl, DefaultMaxRows)
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	slideID, titleID, bodyID := "ga_slide_"+id, "ga_title_"+id, "ga_body_"+id

	requests := []*slides.Request{
		{CreateSlide: &slides.CreateSlideRequest{
			ObjectId:             slideID,
			SlideLayoutReference: &slides.LayoutReference{PredefinedLayout: "BLANK"},
		}},
		textBox(titleID, slideID, 60, 50),
	}
	requests = append(requests, textRequests(title, titleID)...)
	requests = append(requests, textBox(bodyID, slideID, 300, 130))
	requests = append(requests, textRequests(body, bodyID)...)

	_, err := svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("batch update: %w", err)
	}
	return slideID, nil
}

func textBox(objectID, slideID string, heightPT, yPT float64) *slides.Request {
	return &slides.Request{CreateShape: &slides.CreateShapeRequest{
		ObjectId:  objectID,
		ShapeType: "TEXT_BOX",
		ElementProperties: &slides.PageElementProperties{
			PageObjectId: slideID,
			Size: &slides.Size{
				Width:  &slides.Dimension{Magnitude: 600, Unit: "PT"},
				Height: &slides.Dimension{Magnitude: heightPT, Unit: "PT"},
			},
			Transform: &slides.AffineTransform{ScaleX: 1, ScaleY: 1, TranslateX: 50, TranslateY: yPT, Unit: "PT"},
		},
	}}
}
