package slidesexport

import (
	"strings"
	"unicode/utf16"

	"google.golang.org/api/slides/v1"
)

// segment is a run of text with uniform formatting. Text is inserted
// verbatim; report values are never parsed for markup.
type segment struct {
	Text   string
	Bold   bool
	Bullet bool
}

func plainText(segments []segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

type span struct{ start, end int64 }

// textRequests inserts the plain text of segments into objectID and styles
// it. Slides indexes text in UTF-16 code units and rejects empty ranges.
func textRequests(segments []segment, objectID string) []*slides.Request {
	var (
		bold    []span
		bullets []span
		pos     int64
		open    int64 = -1
	)
	for _, s := range segments {
		n := int64(len(utf16.Encode([]rune(s.Text))))
		if s.Bold && n > 0 {
			bold = append(bold, span{pos, pos + n})
		}
		switch {
		case s.Bullet && open < 0:
			open = pos
		case !s.Bullet && open >= 0 && s.Text != "\n":
			bullets = append(bullets, span{open, pos})
			open = -1
		}
		pos += n
	}
	if open >= 0 {
		bullets = append(bullets, span{open, pos})
	}

	requests := []*slides.Request{{InsertText: &slides.InsertTextRequest{
		ObjectId:       objectID,
		InsertionIndex: 0,
		Text:           plainText(segments),
	}}}
	for _, b := range bold {
		requests = append(requests, &slides.Request{UpdateTextStyle: &slides.UpdateTextStyleRequest{
			ObjectId:  objectID,
			Style:     &slides.TextStyle{Bold: true},
			TextRange: fixedRange(b),
			Fields:    "bold",
		}})
	}
	for _, b := range bullets {
		if b.start == b.end {
			continue
		}
		requests = append(requests, &slides.Request{CreateParagraphBullets: &slides.CreateParagraphBulletsRequest{
			ObjectId:     objectID,
			TextRange:    fixedRange(b),
			BulletPreset: "BULLET_DISC_CIRCLE_SQUARE",
		}})
	}
	return requests
}

func fixedRange(s span) *slides.Range {
	start, end := s.start, s.end
	return &slides.Range{Type: "FIXED_RANGE", StartIndex: &start, EndIndex: &end}
}
