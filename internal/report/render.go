package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Render writes t to w as a text table or indented JSON.
func (t *Table) Render(w io.Writer, format string) error {
	switch format {
	case "", FormatTable:
		_, err := fmt.Fprintln(w, t.renderTable())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (t *Table) renderTable() string {
	tw := table.Table{}
	tw.AppendHeader(toRow(t.Header()))

	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, toRow(r))
	}
	tw.AppendRows(rows)

	if len(t.Totals) > 0 {
		labels := make([]string, len(t.Dimensions))
		if len(labels) > 0 {
			labels[0] = "Total"
		}
		tw.AppendFooter(toRow(append(labels, t.Totals...)))
	}

	configs := make([]table.ColumnConfig, 0, len(t.Metrics))
	for i := range t.Metrics {
		configs = append(configs, table.ColumnConfig{
			Number: len(t.Dimensions) + i + 1,
			Align:  text.AlignRight,
		})
	}
	tw.SetColumnConfigs(configs)
	tw.SetStyle(table.StyleRounded)
	return tw.Render()
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
