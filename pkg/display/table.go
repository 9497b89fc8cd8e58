package display

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"draftreveal/pkg/draft"
)

// Align selects column alignment in RenderTable.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// RenderOrder renders order as a table, 1st pick first.
func RenderOrder(order draft.Order) string {
	rows := make([][]string, 0, order.Len())
	for pick := 1; pick <= order.Len(); pick++ {
		entrant, _ := order.At(pick)
		rows = append(rows, []string{strconv.Itoa(pick), draft.Ordinal(pick), entrant})
	}
	return RenderTable([]string{"#", "Pick", "Entrant"}, rows, []Align{AlignRight, AlignLeft, AlignLeft})
}

// RenderTable renders rows under headers with the rounded style. Short rows
// are padded.
func RenderTable(headers []string, rows [][]string, aligns []Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
