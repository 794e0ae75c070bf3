package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/spotlists/internal/definitions"
	"github.com/desertthunder/spotlists/internal/ledger"
	"github.com/desertthunder/spotlists/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer []string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, columns))
	for _, row := range rows {
		tw.AppendRow(toRow(row, columns))
	}
	if footer != nil {
		tw.AppendFooter(toRow(footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      align,
			WidthMax:         48,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(values []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range columns {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// RenderSummary writes a table of the playlists built in a run. An empty run writes nothing.
func RenderSummary(w io.Writer, result *tasks.RunResult) error {
	if result == nil || len(result.Playlists) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(result.Playlists))
	queries := 0
	for _, p := range result.Playlists {
		queries += p.Queries
		rows = append(rows, []string{
			p.Name,
			p.PlaylistID,
			strconv.Itoa(p.Added),
			strconv.Itoa(len(p.Unresolved)),
		})
	}

	footer := []string{
		fmt.Sprintf("%d playlists", len(result.Playlists)),
		"",
		strconv.Itoa(result.Added()),
		strconv.Itoa(queries - result.Added()),
	}

	out := renderTable(
		[]string{"Playlist", "ID", "Added", "Not Found"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		footer,
	)
	_, err := fmt.Fprintln(w, out)
	return err
}

// RenderDefinitions writes a table of definitions with their track counts and whether
// the dedup log already holds them.
func RenderDefinitions(w io.Writer, defs []definitions.Definition, created ledger.Set) error {
	if len(defs) == 0 {
		_, err := fmt.Fprintln(w, Hint("No playlist definitions found."))
		return err
	}

	rows := make([][]string, 0, len(defs))
	pending := 0
	for _, def := range defs {
		status := "created"
		if !created.Created(def.Slug) {
			status = "pending"
			pending++
		}
		rows = append(rows, []string{def.Slug, def.Name(), strconv.Itoa(len(def.Tracks)), status})
	}

	out := renderTable(
		[]string{"Slug", "Name", "Tracks", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		[]string{fmt.Sprintf("%d definitions", len(defs)), "", "", fmt.Sprintf("%d pending", pending)},
	)
	_, err := fmt.Fprintln(w, out)
	return err
}
