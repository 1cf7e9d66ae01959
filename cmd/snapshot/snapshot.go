// Package snapshot implements the snapshot command: reconstructing the
// current catalog, the retirement log and per-program change history
// from the versioned store.
package snapshot

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/foerderdata/fundwatch/cmd/common"
	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/export"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

// Output formats.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

// maxTitleWidth truncates long program titles in table output.
const maxTitleWidth = 60

// Command returns the snapshot command for use in the root command.
func Command() *cobra.Command {
	var state string
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Reconstruct and display the versioned catalog",
		Long: `Reconstructs the snapshot from the versioned store: every program ever
seen, its current content, its change history and whether it has
disappeared from the source.

--state selects the current catalog (current), the retirement log
(retired) or everything (all). --format table prints a summary table;
csv and json write the full records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotState, err := parseState(state)
			if err != nil {
				return err
			}

			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			storage, err := common.OpenStorage(cmd.Context(), deps)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storage.Close()

			rows, err := temporal.NewReconstructor(storage.Versions).Snapshot(cmd.Context(), snapshotState)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			switch format {
			case formatTable:
				renderTable(out, rows)
				return nil
			case formatCSV:
				return export.WriteCSV(out, rows)
			case formatJSON:
				return export.WriteJSON(out, rows)
			default:
				return fmt.Errorf("unknown format %q (expected table, csv or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&state, "state", string(domain.SnapshotAll),
		"which programs to include: all, current or retired")
	cmd.Flags().StringVar(&format, "format", formatTable,
		"output format: table, csv or json")
	cmd.Flags().StringVar(&outPath, "out", "",
		"write output to this file instead of stdout")

	return cmd
}

// parseState validates the --state flag.
func parseState(state string) (domain.SnapshotState, error) {
	switch domain.SnapshotState(state) {
	case domain.SnapshotAll, domain.SnapshotCurrent, domain.SnapshotRetired:
		return domain.SnapshotState(state), nil
	default:
		return "", fmt.Errorf("unknown state %q (expected all, current or retired)", state)
	}
}

// openOutput opens the --out file, defaulting to stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { file.Close() }, nil
}

// renderTable prints a summary table of the snapshot.
func renderTable(out io.Writer, rows []domain.SnapshotRow) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Title", "Last Updated", "Changes", "Deleted"})

	for i := range rows {
		row := &rows[i]
		t.AppendRow(table.Row{
			row.IDURL,
			truncate(row.Title, maxTitleWidth),
			row.LastUpdated.Format("2006-01-02 15:04"),
			len(row.PreviousUpdateDates),
			row.Deleted,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "total", len(rows)})
	t.Render()
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
