package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/damiannass88/WindowsFileMover/internal/journal"
	"github.com/damiannass88/WindowsFileMover/internal/report"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/cobra"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Padding(0, 1)
	bodyCell   = lipgloss.NewStyle().Padding(0, 1)
)

func historyCmd() *cobra.Command {
	var (
		limit      int
		operation  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled scans and moves",
		Long:  `List recent operations from the journal, newest first. With --op show every file outcome of one move.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errors.New("the journal is disabled (journal.enabled: false)")
			}

			store, err := journal.NewStore(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if operation != "" {
				op, err := store.Operation(cmd.Context(), operation)
				if err != nil {
					return err
				}
				items, err := store.Items(cmd.Context(), operation)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(out, struct {
						*journal.Operation
						Items []*journal.Item `json:"items"`
					}{op, items})
				}
				printOperation(out, op, items)
				return nil
			}

			ops, err := store.ListOperations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(out, ops)
			}
			if len(ops) == 0 {
				fmt.Fprintln(out, "  No operations journaled yet.")
				return nil
			}
			printOperations(out, ops)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of operations to list")
	cmd.Flags().StringVar(&operation, "op", "", "Show the file outcomes of one operation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")

	return cmd
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
}

func printOperations(out io.Writer, ops []*journal.Operation) {
	t := newTable().Headers("ID", "Kind", "Started", "Roots", "Total", "Moved", "Skipped", "Failed", "Size")
	for _, op := range ops {
		roots := op.SourceRoot
		if op.DestinationRoot != "" {
			roots += " -> " + op.DestinationRoot
		}
		kind := op.Kind
		if op.Cancelled {
			kind += " (cancelled)"
		}
		t.Row(
			op.ID,
			kind,
			op.StartedAt.Local().Format("2006-01-02 15:04:05"),
			roots,
			strconv.Itoa(op.Total),
			strconv.Itoa(op.Moved),
			strconv.Itoa(op.Skipped),
			strconv.Itoa(op.Failed),
			models.HumanSize(op.Bytes),
		)
	}
	fmt.Fprintln(out, t.Render())
}

func printOperation(out io.Writer, op *journal.Operation, items []*journal.Item) {
	fmt.Fprintln(out)
	titleColor.Fprintf(out, "  %s %s\n", op.Kind, op.ID)
	grayColor.Fprintf(out, "  %s, %s\n\n",
		op.StartedAt.Local().Format("2006-01-02 15:04:05"),
		report.FormatDuration(op.FinishedAt.Sub(op.StartedAt)))

	if len(items) == 0 {
		fmt.Fprintln(out, "  No file outcomes recorded.")
		return
	}

	t := newTable().Headers("#", "Status", "Source", "Destination / Reason", "Size")
	for _, it := range items {
		detail := it.Destination
		if it.Status != string(models.StatusMoved) && it.Reason != "" {
			detail = it.Reason
		}
		t.Row(strconv.Itoa(it.Seq), it.Status, it.Source, detail, models.HumanSize(it.SizeBytes))
	}
	fmt.Fprintln(out, t.Render())
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
