package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"handwrite/db"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit     int
		pruneDays int
		id        string
		stats     bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pruneDays < 0 {
				return fmt.Errorf("--prune-days must be non-negative, got %d", pruneDays)
			}
			database, repo, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer database.Close()

			out := cmd.OutOrStdout()
			c := cmd.Context()

			if pruneDays > 0 {
				removed, err := repo.PruneOlderThan(c, time.Duration(pruneDays)*24*time.Hour)
				if err != nil {
					return err
				}
				if removed > 0 {
					if err := repo.Vacuum(c); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Removed %d record(s) older than %d day(s).\n", removed, pruneDays)
			}

			if id != "" {
				rec, err := repo.GetByCorrelationID(c, id)
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no history record for %q", id)
				}
				if err != nil {
					return err
				}
				printRecord(out, rec)
				return nil
			}

			if stats {
				counts, err := repo.CountByStatus(c)
				if err != nil {
					return err
				}
				printStatusCounts(out, counts)
				return nil
			}

			records, err := repo.ListRecent(c, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No generation history yet.")
				return nil
			}
			printRecords(out, records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", db.DefaultListLimit, "Number of records to list")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete records older than this many days first")
	cmd.Flags().StringVar(&id, "id", "", "Show one record by correlation id")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show record counts by status")
	return cmd
}

func printRecords(w io.Writer, records []db.GenerationRecord) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Status,
			strconv.Itoa(rec.PageCount),
			rec.Font,
			formatDurationMS(rec.DurationMS),
			db.Preview(rec.TextPreview, 40),
			rec.CorrelationID,
		})
	}
	writeTable(w,
		[]string{"CREATED", "STATUS", "PAGES", "FONT", "DURATION", "TEXT", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft})
}

func printRecord(w io.Writer, rec db.GenerationRecord) {
	rows := [][]string{
		{"id", rec.CorrelationID},
		{"created", rec.CreatedAt.Local().Format(time.RFC3339)},
		{"status", rec.Status},
		{"pages", strconv.Itoa(rec.PageCount)},
		{"font", rec.Font},
		{"paper", formatFloat(rec.PaperX) + " x " + formatFloat(rec.PaperY)},
		{"rate", strconv.Itoa(rec.Rate)},
		{"duration", formatDurationMS(rec.DurationMS)},
		{"text", rec.TextPreview},
		{"params", rec.ParamsJSON},
	}
	if rec.ErrorCode != "" || rec.ErrorMessage != "" {
		rows = append(rows, []string{"error", rec.ErrorCode + ": " + rec.ErrorMessage})
	}
	writeTable(w, []string{"FIELD", "VALUE"}, rows, nil)
}

func printStatusCounts(w io.Writer, counts map[string]int) {
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, []string{status, strconv.Itoa(counts[status])})
	}
	writeTable(w, []string{"STATUS", "COUNT"}, rows, []columnAlignment{alignLeft, alignRight})
}

func formatDurationMS(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(10 * time.Millisecond).String()
}
