package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"handwrite/session"
	"handwrite/validation"
)

// consoleNotifier prints session notifications to the command's stderr.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Notify(note session.Notification) {
	var icon string
	var clr *color.Color

	switch note.Level {
	case session.LevelInfo:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case session.LevelWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	default:
		icon = "✗"
		clr = color.New(color.FgRed)
	}

	clr.Fprintf(n.out, "%s %s", icon, note.Title)
	if note.Message != "" {
		color.New(color.FgHiBlack).Fprintf(n.out, " - %s", note.Message)
	}
	fmt.Fprintln(n.out)

	if note.Err != nil && note.Level != session.LevelInfo {
		color.New(color.FgRed).Fprintf(n.out, "  └─ %s\n", note.Err)
	}
}

// printFieldErrors writes one row per invalid field, plus pending fields.
func printFieldErrors(w io.Writer, report validation.Report) {
	rows := make([][]string, 0, len(report.Errors)+len(report.Pending))
	for _, fe := range report.Errors {
		rows = append(rows, []string{fe.Field, string(fe.Reason), fe.Message})
	}
	for _, field := range report.Pending {
		rows = append(rows, []string{field, "Pending", "font catalog not loaded"})
	}
	writeTable(w, []string{"FIELD", "REASON", "MESSAGE"}, rows, nil)
}
