// Package preflight runs environment checks and prints their progress.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// StepStatus is the outcome of one check.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepWarning
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Check is one named check.
type Check struct {
	Name string
	// After names an earlier check that must pass, otherwise this one is skipped.
	After string
	// Warn turns a failure into a warning that does not fail the suite.
	Warn bool
	// Run returns a short status message, or an error when the check fails.
	Run func(ctx context.Context) (string, error)
}

// Step is the recorded result of a Check.
type Step struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// Result is the outcome of a whole suite run.
type Result struct {
	Steps    []Step
	Passed   int
	Failed   int
	Warnings int
	Skipped  int
	Duration time.Duration
	Success  bool
}

// Suite runs checks in order.
type Suite struct {
	title        string
	output       io.Writer
	showProgress bool
	failFast     bool
}

// NewSuite creates a suite that prints progress to stdout.
func NewSuite(title string) *Suite {
	return &Suite{
		title:        title,
		output:       os.Stdout,
		showProgress: true,
	}
}

// WithOutput sets the writer for progress output.
func (s *Suite) WithOutput(w io.Writer) *Suite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *Suite) WithShowProgress(show bool) *Suite {
	s.showProgress = show
	return s
}

// WithFailFast stops at the first failed check.
func (s *Suite) WithFailFast(failFast bool) *Suite {
	s.failFast = failFast
	return s
}

// Run executes checks in order. A cancelled ctx skips the remaining checks.
func (s *Suite) Run(ctx context.Context, checks []Check) Result {
	start := time.Now()
	steps := make([]Step, 0, len(checks))
	status := make(map[string]StepStatus, len(checks))

	if s.showProgress {
		s.printHeader()
	}

	for _, check := range checks {
		var step Step
		switch {
		case ctx.Err() != nil:
			step = Step{Name: check.Name, Status: StepSkipped, Message: "cancelled"}
		case check.After != "" && status[check.After] != StepPassed:
			step = Step{Name: check.Name, Status: StepSkipped, Message: "requires " + check.After}
		default:
			step = s.runStep(ctx, check)
		}
		if s.showProgress {
			s.printStep(step)
		}
		steps = append(steps, step)
		status[check.Name] = step.Status

		if s.failFast && step.Status == StepFailed {
			break
		}
	}

	result := buildResult(steps, start)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

func (s *Suite) runStep(ctx context.Context, check Check) Step {
	started := time.Now()
	msg, err := check.Run(ctx)
	step := Step{
		Name:    check.Name,
		Status:  StepPassed,
		Message: msg,
		Error:   err,
		Latency: time.Since(started),
	}
	if err != nil {
		step.Status = StepFailed
		if check.Warn {
			step.Status = StepWarning
		}
	}
	return step
}

func buildResult(steps []Step, start time.Time) Result {
	result := Result{Steps: steps, Duration: time.Since(start), Success: true}
	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.Passed++
		case StepFailed:
			result.Failed++
			result.Success = false
		case StepWarning:
			result.Warnings++
		case StepSkipped:
			result.Skipped++
		}
	}
	return result
}

func (s *Suite) printHeader() {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", s.title)
	fmt.Fprintln(s.output)
}

func (s *Suite) printStep(step Step) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	default:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	}

	clr.Fprintf(s.output, "  %s %s", icon, step.Name)
	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)

	if step.Error != nil && step.Status != StepPassed {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

func (s *Suite) printSummary(result Result) {
	fmt.Fprintln(s.output)
	if result.Success {
		ok := color.New(color.FgGreen, color.Bold)
		ok.Fprintf(s.output, "━━━ All Checks Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d in %v)",
			result.Passed, len(result.Steps), result.Duration.Round(time.Millisecond))
		ok.Fprintln(s.output, " ━━━")
	} else {
		fail := color.New(color.FgRed, color.Bold)
		fail.Fprintf(s.output, "━━━ Checks Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)", result.Passed, result.Failed)
		fail.Fprintln(s.output, " ━━━")
	}
	fmt.Fprintln(s.output)
}

// FirstError returns the error of the first failed step, nil if none failed.
func (r Result) FirstError() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			return step.Error
		}
	}
	return nil
}

// Summary returns a one-line description of the run.
func (r Result) Summary() string {
	var sb strings.Builder
	if r.Success {
		sb.WriteString("checks passed: ")
	} else {
		sb.WriteString("checks failed: ")
	}
	fmt.Fprintf(&sb, "%d/%d passed", r.Passed, len(r.Steps))
	if r.Failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", r.Failed)
	}
	if r.Warnings > 0 {
		fmt.Fprintf(&sb, ", %d warnings", r.Warnings)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", r.Skipped)
	}
	return sb.String()
}
