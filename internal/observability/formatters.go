// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/insights"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/survey"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintProfile outputs the profile a set of answers was classified into.
// rule is omitted when empty.
func (p *Printer) PrintProfile(id profile.ID, rule string) {
	meta, ok := profile.Describe(id)
	if !ok {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", meta.Name))
	if rule != "" {
		sb.WriteString(fmt.Sprintf("Rule:     %s\n", rule))
	}
	sb.WriteString("\n")

	for _, line := range wrap(meta.Description, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	if len(meta.Traits) > 0 {
		sb.WriteString("\nTraits:\n")
		for _, trait := range meta.Traits {
			sb.WriteString(fmt.Sprintf("  • %s\n", trait))
		}
	}

	p.printBox("COMMUTER PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnswers outputs canonical answers in questionnaire order, shown by
// their questionnaire labels
func (p *Printer) PrintAnswers(answers map[string]string) {
	if len(answers) == 0 {
		return
	}

	var sb strings.Builder
	for _, q := range survey.Questions() {
		label := "(no answer)"
		if value, ok := answers[q.Key]; ok {
			label = q.LabelFor(value)
		}
		sb.WriteString(fmt.Sprintf("%-20s %s\n", q.Key+":", label))
	}

	p.printBox("SURVEY ANSWERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCrowding outputs every line's crowding for an hour of the day.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCrowding(hour int, readings []crowding.LineReading) {
	if len(readings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("No crowding data for %02d:00", hour))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hour %02d:00, slot %s\n\n", hour, readings[0].Slot))
	for _, r := range readings {
		sb.WriteString(fmt.Sprintf("%-6s %3d%%  %-6s %s\n", r.Line, r.Percentage, r.Level, r.Status))
	}

	p.printBox("LINE CROWDING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSurveySummary outputs the aggregated survey findings.
func (p *Printer) PrintSurveySummary(summary *insights.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Respondents:        %d\n", summary.Respondents))
	sb.WriteString(fmt.Sprintf("Avg departure hour: %.1f\n", summary.AvgDepartureHour))
	sb.WriteString(fmt.Sprintf("Avg age:            %.1f\n", summary.AvgAge))
	sb.WriteString(fmt.Sprintf("Primary transport:  %s\n", summary.PrimaryTransport))
	sb.WriteString(fmt.Sprintf("Open to the app:    %d\n", summary.OpenToApp))

	if len(summary.TopFrustrations) > 0 {
		sb.WriteString("\nTop frustrations:\n")
		count := min(len(summary.TopFrustrations), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := summary.TopFrustrations[i]
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", c.Value, c.Count))
		}
		if len(summary.TopFrustrations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.TopFrustrations)-maxItemsToShow))
		}
	}

	if len(summary.CrowdLevels) > 0 {
		sb.WriteString("\nPeak crowding:\n")
		for _, c := range summary.CrowdLevels {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", c.Value, c.Count))
		}
	}

	p.printBox("SURVEY SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines no longer than width, breaking on spaces
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
