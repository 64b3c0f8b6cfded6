// Package insights summarises the urban mobility survey export that grounds
// the advisor's answers.
package insights

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Survey export column headers
const (
	ColumnFrustrations     = "What issues frustrate you most about Almere Bus line?"
	ColumnDepartureTime    = "What time do you usually leave for work/school?"
	ColumnAge              = "What is your age?"
	ColumnPrimaryTransport = "What is your primary mode of transportation?"
	ColumnPeakCrowding     = "How crowded is your usual bus during peak hours?"
	ColumnAppOpenness      = "Would you be open to using an app that gives personal travel advice based on real-time crowd levels?"
)

// NoDataText is used in prompts when no survey export is available.
const NoDataText = "No survey data available for analysis."

// topFrustrations is how many frustrations are kept in the summary
const topFrustrations = 3

// ErrNoRows is returned when the export has a header but no responses.
var ErrNoRows = errors.New("survey export contains no responses")

// Count is a value with the number of respondents who gave it.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary aggregates the survey responses.
type Summary struct {
	Respondents      int     `json:"respondents"`
	TopFrustrations  []Count `json:"top_frustrations"`
	AvgDepartureHour float64 `json:"avg_departure_hour"`
	AvgAge           float64 `json:"avg_age"`
	PrimaryTransport string  `json:"primary_transport"`
	CrowdLevels      []Count `json:"crowd_levels"`
	OpenToApp        int     `json:"open_to_app"`
}

// MissingColumnError reports a header missing from the export.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("survey export is missing column %q", e.Column)
}

// Load reads and summarises the survey export at path.
func Load(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open survey export %s: %w", path, err)
	}
	defer f.Close()

	summary, err := Summarize(f)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", path, err)
	}
	return summary, nil
}

// Summarize aggregates a survey export read from r.
func Summarize(r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{ColumnFrustrations, ColumnDepartureTime, ColumnAge, ColumnPrimaryTransport, ColumnPeakCrowding, ColumnAppOpenness} {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}

	var (
		frustrations = newCounter()
		transport    = newCounter()
		crowding     = newCounter()
		hours        mean
		ages         mean
		summary      Summary
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", summary.Respondents+2, err)
		}

		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		summary.Respondents++
		frustrations.add(field(ColumnFrustrations))
		transport.add(field(ColumnPrimaryTransport))
		crowding.add(field(ColumnPeakCrowding))

		if h, ok := departureHour(field(ColumnDepartureTime)); ok {
			hours.add(float64(h))
		}
		if age, err := strconv.ParseFloat(field(ColumnAge), 64); err == nil {
			ages.add(age)
		}
		if field(ColumnAppOpenness) == "Yes" {
			summary.OpenToApp++
		}
	}

	if summary.Respondents == 0 {
		return nil, ErrNoRows
	}

	summary.TopFrustrations = frustrations.top(topFrustrations)
	summary.CrowdLevels = crowding.top(0)
	if modes := transport.top(1); len(modes) > 0 {
		summary.PrimaryTransport = modes[0].Value
	}
	summary.AvgDepartureHour = hours.value()
	summary.AvgAge = ages.value()

	return &summary, nil
}

// Text renders the summary paragraph embedded in advisor prompts.
func (s *Summary) Text() string {
	if s == nil {
		return NoDataText
	}

	var sb strings.Builder
	sb.WriteString("Summary of Urban Mobility Survey responses from Almere:\n")
	sb.WriteString(fmt.Sprintf("- The most common frustrations with the bus line are: %s\n", formatCounts(s.TopFrustrations)))
	sb.WriteString(fmt.Sprintf("- The average commuter leaves for work/school around %.0f:00.\n", s.AvgDepartureHour))
	sb.WriteString(fmt.Sprintf("- The most common primary mode of transportation is: %s.\n", s.PrimaryTransport))
	sb.WriteString(fmt.Sprintf("- Commuters perceive peak hour crowding as follows: %s.\n", formatCounts(s.CrowdLevels)))
	sb.WriteString(fmt.Sprintf("- A significant number of people (%d of %d) are open to using a travel advice app.\n", s.OpenToApp, s.Respondents))
	return sb.String()
}

// departureHour reads the hour from the first two characters of a time such
// as "07:30" or "8:15".
func departureHour(s string) (int, bool) {
	if len(s) > 2 {
		s = s[:2]
	}
	s = strings.TrimSuffix(s, ":")
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func formatCounts(counts []Count) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s: %d", c.Value, c.Count)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// counter tallies values, remembering first-seen order for stable ties.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(v string) {
	if v == "" {
		return
	}
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// top returns the n most frequent values, or all of them when n <= 0.
func (c *counter) top(n int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, Count{Value: v, Count: c.counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
