// Package survey defines the questionnaire used to build a commuter profile
// and maps the option labels shown to users onto canonical answer values.
package survey

import (
	"fmt"
	"strings"

	"github.com/jonathan/commuter-advisor/internal/profile"
)

// Option is a selectable answer: the label shown in the UI and the
// canonical value passed to the classifier.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is a single multiple-choice survey question.
type Question struct {
	Key     string   `json:"key"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// questions is the fixed order in which the questionnaire is asked.
var questions = []Question{
	{
		Key:  profile.KeyDepartureTime,
		Text: "What time do you usually leave for work/school?",
		Options: []Option{
			{Label: "Before 9:00 AM", Value: string(profile.DepartureBeforeNine)},
			{Label: "9:00 AM or later", Value: string(profile.DepartureNineOrLater)},
		},
	},
	{
		Key:  profile.KeyCommuteFrequency,
		Text: "How many days per week do you typically commute?",
		Options: []Option{
			{Label: "1-2 days", Value: string(profile.Frequency1To2)},
			{Label: "3-4 days", Value: string(profile.Frequency3To4)},
			{Label: "5+ days", Value: string(profile.Frequency5Plus)},
			{Label: "I work remotely", Value: string(profile.FrequencyRemote)},
		},
	},
	{
		Key:  profile.KeyCrowdingExperience,
		Text: "How crowded is your usual bus or train during peak hours?",
		Options: []Option{
			{Label: "Not crowded", Value: string(profile.CrowdingNone)},
			{Label: "Slightly crowded", Value: string(profile.CrowdingSlight)},
			{Label: "Very crowded", Value: string(profile.CrowdingVery)},
			{Label: "Overcrowded", Value: string(profile.CrowdingOverfull)},
		},
	},
	{
		Key:  profile.KeyChangeWillingness,
		Text: "If you knew your usual bus was full, would you change your departure time? (1='Definitely not', 5='Definitely')",
		Options: []Option{
			{Label: "1", Value: "1"},
			{Label: "2", Value: "2"},
			{Label: "3", Value: "3"},
			{Label: "4", Value: "4"},
			{Label: "5", Value: "5"},
		},
	},
	{
		Key:  profile.KeyFullBusResponse,
		Text: "If your usual bus arrived 90% full, what would you most likely do?",
		Options: []Option{
			{Label: "Wait for the next one", Value: string(profile.ResponseWaitNext)},
			{Label: "Change my travel time", Value: string(profile.ResponseChangeTime)},
			{Label: "Switch to a different line", Value: string(profile.ResponseSwitchLine)},
			{Label: "Board anyway", Value: string(profile.ResponseBoardAnyway)},
			{Label: "Cancel or delay the trip", Value: string(profile.ResponseCancelDelay)},
		},
	},
}

// Greeting opens the questionnaire ahead of the first question.
const Greeting = "Hello! I'm your Urbanvind Commuter Chatbot. To get started, I need to understand your travel habits."

// Questions returns the questionnaire in the order it is asked.
func Questions() []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]Option(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Count is the number of questions in the questionnaire.
func Count() int {
	return len(questions)
}

// Lookup returns the question with the given canonical key.
func Lookup(key string) (Question, bool) {
	for _, q := range questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// ErrUnknownQuestion is returned for answers to a question that does not exist.
type ErrUnknownQuestion struct {
	Key string
}

func (e *ErrUnknownQuestion) Error() string {
	return fmt.Sprintf("unknown survey question: %s", e.Key)
}

// ErrUnknownOption is returned when an answer matches none of a question's options.
type ErrUnknownOption struct {
	Key   string
	Value string
}

func (e *ErrUnknownOption) Error() string {
	return fmt.Sprintf("%q is not a valid answer for %s", e.Value, e.Key)
}

// Normalize maps a UI label or canonical value for the given question to
// its canonical value. Matching ignores case and surrounding whitespace.
func Normalize(key, answer string) (string, error) {
	q, ok := Lookup(key)
	if !ok {
		return "", &ErrUnknownQuestion{Key: key}
	}

	needle := fold(answer)
	for _, opt := range q.Options {
		if fold(opt.Label) == needle || fold(opt.Value) == needle {
			return opt.Value, nil
		}
	}
	return "", &ErrUnknownOption{Key: key, Value: answer}
}

// OptionAt resolves a 1-based option number, as typed at a terminal prompt.
func (q Question) OptionAt(n int) (Option, bool) {
	if n < 1 || n > len(q.Options) {
		return Option{}, false
	}
	return q.Options[n-1], true
}

// LabelFor returns the UI label of a canonical value, or the value itself.
func (q Question) LabelFor(value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
