package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/commuter-advisor/internal/advisor"
	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoResponder struct {
	err error
}

func (e *echoResponder) Respond(_ context.Context, message string, id profile.ID) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "advice for " + string(id) + ": " + message, nil
}

func runChatScript(t *testing.T, responder session.Responder, printer func(*bytes.Buffer) *observability.Printer, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	m := session.NewManager(session.ManagerOptions{Responder: responder, Fallback: advisor.FallbackReply})

	var p *observability.Printer
	if printer != nil {
		p = printer(&out)
	}

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, chatLoop(context.Background(), in, &out, m, p))
	return out.String()
}

func TestChatLoop_FullConversation(t *testing.T) {
	output := runChatScript(t, &echoResponder{}, nil,
		"1",                // Before 9:00 AM
		"5+ days",          // by label
		"slightly CROWDED", // case-insensitive
		"1",
		"5", // Cancel or delay the trip
		"When should I leave?",
		"quit",
	)

	assert.Contains(t, output, survey.Greeting)
	assert.Contains(t, output, "  1. Before 9:00 AM")
	assert.Contains(t, output, "your profile is: **Peak Routine Commuter**")
	assert.Contains(t, output, "advice for PeakRoutineCommuter: When should I leave?")
	assert.Contains(t, output, "Goodbye!")
}

func TestChatLoop_RepromptsOnUnknownOption(t *testing.T) {
	output := runChatScript(t, &echoResponder{}, nil, "Noon", "9", "quit")

	assert.Equal(t, 2, strings.Count(output, "Please choose one of the listed options."))
	// the first question is asked again after each bad answer
	assert.Equal(t, 3, strings.Count(output, "  1. Before 9:00 AM"))
}

func TestChatLoop_FallbackReply(t *testing.T) {
	output := runChatScript(t, &echoResponder{err: errors.New("quota exceeded")}, nil,
		"2", "2", "3", "4", "2", "Is the M1 busy?")

	assert.Contains(t, output, "Flexible Avoider")
	assert.Contains(t, output, advisor.ReplyUnavailable)
}

func TestChatLoop_EndOfInput(t *testing.T) {
	output := runChatScript(t, &echoResponder{}, nil, "1")

	assert.Contains(t, output, survey.Questions()[1].Text)
	assert.NotContains(t, output, "Goodbye!")
}

func TestChatLoop_VerbosePrintsProfile(t *testing.T) {
	output := runChatScript(t, &echoResponder{}, func(b *bytes.Buffer) *observability.Printer {
		return observability.NewPrinter(b)
	}, "1", "3", "1", "1", "5", "exit")

	assert.Contains(t, output, "COMMUTER PROFILE")
	assert.Contains(t, output, "Rule:     peak-routine-commuter")
}

func TestResolveOption(t *testing.T) {
	q := survey.Questions()[0]

	assert.Equal(t, "Before 9:00 AM", resolveOption(q, "1"))
	assert.Equal(t, "9:00 AM or later", resolveOption(q, "2"))
	assert.Equal(t, "3", resolveOption(q, "3"))
	assert.Equal(t, "before-9am", resolveOption(q, "before-9am"))
}

func TestIsQuit(t *testing.T) {
	for _, s := range []string{"quit", "EXIT", "Bye"} {
		assert.True(t, isQuit(s), s)
	}
	assert.False(t, isQuit("quite busy"))
}
