package db

import (
	"testing"
	"time"

	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DB must satisfy the session store used by the manager
var _ session.Store = (*DB)(nil)

func TestRowRoundTrip_Classified(t *testing.T) {
	now := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	s := session.New(now)
	for _, label := range []string{"Before 9:00 AM", "5+ days", "Slightly crowded", "1", "Board anyway"} {
		require.NoError(t, s.Answer(label, now))
	}

	row, err := toRow(s)
	require.NoError(t, err)
	require.NotNil(t, row.Profile)
	assert.Equal(t, "PeakRoutineCommuter", *row.Profile)
	assert.JSONEq(t, `{
		"departure-time": "before-9am",
		"commute-frequency": "5+-days",
		"crowding-experience": "slightly-crowded",
		"change-willingness": "1",
		"full-bus-response": "board-anyway"
	}`, string(row.Answers))

	got, err := row.toSession()
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, session.PhaseChatting, got.Phase)
	assert.Equal(t, profile.PeakRoutineCommuter, got.Profile)
	assert.Equal(t, s.Rule, got.Rule)
	assert.Equal(t, s.Answers, got.Answers)
	assert.Empty(t, got.Messages, "messages are stored separately")
}

func TestRowRoundTrip_Unclassified(t *testing.T) {
	s := session.New(time.Now())

	row, err := toRow(s)
	require.NoError(t, err)
	assert.Nil(t, row.Profile)
	assert.Nil(t, row.Rule)

	got, err := row.toSession()
	require.NoError(t, err)
	assert.Equal(t, session.PhaseQuestions, got.Phase)
	assert.Empty(t, got.Profile)
	assert.NotNil(t, got.Answers)
}

func TestToSession_BadAnswers(t *testing.T) {
	row := SessionRow{Phase: "questions", Answers: []byte("{not json")}

	_, err := row.toSession()
	assert.Error(t, err)
}
