package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/jonathan/commuter-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		err      error
		expected int
		message  string
	}{
		{
			name:     "ErrSessionNotFound",
			err:      &ErrSessionNotFound{SessionID: id},
			expected: http.StatusNotFound,
			message:  "session not found: " + id.String(),
		},
		{
			name:     "ErrSessionMismatch",
			err:      &ErrSessionMismatch{SessionID: id},
			expected: http.StatusForbidden,
			message:  "token does not grant access to session " + id.String(),
		},
		{
			name:     "ErrWrongPhase",
			err:      &ErrWrongPhase{Phase: session.PhaseChatting, Message: "done"},
			expected: http.StatusConflict,
			message:  "done (phase: chatting)",
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "hour", Message: "must be 0-23"},
			expected: http.StatusBadRequest,
			message:  "validation error: hour - must be 0-23",
		},
		{
			name:     "ErrUnavailable",
			err:      &ErrUnavailable{Feature: "profile statistics"},
			expected: http.StatusServiceUnavailable,
			message:  "profile statistics is not available",
		},
		{
			name:     "unknown error",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
			message:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestTranslateError(t *testing.T) {
	id := uuid.New()

	err := translateError(id, "", fmt.Errorf("lookup: %w", session.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))

	err = translateError(id, session.PhaseChatting, session.ErrQuestionnaireComplete)
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	err = translateError(id, session.PhaseQuestions, session.ErrQuestionnaireIncomplete)
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	err = translateError(id, session.PhaseQuestions, &survey.ErrUnknownOption{Key: "departure-time", Value: "noon"})
	var ve *ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "departure-time", ve.Field)

	err = translateError(id, "", (&types.ChatRequest{}).Validate())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Message", ve.Field)
	assert.Contains(t, ve.Message, "required")

	plain := errors.New("db down")
	assert.Equal(t, plain, translateError(id, "", plain))
}
