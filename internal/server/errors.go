package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/jonathan/commuter-advisor/internal/survey"
)

// ErrSessionNotFound indicates the session does not exist
type ErrSessionNotFound struct {
	SessionID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrSessionMismatch indicates the token belongs to another session
type ErrSessionMismatch struct {
	SessionID uuid.UUID
}

func (e *ErrSessionMismatch) Error() string {
	return fmt.Sprintf("token does not grant access to session %s", e.SessionID)
}

// ErrWrongPhase indicates the request does not fit the conversation's phase
type ErrWrongPhase struct {
	Phase   session.Phase
	Message string
}

func (e *ErrWrongPhase) Error() string {
	return fmt.Sprintf("%s (phase: %s)", e.Message, e.Phase)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a feature whose backing service is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not available", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrSessionNotFound:
		return http.StatusNotFound
	case *ErrSessionMismatch:
		return http.StatusForbidden
	case *ErrWrongPhase:
		return http.StatusConflict
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// translateError maps domain errors onto the typed errors above.
// Errors it does not recognise are returned unchanged.
func translateError(id uuid.UUID, phase session.Phase, err error) error {
	var optErr *survey.ErrUnknownOption
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.Is(err, session.ErrNotFound):
		return &ErrSessionNotFound{SessionID: id}
	case errors.Is(err, session.ErrQuestionnaireComplete):
		return &ErrWrongPhase{Phase: phase, Message: "all questions are already answered"}
	case errors.Is(err, session.ErrQuestionnaireIncomplete):
		return &ErrWrongPhase{Phase: phase, Message: "answer the questionnaire before asking for advice"}
	case errors.Is(err, session.ErrEmptyMessage):
		return &ErrValidation{Field: "message", Message: err.Error()}
	case errors.As(err, &optErr):
		return &ErrValidation{Field: optErr.Key, Message: optErr.Error()}
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed on '%s' rule", fe.Tag())}
	}
	return err
}
