package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/server/middleware"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/jonathan/commuter-advisor/internal/types"
	"go.uber.org/zap"
)

// progress reports how far the questionnaire has got
type progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// sessionView is the API shape of a session
type sessionView struct {
	ID          uuid.UUID         `json:"id"`
	Phase       session.Phase     `json:"phase"`
	Progress    progress          `json:"progress"`
	Question    *survey.Question  `json:"question,omitempty"`
	Answers     map[string]string `json:"answers"`
	Profile     string            `json:"profile,omitempty"`
	ProfileName string            `json:"profile_name,omitempty"`
	Messages    []session.Message `json:"messages"`
}

func newSessionView(s *session.Session) sessionView {
	v := sessionView{
		ID:       s.ID,
		Phase:    s.Phase,
		Progress: progress{Answered: s.Asked, Total: survey.Count()},
		Answers:  s.Answers,
		Messages: s.Messages,
	}
	if q, ok := s.CurrentQuestion(); ok {
		v.Question = &q
	}
	if s.Profile != "" {
		v.Profile = string(s.Profile)
		v.ProfileName = s.Profile.DisplayName()
	}
	return v
}

// handleCreateSession starts a conversation and issues its bearer token
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	token, err := s.tokens.GenerateToken(sess.ID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"greeting": survey.Greeting,
		"session":  newSessionView(sess),
		"token":    token,
	})
}

// authorizedSession returns the path's session ID after checking that the
// bearer token was issued for it.
func (s *Server) authorizedSession(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid session ID"}
	}

	tokenID, err := middleware.GetSessionID(r)
	if err != nil || tokenID != id {
		return uuid.Nil, &ErrSessionMismatch{SessionID: id}
	}
	return id, nil
}

// handleGetSession returns the session state and history
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.authorizedSession(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, translateError(id, "", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionView(sess))
}

// handleAnswer records the answer to the session's current question.
// After the last answer the response carries the profile.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := s.authorizedSession(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req types.AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, translateError(id, "", err))
		return
	}

	sess, err := s.sessions.Answer(r.Context(), id, req.Answer)
	if err != nil {
		s.handleError(w, translateError(id, s.phaseOf(r, id), err))
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionView(sess))
}

// handleMessage sends a rider message to the advisor and returns the reply
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id, err := s.authorizedSession(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, translateError(id, "", err))
		return
	}

	reply, err := s.sessions.Chat(r.Context(), id, req.Message)
	if err != nil {
		s.handleError(w, translateError(id, s.phaseOf(r, id), err))
		return
	}

	s.logger.Debug("advice sent", zap.String("session_id", id.String()), zap.Int("reply_chars", len(reply.Content)))
	s.jsonResponse(w, http.StatusOK, map[string]any{"reply": reply})
}

// phaseOf looks up the session phase for error messages
func (s *Server) phaseOf(r *http.Request, id uuid.UUID) session.Phase {
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return ""
	}
	return sess.Phase
}
