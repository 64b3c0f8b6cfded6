// Package session tracks a rider's conversation: the questionnaire, the
// resulting commuter profile and the advice chat that follows.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/survey"
)

// Phase is the stage of a conversation
type Phase string

// Conversation phases
const (
	PhaseQuestions Phase = "questions"
	PhaseChatting  Phase = "chatting"
)

// Role identifies who wrote a message
type Role string

// Message roles
const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// Bot messages sent once the profile is known
const (
	profileAnnouncement = "Based on your answers, your profile is: **%s**."
	chatInvitation      = "Now you can ask me for personalized travel advice!"
)

var (
	// ErrNotFound is returned for unknown session IDs
	ErrNotFound = errors.New("session not found")
	// ErrQuestionnaireComplete is returned when answering after the last question
	ErrQuestionnaireComplete = errors.New("questionnaire already completed")
	// ErrQuestionnaireIncomplete is returned when chatting before the profile is known
	ErrQuestionnaireIncomplete = errors.New("questionnaire not completed yet")
	// ErrEmptyMessage is returned for blank chat messages
	ErrEmptyMessage = errors.New("message is empty")
)

// Message is a single chat message
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one rider's conversation
type Session struct {
	ID        uuid.UUID         `json:"id"`
	Phase     Phase             `json:"phase"`
	Asked     int               `json:"asked"`
	Answers   map[string]string `json:"answers"`
	Profile   profile.ID        `json:"profile,omitempty"`
	Rule      string            `json:"rule,omitempty"`
	Messages  []Message         `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// New starts a conversation at the first question
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Phase:     PhaseQuestions,
		Answers:   make(map[string]string),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CurrentQuestion returns the question awaiting an answer, if any
func (s *Session) CurrentQuestion() (survey.Question, bool) {
	if s.Phase != PhaseQuestions {
		return survey.Question{}, false
	}
	qs := survey.Questions()
	if s.Asked < 0 || s.Asked >= len(qs) {
		return survey.Question{}, false
	}
	return qs[s.Asked], true
}

// Answer records the answer (UI label or canonical value) to the current
// question. After the last answer the profile is classified exactly once,
// the profile messages are posted and the session moves to chatting.
func (s *Session) Answer(answer string, now time.Time) error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return ErrQuestionnaireComplete
	}

	value, err := survey.Normalize(q.Key, answer)
	if err != nil {
		return err
	}

	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[q.Key] = value
	s.Asked++
	s.UpdatedAt = now

	if s.Asked == survey.Count() {
		s.complete(now)
	}
	return nil
}

func (s *Session) complete(now time.Time) {
	// every stored answer is already normalised, so no errors are possible
	answers, _ := survey.Collect(s.Answers)
	s.Profile, s.Rule = profile.Explain(answers)
	s.Phase = PhaseChatting
	s.AddMessage(RoleBot, fmt.Sprintf(profileAnnouncement, s.Profile.DisplayName()), now)
	s.AddMessage(RoleBot, chatInvitation, now)
}

// AddMessage appends a message to the history
func (s *Session) AddMessage(role Role, content string, now time.Time) Message {
	m := Message{Role: role, Content: content, CreatedAt: now}
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = now
	return m
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.Messages = append([]Message{}, s.Messages...)
	return &c
}
