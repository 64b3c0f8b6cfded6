// Package types provides the request and response shapes of the HTTP API.
package types

import (
	"github.com/go-playground/validator/v10"
)

// MaxMessageLength bounds a single chat message
const MaxMessageLength = 2000

// AnswerRequest submits the answer to a session's current question.
// The answer may be the option label shown to the rider or its canonical value.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=100"`
}

// ChatRequest sends a rider message once the profile is known.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ClassifyRequest carries a full or partial set of survey answers.
// Each string field accepts an option label or a canonical value; missing
// fields count as "no signal".
type ClassifyRequest struct {
	DepartureTime      string `json:"departure-time,omitempty" validate:"omitempty,max=100"`
	CommuteFrequency   string `json:"commute-frequency,omitempty" validate:"omitempty,max=100"`
	CrowdingExperience string `json:"crowding-experience,omitempty" validate:"omitempty,max=100"`
	ChangeWillingness  int    `json:"change-willingness,omitempty" validate:"omitempty,min=1,max=5"`
	FullBusResponse    string `json:"full-bus-response,omitempty" validate:"omitempty,max=100"`
	Explain            bool   `json:"explain,omitempty"`
}

// ClassifyResponse is the profile chosen for a ClassifyRequest.
type ClassifyResponse struct {
	Profile     string   `json:"profile"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
	Rule        string   `json:"rule,omitempty"`
}

// ProfileStat is the number of sessions classified into one profile.
type ProfileStat struct {
	Profile  string `json:"profile"`
	Name     string `json:"name"`
	Sessions int64  `json:"sessions"`
}

// Validate validates the AnswerRequest using the validator.
func (r *AnswerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ClassifyRequest using the validator.
func (r *ClassifyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
