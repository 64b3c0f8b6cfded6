// Package advisor composes profile-aware prompts and relays the model's
// travel advice.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/insights"
	"github.com/jonathan/commuter-advisor/internal/llm"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/prompts"
	"go.uber.org/zap"
)

// ErrEmptyMessage is returned for blank user messages
var ErrEmptyMessage = errors.New("message is empty")

// User-facing replies used when the model cannot answer
const (
	ReplyUnavailable = "I'm currently unable to connect to my knowledge base. Please try again later."
	ReplyBadFormat   = "I'm sorry, I couldn't generate a response due to an unexpected API format."
	ReplyUnreadable  = "I'm sorry, I received an unreadable response from my knowledge base."
)

// Options configures an Advisor
type Options struct {
	// SurveySummary is the rendered survey paragraph; empty means no data.
	SurveySummary string
	Crowding      crowding.Table
	Tier          llm.ModelTier
	Clock         func() time.Time
	Logger        *zap.Logger
}

// Advisor answers rider questions using the configured model
type Advisor struct {
	client   llm.Client
	summary  string
	crowding crowding.Table
	tier     llm.ModelTier
	now      func() time.Time
	logger   *zap.Logger
}

// New creates an Advisor. Unset options fall back to the simulated crowding
// table, the standard tier, the wall clock and a no-op logger.
func New(client llm.Client, opts Options) *Advisor {
	a := &Advisor{
		client:   client,
		summary:  opts.SurveySummary,
		crowding: opts.Crowding,
		tier:     opts.Tier,
		now:      opts.Clock,
		logger:   opts.Logger,
	}
	if strings.TrimSpace(a.summary) == "" {
		a.summary = insights.NoDataText
	}
	if a.crowding == nil {
		a.crowding = crowding.Default()
	}
	if a.tier == "" {
		a.tier = llm.TierStandard
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// CurrentSlot returns the crowding time slot for the advisor's clock
func (a *Advisor) CurrentSlot() string {
	return crowding.SlotForHour(a.now().Hour())
}

// Crowding returns the crowding table the advisor shares with the model
func (a *Advisor) Crowding() crowding.Table {
	return a.crowding
}

// BuildPrompt composes the full prompt for a user message and profile.
func (a *Advisor) BuildPrompt(message string, id profile.ID) (string, error) {
	meta, ok := profile.Describe(id)
	if !ok {
		meta = profile.Metadata{Name: string(id), Description: "unknown", Traits: []string{"unknown"}}
	}

	return prompts.Render(prompts.AdvisorFile, prompts.AdvisorChat, map[string]string{
		"SurveySummary":      a.summary,
		"ProfileName":        meta.Name,
		"ProfileDescription": meta.Description,
		"ProfileTraits":      meta.TraitsText(),
		"TimeSlot":           a.CurrentSlot(),
		"CrowdingData":       a.crowding.JSON(),
		"UserMessage":        message,
	})
}

// Respond sends the composed prompt to the model and returns its reply.
func (a *Advisor) Respond(ctx context.Context, message string, id profile.ID) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	prompt, err := a.BuildPrompt(message, id)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	start := a.now()
	reply, err := a.client.GenerateContent(ctx, prompt, a.tier)
	if err != nil {
		a.logger.Warn("advice generation failed",
			zap.String("profile", string(id)),
			zap.String("model", a.client.GetModel(a.tier)),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}

	a.logger.Debug("advice generated",
		zap.String("profile", string(id)),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("reply_chars", len(reply)),
		zap.Duration("elapsed", a.now().Sub(start)))

	return reply, nil
}

// FallbackReply turns a Respond error into the message shown to the rider,
// so a failed model call never ends the conversation.
func FallbackReply(err error) string {
	switch {
	case errors.Is(err, llm.ErrUnreadableResponse):
		return ReplyUnreadable
	case errors.Is(err, llm.ErrEmptyResponse):
		return ReplyBadFormat
	default:
		return ReplyUnavailable
	}
}
