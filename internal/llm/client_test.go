package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Take the "), genai.Text("M2 at 1 PM. ")}}},
		},
	}

	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Take the M2 at 1 PM.", text)
}

func TestExtractTextFromResponse_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"blank text", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractTextFromResponse(tt.resp)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestGenerateError(t *testing.T) {
	var v any
	syntaxErr := json.Unmarshal([]byte("{not json"), &v)
	require.Error(t, syntaxErr)

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"syntax error", fmt.Errorf("transport: %w", syntaxErr), ErrUnreadableResponse},
		{"type error", &json.UnmarshalTypeError{Value: "number", Type: reflect.TypeOf("")}, ErrUnreadableResponse},
		{"truncated body", io.ErrUnexpectedEOF, ErrUnreadableResponse},
		{"blocked", &genai.BlockedError{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}}, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := generateError(tt.err)
			assert.ErrorIs(t, err, tt.expected)
			assert.ErrorIs(t, err, tt.err, "the cause stays reachable")
		})
	}

	err := generateError(errors.New("connection refused"))
	assert.NotErrorIs(t, err, ErrUnreadableResponse)
	assert.NotErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, err.Error(), "failed to generate content")
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "carrier-pigeon"}, "key")
	assert.Error(t, err)
}
