package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/schemas"
	"github.com/jonathan/commuter-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withClassifyOutput(t *testing.T, explain, asJSON bool) {
	t.Helper()
	oldExplain, oldJSON := classifyExplain, classifyJSON
	classifyExplain, classifyJSON = explain, asJSON
	t.Cleanup(func() { classifyExplain, classifyJSON = oldExplain, oldJSON })
}

func TestReadAnswersFile(t *testing.T) {
	path := writeFile(t, "answers.json", `{
  "departure-time": "9am-or-later",
  "change-willingness": 4,
  "full-bus-response": "wait-next"
}`)

	raw, err := readAnswersFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		profile.KeyDepartureTime:     "9am-or-later",
		profile.KeyChangeWillingness: "4",
		profile.KeyFullBusResponse:   "wait-next",
	}, raw)
}

func TestReadAnswersFile_SchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"label instead of value", `{"departure-time": "Before 9:00 AM"}`},
		{"willingness out of range", `{"change-willingness": 6}`},
		{"unknown key", `{"favourite-line": "M1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAnswersFile(writeFile(t, "answers.json", tt.content))
			require.Error(t, err)
			var ve *schemas.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestReadAnswersFile_Missing(t *testing.T) {
	_, err := readAnswersFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestWriteClassification_JSON(t *testing.T) {
	withClassifyOutput(t, false, true)

	var buf bytes.Buffer
	require.NoError(t, writeClassification(&buf, profile.LateResponder, "late-responder", nil))

	var resp types.ClassifyResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, string(profile.LateResponder), resp.Profile)
	assert.Empty(t, resp.Rule, "rule is only shown with --explain")
}

func TestWriteClassification_Box(t *testing.T) {
	withClassifyOutput(t, true, false)

	var buf bytes.Buffer
	answers := map[string]string{profile.KeyDepartureTime: "9am-or-later"}
	require.NoError(t, writeClassification(&buf, profile.AdaptiveMiddayRider, profile.FallbackRule, answers))

	output := buf.String()
	assert.Contains(t, output, "SURVEY ANSWERS")
	assert.Contains(t, output, "9:00 AM or later")
	assert.Contains(t, output, "COMMUTER PROFILE")
	assert.Contains(t, output, "Rule:     "+profile.FallbackRule)
}
