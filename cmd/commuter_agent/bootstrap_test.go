package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/commuter-advisor/internal/config"
	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/llm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = `"What is your age?","What time do you usually leave for work/school?","What is your primary mode of transportation?","How crowded is your usual bus during peak hours?","What issues frustrate you most about Almere Bus line?","Would you be open to using an app that gives personal travel advice based on real-time crowd levels?"
24,07:30,Bus,Very crowded,Delays,Yes
31,08:00,Bus,Overcrowded,Crowding,Yes
45,09:15,Car,Slightly crowded,Delays,No
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://env")

	path := writeFile(t, "config.yaml", "api_key: file-key\nport: 9090\n")
	withConfigPath(t, path)

	cfg, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, config.DefaultSurveyCSV, cfg.SurveyCSV)
	assert.Equal(t, config.DefaultStandardModel, cfg.Model)
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	withConfigPath(t, "")

	cfg, err := loadConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	withConfigPath(t, writeFile(t, "config.json", `{"temperature": 7}`))

	_, err := loadConfig(&cobra.Command{})
	assert.Error(t, err)

	withConfigPath(t, filepath.Join(t.TempDir(), "missing.json"))
	_, err = loadConfig(&cobra.Command{})
	assert.Error(t, err)
}

func TestLoadData(t *testing.T) {
	table := `{"M9": {"7 AM": {"status": "not crowded", "percentage": 12}}}`
	cfg := config.Config{
		SurveyCSV:    writeFile(t, "survey.csv", surveyCSV),
		CrowdingFile: writeFile(t, "crowding.json", table),
	}

	data, err := loadData(context.Background(), cfg)
	require.NoError(t, err)

	require.NotNil(t, data.Summary)
	assert.Equal(t, 3, data.Summary.Respondents)
	assert.Equal(t, []string{"M9"}, data.Crowding.Lines())
}

func TestLoadData_Defaults(t *testing.T) {
	cfg := config.Config{SurveyCSV: filepath.Join(t.TempDir(), "missing.csv")}

	data, err := loadData(context.Background(), cfg)
	require.NoError(t, err)

	assert.Nil(t, data.Summary)
	assert.Equal(t, crowding.Default(), data.Crowding)
}

func TestLoadData_BadCrowdingFile(t *testing.T) {
	cfg := config.Config{CrowdingFile: writeFile(t, "crowding.json", `{"M1": "busy"}`)}

	_, err := loadData(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLLMConfig(t *testing.T) {
	lc := llmConfig(config.Config{
		Model:         "custom-model",
		Temperature:   0.9,
		RetryAttempts: 2,
	})

	assert.Equal(t, "custom-model", lc.GetModel(llm.TierStandard))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), lc.GetModel(llm.TierLite))
	assert.InDelta(t, 0.9, lc.Temperature, 0.0001)
	assert.Equal(t, 2, lc.Retry.MaxAttempts)

	defaults := llmConfig(config.Config{})
	assert.Equal(t, llm.DefaultConfig(), defaults)
}

func TestNewAdvisor_RequiresAPIKey(t *testing.T) {
	_, _, err := newAdvisor(context.Background(), config.Config{}, &appData{Crowding: crowding.Default()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
