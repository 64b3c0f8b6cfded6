package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/commuter-advisor/internal/insights"
	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/spf13/cobra"
)

var summarizeSurveyCmd = &cobra.Command{
	Use:   "summarize-survey",
	Short: "Summarize a survey responses CSV export",
	Long: `Aggregates a survey export into the summary the advisor quotes: top
frustrations, average departure hour and age, primary transport, perceived
peak crowding and openness to an advice app.`,
	RunE: runSummarizeSurvey,
}

var (
	summarizeCSV    string
	summarizeFormat string
)

func init() {
	summarizeSurveyCmd.Flags().StringVar(&summarizeCSV, "csv", "", "Path to the survey CSV (defaults to survey_csv from config)")
	summarizeSurveyCmd.Flags().StringVar(&summarizeFormat, "format", "box", "Output format: box, text or json")
	rootCmd.AddCommand(summarizeSurveyCmd)
}

func runSummarizeSurvey(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("csv") {
		cfg.SurveyCSV = summarizeCSV
	}

	summary, err := insights.Load(cfg.SurveyCSV)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch summarizeFormat {
	case "box":
		observability.NewPrinter(out).PrintSurveySummary(summary)
	case "text":
		_, _ = fmt.Fprint(out, summary.Text())
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		return fmt.Errorf("unknown format %q: use box, text or json", summarizeFormat)
	}
	return nil
}
