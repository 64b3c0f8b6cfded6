package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"github.com/jonathan/commuter-advisor/internal/schemas"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/jonathan/commuter-advisor/internal/types"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a set of survey answers into a commuter profile",
	Long: `Classifies survey answers given as flags or as a JSON answers file.
Answers may be option labels ("Before 9:00 AM") or canonical values
("before-9am"). Missing answers count as no signal; flags override values
from --answers.`,
	RunE: runClassify,
}

var (
	classifyAnswersFile string
	classifyDeparture   string
	classifyFrequency   string
	classifyCrowding    string
	classifyWillingness int
	classifyResponse    string
	classifyExplain     bool
	classifyJSON        bool
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyAnswersFile, "answers", "a", "", "Path to a JSON answers file with canonical values")
	classifyCmd.Flags().StringVar(&classifyDeparture, profile.KeyDepartureTime, "", "When the rider usually leaves")
	classifyCmd.Flags().StringVar(&classifyFrequency, profile.KeyCommuteFrequency, "", "How many days a week the rider commutes")
	classifyCmd.Flags().StringVar(&classifyCrowding, profile.KeyCrowdingExperience, "", "How crowded the rider's bus usually is")
	classifyCmd.Flags().IntVar(&classifyWillingness, profile.KeyChangeWillingness, 0, "Willingness to change travel time, 1 to 5")
	classifyCmd.Flags().StringVar(&classifyResponse, profile.KeyFullBusResponse, "", "What the rider does when the bus is full")
	classifyCmd.Flags().BoolVar(&classifyExplain, "explain", false, "Show the rule that chose the profile")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	raw := map[string]string{}

	if classifyAnswersFile != "" {
		fromFile, err := readAnswersFile(classifyAnswersFile)
		if err != nil {
			return err
		}
		raw = fromFile
	}

	flagValues := map[string]string{
		profile.KeyDepartureTime:      classifyDeparture,
		profile.KeyCommuteFrequency:   classifyFrequency,
		profile.KeyCrowdingExperience: classifyCrowding,
		profile.KeyFullBusResponse:    classifyResponse,
	}
	if cmd.Flags().Changed(profile.KeyChangeWillingness) {
		flagValues[profile.KeyChangeWillingness] = strconv.Itoa(classifyWillingness)
	}
	for key, value := range flagValues {
		if cmd.Flags().Changed(key) {
			raw[key] = value
		}
	}

	answers, errs := survey.Collect(raw)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	id, rule := profile.Explain(answers)
	return writeClassification(cmd.OutOrStdout(), id, rule, survey.ToMap(answers))
}

// readAnswersFile loads a JSON answers file after checking it against the
// embedded answers schema.
func readAnswersFile(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file %s: %w", path, err)
	}

	if err := schemas.Validate(schemas.Answers, content); err != nil {
		return nil, fmt.Errorf("invalid answers file %s: %w", path, err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(content, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}

	raw := make(map[string]string, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case string:
			raw[key] = v
		case float64:
			raw[key] = strconv.Itoa(int(v))
		}
	}
	return raw, nil
}

func writeClassification(out io.Writer, id profile.ID, rule string, answers map[string]string) error {
	if !classifyExplain {
		rule = ""
	}

	if classifyJSON {
		meta, _ := profile.Describe(id)
		resp := types.ClassifyResponse{
			Profile:     string(id),
			Name:        meta.Name,
			Description: meta.Description,
			Traits:      meta.Traits,
			Rule:        rule,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printer := observability.NewPrinter(out)
	if classifyExplain {
		printer.PrintAnswers(answers)
	}
	printer.PrintProfile(id, rule)
	return nil
}
