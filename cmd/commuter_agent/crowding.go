package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/commuter-advisor/internal/crowding"
	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/spf13/cobra"
)

var crowdingHour int

var crowdingCmd = &cobra.Command{
	Use:   "crowding",
	Short: "Show how crowded each line is at an hour of the day",
	Long: `Shows the crowding table for the time slot of an hour of the day (0-23).
The current hour is used when --hour is not given. The table comes from the
configured crowding file, or the built-in simulated table.`,
	RunE: runCrowding,
}

func init() {
	crowdingCmd.Flags().IntVar(&crowdingHour, "hour", -1, "Hour of the day, 0-23 (defaults to now)")
	rootCmd.AddCommand(crowdingCmd)
}

func runCrowding(cmd *cobra.Command, _ []string) error {
	hour := time.Now().Hour()
	if cmd.Flags().Changed("hour") {
		if crowdingHour < 0 || crowdingHour > 23 {
			return fmt.Errorf("--hour must be between 0 and 23, got %d", crowdingHour)
		}
		hour = crowdingHour
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// only the crowding table is needed here
	cfg.SurveyCSV = ""

	data, err := loadData(context.Background(), cfg)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintCrowding(hour, data.Crowding.Snapshot(crowding.SlotForHour(hour)))
	return nil
}
