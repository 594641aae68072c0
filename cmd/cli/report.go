package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/gridrisk/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/gridrisk/internal/infrastructure/secrets"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Report on persisted risk profiles",
	}

	tiersCmd := &cobra.Command{
		Use:   "tiers",
		Short: "Show the distribution of persisted profiles per severity tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console", OutputPath: "stderr"})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := secrets.ApplyDatabasePassword(ctx, cfg, log); err != nil {
				return err
			}
			db, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.TierReport(ctx)
			if err != nil {
				return err
			}
			printTierReport(cmd, rows)
			return nil
		},
	}

	reportCmd.AddCommand(tiersCmd)
	return reportCmd
}

func printTierReport(cmd *cobra.Command, rows []postgres.TierSummary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tENTITIES\tAVG\tMAX\tLAST SCORED")
	var total int64
	for _, r := range rows {
		total += r.Entities
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%s\n",
			r.Tier, r.Entities, r.AvgScore, r.MaxScore, r.LastScored.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "TOTAL\t%d\t\t\t\n", total)
	_ = w.Flush()
}
