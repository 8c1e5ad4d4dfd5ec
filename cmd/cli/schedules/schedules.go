package schedules

import (
	"fmt"
	"time"

	"github.com/crucial707/automation-schedules/cmd/cli/config"
	"github.com/crucial707/automation-schedules/cmd/cli/output"
	"github.com/crucial707/automation-schedules/cmd/cli/root"
	"github.com/crucial707/automation-schedules/internal/automation"
	"github.com/crucial707/automation-schedules/internal/gapfill"
	"github.com/crucial707/automation-schedules/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// config key -> flag name for fill and plan
var fillFlags = map[string]string{
	"account":     "account",
	"interval":    "interval",
	"segments":    "segment",
	"create_rate": "create-rate",
}

// ==========================
// Init Schedules
// ==========================
func InitSchedules(cli *root.CLI) {

	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "List and fill recurring schedules",
	}

	schedulesCmd.AddCommand(
		fillCmd(cli, false),
		fillCmd(cli, true),
		listCmd(cli),
	)

	cli.Cmd.AddCommand(schedulesCmd)
}

// ==========================
// FILL / PLAN
// ==========================
func fillCmd(cli *root.CLI, planOnly bool) *cobra.Command {
	var dryRun bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Create the missing minute schedules for an hour interval",
		Long: `Create one schedule per minute of the hour that has no schedule yet for the
given hour interval and falls on at least one segment (divisor=label).
Minute 0 falls on every segment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(cli.Viper, cmd.Flags(), fillFlags); err != nil {
				return err
			}
			cfg, err := config.Load(cli.Viper)
			if err != nil {
				return err
			}
			if cfg.Account == "" {
				return fmt.Errorf("account is required")
			}
			segments, err := gapfill.ParseSegments(cfg.Segments)
			if err != nil {
				return err
			}

			client := automation.NewClient(cfg.APIURL, cfg.Token, automation.WithCreateRate(cfg.CreateRate))
			if err := gapfill.Check(cmd.Context(), gapfill.HostEnvironment{API: client}); err != nil {
				return err
			}

			filler := gapfill.NewFiller(client, cli.Log)
			var report *gapfill.Report
			if planOnly || dryRun {
				report, err = filler.Plan(cmd.Context(), cfg.Account, cfg.Interval, segments)
			} else {
				report, err = filler.FillGaps(cmd.Context(), cfg.Account, cfg.Interval, segments)
			}
			if err != nil {
				return err
			}

			if asJSON {
				if err := output.RenderJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				renderReport(cmd, report)
			}

			if err := report.Err(); err != nil {
				fails := report.Failures()
				return fmt.Errorf("%d of %d schedule creates failed: %w", len(fails), len(fails)+report.Count(gapfill.ActionCreated), err)
			}
			return nil
		},
	}

	if planOnly {
		cmd.Use = "plan"
		cmd.Short = "Show which minute schedules fill would create"
	} else {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the gaps without creating schedules")
	}

	cmd.Flags().String("account", "", "Automation account identifier")
	cmd.Flags().Int("interval", 1, "Hour interval between schedule runs")
	cmd.Flags().StringSlice("segment", nil, "Segment as divisor=label, repeatable (default 2=2min,5=5min,10=10min,15=15min,30=30min)")
	cmd.Flags().Float64("create-rate", 5, "Maximum create calls per second (0 disables pacing)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func renderReport(cmd *cobra.Command, r *gapfill.Report) {
	rows := [][]interface{}{}
	for _, o := range r.Outcomes {
		if o.Action == gapfill.ActionUnmatched {
			continue
		}
		detail := o.Description
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []interface{}{o.Minute, o.Action, o.Name, o.StartTime.Format(time.RFC3339), detail})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"Minute", "Action", "Name", "Start", "Segments"}, rows)

	fmt.Fprintf(cmd.OutOrStdout(), "created %d, planned %d, existing %d, failed %d, unmatched %d\n",
		r.Count(gapfill.ActionCreated),
		r.Count(gapfill.ActionPlanned),
		r.Count(gapfill.ActionExists),
		r.Count(gapfill.ActionFailed),
		r.Count(gapfill.ActionUnmatched),
	)
}

// ==========================
// LIST
// ==========================
func listCmd(cli *root.CLI) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules on an automation account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(cli.Viper, cmd.Flags(), map[string]string{"account": "account"}); err != nil {
				return err
			}
			cfg, err := config.Load(cli.Viper)
			if err != nil {
				return err
			}
			if cfg.Account == "" {
				return fmt.Errorf("account is required")
			}
			// list defaults to every interval, unlike fill
			interval, _ := cmd.Flags().GetInt("interval")

			client := automation.NewClient(cfg.APIURL, cfg.Token)
			list, err := client.ListSchedules(cmd.Context(), cfg.Account, interval)
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), list)
			}

			now := time.Now()
			rows := [][]interface{}{}
			for _, s := range list {
				rows = append(rows, []interface{}{
					s.ID, s.Name, s.HourInterval, s.StartTime.Minute(), CronExpr(s),
					NextRun(s, now).Format(time.RFC3339), s.Description,
				})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Interval", "Minute", "Cron", "Next run", "Description"}, rows)
			return nil
		},
	}

	cmd.Flags().String("account", "", "Automation account identifier")
	cmd.Flags().Int("interval", 0, "Only schedules with this hour interval (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	return cmd
}

// CronExpr returns the standard cron form of an hourly schedule, or "" when the
// hour interval does not divide a day evenly and cron cannot express it.
func CronExpr(s models.Schedule) string {
	if s.HourInterval < 1 || 24%s.HourInterval != 0 {
		return ""
	}
	hour := s.StartTime.Hour() % s.HourInterval
	return fmt.Sprintf("%d %d/%d * * *", s.StartTime.Minute(), hour, s.HourInterval)
}

// NextRun returns the first firing strictly after now.
func NextRun(s models.Schedule, now time.Time) time.Time {
	if now.Before(s.StartTime) {
		return s.StartTime
	}
	if expr := CronExpr(s); expr != "" {
		if sched, err := cron.ParseStandard(expr); err == nil {
			return sched.Next(now.In(s.StartTime.Location()))
		}
	}
	period := time.Duration(s.HourInterval) * time.Hour
	if period <= 0 {
		return s.StartTime
	}
	n := now.Sub(s.StartTime)/period + 1
	return s.StartTime.Add(n * period)
}
