package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/schedule"
)

var (
	scheduleAt     string
	holidayWorking bool
)

const scheduleDateFmt = "2006-01-02"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect and manage the agent's availability calendar",
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the availability summary",
	RunE: withResolver(func(cmd *cobra.Command, args []string, r *schedule.Resolver) error {
		text, err := r.AvailabilityText(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}),
}

var scheduleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a moment falls inside business hours",
	RunE: withResolver(func(cmd *cobra.Command, args []string, r *schedule.Resolver) error {
		at, err := parseAt()
		if err != nil {
			return err
		}

		open, err := r.IsBusinessHours(cmd.Context(), at)
		if err != nil {
			return err
		}
		if open {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: open\n", at.Format(time.RFC3339))
			return nil
		}

		next, err := r.NextAvailableSlot(cmd.Context(), at)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: closed, next slot %s\n", at.Format(time.RFC3339), next.Format(time.RFC3339))
		return nil
	}),
}

var scheduleSetHoursCmd = &cobra.Command{
	Use:   "set-hours <day 0-6> <start HH:MM> <end HH:MM>",
	Short: "Set the working window for one weekday",
	Args:  cobra.ExactArgs(3),
	RunE: withResolver(func(cmd *cobra.Command, args []string, r *schedule.Resolver) error {
		day, err := strconv.Atoi(args[0])
		if err != nil || day < 0 || day > 6 {
			return eris.Errorf("invalid day %q, want 0 (Sunday) through 6 (Saturday)", args[0])
		}
		return r.UpdateBusinessHours(cmd.Context(), time.Weekday(day), args[1], args[2])
	}),
}

var scheduleHolidayAddCmd = &cobra.Command{
	Use:   "holiday-add <date YYYY-MM-DD> <name>",
	Short: "Register a holiday",
	Args:  cobra.MinimumNArgs(2),
	RunE: withResolver(func(cmd *cobra.Command, args []string, r *schedule.Resolver) error {
		date, err := time.Parse(scheduleDateFmt, args[0])
		if err != nil {
			return eris.Wrapf(err, "invalid date %q", args[0])
		}
		return r.AddHoliday(cmd.Context(), date, strings.Join(args[1:], " "), holidayWorking)
	}),
}

var scheduleHolidayRemoveCmd = &cobra.Command{
	Use:   "holiday-remove <date YYYY-MM-DD>",
	Short: "Remove a holiday",
	Args:  cobra.ExactArgs(1),
	RunE: withResolver(func(cmd *cobra.Command, args []string, r *schedule.Resolver) error {
		date, err := time.Parse(scheduleDateFmt, args[0])
		if err != nil {
			return eris.Wrapf(err, "invalid date %q", args[0])
		}
		return r.RemoveHoliday(cmd.Context(), date)
	}),
}

// withResolver opens the store and hands a schedule resolver to the run
// function, closing the store afterwards.
func withResolver(run func(cmd *cobra.Command, args []string, r *schedule.Resolver) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return run(cmd, args, schedule.NewResolver(s))
	}
}

func parseAt() (time.Time, error) {
	if scheduleAt == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, scheduleAt)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "invalid --at value %q", scheduleAt)
	}
	return at, nil
}

func init() {
	scheduleCheckCmd.Flags().StringVar(&scheduleAt, "at", "", "moment to check, RFC 3339 (default now)")
	scheduleHolidayAddCmd.Flags().BoolVar(&holidayWorking, "working", false, "mark the date as a working holiday")

	scheduleCmd.AddCommand(scheduleShowCmd, scheduleCheckCmd, scheduleSetHoursCmd, scheduleHolidayAddCmd, scheduleHolidayRemoveCmd)
	rootCmd.AddCommand(scheduleCmd)
}
