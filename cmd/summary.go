package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/krishisaarathi/internal/progress"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
)

var summaryVoice string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate daily farming summaries",
}

var summaryPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Generate today's summary for every subscribed farmer",
	Long: `Generates and stores today's summary for every farmer with the daily
summary preference on. Intended to run once a morning from cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, err := a.summaries.Push(ctx, progress.NewReporter(os.Stderr))
		if err != nil {
			return err
		}

		fmt.Printf("%d of %d summaries generated\n", report.Succeeded, report.Total)
		if len(report.Failed) > 0 {
			color.Red("Failed: %s", strings.Join(report.Failed, ", "))
		}
		return nil
	},
}

var summaryGenerateCmd = &cobra.Command{
	Use:   "generate <uid>",
	Short: "Generate today's summary for one farmer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.summaries.Generate(cmd.Context(), args[0], speech.ParseGender(summaryVoice))
		if err != nil {
			return err
		}

		color.New(color.Bold).Printf("Summary for %s (%s)\n\n", rec.UID, rec.Date)
		fmt.Println(rec.Summary)
		if rec.AudioURL != "" {
			fmt.Printf("\n%s %s\n", color.HiBlackString("audio:"), rec.AudioURL)
		}
		return nil
	},
}

func init() {
	summaryGenerateCmd.Flags().StringVar(&summaryVoice, "voice", "FEMALE", "voice for the audio (MALE or FEMALE)")
	summaryCmd.AddCommand(summaryPushCmd, summaryGenerateCmd)
	rootCmd.AddCommand(summaryCmd)
}
