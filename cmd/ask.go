package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/krishisaarathi/internal/dispatch"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

var (
	askUID   string
	askImage string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the advisor a question on behalf of a registered farmer",
	Long: `Runs a query through the same pipeline as POST /query: classification,
the matching agent, speech (when enabled) and the interaction log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if askUID == "" {
			return fmt.Errorf("--uid is required")
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		answer, err := a.dispatcher.Handle(cmd.Context(), dispatch.Query{
			UID:       askUID,
			QueryText: strings.Join(args, " "),
			ImageURL:  askImage,
		})
		if err != nil {
			return err
		}

		if askJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(answer)
		}
		printAnswer(answer)
		return nil
	},
}

func printAnswer(a *dispatch.Answer) {
	priority := color.New(color.FgGreen)
	switch a.Priority {
	case structure.UrgencyHigh:
		priority = color.New(color.FgRed, color.Bold)
	case structure.UrgencyMedium:
		priority = color.New(color.FgYellow)
	}

	color.New(color.FgCyan, color.Bold).Printf("[%s] ", a.Intent)
	priority.Printf("priority %s\n\n", a.Priority)
	fmt.Println(a.Text)

	if a.AudioURL != "" {
		fmt.Printf("\n%s %s\n", color.HiBlackString("audio:"), a.AudioURL)
	}
	if b := a.Recommendations; b != nil {
		printSection("Weather alerts", b.WeatherAlerts)
		printSection("Crop care", b.CropCare)
		printSection("Market", b.MarketTips)
		printSection("Schemes", b.SchemeTips)
		printSection("Try next", b.RelatedActions)
	}
}

func printSection(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Println()
	color.New(color.Bold).Println(title)
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}

func init() {
	askCmd.Flags().StringVar(&askUID, "uid", "", "farmer user ID (required)")
	askCmd.Flags().StringVar(&askImage, "image", "", "URL of a crop photo")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the raw answer as JSON")
	rootCmd.AddCommand(askCmd)
}
