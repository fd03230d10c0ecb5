package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/logging"
)

var (
	classifyImage     bool
	classifyRulesOnly bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <query>",
	Short: "Show which agent a query would be routed to",
	Long: `Runs the keyword rules on a query and, when they do not decide, asks the
configured model. Use --rules-only to skip the model entirely.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		var (
			in     intent.Intent
			source string
		)
		ruled := intent.ClassifyByRules(query, classifyImage)
		switch {
		case ruled != intent.General || classifyRulesOnly:
			in, source = ruled, "rules"
		default:
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			defer logger.Sync()

			oracle, err := createOracleFromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating oracle: %w", err)
			}
			in, source = intent.NewClassifier(oracle, logger).Classify(cmd.Context(), query, classifyImage), "model"
		}

		bold := color.New(color.Bold)
		bold.Printf("%s", in)
		fmt.Printf(" %s\n", color.HiBlackString("(%s)", source))
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyImage, "image", false, "treat the query as having an attached image")
	classifyCmd.Flags().BoolVar(&classifyRulesOnly, "rules-only", false, "never call the model")
	rootCmd.AddCommand(classifyCmd)
}
