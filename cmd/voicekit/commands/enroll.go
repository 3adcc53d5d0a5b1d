package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicekit/pkg/speakerid"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <owner> <locator>...",
	Short: "Add enrollment samples for an owner",
	Long: `Add one or more voice samples to an owner's enrollment.

Locators may be plain paths, file:// URLs, s3://bucket/key URLs, or
media-source:// paths resolved under the configured media root.

Examples:
  voicekit enroll alice /srv/samples/alice1.wav
  voicekit enroll alice s3://samples/alice2.wav media-source://media_source/local/alice3.wav`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		for _, locator := range args[1:] {
			cfg.Samples = append(cfg.Samples, speakerid.VoiceSample{
				OwnerID:      owner,
				AudioLocator: locator,
			})
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Enrolled %d sample(s) for %s (%d total)\n",
			len(args)-1, labelStyle.Render(owner), len(cfg.Samples))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}
