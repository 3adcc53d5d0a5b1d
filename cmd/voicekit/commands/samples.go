package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List enrolled samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Samples) == 0 {
			fmt.Println(dimStyle.Render("no samples enrolled"))
			return nil
		}
		byOwner := make(map[string][]string)
		var owners []string
		for _, s := range cfg.Samples {
			if _, seen := byOwner[s.OwnerID]; !seen {
				owners = append(owners, s.OwnerID)
			}
			byOwner[s.OwnerID] = append(byOwner[s.OwnerID], s.AudioLocator)
		}
		for _, owner := range owners {
			fmt.Println(labelStyle.Render(owner))
			for _, locator := range byOwner[owner] {
				fmt.Printf("  %s\n", locator)
			}
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", labelStyle.Render("backend:"), cfg.Backend)
		if cfg.RemoteAddress != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("remote_address:"), cfg.RemoteAddress)
		}
		if cfg.ModelPath != "" {
			fmt.Printf("%s %s\n", labelStyle.Render("model_path:"), cfg.ModelPath)
		}
		fmt.Printf("%s %.2f\n", labelStyle.Render("min_confidence:"), cfg.MinConfidence)
		fmt.Printf("%s %d\n", labelStyle.Render("samples:"), len(cfg.Samples))
		if cfg.Path() != "" {
			fmt.Println(dimStyle.Render(cfg.Path()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(configCmd)
}
