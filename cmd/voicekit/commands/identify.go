package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicekit/pkg/audio/wav"
	"github.com/haivivi/voicekit/pkg/speakerid"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <file.wav>",
	Short: "Identify the speaker in an audio file",
	Long: `Train the engine from the enrolled samples, then identify the
speaker in the given WAV file and print per-owner scores.

Examples:
  voicekit identify utterance.wav`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Samples) == 0 {
			return fmt.Errorf("no samples enrolled; use 'voicekit enroll' first")
		}

		backend, err := newBackend(cfg)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		resolver, err := newResolver(ctx, cfg)
		if err != nil {
			return err
		}
		engine := speakerid.NewEngine(backend, resolver)
		defer engine.Close()

		if err := engine.Train(ctx, cfg.Samples); err != nil {
			return err
		}
		if !engine.Trained() {
			return fmt.Errorf("no enrollment sample was usable")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		audio, err := wav.Decode(f)
		f.Close()
		if err != nil {
			return err
		}

		res, err := engine.Recognize(ctx, audio.Data, audio.SampleRate)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Println(dimStyle.Render("no speaker recognized"))
			return nil
		}

		fmt.Printf("%s %s  (%.4f)\n\n",
			labelStyle.Render("speaker:"), res.OwnerID, res.Confidence)
		owners := make([]string, 0, len(res.Scores))
		for owner := range res.Scores {
			owners = append(owners, owner)
		}
		sort.Slice(owners, func(i, j int) bool {
			return res.Scores[owners[i]] > res.Scores[owners[j]]
		})
		for _, owner := range owners {
			printScore(owner, res.Scores[owner], owner == res.OwnerID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}
