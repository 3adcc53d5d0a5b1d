package commands

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/haivivi/voicekit/pkg/speakerid"
	"github.com/haivivi/voicekit/pkg/storage"
	"github.com/haivivi/voicekit/pkg/voicekitcfg"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "voicekit",
	Short: "Speaker enrollment and identification",
	Long: `voicekit - enroll voice samples and identify speakers.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/voicekit/config.yaml
  Linux:   ~/.config/voicekit/config.yaml
  Windows: %AppData%/voicekit/config.yaml

Examples:
  # Enroll two samples for alice
  voicekit enroll alice /srv/samples/alice1.wav s3://samples/alice2.wav

  # Identify the speaker in an utterance
  voicekit identify utterance.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration honoring the --config flag.
func loadConfig() (*voicekitcfg.Config, error) {
	if configPath != "" {
		return voicekitcfg.LoadFrom(configPath)
	}
	return voicekitcfg.Load()
}

// newBackend builds the embedding backend selected by the configuration.
func newBackend(cfg *voicekitcfg.Config) (speakerid.Backend, error) {
	switch cfg.Backend {
	case voicekitcfg.BackendRemote:
		return speakerid.NewRemote(cfg.RemoteAddress), nil
	case voicekitcfg.BackendLocal:
		return nil, fmt.Errorf("no local model runtime is linked into this build; set 'backend: remote' and point remote_address at a scoring service")
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newResolver builds the sample locator resolver from the configuration.
// Plain paths and file:// locators resolve against the filesystem root so
// absolute locators keep working when media_root is set; media-source://
// locators get their own store rooted at media_root.
func newResolver(ctx context.Context, cfg *voicekitcfg.Config) (*storage.Resolver, error) {
	local, err := storage.NewLocal("/")
	if err != nil {
		return nil, fmt.Errorf("open filesystem store: %w", err)
	}

	var opts []storage.ResolverOption
	if cfg.MediaRoot != "" {
		media, err := storage.NewLocal(cfg.MediaRoot)
		if err != nil {
			return nil, fmt.Errorf("open media root: %w", err)
		}
		opts = append(opts, storage.WithMediaRoot(media))
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}
	opts = append(opts, storage.WithS3(client))

	return storage.NewResolver(local, opts...), nil
}

// newS3Client builds the client behind s3:// locators from the default
// AWS credential chain, honoring the optional s3_region and s3_endpoint
// overrides (the latter for S3-compatible services such as MinIO).
func newS3Client(ctx context.Context, cfg *voicekitcfg.Config) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
