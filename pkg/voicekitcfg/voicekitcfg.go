// Package voicekitcfg provides the file-based configuration layer for
// voicekit.
//
// Configuration is stored under os.UserConfigDir()/voicekit/:
//
//	~/Library/Application Support/voicekit/   (macOS)
//	~/.config/voicekit/                       (Linux)
//	%AppData%/voicekit/                       (Windows)
//
// A single config.yaml holds the backend selection, the enrollment sample
// list, and the attribution threshold. Saves are atomic (write to a temp
// file, then rename), so concurrent readers never observe a torn file.
package voicekitcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/voicekit/pkg/speakerid"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "voicekit"

	// configFile is the configuration filename.
	configFile = "config.yaml"
)

// Backend kinds accepted by [Config.Backend].
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config is the persistent voicekit configuration.
type Config struct {
	// Backend selects the embedding backend: "local" or "remote".
	Backend string `yaml:"backend"`

	// ModelPath is the local model file, required for the local backend.
	ModelPath string `yaml:"model_path,omitempty"`

	// RemoteAddress is the scoring service base URL, required for the
	// remote backend (e.g. "http://127.0.0.1:8090").
	RemoteAddress string `yaml:"remote_address,omitempty"`

	// MediaRoot is the directory media-source locators resolve under.
	MediaRoot string `yaml:"media_root,omitempty"`

	// S3Region overrides the AWS region used for s3:// locators. When
	// empty the SDK's default resolution chain applies.
	S3Region string `yaml:"s3_region,omitempty"`

	// S3Endpoint points s3:// locators at an S3-compatible service such
	// as MinIO. Path-style addressing is used when set.
	S3Endpoint string `yaml:"s3_endpoint,omitempty"`

	// MinConfidence is the speaker attribution threshold. Written without
	// omitempty so an explicit 0 survives a save/load round trip.
	MinConfidence float32 `yaml:"min_confidence"`

	// Samples is the enrollment sample list: one owner per entry, owners
	// may appear more than once.
	Samples []speakerid.VoiceSample `yaml:"samples,omitempty"`

	// path is where the config was loaded from.
	path string `yaml:"-"`
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Backend:       BackendLocal,
		MinConfidence: 0.6,
	}
}

// Load reads the configuration from the default location. A missing file
// yields [Default], not an error.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("voicekitcfg: cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir, configFile))
}

// LoadFrom reads the configuration from path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("voicekitcfg: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("voicekitcfg: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		// model_path may be empty here; the backend factory reports a
		// clear error when the model is actually needed.
	case BackendRemote:
		if c.RemoteAddress == "" {
			return fmt.Errorf("voicekitcfg: remote backend requires remote_address")
		}
	case "":
		return fmt.Errorf("voicekitcfg: backend must be %q or %q", BackendLocal, BackendRemote)
	default:
		return fmt.Errorf("voicekitcfg: unknown backend %q", c.Backend)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("voicekitcfg: min_confidence %v out of range [0,1]", c.MinConfidence)
	}
	for i, s := range c.Samples {
		if s.OwnerID == "" {
			return fmt.Errorf("voicekitcfg: sample %d has no owner_id", i)
		}
		if s.AudioLocator == "" {
			return fmt.Errorf("voicekitcfg: sample %d (%s) has no audio locator", i, s.OwnerID)
		}
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Save writes the configuration back to its path atomically.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("voicekitcfg: config has no path")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("voicekitcfg: marshal config: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("voicekitcfg: create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, configFile+".*")
	if err != nil {
		return fmt.Errorf("voicekitcfg: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("voicekitcfg: write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("voicekitcfg: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("voicekitcfg: replace config: %w", err)
	}
	return nil
}
