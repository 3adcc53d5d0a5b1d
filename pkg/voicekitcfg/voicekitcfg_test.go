package voicekitcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/voicekit/pkg/speakerid"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendLocal || cfg.MinConfidence != 0.6 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Backend = BackendRemote
	cfg.RemoteAddress = "http://127.0.0.1:8090"
	cfg.MinConfidence = 0.75
	cfg.Samples = []speakerid.VoiceSample{
		{OwnerID: "alice", AudioLocator: "media-source://media_source/local/alice.wav"},
		{OwnerID: "alice", AudioLocator: "s3://samples/alice2.wav"},
		{OwnerID: "bob", AudioLocator: "/srv/samples/bob.wav"},
	}
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Backend != BackendRemote || got.RemoteAddress != "http://127.0.0.1:8090" {
		t.Errorf("got = %+v", got)
	}
	if got.MinConfidence != 0.75 {
		t.Errorf("MinConfidence = %v", got.MinConfidence)
	}
	if len(got.Samples) != 3 || got.Samples[1].AudioLocator != "s3://samples/alice2.wav" {
		t.Errorf("Samples = %+v", got.Samples)
	}
}

func TestSaveKeepsZeroMinConfidence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.MinConfidence = 0
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MinConfidence != 0 {
		t.Errorf("MinConfidence = %v, want 0", got.MinConfidence)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "cloud" }, "unknown backend"},
		{"remote without address", func(c *Config) { c.Backend = BackendRemote }, "remote_address"},
		{"confidence range", func(c *Config) { c.MinConfidence = 1.5 }, "out of range"},
		{"sample without owner", func(c *Config) {
			c.Samples = []speakerid.VoiceSample{{AudioLocator: "a.wav"}}
		}, "owner_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.ModelPath = "/models/eres2net.bin"
			tc.mut(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: cloud\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected validation error")
	}
}
