package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Call.OutgoingTimeout != 30*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Call.ICESoftLimit != 20 || cfg.Call.ICEHardLimit != 50 || cfg.Call.ICECleanupInterval != 10*time.Second {
		t.Fatalf("ice defaults = %+v", cfg.Call)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("VOICE_CALL_OUTGOING_TIMEOUT", "45s")
	t.Setenv("VOICE_PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Call.OutgoingTimeout != 45*time.Second || cfg.Port != 9090 {
		t.Fatalf("env override ignored: timeout=%s port=%d", cfg.Call.OutgoingTimeout, cfg.Port)
	}
}

func TestLoadFileWithFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "softphone.yaml")
	yaml := []byte(`
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: u
    credential: p
client:
  server_url: ws://relay.example.org/api/ws/signal
  identity: file@example.org
`)
	if err := os.WriteFile(file, yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("softphone", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("client.identity", "", "")
	if err := flags.Parse([]string{"--config", file, "--client.identity", "alice@example.org"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFlags(flags)
	if err != nil {
		t.Fatalf("LoadWithFlags: %v", err)
	}
	if cfg.Client.Identity != "alice@example.org" {
		t.Fatalf("flag did not override file: %q", cfg.Client.Identity)
	}
	if cfg.Client.ServerURL != "ws://relay.example.org/api/ws/signal" {
		t.Fatalf("server_url = %q", cfg.Client.ServerURL)
	}
	if len(cfg.ICEServers) != 1 || cfg.ICEServers[0].Username != "u" {
		t.Fatalf("ice_servers = %+v", cfg.ICEServers)
	}
}

func TestValidateRejectsInvertedLimits(t *testing.T) {
	cfg := Config{
		RateLimit: RateLimit{PerSecond: 1, Burst: 1},
		Call:      Call{OutgoingTimeout: time.Second, ICESoftLimit: 60, ICEHardLimit: 50},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for soft limit above hard limit")
	}
}
