package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustanlys/goptr/internal/context"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goptr.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
policy: object
k: 3
packages:
  - ./...
entry:
  - main
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != PolicyObject {
		t.Errorf("Policy = %v, want object", cfg.Policy)
	}
	if cfg.K != 3 {
		t.Errorf("K = %d, want 3", cfg.K)
	}
	if len(cfg.Entry) != 1 || cfg.Entry[0] != "main" {
		t.Errorf("Entry = %v, want [main]", cfg.Entry)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "policy: insensitive\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.K != def.K {
		t.Errorf("K = %d, want default %d", cfg.K, def.K)
	}
	if len(cfg.Packages) != len(def.Packages) {
		t.Errorf("Packages = %v, want default %v", cfg.Packages, def.Packages)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown policy", content: "policy: supersensitive\n", wantErr: "unknown context policy"},
		{name: "negative k", content: "policy: callsite\nk: -1\n", wantErr: "k must not be negative"},
		{name: "no packages", content: "packages: []\n", wantErr: "no packages"},
		{name: "not yaml", content: "{{{", wantErr: "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load on a missing file did not fail")
	}
}

func TestPolicyRoundTrip(t *testing.T) {
	for _, p := range []Policy{PolicyInsensitive, PolicyCallSite, PolicyObject, PolicyType, PolicyHybrid} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", p, err)
		}
		var back Policy
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != p {
			t.Errorf("round trip %v -> %s -> %v", p, text, back)
		}
	}
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		policy Policy
		want   context.Strategy
	}{
		{PolicyInsensitive, context.Insensitive{}},
		{PolicyCallSite, context.CallString{K: 2}},
		{PolicyObject, context.ObjectSensitive{K: 2}},
		{PolicyType, context.TypeSensitive{K: 2}},
		{PolicyHybrid, context.HybridSensitive{K: 2}},
	}
	for _, tt := range tests {
		cfg := Config{Policy: tt.policy, K: 2}
		got, err := cfg.Strategy()
		if err != nil {
			t.Fatalf("Strategy(%v): %v", tt.policy, err)
		}
		if got != tt.want {
			t.Errorf("Strategy(%v) = %#v, want %#v", tt.policy, got, tt.want)
		}
	}

	if _, err := (&Config{}).Strategy(); err == nil {
		t.Error("zero policy did not fail")
	}
}
