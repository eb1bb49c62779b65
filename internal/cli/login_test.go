package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "wm_abc123def456", false},
		{"empty key", "", true},
		{"missing prefix", "abc123def456", true},
		{"wrong prefix", "xx_abc123", true},
		{"just prefix", "wm_", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAPIKey(%q) err = %v, wantErr = %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestLoginSavesKeyAndServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := saveConfig(CLIConfig{Session: "old"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out bytes.Buffer
	if err := runLogin(strings.NewReader("wm_pasted\n"), &out, "http://myhost:9090"); err != nil {
		t.Fatalf("login: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "wm_pasted" || cfg.ServerURL != "http://myhost:9090" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Session != "" {
		t.Errorf("session = %q, want reset for a new server", cfg.Session)
	}
}

func TestLoginRejectsBadKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	if err := runLogin(strings.NewReader("not-a-key"), &out, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogoutClearsKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := CLIConfig{APIKey: "wm_testkey123", ServerURL: "http://myhost:9090", Session: "s"}
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out bytes.Buffer
	if err := runLogout(&out); err != nil {
		t.Fatalf("logout: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.APIKey != "" || loaded.Session != "" {
		t.Errorf("cfg = %+v, want key and session cleared", loaded)
	}
	if loaded.ServerURL != "http://myhost:9090" {
		t.Errorf("server_url = %q, want preserved after logout", loaded.ServerURL)
	}
}

func TestLogoutWhenNotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	if err := runLogout(&out); err != nil {
		t.Fatalf("logout with no config: %v", err)
	}
	if !strings.Contains(out.String(), "Not logged in.") {
		t.Errorf("out = %q", out.String())
	}
}
