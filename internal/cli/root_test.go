package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// localEnvForTest isolates HOME and the service environment and returns
// a database path for --db.
func localEnvForTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("RAPIDAPI_KEY", "")
	t.Setenv("WM_DATASET", "")
	t.Setenv("WM_DB", "")
	t.Setenv("WM_SERVER_URL", "")
	t.Setenv("WM_API_KEY", "")
	return filepath.Join(tmp, "wm.db")
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sub := range []string{"search", "individuals", "show", "history", "keys", "serve"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help does not list %q", sub)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	for _, name := range []string{"db", "dataset", "remote", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestArgs(t *testing.T) {
	localEnvForTest(t)

	tests := []struct {
		name string
		args []string
	}{
		{"search needs a query", []string{"search"}},
		{"show needs a name", []string{"show"}},
		{"keys delete needs an id", []string{"keys", "delete"}},
		{"keys delete rejects non-numeric id", []string{"keys", "delete", "abc"}},
		{"history flags are exclusive", []string{"history", "--clear", "--views"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("out = %q, want %q", out, Version)
	}
}
