package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesStarterConfig(t *testing.T) {
	dir := t.TempDir()

	cmd := newInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read config.yaml: %v", err)
	}
	got := string(body)
	checks := []string{
		"port: 3978",
		"backend: memory",
		"detail_intent: beerPreference",
		"detail_threshold: 0.75",
		"cancel_intent: Utilities_Cancel",
		"help_intent: Utilities_Help",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Fatalf("config missing %q\nconfig:\n%s", want, got)
		}
	}

	// A second run must not clobber an existing config.
	cmd = newInitCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("init overwrote an existing config")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "testerbot") {
		t.Fatalf("version output = %q", out.String())
	}
}
