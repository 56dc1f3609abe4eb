package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/linuxmatters/heartbeatsart/internal/prompt"
)

func TestColorHelpListsPalette(t *testing.T) {
	k, err := kong.New(&CLI, cliVars())
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}

	var help string
	for _, f := range k.Model.Node.Flags {
		if f.Name == "color" {
			help = f.Help
		}
	}
	if help == "" {
		t.Fatal("no --color flag")
	}

	for _, c := range prompt.Colors {
		if !strings.Contains(help, string(c)) {
			t.Errorf("--color help %q is missing %s", help, c)
		}
	}

	// every name the help offers must parse
	names := strings.TrimPrefix(help, "Mood colour: ")
	for _, name := range strings.Split(names, ", ") {
		if _, err := prompt.ParseColor(name); err != nil {
			t.Errorf("--color help offers %q: %v", name, err)
		}
	}
}

func TestOutputLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.jpg")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	if got, want := outputLine(path), path+" (2.0 KB)"; got != want {
		t.Errorf("outputLine = %q, want %q", got, want)
	}

	missing := filepath.Join(t.TempDir(), "absent.png")
	if got := outputLine(missing); got != missing {
		t.Errorf("outputLine(missing) = %q, want the bare path", got)
	}
}
