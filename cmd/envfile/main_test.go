package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envfile"
)

// chdir switches the working directory for the test and restores it on
// cleanup. testing.T.Chdir requires Go 1.24; this keeps older toolchains
// working.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

var sampleEntries = []envfile.Entry{
	{Key: "ZEBRA", Value: "stripes"},
	{Key: "APPLE", Value: "red"},
}

func TestFormatEntries(t *testing.T) {
	t.Run("env preserves file order", func(t *testing.T) {
		out, err := formatEntries(sampleEntries, formatEnv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "ZEBRA=stripes\nAPPLE=red\n" {
			t.Fatalf("unexpected env output: %q", out)
		}
	})

	t.Run("json round trips", func(t *testing.T) {
		out, err := formatEntries(sampleEntries, formatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded map[string]string
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if decoded["ZEBRA"] != "stripes" || decoded["APPLE"] != "red" {
			t.Fatalf("unexpected JSON content: %v", decoded)
		}
	})

	t.Run("yaml round trips", func(t *testing.T) {
		out, err := formatEntries(sampleEntries, formatYAML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded map[string]string
		if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("invalid YAML output: %v", err)
		}
		if decoded["ZEBRA"] != "stripes" || decoded["APPLE"] != "red" {
			t.Fatalf("unexpected YAML content: %v", decoded)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := formatEntries(sampleEntries, "toml"); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		got, ok := resolve("/etc/app/.env")
		if !ok || got != "/etc/app/.env" {
			t.Fatalf("resolve = (%q, %v)", got, ok)
		}
	})

	t.Run("falls back to upward search", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, ".env")
		if err := os.WriteFile(path, []byte("KEY=value\n"), 0644); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		chdir(t, root)

		got, ok := resolve("")
		if !ok {
			t.Fatalf("expected .env to be found")
		}
		wantReal, _ := filepath.EvalSymlinks(path)
		gotReal, _ := filepath.EvalSymlinks(got)
		if gotReal != wantReal {
			t.Fatalf("resolve = %q, want %q", got, path)
		}
	})
}
