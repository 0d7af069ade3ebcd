package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndestination_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "destination"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandShowsHelp(t *testing.T) {
	out, err := runCommand(t)
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	if !strings.Contains(out, "shuttle") || !strings.Contains(out, "queue") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestAddAndListQueue(t *testing.T) {
	configPath := writeTestConfig(t)
	media := filepath.Join(t.TempDir(), "Movie.Title.2021.mkv")
	if err := os.WriteFile(media, []byte("payload"), 0o644); err != nil {
		t.Fatalf("seed media: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "add", media)
	if err != nil {
		t.Fatalf("add failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "queued") {
		t.Fatalf("expected queued confirmation, got %q", out)
	}

	out, err = runCommand(t, "--config", configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Movie.Title.2021.mkv") || !strings.Contains(out, "pending") {
		t.Fatalf("expected pending item in listing, got %q", out)
	}
}

func TestAddRejectsUnsupportedFiles(t *testing.T) {
	configPath := writeTestConfig(t)
	doc := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(doc, []byte("text"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := runCommand(t, "--config", configPath, "add", doc); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}

func TestQueueClearAndStats(t *testing.T) {
	configPath := writeTestConfig(t)
	media := filepath.Join(t.TempDir(), "Show.S01E01.mkv")
	if err := os.WriteFile(media, []byte("payload"), 0o644); err != nil {
		t.Fatalf("seed media: %v", err)
	}

	if out, err := runCommand(t, "--config", configPath, "add", media); err != nil {
		t.Fatalf("add failed: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", configPath, "queue", "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "pending") {
		t.Fatalf("expected stats table, got %q", out)
	}

	out, err = runCommand(t, "--config", configPath, "queue", "clear")
	if err != nil {
		t.Fatalf("clear failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "removed 1 items") {
		t.Fatalf("expected one removal, got %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, err := runCommand(t, "--config", target, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config looks wrong: %q", data)
	}
}
