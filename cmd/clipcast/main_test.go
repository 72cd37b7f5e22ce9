package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestRootShowsHelp(t *testing.T) {
	out, _, err := runCLI(t, nil, "")
	if err != nil {
		t.Fatalf("root command: %v", err)
	}
	requireContains(t, out, "clipcast")
	requireContains(t, out, "serve")
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)

	target := filepath.Join(base, "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowRedactsCredentials(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("OPENAI_API_KEY", "sk-secret-value")

	out, _, err := runCLI(t, []string{"config", "show"}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-secret-value") {
		t.Fatal("config show leaked an api key")
	}
	requireContains(t, out, "[set]")
}

func TestStatusListsDependencies(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)

	out, _, _ := runCLI(t, []string{"status"}, "")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Speech synthesizer")
}

func TestProcessRequiresURLArgument(t *testing.T) {
	_, _, err := runCLI(t, []string{"process"}, "")
	if err == nil {
		t.Fatal("expected argument error")
	}
}
