package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"asciivid/internal/config"
	"asciivid/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	input      string
}

// setupCLITestEnv writes a config whose ffprobe reports an 8x4 stream of
// frames frames and whose ffmpeg emits them as raw gray bytes.
func setupCLITestEnv(t *testing.T, frames int, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("FFMPEG_BINARY", "")
	t.Setenv("FFPROBE_BINARY", "")
	t.Chdir(base)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithFFprobeScript(testsupport.ProbeScript(8, 4, frames, "30/1")),
		testsupport.WithFFmpegScript(testsupport.RawFramesScript(8, 4, frames)),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(base, "asciivid-test.toml")
	writeTestConfig(t, configPath, cfg)

	input := filepath.Join(base, "clip.avi")
	testsupport.WriteFile(t, input)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		input:      input,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
