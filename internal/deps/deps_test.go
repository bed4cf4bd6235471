package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present", `echo "present version 1.2"`)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Version != "present version 1.2" || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if !strings.Contains(results[1].Detail, "not found") {
		t.Fatalf("expected detail message for missing binary, got %q", results[1].Detail)
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected unset result %#v", results[2])
	}
}

func TestCheckReportsVersionFailure(t *testing.T) {
	broken := writeStub(t, t.TempDir(), "broken", `echo "missing libavcodec" >&2; exit 1`)
	status := Check(context.Background(), Requirement{Name: "Broken", Command: broken})
	if status.Available {
		t.Fatal("expected failing -version to be unavailable")
	}
	if !strings.Contains(status.Detail, "missing libavcodec") {
		t.Fatalf("expected stderr in detail, got %q", status.Detail)
	}
}

func TestCheckResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "ffprobe", `echo "ffprobe version 7"`)
	t.Setenv("PATH", binDir)

	reqs := MediaRequirements("ffmpeg", "ffprobe")
	results := CheckBinaries(context.Background(), reqs)
	if results[0].Available {
		t.Fatal("ffmpeg is not on PATH")
	}
	if !results[1].Available || results[1].Path != filepath.Join(binDir, "ffprobe") {
		t.Fatalf("expected ffprobe from PATH, got %#v", results[1])
	}
}
