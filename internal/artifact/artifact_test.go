package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSeparatorLine(t *testing.T) {
	if got := SeparatorLine('~', 4); got != "~~~~" {
		t.Fatalf("unexpected separator %q", got)
	}
	if got := SeparatorLine('~', 0); got != "" {
		t.Fatalf("expected empty separator, got %q", got)
	}
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"~", '~', false},
		{"=", '=', false},
		{"", 0, true},
		{"~~", 0, true},
		{" ", 0, true},
		{"\t", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeparator(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseSeparator(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseSeparator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 3, '~')
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteFrame(" .:\n-=+"); err != nil {
		t.Fatalf("WriteFrame 0: %v", err)
	}
	if err := w.WriteFrame("@@@\n%%%"); err != nil {
		t.Fatalf("WriteFrame 1: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := " .:\n-=+\n~~~\n@@@\n%%%\n~~~\n"
	if buf.String() != want {
		t.Fatalf("unexpected artifact:\n%q\nwant:\n%q", buf.String(), want)
	}
	if w.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", w.Frames())
	}
}

func TestWriterRejectsCollisionAndBadRows(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, 3, '=')
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteFrame("..:\n==="); !errors.Is(err, ErrSeparatorCollision) {
		t.Fatalf("expected ErrSeparatorCollision, got %v", err)
	}
	if err := w.WriteFrame("..\n..."); err == nil {
		t.Fatal("expected width mismatch error")
	}
	if err := w.WriteFrame(""); err == nil {
		t.Fatal("expected empty frame error")
	}
	if w.Frames() != 0 {
		t.Fatalf("rejected frames must not count, got %d", w.Frames())
	}
	if _, err := NewWriter(&bytes.Buffer{}, 0, '~'); err == nil {
		t.Fatal("expected width error")
	}
	if _, err := NewWriter(&bytes.Buffer{}, 3, ' '); err == nil {
		t.Fatal("expected separator error")
	}
}

func TestRoundTrip(t *testing.T) {
	frames := []string{
		" .:-\n=+*#\n%@@@",
		"@@@@\n    \n.:.:",
		"####\n####\n####",
	}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 4, DefaultSeparator)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := Split(buf.String(), ReadOptions{Width: 4})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(got) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(got))
	}
	for i := range frames {
		if got[i] != frames[i] {
			t.Fatalf("frame %d mismatch: %q vs %q", i, got[i], frames[i])
		}
	}

	inferred, err := Split(buf.String(), ReadOptions{})
	if err != nil {
		t.Fatalf("Split with inferred width: %v", err)
	}
	if len(inferred) != len(frames) {
		t.Fatalf("expected %d frames with inferred width, got %d", len(frames), len(inferred))
	}
}

func TestSplitLegacySeparator(t *testing.T) {
	text := "ab\ncd\n==\nef\ngh\n==\n"
	frames, err := Split(text, ReadOptions{Width: 2, Separator: LegacySeparator})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(frames) != 2 || frames[1] != "ef\ngh" {
		t.Fatalf("unexpected frames %q", frames)
	}
}

func TestSplitToleratesMissingTrailingSeparatorAndCRLF(t *testing.T) {
	frames, err := Split("ab\r\n~~\r\ncd", ReadOptions{Width: 2})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(frames) != 2 || frames[0] != "ab" || frames[1] != "cd" {
		t.Fatalf("unexpected frames %q", frames)
	}
}

func TestSplitMalformed(t *testing.T) {
	for _, text := range []string{"", "\n\n", "~~~\n~~~\n"} {
		if _, err := Split(text, ReadOptions{Width: 3}); !errors.Is(err, ErrMalformedArtifact) {
			t.Fatalf("Split(%q): expected ErrMalformedArtifact, got %v", text, err)
		}
	}
}

func TestFileCommitAndAbort(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out", "video.txt")

	f, err := Create(target)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Create(target); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for concurrent encoder, got %v", err)
	}
	if _, err := f.Writer().Write([]byte("ab\n~~\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("destination must not exist before commit, stat err %v", err)
	}
	if err := f.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "ab\n~~\n" {
		t.Fatalf("unexpected committed content %q err %v", data, err)
	}

	g, err := Create(target)
	if err != nil {
		t.Fatalf("Create after commit: %v", err)
	}
	if _, err := g.Writer().Write([]byte("partial")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := g.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	data, _ = os.ReadFile(target)
	if string(data) != "ab\n~~\n" {
		t.Fatalf("abort must leave previous artifact intact, got %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") || strings.HasSuffix(e.Name(), ".lock") {
			t.Fatalf("staging file left behind: %s", e.Name())
		}
	}
}

func TestLoadUsesSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video.txt")
	if err := os.WriteFile(path, []byte("ab\ncd\n::\nef\ngh\n::\n"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	meta := Metadata{
		SessionID:  "session-1",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Width:      2,
		Height:     2,
		FrameCount: 3,
		Separator:  ":",
		Palette:    " .-#",
		Source:     Source{Path: "clip.mp4", FPS: 24, FrameCount: 3},
	}
	if err := WriteMetadata(path, meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	doc, err := Load(path, ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Frames) != 2 || doc.Width != 2 || doc.Height != 2 || doc.Separator != ':' {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Metadata == nil || doc.Metadata.SessionID != "session-1" || !doc.Metadata.CreatedAt.Equal(meta.CreatedAt) {
		t.Fatalf("unexpected metadata %+v", doc.Metadata)
	}
	if !doc.CountMismatch() {
		t.Fatal("expected frame count mismatch against sidecar")
	}
	if got := doc.Metadata.SourceDuration(); got != 0.125 {
		t.Fatalf("unexpected source duration %v", got)
	}
}

func TestLoadWithoutSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.txt")
	if err := os.WriteFile(path, []byte("abc\n~~~\n"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	doc, err := Load(path, ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Metadata != nil || doc.CountMismatch() || doc.Width != 3 || len(doc.Frames) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt"), ReadOptions{}); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestReadMetadataVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.txt")
	if err := os.WriteFile(MetadataPath(path), []byte("version = 9\n"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	if _, found, err := ReadMetadata(path); err == nil || !found {
		t.Fatalf("expected version error, found=%v err=%v", found, err)
	}
}
