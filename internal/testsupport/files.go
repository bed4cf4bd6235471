package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteScript writes an executable /bin/sh script at path.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}

// WriteFile creates path with a single placeholder byte.
func WriteFile(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ProbeScript returns an ffprobe stub body describing one gray video stream.
func ProbeScript(width, height, frames int, fps string) string {
	return fmt.Sprintf(`cat <<'JSON'
{"streams":[{"index":0,"codec_name":"rawvideo","codec_type":"video","width":%d,"height":%d,"r_frame_rate":"%s","avg_frame_rate":"%s","nb_frames":"%d"}],"format":{"filename":"clip","nb_streams":1,"format_name":"avi","duration":"1.0"}}
JSON`, width, height, fps, fps, frames)
}

// RawFramesScript returns an ffmpeg stub body that writes frames of
// width*height gray pixels to stdout. Pixel values step through a gradient
// so every frame maps to visible characters.
func RawFramesScript(width, height, frames int) string {
	var b strings.Builder
	span := width*height - 1
	if span < 1 {
		span = 1
	}
	for f := 0; f < frames; f++ {
		b.WriteString("printf '")
		for i := 0; i < width*height; i++ {
			level := (i*255/span + f*8) % 256
			fmt.Fprintf(&b, "\\%03o", level)
		}
		b.WriteString("'\n")
	}
	return b.String()
}
