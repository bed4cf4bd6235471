package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"asciivid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.Path = filepath.Join(base, "data", "catalog.db")
	cfgVal.Encode.Width = 20
	cfgVal.Logging.File = false
	cfgVal.Playback.ClearScreen = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWidth overrides the encode width.
func WithWidth(width int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encode.Width = width
	}
}

// WithCatalogDisabled turns off encode history.
func WithCatalogDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := b.binDir()
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "exit 0")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithFFmpegScript installs a shell script as the configured ffmpeg binary.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), "ffmpeg")
		WriteScript(b.t, target, body)
		b.cfg.Media.FFmpegBinary = target
	}
}

// WithFFprobeScript installs a shell script as the configured ffprobe binary.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), "ffprobe")
		WriteScript(b.t, target, body)
		b.cfg.Media.FFprobeBinary = target
	}
}

func (b *configBuilder) binDir() string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
