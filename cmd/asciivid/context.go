package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"asciivid/internal/config"
	"asciivid/internal/logging"
)

const defaultArtifactPath = "ascii_video.txt"

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// session starts a logged unit of work. The returned context carries a fresh
// session id that every log record and the artifact sidecar share.
func (c *commandContext) session(cmd *cobra.Command, component string) (context.Context, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	sessionID := uuid.NewString()
	opts := logging.OptionsFromConfig(cfg, sessionID)
	opts.Writer = cmd.ErrOrStderr()
	logger, err := logging.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if opts.FilePath != "" {
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, config.LogFilePattern, cfg.Logging.RetentionDays, opts.FilePath)
	}
	ctx := logging.WithSessionID(cmd.Context(), sessionID)
	return ctx, logging.NewComponentLogger(logger, component), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
