// Package deps resolves the external binaries asciivid shells out to and
// reports whether each one is usable.
package deps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// VersionTimeout bounds each -version query.
const VersionTimeout = 5 * time.Second

// Requirement defines an external dependency asciivid relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when the command was found.
	Path string
	// Version is the first line printed by -version.
	Version string
	Detail  string
}

// MediaRequirements lists the decoders used for video input.
func MediaRequirements(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Required to decode video frames"},
		{Name: "FFprobe", Command: ffprobe, Description: "Required to read stream geometry and rate"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(ctx, req))
	}
	return results
}

// Check resolves req.Command on PATH and confirms it answers -version.
func Check(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found on PATH", cmd)
		return status
	}
	status.Path = path

	version, err := queryVersion(ctx, path)
	if err != nil {
		status.Detail = fmt.Sprintf("%s (error: %s)", path, err)
		return status
	}
	status.Available = true
	status.Version = version
	return status
}

func queryVersion(ctx context.Context, path string) (string, error) {
	checkCtx, cancel := context.WithTimeout(ctx, VersionTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(checkCtx, path, "-version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return "", errors.New("-version timed out")
		}
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return "", errors.New(detail)
		}
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(stdout.String()), "\n")
	return strings.TrimSpace(line), nil
}
