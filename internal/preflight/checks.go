package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"asciivid/internal/deps"
)

// CheckBinary verifies that binary resolves on PATH and answers -version.
func CheckBinary(ctx context.Context, name, binary string) Result {
	status := deps.Check(ctx, deps.Requirement{Name: name, Command: binary})
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	detail := status.Version
	if detail == "" {
		detail = status.Path
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
