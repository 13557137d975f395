package invoke

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Resolver locates an executable by name.
type Resolver interface {
	Resolve(name string) (string, error)
}

// PathResolver resolves executables on PATH and fails loudly when absent.
type PathResolver struct {
	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// Resolve returns the absolute path of name.
func (r PathResolver) Resolve(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", newError(ErrorCodeBinaryNotFound, "invoke: binary name is empty", nil)
	}
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(clean)
	if err != nil || strings.TrimSpace(path) == "" {
		if err == nil {
			err = errors.New("empty path")
		}
		return "", newError(ErrorCodeBinaryNotFound, notFoundMessage(clean), err)
	}
	if !filepath.IsAbs(path) {
		if abs, absErr := filepath.Abs(path); absErr == nil {
			path = abs
		}
	}
	return path, nil
}

func notFoundMessage(name string) string {
	return fmt.Sprintf(
		"Unable to locate executable file: %s. Please verify either the file path exists or "+
			"the file can be found within a directory specified by the PATH environment variable. "+
			"Also check the file mode to verify the file is executable.",
		name,
	)
}

var _ Resolver = PathResolver{}
