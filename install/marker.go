package install

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultTool keys markers for the OCI CLI.
	DefaultTool = "oci-cli"
	// DefaultToken is written as the marker payload.
	DefaultToken = "success"
	// DefaultMarkerFile is the marker file name under the user's home.
	DefaultMarkerFile = ".oci-cli-installed"
)

// DefaultCommand installs the OCI CLI through pip.
var DefaultCommand = []string{"python", "-m", "pip", "install", "oci-cli"}

var errEmptyTool = errors.New("install: marker tool is required")

// Marker records that a one-time install has already succeeded.
type Marker struct {
	Tool        string    `json:"tool"`
	Token       string    `json:"token"`
	InstalledAt time.Time `json:"installed_at"`
}

// MarkerStore persists install markers. Only presence is part of the
// contract; Token and InstalledAt are informational.
type MarkerStore interface {
	Get(ctx context.Context, tool string) (Marker, bool, error)
	Put(ctx context.Context, marker Marker) error
}
