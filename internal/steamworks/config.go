// Package steamworks attaches to the locally running Steam client through the
// Steamworks flat C API, loaded at run time so the binary builds without cgo.
package steamworks

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mcoot/samuel/internal/model"
)

// Config controls how the Steamworks library is located and initialised
type Config struct {
	// LibraryPath is the steam_api shared library; empty searches the loader
	// path for the platform default name.
	LibraryPath string

	// StatsWait bounds how long Attach pumps callbacks waiting for the
	// user's stats to arrive.
	StatsWait time.Duration
}

// DefaultConfig returns the platform defaults
func DefaultConfig() Config {
	return Config{
		LibraryPath: defaultLibraryName(),
		StatsWait:   3 * time.Second,
	}
}

func defaultLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libsteam_api.dylib"
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "steam_api64.dll"
		}
		return "steam_api.dll"
	default:
		return "libsteam_api.so"
	}
}

// errRejected is returned when the runtime refuses a write
var errRejected = fmt.Errorf("%w: steam rejected the change", model.ErrClientUnavailable)
