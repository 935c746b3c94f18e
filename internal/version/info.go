// Package version exposes build metadata embedded at link time.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Overridden at build time with -ldflags "-X github.com/kedare/reeltrend/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info contains metadata about the compiled binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	Platform  string
	GoVersion string
}

// Get returns build metadata, normalizing empty values to their defaults.
func Get() Info {
	return Info{
		Version:   fallback(Version, "dev"),
		Commit:    fallback(Commit, "unknown"),
		BuildDate: fallback(BuildDate, "unknown"),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}

// Built parses BuildDate as RFC 3339. The boolean is false for dev builds.
func (i Info) Built() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339, i.BuildDate)
	if err != nil {
		return time.Time{}, false
	}

	return ts, true
}

// UserAgent is sent on every outbound HTTP request.
func UserAgent() string {
	info := Get()

	return fmt.Sprintf("reeltrend/%s (%s)", info.Version, info.Platform)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}

	return strings.TrimSpace(value)
}
