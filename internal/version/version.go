package version

import (
	"fmt"
	"runtime"
)

const (
	// Product is the name reported in the Server header.
	Product = "displayproxy"
	// URL is the project home reported in the Server header.
	URL = "https://github.com/stut/displayproxy"
)

// Build information, injected via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds complete build information.
type Info struct {
	Product   string `json:"product"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Product:   Product,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// ServerHeader returns the value sent in every HTTP Server header.
func ServerHeader() string {
	return fmt.Sprintf("%s/%s (%s)", Product, Version, URL)
}
