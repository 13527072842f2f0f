package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// ModulePath is the import path looked up in the build info.
const ModulePath = "github.com/kbukum/gopocket"

// Override is set at build time using -ldflags.
var Override = ""

var (
	once     sync.Once
	resolved string
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Version returns the library version, "dev" when it cannot be determined.
func Version() string {
	if Override != "" {
		return Override
	}
	once.Do(func() {
		resolved = fromBuildInfo(debug.ReadBuildInfo)
	})
	return resolved
}

func fromBuildInfo(read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok {
		return "dev"
	}
	if info.Main.Path == ModulePath {
		return normalize(info.Main.Version)
	}
	for _, dep := range info.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			return normalize(dep.Replace.Version)
		}
		return normalize(dep.Version)
	}
	return "dev"
}

func normalize(v string) string {
	if v == "" || v == "(devel)" {
		return "dev"
	}
	return v
}

// GetVersionInfo returns the version with runtime details.
func GetVersionInfo() Info {
	return Info{
		Version:   Version(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent returns the default User-Agent sent with every request,
// e.g. "gopocket/v0.3.0 (go1.24.2; linux/amd64)".
func UserAgent() string {
	info := GetVersionInfo()
	return fmt.Sprintf("gopocket/%s (%s; %s)", info.Version, info.GoVersion, info.Platform)
}
