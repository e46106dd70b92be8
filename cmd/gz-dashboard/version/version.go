// Package version holds build metadata injected by linker flags.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// Name is the tool name reported to servers and users.
const Name = "gz-dashboard"

var (
	BuildType string
	Version   string
	Commit    string
	GoVersion string
)

var ErrIsDevelopment = errors.New("this development binary has no semantic version")

func IsDevelopment() bool {
	return BuildType == "development" || Version == ""
}

func String() string {
	return fmt.Sprintf("%s (revision %s compiled with %s)", Version, Commit, GoVersion)
}

// ShortString is a single whitespace-free token identifying this build.
func ShortString() string {
	if IsDevelopment() {
		if Commit == "" {
			return "dev"
		}
		return Commit
	}
	return Version
}

// UserAgent is sent with every HTTP request. Some servers answer 403 to
// unrecognised or empty user agents.
func UserAgent() string {
	return Name + "/" + strings.TrimPrefix(ShortString(), "v")
}

func Semver() (semver.Version, error) {
	if IsDevelopment() {
		return semver.Version{}, ErrIsDevelopment
	}
	return semver.Parse(strings.TrimPrefix(Version, "v"))
}
