// Package platform maps a host platform to the Gradle wrapper script that
// drives the viewer build.
package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Platform is a GOOS-style operating system identifier.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	Darwin  Platform = "darwin"
)

// Current returns the platform the binary runs on.
func Current() Platform {
	return Platform(runtime.GOOS)
}

const defaultWrapper = "gradlew"

// wrappers lists the platforms whose wrapper script differs from the default.
var wrappers = map[Platform]string{
	Windows: "gradlew.bat",
}

// WrapperName returns the wrapper script file name for p.
func WrapperName(p Platform) string {
	if name, ok := wrappers[p]; ok {
		return name
	}
	return defaultWrapper
}

// WrapperNames returns every wrapper script that has to ship with the app.
func WrapperNames() []string {
	return []string{defaultWrapper, wrappers[Windows]}
}

// ResolveExecutable returns the absolute path of the wrapper script for p
// inside appDir. It only builds the path; the file is not checked.
func ResolveExecutable(p Platform, appDir string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(appDir, WrapperName(p)))
	if err != nil {
		return "", fmt.Errorf("platform: resolve wrapper in %s: %w", appDir, err)
	}
	return abs, nil
}
