// Package install holds the value types shared by the installer and the
// launcher: what gets copied into the app directory, how conflicts are
// handled, the receipt left behind by a finished install and the errors
// both steps report.
package install

import (
	"fmt"
	"strings"

	"kilometers.ai/bdv-viewer/internal/core/domain/platform"
	"kilometers.ai/bdv-viewer/internal/core/domain/process"
)

// DefaultSocketTimeoutMillis raises Gradle's HTTP socket timeout so slow
// dependency mirrors do not abort the first build.
const DefaultSocketTimeoutMillis = 300000

// Layout is the fixed set of package entries copied into the app directory.
type Layout struct {
	Files []string
	Dirs  []string
}

// DefaultLayout returns the build descriptor, both wrapper scripts, the
// source tree and the Gradle support directory.
func DefaultLayout() Layout {
	files := append([]string{"build.gradle"}, platform.WrapperNames()...)
	return Layout{
		Files: files,
		Dirs:  []string{"src", "gradle"},
	}
}

// Entries returns every top-level name the layout creates.
func (l Layout) Entries() []string {
	entries := make([]string, 0, len(l.Files)+len(l.Dirs))
	entries = append(entries, l.Files...)
	entries = append(entries, l.Dirs...)
	return entries
}

// ConflictPolicy decides what happens when a directory from the layout is
// already present in the app directory.
type ConflictPolicy string

const (
	// ConflictFail refuses to copy over an existing directory.
	ConflictFail ConflictPolicy = "fail"
	// ConflictReplace removes the existing directory before copying.
	ConflictReplace ConflictPolicy = "replace"
)

// ParseConflictPolicy accepts the policy names used in config and flags.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictFail:
		return ConflictFail, nil
	case ConflictReplace:
		return ConflictReplace, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want fail or replace)", s)
	}
}

// BuildArgs returns the wrapper arguments for the build step.
func BuildArgs(socketTimeoutMillis int) []string {
	if socketTimeoutMillis <= 0 {
		socketTimeoutMillis = DefaultSocketTimeoutMillis
	}
	return []string{"build", fmt.Sprintf("-Dorg.gradle.internal.http.socketTimeout=%d", socketTimeoutMillis)}
}

// RunArgs returns the wrapper arguments that start the viewer on url.
// Gradle splits --args like a shell would, so quotes and backslashes inside
// url are escaped to keep it a single argument.
func RunArgs(url string) []string {
	return []string{"run", "-q", fmt.Sprintf(`--args="%s"`, quoteEscape(url))}
}

// GradleOptsEnv is the variable the wrapper reads extra JVM options from.
const GradleOptsEnv = "GRADLE_OPTS"

// WithGradleOpts returns cmd with GRADLE_OPTS set to opts. An empty opts
// leaves the inherited environment alone.
func WithGradleOpts(cmd process.Command, opts string) process.Command {
	if opts == "" {
		return cmd
	}
	return cmd.WithEnv(GradleOptsEnv, opts)
}

func quoteEscape(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
