package testfixtures

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeWrapper is a POSIX wrapper script that appends its arguments to
// calls.log next to itself and exits with $FAKE_GRADLE_EXIT.
const FakeWrapper = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/calls.log"
exit ${FAKE_GRADLE_EXIT:-0}
`

// PackageBuilder provides a builder pattern for creating viewer package
// directories on disk
type PackageBuilder struct {
	files map[string]string
	modes map[string]os.FileMode
}

// NewPackageBuilder creates a builder holding a complete package layout
// with placeholder contents
func NewPackageBuilder() *PackageBuilder {
	return &PackageBuilder{
		files: map[string]string{
			"build.gradle":                             "plugins { id 'application' }\n",
			"gradlew":                                  "#!/bin/sh\n",
			"gradlew.bat":                              "@echo off\r\n",
			"src/main/java/Viewer.java":                "public class Viewer {}\n",
			"gradle/wrapper/gradle-wrapper.properties": "distributionUrl=gradle.zip\n",
		},
		modes: map[string]os.FileMode{"gradlew": 0755},
	}
}

// WithFile adds or replaces a file, path is slash separated
func (b *PackageBuilder) WithFile(path, content string) *PackageBuilder {
	b.files[path] = content
	return b
}

// WithExecutable adds or replaces a file with mode 0755
func (b *PackageBuilder) WithExecutable(path, content string) *PackageBuilder {
	b.files[path] = content
	b.modes[path] = 0755
	return b
}

// WithFakeWrapper installs FakeWrapper as gradlew
func (b *PackageBuilder) WithFakeWrapper() *PackageBuilder {
	return b.WithExecutable("gradlew", FakeWrapper)
}

// Without drops a file from the package
func (b *PackageBuilder) Without(path string) *PackageBuilder {
	delete(b.files, path)
	delete(b.modes, path)
	return b
}

// Build writes the package below dir and returns dir
func (b *PackageBuilder) Build(t testing.TB, dir string) string {
	t.Helper()
	for path, content := range b.files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(full), err)
		}
		mode, ok := b.modes[path]
		if !ok {
			mode = 0644
		}
		if err := os.WriteFile(full, []byte(content), mode); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
		// WriteFile leaves the mode of an existing file alone.
		if err := os.Chmod(full, mode); err != nil {
			t.Fatalf("chmod %s: %v", full, err)
		}
	}
	return dir
}

// BuildTemp writes the package into a fresh temporary directory
func (b *PackageBuilder) BuildTemp(t testing.TB) string {
	t.Helper()
	return b.Build(t, t.TempDir())
}
