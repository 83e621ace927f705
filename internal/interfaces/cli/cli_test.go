package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilometers.ai/bdv-viewer/internal/config"
	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/testfixtures"
	"kilometers.ai/bdv-viewer/internal/interfaces/cli"
	"kilometers.ai/bdv-viewer/internal/interfaces/di"
)

type harness struct {
	home   string
	pkg    string
	app    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		config.EnvConfigPath, config.EnvPackagePath, config.EnvAppPath,
		config.EnvLogLevel, config.EnvLogFile, config.EnvSocketTimeout, config.EnvConflict,
		config.EnvGradleOpts, "FAKE_GRADLE_EXIT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return &harness{
		home:   home,
		pkg:    filepath.Join(home, "package"),
		app:    filepath.Join(home, "app"),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

func (h *harness) writePackage(t *testing.T) {
	t.Helper()
	testfixtures.NewPackageBuilder().WithFakeWrapper().Build(t, h.pkg)
}

// run executes the CLI with a fresh container and returns the exit code.
func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	container, err := di.NewContainerWithIO(nil, h.stdout, h.stderr)
	require.NoError(t, err)

	return cli.Execute(context.Background(), container.CLIContainer, args)
}

func (h *harness) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.app, "calls.log"))
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake wrapper is a shell script")
	}
}

func TestInfoCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "info"))
	out := h.stdout.String()
	assert.Contains(t, out, "visualization:ome-zarr-url-bdv-viewer:0.1.0")
	assert.Contains(t, out, "--ome_zarr_url")
	assert.Contains(t, out, "https://doi.org/10.1038/nmeth.3392")
}

func TestEnvCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "env"))
	out := h.stdout.String()
	assert.Contains(t, out, "conda-forge")
	assert.Contains(t, out, "openjdk=11.0.9.1")
	assert.Contains(t, out, "python=3.11")
}

func TestStatusNotInstalled(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "status", "--app", h.app))
	assert.Contains(t, h.stdout.String(), "is not installed in "+h.app)
}

func TestRunRequiresURL(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run(t, "run", "--app", h.app))
	assert.Contains(t, h.stderr.String(), "ome_zarr_url")
}

func TestRunRejectsURLGivenTwice(t *testing.T) {
	h := newHarness(t)

	code := h.run(t, "run", "--app", h.app, "--ome_zarr_url", "https://a.example/x.zarr", "https://b.example/y.zarr")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "given both as flag and as argument")
}

func TestRunRequiresInstall(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run(t, "run", "--app", h.app, "https://a.example/x.zarr"))
	assert.Contains(t, h.stderr.String(), install.ErrNotInstalled.Error())
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.home, "bdv.yml")

	require.Equal(t, 0, h.run(t, "config", "path", "--config", cfgPath))
	assert.Equal(t, cfgPath, strings.TrimSpace(h.stdout.String()))

	require.Equal(t, 0, h.run(t, "config", "set", "app_path", "/opt/bdv", "--config", cfgPath))
	assert.Contains(t, h.stdout.String(), "Set app_path in "+cfgPath)

	require.Equal(t, 0, h.run(t, "config", "show", "--config", cfgPath, "--log-level", "warn"))
	out := h.stdout.String()
	assert.Regexp(t, `app_path:\s+/opt/bdv\s+\[file\]`, out)
	assert.Regexp(t, `log_level:\s+warn\s+\[flag\]`, out)
	assert.Regexp(t, `conflict_policy:\s+fail\s+\[default\]`, out)

	assert.Equal(t, 1, h.run(t, "config", "set", "socket_timeout_ms", "-5", "--config", cfgPath))
}

func TestInstallAndRun(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	h.writePackage(t)
	global := []string{"--package", h.pkg, "--app", h.app}

	require.Equal(t, 0, h.run(t, append([]string{"install", "--progress=false", "--socket-timeout", "1234"}, global...)...), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Installed visualization:ome-zarr-url-bdv-viewer:0.1.0 into "+h.app)

	for _, name := range []string{"build.gradle", "gradlew", "gradlew.bat", install.ReceiptFile} {
		assert.FileExists(t, filepath.Join(h.app, name))
	}
	assert.FileExists(t, filepath.Join(h.app, "src", "main", "java", "Viewer.java"))
	assert.FileExists(t, filepath.Join(h.app, "gradle", "wrapper", "gradle-wrapper.properties"))
	assert.Equal(t, []string{"build -Dorg.gradle.internal.http.socketTimeout=1234"}, h.calls(t))

	require.Equal(t, 0, h.run(t, append([]string{"status"}, global...)...))
	assert.Contains(t, h.stdout.String(), filepath.Join(h.app, "gradlew"))

	url := "https://s3.example.org/data/image.ome.zarr"
	require.Equal(t, 0, h.run(t, append([]string{"run", url}, global...)...), h.stderr.String())
	calls := h.calls(t)
	require.Len(t, calls, 2)
	assert.Equal(t, `run -q --args="`+url+`"`, calls[1])
}

func TestInstallTwiceNeedsForce(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	h.writePackage(t)
	global := []string{"--package", h.pkg, "--app", h.app}

	require.Equal(t, 0, h.run(t, append([]string{"install", "--progress=false"}, global...)...))

	assert.Equal(t, 1, h.run(t, append([]string{"install", "--progress=false"}, global...)...))
	assert.Contains(t, h.stderr.String(), "--force")

	require.Equal(t, 0, h.run(t, append([]string{"install", "--progress=false", "--force"}, global...)...), h.stderr.String())
}

func TestInstallBuildFailureExitCode(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	h.writePackage(t)
	t.Setenv("FAKE_GRADLE_EXIT", "3")

	code := h.run(t, "install", "--progress=false", "--package", h.pkg, "--app", h.app)
	assert.Equal(t, 3, code)
	assert.NoFileExists(t, filepath.Join(h.app, install.ReceiptFile))
}

func TestRunCheckExit(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	h.writePackage(t)
	global := []string{"--package", h.pkg, "--app", h.app}
	require.Equal(t, 0, h.run(t, append([]string{"install", "--progress=false"}, global...)...))

	t.Setenv("FAKE_GRADLE_EXIT", "4")
	url := "https://a.example/x.zarr"

	// Without --check-exit the viewer's status is only logged.
	assert.Equal(t, 0, h.run(t, append([]string{"run", url}, global...)...))
	assert.Contains(t, h.stderr.String(), "non-zero status")

	assert.Equal(t, 4, h.run(t, append([]string{"run", "--check-exit", url}, global...)...))
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "version"))
	out := h.stdout.String()
	assert.Contains(t, out, "bdv "+cli.Version)
	assert.Contains(t, out, "Solution API: 0.5.5 (runner "+cli.HostAPIVersion+")")
	assert.NotContains(t, h.stderr.String(), "newer runner API")
}

func TestRefusedReinstallKeepsViewerRunnable(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	h.writePackage(t)
	global := []string{"--package", h.pkg, "--app", h.app}

	require.Equal(t, 0, h.run(t, append([]string{"install", "--progress=false"}, global...)...))

	assert.Equal(t, 1, h.run(t, append([]string{"install", "--progress=false"}, global...)...))
	assert.Contains(t, h.stderr.String(), install.ErrDestinationExists.Error())

	require.Equal(t, 0, h.run(t, append([]string{"status"}, global...)...))
	assert.NotContains(t, h.stdout.String(), "not installed")

	assert.Equal(t, 0, h.run(t, append([]string{"run", "https://example.com/data.zarr"}, global...)...), h.stderr.String())
	// One build from the first install, then the run; the refused
	// install never reached the wrapper.
	assert.Len(t, h.calls(t), 2)
}

func TestManifestCommandsIgnoreBrokenConfig(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.home, ".bdv", "config.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: [\n"), 0600))

	for _, cmd := range []string{"info", "env", "version"} {
		assert.Equal(t, 0, h.run(t, cmd), "%s: %s", cmd, h.stderr.String())
	}

	assert.Equal(t, 1, h.run(t, "status"))
	assert.Contains(t, h.stderr.String(), "failed to load configuration")
}

func TestExecutePrintsError(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run(t, "no-such-command"))
	assert.True(t, strings.HasPrefix(h.stderr.String(), "Error: "), h.stderr.String())
}

func TestInstallPassesGradleOpts(t *testing.T) {
	skipOnWindows(t)
	h := newHarness(t)
	testfixtures.NewPackageBuilder().
		WithExecutable("gradlew", "#!/bin/sh\necho \"$GRADLE_OPTS\" >> \"$(dirname \"$0\")/calls.log\"\n").
		Build(t, h.pkg)
	t.Setenv(config.EnvGradleOpts, "-Xmx3g")

	require.Equal(t, 0, h.run(t, "install", "--progress=false", "--package", h.pkg, "--app", h.app), h.stderr.String())
	assert.Equal(t, []string{"-Xmx3g"}, h.calls(t))
}
