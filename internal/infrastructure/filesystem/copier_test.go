package filesystem

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestCopier_CopyFile_KeepsExecutableBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}
	src := filepath.Join(t.TempDir(), "gradlew")
	writeFile(t, src, "#!/bin/sh\n", 0755)
	dst := filepath.Join(t.TempDir(), "gradlew")

	require.NoError(t, NewCopier().CopyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "wrapper should stay executable")
}

func TestCopier_CopyFile_OverwritesExisting(t *testing.T) {
	src := filepath.Join(t.TempDir(), "build.gradle")
	writeFile(t, src, "new", 0644)
	dst := filepath.Join(t.TempDir(), "build.gradle")
	writeFile(t, dst, "old", 0644)

	require.NoError(t, NewCopier().CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestCopier_CopyFile_MissingSource(t *testing.T) {
	err := NewCopier().CopyFile(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopier_CopyDir_CopiesTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	writeFile(t, filepath.Join(src, "main", "java", "Main.java"), "class Main {}", 0644)
	dst := filepath.Join(t.TempDir(), "src")

	require.NoError(t, NewCopier().CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "main", "java", "Main.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Main {}", string(data))
}

func TestCopier_CopyDir_ExistingDestinationFails(t *testing.T) {
	src := filepath.Join(t.TempDir(), "gradle")
	writeFile(t, filepath.Join(src, "wrapper", "gradle-wrapper.properties"), "x", 0644)
	dst := filepath.Join(t.TempDir(), "gradle")
	require.NoError(t, os.Mkdir(dst, 0755))

	err := NewCopier().CopyDir(src, dst)
	assert.ErrorIs(t, err, install.ErrDestinationExists)
}

func TestCopier_CopyDir_SourceIsFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	writeFile(t, src, "not a dir", 0644)

	err := NewCopier().CopyDir(src, filepath.Join(t.TempDir(), "src"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
