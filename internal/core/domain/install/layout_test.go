package install

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultLayout_ListsBuildFiles(t *testing.T) {
	l := DefaultLayout()

	assert.ElementsMatch(t, []string{"build.gradle", "gradlew", "gradlew.bat"}, l.Files)
	assert.Equal(t, []string{"src", "gradle"}, l.Dirs)
	assert.Len(t, l.Entries(), 5)
}

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ConflictPolicy
		wantErr bool
	}{
		{"", ConflictFail, false},
		{"fail", ConflictFail, false},
		{" Replace ", ConflictReplace, false},
		{"merge", "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			got, err := ParseConflictPolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildArgs(t *testing.T) {
	assert.Equal(t, []string{"build", "-Dorg.gradle.internal.http.socketTimeout=300000"}, BuildArgs(0))
	assert.Equal(t, []string{"build", "-Dorg.gradle.internal.http.socketTimeout=1000"}, BuildArgs(1000))
}

func TestRunArgs_QuotesURL(t *testing.T) {
	assert.Equal(t,
		[]string{"run", "-q", `--args="https://example.com/data.zarr"`},
		RunArgs("https://example.com/data.zarr"))

	assert.Equal(t,
		[]string{"run", "-q", `--args="a\"b\\c"`},
		RunArgs(`a"b\c`))
}

// unescape reverses quoteEscape the way Gradle's argument tokenizer does
// inside a double-quoted string.
func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func TestRunArgs_PropertyBased_RoundTripsURL(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		url := rapid.String().Draw(t, "url")

		args := RunArgs(url)
		require.Len(t, args, 3)

		quoted := strings.TrimPrefix(args[2], "--args=")
		require.True(t, strings.HasPrefix(quoted, `"`) && strings.HasSuffix(quoted, `"`))
		assert.Equal(t, url, unescape(quoted[1:len(quoted)-1]))
	})
}

func TestExitCode_ExtractsFromWrappedErrors(t *testing.T) {
	err := fmt.Errorf("install: %w", &BuildError{ExitCode: 3})
	code, ok := ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	code, ok = ExitCode(&LaunchError{ExitCode: 7})
	assert.True(t, ok)
	assert.Equal(t, 7, code)

	_, ok = ExitCode(errors.New("plain"))
	assert.False(t, ok)
}
