package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestShort(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	tests := []struct {
		version, commit, want string
	}{
		{"1.2.3", "", "1.2.3"},
		{"1.2.3", "abc123", "1.2.3 (abc123)"},
		{"0.1.0-dev", "1234567890abcdef1234", "0.1.0-dev (1234567890ab)"},
	}
	for _, tt := range tests {
		Version, GitCommit = tt.version, tt.commit
		if got := Short(); got != tt.want {
			t.Errorf("Short() = %q, want %q", got, tt.want)
		}
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	// без цвета строка совпадает с исходной
	color.NoColor = true

	for _, v := range []string{"0.1.0", "1.0.0-beta.1", "1.2.3-rc.1+build.123", "nightly"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}
