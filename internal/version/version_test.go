package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredPlain(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	origVersion := Version
	defer func() { Version = origVersion }()

	cases := map[string]string{
		"0.3.0":                "0.3.0",
		"1.2.3-rc.1":           "1.2.3-rc.1",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"dev":                  "dev",
	}
	for in, want := range cases {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "1.0.0", "", ""
	if got := Describe(); got != "glfuzz 1.0.0" {
		t.Errorf("Describe() = %q", got)
	}
	GitCommit, BuildDate = "abc123", "2024-01-15"
	if got := Describe(); got != "glfuzz 1.0.0 (abc123) built 2024-01-15" {
		t.Errorf("Describe() = %q", got)
	}
}

// BenchmarkDescribe benchmarks building the version line
func BenchmarkDescribe(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Describe()
	}
}
