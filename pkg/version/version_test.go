package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	for _, key := range []string{"version", "buildTime", "gitCommit", "goVersion"} {
		if info[key] == "" {
			t.Errorf("missing %s", key)
		}
	}
}

func TestString(t *testing.T) {
	prev := GitCommit
	t.Cleanup(func() { GitCommit = prev })

	GitCommit = "0123456789abcdef"
	s := String()
	if !strings.Contains(s, "commit 0123456") || strings.Contains(s, "0123456789") {
		t.Errorf("unexpected version string %q", s)
	}
}
