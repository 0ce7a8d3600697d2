package version

import (
	"strings"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	info := Resolve()
	if info.Version == "" {
		t.Fatal("version must never be empty")
	}
	if !strings.Contains(info.GoVersion, "go") {
		t.Fatalf("go version: got %q", info.GoVersion)
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()

	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("short commit: got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("short commit: got %q", got)
	}
}
