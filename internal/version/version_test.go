package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}

	expectedPlatform := runtime.GOOS + "/" + runtime.GOARCH
	if info.Platform != expectedPlatform {
		t.Errorf("Expected platform %s, got %s", expectedPlatform, info.Platform)
	}
}

func TestString(t *testing.T) {
	origVersion, origCommit, origBranch, origDate := Version, GitCommit, GitBranch, BuildDate
	defer func() { Version, GitCommit, GitBranch, BuildDate = origVersion, origCommit, origBranch, origDate }()

	Version, GitCommit, GitBranch, BuildDate = "1.0.0", "", "", ""
	if str := String(); !strings.Contains(str, "1.0.0") {
		t.Errorf("String should contain version 1.0.0, got: %s", str)
	}

	Version, GitCommit, GitBranch, BuildDate = "1.0.0", "abcdef1234567890", "main", "2026-01-11"
	str := String()
	if !strings.Contains(str, "1.0.0") || !strings.Contains(str, "abcdef1") || !strings.Contains(str, "main") {
		t.Errorf("String missing expected fields: %s", str)
	}
}

func TestShort(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version, GitCommit = "1.0.0", ""
	if short := Short(); short != "1.0.0" {
		t.Errorf("Expected short version '1.0.0', got '%s'", short)
	}

	Version, GitCommit = "1.0.0", "abcdef1234567890"
	if short, expected := Short(), "1.0.0-abcdef1"; short != expected {
		t.Errorf("Expected short version '%s', got '%s'", expected, short)
	}
}

func TestUserAgent(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version, GitCommit = "1.0.0", ""
	if ua, expected := UserAgent(), "hyperborea/1.0.0"; ua != expected {
		t.Errorf("Expected UserAgent '%s', got '%s'", expected, ua)
	}
}

func TestGetModuleVersion(t *testing.T) {
	if GetModuleVersion() == "" {
		t.Error("GetModuleVersion should not return empty string")
	}
}
