package version

import (
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	if info.Version != Version {
		t.Errorf("expected version %q, got %q", Version, info.Version)
	}
	if info.GoVersion == "" {
		t.Error("expected go version to be set")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("expected platform in os/arch form, got %q", info.Platform)
	}
}

func TestShort(t *testing.T) {
	s := Short()
	if !strings.HasPrefix(s, ApplicationName) {
		t.Errorf("expected short version to start with %q, got %q", ApplicationName, s)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if ua != ApplicationName+"/"+Version {
		t.Errorf("unexpected user agent: %q", ua)
	}
}
