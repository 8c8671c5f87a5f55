package buildinfo

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{"dev", "none", "unknown"}, "dev (none, unknown)"},
		{Info{"v0.4.0", "0123456789abcdef", "2026-01-02"}, "v0.4.0 (0123456, 2026-01-02)"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
	if Get().Version != Version {
		t.Error("Get() does not reflect Version")
	}
}
