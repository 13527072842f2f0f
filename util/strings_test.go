package util

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "hello", "world"); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if got := Coalesce(0, 0, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in     string
		prefix int
		want   string
	}{
		{"eyJhbGciOiJIUzI1NiJ9.payload.sig", 6, "eyJhbG***"},
		{"short", 6, "***"},
		{"exact6", 6, "***"},
		{"", 0, "***"},
	}
	for _, tc := range tests {
		if got := MaskSecret(tc.in, tc.prefix); got != tc.want {
			t.Errorf("MaskSecret(%q, %d): expected %q, got %q", tc.in, tc.prefix, tc.want, got)
		}
	}
}
