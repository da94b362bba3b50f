package prefs

import (
	"path/filepath"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")

	p := LoadFrom(path)
	p.SetString(KeyBackendURL, "http://example.test:9000")
	p.SetFloat(KeyTolerance, 42)
	p.SetBool(KeyKeepSize, true)
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	q := LoadFrom(path)
	if got := q.String(KeyBackendURL, ""); got != "http://example.test:9000" {
		t.Errorf("backend url = %q", got)
	}
	if got := q.Float(KeyTolerance, 0); got != 42 {
		t.Errorf("tolerance = %v, want 42", got)
	}
	if !q.Bool(KeyKeepSize, false) {
		t.Error("keep size should round-trip as true")
	}
}

func TestFallbacks(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if got := p.String(KeyBackendURL, DefaultBackendURL); got != DefaultBackendURL {
		t.Errorf("missing key fallback = %q", got)
	}
	if got := p.Float(KeySoftness, 5); got != 5 {
		t.Errorf("missing float fallback = %v", got)
	}
	if p.Bool(KeyKeyOut, false) {
		t.Error("missing bool should use fallback")
	}
}
