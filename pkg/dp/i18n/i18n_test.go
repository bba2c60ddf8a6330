package i18n

import "testing"

func TestMatch(t *testing.T) {
	c := New([]string{"ko", "en"}, "ko")

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"empty header", "", "ko"},
		{"exact korean", "ko", "ko"},
		{"exact english", "en", "en"},
		{"regional english", "en-US,en;q=0.9", "en"},
		{"regional korean", "ko-KR,ko;q=0.9,en;q=0.8", "ko"},
		{"unsupported falls back", "fr-FR", "ko"},
		{"garbage falls back", ";;;", "ko"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Match(tt.accept); got != tt.want {
				t.Errorf("Match(%q) = %q, want %q", tt.accept, got, tt.want)
			}
		})
	}
}

func TestT(t *testing.T) {
	c := New([]string{"ko", "en"}, "ko")

	tests := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{"korean string", "ko", "back.home", "홈으로 돌아가기"},
		{"english string", "en", "back.home", "Back to home"},
		{"unknown locale falls back to default", "fr", "back.home", "홈으로 돌아가기"},
		{"unknown key returns key", "en", "no.such.key", "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.T(tt.locale, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewSkipsInvalidLocales(t *testing.T) {
	c := New([]string{"not a locale!", "en"}, "")
	if got := c.Match("en"); got != "en" {
		t.Errorf("Match(en) = %q, want en", got)
	}
	if got := c.Match(""); got != "en" {
		t.Errorf("default = %q, want en", got)
	}
}
