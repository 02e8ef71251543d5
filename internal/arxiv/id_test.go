package arxiv

import "testing"

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"abs url", "https://arxiv.org/abs/2301.07041", "2301.07041"},
		{"abs url with version", "https://arxiv.org/abs/2301.07041v2", "2301.07041v2"},
		{"pdf url", "https://arxiv.org/pdf/2301.07041", "2301.07041"},
		{"old style url", "https://arxiv.org/abs/astro-ph/0601234", "astro-ph/0601234"},
		{"bare id", "2301.07041", "2301.07041"},
		{"bare id with version", "2301.07041v1", "2301.07041v1"},
		{"bare old style", "astro-ph/0601234", "astro-ph/0601234"},
		{"five digit", "2301.10741", "2301.10741"},
		{"whitespace", "  2301.07041  ", "2301.07041"},
		{"garbage", "not-a-paper", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseID(tt.in); got != tt.want {
				t.Errorf("ParseID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2301.07041v2", "2301.07041"},
		{"2301.07041", "2301.07041"},
		{"astro-ph/0601234", "astro-ph/0601234"},
		{"2301.07041v12", "2301.07041"},
	}

	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
