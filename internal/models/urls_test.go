package models

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips fragment", "https://acme.com/page#section", "https://acme.com/page"},
		{"drops bare root path", "https://acme.com/", "https://acme.com"},
		{"keeps deeper paths", "https://acme.com/admin/", "https://acme.com/admin/"},
		{"sorts query parameters", "https://acme.com/p?b=2&a=1", "https://acme.com/p?a=1&b=2"},
		{"lowercases", "HTTPS://Acme.COM/Path", "https://acme.com/path"},
		{"unparsable input trims and lowercases", "  HTTP://%zz  ", "http://%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSameNormalized(t *testing.T) {
	if !SameNormalized("https://acme.com/?b=2&a=1#top", "https://acme.com?a=1&b=2") {
		t.Error("query order and fragment should not affect identity")
	}
	if SameNormalized("https://acme.com/a", "https://acme.com/b") {
		t.Error("different paths are different URLs")
	}
}

func TestIsTestURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8080", true},
		{"http://127.0.0.1/admin", true},
		{"http://0.0.0.0:3000", true},
		{"http://[::1]:9000", true},
		{"http://dev.localhost", true},
		{"http://printer.local", true},
		{"https://acme.com", false},
		{"https://local.acme.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTestURL(tt.url); got != tt.want {
			t.Errorf("IsTestURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
