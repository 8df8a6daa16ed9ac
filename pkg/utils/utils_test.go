package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		browser  string
		version  string
		platform string
	}{
		{"empty", "", "Unknown", "Unknown", "Unknown"},
		{"chrome on windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", "Chrome", "120.0.0.0", "Windows"},
		{"chrome on mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", "Chrome", "120.0.0.0", "Macintosh"},
		{"firefox on linux", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox", "121.0", "X11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.browser, got.Browser)
			assert.Equal(t, tt.version, got.BrowserVersion)
			assert.Equal(t, tt.platform, got.Platform)
		})
	}
}

func TestParseUserAgentDetails(t *testing.T) {
	got := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, got.OS, "Windows")
	assert.Equal(t, "AppleWebKit", got.Engine)
	assert.False(t, got.Mobile)
	assert.False(t, got.Bot)

	empty := ParseUserAgent("")
	assert.Equal(t, "Unknown", empty.OS)
	assert.Equal(t, "Unknown", empty.Engine)
}

func TestFilter(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Filter([]string{"", "a", "", "b"}, func(s string) bool { return s != "" }))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "登录", Truncate("登录成功", 2))
	assert.Equal(t, "ok", Truncate("ok", 5))
}
