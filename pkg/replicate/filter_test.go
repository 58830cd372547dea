package replicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFilter_Check(t *testing.T) {
	f, err := NewURLFilter([]string{"chrome://*", "chrome-extension://*", "edge://*"})
	require.NoError(t, err)

	tests := []struct {
		url  string
		want SkipReason
	}{
		{url: "", want: SkipEmptyURL},
		{url: "chrome://settings", want: SkipPrivileged},
		{url: "chrome://newtab/", want: SkipPrivileged},
		{url: "chrome-extension://abcdef/options.html", want: SkipPrivileged},
		{url: "edge://flags", want: SkipPrivileged},
		{url: "https://example.com/chrome://not-a-prefix", want: SkipNone},
		{url: "https://example.com", want: SkipNone},
		{url: "http://localhost:8080/path?q=1", want: SkipNone},
		{url: "about:blank", want: SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Check(tt.url))
		})
	}
}

func TestURLFilter_InvalidPattern(t *testing.T) {
	_, err := NewURLFilter([]string{"chrome://[*"})
	assert.Error(t, err)
}

func TestURLFilter_Nil(t *testing.T) {
	var f *URLFilter
	assert.Equal(t, SkipEmptyURL, f.Check(""))
	assert.Equal(t, SkipNone, f.Check("chrome://settings"))
}

func TestURLFilter_PatternsAreCopied(t *testing.T) {
	patterns := []string{"chrome://*"}
	f, err := NewURLFilter(patterns)
	require.NoError(t, err)

	patterns[0] = "changed"
	assert.Equal(t, []string{"chrome://*"}, f.Patterns())
}
