package utils

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grüne Stadt Köln", "gruene-stadt-koeln"},
		{"Straßenfest 2026!", "strassenfest-2026"},
		{"  Café  Crème  ", "cafe-creme"},
		{"Ärzte ohne Grenzen", "aerzte-ohne-grenzen"},
		{"---", ""},
		{"a__b", "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"acme": true, "acme-2": true}
	isTaken := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	slug, err := UniqueSlug(context.Background(), "ACME", isTaken)
	require.NoError(t, err)
	assert.Equal(t, "acme-3", slug)

	slug, err = UniqueSlug(context.Background(), "Neu", isTaken)
	require.NoError(t, err)
	assert.Equal(t, "neu", slug)

	_, err = UniqueSlug(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, errors.New("db down")
	})
	assert.Error(t, err)

	slug, err = UniqueSlug(context.Background(), "!!!", isTaken)
	require.NoError(t, err)
	assert.Len(t, slug, 8)
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="x()">Hallo <strong>Welt</strong><script>alert(1)</script></p><a href="https://example.org">Link</a>`)
	assert.Contains(t, out, "<p>Hallo <strong>Welt</strong></p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.True(t, strings.Contains(out, `rel="nofollow`))

	assert.Equal(t, "", SanitizeHTML(`<img src=x onerror=alert(1)>`))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Fish & Chips", StripHTML("<p>Fish &amp; <em>Chips</em></p>"))
}
