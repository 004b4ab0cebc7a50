package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name, page, limit string
		want              Page
	}{
		{"defaults", "", "", Page{Number: 1, Size: DefaultPageSize}},
		{"explicit", "3", "5", Page{Number: 3, Size: 5}},
		{"capped", "1", "100", Page{Number: 1, Size: MaxPageSize}},
		{"garbage", "abc", "-4", Page{Number: 1, Size: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePage(tt.page, tt.limit))
		})
	}
}

func TestPageSlice(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, []string{"a", "b"}, Page{Number: 1, Size: 2}.Slice(ids))
	assert.Equal(t, []string{"e"}, Page{Number: 3, Size: 2}.Slice(ids))
	assert.Empty(t, Page{Number: 4, Size: 2}.Slice(ids))
}

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	c.Set("posts:list:1:12", "fresh", time.Minute)
	c.Set("posts:list:2:12", "stale", -time.Second)

	assert.Equal(t, "fresh", c.Get("posts:list:1:12"))
	assert.Nil(t, c.Get("posts:list:2:12"))
	assert.Nil(t, c.Get("missing"))
}

func TestCacheDeletePrefix(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)

	c.Set("posts:list:1:12", 1, time.Minute)
	c.Set("posts:list:2:12", 2, time.Minute)
	c.Set("other", 3, time.Minute)

	c.DeletePrefix("posts:list:")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Get("other"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b> "))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
}

func TestSanitizeBodyKeepsSafeMarkup(t *testing.T) {
	out := SanitizeBody(`<p onclick="x()">hi <em>there</em></p><script>bad()</script>`)
	assert.Equal(t, "<p>hi <em>there</em></p>", out)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Title\n\nsee ![pic](https://example.com/a.png) and [link](https://example.com)")

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.False(t, strings.Contains(out, "<body>"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
