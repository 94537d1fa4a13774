package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	off, lim := Calculate(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, DefaultPageSize, lim)

	off, lim = Calculate(3, 5)
	assert.Equal(t, 10, off)
	assert.Equal(t, 5, lim)

	_, lim = Calculate(1, 1000)
	assert.Equal(t, DefaultPageSize, lim)
}

func TestMeta(t *testing.T) {
	m := Meta(2, 12, 30)
	assert.Equal(t, PageMeta{Page: 2, Size: 12, Total: 30, TotalPages: 3, HasPrev: true, HasNext: true}, m)

	m = Meta(1, 12, 0)
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasPrev)
	assert.False(t, m.HasNext)

	m = Meta(3, 12, 30)
	assert.False(t, m.HasNext)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestParseIDList(t *testing.T) {
	assert.Equal(t, []uint{1, 2, 30}, ParseIDList("1, 2,,x,-4,0,30"))
	assert.Nil(t, ParseIDList(""))
}

func TestImageResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "uploads", "products"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uploads", "products", "a.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "b.jpg"), []byte("x"), 0o644))

	r := &ImageResolver{StaticDir: dir}

	cases := map[string]string{
		"":                       PlaceholderImage,
		"https://cdn/x.png":      "https://cdn/x.png",
		"/static/x.png":          "/static/x.png",
		"uploads/products/z.jpg": "/static/uploads/products/z.jpg",
		"media/y.jpg":            "/static/media/y.jpg",
		"a.jpg":                  "/static/uploads/products/a.jpg",
		"b.jpg":                  "/static/media/b.jpg",
		"missing.jpg":            PlaceholderImage,
		"../secret":              PlaceholderImage,
	}
	for in, want := range cases {
		assert.Equal(t, want, r.Resolve(in), in)
	}

	var nilResolver *ImageResolver
	assert.Equal(t, PlaceholderImage, nilResolver.Resolve("a.jpg"))
}
