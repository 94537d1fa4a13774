package util

import (
	"os"
	"path/filepath"
	"strings"
)

const PlaceholderImage = "/static/images/no-image.png"

// ImageResolver turns a stored image reference into a public URL. Bare file
// names are looked up under the static directory.
type ImageResolver struct {
	StaticDir string
}

func (r *ImageResolver) exists(rel string) bool {
	if r == nil || r.StaticDir == "" {
		return false
	}
	st, err := os.Stat(filepath.Join(r.StaticDir, filepath.FromSlash(rel)))
	return err == nil && !st.IsDir()
}

func (r *ImageResolver) Resolve(image string) string {
	image = strings.TrimSpace(image)
	switch {
	case image == "":
		return PlaceholderImage
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"), strings.HasPrefix(image, "/"):
		return image
	case strings.HasPrefix(image, "uploads/"):
		return "/static/" + image
	case strings.HasPrefix(image, "media/"):
		return "/static/" + image
	}

	if strings.Contains(image, "..") {
		return PlaceholderImage
	}
	for _, dir := range []string{"uploads/products", "media"} {
		rel := dir + "/" + image
		if r.exists(rel) {
			return "/static/" + rel
		}
	}
	return PlaceholderImage
}
