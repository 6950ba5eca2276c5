package helper

import "github.com/gosimple/slug"

// FallbackSlug is returned when normalization strips the input to nothing,
// so tag and post slugs are never empty.
const FallbackSlug = "n-a"

// Slugify turns free text into a lowercase, URL-safe identifier.
func Slugify(text string) string {
	s := slug.Make(text)
	if s == "" {
		return FallbackSlug
	}
	return s
}
