package importer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

// Slugify lowercases a title, folds accents and joins the remaining
// letters and digits with single dashes.
func Slugify(title string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "article"
	}
	return slug
}

// SlugChecker reports whether a user already owns a slug.
type SlugChecker interface {
	SlugExists(ctx context.Context, userID int64, slug string) (bool, error)
}

// UniqueSlug returns the slug for title, suffixed with a short random id
// when the owner already has an article under that slug.
func UniqueSlug(ctx context.Context, checker SlugChecker, userID int64, title string) (string, error) {
	base := Slugify(title)
	slug := base

	for range 5 {
		exists, err := checker.SlugExists(ctx, userID, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + uuid.NewString()[:8]
	}

	return "", fmt.Errorf("could not find a free slug for %q", base)
}
