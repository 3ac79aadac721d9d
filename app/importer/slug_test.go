package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello, World!":                "hello-world",
		"  Crème brûlée à la carte  ":  "creme-brulee-a-la-carte",
		"Go 1.24: what's new?":         "go-1-24-what-s-new",
		"---":                          "article",
		"":                             "article",
		"Ünïcödé   spaces\tand\ttabs":  "unicode-spaces-and-tabs",
	}

	for input, expected := range tests {
		if got := Slugify(input); got != expected {
			t.Errorf("Slugify(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestSlugifyLength(t *testing.T) {
	slug := Slugify(strings.Repeat("word ", 50))
	if len(slug) > maxSlugLength {
		t.Errorf("Expected slug of at most %d bytes, got %d", maxSlugLength, len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("Slug should not end with a dash: %s", slug)
	}
}

type slugSet map[string]bool

func (s slugSet) SlugExists(_ context.Context, _ int64, slug string) (bool, error) {
	return s[slug], nil
}

type failingChecker struct{}

func (failingChecker) SlugExists(context.Context, int64, string) (bool, error) {
	return false, errors.New("boom")
}

func TestUniqueSlug(t *testing.T) {
	slug, err := UniqueSlug(context.Background(), slugSet{}, 1, "Fresh Title")
	if err != nil {
		t.Fatal(err)
	}
	if slug != "fresh-title" {
		t.Errorf("Expected 'fresh-title', got '%s'", slug)
	}

	slug, err = UniqueSlug(context.Background(), slugSet{"fresh-title": true}, 1, "Fresh Title")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(slug, "fresh-title-") || len(slug) != len("fresh-title-")+8 {
		t.Errorf("Expected suffixed slug, got '%s'", slug)
	}

	if _, err := UniqueSlug(context.Background(), failingChecker{}, 1, "x"); err == nil {
		t.Error("Expected checker error to propagate")
	}
}
