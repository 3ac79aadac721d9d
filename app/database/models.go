package database

import (
	"strings"
	"time"
)

type User struct {
	ID              int64
	Username        string
	Name            string
	ProfileImageURL string
	APISecret       string
	FeedURL         string // RSS/Atom source the user imports articles from
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Author struct {
	Username        string
	Name            string
	ProfileImageURL string
}

type Article struct {
	ID                     int64
	UserID                 int64
	Author                 Author // Joined from users, read-only
	Title                  string
	Slug                   string
	Path                   string // "/<username>/<slug>"
	Description            string
	BodyHTML               string
	Published              bool
	PublishedAt            *time.Time
	Score                  int
	PublicReactionsCount   int
	CommentsCount          int
	ReadingTime            int // minutes
	Tags                   []string
	CanonicalURL           string
	FeedSourceURL          string // Entry link for imported articles
	ContentHash            string
	Video                  string
	VideoSourceURL         string
	VideoThumbnailURL      string
	VideoDurationInSeconds float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (a *Article) HasVideo() bool {
	return a.Video != ""
}

// PublishedTime returns the publish timestamp, or the zero time for drafts.
func (a *Article) PublishedTime() time.Time {
	if a.PublishedAt == nil {
		return time.Time{}
	}
	return *a.PublishedAt
}

type PageView struct {
	UserID    int64
	ArticleID int64
	ViewedAt  time.Time
}

func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ", ")
}

func splitTags(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
