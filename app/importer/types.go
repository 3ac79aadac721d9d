package importer

import (
	"strings"
	"time"
)

// Source processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	ImageURL    string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time
	Authors     []string // "email (name)" or "name"
	Categories  []string
	ImageURL    string

	ContentHash  string
	IsFiltered   bool
	FilterReason string

	EnclosureURL    string
	EnclosureType   string
	DurationSeconds float64 // from itunes:duration when present
}

// IsVideo reports whether the entry carries a video enclosure.
func (i *Item) IsVideo() bool {
	return i.EnclosureURL != "" && strings.HasPrefix(i.EnclosureType, "video/")
}

// Configuration types

type Config struct {
	Name     string         // derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Username string         `yaml:"username"`
	Author   string         `yaml:"author"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool  `yaml:"enabled"`
	RefreshInterval int   `yaml:"refresh_interval"` // seconds
	MaxItems        int   `yaml:"max_items"`
	Timeout         int   `yaml:"timeout"`         // seconds
	ExtractContent  bool  `yaml:"extract_content"` // fetch full article HTML after import
	Publish         *bool `yaml:"publish"`         // defaults to true
}

func (s ConfigSettings) ShouldPublish() bool {
	return s.Publish == nil || *s.Publish
}

func (s ConfigSettings) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s ConfigSettings) GetRefreshInterval() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
