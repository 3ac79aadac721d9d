package importer

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS or Atom document into source metadata and normalized
// items.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse source: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}
	if parsed.Image != nil {
		metadata.ImageURL = parsed.Image.URL
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		item := normalizeItem(entry)
		item.ContentHash = contentHash(item)
		items = append(items, item)
	}

	return metadata, items, nil
}

func normalizeItem(entry *gofeed.Item) Item {
	item := Item{
		GUID:        cmp.Or(entry.GUID, entry.Link),
		Title:       strings.TrimSpace(entry.Title),
		Link:        entry.Link,
		Description: entry.Description,
		Content:     entry.Content,
		PublishedAt: cmp.Or(entry.PublishedParsed, entry.UpdatedParsed),
		Authors:     extractAuthors(entry),
		Categories:  entry.Categories,
	}

	if entry.Image != nil {
		item.ImageURL = entry.Image.URL
	}

	// RSS 2.0 allows a single enclosure per item.
	if len(entry.Enclosures) > 0 && entry.Enclosures[0] != nil {
		item.EnclosureURL = entry.Enclosures[0].URL
		item.EnclosureType = entry.Enclosures[0].Type
	}

	if entry.ITunesExt != nil {
		item.DurationSeconds = parseDuration(entry.ITunesExt.Duration)
		if item.ImageURL == "" {
			item.ImageURL = entry.ITunesExt.Image
		}
	}

	return item
}

func contentHash(item Item) string {
	hash := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return hex.EncodeToString(hash[:])
}

func extractAuthors(entry *gofeed.Item) []string {
	var authors []string

	if len(entry.Authors) > 0 {
		for _, author := range entry.Authors {
			if author == nil {
				continue
			}
			if formatted := formatAuthor(author.Name, author.Email); formatted != "" {
				authors = append(authors, formatted)
			}
		}
	} else if entry.Author != nil {
		if formatted := formatAuthor(entry.Author.Name, entry.Author.Email); formatted != "" {
			authors = append(authors, formatted)
		}
	}

	return authors
}

func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case name != "":
		return name
	default:
		return email
	}
}

// parseDuration accepts plain seconds, "mm:ss" or "hh:mm:ss".
func parseDuration(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0
	}

	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
