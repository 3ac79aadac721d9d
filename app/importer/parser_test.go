package importer

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Source</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Test Source</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>  Test Item 1 </title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <category>Programming</category>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
    </item>
  </channel>
</rss>`

	metadata, items, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Source" {
		t.Errorf("Expected title 'Test Source', got: %s", metadata.Title)
	}
	if metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", metadata.Language)
	}
	if metadata.ImageURL != "https://example.com/icon.png" {
		t.Errorf("Expected image URL 'https://example.com/icon.png', got: %s", metadata.ImageURL)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.Title != "Test Item 1" {
		t.Errorf("Expected trimmed title 'Test Item 1', got: %q", first.Title)
	}
	if first.GUID != "item-1" {
		t.Errorf("Expected GUID 'item-1', got: %s", first.GUID)
	}
	if first.PublishedAt == nil || first.PublishedAt.Hour() != 10 {
		t.Errorf("Expected publish time 10:00, got: %v", first.PublishedAt)
	}
	if len(first.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(first.Categories))
	}
	if len(first.Authors) != 1 {
		t.Errorf("Expected 1 author, got: %v", first.Authors)
	}
	if first.ContentHash == "" {
		t.Error("Expected content hash to be set")
	}

	second := items[1]
	if second.GUID != "https://example.com/item2" {
		t.Errorf("Expected GUID to fall back to link, got: %s", second.GUID)
	}
	if second.PublishedAt != nil {
		t.Errorf("Expected no publish time, got: %v", second.PublishedAt)
	}
	if first.ContentHash == second.ContentHash {
		t.Error("Expected distinct content hashes")
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Source</title>
  <link href="https://example.org/"/>
  <updated>2024-01-02T18:30:02Z</updated>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.org/2024/01/02/entry"/>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <updated>2024-01-02T18:30:02Z</updated>
    <content type="html">&lt;p&gt;Full body&lt;/p&gt;</content>
    <author><name>Jane Writer</name></author>
  </entry>
</feed>`

	metadata, items, err := NewParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Atom Source" {
		t.Errorf("Expected title 'Atom Source', got: %s", metadata.Title)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	entry := items[0]
	if entry.Content != "<p>Full body</p>" {
		t.Errorf("Expected HTML content, got: %q", entry.Content)
	}
	if entry.PublishedAt == nil {
		t.Error("Expected publish time to fall back to updated time")
	}
	if len(entry.Authors) != 1 || entry.Authors[0] != "Jane Writer" {
		t.Errorf("Expected author 'Jane Writer', got: %v", entry.Authors)
	}
}

func TestParseVideoEnclosure(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Screencasts</title>
    <link>https://example.com</link>
    <item>
      <title>Episode 1</title>
      <link>https://example.com/episodes/1</link>
      <enclosure url="https://cdn.example.com/ep1.mp4" length="1024" type="video/mp4"/>
      <itunes:duration>12:34</itunes:duration>
      <itunes:image href="https://cdn.example.com/ep1.jpg"/>
    </item>
  </channel>
</rss>`

	_, items, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	episode := items[0]
	if !episode.IsVideo() {
		t.Error("Expected item to be recognised as video")
	}
	if episode.EnclosureURL != "https://cdn.example.com/ep1.mp4" {
		t.Errorf("Unexpected enclosure URL: %s", episode.EnclosureURL)
	}
	if episode.DurationSeconds != 754 {
		t.Errorf("Expected duration 754s, got %v", episode.DurationSeconds)
	}
}

func TestParseInvalidData(t *testing.T) {
	if _, _, err := NewParser().Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid data")
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]float64{
		"":         0,
		"90":       90,
		"1:30":     90,
		"01:02:03": 3723,
		"abc":      0,
		"1:2:3:4":  0,
	}

	for input, expected := range tests {
		if got := parseDuration(input); got != expected {
			t.Errorf("parseDuration(%q): expected %v, got %v", input, expected, got)
		}
	}
}

func TestFormatAuthor(t *testing.T) {
	if got := formatAuthor("Jane", "jane@example.com"); got != "jane@example.com (Jane)" {
		t.Errorf("Unexpected author format: %s", got)
	}
	if got := formatAuthor(" Jane ", ""); got != "Jane" {
		t.Errorf("Unexpected author format: %s", got)
	}
	if got := formatAuthor("", ""); got != "" {
		t.Errorf("Expected empty author, got: %s", got)
	}
}
