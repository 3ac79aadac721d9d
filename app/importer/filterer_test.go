package importer

import (
	"strings"
	"testing"
)

func TestFiltererNoFilters(t *testing.T) {
	items := []Item{{Title: "One"}, {Title: "Two"}}

	result := NewFilterer().Run(items, &Config{})

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	for i, item := range result {
		if item.IsFiltered {
			t.Errorf("Item %d should not be filtered when no filters are configured", i)
		}
	}
}

func TestFiltererIncludesAndExcludes(t *testing.T) {
	items := []Item{
		{Title: "Go 1.24 released", Categories: []string{"release"}},
		{Title: "Go sponsored webinar", Categories: []string{"events"}},
		{Title: "Rust weekly", Categories: []string{"news"}},
	}

	config := &Config{
		Filters: []ConfigFilter{
			{Field: "title", Includes: []string{"GO"}, Excludes: []string{"sponsored"}},
		},
	}

	result := NewFilterer().Run(items, config)
	if len(result) != 3 {
		t.Fatalf("Filtered items must be kept and marked, got %d items", len(result))
	}

	if result[0].IsFiltered {
		t.Errorf("Expected '%s' to pass, reason: %s", result[0].Title, result[0].FilterReason)
	}
	if !result[1].IsFiltered || !strings.Contains(result[1].FilterReason, "contains 'sponsored'") {
		t.Errorf("Expected exclude match, got filtered=%v reason=%q", result[1].IsFiltered, result[1].FilterReason)
	}
	if !result[2].IsFiltered || !strings.Contains(result[2].FilterReason, "does not contain") {
		t.Errorf("Expected include miss, got filtered=%v reason=%q", result[2].IsFiltered, result[2].FilterReason)
	}
}

func TestFiltererMultipleFields(t *testing.T) {
	items := []Item{
		{Title: "Weekly digest", Authors: []string{"Jane Writer"}, Link: "https://example.com/a"},
		{Title: "Weekly digest", Authors: []string{"Bot"}, Link: "https://example.com/b"},
		{Title: "Weekly digest", Authors: []string{"Jane Writer"}, Link: "https://ads.example.com/c"},
	}

	config := &Config{
		Filters: []ConfigFilter{
			{Field: "authors", Includes: []string{"jane"}},
			{Field: "link", Excludes: []string{"ads."}},
		},
	}

	result := NewFilterer().Run(items, config)

	expected := []bool{false, true, true}
	for i, item := range result {
		if item.IsFiltered != expected[i] {
			t.Errorf("Item %d: expected filtered=%v, got %v (%s)", i, expected[i], item.IsFiltered, item.FilterReason)
		}
	}
}

func TestFieldValue(t *testing.T) {
	item := Item{
		Title:       "T",
		Description: "D",
		Content:     "C",
		Link:        "L",
		Authors:     []string{"a1", "a2"},
		Categories:  []string{"c1", "c2"},
	}

	tests := map[string]string{
		"title":       "T",
		"description": "D",
		"content":     "C",
		"link":        "L",
		"authors":     "a1 a2",
		"categories":  "c1 c2",
		"unknown":     "",
	}

	for field, expected := range tests {
		if got := fieldValue(item, field); got != expected {
			t.Errorf("fieldValue(%s): expected %q, got %q", field, expected, got)
		}
	}
}
