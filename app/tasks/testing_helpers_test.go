package tasks

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	users    *database.UserRepo
	articles *database.ArticleRepo
}

func newTestStore(t *testing.T) testStore {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	return testStore{users: database.NewUserRepo(db), articles: database.NewArticleRepo(db)}
}

const articleHTML = `<!DOCTYPE html>
<html><head><title>Long read</title></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Long read</h1>
<p>This paragraph is the heart of the article and carries enough words for the readability scorer to treat it as the main content of the page, with commas, clauses, and plenty of ordinary prose to score well.</p>
<p>A second paragraph continues the story with further detail so that the extracted body is comfortably above the minimum content length, describing how the importer fetches pages, parses them, and stores the result.</p>
<p>A third paragraph rounds things off, mentioning nothing in particular but doing so at sufficient length to be kept, because short fragments of text are often discarded as boilerplate by content extraction.</p>
<p>A fourth paragraph exists purely to add weight, so that the candidate container stands well clear of every threshold the extractor applies when choosing what to keep from a page like this one.</p>
</article>
<footer>Copyright</footer>
</body></html>`

// newSourceServer serves an RSS document whose entries link back to the
// server, plus the HTML pages those entries point at.
func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(strings.ReplaceAll(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Source</title>
    <link>BASE/</link>
    <item>
      <title>Long read</title>
      <link>BASE/posts/long-read</link>
      <description>A summary only</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Sponsored: buy things</title>
      <link>BASE/posts/sponsored</link>
      <description>Ad</description>
    </item>
  </channel>
</rss>`, "BASE", server.URL)))
		case strings.HasPrefix(r.URL.Path, "/posts/"):
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(articleHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func newSourceConfig(server *httptest.Server) *importer.Config {
	return &importer.Config{
		Name:     "example",
		URL:      server.URL + "/feed.xml",
		Username: "example",
		Author:   "Example Writer",
		Settings: importer.ConfigSettings{
			Enabled:         true,
			RefreshInterval: 3600,
			MaxItems:        10,
			Timeout:         5,
			ExtractContent:  true,
		},
		Filters: []importer.ConfigFilter{{Field: "title", Excludes: []string{"sponsored"}}},
	}
}
