package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/cache"
	"github.com/lysyi3m/storyfeed/app/cfg"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
	"github.com/lysyi3m/storyfeed/app/importer"
	"github.com/stretchr/testify/require"
)

const testMinScore = 0

type testEnv struct {
	db        *database.DB
	users     *database.UserRepo
	articles  *database.ArticleRepo
	pageViews *database.PageViewRepo
	handler   *Handler
	router    *gin.Engine
}

type envOptions struct {
	exclusion string
	pageCache cache.PageCache
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		users:     database.NewUserRepo(db),
		articles:  database.NewArticleRepo(db),
		pageViews: database.NewPageViewRepo(db),
	}

	resolver, err := feed.NewExclusionResolver(opts.exclusion, env.pageViews)
	require.NoError(t, err)

	service := feed.NewService(env.articles, resolver, feed.Options{
		MinScore:    testMinScore,
		PageSize:    feed.DefaultPageSize,
		CTAPosition: feed.DefaultCTAPosition,
	})

	config := &cfg.Cfg{Port: "8080", BaseUrl: "https://stories.example.com", Version: "test", PageCacheTTL: 60}
	env.handler = NewHandler(config, env.users, env.articles, env.pageViews, service, importer.NewConfigCache(t.TempDir()), opts.pageCache)
	env.router = NewServer(env.handler)

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *database.User {
	t.Helper()

	user := &database.User{Username: username, Name: "Test " + username, APISecret: "secret-" + username}
	require.NoError(t, e.users.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createArticle(t *testing.T, user *database.User, title string, publishedAt time.Time, score int) *database.Article {
	t.Helper()

	article := &database.Article{
		UserID:      user.ID,
		Title:       title,
		Slug:        importer.Slugify(title),
		Description: "About " + title,
		Published:   true,
		PublishedAt: &publishedAt,
		Score:       score,
		Tags:        []string{"go"},
	}
	require.NoError(t, e.articles.CreateArticle(context.Background(), article))
	return article
}

// createTimeframeFixtures publishes one qualifying article at each of now,
// two days, two weeks, two months and two years ago.
func (e *testEnv) createTimeframeFixtures(t *testing.T) []*database.Article {
	t.Helper()

	author := e.createUser(t, "author")
	now := time.Now().Add(-time.Minute)
	score := testMinScore + 1

	return []*database.Article{
		e.createArticle(t, author, "Fresh story", now, score),
		e.createArticle(t, author, "Days old story", now.AddDate(0, 0, -2), score),
		e.createArticle(t, author, "Weeks old story", now.AddDate(0, 0, -14), score),
		e.createArticle(t, author, "Months old story", now.AddDate(0, -2, 0), score),
		e.createArticle(t, author, "Years old story", now.AddDate(-2, 0, 0), score),
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func apiKey(username string) map[string]string {
	return map[string]string{"api-key": "secret-" + username}
}

// memoryCache is a PageCache backed by a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.sets++
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) Close() error { return nil }

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func testNow() time.Time {
	return time.Now().Add(-time.Minute)
}
