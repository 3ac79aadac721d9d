package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePageView(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	article := env.createArticle(t, author, "Readable", time.Now().Add(-time.Hour), 1)

	body := `{"article_id":` + itoa(article.ID) + `}`

	w := env.do(t, http.MethodPost, "/api/page_views", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized","status":401}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/page_views", body, apiKey("reader"))
	assert.Equal(t, http.StatusCreated, w.Code)

	// Recording the same view twice is fine.
	w = env.do(t, http.MethodPost, "/api/page_views", body, apiKey("reader"))
	assert.Equal(t, http.StatusCreated, w.Code)

	read, err := env.pageViews.GetReadArticleIDs(context.Background(), reader.ID)
	require.NoError(t, err)
	assert.Len(t, read, 1)
	assert.Contains(t, read, article.ID)
}

func TestCreatePageViewErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.createUser(t, "reader")

	w := env.do(t, http.MethodPost, "/api/page_views", `{"article_id":9999}`, apiKey("reader"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/page_views", `{}`, apiKey("reader"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/page_views", `not json`, apiKey("reader"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
