package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = RunMigrations(db)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *DB, username string) *User {
	t.Helper()

	user := &User{Username: username, Name: "Test " + username, APISecret: "secret-" + username}
	require.NoError(t, NewUserRepo(db).CreateUser(context.Background(), user))
	return user
}

func createTestArticle(t *testing.T, db *DB, user *User, title string, publishedAt time.Time, score int) *Article {
	t.Helper()

	article := &Article{
		UserID:      user.ID,
		Title:       title,
		Slug:        slugFor(title),
		Published:   true,
		PublishedAt: &publishedAt,
		Score:       score,
	}
	require.NoError(t, NewArticleRepo(db).CreateArticle(context.Background(), article))
	return article
}

func slugFor(title string) string {
	b := make([]byte, 0, len(title))
	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		default:
			b = append(b, '-')
		}
	}
	return string(b)
}
