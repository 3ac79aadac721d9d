package feed

import (
	"context"
	"slices"
	"time"

	"github.com/lysyi3m/storyfeed/app/database"
)

const testMinScore = 5

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func article(id int64, userID int64, publishedAt time.Time, score int) database.Article {
	return database.Article{
		ID:          id,
		UserID:      userID,
		Title:       "Story",
		Published:   true,
		PublishedAt: &publishedAt,
		Score:       score,
	}
}

// fixtureArticles mirrors the canonical feed fixture: one article each at
// now, two days, two weeks, two months and two years ago.
func fixtureArticles() []database.Article {
	return []database.Article{
		article(1, 10, testNow, testMinScore+1),
		article(2, 11, testNow.AddDate(0, 0, -2), testMinScore+1),
		article(3, 12, testNow.AddDate(0, 0, -14), testMinScore+1),
		article(4, 13, testNow.AddDate(0, -2, 0), testMinScore+1),
		article(5, 14, testNow.AddDate(-2, 0, 0), testMinScore+1),
	}
}

// fakeSource answers queries from memory the way ArticleRepo does.
type fakeSource struct {
	articles []database.Article
	calls    int
	err      error
}

func (f *fakeSource) GetPublishedArticles(_ context.Context, q database.ArticleQuery) ([]database.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	var matched []database.Article
	for _, a := range f.articles {
		if !a.Published || a.PublishedAt == nil {
			continue
		}
		if !q.Since.IsZero() && a.PublishedAt.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && a.PublishedAt.After(q.Until) {
			continue
		}
		if q.MinScore != nil && a.Score <= *q.MinScore {
			continue
		}
		if q.UserID != 0 && a.UserID != q.UserID {
			continue
		}
		matched = append(matched, a)
	}
	slices.SortStableFunc(matched, compareArticles)

	start := min(q.Offset, len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	return matched[start:end], nil
}

type fakePageViews struct {
	read map[int64]map[int64]struct{}
}

func (f *fakePageViews) RecordPageView(_ context.Context, userID, articleID int64, _ time.Time) error {
	if f.read == nil {
		f.read = make(map[int64]map[int64]struct{})
	}
	if f.read[userID] == nil {
		f.read[userID] = make(map[int64]struct{})
	}
	f.read[userID][articleID] = struct{}{}
	return nil
}

func (f *fakePageViews) GetReadArticleIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for id := range f.read[userID] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func signedIn() Viewer {
	return Viewer{UserID: 99, Username: "reader"}
}
