package feed

import (
	"cmp"
	"slices"
	"time"

	"github.com/lysyi3m/storyfeed/app/database"
)

const (
	DefaultPageSize    = 25
	DefaultCTAPosition = 3
)

type Options struct {
	MinScore    int
	PageSize    int
	CTAPosition int
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return DefaultPageSize
	}
	return o.PageSize
}

type Request struct {
	Window Window
	Viewer Viewer
	Now    time.Time
	Page   int
}

func (r Request) page() int {
	if r.Page < 1 {
		return 1
	}
	return r.Page
}

// Page is one rendered slice of a feed. CTAIndex is the number of body
// stories preceding the call-to-action, or -1 when there is none.
type Page struct {
	Window      Window
	Number      int
	Featured    *database.Article
	Stories     []database.Article
	CTAIndex    int
	HasNextPage bool
}

func (p *Page) Empty() bool {
	return p.Featured == nil
}

func (p *Page) ShowCTA() bool {
	return p.CTAIndex >= 0
}

// Len counts the featured article together with the body stories.
func (p *Page) Len() int {
	if p.Featured == nil {
		return 0
	}
	return len(p.Stories) + 1
}

// Qualifies reports whether an article belongs in the window.
func Qualifies(article *database.Article, w Window, minScore int, now time.Time) bool {
	if !article.Published || article.PublishedAt == nil {
		return false
	}
	if article.Score <= minScore {
		return false
	}

	publishedAt := *article.PublishedAt
	if publishedAt.After(now) {
		return false
	}
	if cutoff := w.Cutoff(now); !cutoff.IsZero() && publishedAt.Before(cutoff) {
		return false
	}
	return true
}

func compareArticles(a, b database.Article) int {
	if c := b.PublishedTime().Compare(a.PublishedTime()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func filterCandidates(candidates []database.Article, req Request, opts Options, policy ExclusionPolicy) []database.Article {
	kept := make([]database.Article, 0, len(candidates))
	for i := range candidates {
		article := &candidates[i]
		if !Qualifies(article, req.Window, opts.MinScore, req.Now) {
			continue
		}
		if req.Viewer.Authenticated() && policy != nil && policy.Excluded(article, req.Viewer) {
			continue
		}
		kept = append(kept, *article)
	}
	return kept
}

// Assemble builds one feed page from candidate articles. Candidates that
// do not qualify or that the policy excludes are dropped, the rest are
// ordered newest first and paged.
func Assemble(candidates []database.Article, req Request, opts Options, policy ExclusionPolicy) *Page {
	kept := filterCandidates(candidates, req, opts, policy)
	slices.SortStableFunc(kept, compareArticles)

	size := opts.pageSize()
	number := req.page()
	page := &Page{
		Window:   req.Window,
		Number:   number,
		CTAIndex: -1,
	}

	start := (number - 1) * size
	if start >= len(kept) {
		return page
	}
	end := min(start+size, len(kept))
	page.HasNextPage = end < len(kept)

	featured := kept[start]
	page.Featured = &featured
	page.Stories = kept[start+1 : end]

	if !req.Viewer.Authenticated() && opts.CTAPosition > 0 && len(page.Stories) >= opts.CTAPosition {
		page.CTAIndex = opts.CTAPosition
	}

	return page
}
