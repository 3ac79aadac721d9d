package feed

import (
	"context"
	"fmt"

	"github.com/lysyi3m/storyfeed/app/database"
)

// ExclusionPolicy hides otherwise qualifying articles from a signed-in
// viewer. It is never consulted for anonymous viewers.
type ExclusionPolicy interface {
	Excluded(article *database.Article, viewer Viewer) bool
}

type ExclusionFunc func(article *database.Article, viewer Viewer) bool

func (f ExclusionFunc) Excluded(article *database.Article, viewer Viewer) bool {
	return f(article, viewer)
}

var NoExclusion ExclusionPolicy = ExclusionFunc(func(*database.Article, Viewer) bool {
	return false
})

var ExcludeOwnArticles ExclusionPolicy = ExclusionFunc(func(article *database.Article, viewer Viewer) bool {
	return article.UserID == viewer.UserID
})

// ExcludeArticleIDs hides a fixed set of articles, typically the ones the
// viewer has already read.
type ExcludeArticleIDs map[int64]struct{}

func (ids ExcludeArticleIDs) Excluded(article *database.Article, _ Viewer) bool {
	_, ok := ids[article.ID]
	return ok
}

// ExclusionResolver produces the policy for one request.
type ExclusionResolver interface {
	Resolve(ctx context.Context, viewer Viewer) (ExclusionPolicy, error)
}

type staticResolver struct {
	policy ExclusionPolicy
}

func (r staticResolver) Resolve(context.Context, Viewer) (ExclusionPolicy, error) {
	return r.policy, nil
}

func StaticExclusion(policy ExclusionPolicy) ExclusionResolver {
	if policy == nil {
		policy = NoExclusion
	}
	return staticResolver{policy: policy}
}

// ReadExclusion hides articles the viewer has a page view for.
type ReadExclusion struct {
	PageViews database.PageViewRepository
}

func (r ReadExclusion) Resolve(ctx context.Context, viewer Viewer) (ExclusionPolicy, error) {
	if !viewer.Authenticated() {
		return NoExclusion, nil
	}

	ids, err := r.PageViews.GetReadArticleIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load read articles: %w", err)
	}
	return ExcludeArticleIDs(ids), nil
}

// NewExclusionResolver maps a configured policy name (none, own, read) to
// a resolver.
func NewExclusionResolver(name string, pageViews database.PageViewRepository) (ExclusionResolver, error) {
	switch name {
	case "", "none":
		return StaticExclusion(NoExclusion), nil
	case "own":
		return StaticExclusion(ExcludeOwnArticles), nil
	case "read":
		if pageViews == nil {
			return nil, fmt.Errorf("read exclusion requires a page view repository")
		}
		return ReadExclusion{PageViews: pageViews}, nil
	default:
		return nil, fmt.Errorf("unknown exclusion policy: %s", name)
	}
}
