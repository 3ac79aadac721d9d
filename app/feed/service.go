package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/storyfeed/app/database"
)

// ArticleSource is the read side of the article store the selector needs.
type ArticleSource interface {
	GetPublishedArticles(ctx context.Context, q database.ArticleQuery) ([]database.Article, error)
}

type Service struct {
	articles   ArticleSource
	exclusions ExclusionResolver
	opts       Options
}

func NewService(articles ArticleSource, exclusions ExclusionResolver, opts Options) *Service {
	if exclusions == nil {
		exclusions = StaticExclusion(NoExclusion)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Service{
		articles:   articles,
		exclusions: exclusions,
		opts:       opts,
	}
}

func (s *Service) Options() Options {
	return s.opts
}

// SelectFeed loads the requested page of a window. Excluded articles do
// not count against the page size, so the store is read in batches until
// the page and one look-ahead article are filled.
func (s *Service) SelectFeed(ctx context.Context, req Request) (*Page, error) {
	if _, err := ParseWindow(string(req.Window)); err != nil {
		return nil, err
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	policy, err := s.exclusions.Resolve(ctx, req.Viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve exclusion policy: %w", err)
	}

	minScore := s.opts.MinScore
	query := database.ArticleQuery{
		Since:    req.Window.Cutoff(req.Now),
		Until:    req.Now,
		MinScore: &minScore,
		Limit:    s.opts.PageSize * 2,
	}

	needed := req.page()*s.opts.PageSize + 1
	var kept []database.Article
	for len(kept) < needed {
		batch, err := s.articles.GetPublishedArticles(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s feed: %w", req.Window, err)
		}

		kept = append(kept, filterCandidates(batch, req, s.opts, policy)...)
		if len(batch) < query.Limit {
			break
		}
		query.Offset += len(batch)
	}

	page := Assemble(kept, req, s.opts, policy)

	slog.Debug("Feed selected",
		"window", req.Window,
		"page", page.Number,
		"authenticated", req.Viewer.Authenticated(),
		"stories", page.Len())

	return page, nil
}
