package service

import (
	"context"
	"slices"

	"github.com/redis/go-redis/v9"

	"quickforge/internal/cache"
	"quickforge/internal/models"
	"quickforge/internal/repository"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedService composes the public feed. Pages are cached independent
// of the viewer; the viewer's liked flag is derived from the merged
// like-set after the cache read.
type FeedService struct {
	creations repository.CreationRepository
	likes     repository.LikeRepository
	rdb       *redis.Client
}

func NewFeedService(creations repository.CreationRepository, likes repository.LikeRepository, rdb *redis.Client) *FeedService {
	return &FeedService{creations: creations, likes: likes, rdb: rdb}
}

// ComposePublicFeed returns one page of published creations. Each row
// carries the union of canonical likes and whatever the legacy likes
// column still holds, with the like count normalized to that union.
func (s *FeedService) ComposePublicFeed(ctx context.Context, filter, viewerID string, limit, offset int) ([]models.Creation, error) {
	if filter == "" {
		filter = repository.FilterNewest
	}
	if !repository.ValidFilter(filter) {
		return nil, models.NewValidationError("unknown feed filter")
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}

	page, err := cache.Aside(ctx, s.rdb, cache.FeedKey(filter, limit, offset), cache.FeedTTL,
		func(ctx context.Context) ([]models.Creation, error) {
			return s.loadPage(ctx, filter, limit, offset)
		})
	if err != nil {
		return nil, err
	}

	// Viewer-specific flag, computed after the shared cache read.
	for i := range page {
		page[i].Liked = viewerID != "" && slices.Contains(page[i].LikedBy, viewerID)
	}
	return page, nil
}

func (s *FeedService) loadPage(ctx context.Context, filter string, limit, offset int) ([]models.Creation, error) {
	page, err := s.creations.ListPublic(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range page {
		canonical, err := s.likes.LikedUserIDs(ctx, page[i].ID)
		if err != nil {
			return nil, err
		}
		merged := models.MergeLikeSets(canonical, models.ParseLegacyLikes(page[i].LegacyLikes))
		page[i].LikedBy = merged
		page[i].LikesCount = int64(len(merged))
		if page[i].Comments == nil {
			page[i].Comments = []models.Comment{}
		}
	}
	return page, nil
}
