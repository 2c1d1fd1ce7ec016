package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ArticleKeyPrefix = "article:%s"
	TrendingKey      = "articles:trending"
	RecentKey        = "articles:recent"
	CategoryTreeKey  = "categories:tree"
	UserKeyPrefix    = "user:%d"
	AdminStatsKey    = "admin:stats"
)

const (
	ArticleTTL      = 10 * time.Minute
	TrendingTTL     = 5 * time.Minute
	RecentTTL       = 2 * time.Minute
	CategoryTreeTTL = 30 * time.Minute
	UserTTL         = 5 * time.Minute
	AdminStatsTTL   = time.Minute
)

func ArticleKey(slug string) string {
	return fmt.Sprintf(ArticleKeyPrefix, slug)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateArticle drops the cached article along with the listing
// caches that may embed it.
func InvalidateArticle(ctx context.Context, slug string) {
	Invalidate(ctx, ArticleKey(slug), TrendingKey, RecentKey)
}

func InvalidateCategoryTree(ctx context.Context) {
	Invalidate(ctx, CategoryTreeKey)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
