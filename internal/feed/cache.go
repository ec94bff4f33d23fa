package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gradebook_backend/internal/model"
	"gradebook_backend/pkg/logger"
	"gradebook_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Fetcher 拉取原始成绩
type Fetcher interface {
	FetchGrades(ctx context.Context, account model.Account) (*model.GradesResponse, error)
}

// CachedFeed 在 redis 中短暂缓存成绩接口的响应，
// 同一次页面加载里先取学期再取成绩时只会请求一次上游
type CachedFeed struct {
	next  Fetcher
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedFeed(next Fetcher, rdb *redis.Client, ttl time.Duration) *CachedFeed {
	return &CachedFeed{next: next, redis: rdb, ttl: ttl}
}

func cacheKey(account model.Account) string {
	return fmt.Sprintf("gradebook:feed:%s:%s", account.UserID, account.AccountID)
}

func (f *CachedFeed) FetchGrades(ctx context.Context, account model.Account) (*model.GradesResponse, error) {
	if f.redis == nil || f.ttl <= 0 {
		return f.next.FetchGrades(ctx, account)
	}

	key := cacheKey(account)
	if data, err := f.redis.Get(ctx, key).Bytes(); err == nil {
		var cached model.GradesResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			monitoring.FeedCacheResults.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		logger.Log.Warn("discarding unreadable feed cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		// 缓存不可用时直接回源
		logger.Log.Warn("feed cache lookup failed", zap.Error(err))
	}
	monitoring.FeedCacheResults.WithLabelValues("miss").Inc()

	resp, err := f.next.FetchGrades(ctx, account)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := f.redis.Set(ctx, key, data, f.ttl).Err(); err != nil {
			logger.Log.Warn("feed cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// Invalidate 删除某个账号的缓存
func (f *CachedFeed) Invalidate(ctx context.Context, account model.Account) error {
	if f.redis == nil {
		return nil
	}
	return f.redis.Del(ctx, cacheKey(account)).Err()
}
