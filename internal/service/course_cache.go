package service

import (
	"coder_edu_progress/internal/model"
	"coder_edu_progress/pkg/logger"
	"coder_edu_progress/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const courseCacheKeyPrefix = "course:"

// CourseCache 课程快照缓存；缓存失败只影响性能，不影响结果
type CourseCache interface {
	Get(ctx context.Context, slug string) (*model.Course, bool)
	Set(ctx context.Context, course *model.Course)
	Invalidate(ctx context.Context, slugs ...string)
}

type RedisCourseCache struct {
	Redis *redis.Client
	ttl   atomic.Int64
}

func NewRedisCourseCache(rdb *redis.Client, ttl time.Duration) *RedisCourseCache {
	c := &RedisCourseCache{Redis: rdb}
	c.SetTTL(ttl)
	return c
}

func (c *RedisCourseCache) SetTTL(ttl time.Duration) {
	c.ttl.Store(int64(ttl))
}

func (c *RedisCourseCache) Get(ctx context.Context, slug string) (*model.Course, bool) {
	val, err := c.Redis.Get(ctx, courseCacheKeyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		monitoring.CourseCacheCounter.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		monitoring.CourseCacheCounter.WithLabelValues("error").Inc()
		logger.Log.Warn("course cache get failed", zap.String("slug", slug), zap.Error(err))
		return nil, false
	}

	var course model.Course
	if err := json.Unmarshal(val, &course); err != nil {
		monitoring.CourseCacheCounter.WithLabelValues("error").Inc()
		return nil, false
	}
	monitoring.CourseCacheCounter.WithLabelValues("hit").Inc()
	return &course, true
}

func (c *RedisCourseCache) Set(ctx context.Context, course *model.Course) {
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, courseCacheKeyPrefix+course.Slug, data, time.Duration(c.ttl.Load())).Err(); err != nil {
		logger.Log.Warn("course cache set failed", zap.String("slug", course.Slug), zap.Error(err))
	}
}

func (c *RedisCourseCache) Invalidate(ctx context.Context, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, courseCacheKeyPrefix+s)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("course cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// NopCourseCache 关闭缓存时使用
type NopCourseCache struct{}

func (NopCourseCache) Get(context.Context, string) (*model.Course, bool) { return nil, false }
func (NopCourseCache) Set(context.Context, *model.Course)               {}
func (NopCourseCache) Invalidate(context.Context, ...string)            {}
