// Package tagcache keeps each board's tag cloud in Redis so that pages do
// not run the tag aggregate on every request.
package tagcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mahesh-singh/hasjob/internal/model"
)

// Source computes tag counts; *store.Store satisfies it.
type Source interface {
	GetTags(ctx context.Context, board *model.Board, alltime bool) ([]model.TagCount, error)
}

// Cache serves tag counts from Redis, falling back to Source.
type Cache struct {
	rdb redis.Cmdable
	src Source
	ttl time.Duration
}

// New returns a Cache whose entries expire after ttl.
func New(rdb redis.Cmdable, src Source, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, src: src, ttl: ttl}
}

func key(board *model.Board, alltime bool) string {
	name := "-"
	if board != nil {
		name = board.Name
	}
	return "tags:" + name + ":" + strconv.FormatBool(alltime)
}

// Tags returns the tag counts for board, computing and caching them on a miss.
func (c *Cache) Tags(ctx context.Context, board *model.Board, alltime bool) ([]model.TagCount, error) {
	raw, err := c.rdb.Get(ctx, key(board, alltime)).Bytes()
	if err == nil {
		var tags []model.TagCount
		if err := json.Unmarshal(raw, &tags); err == nil {
			return tags, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logrus.WithError(err).Warn("tag cache read failed")
	}

	tags, err := c.src.GetTags(ctx, board, alltime)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, board, alltime, tags); err != nil {
		logrus.WithError(err).Warn("tag cache write failed")
	}
	return tags, nil
}

// Refresh recomputes both the recent and the all-time tag counts for board.
func (c *Cache) Refresh(ctx context.Context, board *model.Board) error {
	for _, alltime := range []bool{false, true} {
		tags, err := c.src.GetTags(ctx, board, alltime)
		if err != nil {
			return fmt.Errorf("getTags(%v): %w", alltime, err)
		}
		if err := c.put(ctx, board, alltime, tags); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) put(ctx context.Context, board *model.Board, alltime bool, tags []model.TagCount) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, key(board, alltime), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
