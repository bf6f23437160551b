package service

import (
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erazemk/lostfound/internal/model"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_item_cache_hits_total",
		Help: "Item lookups served from cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_item_cache_misses_total",
		Help: "Item lookups that went to the database.",
	})
)

// itemCache holds recently looked up items by id and by unique_id. Writers
// refresh entries after every create and claim. A nil cache is disabled.
type itemCache struct {
	lru *expirable.LRU[string, model.Item]
}

func newItemCache(size int, ttl time.Duration) *itemCache {
	if size <= 0 {
		return nil
	}
	return &itemCache{lru: expirable.NewLRU[string, model.Item](size, nil, ttl)}
}

func idKey(id int64) string { return "id:" + strconv.FormatInt(id, 10) }
func uniqueKey(uid string) string { return "uid:" + uid }

func (c *itemCache) get(key string) (*model.Item, bool) {
	if c == nil {
		return nil, false
	}
	item, ok := c.lru.Get(key)
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return &item, true
}

func (c *itemCache) put(item *model.Item) {
	if c == nil || item == nil {
		return
	}
	c.lru.Add(idKey(item.ID), *item)
	c.lru.Add(uniqueKey(item.UniqueID), *item)
}
