package provider

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// CacheEntry is a stored provider response.
type CacheEntry struct {
	CacheKey  string `gorm:"primaryKey;size:64"`
	Kind      string `gorm:"size:32;not null"`
	Request   string `gorm:"size:255;not null"`
	Payload   []byte `gorm:"not null"`
	CreatedAt time.Time
}

// TableName is the provider cache table.
func (CacheEntry) TableName() string {
	return "provider_cache"
}

// CachingFetcher serves repeated requests from the provider_cache table and
// only asks the inner Source on a miss. Cache read or write failures are logged
// and the request proceeds uncached.
type CachingFetcher struct {
	inner Source
	db    *gorm.DB
}

// NewCachingFetcher wraps inner with a database-backed cache.
func NewCachingFetcher(inner Source, db *gorm.DB) *CachingFetcher {
	return &CachingFetcher{inner: inner, db: db}
}

// Fetch returns the cached body for req, fetching and storing it on a miss.
func (c *CachingFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	key := req.Key()

	var entries []CacheEntry
	if err := c.db.WithContext(ctx).Where("cache_key = ?", key).Limit(1).Find(&entries).Error; err != nil {
		logger.Warnf("Provider cache lookup failed for %s: %v", req, err)
	} else if len(entries) == 1 {
		logger.Debugf("Provider cache hit for %s", req)
		return entries[0].Payload, nil
	}

	body, err := c.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := CacheEntry{CacheKey: key, Kind: req.Kind, Request: req.String(), Payload: body}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		logger.Warnf("Provider cache store failed for %s: %v", req, err)
	}
	return body, nil
}

var _ Source = (*CachingFetcher)(nil)
