// Package cache keeps a locally persisted, bucketed mirror of a remote
// paginated collection, refreshing incrementally and merging by id.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorbit99/wics-extension-sub000/storage"
)

// BucketSize is the width of one id-space partition; a bucket is the
// unit of local storage.
const BucketSize = 500

// Refresh policies per collection type. Assignments move constantly
// while the user reviews; subjects barely change.
const (
	AssignmentCacheTime = 10 * time.Second
	SubjectCacheTime    = 10 * time.Minute
)

// Keyed is anything addressable by a non-negative integer id.
type Keyed interface {
	Key() int64
}

// FetchFunc pulls every remote entry updated after the given instant
// (all of them when nil), following the collection's cursor until
// exhausted.
type FetchFunc[T Keyed] func(ctx context.Context, updatedAfter *time.Time) ([]T, error)

type metadata struct {
	// ItemCount is an approximate cardinality used only to bound which
	// buckets need reading; buckets may contain holes.
	ItemCount   int        `json:"itemCount"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// Collection mirrors one remote collection. The in-memory bucket memo
// avoids re-reading the same bucket from storage within a session; it is
// never invalidated mid-session, which is safe because buckets only grow
// within a session.
type Collection[T Keyed] struct {
	name         string
	minCacheTime time.Duration
	store        storage.Store
	fetch        FetchFunc[T]
	buckets      map[int64][]T
	now          func() time.Time
}

func New[T Keyed](store storage.Store, name string, minCacheTime time.Duration, fetch FetchFunc[T]) *Collection[T] {
	return &Collection[T]{
		name:         name,
		minCacheTime: minCacheTime,
		store:        store,
		fetch:        fetch,
		buckets:      make(map[int64][]T),
		now:          time.Now,
	}
}

func (c *Collection[T]) metaKey() string { return c.name + "/meta" }

func (c *Collection[T]) bucketKey(id int64) string {
	return fmt.Sprintf("%s/bucket/%d", c.name, id)
}

// FetchItems returns the requested entries, refreshing the mirror first
// when its min-cache-time has elapsed. A non-nil empty id set returns
// immediately without touching storage or the network. A nil id set
// returns everything the mirror currently knows about. Requested ids
// that exist nowhere are silently omitted.
func (c *Collection[T]) FetchItems(ctx context.Context, ids []int64) ([]T, error) {
	if ids != nil && len(ids) == 0 {
		return nil, nil
	}

	meta, err := c.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	if meta.LastUpdated == nil || c.now().Sub(*meta.LastUpdated) >= c.minCacheTime {
		if err := c.refresh(ctx, &meta); err != nil {
			return nil, err
		}
	}

	if ids != nil {
		return c.pickItems(ctx, ids)
	}
	return c.allItems(ctx, meta)
}

// refresh performs one incremental fetch-and-merge cycle and persists
// every touched bucket plus the updated metadata in a single write.
func (c *Collection[T]) refresh(ctx context.Context, meta *metadata) error {
	fetched, err := c.fetch(ctx, meta.LastUpdated)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.name, err)
	}

	touched := make(map[int64]bool)
	added := 0
	for _, item := range fetched {
		bucketID := item.Key() / BucketSize
		bucket, err := c.loadBucket(ctx, bucketID)
		if err != nil {
			return err
		}

		merged := false
		for i, existing := range bucket {
			if existing.Key() == item.Key() {
				bucket[i] = item
				merged = true
				break
			}
		}
		if !merged {
			bucket = append(bucket, item)
			added++
		}
		c.buckets[bucketID] = bucket
		touched[bucketID] = true
	}

	meta.ItemCount += added
	now := c.now()
	meta.LastUpdated = &now

	values := make(map[string]json.RawMessage, len(touched)+1)
	for bucketID := range touched {
		raw, err := json.Marshal(c.buckets[bucketID])
		if err != nil {
			return fmt.Errorf("encode %s bucket %d: %w", c.name, bucketID, err)
		}
		values[c.bucketKey(bucketID)] = raw
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode %s metadata: %w", c.name, err)
	}
	values[c.metaKey()] = rawMeta

	if err := c.store.Set(ctx, values); err != nil {
		return fmt.Errorf("persist %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T]) pickItems(ctx context.Context, ids []int64) ([]T, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var items []T
	seen := make(map[int64]bool)
	for _, id := range ids {
		bucketID := id / BucketSize
		if seen[bucketID] {
			continue
		}
		seen[bucketID] = true

		bucket, err := c.loadBucket(ctx, bucketID)
		if err != nil {
			return nil, err
		}
		for _, item := range bucket {
			if wanted[item.Key()] {
				items = append(items, item)
			}
		}
	}
	return items, nil
}

func (c *Collection[T]) allItems(ctx context.Context, meta metadata) ([]T, error) {
	bucketCount := int64((meta.ItemCount + BucketSize - 1) / BucketSize)

	var items []T
	for bucketID := int64(0); bucketID < bucketCount; bucketID++ {
		bucket, err := c.loadBucket(ctx, bucketID)
		if err != nil {
			return nil, err
		}
		items = append(items, bucket...)
	}
	return items, nil
}

func (c *Collection[T]) loadMeta(ctx context.Context) (metadata, error) {
	var meta metadata
	values, err := c.store.Get(ctx, c.metaKey())
	if err != nil {
		return meta, fmt.Errorf("load %s metadata: %w", c.name, err)
	}
	if raw, ok := values[c.metaKey()]; ok {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return meta, fmt.Errorf("decode %s metadata: %w", c.name, err)
		}
	}
	return meta, nil
}

func (c *Collection[T]) loadBucket(ctx context.Context, bucketID int64) ([]T, error) {
	if bucket, ok := c.buckets[bucketID]; ok {
		return bucket, nil
	}

	values, err := c.store.Get(ctx, c.bucketKey(bucketID))
	if err != nil {
		return nil, fmt.Errorf("load %s bucket %d: %w", c.name, bucketID, err)
	}

	var bucket []T
	if raw, ok := values[c.bucketKey(bucketID)]; ok {
		if err := json.Unmarshal(raw, &bucket); err != nil {
			return nil, fmt.Errorf("decode %s bucket %d: %w", c.name, bucketID, err)
		}
	}
	c.buckets[bucketID] = bucket
	return bucket, nil
}
