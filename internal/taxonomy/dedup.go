package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ymgan/obis-qc/internal/worms"
)

// batchMatcher memoizes lookups for the duration of one Check invocation so
// the external service sees at most one query per distinct id or name.
// Concurrent workers asking for the same key share a single in-flight call.
// Transient failures are not memoized; a later record may retry the key.
type batchMatcher struct {
	inner Matcher
	group singleflight.Group

	mu    sync.RWMutex
	ids   map[int64]idEntry
	names map[string][]worms.AphiaRecord
}

type idEntry struct {
	rec      *worms.AphiaRecord
	notFound bool
}

func newBatchMatcher(inner Matcher) *batchMatcher {
	return &batchMatcher{
		inner: inner,
		ids:   make(map[int64]idEntry),
		names: make(map[string][]worms.AphiaRecord),
	}
}

var _ Matcher = (*batchMatcher)(nil)

func (b *batchMatcher) AphiaRecordByID(ctx context.Context, aphiaID int64) (*worms.AphiaRecord, error) {
	b.mu.RLock()
	entry, hit := b.ids[aphiaID]
	b.mu.RUnlock()
	if hit {
		return entry.result(aphiaID)
	}

	key := "id:" + strconv.FormatInt(aphiaID, 10)
	value, err, _ := b.group.Do(key, func() (any, error) {
		rec, err := b.inner.AphiaRecordByID(ctx, aphiaID)
		if err != nil && !errors.Is(err, worms.ErrNotFound) {
			return nil, err
		}
		entry := idEntry{rec: rec, notFound: rec == nil}
		b.mu.Lock()
		b.ids[aphiaID] = entry
		b.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(idEntry).result(aphiaID)
}

func (e idEntry) result(aphiaID int64) (*worms.AphiaRecord, error) {
	if e.notFound {
		return nil, fmt.Errorf("%w: aphia id %d", worms.ErrNotFound, aphiaID)
	}
	return e.rec, nil
}

func (b *batchMatcher) AphiaRecordsByMatchNames(ctx context.Context, name string) ([]worms.AphiaRecord, error) {
	b.mu.RLock()
	matches, hit := b.names[name]
	b.mu.RUnlock()
	if hit {
		return matches, nil
	}

	value, err, _ := b.group.Do("name:"+name, func() (any, error) {
		matches, err := b.inner.AphiaRecordsByMatchNames(ctx, name)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.names[name] = matches
		b.mu.Unlock()
		return matches, nil
	})
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return value.([]worms.AphiaRecord), nil
}
