package taxocache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/taxonomy"
	"github.com/ymgan/obis-qc/internal/worms"
)

// Matcher decorates a taxonomy.Matcher with the persistent store. Transient
// failures pass through uncached so a later run can retry.
type Matcher struct {
	store  *Store
	inner  taxonomy.Matcher
	logger *slog.Logger
}

// NewMatcher wraps inner with store-backed caching.
func NewMatcher(store *Store, inner taxonomy.Matcher, logger *slog.Logger) *Matcher {
	return &Matcher{
		store:  store,
		inner:  inner,
		logger: logging.NewComponentLogger(logger, "taxocache"),
	}
}

var _ taxonomy.Matcher = (*Matcher)(nil)

func (m *Matcher) AphiaRecordByID(ctx context.Context, aphiaID int64) (*worms.AphiaRecord, error) {
	rec, hit, err := m.store.recordByID(ctx, aphiaID)
	if err != nil {
		m.logger.Warn("cache read failed, falling through", logging.Error(err))
	} else if hit {
		if rec == nil {
			return nil, fmt.Errorf("%w: aphia id %d", worms.ErrNotFound, aphiaID)
		}
		return rec, nil
	}

	rec, err = m.inner.AphiaRecordByID(ctx, aphiaID)
	switch {
	case errors.Is(err, worms.ErrNotFound):
		if putErr := m.store.putRecord(ctx, aphiaID, nil); putErr != nil {
			m.logger.Warn("cache write failed", logging.Error(putErr))
		}
		return nil, err
	case err != nil:
		return nil, err
	}
	if putErr := m.store.putRecord(ctx, aphiaID, rec); putErr != nil {
		m.logger.Warn("cache write failed", logging.Error(putErr))
	}
	return rec, nil
}

func (m *Matcher) AphiaRecordsByMatchNames(ctx context.Context, name string) ([]worms.AphiaRecord, error) {
	matches, hit, err := m.store.matchesByName(ctx, name)
	if err != nil {
		m.logger.Warn("cache read failed, falling through", logging.Error(err))
	} else if hit {
		return matches, nil
	}

	matches, err = m.inner.AphiaRecordsByMatchNames(ctx, name)
	if err != nil {
		return nil, err
	}
	if putErr := m.store.putMatches(ctx, name, matches); putErr != nil {
		m.logger.Warn("cache write failed", logging.Error(putErr))
	}
	return matches, nil
}
