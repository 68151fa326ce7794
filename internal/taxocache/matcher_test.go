package taxocache

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/worms"
)

type countingMatcher struct {
	records   map[int64]*worms.AphiaRecord
	matches   map[string][]worms.AphiaRecord
	idErr     error
	idCalls   int
	nameCalls int
}

func (c *countingMatcher) AphiaRecordByID(ctx context.Context, aphiaID int64) (*worms.AphiaRecord, error) {
	c.idCalls++
	if c.idErr != nil {
		return nil, c.idErr
	}
	rec, ok := c.records[aphiaID]
	if !ok {
		return nil, fmt.Errorf("%w: aphia id %d", worms.ErrNotFound, aphiaID)
	}
	return rec, nil
}

func (c *countingMatcher) AphiaRecordsByMatchNames(ctx context.Context, name string) ([]worms.AphiaRecord, error) {
	c.nameCalls++
	return c.matches[name], nil
}

func TestMatcherServesSecondLookupFromCache(t *testing.T) {
	store := openStore(t, 0)
	inner := &countingMatcher{records: map[int64]*worms.AphiaRecord{
		141433: {AphiaID: 141433, Status: worms.StatusAccepted},
	}}
	cached := NewMatcher(store, inner, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := cached.AphiaRecordByID(ctx, 141433)
		if err != nil {
			t.Fatalf("AphiaRecordByID() error = %v", err)
		}
		if rec.AphiaID != 141433 {
			t.Fatalf("AphiaID = %d", rec.AphiaID)
		}
	}
	if inner.idCalls != 1 {
		t.Fatalf("inner queried %d times, want 1", inner.idCalls)
	}
}

func TestMatcherCachesNotFound(t *testing.T) {
	store := openStore(t, 0)
	inner := &countingMatcher{}
	cached := NewMatcher(store, inner, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.AphiaRecordByID(ctx, 99999999); !errors.Is(err, worms.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	}
	if inner.idCalls != 1 {
		t.Fatalf("not-found queried %d times, want 1", inner.idCalls)
	}
}

func TestMatcherDoesNotCacheTransientFailures(t *testing.T) {
	store := openStore(t, 0)
	inner := &countingMatcher{
		records: map[int64]*worms.AphiaRecord{42: {AphiaID: 42}},
		idErr:   fmt.Errorf("%w: down", worms.ErrUnavailable),
	}
	cached := NewMatcher(store, inner, logging.NewNop())
	ctx := context.Background()

	if _, err := cached.AphiaRecordByID(ctx, 42); !errors.Is(err, worms.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}

	inner.idErr = nil
	rec, err := cached.AphiaRecordByID(ctx, 42)
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if rec.AphiaID != 42 {
		t.Fatalf("AphiaID = %d", rec.AphiaID)
	}
	if inner.idCalls != 2 {
		t.Fatalf("inner queried %d times, want 2", inner.idCalls)
	}
}

func TestMatcherCachesNameMatches(t *testing.T) {
	store := openStore(t, 0)
	inner := &countingMatcher{matches: map[string][]worms.AphiaRecord{
		"Abra alba": {{AphiaID: 141433, MatchType: worms.MatchExact}},
	}}
	cached := NewMatcher(store, inner, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		matches, err := cached.AphiaRecordsByMatchNames(ctx, "Abra alba")
		if err != nil {
			t.Fatalf("AphiaRecordsByMatchNames() error = %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches", len(matches))
		}
	}
	if inner.nameCalls != 1 {
		t.Fatalf("inner queried %d times, want 1", inner.nameCalls)
	}
}

func TestMatcherCachesEmptyNameResult(t *testing.T) {
	store := openStore(t, 0)
	inner := &countingMatcher{}
	cached := NewMatcher(store, inner, logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		matches, err := cached.AphiaRecordsByMatchNames(ctx, "Bivalve")
		if err != nil {
			t.Fatalf("AphiaRecordsByMatchNames() error = %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("got %d matches, want 0", len(matches))
		}
	}
	if inner.nameCalls != 1 {
		t.Fatalf("inner queried %d times, want 1", inner.nameCalls)
	}
}
