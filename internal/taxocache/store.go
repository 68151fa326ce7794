package taxocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/worms"
)

const schema = `
CREATE TABLE IF NOT EXISTS aphia_records (
    aphia_id  INTEGER PRIMARY KEY,
    not_found INTEGER NOT NULL DEFAULT 0,
    payload   TEXT,
    cached_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS name_matches (
    name      TEXT PRIMARY KEY,
    payload   TEXT NOT NULL,
    cached_at TEXT NOT NULL
);
`

// Store persists WoRMS lookup results in SQLite so repeated runs skip
// external calls for taxa seen before. Not-found outcomes are cached too;
// they are just as stable as hits.
type Store struct {
	db     *sql.DB
	lock   *flock.Flock
	path   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source (useful for TTL tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the cache database in dir. Entries older
// than ttl are treated as absent; a zero ttl disables expiry. The database is
// guarded by a lock file so two processes do not interleave writes.
func Open(dir string, ttl time.Duration, logger *slog.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	dbPath := filepath.Join(dir, "taxa.db")

	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("cache at %s is in use by another obisqc process", dir)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	store := &Store{
		db:     db,
		lock:   lock,
		path:   dbPath,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "taxocache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Close releases the database and the lock file.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}
	return errors.Join(errs...)
}

// recordByID returns the cached id lookup. hit=false means the cache holds
// nothing usable; rec==nil with hit=true means a cached not-found.
func (s *Store) recordByID(ctx context.Context, aphiaID int64) (rec *worms.AphiaRecord, hit bool, err error) {
	var notFound int
	var payload sql.NullString
	var cachedAt string
	row := s.db.QueryRowContext(ctx,
		`SELECT not_found, payload, cached_at FROM aphia_records WHERE aphia_id = ?`, aphiaID)
	if err := row.Scan(&notFound, &payload, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query aphia record: %w", err)
	}
	if s.expired(cachedAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM aphia_records WHERE aphia_id = ?`, aphiaID)
		return nil, false, nil
	}
	if notFound != 0 {
		return nil, true, nil
	}
	var decoded worms.AphiaRecord
	if err := json.Unmarshal([]byte(payload.String), &decoded); err != nil {
		return nil, false, fmt.Errorf("decode cached aphia record: %w", err)
	}
	return &decoded, true, nil
}

// putRecord stores an id lookup result; rec==nil records a not-found.
func (s *Store) putRecord(ctx context.Context, aphiaID int64, rec *worms.AphiaRecord) error {
	notFound := 0
	var payload any
	if rec == nil {
		notFound = 1
	} else {
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode aphia record: %w", err)
		}
		payload = string(encoded)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO aphia_records (aphia_id, not_found, payload, cached_at) VALUES (?, ?, ?, ?)`,
		aphiaID, notFound, payload, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store aphia record: %w", err)
	}
	return nil
}

// matchesByName returns the cached candidate list for a name. An empty list
// is a valid cached outcome.
func (s *Store) matchesByName(ctx context.Context, name string) (matches []worms.AphiaRecord, hit bool, err error) {
	var payload string
	var cachedAt string
	row := s.db.QueryRowContext(ctx,
		`SELECT payload, cached_at FROM name_matches WHERE name = ?`, name)
	if err := row.Scan(&payload, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query name matches: %w", err)
	}
	if s.expired(cachedAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM name_matches WHERE name = ?`, name)
		return nil, false, nil
	}
	var decoded []worms.AphiaRecord
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, false, fmt.Errorf("decode cached name matches: %w", err)
	}
	return decoded, true, nil
}

func (s *Store) putMatches(ctx context.Context, name string, matches []worms.AphiaRecord) error {
	if matches == nil {
		matches = []worms.AphiaRecord{}
	}
	encoded, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode name matches: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO name_matches (name, payload, cached_at) VALUES (?, ?, ?)`,
		name, string(encoded), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store name matches: %w", err)
	}
	return nil
}

func (s *Store) expired(cachedAt string) bool {
	if s.ttl <= 0 {
		return false
	}
	when, err := time.Parse(time.RFC3339Nano, cachedAt)
	if err != nil {
		return true
	}
	return s.now().Sub(when) > s.ttl
}

// Stats summarizes cache contents.
type Stats struct {
	Records int64
	Names   int64
	Path    string
}

// Stats reports entry counts for the cache tables.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM aphia_records`).Scan(&stats.Records); err != nil {
		return stats, fmt.Errorf("count aphia records: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM name_matches`).Scan(&stats.Names); err != nil {
		return stats, fmt.Errorf("count name matches: %w", err)
	}
	return stats, nil
}

// Clear removes every cached entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM aphia_records`); err != nil {
		return fmt.Errorf("clear aphia records: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM name_matches`); err != nil {
		return fmt.Errorf("clear name matches: %w", err)
	}
	return nil
}
