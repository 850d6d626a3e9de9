package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/carepartner/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases are per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// GetViewState returns the saved selection, or the defaults when none
// has been saved yet.
func (s *SQLiteStore) GetViewState(ctx context.Context) (model.ViewState, error) {
	var v model.ViewState
	err := s.db.GetContext(ctx, &v,
		"SELECT division, daily_type, start_date, top_n, updated_at FROM view_state WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultViewState(), nil
	}
	if err != nil {
		return model.ViewState{}, fmt.Errorf("getting view state: %w", err)
	}
	return v, nil
}

// SaveViewState replaces the saved selection.
func (s *SQLiteStore) SaveViewState(ctx context.Context, v model.ViewState) error {
	if !v.DailyType.Valid() {
		return fmt.Errorf("saving view state: invalid daily type %q", v.DailyType)
	}
	if v.TopN <= 0 {
		v.TopN = model.DefaultViewState().TopN
	}
	v.UpdatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO view_state (id, division, daily_type, start_date, top_n, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			division = excluded.division,
			daily_type = excluded.daily_type,
			start_date = excluded.start_date,
			top_n = excluded.top_n,
			updated_at = excluded.updated_at`,
		string(v.Division), string(v.DailyType), v.StartDate, v.TopN, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving view state: %w", err)
	}
	return nil
}

// GetExcludedTags returns the excluded tags in name order.
func (s *SQLiteStore) GetExcludedTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := s.db.SelectContext(ctx, &tags, "SELECT tag FROM excluded_tags ORDER BY tag"); err != nil {
		return nil, fmt.Errorf("querying excluded tags: %w", err)
	}
	return tags, nil
}

// SetExcludedTags replaces the whole exclusion set.
func (s *SQLiteStore) SetExcludedTags(ctx context.Context, tags []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM excluded_tags"); err != nil {
		return fmt.Errorf("clearing excluded tags: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		"INSERT OR IGNORE INTO excluded_tags (tag, created_at) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, tag, now); err != nil {
			return fmt.Errorf("inserting excluded tag %q: %w", tag, err)
		}
	}

	return tx.Commit()
}

// cacheKey identifies a summary query. Exclusions are order-insensitive.
func cacheKey(q model.SummaryQuery) string {
	tags := append([]string(nil), q.ExcludeTags...)
	sort.Strings(tags)
	return strings.Join([]string{
		string(q.Division),
		string(q.DailyType),
		q.StartDate,
		strconv.Itoa(q.TopN),
		strings.Join(tags, ","),
	}, "|")
}

// PutSummary caches s as the latest answer to q.
func (s *SQLiteStore) PutSummary(ctx context.Context, q model.SummaryQuery, summary model.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summary_cache (id, cache_key, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		uuid.New().String(), cacheKey(q), string(payload), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}
	return nil
}

// GetSummary returns the cached answer to q, or ErrNotFound.
func (s *SQLiteStore) GetSummary(ctx context.Context, q model.SummaryQuery) (*CachedSummary, error) {
	var row struct {
		Payload   string    `db:"payload"`
		FetchedAt time.Time `db:"fetched_at"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT payload, fetched_at FROM summary_cache WHERE cache_key = ?", cacheKey(q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached summary: %w", err)
	}

	var cached CachedSummary
	if err := json.Unmarshal([]byte(row.Payload), &cached.Summary); err != nil {
		return nil, fmt.Errorf("unmarshaling cached summary: %w", err)
	}
	cached.FetchedAt = row.FetchedAt
	return &cached, nil
}

// PruneSummaries drops cache entries fetched more than olderThan ago and
// returns how many were removed.
func (s *SQLiteStore) PruneSummaries(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, "DELETE FROM summary_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning summary cache: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
