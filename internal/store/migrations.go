package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS view_state (
	id         INTEGER PRIMARY KEY CHECK(id = 1),
	division   TEXT NOT NULL DEFAULT '',
	daily_type TEXT NOT NULL DEFAULT 'daily' CHECK(daily_type IN ('daily', 'weekly', 'monthly')),
	start_date TEXT NOT NULL DEFAULT '',
	top_n      INTEGER NOT NULL DEFAULT 5 CHECK(top_n > 0),
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS excluded_tags (
	tag        TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS summary_cache (
	id         TEXT PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	payload    TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summary_cache_fetched_at ON summary_cache(fetched_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
