package journal

// Schema is the SQLite layout: one row per blob key.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// PostgresSchema is the same layout for Postgres.
var PostgresSchema = []string{
	`create table if not exists journal_kv (
		key text primary key,
		value bytea not null,
		updated_at timestamptz not null default now()
	);`,
}
