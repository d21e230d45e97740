package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kerbaras/companion/pkg/manifest"
	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS manifest (
	table_name  VARCHAR PRIMARY KEY,
	definitions VARCHAR NOT NULL,
	version     VARCHAR NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	membership_id VARCHAR PRIMARY KEY,
	payload       VARCHAR NOT NULL,
	updated       TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_state (
	id      INTEGER PRIMARY KEY,
	enabled BOOLEAN NOT NULL,
	updated TIMESTAMP NOT NULL
);
`

// InitDuckDB opens the database at path, creating parent directories and
// the schema as needed.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// Repository is the local cache: raw manifest tables,
// per-membership settings and the sync switch.
type Repository struct {
	db *sql.DB
}

func NewDuckDBRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// LoadManifest returns the cached manifest, or nil when nothing is cached.
// All rows share one version; a mismatch means a refresh was interrupted and
// the cache is treated as empty.
func (r *Repository) LoadManifest() (*manifest.Stored, error) {
	rows, err := r.db.Query(`SELECT table_name, definitions, version FROM manifest`)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	defer rows.Close()

	stored := &manifest.Stored{Tables: manifest.Tables{}}
	for rows.Next() {
		var name, definitions, version string
		if err := rows.Scan(&name, &definitions, &version); err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}

		var table manifest.Table
		if err := json.Unmarshal([]byte(definitions), &table); err != nil {
			return nil, fmt.Errorf("decode table %s: %w", name, err)
		}

		if stored.Version != "" && stored.Version != version {
			return nil, nil
		}
		stored.Version = version
		stored.Tables[manifest.TableName(name)] = table
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	if len(stored.Tables) == 0 {
		return nil, nil
	}
	return stored, nil
}

// ReplaceManifest clears the cache and writes every table of stored in one
// transaction.
func (r *Repository) ReplaceManifest(stored *manifest.Stored) error {
	if stored == nil {
		return errors.New("replace manifest: nil manifest")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM manifest`); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO manifest (table_name, definitions, version) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	defer stmt.Close()

	for _, name := range stored.Tables.Names() {
		definitions, err := json.Marshal(stored.Tables[name])
		if err != nil {
			return fmt.Errorf("encode table %s: %w", name, err)
		}
		if _, err := stmt.Exec(string(name), string(definitions), stored.Version); err != nil {
			return fmt.Errorf("store table %s: %w", name, err)
		}
	}

	return tx.Commit()
}

func (r *Repository) ClearManifest() error {
	_, err := r.db.Exec(`DELETE FROM manifest`)
	return err
}

// ListTables summarises the cached tables without decoding them.
func (r *Repository) ListTables() ([]TableInfo, error) {
	rows, err := r.db.Query(`
		SELECT table_name, version, len(json_keys(definitions))
		FROM manifest
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.Name, &info.Version, &info.Size); err != nil {
			return nil, err
		}
		tables = append(tables, info)
	}
	return tables, rows.Err()
}

// GetSettings returns the stored settings for membershipID, or nil.
func (r *Repository) GetSettings(membershipID string) (*Settings, error) {
	var payload string
	var updated time.Time
	err := r.db.QueryRow(
		`SELECT payload, updated FROM settings WHERE membership_id = ?`, membershipID,
	).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	settings := &Settings{MembershipID: membershipID, Updated: updated.UTC()}
	if err := json.Unmarshal([]byte(payload), &settings.Values); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (r *Repository) SaveSettings(settings *Settings) error {
	values := settings.Values
	if values == nil {
		values = map[string]any{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO settings (membership_id, payload, updated) VALUES (?, ?, ?)`,
		settings.MembershipID, string(payload), settings.Updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// GetSyncState returns the stored sync state, or DefaultSyncState.
func (r *Repository) GetSyncState() (SyncState, error) {
	var state SyncState
	err := r.db.QueryRow(`SELECT enabled, updated FROM sync_state WHERE id = 1`).Scan(&state.Enabled, &state.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSyncState(), nil
	}
	if err != nil {
		return SyncState{}, fmt.Errorf("get sync state: %w", err)
	}
	state.Updated = state.Updated.UTC()
	return state, nil
}

func (r *Repository) SaveSyncState(state SyncState) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO sync_state (id, enabled, updated) VALUES (1, ?, ?)`,
		state.Enabled, state.Updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}
