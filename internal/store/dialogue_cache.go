// Package store persists generated dialogues so each normalized topic is only
// sent to the model once.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nihilistkernel/internal/logging"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory cache.
const MemoryPath = ":memory:"

// DialogueCache is a SQLite table of dialogues keyed by normalized input.
type DialogueCache struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the cache at path.
func Open(path string) (*DialogueCache, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	cache := &DialogueCache{db: db, dbPath: path}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("dialogue cache opened at %s", path)
	return cache, nil
}

func (c *DialogueCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dialogue_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_text TEXT NOT NULL UNIQUE,
		dialogue_response TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (c *DialogueCache) Close() error {
	return c.db.Close()
}

// Path returns the database path.
func (c *DialogueCache) Path() string {
	return c.dbPath
}

// Get returns the dialogue stored for input, if any.
func (c *DialogueCache) Get(ctx context.Context, input string) (string, bool, error) {
	var dialogue string
	err := c.db.QueryRowContext(ctx,
		`SELECT dialogue_response FROM dialogue_entries WHERE input_text = ?`, input,
	).Scan(&dialogue)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logging.StoreError("lookup of %q failed: %v", input, err)
		return "", false, fmt.Errorf("failed to query dialogue: %w", err)
	}
	logging.StoreDebug("cache hit for %q", input)
	return dialogue, true, nil
}

// Put stores dialogue for input, replacing any previous entry.
func (c *DialogueCache) Put(ctx context.Context, input, dialogue string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO dialogue_entries (input_text, dialogue_response)
		VALUES (?, ?)
		ON CONFLICT(input_text) DO UPDATE SET
			dialogue_response = excluded.dialogue_response,
			created_at = CURRENT_TIMESTAMP`,
		input, dialogue)
	if err != nil {
		logging.StoreError("store of %q failed: %v", input, err)
		return fmt.Errorf("failed to store dialogue: %w", err)
	}
	logging.StoreDebug("stored dialogue for %q (%d bytes)", input, len(dialogue))
	return nil
}

// Count returns the number of cached dialogues.
func (c *DialogueCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dialogue_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dialogues: %w", err)
	}
	return n, nil
}
