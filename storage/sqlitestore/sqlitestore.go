// Package sqlitestore provides a SQL-backed hypergraph store on SQLite,
// selected by ".db" and ".sqlite" locators. Edges are keyed by canonical
// string; an edge_atoms table serves as the inverted atom index for
// neighbor lookups.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS edges (
	edge   TEXT PRIMARY KEY,
	attrs  TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS edge_atoms (
	atom   TEXT NOT NULL,
	edge   TEXT NOT NULL,
	PRIMARY KEY (atom, edge),
	FOREIGN KEY (edge) REFERENCES edges(edge) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_edge_atoms_atom ON edge_atoms(atom);
`

// Store is a SQLite-backed storage.Graph.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "sqlitestore", "Open",
			"database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Open", "open database")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Open", "set journal mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Open", "enable foreign keys")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Open", "run migrations")
	}
	return &Store{db: db}, nil
}

// Add stores an edge with its attributes and index rows.
func (s *Store) Add(ctx context.Context, edge *hedge.Hyperedge, attrs storage.Attributes) error {
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "sqlitestore", "Add", "nil edge")
	}
	if edge.HasWildcard() {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "sqlitestore", "Add",
			"wildcard atoms cannot be stored")
	}

	key := edge.String()
	payload, err := json.Marshal(attrs.Clone())
	if err != nil {
		return errors.WrapInvalid(err, "sqlitestore", "Add", "encode attributes")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapTransient(err, "sqlitestore", "Add", "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO edges (edge, attrs) VALUES (?, ?)
		 ON CONFLICT(edge) DO UPDATE SET attrs = excluded.attrs`,
		key, string(payload)); err != nil {
		return errors.WrapTransient(err, "sqlitestore", "Add", "upsert edge")
	}
	for _, as := range distinctAtoms(edge) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO edge_atoms (atom, edge) VALUES (?, ?)`,
			as, key); err != nil {
			return errors.WrapTransient(err, "sqlitestore", "Add", "index atom")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.WrapTransient(err, "sqlitestore", "Add", "commit transaction")
	}
	return nil
}

// Remove deletes an edge; index rows cascade. Absent edges are a no-op.
func (s *Store) Remove(ctx context.Context, edge *hedge.Hyperedge) error {
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "sqlitestore", "Remove", "nil edge")
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM edges WHERE edge = ?`, edge.String()); err != nil {
		return errors.WrapTransient(err, "sqlitestore", "Remove", "delete edge")
	}
	return nil
}

// Query returns stored edges matching the pattern; a nil pattern matches
// everything. Pattern matching runs in memory over a full scan, mirroring
// the other backends.
func (s *Store) Query(ctx context.Context, pattern *hedge.Hyperedge) ([]storage.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT edge, attrs FROM edges`)
	if err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Query", "select edges")
	}
	defer rows.Close()

	var out []storage.Entry
	for rows.Next() {
		entry, err := scanEntry(rows, "Query")
		if err != nil {
			return nil, err
		}
		if pattern != nil && !entry.Edge.Matches(pattern) {
			continue
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "Query", "iterate rows")
	}
	return out, nil
}

// GetAttrs returns the attribute bag for a stored edge; empty if absent.
func (s *Store) GetAttrs(ctx context.Context, edge *hedge.Hyperedge) (storage.Attributes, error) {
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "sqlitestore", "GetAttrs", "nil edge")
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT attrs FROM edges WHERE edge = ?`, edge.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return storage.Attributes{}, nil
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "GetAttrs", "select attrs")
	}
	return decodeAttrs(payload, "GetAttrs")
}

// NeighborsSharingAtom returns stored edges sharing at least one atom with
// edge, excluding edge itself.
func (s *Store) NeighborsSharingAtom(ctx context.Context, edge *hedge.Hyperedge) ([]storage.Entry, error) {
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "sqlitestore", "NeighborsSharingAtom", "nil edge")
	}

	atoms := distinctAtoms(edge)
	if len(atoms) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]any, 0, len(atoms)+1)
	for i, as := range atoms {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, as)
	}
	args = append(args, edge.String())

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT e.edge, e.attrs
		 FROM edges e JOIN edge_atoms ea ON ea.edge = e.edge
		 WHERE ea.atom IN (`+placeholders+`) AND e.edge != ?`, args...)
	if err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "NeighborsSharingAtom", "select neighbors")
	}
	defer rows.Close()

	var out []storage.Entry
	for rows.Next() {
		entry, err := scanEntry(rows, "NeighborsSharingAtom")
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "sqlitestore", "NeighborsSharingAtom", "iterate rows")
	}
	return out, nil
}

// Count returns the number of stored edges.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&count); err != nil {
		return 0, errors.WrapTransient(err, "sqlitestore", "Count", "count edges")
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanEntry(rows *sql.Rows, op string) (storage.Entry, error) {
	var canonical, payload string
	if err := rows.Scan(&canonical, &payload); err != nil {
		return storage.Entry{}, errors.WrapTransient(err, "sqlitestore", op, "scan row")
	}
	edge, err := hedge.Parse(canonical)
	if err != nil {
		return storage.Entry{}, errors.WrapFatal(errors.ErrDataCorrupted, "sqlitestore", op,
			fmt.Sprintf("stored edge %q failed to reparse", canonical))
	}
	attrs, err := decodeAttrs(payload, op)
	if err != nil {
		return storage.Entry{}, err
	}
	return storage.Entry{Edge: edge, Attrs: attrs}, nil
}

func decodeAttrs(payload, op string) (storage.Attributes, error) {
	attrs := storage.Attributes{}
	if payload == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		return nil, errors.WrapFatal(errors.ErrDataCorrupted, "sqlitestore", op,
			"stored attributes failed to decode")
	}
	return attrs, nil
}

func distinctAtoms(edge *hedge.Hyperedge) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, atom := range edge.Atoms() {
		as := atom.String()
		if _, dup := seen[as]; dup {
			continue
		}
		seen[as] = struct{}{}
		out = append(out, as)
	}
	return out
}

var _ storage.Graph = (*Store)(nil)
