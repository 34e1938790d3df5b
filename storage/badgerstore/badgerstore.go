// Package badgerstore provides a persistent hypergraph store backend on
// BadgerDB, selected by directory locators (conventionally ".hg").
//
// Key layout:
//
//	e:<edge>         -> JSON attribute bag
//	a:<atom>\x00<edge> -> (empty) inverted atom index entry
//
// Canonical edge strings are the identity; attributes live outside it.
package badgerstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/storage"
)

const (
	edgePrefix = "e:"
	atomPrefix = "a:"
	atomSep    = "\x00"
)

// Config holds configuration for a badger-backed store.
type Config struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string

	// InMemory enables in-memory mode (no disk persistence). For tests.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for the given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for testing: no disk I/O, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a badger-backed storage.Graph. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens a badger-backed store with the given configuration, creating
// the directory if needed.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "badgerstore", "Open",
			"path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errors.WrapTransient(err, "badgerstore", "Open", "create database directory")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WrapTransient(err, "badgerstore", "Open", "open badger database")
	}
	return &Store{db: db}, nil
}

// Add stores an edge with its attributes and index entries.
func (s *Store) Add(ctx context.Context, edge *hedge.Hyperedge, attrs storage.Attributes) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "badgerstore", "Add", "nil edge")
	}
	if edge.HasWildcard() {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "badgerstore", "Add",
			"wildcard atoms cannot be stored")
	}

	key := edge.String()
	payload, err := json.Marshal(attrs.Clone())
	if err != nil {
		return errors.WrapInvalid(err, "badgerstore", "Add", "encode attributes")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(edgePrefix+key), payload); err != nil {
			return err
		}
		for _, as := range distinctAtoms(edge) {
			if err := txn.Set([]byte(atomPrefix+as+atomSep+key), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WrapTransient(err, "badgerstore", "Add", "write transaction")
	}
	return nil
}

// Remove deletes an edge and its index entries. Absent edges are a no-op.
func (s *Store) Remove(ctx context.Context, edge *hedge.Hyperedge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if edge == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "badgerstore", "Remove", "nil edge")
	}

	key := edge.String()
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(edgePrefix + key)); err != nil {
			return err
		}
		for _, as := range distinctAtoms(edge) {
			if err := txn.Delete([]byte(atomPrefix + as + atomSep + key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WrapTransient(err, "badgerstore", "Remove", "delete transaction")
	}
	return nil
}

// Query returns stored edges matching the pattern; a nil pattern matches
// everything. Pattern matching runs in memory over a prefix scan.
func (s *Store) Query(ctx context.Context, pattern *hedge.Hyperedge) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []storage.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(edgePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			canonical := string(item.Key()[len(edgePrefix):])

			edge, err := hedge.Parse(canonical)
			if err != nil {
				return errors.WrapFatal(errors.ErrDataCorrupted, "badgerstore", "Query",
					fmt.Sprintf("stored edge %q failed to reparse", canonical))
			}
			if pattern != nil && !edge.Matches(pattern) {
				continue
			}

			attrs, err := decodeAttrs(item)
			if err != nil {
				return err
			}
			out = append(out, storage.Entry{Edge: edge, Attrs: attrs})
		}
		return nil
	})
	if err != nil {
		return nil, wrapViewErr(err, "Query")
	}
	return out, nil
}

// GetAttrs returns the attribute bag for a stored edge; empty if absent.
func (s *Store) GetAttrs(ctx context.Context, edge *hedge.Hyperedge) (storage.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "badgerstore", "GetAttrs", "nil edge")
	}

	attrs := storage.Attributes{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(edgePrefix + edge.String()))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		attrs, err = decodeAttrs(item)
		return err
	})
	if err != nil {
		return nil, wrapViewErr(err, "GetAttrs")
	}
	return attrs, nil
}

// NeighborsSharingAtom returns stored edges sharing at least one atom with
// edge, excluding edge itself, via the inverted atom index.
func (s *Store) NeighborsSharingAtom(ctx context.Context, edge *hedge.Hyperedge) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "badgerstore", "NeighborsSharingAtom", "nil edge")
	}

	self := edge.String()
	seen := make(map[string]struct{})
	var out []storage.Entry

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false

		for _, as := range distinctAtoms(edge) {
			it := txn.NewIterator(iterOpts)
			prefix := []byte(atomPrefix + as + atomSep)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				canonical := string(it.Item().Key()[len(prefix):])
				if canonical == self {
					continue
				}
				if _, dup := seen[canonical]; dup {
					continue
				}
				seen[canonical] = struct{}{}
			}
			it.Close()
		}

		for canonical := range seen {
			neighbor, err := hedge.Parse(canonical)
			if err != nil {
				return errors.WrapFatal(errors.ErrDataCorrupted, "badgerstore", "NeighborsSharingAtom",
					fmt.Sprintf("indexed edge %q failed to reparse", canonical))
			}
			attrs := storage.Attributes{}
			item, err := txn.Get([]byte(edgePrefix + canonical))
			if err == nil {
				if attrs, err = decodeAttrs(item); err != nil {
					return err
				}
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			out = append(out, storage.Entry{Edge: neighbor, Attrs: attrs})
		}
		return nil
	})
	if err != nil {
		return nil, wrapViewErr(err, "NeighborsSharingAtom")
	}
	return out, nil
}

// Count returns the number of stored edges.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		prefix := []byte(edgePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, wrapViewErr(err, "Count")
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
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

func decodeAttrs(item *badger.Item) (storage.Attributes, error) {
	attrs := storage.Attributes{}
	err := item.Value(func(val []byte) error {
		if len(val) == 0 {
			return nil
		}
		return json.Unmarshal(val, &attrs)
	})
	if err != nil {
		return nil, errors.WrapFatal(errors.ErrDataCorrupted, "badgerstore", "decodeAttrs",
			"stored attributes failed to decode")
	}
	return attrs, nil
}

// wrapViewErr keeps already-classified errors intact and marks raw badger
// failures transient.
func wrapViewErr(err error, op string) error {
	var ce *errors.ClassifiedError
	if stderrors.As(err, &ce) {
		return err
	}
	return errors.WrapTransient(err, "badgerstore", op, "store access")
}

var _ storage.Graph = (*Store)(nil)
