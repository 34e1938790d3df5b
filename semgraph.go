package semgraph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/c360/semgraph/config"
	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/foundation"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/layers"
	"github.com/c360/semgraph/metric"
	"github.com/c360/semgraph/reason"
	"github.com/c360/semgraph/storage"
	"github.com/c360/semgraph/storage/badgerstore"
	"github.com/c360/semgraph/storage/memstore"
	"github.com/c360/semgraph/storage/sqlitestore"
	"github.com/c360/semgraph/validate"
	"github.com/c360/semgraph/vocabulary"
)

// API is the high-level entry point: one store, one layer registry, and
// the validator and reasoner built over them. Each API carries a fresh
// session id for attribution of session-scoped facts.
type API struct {
	store      storage.Graph
	registry   *layers.Registry
	connectors *vocabulary.Connectors
	validator  *validate.Validator
	reasoner   *reason.Reasoner
	loader     *foundation.Loader
	cfg        config.Config
	logger     *slog.Logger
	metrics    *metric.Metrics
	sessionID  string
}

// Option configures an API.
type Option func(*API)

// WithConfig applies a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *API) { a.cfg = cfg }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// WithMetrics sets the metrics sink shared by the validator and reasoner.
func WithMetrics(m *metric.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// Open builds an API over the backend the locator selects: ":memory:" or
// the empty string for the in-memory store, a .db/.sqlite/.sqlite3 path
// for SQLite, anything else (conventionally a .hg directory) for badger.
func Open(locator string, opts ...Option) (*API, error) {
	a := &API{
		registry:  layers.NewRegistry(),
		cfg:       config.Default(),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default().With("component", "semgraph")
	}
	if a.metrics == nil {
		a.metrics = metric.NewMetrics()
	}

	if locator == "" {
		locator = a.cfg.Locator
	}
	store, err := openStore(locator, a.logger)
	if err != nil {
		return nil, err
	}
	a.store = store

	a.connectors = vocabulary.DefaultConnectors()
	for _, root := range a.cfg.BlockingConnectors {
		a.connectors.RegisterBlocking(root)
	}

	a.validator = validate.New(store, a.registry,
		validate.WithLogger(a.logger),
		validate.WithMetrics(a.metrics),
		validate.WithConnectors(a.connectors),
		validate.WithContextLayer(a.cfg.ContextLayer),
	)
	a.reasoner = reason.New(store,
		reason.WithLogger(a.logger),
		reason.WithMetrics(a.metrics),
	)
	a.loader = foundation.NewLoader(store, foundation.WithLogger(a.logger))

	a.logger.Info("graph opened", "locator", locator, "session_id", a.sessionID)
	return a, nil
}

func openStore(locator string, logger *slog.Logger) (storage.Graph, error) {
	switch {
	case locator == "" || locator == ":memory:":
		return memstore.New(memstore.WithLogger(logger)), nil
	case strings.HasSuffix(locator, ".db"),
		strings.HasSuffix(locator, ".sqlite"),
		strings.HasSuffix(locator, ".sqlite3"):
		return sqlitestore.Open(locator)
	default:
		cfg := badgerstore.DefaultConfig(locator)
		cfg.Logger = logger
		return badgerstore.Open(cfg)
	}
}

// SessionID returns this API's session identifier.
func (a *API) SessionID() string { return a.sessionID }

// Store exposes the underlying graph store.
func (a *API) Store() storage.Graph { return a.store }

// Layers exposes the layer registry.
func (a *API) Layers() *layers.Registry { return a.registry }

// Close releases the backend.
func (a *API) Close() error { return a.store.Close() }

// AddFact stores a subject-predicate-object triplet as a hyperedge,
// auto-typing bare identifiers.
func (a *API) AddFact(ctx context.Context, subject, predicate, object string, attrs storage.Attributes) (*hedge.Hyperedge, error) {
	edgeStr := fmt.Sprintf("(%s %s %s)",
		hedge.TypedPredicate(predicate),
		hedge.TypedConcept(subject),
		hedge.TypedConcept(object))
	return a.AddEdge(ctx, edgeStr, attrs)
}

// AddRule stores a rule edge given in notation form. Rules are ordinary
// edges; only their connector and attributes make them rules.
func (a *API) AddRule(ctx context.Context, rule string, attrs storage.Attributes) (*hedge.Hyperedge, error) {
	return a.AddEdge(ctx, rule, attrs)
}

// AddEdge parses and stores an edge in notation form.
func (a *API) AddEdge(ctx context.Context, edgeStr string, attrs storage.Attributes) (*hedge.Hyperedge, error) {
	edge, err := hedge.Parse(edgeStr)
	if err != nil {
		return nil, err
	}
	if err := a.store.Add(ctx, edge, attrs); err != nil {
		return nil, err
	}
	return edge, nil
}

// AddUserFact stores a short free-text fact as a context-layer edge
// attributed to this session. The text is normalized to a single concept
// atom.
func (a *API) AddUserFact(ctx context.Context, text string, attrs storage.Attributes) (*hedge.Hyperedge, error) {
	concept := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "-")
	if concept == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "API", "AddUserFact",
			"fact text is empty")
	}

	merged := make(storage.Attributes, len(attrs)+2)
	for k, v := range attrs {
		merged[k] = v
	}
	merged[storage.KeyLayer] = a.cfg.ContextLayer
	merged[storage.KeySessionID] = a.sessionID

	edgeStr := fmt.Sprintf("(a/P %s %s)",
		hedge.TypedConcept(a.cfg.ContextLayer),
		hedge.TypedConcept(concept))
	return a.AddEdge(ctx, edgeStr, merged)
}

// Remove deletes an edge given in notation form.
func (a *API) Remove(ctx context.Context, edgeStr string) error {
	edge, err := hedge.Parse(edgeStr)
	if err != nil {
		return err
	}
	return a.store.Remove(ctx, edge)
}

// Query returns stored edges matching a pattern string. The pattern goes
// through ParsePattern, so unbalanced or over-nested input is rejected
// before it reaches the store.
func (a *API) Query(ctx context.Context, pattern string) ([]storage.Entry, error) {
	parsed, err := hedge.ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return a.store.Query(ctx, parsed)
}

// Validate classifies proposed edges against the active rules.
func (a *API) Validate(ctx context.Context, req validate.Request) (*validate.Report, error) {
	if req.ConfidenceMin == 0 {
		req.ConfidenceMin = a.cfg.ConfidenceMin
	}
	return a.validator.Validate(ctx, req)
}

// ValidateStrings parses each proposed edge and validates the batch. Any
// parse failure aborts the whole call.
func (a *API) ValidateStrings(ctx context.Context, proposed []string) (*validate.Report, error) {
	edges := make([]*hedge.Hyperedge, 0, len(proposed))
	for _, s := range proposed {
		edge, err := hedge.Parse(s)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return a.Validate(ctx, validate.Request{Proposed: edges})
}

// Reason runs a bounded traversal from a start edge or pattern string.
// Zero hops or limit fall back to the configured defaults.
func (a *API) Reason(ctx context.Context, start string, hops, limit int) ([]reason.Result, error) {
	parsed, err := hedge.ParsePattern(start)
	if err != nil {
		return nil, err
	}
	if hops == 0 {
		hops = a.cfg.Reason.Hops
	}
	if limit == 0 {
		limit = a.cfg.Reason.Limit
	}
	return a.reasoner.Reason(ctx, parsed, hops, limit)
}

// Neighbors returns stored edges sharing at least one atom with the given
// edge.
func (a *API) Neighbors(ctx context.Context, edgeStr string) ([]storage.Entry, error) {
	edge, err := hedge.Parse(edgeStr)
	if err != nil {
		return nil, err
	}
	return a.store.NeighborsSharingAtom(ctx, edge)
}

// EdgesByConnector returns stored edges whose connector atom has the given
// identifier, regardless of arity.
func (a *API) EdgesByConnector(ctx context.Context, connector string) ([]storage.Entry, error) {
	if connector == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "API", "EdgesByConnector",
			"connector identifier is required")
	}
	entries, err := a.store.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	var out []storage.Entry
	for _, entry := range entries {
		atom, ok := entry.Edge.ConnectorAtom()
		if !ok {
			continue
		}
		if atom.ID == connector {
			out = append(out, entry)
		}
	}
	return out, nil
}

// LoadFoundationPack loads a pack file into the store.
func (a *API) LoadFoundationPack(ctx context.Context, path string) (*foundation.Result, error) {
	return a.loader.LoadFile(ctx, path)
}
