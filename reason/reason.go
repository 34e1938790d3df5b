package reason

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/metric"
	"github.com/c360/semgraph/storage"
)

// Result is one edge reached by a traversal.
type Result struct {
	Edge *hedge.Hyperedge `json:"-"`
	// EdgeStr is the canonical string of the reached edge.
	EdgeStr string `json:"edge"`
	// Distance is the hop count from the start frontier (0 for a stored
	// start edge itself).
	Distance int `json:"distance"`
	// Path lists the canonical strings of the edges traversed to reach
	// this one, in order, excluding the edge itself.
	Path  []string           `json:"path"`
	Attrs storage.Attributes `json:"attrs,omitempty"`
}

// Reasoner walks the shared-atom adjacency of a store breadth-first.
type Reasoner struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reasoner) { r.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metric.Metrics) Option {
	return func(r *Reasoner) { r.metrics = m }
}

// New builds a reasoner over a store.
func New(store storage.Store, opts ...Option) *Reasoner {
	r := &Reasoner{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "reasoner")
	}
	if r.metrics == nil {
		r.metrics = metric.NewMetrics()
	}
	return r
}

// node is one frontier entry during the walk. parent indexes into the
// discovery order; -1 marks a start node.
type node struct {
	edge   *hedge.Hyperedge
	str    string
	attrs  storage.Attributes
	parent int
	depth  int
	stored bool
}

// Reason performs a breadth-first traversal from start, bounded by hops
// and capped at limit results.
//
// A start containing the wildcard seeds the traversal with every matching
// stored edge; those seeds are themselves emitted at distance 0. A
// literal start that is stored behaves the same way. A literal start that
// is not stored still seeds the walk (its atoms anchor the first hop) but
// is not emitted as a result.
//
// Results appear in discovery order. When the limit is reached mid-layer
// the traversal stops immediately; the caller sees the first `limit`
// discoveries, not a complete layer.
func (r *Reasoner) Reason(ctx context.Context, start *hedge.Hyperedge, hops, limit int) ([]Result, error) {
	began := time.Now()

	if start == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Reasoner", "Reason",
			"start edge is required")
	}
	if hops <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Reasoner", "Reason",
			fmt.Sprintf("hops must be positive, got %d", hops))
	}
	if limit <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Reasoner", "Reason",
			fmt.Sprintf("limit must be positive, got %d", limit))
	}

	frontier, err := r.seed(ctx, start)
	if err != nil {
		r.metrics.StoreErrorsTotal.WithLabelValues("reason").Inc()
		return nil, err
	}
	if len(frontier) == 0 {
		// A pattern that matches nothing has nothing to walk from.
		return []Result{}, nil
	}

	r.metrics.TraversalsTotal.Inc()

	visited := make(map[string]struct{}, len(frontier))
	for _, n := range frontier {
		visited[n.str] = struct{}{}
	}

	// order records every discovered node so paths can be rebuilt by
	// following parent links.
	order := make([]node, 0, len(frontier))
	results := make([]Result, 0)

	emit := func(n node) {
		results = append(results, Result{
			Edge:     n.edge,
			EdgeStr:  n.str,
			Distance: n.depth,
			Path:     r.pathTo(order, n),
			Attrs:    n.attrs,
		})
	}

	queue := make([]int, 0, len(frontier))
	for _, n := range frontier {
		order = append(order, n)
		queue = append(queue, len(order)-1)
		if n.stored {
			emit(n)
			if len(results) == limit {
				return r.finish(results, began), nil
			}
		}
	}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		current := order[idx]

		if current.depth >= hops {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapTransient(err, "Reasoner", "Reason", "traversal cancelled")
		}

		neighbors, err := r.store.NeighborsSharingAtom(ctx, current.edge)
		if err != nil {
			r.metrics.StoreErrorsTotal.WithLabelValues("reason").Inc()
			return nil, err
		}

		for _, entry := range neighbors {
			str := entry.Edge.String()
			if _, seen := visited[str]; seen {
				continue
			}
			visited[str] = struct{}{}

			next := node{
				edge:   entry.Edge,
				str:    str,
				attrs:  entry.Attrs,
				parent: idx,
				depth:  current.depth + 1,
				stored: true,
			}
			order = append(order, next)
			queue = append(queue, len(order)-1)

			emit(next)
			if len(results) == limit {
				return r.finish(results, began), nil
			}
		}
	}

	return r.finish(results, began), nil
}

// seed resolves the distance-0 frontier for a start edge.
func (r *Reasoner) seed(ctx context.Context, start *hedge.Hyperedge) ([]node, error) {
	if start.HasWildcard() {
		entries, err := r.store.Query(ctx, start)
		if err != nil {
			return nil, err
		}
		seeds := make([]node, 0, len(entries))
		for _, entry := range entries {
			seeds = append(seeds, node{
				edge:   entry.Edge,
				str:    entry.Edge.String(),
				attrs:  entry.Attrs,
				parent: -1,
				stored: true,
			})
		}
		return seeds, nil
	}

	// Literal start: one seed, stored or not. An unstored start anchors
	// the walk through its atoms but never appears in the results.
	entries, err := r.store.Query(ctx, start)
	if err != nil {
		return nil, err
	}
	seed := node{edge: start, str: start.String(), parent: -1}
	if len(entries) > 0 {
		seed.edge = entries[0].Edge
		seed.attrs = entries[0].Attrs
		seed.stored = true
	}
	return []node{seed}, nil
}

// pathTo rebuilds the chain of predecessor edges for n, oldest first,
// excluding n itself.
func (r *Reasoner) pathTo(order []node, n node) []string {
	if n.parent < 0 {
		return []string{}
	}
	var rev []string
	for idx := n.parent; idx >= 0; idx = order[idx].parent {
		rev = append(rev, order[idx].str)
	}
	path := make([]string, len(rev))
	for i, s := range rev {
		path[len(rev)-1-i] = s
	}
	return path
}

func (r *Reasoner) finish(results []Result, began time.Time) []Result {
	r.metrics.TraversalResultsTotal.Add(float64(len(results)))
	r.metrics.OperationDuration.WithLabelValues("reason").Observe(time.Since(began).Seconds())
	r.logger.Debug("traversal complete", "results", len(results))
	return results
}
