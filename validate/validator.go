package validate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/c360/semgraph/errors"
	"github.com/c360/semgraph/hedge"
	"github.com/c360/semgraph/layers"
	"github.com/c360/semgraph/metric"
	"github.com/c360/semgraph/storage"
	"github.com/c360/semgraph/vocabulary"
)

// DefaultContextLayer is the layer whose facts enrich a proposal's concept
// set during the relevance test.
const DefaultContextLayer = "user"

// maxSuggestions caps the best-effort nearest-rule hints on UNKNOWN edges.
const maxSuggestions = 3

// Request describes one validation call.
type Request struct {
	// Proposed is the batch of edges to validate (at least one).
	Proposed []*hedge.Hyperedge

	// Pattern optionally restricts which stored edges are considered
	// rules. Nil selects every predicate-connector edge.
	Pattern *hedge.Hyperedge

	// Layers optionally overrides the registry's active set for this call
	// only; the registry itself is not mutated.
	Layers []string

	// ConfidenceMin excludes rules below this confidence. Must be in
	// [0,1]; zero (the default) keeps every rule.
	ConfidenceMin float64
}

// Validator classifies proposed edges as ALLOW, DENY or UNKNOWN against
// the active rules. It only reads the store.
type Validator struct {
	store        storage.Store
	registry     *layers.Registry
	index        *RuleIndex
	connectors   *vocabulary.Connectors
	contextLayer string
	logger       *slog.Logger
	metrics      *metric.Metrics
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metric.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}

// WithConnectors sets the blocking-connector vocabulary. Defaults to
// vocabulary.DefaultConnectors.
func WithConnectors(c *vocabulary.Connectors) Option {
	return func(v *Validator) { v.connectors = c }
}

// WithContextLayer sets the layer whose facts enrich proposals during the
// relevance test. Defaults to DefaultContextLayer.
func WithContextLayer(layer string) Option {
	return func(v *Validator) { v.contextLayer = layer }
}

// New builds a validator over a store and a layer registry.
func New(store storage.Store, registry *layers.Registry, opts ...Option) *Validator {
	v := &Validator{
		store:        store,
		registry:     registry,
		index:        NewRuleIndex(store),
		contextLayer: DefaultContextLayer,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default().With("component", "validator")
	}
	if v.connectors == nil {
		v.connectors = vocabulary.DefaultConnectors()
	}
	if v.metrics == nil {
		v.metrics = metric.NewMetrics()
	}
	return v
}

// Validate classifies every proposed edge and rolls the outcomes up into a
// single report. An empty active-layer set is not an error: no rules are
// active, so every edge resolves UNKNOWN.
func (v *Validator) Validate(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	if len(req.Proposed) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Validator", "Validate",
			"at least one proposed edge is required")
	}
	for i, edge := range req.Proposed {
		if edge == nil {
			return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Validator", "Validate",
				fmt.Sprintf("nil proposed edge at position %d", i))
		}
	}
	if req.ConfidenceMin < 0 || req.ConfidenceMin > 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidArgument, "Validator", "Validate",
			fmt.Sprintf("confidence_min %v outside [0,1]", req.ConfidenceMin))
	}

	active := v.activeSet(req.Layers)

	rules, err := v.index.ActiveRules(ctx, req.Pattern, active, req.ConfidenceMin)
	if err != nil {
		v.metrics.StoreErrorsTotal.WithLabelValues("validate").Inc()
		return nil, err
	}

	contextConcepts, err := v.contextConcepts(ctx, active)
	if err != nil {
		v.metrics.StoreErrorsTotal.WithLabelValues("validate").Inc()
		return nil, err
	}

	report := &Report{Decision: DecisionAllow}
	for _, proposed := range req.Proposed {
		v.evaluate(proposed, rules, contextConcepts, report)
		report.RulesChecked += len(rules)
	}

	v.metrics.ValidationsTotal.WithLabelValues(string(report.Decision)).Inc()
	v.metrics.RulesCheckedTotal.Add(float64(report.RulesChecked))
	v.metrics.OperationDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())

	v.logger.Debug("validation complete",
		"decision", report.Decision,
		"proposed", len(req.Proposed),
		"rules_checked", report.RulesChecked,
		"active_layers", len(active))

	return report, nil
}

// activeSet resolves the layers for this call: the explicit override when
// given, the registry snapshot otherwise.
func (v *Validator) activeSet(override []string) map[string]struct{} {
	if override != nil {
		active := make(map[string]struct{}, len(override))
		for _, name := range override {
			active[name] = struct{}{}
		}
		return active
	}
	return v.registry.Snapshot()
}

// contextConcepts gathers concept atoms from facts in the context layer,
// when that layer is active. Atoms naming the context subject itself are
// excluded so that session bookkeeping never counts as overlap.
func (v *Validator) contextConcepts(ctx context.Context, active map[string]struct{}) (map[string]struct{}, error) {
	concepts := make(map[string]struct{})
	if _, enabled := active[v.contextLayer]; !enabled {
		return concepts, nil
	}

	entries, err := v.store.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Attrs.Layer() != v.contextLayer {
			continue
		}
		for _, atom := range entry.Edge.ConceptAtoms() {
			if atom.ID == v.contextLayer {
				continue
			}
			concepts[atom.String()] = struct{}{}
		}
	}
	return concepts, nil
}

// evaluate classifies a single proposed edge and appends it to the report.
func (v *Validator) evaluate(proposed *hedge.Hyperedge, rules []Rule, contextConcepts map[string]struct{}, report *Report) {
	effective := make(map[string]struct{}, len(contextConcepts))
	for c := range contextConcepts {
		effective[c] = struct{}{}
	}
	for _, atom := range proposed.ConceptAtoms() {
		effective[atom.String()] = struct{}{}
	}

	var mandatoryBlocking, blocking, supporting []Rule
	for _, rule := range rules {
		if !relevant(rule, effective) {
			continue
		}
		if v.connectors.IsBlocking(rule.Connector) {
			blocking = append(blocking, rule)
			if rule.Attrs.Mandatory() {
				mandatoryBlocking = append(mandatoryBlocking, rule)
			}
		} else {
			supporting = append(supporting, rule)
		}
	}

	edgeStr := proposed.String()
	switch {
	case len(mandatoryBlocking) > 0:
		report.Rejected = append(report.Rejected, RejectedEdge{
			Edge:     proposed,
			EdgeStr:  edgeStr,
			Reason:   ReasonForbidden,
			WhyTrace: traceEntries(mandatoryBlocking),
		})
		report.Decision = worst(report.Decision, DecisionDeny)
		v.metrics.EdgesEvaluatedTotal.WithLabelValues(string(DecisionDeny)).Inc()

	case len(supporting) > 0 && len(blocking) == 0:
		report.Kept = append(report.Kept, KeptEdge{
			Edge:     proposed,
			EdgeStr:  edgeStr,
			WhyTrace: traceEntries(supporting),
		})
		v.metrics.EdgesEvaluatedTotal.WithLabelValues(string(DecisionAllow)).Inc()

	default:
		// Either nothing relevant, or only non-mandatory blocking evidence
		// (with or without support). The relevant rules stay in the trace
		// as the evidence that was considered.
		report.Unknown = append(report.Unknown, UnknownEdge{
			Edge:        proposed,
			EdgeStr:     edgeStr,
			Reason:      ReasonInsufficient,
			Suggestions: suggestions(rules, effective),
			WhyTrace:    traceEntries(append(blocking, supporting...)),
		})
		report.Decision = worst(report.Decision, DecisionUnknown)
		v.metrics.EdgesEvaluatedTotal.WithLabelValues(string(DecisionUnknown)).Inc()
	}
}

// relevant reports whether the rule's concept atoms are a non-empty subset
// of the effective concept set. Connector atoms are deliberately ignored:
// rules and proposals may use different predicates for the same entities.
func relevant(rule Rule, effective map[string]struct{}) bool {
	if len(rule.concepts) == 0 {
		return false
	}
	for c := range rule.concepts {
		if _, ok := effective[c]; !ok {
			return false
		}
	}
	return true
}

func traceEntries(rules []Rule) []TraceEntry {
	out := make([]TraceEntry, 0, len(rules))
	for _, rule := range rules {
		matched := rule.Concepts()
		sort.Strings(matched)
		out = append(out, TraceEntry{
			Rule:            rule.Edge.String(),
			Connector:       rule.Connector.String(),
			Layer:           rule.Attrs.Layer(),
			Source:          rule.Attrs.Source(),
			Mandatory:       rule.Attrs.Mandatory(),
			Confidence:      rule.Attrs.Confidence(),
			MatchedConcepts: matched,
		})
	}
	return out
}

// suggestions ranks rules by concept-overlap count with the effective set
// and returns the nearest few. Best effort only.
func suggestions(rules []Rule, effective map[string]struct{}) []string {
	type scored struct {
		rule    string
		overlap int
	}
	var candidates []scored
	for _, rule := range rules {
		overlap := 0
		for c := range rule.concepts {
			if _, ok := effective[c]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			candidates = append(candidates, scored{rule: rule.Edge.String(), overlap: overlap})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].rule < candidates[j].rule
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].rule)
	}
	return out
}
