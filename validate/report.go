package validate

import (
	"github.com/c360/semgraph/hedge"
)

// Decision is the tri-state validation outcome.
type Decision string

const (
	// DecisionAllow means relevant supporting rules exist and nothing blocks.
	DecisionAllow Decision = "ALLOW"
	// DecisionDeny means a mandatory blocking rule is relevant.
	DecisionDeny Decision = "DENY"
	// DecisionUnknown means the rules provide insufficient information.
	DecisionUnknown Decision = "UNKNOWN"
)

// severity orders decisions for the batch roll-up: DENY > UNKNOWN > ALLOW.
func (d Decision) severity() int {
	switch d {
	case DecisionDeny:
		return 2
	case DecisionUnknown:
		return 1
	default:
		return 0
	}
}

func worst(a, b Decision) Decision {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// TraceEntry is one piece of why-trace evidence: a rule that fired and the
// attributes under which it did.
type TraceEntry struct {
	Rule            string   `json:"rule"`
	Connector       string   `json:"connector"`
	Layer           string   `json:"layer"`
	Source          string   `json:"source,omitempty"`
	Mandatory       bool     `json:"mandatory"`
	Confidence      float64  `json:"confidence"`
	MatchedConcepts []string `json:"matched_concepts"`
}

// KeptEdge is an allowed proposal with its supporting evidence.
type KeptEdge struct {
	Edge     *hedge.Hyperedge `json:"-"`
	EdgeStr  string           `json:"edge"`
	WhyTrace []TraceEntry     `json:"why_trace"`
}

// RejectedEdge is a denied proposal with every relevant mandatory blocking
// rule as evidence.
type RejectedEdge struct {
	Edge     *hedge.Hyperedge `json:"-"`
	EdgeStr  string           `json:"edge"`
	Reason   string           `json:"reason"`
	WhyTrace []TraceEntry     `json:"why_trace"`
}

// UnknownEdge is a proposal the rules cannot decide, with best-effort
// suggestions of the nearest rules by concept overlap.
type UnknownEdge struct {
	Edge        *hedge.Hyperedge `json:"-"`
	EdgeStr     string           `json:"edge"`
	Reason      string           `json:"reason"`
	Suggestions []string         `json:"suggestions,omitempty"`
	WhyTrace    []TraceEntry     `json:"why_trace,omitempty"`
}

// Report is the transient result of a validation call.
type Report struct {
	Decision     Decision       `json:"decision"`
	Kept         []KeptEdge     `json:"kept"`
	Rejected     []RejectedEdge `json:"rejected"`
	Unknown      []UnknownEdge  `json:"unknown"`
	RulesChecked int            `json:"rules_checked"`
}

// Fixed human-readable reasons attached to non-ALLOW outcomes.
const (
	ReasonForbidden    = "contraindicated or forbidden by rules"
	ReasonInsufficient = "insufficient information"
)
