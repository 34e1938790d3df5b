// Package validate implements tri-state rule validation with why-trace
// evidence.
//
// Proposed hyperedges are checked against the active rules of the store: a
// per-call projection restricted to enabled layers and a confidence
// threshold (the rule index). Rules partition into blocking rules (the
// connector marks a prohibition) and supporting rules. A rule is relevant
// to a proposed edge when its concept atoms are a non-empty subset of the
// proposal's effective concepts, where the effective set is enriched with
// concepts from facts in the session context layer.
//
// Per edge, the outcome is one of three states:
//
//	DENY    - a relevant blocking rule with mandatory=true exists
//	ALLOW   - relevant supporting rules exist and no blocking rule is relevant
//	UNKNOWN - no relevant rule, or only non-mandatory blocking evidence
//
// DENY and UNKNOWN are successful results, not errors. The batch decision
// is the worst per-edge outcome under DENY > UNKNOWN > ALLOW.
package validate
