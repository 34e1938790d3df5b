package storage

import (
	"strconv"
	"strings"
)

// Reserved attribute keys read by the validator. Remaining keys pass
// through opaquely.
const (
	KeyLayer      = "layer"
	KeyMandatory  = "mandatory"
	KeyConfidence = "confidence"
	KeySource     = "source"
	KeySessionID  = "session_id"
)

// Attributes is the mutable metadata bag attached to a stored hyperedge.
// Values are kept as strings; the typed readers below validate the
// reserved keys on read. Attributes are not part of edge identity.
type Attributes map[string]string

// Layer returns the layer name, or "" when unset.
func (a Attributes) Layer() string {
	return a[KeyLayer]
}

// Mandatory reports whether the edge is a mandatory rule. Unset or
// unparseable values read as false.
func (a Attributes) Mandatory() bool {
	v, ok := a[KeyMandatory]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false
	}
	return b
}

// Confidence returns the rule confidence in [0,1]. Unset or unparseable
// values read as 1.0; parsed values are clamped to the valid range.
func (a Attributes) Confidence() float64 {
	v, ok := a[KeyConfidence]
	if !ok {
		return 1.0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 1.0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Source returns the provenance string, or "" when unset.
func (a Attributes) Source() string {
	return a[KeySource]
}

// Clone returns a copy of the bag. Clone of nil is an empty bag.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
