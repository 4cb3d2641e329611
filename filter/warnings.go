package filter

import (
	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/telemetry"
)

// WarningKind classifies a non-fatal anomaly raised while a Window is active.
type WarningKind int

const (
	// SeqOutOfOrder fires when an included event's seq_no is lower than one
	// already seen in the same window.
	SeqOutOfOrder WarningKind = iota
	// StopOvershoot fires in strict mode when the window closes because an
	// event's seq_no strictly exceeded the stop bound without ever matching
	// it exactly.
	StopOvershoot
)

func (k WarningKind) String() string {
	switch k {
	case SeqOutOfOrder:
		return "seq_out_of_order"
	case StopOvershoot:
		return "stop_overshoot"
	default:
		return "unknown"
	}
}

// Warning is one anomaly recorded against a GTID.
type Warning struct {
	Kind   WarningKind
	Event  gtid.ID
	Detail string
}

// WarningSink receives warnings drained from a Node via WriteWarnings.
type WarningSink interface {
	Warn(w Warning)
}

// CountingSink is a WarningSink that tallies warnings by kind and also
// increments telemetry.FilterWarningsTotal, giving callers a ready-made
// observability-friendly default sink instead of having to write one.
type CountingSink struct {
	Counts map[WarningKind]int
}

// NewCountingSink returns an empty CountingSink.
func NewCountingSink() *CountingSink {
	return &CountingSink{Counts: make(map[WarningKind]int)}
}

func (s *CountingSink) Warn(w Warning) {
	s.Counts[w.Kind]++
	telemetry.FilterWarningsTotal.With(w.Kind.String()).Inc()
}
