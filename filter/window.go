package filter

import (
	"fmt"

	"github.com/gtidcore/gtidcore/gtid"
	"github.com/gtidcore/gtidcore/telemetry"
)

type windowState int

const (
	windowInactive windowState = iota
	windowActive
	windowPassed
)

// Window passes events once an optional start bound has been crossed,
// until an optional stop bound closes it.
//
// With start == nil the window begins active. With stop == nil the window
// never closes on its own (a caller must drop it externally once it has
// served its purpose). Once active, every event handed to the window passes
// whatever its server_id or domain_id; activation matches the start's
// (domain, server) and closing matches the stop's server and seq. Keeping
// other identifiers' events away from the window is left to its parent
// node.
type Window struct {
	start  *gtid.ID
	stop   *gtid.ID
	strict bool

	state       windowState
	highestSeen uint64
	warnings    []Warning
}

// NewWindow constructs a Window bounded by start (exclusive, nil means
// "already active") and stop (inclusive exact match, nil means "never
// closes"). strict enables the stop-overshoot closing path.
func NewWindow(start, stop *gtid.ID, strict bool) *Window {
	w := &Window{start: start, stop: stop, strict: strict}
	if start == nil {
		w.state = windowActive
	}
	return w
}

func (w *Window) Exclude(g gtid.ID) bool {
	excluded := w.excludeInner(g)
	telemetry.FilterDecisionsTotal.With("window", decisionLabel(excluded)).Inc()
	return excluded
}

func decisionLabel(excluded bool) string {
	if excluded {
		return "excluded"
	}
	return "included"
}

func (w *Window) excludeInner(g gtid.ID) bool {
	switch w.state {
	case windowPassed:
		return true
	case windowInactive:
		if w.start.Domain == g.Domain && w.start.Server == g.Server && g.Seq > w.start.Seq {
			w.state = windowActive
		} else {
			return true
		}
	}

	if w.stop != nil {
		if g.Server == w.stop.Server && g.Seq == w.stop.Seq {
			w.state = windowPassed
			w.observe(g)
			return false
		}
		if w.strict && g.Seq > w.stop.Seq {
			w.state = windowPassed
			w.warnings = append(w.warnings, Warning{
				Kind:   StopOvershoot,
				Event:  g,
				Detail: fmt.Sprintf("seq_no %d exceeded stop bound %d without matching it", g.Seq, w.stop.Seq),
			})
			return true
		}
	}

	if g.Seq < w.highestSeen {
		w.warnings = append(w.warnings, Warning{
			Kind:   SeqOutOfOrder,
			Event:  g,
			Detail: fmt.Sprintf("seq_no %d is lower than previously seen %d", g.Seq, w.highestSeen),
		})
		return false
	}

	w.observe(g)
	return false
}

func (w *Window) observe(g gtid.ID) {
	if g.Seq > w.highestSeen {
		w.highestSeen = g.Seq
	}
}

func (w *Window) HasFinished() bool { return w.state == windowPassed }

func (w *Window) WriteWarnings(sink WarningSink) {
	for _, warn := range w.warnings {
		sink.Warn(warn)
	}
	w.warnings = w.warnings[:0]
}
