package telemetry

// PositionTableWriteBuckets profiles position-table row write latency.
var PositionTableWriteBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1}

// Wait-registry metrics.
var (
	// WaitQueueDepth tracks the number of enqueued waiters per domain.
	WaitQueueDepth GaugeVec = noopGaugeVec{}

	// WaitSatisfiedTotal counts waiters woken by OnApply, per domain.
	WaitSatisfiedTotal CounterVec = noopCounterVec{}

	// SmallWaiterPromotionsTotal counts small-waiter hand-offs, per domain.
	SmallWaiterPromotionsTotal CounterVec = noopCounterVec{}
)

// BinlogState / SlaveState metrics.
var (
	// StrictRejectionsTotal counts OutOfOrderSeq/NonMonotonicSeq rejections
	// by kind.
	StrictRejectionsTotal CounterVec = noopCounterVec{}

	// PositionTableWriteSeconds measures ApplyAndPersist's write latency
	// into the selected position table.
	PositionTableWriteSeconds Histogram = NoopStat{}

	// PendingDeleteListSize tracks the size of the last grabbed pending
	// delete list.
	PendingDeleteListSize Gauge = NoopStat{}
)

// FilterTree metrics.
var (
	// FilterDecisionsTotal counts exclude()'s decisions by node kind and
	// result ("included"/"excluded").
	FilterDecisionsTotal CounterVec = noopCounterVec{}

	// FilterWarningsTotal counts Window warnings by kind.
	FilterWarningsTotal CounterVec = noopCounterVec{}
)

// InitMetrics registers every package-level metric var against the active
// registry. Safe to call when telemetry is disabled: vars stay no-op.
func InitMetrics() {
	WaitQueueDepth = NewGaugeVec("wait_queue_depth", "Enqueued waiters per domain", []string{"domain"})
	WaitSatisfiedTotal = NewCounterVec("wait_satisfied_total", "Waiters satisfied by OnApply", []string{"domain"})
	SmallWaiterPromotionsTotal = NewCounterVec("small_waiter_promotions_total", "Small-waiter hand-offs", []string{"domain"})

	StrictRejectionsTotal = NewCounterVec("strict_rejections_total", "Strict-mode ordering rejections", []string{"kind"})
	PositionTableWriteSeconds = NewHistogramVec("position_table_write_seconds", "Position table row write latency", nil, PositionTableWriteBuckets).With()
	PendingDeleteListSize = NewGaugeVec("pending_delete_list_size", "Size of the last grabbed pending-delete list", nil).With()

	FilterDecisionsTotal = NewCounterVec("filter_decisions_total", "FilterTree exclude() decisions", []string{"node", "result"})
	FilterWarningsTotal = NewCounterVec("filter_warnings_total", "FilterTree Window warnings", []string{"kind"})
}
