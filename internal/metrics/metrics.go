// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	SummonTotal      = expvar.NewInt("chops_summon_total")
	RecordTotal      = expvar.NewInt("chops_record_total")
	RecallTotal      = expvar.NewInt("chops_recall_total")
	RecommendTotal   = expvar.NewInt("chops_recommend_total")
	SnapshotTotal    = expvar.NewInt("chops_snapshot_total")
	RestoreTotal     = expvar.NewInt("chops_restore_total")
	EntropyFallbacks = expvar.NewInt("chops_entropy_fallback_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
