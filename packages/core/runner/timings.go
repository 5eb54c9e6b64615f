package runner

import (
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Timings accumulates step latencies, overall and per action. Values
// are recorded in microseconds between 1µs and 60s at 3 significant
// digits.
type Timings struct {
	overall  *hdrhistogram.Histogram
	byAction map[string]*hdrhistogram.Histogram
}

// NewTimings returns an empty timing accumulator.
func NewTimings() *Timings {
	return &Timings{
		overall:  hdrhistogram.New(1, 60_000_000, 3),
		byAction: make(map[string]*hdrhistogram.Histogram),
	}
}

// Record adds one step latency under its action.
func (t *Timings) Record(action string, d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	_ = t.overall.RecordValue(us)

	h, ok := t.byAction[action]
	if !ok {
		h = hdrhistogram.New(1, 60_000_000, 3)
		t.byAction[action] = h
	}
	_ = h.RecordValue(us)
}

// Merge folds another accumulator into this one.
func (t *Timings) Merge(other *Timings) {
	if other == nil {
		return
	}
	t.overall.Merge(other.overall)
	for action, h := range other.byAction {
		existing, ok := t.byAction[action]
		if !ok {
			existing = hdrhistogram.New(1, 60_000_000, 3)
			t.byAction[action] = existing
		}
		existing.Merge(h)
	}
}

// ActionTiming is the per-action latency summary.
type ActionTiming struct {
	Action string
	Count  int64
	Mean   time.Duration
	P95    time.Duration
	Max    time.Duration
}

// TimingSummary is the latency digest reported after a run.
type TimingSummary struct {
	Steps    int64
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
	ByAction []ActionTiming
}

// Summary snapshots the accumulated histograms.
func (t *Timings) Summary() TimingSummary {
	s := TimingSummary{
		Steps: t.overall.TotalCount(),
		Mean:  time.Duration(t.overall.Mean()) * time.Microsecond,
		P50:   time.Duration(t.overall.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(t.overall.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(t.overall.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(t.overall.Max()) * time.Microsecond,
	}

	for action, h := range t.byAction {
		s.ByAction = append(s.ByAction, ActionTiming{
			Action: action,
			Count:  h.TotalCount(),
			Mean:   time.Duration(h.Mean()) * time.Microsecond,
			P95:    time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
			Max:    time.Duration(h.Max()) * time.Microsecond,
		})
	}
	sort.Slice(s.ByAction, func(i, j int) bool {
		return s.ByAction[i].Action < s.ByAction[j].Action
	})
	return s
}
