package directory

import (
	"sync/atomic"
	"time"
)

// Observer defines hooks for observability and metrics collection.
// The store invokes hooks after each operation, outside its own lock, so
// implementations may be arbitrarily slow without blocking other callers.
type Observer interface {
	// OnCreate is called after a record is created.
	OnCreate(id int, duration time.Duration)

	// OnList is called after a list operation with the returned count.
	OnList(count int, duration time.Duration)

	// OnGet is called after a successful single-record read.
	OnGet(id int, duration time.Duration)

	// OnUpdate is called after a successful update or patch.
	OnUpdate(id int, duration time.Duration)

	// OnDelete is called after a successful delete.
	OnDelete(id int, duration time.Duration)

	// OnMiss is called when get, update, or delete target an absent id.
	// op is one of "get", "update", "delete".
	OnMiss(op string, id int)
}

// NoopObserver is a no-op implementation of Observer for when metrics are
// disabled.
type NoopObserver struct{}

func (n *NoopObserver) OnCreate(id int, duration time.Duration)  {}
func (n *NoopObserver) OnList(count int, duration time.Duration) {}
func (n *NoopObserver) OnGet(id int, duration time.Duration)     {}
func (n *NoopObserver) OnUpdate(id int, duration time.Duration)  {}
func (n *NoopObserver) OnDelete(id int, duration time.Duration)  {}
func (n *NoopObserver) OnMiss(op string, id int)                 {}

// MetricsObserver collects basic counters about store operations.
// All counters use atomic operations so hooks may be called from multiple
// goroutines concurrently.
type MetricsObserver struct {
	createCount    atomic.Int64
	listCount      atomic.Int64
	getCount       atomic.Int64
	updateCount    atomic.Int64
	deleteCount    atomic.Int64
	missCount      atomic.Int64
	totalLatencyNs atomic.Int64
}

// NewMetricsObserver creates a new thread-safe metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (m *MetricsObserver) OnCreate(id int, duration time.Duration) {
	m.createCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnList(count int, duration time.Duration) {
	m.listCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnGet(id int, duration time.Duration) {
	m.getCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnUpdate(id int, duration time.Duration) {
	m.updateCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnDelete(id int, duration time.Duration) {
	m.deleteCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnMiss(op string, id int) {
	m.missCount.Add(1)
}

// Snapshot returns a point-in-time copy of the current counters.
func (m *MetricsObserver) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CreateCount:  m.createCount.Load(),
		ListCount:    m.listCount.Load(),
		GetCount:     m.getCount.Load(),
		UpdateCount:  m.updateCount.Load(),
		DeleteCount:  m.deleteCount.Load(),
		MissCount:    m.missCount.Load(),
		TotalLatency: time.Duration(m.totalLatencyNs.Load()),
	}
}

// Reset clears all counters to zero.
func (m *MetricsObserver) Reset() {
	m.createCount.Store(0)
	m.listCount.Store(0)
	m.getCount.Store(0)
	m.updateCount.Store(0)
	m.deleteCount.Store(0)
	m.missCount.Store(0)
	m.totalLatencyNs.Store(0)
}

// MetricsSnapshot is a point-in-time snapshot of store metrics.
type MetricsSnapshot struct {
	CreateCount  int64         `json:"createCount"`
	ListCount    int64         `json:"listCount"`
	GetCount     int64         `json:"getCount"`
	UpdateCount  int64         `json:"updateCount"`
	DeleteCount  int64         `json:"deleteCount"`
	MissCount    int64         `json:"missCount"`
	TotalLatency time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the total number of successful operations.
func (s MetricsSnapshot) TotalOperations() int64 {
	return s.CreateCount + s.ListCount + s.GetCount + s.UpdateCount + s.DeleteCount
}

var (
	_ Observer = (*NoopObserver)(nil)
	_ Observer = (*MetricsObserver)(nil)
)
