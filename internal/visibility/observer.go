package visibility

import (
	"math"
	"sync"
)

// DefaultThreshold is the visible area fraction at which a region counts as visible.
const DefaultThreshold = 0.10

// Element exposes the current bounds of an observed region. ok is false
// once the element is detached from the layout.
type Element interface {
	Bounds() (r Rect, ok bool)
}

// Key correlates an observation with one registration of a region.
type Key struct {
	ID  string
	Gen uint64
}

// Entry is a single visibility change.
type Entry struct {
	Key     Key
	Visible bool
	Ratio   float64
}

// BatchFunc receives every change computed in one observation pass.
type BatchFunc func(batch []Entry)

// RegionObserver is the observation primitive behind a Tracker.
type RegionObserver interface {
	// Start installs the delivery callback. It returns false when the
	// primitive is unavailable.
	Start(deliver BatchFunc) bool
	Observe(key Key, el Element)
	Unobserve(key Key)
	Stop()
}

// NullObserver never reports anything. It stands in for environments
// without a viewport.
type NullObserver struct{}

// Start implements RegionObserver.
func (NullObserver) Start(BatchFunc) bool { return false }

// Observe implements RegionObserver.
func (NullObserver) Observe(Key, Element) {}

// Unobserve implements RegionObserver.
func (NullObserver) Unobserve(Key) {}

// Stop implements RegionObserver.
func (NullObserver) Stop() {}

type target struct {
	el      Element
	visible bool
}

// targetSet holds the observed elements shared by the concrete observers.
type targetSet struct {
	mu        sync.Mutex
	threshold float64
	deliver   BatchFunc
	targets   map[Key]*target

	// passMu serializes evaluate+deliver so batches arrive in order.
	passMu sync.Mutex
}

func newTargetSet(threshold float64) *targetSet {
	if math.IsNaN(threshold) || threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	return &targetSet{
		threshold: threshold,
		targets:   map[Key]*target{},
	}
}

func (s *targetSet) start(deliver BatchFunc) {
	s.mu.Lock()
	s.deliver = deliver
	s.mu.Unlock()
}

func (s *targetSet) observe(key Key, el Element) {
	if el == nil {
		return
	}
	s.mu.Lock()
	s.targets[key] = &target{el: el}
	s.mu.Unlock()
}

func (s *targetSet) unobserve(key Key) {
	s.mu.Lock()
	delete(s.targets, key)
	s.mu.Unlock()
}

func (s *targetSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

func (s *targetSet) visibleAt(ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	return ratio >= s.threshold
}

// pass evaluates every target against viewport and delivers the changes as
// one batch.
func (s *targetSet) pass(viewport Rect) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	s.mu.Lock()
	deliver := s.deliver
	var batch []Entry
	for key, t := range s.targets {
		ratio := 0.0
		if bounds, ok := t.el.Bounds(); ok {
			ratio = IntersectionRatio(bounds, viewport)
		}
		visible := s.visibleAt(ratio)
		if visible == t.visible {
			continue
		}
		t.visible = visible
		batch = append(batch, Entry{Key: key, Visible: visible, Ratio: ratio})
	}
	s.mu.Unlock()

	if deliver != nil && len(batch) > 0 {
		deliver(batch)
	}
}
