package visibility

import (
	"sync"
	"time"
)

// DefaultPollInterval is used when a polling observer gets a non-positive interval.
const DefaultPollInterval = 250 * time.Millisecond

// ViewportFunc returns the current viewport; ok is false when there is
// nothing to measure yet.
type ViewportFunc func() (viewport Rect, ok bool)

// PollingObserver samples the viewport on a ticker from its own goroutine.
// It is the fallback for hosts that cannot signal frames.
type PollingObserver struct {
	set      *targetSet
	viewport ViewportFunc
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPollingObserver creates a ticker-driven observer.
func NewPollingObserver(viewport ViewportFunc, interval time.Duration, threshold float64) *PollingObserver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingObserver{
		set:      newTargetSet(threshold),
		viewport: viewport,
		interval: interval,
	}
}

// Start implements RegionObserver. It is unavailable without a viewport source.
func (o *PollingObserver) Start(deliver BatchFunc) bool {
	if o.viewport == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.set.start(deliver)
	if o.running {
		return true
	}
	o.running = true
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	go o.loop(o.stopCh, o.doneCh)
	return true
}

// Observe implements RegionObserver.
func (o *PollingObserver) Observe(key Key, el Element) { o.set.observe(key, el) }

// Unobserve implements RegionObserver.
func (o *PollingObserver) Unobserve(key Key) { o.set.unobserve(key) }

// Stop implements RegionObserver. It waits for the polling goroutine to exit.
func (o *PollingObserver) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	stopCh, doneCh := o.stopCh, o.doneCh
	o.mu.Unlock()

	close(stopCh)
	<-doneCh
	o.set.start(nil)
}

func (o *PollingObserver) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if vp, ok := o.viewport(); ok {
				o.set.pass(vp)
			}
		}
	}
}
