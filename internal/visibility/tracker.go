package visibility

import "sync"

type region struct {
	gen     uint64
	visible bool
}

// Tracker maps region identifiers to their last known visibility.
//
// Only batches delivered by the tracker's own observer mutate the map, and
// each batch is applied under a single lock. Entries whose registration has
// been removed or replaced are dropped.
type Tracker struct {
	obs     RegionObserver
	enabled bool

	mu      sync.RWMutex
	nextGen uint64
	regions map[string]*region
}

// NewTracker creates a tracker on top of obs. A nil observer behaves like
// NullObserver.
func NewTracker(obs RegionObserver) *Tracker {
	if obs == nil {
		obs = NullObserver{}
	}
	t := &Tracker{
		obs:     obs,
		regions: map[string]*region{},
	}
	t.enabled = obs.Start(t.apply)
	return t
}

// Available reports whether the underlying observer is usable.
func (t *Tracker) Available() bool {
	return t.enabled
}

// Register starts observing el under id and returns a function that stops
// observing it. Invalid registrations are a no-op. Registering an id that is
// already present replaces the previous registration.
func (t *Tracker) Register(id string, el Element) (unregister func()) {
	noop := func() {}
	if !t.enabled || id == "" || el == nil {
		return noop
	}
	if _, ok := el.Bounds(); !ok {
		return noop
	}

	t.mu.Lock()
	t.nextGen++
	gen := t.nextGen
	prev, replaced := t.regions[id]
	t.regions[id] = &region{gen: gen}
	t.mu.Unlock()

	if replaced {
		t.obs.Unobserve(Key{ID: id, Gen: prev.gen})
	}
	t.obs.Observe(Key{ID: id, Gen: gen}, el)

	var once sync.Once
	return func() {
		once.Do(func() { t.unregister(id, gen) })
	}
}

func (t *Tracker) unregister(id string, gen uint64) {
	t.mu.Lock()
	if r, ok := t.regions[id]; ok && r.gen == gen {
		delete(t.regions, id)
	}
	t.mu.Unlock()
	t.obs.Unobserve(Key{ID: id, Gen: gen})
}

// IsVisible returns the last known visibility of id, false if unknown.
func (t *Tracker) IsVisible(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.regions[id]
	return ok && r.visible
}

// Registered reports whether id currently has a registration.
func (t *Tracker) Registered(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.regions[id]
	return ok
}

// Snapshot returns a copy of the visibility map.
func (t *Tracker) Snapshot() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]bool, len(t.regions))
	for id, r := range t.regions {
		out[id] = r.visible
	}
	return out
}

// Close stops the observer. Registered regions keep their last state.
func (t *Tracker) Close() {
	t.obs.Stop()
}

func (t *Tracker) apply(batch []Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range batch {
		r, ok := t.regions[e.Key.ID]
		if !ok || r.gen != e.Key.Gen {
			continue
		}
		r.visible = e.Visible
	}
}
