package visibility

// NativeObserver is driven by the host render loop: every Frame call
// evaluates the observed elements against the current viewport.
type NativeObserver struct {
	set *targetSet
}

// NewNativeObserver creates a frame-driven observer with the given visible
// area threshold (0-1).
func NewNativeObserver(threshold float64) *NativeObserver {
	return &NativeObserver{set: newTargetSet(threshold)}
}

// Start implements RegionObserver.
func (o *NativeObserver) Start(deliver BatchFunc) bool {
	o.set.start(deliver)
	return true
}

// Observe implements RegionObserver.
func (o *NativeObserver) Observe(key Key, el Element) { o.set.observe(key, el) }

// Unobserve implements RegionObserver.
func (o *NativeObserver) Unobserve(key Key) { o.set.unobserve(key) }

// Stop implements RegionObserver.
func (o *NativeObserver) Stop() { o.set.start(nil) }

// Frame reports the viewport after a render pass.
func (o *NativeObserver) Frame(viewport Rect) {
	o.set.pass(viewport)
}
