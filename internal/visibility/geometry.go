// Package visibility tracks which registered regions are on screen.
package visibility

// Rect is an axis-aligned rectangle in terminal cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Top returns the top edge.
func (r Rect) Top() int { return r.Y }

// Left returns the left edge.
func (r Rect) Left() int { return r.X }

// Bottom returns the bottom edge (exclusive).
func (r Rect) Bottom() int { return r.Y + r.Height }

// Right returns the right edge (exclusive).
func (r Rect) Right() int { return r.X + r.Width }

// Area returns the rectangle area, zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.Left(), o.Left())
	top := max(r.Top(), o.Top())
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) containsPoint(x, y int) bool {
	return x >= r.Left() && x < r.Right() && y >= r.Top() && y < r.Bottom()
}

// IntersectionRatio reports the fraction of el's area inside viewport.
// A zero-area element counts as fully inside when its origin is.
func IntersectionRatio(el, viewport Rect) float64 {
	area := el.Area()
	if area == 0 {
		if viewport.containsPoint(el.X, el.Y) {
			return 1
		}
		return 0
	}
	return float64(el.Intersect(viewport).Area()) / float64(area)
}

// IsRectInViewport reports whether bounds lie fully inside the viewport.
// Edges are compared relative to the viewport origin: top and left must be
// non-negative, bottom and right must not exceed the viewport size.
func IsRectInViewport(bounds, viewport Rect) bool {
	top := bounds.Top() - viewport.Top()
	left := bounds.Left() - viewport.Left()
	bottom := bounds.Bottom() - viewport.Top()
	right := bounds.Right() - viewport.Left()
	return top >= 0 && left >= 0 && bottom <= viewport.Height && right <= viewport.Width
}
