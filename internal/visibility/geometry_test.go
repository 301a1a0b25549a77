package visibility

import "testing"

func TestIsRectInViewport(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, Width: 80, Height: 24}
	cases := []struct {
		name   string
		bounds Rect
		want   bool
	}{
		{name: "inside", bounds: Rect{X: 2, Y: 3, Width: 10, Height: 5}, want: true},
		{name: "exact fit", bounds: Rect{X: 0, Y: 0, Width: 80, Height: 24}, want: true},
		{name: "straddles top", bounds: Rect{X: 0, Y: -1, Width: 10, Height: 5}, want: false},
		{name: "straddles left", bounds: Rect{X: -1, Y: 0, Width: 10, Height: 5}, want: false},
		{name: "past bottom", bounds: Rect{X: 0, Y: 20, Width: 10, Height: 5}, want: false},
		{name: "past right", bounds: Rect{X: 75, Y: 0, Width: 6, Height: 1}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRectInViewport(tc.bounds, viewport); got != tc.want {
				t.Fatalf("IsRectInViewport(%+v) = %v, want %v", tc.bounds, got, tc.want)
			}
		})
	}
}

func TestIsRectInViewportScrolled(t *testing.T) {
	viewport := Rect{X: 0, Y: 100, Width: 80, Height: 24}
	if !IsRectInViewport(Rect{X: 0, Y: 100, Width: 80, Height: 24}, viewport) {
		t.Fatalf("expected rect at scrolled origin to be inside")
	}
	if IsRectInViewport(Rect{X: 0, Y: 99, Width: 80, Height: 2}, viewport) {
		t.Fatalf("expected rect above scrolled origin to be outside")
	}
}

func TestIntersectionRatio(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	cases := []struct {
		name string
		el   Rect
		want float64
	}{
		{name: "full", el: Rect{X: 0, Y: 0, Width: 10, Height: 2}, want: 1},
		{name: "half", el: Rect{X: 0, Y: 8, Width: 10, Height: 4}, want: 0.5},
		{name: "outside", el: Rect{X: 0, Y: 10, Width: 10, Height: 4}, want: 0},
		{name: "zero area inside", el: Rect{X: 3, Y: 3}, want: 1},
		{name: "zero area outside", el: Rect{X: 3, Y: 10}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IntersectionRatio(tc.el, viewport); got != tc.want {
				t.Fatalf("IntersectionRatio = %v, want %v", got, tc.want)
			}
		})
	}
}
