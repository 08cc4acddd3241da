package main

import (
	"testing"

	"github.com/milk9111/tiledmap/geom"
)

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(200, 100, 2)
	c.SnapTo(geom.V(10, 20))

	cases := []struct {
		name   string
		world  geom.Vec2
		sx, sy float32
	}{
		{"center", geom.V(10, 20), 100, 50},
		{"up is up", geom.V(10, 30), 100, 30},
		{"right", geom.V(15, 20), 110, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := c.ToScreen(tc.world)
			if x != tc.sx || y != tc.sy {
				t.Fatalf("ToScreen(%v) = %v,%v want %v,%v", tc.world, x, y, tc.sx, tc.sy)
			}
			if back := c.ToWorld(int(x), int(y)); !back.ApproxEq(tc.world, 1e-9) {
				t.Fatalf("ToWorld = %v, want %v", back, tc.world)
			}
		})
	}

	if vp := c.Viewport(); !vp.ApproxEq(geom.R(-40, -5, 60, 45), 1e-9) {
		t.Fatalf("Viewport = %v", vp)
	}
}

func TestCameraFollowsTarget(t *testing.T) {
	c := NewCamera(100, 100, 1)
	c.Pan(geom.V(100, 0))
	for i := 0; i < 100; i++ {
		c.Update()
	}
	if !c.Pos.ApproxEq(geom.V(100, 0), 2) {
		t.Fatalf("camera stopped at %v", c.Pos)
	}
}

func TestCameraZoomLimits(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{2, 2},
		{0.01, minZoom},
		{100, maxZoom},
		{-1, 1},
	}
	for _, c := range cases {
		cam := NewCamera(10, 10, 1)
		cam.SetZoom(c.in)
		if cam.Zoom() != c.want {
			t.Fatalf("SetZoom(%g) gave %g, want %g", c.in, cam.Zoom(), c.want)
		}
	}
}
