package main

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tiledmap/geom"
)

const (
	minZoom = 0.1
	maxZoom = 16
)

// Camera maps Y-up world coordinates to screen pixels. Pos is the world
// point shown at the screen center.
type Camera struct {
	Pos geom.Vec2

	screenW int
	screenH int
	zoom    float64

	// smoothing factor (0..1). higher -> faster follow
	smooth float64
	target geom.Vec2
}

func NewCamera(screenW, screenH int, zoom float64) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{screenW: screenW, screenH: screenH, zoom: zoom, smooth: 0.25}
}

func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = cp.Clamp(z, minZoom, maxZoom)
}

func (c *Camera) Zoom() float64 {
	return c.zoom
}

func (c *Camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW = w
	c.screenH = h
}

// Pan moves the follow target by d world units.
func (c *Camera) Pan(d geom.Vec2) {
	c.target = c.target.Add(d)
}

// SnapTo places the camera on p without smoothing.
func (c *Camera) SnapTo(p geom.Vec2) {
	c.target = p
	c.Pos = p
	c.snap()
}

// Update moves the camera toward its target.
func (c *Camera) Update() {
	if c.smooth <= 0 {
		c.Pos = c.target
	} else {
		c.Pos = c.Pos.Lerp(c.target, c.smooth)
	}
	c.snap()
}

// snap position to 1/zoom grid to align world units to integer screen pixels
func (c *Camera) snap() {
	c.Pos.X = math.Round(c.Pos.X*c.zoom) / c.zoom
	c.Pos.Y = math.Round(c.Pos.Y*c.zoom) / c.zoom
}

// Viewport returns the visible world rectangle.
func (c *Camera) Viewport() geom.Rect {
	half := geom.V(float64(c.screenW)/c.zoom/2, float64(c.screenH)/c.zoom/2)
	return geom.RectFromCenter(c.Pos, half)
}

// ToScreen converts a world point to screen pixels. Screen Y grows downward.
func (c *Camera) ToScreen(p geom.Vec2) (float32, float32) {
	x := (p.X-c.Pos.X)*c.zoom + float64(c.screenW)/2
	y := (c.Pos.Y-p.Y)*c.zoom + float64(c.screenH)/2
	return float32(x), float32(y)
}

// ToWorld is the inverse of ToScreen.
func (c *Camera) ToWorld(x, y int) geom.Vec2 {
	return geom.V(
		(float64(x)-float64(c.screenW)/2)/c.zoom+c.Pos.X,
		c.Pos.Y-(float64(y)-float64(c.screenH)/2)/c.zoom,
	)
}
