package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/tiledmap/geom"
	"github.com/milk9111/tiledmap/physics"
)

var (
	colliderColor = colornames.Deepskyblue
	lineColor     = colornames.Orange
	objectColor   = colornames.Yellow
	tileColor     = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	boundsColor   = colornames.Lightgrey
	chunkColor    = colornames.Limegreen
)

func strokeSegment(screen *ebiten.Image, cam *Camera, a, b geom.Vec2, width float32, clr color.Color) {
	ax, ay := cam.ToScreen(a)
	bx, by := cam.ToScreen(b)
	vector.StrokeLine(screen, ax, ay, bx, by, width, clr, true)
}

func strokeRect(screen *ebiten.Image, cam *Camera, r geom.Rect, clr color.Color) {
	c := r.Corners()
	for i := range c {
		strokeSegment(screen, cam, c[i], c[(i+1)%len(c)], 1, clr)
	}
}

func strokeRing(screen *ebiten.Image, cam *Camera, ring geom.LineString, clr color.Color) {
	for _, s := range ring.Segments() {
		strokeSegment(screen, cam, s[0], s[1], 1, clr)
	}
}

func strokeCross(screen *ebiten.Image, cam *Camera, p geom.Vec2, size float64, clr color.Color) {
	l := size / 2 / cam.Zoom()
	strokeSegment(screen, cam, p.Add(geom.V(-l, 0)), p.Add(geom.V(l, 0)), 1, clr)
	strokeSegment(screen, cam, p.Add(geom.V(0, -l)), p.Add(geom.V(0, l)), 1, clr)
}

// drawGeometry outlines every ring of mp, or the segments the physics
// strategy would build from it.
func drawGeometry(screen *ebiten.Image, cam *Camera, mp geom.MultiPolygon, strategy physics.Strategy) {
	if strategy == physics.StrategyPolyline {
		for _, s := range physics.Segments(physics.ToUnifiedPolyline(mp)) {
			strokeSegment(screen, cam, s[0], s[1], 2, lineColor)
		}
		return
	}
	for _, p := range mp {
		for _, ring := range p.Rings() {
			strokeRing(screen, cam, ring, colliderColor)
		}
	}
}

// chipmunkDrawer renders a cp.Space through the camera.
type chipmunkDrawer struct {
	screen *ebiten.Image
	cam    *Camera
}

func drawSpace(screen *ebiten.Image, cam *Camera, space *cp.Space) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &chipmunkDrawer{screen: screen, cam: cam})
}

func (d *chipmunkDrawer) line(a, b cp.Vector, clr color.Color) {
	strokeSegment(d.screen, d.cam, geom.FromVector(a), geom.FromVector(b), 1, clr)
}

func (d *chipmunkDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := pos.Add(cp.Vector{X: radius})
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := pos.Add(cp.ForAngle(th).Mult(radius))
		d.line(prev, cur, c)
		prev = cur
	}
	d.line(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), c)
}

func (d *chipmunkDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
	if radius > 0 {
		d.DrawCircle(a, 0, radius, outline, fill, data)
		d.DrawCircle(b, 0, radius, outline, fill, data)
	}
}

func (d *chipmunkDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *chipmunkDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	strokeCross(d.screen, d.cam, geom.FromVector(pos), size, fcolorToRGBA(fill))
}

func (d *chipmunkDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *chipmunkDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *chipmunkDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape != nil && shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1.0, A: 1.0}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *chipmunkDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *chipmunkDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *chipmunkDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
