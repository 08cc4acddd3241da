package tiled

import (
	"fmt"

	"github.com/milk9111/tiledmap/geom"
)

// Orientation is the map orientation attribute.
type Orientation int

const (
	Orthogonal Orientation = iota
	Isometric
	Staggered
	Hexagonal
)

// ParseOrientation reads the map orientation attribute; empty means orthogonal.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "orthogonal":
		return Orthogonal, nil
	case "isometric":
		return Isometric, nil
	case "staggered":
		return Staggered, nil
	case "hexagonal":
		return Hexagonal, nil
	}
	return 0, fmt.Errorf("tiled: unknown orientation %q", s)
}

func (o Orientation) String() string {
	switch o {
	case Orthogonal:
		return "orthogonal"
	case Isometric:
		return "isometric"
	case Staggered:
		return "staggered"
	case Hexagonal:
		return "hexagonal"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// StaggerAxis picks whether columns (X) or rows (Y) alternate.
type StaggerAxis int

const (
	StaggerY StaggerAxis = iota
	StaggerX
)

// ParseStaggerAxis reads the staggeraxis attribute.
func ParseStaggerAxis(s string) (StaggerAxis, error) {
	switch s {
	case "", "y":
		return StaggerY, nil
	case "x":
		return StaggerX, nil
	}
	return 0, fmt.Errorf("tiled: unknown stagger axis %q", s)
}

// StaggerIndex picks whether odd or even rows/columns are shifted.
type StaggerIndex int

const (
	StaggerOdd StaggerIndex = iota
	StaggerEven
)

// ParseStaggerIndex reads the staggerindex attribute.
func ParseStaggerIndex(s string) (StaggerIndex, error) {
	switch s {
	case "", "odd":
		return StaggerOdd, nil
	case "even":
		return StaggerEven, nil
	}
	return 0, fmt.Errorf("tiled: unknown stagger index %q", s)
}

// TilemapType is the projection a map's coordinates go through.
type TilemapType int

const (
	Square TilemapType = iota
	IsoDiamond
	HexColumnOdd
	HexColumnEven
	HexRowOdd
	HexRowEven
	StaggeredIsometric
)

func (t TilemapType) String() string {
	switch t {
	case Square:
		return "square"
	case IsoDiamond:
		return "iso-diamond"
	case HexColumnOdd:
		return "hex-column-odd"
	case HexColumnEven:
		return "hex-column-even"
	case HexRowOdd:
		return "hex-row-odd"
	case HexRowEven:
		return "hex-row-even"
	case StaggeredIsometric:
		return "staggered-isometric"
	}
	return fmt.Sprintf("TilemapType(%d)", int(t))
}

// IsHexColumn reports whether t is a hexagonal map with staggered columns.
func (t TilemapType) IsHexColumn() bool { return t == HexColumnOdd || t == HexColumnEven }

// IsHexRow reports whether t is a hexagonal map with staggered rows.
func (t TilemapType) IsHexRow() bool { return t == HexRowOdd || t == HexRowEven }

// Classify maps orientation and stagger settings onto a TilemapType.
// Staggered maps classify as StaggeredIsometric together with
// ErrUnsupportedOrientation; callers must not continue with that result.
func Classify(o Orientation, axis StaggerAxis, index StaggerIndex) (TilemapType, error) {
	switch o {
	case Orthogonal:
		return Square, nil
	case Isometric:
		return IsoDiamond, nil
	case Hexagonal:
		switch {
		case axis == StaggerX && index == StaggerOdd:
			return HexColumnOdd, nil
		case axis == StaggerX:
			return HexColumnEven, nil
		case index == StaggerOdd:
			return HexRowOdd, nil
		default:
			return HexRowEven, nil
		}
	case Staggered:
		return StaggeredIsometric, ErrUnsupportedOrientation
	}
	return StaggeredIsometric, fmt.Errorf("%w: %v", ErrUnsupportedOrientation, o)
}

// TileCount is a map size in tiles.
type TileCount struct {
	X, Y uint32
}

// TilePos is a bottom-up tile grid position: Y == 0 is the bottom row.
type TilePos struct {
	X, Y uint32
}

// IsoProjection converts a point of isometric object space, measured in
// tile-height units on both axes, into Tiled's screen space (Y down).
func IsoProjection(p geom.Vec2, size TileCount, grid geom.Vec2) geom.Vec2 {
	fx := p.X / grid.Y
	fy := p.Y / grid.Y
	return geom.Vec2{
		X: float64(size.Y)*grid.X/2 + (fx-fy)*grid.X/2,
		Y: (fx + fy) * grid.Y / 2,
	}
}

// Project converts a native Tiled point (Y down, infinite-map offset already
// applied) into rendering space (Y up).
func Project(t TilemapType, p geom.Vec2, size TileCount, grid geom.Vec2) geom.Vec2 {
	h := float64(size.Y)
	switch t {
	case IsoDiamond:
		q := IsoProjection(p, size, grid)
		return geom.Vec2{X: q.X, Y: h*grid.Y/2 - q.Y}
	case HexColumnOdd:
		return geom.Vec2{X: p.X, Y: h*grid.Y + grid.Y/2 - p.Y}
	case HexColumnEven:
		return geom.Vec2{X: p.X, Y: h*grid.Y - p.Y}
	case HexRowOdd:
		return geom.Vec2{X: p.X, Y: h*grid.Y*0.75 + grid.Y/4 - p.Y}
	case HexRowEven:
		return geom.Vec2{X: p.X - grid.X/2, Y: h*grid.Y*0.75 + grid.Y/4 - p.Y}
	default:
		return geom.Vec2{X: p.X, Y: h*grid.Y - p.Y}
	}
}

// nativeTileCenter returns the center of a tile in native space. Isometric
// maps use tile-height units on both axes; hex maps assume a side length of
// half the tile so that staggered rows or columns advance by 3/4 of a tile.
func nativeTileCenter(t TilemapType, pos TilePos, size TileCount, grid geom.Vec2) geom.Vec2 {
	col := float64(pos.X)
	rowIdx := size.Y - 1 - pos.Y
	row := float64(rowIdx)
	switch {
	case t == IsoDiamond:
		return geom.Vec2{X: (col + 0.5) * grid.Y, Y: (row + 0.5) * grid.Y}
	case t.IsHexColumn():
		c := geom.Vec2{X: col*grid.X*0.75 + grid.X/2, Y: row*grid.Y + grid.Y/2}
		if shifted(pos.X, t == HexColumnOdd) {
			c.Y += grid.Y / 2
		}
		return c
	case t.IsHexRow():
		c := geom.Vec2{X: col*grid.X + grid.X/2, Y: row*grid.Y*0.75 + grid.Y/2}
		if shifted(rowIdx, t == HexRowOdd) {
			c.X += grid.X / 2
		}
		return c
	default:
		return geom.Vec2{X: (col + 0.5) * grid.X, Y: (row + 0.5) * grid.Y}
	}
}

func shifted(i uint32, odd bool) bool {
	return (i%2 == 1) == odd
}

// TileCenter returns the rendering-space center of the tile at pos.
func TileCenter(t TilemapType, pos TilePos, size TileCount, grid geom.Vec2) geom.Vec2 {
	return Project(t, nativeTileCenter(t, pos, size, grid), size, grid)
}

// MapPixelSize returns the native pixel extent of a map.
func MapPixelSize(t TilemapType, size TileCount, grid geom.Vec2) geom.Vec2 {
	w, h := float64(size.X), float64(size.Y)
	switch {
	case t == IsoDiamond:
		return geom.Vec2{X: (w + h) * grid.X / 2, Y: (w + h) * grid.Y / 2}
	case t.IsHexColumn():
		return geom.Vec2{X: w*grid.X*0.75 + grid.X/4, Y: h*grid.Y + grid.Y/2}
	case t.IsHexRow():
		return geom.Vec2{X: w*grid.X + grid.X/2, Y: h*grid.Y*0.75 + grid.Y/4}
	default:
		return geom.Vec2{X: w * grid.X, Y: h * grid.Y}
	}
}
