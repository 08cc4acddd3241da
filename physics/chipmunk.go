package physics

import (
	"sync"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/geom"
)

// CollisionTypeStatic is set on every shape Chipmunk creates.
const CollisionTypeStatic cp.CollisionType = 1

// ChipmunkOptions tunes the static shapes created by Chipmunk.
type ChipmunkOptions struct {
	Strategy Strategy
	// Friction is applied to every shape.
	Friction float64
	// Radius is the segment thickness for line based strategies and the
	// rounding radius for triangles.
	Radius float64
	Logger *zap.Logger
}

// Chipmunk adds static colliders to a cp.Space.
type Chipmunk struct {
	mu     sync.Mutex
	space  *cp.Space
	opts   ChipmunkOptions
	log    *zap.Logger
	nextID uint64
	shapes map[*cp.Shape]ColliderSource
}

// NewChipmunk wraps space. A nil space gets a fresh one.
func NewChipmunk(space *cp.Space, opts ChipmunkOptions) *Chipmunk {
	if space == nil {
		space = cp.NewSpace()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Chipmunk{
		space:  space,
		opts:   opts,
		log:    log,
		shapes: make(map[*cp.Shape]ColliderSource),
	}
}

// Space returns the underlying Chipmunk space.
func (c *Chipmunk) Space() *cp.Space {
	if c == nil {
		return nil
	}
	return c.space
}

// SourceOf returns the source a shape was created for.
func (c *Chipmunk) SourceOf(shape *cp.Shape) (ColliderSource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, ok := c.shapes[shape]
	return src, ok
}

// Len returns the number of live shapes.
func (c *Chipmunk) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shapes)
}

func (c *Chipmunk) SpawnColliders(src ColliderSource, mp geom.MultiPolygon) ([]ColliderHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var handles []ColliderHandle
	switch c.opts.Strategy {
	case StrategyTriangles:
		for _, tri := range trianglesFor(mp) {
			abs := tri.Absolute()
			verts := []cp.Vector{abs[0].Vector(), abs[1].Vector(), abs[2].Vector()}
			shape := cp.NewPolyShapeRaw(c.space.StaticBody, 3, verts, c.opts.Radius)
			handles = append(handles, c.add(shape, src))
		}
	default:
		thickness := c.opts.Radius
		for _, seg := range segmentsFor(c.opts.Strategy, mp) {
			shape := cp.NewSegment(c.space.StaticBody, seg[0].Vector(), seg[1].Vector(), thickness)
			handles = append(handles, c.add(shape, src))
		}
	}
	if len(handles) == 0 && len(mp) > 0 {
		c.log.Debug("collider geometry is degenerate",
			zap.Stringer("source", src.Kind),
			zap.Int("layer", src.LayerID),
			zap.Int("object", src.ObjectID),
		)
	}
	return handles, nil
}

func (c *Chipmunk) add(shape *cp.Shape, src ColliderSource) ColliderHandle {
	shape.SetFriction(c.opts.Friction)
	shape.SetCollisionType(CollisionTypeStatic)
	shape.UserData = src.Owner
	c.space.AddShape(shape)
	c.shapes[shape] = src
	c.nextID++
	return ColliderHandle{ID: c.nextID, Shape: shape, Source: src}
}

func (c *Chipmunk) RemoveColliders(handles []ColliderHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range handles {
		shape, ok := h.Shape.(*cp.Shape)
		if !ok {
			continue
		}
		if _, live := c.shapes[shape]; !live {
			continue
		}
		c.space.RemoveShape(shape)
		delete(c.shapes, shape)
	}
}

var _ Backend = (*Chipmunk)(nil)
