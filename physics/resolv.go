package physics

import (
	"math"
	"sync"

	"github.com/solarlune/resolv"
	"go.uber.org/zap"

	"github.com/milk9111/tiledmap/geom"
)

// TagSolid is added to every object Resolv creates.
const TagSolid = "solid"

// ResolvOptions configures Resolv.
type ResolvOptions struct {
	Strategy Strategy
	// Tags are added to every object next to TagSolid.
	Tags   []string
	Logger *zap.Logger
}

// Resolv adds colliders to a resolv.Space. Each triangle or segment becomes
// one resolv.Object whose Data is the source's Owner.
type Resolv struct {
	mu      sync.Mutex
	space   *resolv.Space
	opts    ResolvOptions
	log     *zap.Logger
	nextID  uint64
	objects map[*resolv.Object]ColliderSource
}

// NewResolv wraps space. A nil space gets a 4096x4096 space with 16 pixel cells.
func NewResolv(space *resolv.Space, opts ResolvOptions) *Resolv {
	if space == nil {
		space = resolv.NewSpace(4096, 4096, 16, 16)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolv{
		space:   space,
		opts:    opts,
		log:     log,
		objects: make(map[*resolv.Object]ColliderSource),
	}
}

func (r *Resolv) Space() *resolv.Space {
	if r == nil {
		return nil
	}
	return r.space
}

func (r *Resolv) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

func (r *Resolv) SpawnColliders(src ColliderSource, mp geom.MultiPolygon) ([]ColliderHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var handles []ColliderHandle
	switch r.opts.Strategy {
	case StrategyTriangles:
		for _, tri := range trianglesFor(mp) {
			abs := tri.Absolute()
			bounds := geom.BoundingRect(abs[0], abs[1], abs[2])
			obj := r.object(bounds, src)
			pts := make([]float64, 0, 6)
			for _, p := range abs {
				pts = append(pts, p.X-bounds.Min.X, p.Y-bounds.Min.Y)
			}
			obj.SetShape(resolv.NewConvexPolygon(0, 0, pts...))
			handles = append(handles, r.add(obj, src))
		}
	default:
		for _, seg := range segmentsFor(r.opts.Strategy, mp) {
			bounds := geom.BoundingRect(seg[0], seg[1])
			obj := r.object(bounds, src)
			a := seg[0].Sub(bounds.Min)
			b := seg[1].Sub(bounds.Min)
			obj.SetShape(resolv.NewLine(a.X, a.Y, b.X, b.Y))
			handles = append(handles, r.add(obj, src))
		}
	}
	if len(handles) == 0 && len(mp) > 0 {
		r.log.Debug("collider geometry is degenerate",
			zap.Stringer("source", src.Kind),
			zap.Int("layer", src.LayerID),
			zap.Int("object", src.ObjectID),
		)
	}
	return handles, nil
}

// object creates a resolv object covering bounds. Flat segments still get a
// one pixel cell footprint.
func (r *Resolv) object(bounds geom.Rect, src ColliderSource) *resolv.Object {
	w := math.Max(bounds.Width(), 1)
	h := math.Max(bounds.Height(), 1)
	tags := append([]string{TagSolid}, r.opts.Tags...)
	if src.Name != "" {
		tags = append(tags, src.Name)
	}
	return resolv.NewObject(bounds.Min.X, bounds.Min.Y, w, h, tags...)
}

func (r *Resolv) add(obj *resolv.Object, src ColliderSource) ColliderHandle {
	obj.Data = src.Owner
	r.space.Add(obj)
	r.objects[obj] = src
	r.nextID++
	return ColliderHandle{ID: r.nextID, Shape: obj, Source: src}
}

func (r *Resolv) RemoveColliders(handles []ColliderHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range handles {
		obj, ok := h.Shape.(*resolv.Object)
		if !ok {
			continue
		}
		if _, live := r.objects[obj]; !live {
			continue
		}
		r.space.Remove(obj)
		delete(r.objects, obj)
	}
}

var _ Backend = (*Resolv)(nil)
