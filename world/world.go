package world

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var currentWorldID = atomic.NewUint64(0)

// World is a static collision world made of axis aligned boxes. It implements
// the collision queries of the movement simulation and the ragdoll ground
// traces.
type World struct {
	id     uint64
	nextID uint64

	boxes *orderedmap.OrderedMap[uint64, cube.BBox]
	water []cube.BBox

	log *logrus.Logger

	deadlock.RWMutex
}

func New(log *logrus.Logger) *World {
	return &World{
		id:    currentWorldID.Inc(),
		boxes: orderedmap.NewOrderedMap[uint64, cube.BBox](),
		log:   log,
	}
}

// ID returns the unique id of the world.
func (w *World) ID() uint64 {
	return w.id
}

// AddBox adds a blocking box and returns its id.
func (w *World) AddBox(bb cube.BBox) uint64 {
	w.Lock()
	defer w.Unlock()

	w.nextID++
	w.boxes.Set(w.nextID, bb)
	if w.log != nil {
		w.log.Debugf("world %d: added box %d %v", w.id, w.nextID, bb)
	}
	return w.nextID
}

// RemoveBox removes the box with the id passed.
func (w *World) RemoveBox(id uint64) bool {
	w.Lock()
	defer w.Unlock()
	return w.boxes.Delete(id)
}

// AddWater adds a water volume.
func (w *World) AddWater(bb cube.BBox) {
	w.Lock()
	w.water = append(w.water, bb)
	w.Unlock()
}

// Boxes returns the blocking boxes in insertion order.
func (w *World) Boxes() []cube.BBox {
	w.RLock()
	defer w.RUnlock()

	list := make([]cube.BBox, 0, w.boxes.Len())
	for el := w.boxes.Front(); el != nil; el = el.Next() {
		list = append(list, el.Value)
	}
	return list
}

// InWater returns true if point lies inside a water volume.
func (w *World) InWater(point mgl64.Vec3) bool {
	w.RLock()
	defer w.RUnlock()
	for _, bb := range w.water {
		if bb.Vec3Within(point) {
			return true
		}
	}
	return false
}

// NewFlat returns a world with a single floor box whose top is at height y.
func NewFlat(log *logrus.Logger, y, extent float64) *World {
	w := New(log)
	w.AddBox(cube.Box(-extent, y-100, -extent, extent, y, extent))
	return w
}
