package physanim

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// BoneCache stores bone space transforms by bone name for the animation graph.
type BoneCache struct {
	transforms *orderedmap.OrderedMap[string, mgl32.Mat4]
}

func NewBoneCache() *BoneCache {
	return &BoneCache{transforms: orderedmap.NewOrderedMap[string, mgl32.Mat4]()}
}

func (c *BoneCache) Store(bone string, transform mgl32.Mat4) {
	c.transforms.Set(bone, transform)
}

// Transform returns the cached transform of bone, or identity if none is cached.
func (c *BoneCache) Transform(bone string) (mgl32.Mat4, bool) {
	t, ok := c.transforms.Get(bone)
	if !ok {
		return mgl32.Ident4(), false
	}
	return t, true
}

// Capture stores the transform of every body of mesh relative to its parent body.
func (c *BoneCache) Capture(mesh *Mesh) {
	mesh.ForEachBody(func(b *Body) {
		world := mgl32.Translate3D(b.Location.Elem()).Mul4(b.Rotation.Mat4())
		if parent, ok := mesh.Body(b.Parent); ok {
			parentWorld := mgl32.Translate3D(parent.Location.Elem()).Mul4(parent.Rotation.Mat4())
			world = parentWorld.Inv().Mul4(world)
		}
		c.Store(b.Bone, world)
	})
}

func (c *BoneCache) Delete(bone string) bool {
	return c.transforms.Delete(bone)
}

func (c *BoneCache) Len() int {
	return c.transforms.Len()
}

func (c *BoneCache) Clear() {
	c.transforms = orderedmap.NewOrderedMap[string, mgl32.Mat4]()
}
