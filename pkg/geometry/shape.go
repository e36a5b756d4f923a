package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Shape is pure geometry: something a ray can intersect and that may report bounds.
// BoundingBox returns false for unbounded shapes, which are never pruned.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool)
	BoundingBox() (core.AABB, bool)
}

// SurfaceHit is a hit record together with the material of the surface that was hit
type SurfaceHit struct {
	core.HitRecord
	Material material.Material
}

// Hittable is anything the integrator can query for the nearest shaded hit:
// a single entity, a flat list or a BVH node.
type Hittable interface {
	Hit(ray core.Ray, tMin, tMax float64) (*SurfaceHit, bool)
	BoundingBox() (core.AABB, bool)
}

// Entity pairs one shape with one shared material
type Entity struct {
	Shape    Shape
	Material material.Material
}

// NewEntity creates a new entity
func NewEntity(shape Shape, mat material.Material) *Entity {
	return &Entity{Shape: shape, Material: mat}
}

// Hit tests the underlying shape and attaches the entity's material
func (e *Entity) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceHit, bool) {
	rec, ok := e.Shape.Hit(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	return &SurfaceHit{HitRecord: *rec, Material: e.Material}, true
}

// BoundingBox returns the bounds of the underlying shape
func (e *Entity) BoundingBox() (core.AABB, bool) {
	return e.Shape.BoundingBox()
}

// HittableList is a flat scene queried by linear scan
type HittableList struct {
	Items []Hittable
}

// NewHittableList creates a list over items
func NewHittableList(items ...Hittable) *HittableList {
	return &HittableList{Items: items}
}

// Hit returns the nearest hit over all items
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceHit, bool) {
	var closest *SurfaceHit
	closestSoFar := tMax
	for _, item := range l.Items {
		if hit, ok := item.Hit(ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
		}
	}
	return closest, closest != nil
}

// BoundingBox returns the union of all item bounds. An empty list or any
// unbounded item makes the list unbounded.
func (l *HittableList) BoundingBox() (core.AABB, bool) {
	if len(l.Items) == 0 {
		return core.AABB{}, false
	}
	box, ok := l.Items[0].BoundingBox()
	if !ok {
		return core.AABB{}, false
	}
	for _, item := range l.Items[1:] {
		b, ok := item.BoundingBox()
		if !ok {
			return core.AABB{}, false
		}
		box = box.Union(b)
	}
	return box, true
}
