package geometry

import (
	"errors"
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrEmptyBVH is returned when a BVH is built over no items
var ErrEmptyBVH = errors.New("geometry: cannot build BVH from an empty list")

// BVHNode is an internal node of the Bounding Volume Hierarchy. It owns exactly
// two children, each either an entity or another node. Bounds is only valid when
// Bounded is true; a node with an unbounded child is never pruned.
type BVHNode struct {
	Left    Hittable
	Right   Hittable
	Bounds  core.AABB
	Bounded bool
}

// BuildBVH builds a tree over items using a random median split. At every level an
// axis is picked uniformly from axes (all three when axes is empty) and the items are
// sorted by either their min or their max bound on that axis. One item is returned
// as is; the input slice is not modified.
func BuildBVH(items []Hittable, axes []core.Axis, sampler core.Sampler) (Hittable, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBVH
	}
	if len(axes) == 0 {
		axes = core.AllAxes
	}

	// Copy so callers can keep using their slice while we sort in place
	itemsCopy := make([]Hittable, len(items))
	copy(itemsCopy, items)

	return buildBVH(itemsCopy, axes, sampler), nil
}

// MustBuildBVH is like BuildBVH but panics on an empty list
func MustBuildBVH(items []Hittable, axes []core.Axis, sampler core.Sampler) Hittable {
	root, err := BuildBVH(items, axes, sampler)
	if err != nil {
		panic(err)
	}
	return root
}

func buildBVH(items []Hittable, axes []core.Axis, sampler core.Sampler) Hittable {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return newBVHNode(items[0], items[1])
	}

	axis := axes[core.PickIndex(sampler, len(axes))]
	useMax := sampler.Get1D() < 0.5
	sortByAxis(items, axis, useMax)

	mid := len(items) / 2
	return newBVHNode(
		buildBVH(items[:mid], axes, sampler),
		buildBVH(items[mid:], axes, sampler),
	)
}

func newBVHNode(left, right Hittable) *BVHNode {
	node := &BVHNode{Left: left, Right: right}
	leftBox, leftOK := left.BoundingBox()
	rightBox, rightOK := right.BoundingBox()
	if leftOK && rightOK {
		node.Bounds = leftBox.Union(rightBox)
		node.Bounded = true
	}
	return node
}

// sortByAxis sorts items by the min or max endpoint of their bounds along axis.
// Unbounded items sort as if their endpoint were zero.
func sortByAxis(items []Hittable, axis core.Axis, useMax bool) {
	key := func(h Hittable) float64 {
		box, ok := h.BoundingBox()
		if !ok {
			return 0
		}
		if useMax {
			return box.Max.Component(axis)
		}
		return box.Min.Component(axis)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}

// Hit returns the nearest hit in either subtree. The left child is tested first and
// a left hit shrinks the interval for the right child, so a right hit always wins.
func (n *BVHNode) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceHit, bool) {
	if n.Bounded && !n.Bounds.Hit(ray, tMin, tMax) {
		return nil, false
	}

	closest, hitLeft := n.Left.Hit(ray, tMin, tMax)
	if hitLeft {
		tMax = closest.T
	}
	if hit, ok := n.Right.Hit(ray, tMin, tMax); ok {
		return hit, true
	}
	return closest, hitLeft
}

// BoundingBox returns the cached union of the children's bounds
func (n *BVHNode) BoundingBox() (core.AABB, bool) {
	return n.Bounds, n.Bounded
}

// BVHStats describes the shape of a built tree
type BVHStats struct {
	TotalNodes int     // internal nodes
	LeafCount  int     // entities reached through the tree
	MaxDepth   int     // deepest leaf, root at depth 0
	AvgDepth   float64 // mean leaf depth
	Bounds     core.AABB
	Bounded    bool // false when any leaf is unbounded
}

// CollectBVHStats walks a tree returned by BuildBVH
func CollectBVHStats(root Hittable) BVHStats {
	stats := BVHStats{}
	if root == nil {
		return stats
	}
	stats.Bounds, stats.Bounded = root.BoundingBox()
	collectStats(root, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.LeafCount > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafCount)
	}
	return stats
}

func collectStats(h Hittable, depth int, stats *BVHStats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	node, ok := h.(*BVHNode)
	if !ok {
		stats.LeafCount++
		stats.AvgDepth += float64(depth)
		return
	}
	stats.TotalNodes++
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
