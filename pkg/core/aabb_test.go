package core

import (
	"math"
	"testing"
)

func TestAABB_NewOrdersCorners(t *testing.T) {
	box := NewAABB(NewVec3(1, -1, 5), NewVec3(-1, 1, 2))
	if box.Min != NewVec3(-1, -1, 2) || box.Max != NewVec3(1, 1, 5) {
		t.Errorf("Expected min (-1,-1,2) max (1,1,5), got %v %v", box.Min, box.Max)
	}
	if !box.IsValid() {
		t.Error("Expected valid box")
	}
}

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name       string
		ray        Ray
		tMin, tMax float64
		expected   bool
	}{
		{"straight through", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)), 0, math.Inf(1), true},
		{"negative direction on every axis", NewRay(NewVec3(5, 5, 5), NewVec3(-1, -1, -1)), 0, math.Inf(1), true},
		{"misses to the side", NewRay(NewVec3(3, 0, 5), NewVec3(0, 0, -1)), 0, math.Inf(1), false},
		{"box behind ray", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, 1)), 0, math.Inf(1), false},
		{"interval ends before box", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)), 0, 3.5, false},
		{"interval starts after box", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)), 6.5, 10, false},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(1, 0.3, 0.2)), 0.001, math.Inf(1), true},
		{"grazing an edge is empty", NewRay(NewVec3(1, 5, 0), NewVec3(1, -1, 0)), 0, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, tt.tMin, tt.tMax); got != tt.expected {
				t.Errorf("Expected hit=%t, got %t", tt.expected, got)
			}
		})
	}
}

func TestAABB_UnionContainsAndIsMinimal(t *testing.T) {
	pairs := []struct {
		a, b AABB
	}{
		{NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1)), NewAABB(NewVec3(2, -1, 0.5), NewVec3(3, 0.5, 4))},
		{NewAABB(NewVec3(-5, -5, -5), NewVec3(5, 5, 5)), NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))},
		{NewAABB(NewVec3(1, 2, 3), NewVec3(1, 2, 3)), NewAABB(NewVec3(-3, -2, -1), NewVec3(-3, -2, -1))},
	}

	for _, p := range pairs {
		u := p.a.Union(p.b)
		if !u.Contains(p.a) || !u.Contains(p.b) {
			t.Errorf("Union %v does not contain %v and %v", u, p.a, p.b)
		}
		for axis := AxisX; axis <= AxisZ; axis++ {
			wantMin := math.Min(p.a.Min.Component(axis), p.b.Min.Component(axis))
			wantMax := math.Max(p.a.Max.Component(axis), p.b.Max.Component(axis))
			if u.Min.Component(axis) != wantMin || u.Max.Component(axis) != wantMax {
				t.Errorf("Axis %v: union not minimal, got [%f,%f] want [%f,%f]",
					axis, u.Min.Component(axis), u.Max.Component(axis), wantMin, wantMax)
			}
		}
	}
}

func TestParseAxis(t *testing.T) {
	for _, s := range []string{"x", "Y", "z"} {
		if _, ok := ParseAxis(s); !ok {
			t.Errorf("Expected %q to parse", s)
		}
	}
	if _, ok := ParseAxis("w"); ok {
		t.Error("Expected w to be rejected")
	}
}
