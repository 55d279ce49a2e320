package scanner

import (
	"image"
	"sort"
)

// Outline returns the polygon to draw for a decoded code. More than four
// points come from noisy decodes and are reduced to their convex hull.
func Outline(points []image.Point) []image.Point {
	if len(points) < 3 {
		return nil
	}
	if len(points) > 4 {
		return ConvexHull(points)
	}
	outline := make([]image.Point, len(points))
	copy(outline, points)
	return outline
}

// ConvexHull computes the hull with Andrew's monotone chain. Vertices start at
// the lowest-x, then lowest-y point and are ordered counter-clockwise for a
// y-up axis (clockwise on screen). Collinear points are dropped.
func ConvexHull(points []image.Point) []image.Point {
	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	unique := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			unique = append(unique, p)
		}
	}
	pts = unique
	if len(pts) < 3 {
		return pts
	}

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}

// cross is the z component of (a->b) x (a->c).
func cross(a, b, c image.Point) int {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
