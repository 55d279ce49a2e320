package scanner

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutline_SixPointsReducedToHull(t *testing.T) {
	points := []image.Point{{0, 0}, {5, 0}, {10, 0}, {10, 10}, {5, 5}, {0, 10}}

	got := Outline(points)
	want := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Outline mismatch (-want +got):\n%s", diff)
	}
}

func TestOutline_FourPointsUnchanged(t *testing.T) {
	// Deliberately not in hull order: four points are used as decoded.
	points := []image.Point{{10, 10}, {0, 0}, {10, 0}, {0, 10}}

	got := Outline(points)
	if diff := cmp.Diff(points, got); diff != "" {
		t.Errorf("Outline mismatch (-want +got):\n%s", diff)
	}

	got[0] = image.Pt(99, 99)
	if points[0] == got[0] {
		t.Error("Outline must not alias the input slice")
	}
}

func TestOutline_TooFewPoints(t *testing.T) {
	for _, pts := range [][]image.Point{nil, {{1, 1}}, {{1, 1}, {2, 2}}} {
		if got := Outline(pts); got != nil {
			t.Errorf("Outline(%v) = %v, expected nil", pts, got)
		}
	}
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name   string
		points []image.Point
		want   []image.Point
	}{
		{
			name:   "pentagon keeps all vertices",
			points: []image.Point{{5, 0}, {10, 4}, {8, 10}, {2, 10}, {0, 4}},
			want:   []image.Point{{0, 4}, {5, 0}, {10, 4}, {8, 10}, {2, 10}},
		},
		{
			name:   "duplicates and interior points dropped",
			points: []image.Point{{0, 0}, {0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}, {1, 3}},
			want:   []image.Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}},
		},
		{
			name:   "collinear",
			points: []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}},
			want:   []image.Point{{0, 0}, {4, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ConvexHull(tt.points)); diff != "" {
				t.Errorf("ConvexHull mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
