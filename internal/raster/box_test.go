package raster_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/achronos0/diffmap/internal/raster"
	"github.com/google/go-cmp/cmp"
)

func TestAbsBox(t *testing.T) {
	type in struct {
		first  int
		second int
		third  int
		fourth int
	}

	type want struct {
		first raster.Box
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				1, 2, 5, 6,
			},
			want{
				raster.Box{Left: 1, Top: 2, Right: 5, Bottom: 6},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				5, 6, 1, 2,
			},
			want{
				raster.Box{Left: 1, Top: 2, Right: 5, Bottom: 6},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				3, 3, 3, 3,
			},
			want{
				raster.Box{Left: 3, Top: 3, Right: 3, Bottom: 3},
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := raster.AbsBox(in.first, in.second, in.third, in.fourth)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoxFit(t *testing.T) {
	type in struct {
		first  int
		second int
		third  int
	}

	type want struct {
		first raster.Box
	}

	tests := []struct {
		name     string
		receiver raster.Box
		in       in
		want     want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			raster.Box{Left: 5, Top: 5, Right: 7, Bottom: 7},
			in{
				2, 20, 20,
			},
			want{
				raster.Box{Left: 3, Top: 3, Right: 9, Bottom: 9},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			raster.Box{Left: 0, Top: 0, Right: 1, Bottom: 1},
			in{
				3, 10, 10,
			},
			want{
				raster.Box{Left: 0, Top: 0, Right: 4, Bottom: 4},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			raster.Box{Left: 8, Top: 8, Right: 9, Bottom: 9},
			in{
				5, 10, 10,
			},
			want{
				raster.Box{Left: 3, Top: 3, Right: 9, Bottom: 9},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			raster.Box{Left: 0, Top: 0, Right: 9, Bottom: 9},
			in{
				0, 10, 10,
			},
			want{
				raster.Box{Left: 0, Top: 0, Right: 9, Bottom: 9},
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		receiver := tt.receiver
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := receiver.Fit(in.first, in.second, in.third)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	type in struct {
		first  raster.Box
		second raster.Box
	}

	type want struct {
		first bool
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 0, Top: 0, Right: 5, Bottom: 5},
				raster.Box{Left: 3, Top: 3, Right: 8, Bottom: 8},
			},
			want{
				true,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 0, Top: 0, Right: 5, Bottom: 5},
				raster.Box{Left: 5, Top: 5, Right: 8, Bottom: 8},
			},
			want{
				true,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 0, Top: 0, Right: 5, Bottom: 5},
				raster.Box{Left: 6, Top: 0, Right: 8, Bottom: 5},
			},
			want{
				false,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 0, Top: 0, Right: 5, Bottom: 5},
				raster.Box{Left: 0, Top: 6, Right: 5, Bottom: 8},
			},
			want{
				false,
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := raster.Intersect(in.first, in.second)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}

			reversed := raster.Intersect(in.second, in.first)
			if diff := cmp.Diff(got, reversed); diff != "" {
				t.Errorf("intersection is not symmetric (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	type in struct {
		first  raster.Box
		second raster.Box
	}

	type want struct {
		first raster.Box
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 0, Top: 0, Right: 2, Bottom: 2},
				raster.Box{Left: 5, Top: 5, Right: 8, Bottom: 8},
			},
			want{
				raster.Box{Left: 0, Top: 0, Right: 8, Bottom: 8},
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				raster.Box{Left: 2, Top: 2, Right: 8, Bottom: 8},
				raster.Box{Left: 3, Top: 3, Right: 4, Bottom: 4},
			},
			want{
				raster.Box{Left: 2, Top: 2, Right: 8, Bottom: 8},
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := raster.Union(in.first, in.second)
			if diff := cmp.Diff(want.first, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoxGeometry(t *testing.T) {
	b := raster.Box{Left: 2, Top: 3, Right: 5, Bottom: 9}

	if got := b.Width(); got != 4 {
		t.Errorf("Expected Width to be 4, got %d", got)
	}
	if got := b.Height(); got != 7 {
		t.Errorf("Expected Height to be 7, got %d", got)
	}
	if got := b.Area(); got != 28 {
		t.Errorf("Expected Area to be 28, got %d", got)
	}
	if !b.Contains(2, 3) || !b.Contains(5, 9) {
		t.Error("Expected corners to be contained")
	}
	if b.Contains(6, 3) || b.Contains(2, 10) {
		t.Error("Expected points outside the box to not be contained")
	}
}
