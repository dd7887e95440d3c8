// Package testutil provides shared assertion helpers for the kernel and its
// sub-package tests.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if math.IsNaN(diff) || diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64Near compares two float64 values with absolute tolerance.
// Use it where the expected value is zero.
func AssertFloat64Near(t *testing.T, name string, want, got, absTol float64) {
	t.Helper()
	if want == got {
		return
	}
	if diff := math.Abs(want - got); math.IsNaN(diff) || diff > absTol {
		t.Errorf("%s: got %v, want %v (diff=%v)", name, got, want, diff)
	}
}

// AssertVecEqual compares two vectors component-wise with absolute tolerance.
func AssertVecEqual(t *testing.T, name string, want, got r3.Vec, absTol float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(want, got)); math.IsNaN(d) || d > absTol {
		t.Errorf("%s: got %v, want %v (|diff|=%v)", name, got, want, d)
	}
}
