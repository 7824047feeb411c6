//go:build windows

package webgpu

import (
	"testing"

	"github.com/born-ml/graphrun/internal/tensor"
)

// newTestBackend skips the test when no GPU adapter or native library is
// available on the host.
func newTestBackend(t *testing.T) tensor.Backend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Skipf("webgpu unavailable: %v", err)
	}
	return b
}

func fromSlice(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	buf, err := tensor.FromFloat32(data, tensor.Shape(shape))
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestAdd(t *testing.T) {
	b := newTestBackend(t)

	a := fromSlice(t, []float32{1, 2, 3, 4}, 2, 2)
	c := fromSlice(t, []float32{10, 20, 30, 40}, 2, 2)

	got := b.Add(a, c).AsFloat32()
	want := []float32{11, 22, 33, 44}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Add[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReLU(t *testing.T) {
	b := newTestBackend(t)

	x := fromSlice(t, []float32{-2, -0.5, 0, 3}, 1, 4)
	got := b.ReLU(x).AsFloat32()
	want := []float32{0, 0, 0, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReLU[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMulScalar(t *testing.T) {
	b := newTestBackend(t)

	x := fromSlice(t, []float32{1, 2, 3}, 1, 3)
	got := b.MulScalar(x, 2.5).AsFloat32()
	want := []float32{2.5, 5, 7.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MulScalar[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
