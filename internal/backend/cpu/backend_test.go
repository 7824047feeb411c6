package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/graphrun/internal/tensor"
)

const eps = 1e-5

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat32(data, shape)
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}
	return r
}

func assertClose(t *testing.T, got []float32, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Length mismatch: expected %d, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > eps {
			t.Errorf("Element %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestAdd(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := fromSlice(t, []float32{4, 5, 6}, tensor.Shape{3})
	assertClose(t, backend.Add(a, b).AsFloat32(), []float32{5, 7, 9})
}

func TestSubMulDiv(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{4, 6, 8}, tensor.Shape{3})
	b := fromSlice(t, []float32{2, 3, 4}, tensor.Shape{3})
	assertClose(t, backend.Sub(a, b).AsFloat32(), []float32{2, 3, 4})
	assertClose(t, backend.Mul(a, b).AsFloat32(), []float32{8, 18, 32})
	assertClose(t, backend.Div(a, b).AsFloat32(), []float32{2, 2, 2})
}

func TestScalarOps(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	assertClose(t, backend.AddScalar(x, 10).AsFloat32(), []float32{11, 12, 13})
	assertClose(t, backend.MulScalar(x, 2).AsFloat32(), []float32{2, 4, 6})
}

func TestAdd_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := fromSlice(t, []float32{1, 2}, tensor.Shape{2})
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on shape mismatch")
		}
	}()
	backend.Add(a, b)
}

func TestMatMul(t *testing.T) {
	backend := New()
	// [2,3] x [3,2] -> [2,2]
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
	result := backend.MatMul(a, b)

	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("Expected shape [2 2], got %v", result.Shape())
	}
	// Row 0: 1*7+2*9+3*11 = 58, 1*8+2*10+3*12 = 64
	// Row 1: 4*7+5*9+6*11 = 139, 4*8+5*10+6*12 = 154
	assertClose(t, result.AsFloat32(), []float32{58, 64, 139, 154})
}

func TestConv2D(t *testing.T) {
	backend := New()

	// Input [1,1,3,3] with values 1..9, kernel [1,1,2,2] = [1,2,3,4]
	input := fromSlice(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})

	result := backend.Conv2D(input, kernel, 1, 0)
	if !result.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Expected shape [1 1 2 2], got %v", result.Shape())
	}
	// [0,0]: 1*1+2*2+4*3+5*4 = 37, [0,1]: 2+6+15+24 = 47
	// [1,0]: 4+10+21+32 = 67,     [1,1]: 5+12+24+36 = 77
	assertClose(t, result.AsFloat32(), []float32{37, 47, 67, 77})
}

func TestConv2D_Padding(t *testing.T) {
	backend := New()

	// 1x1 input, 3x3 kernel of ones, padding 1: only the center taps the input.
	input := fromSlice(t, []float32{5}, tensor.Shape{1, 1, 1, 1})
	kernel := fromSlice(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})

	result := backend.Conv2D(input, kernel, 1, 1)
	if !result.Shape().Equal(tensor.Shape{1, 1, 1, 1}) {
		t.Fatalf("Expected shape [1 1 1 1], got %v", result.Shape())
	}
	assertClose(t, result.AsFloat32(), []float32{5})
}

func TestMaxPool2D(t *testing.T) {
	backend := New()

	input := fromSlice(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	result := backend.MaxPool2D(input, 2, 2, 0)
	if !result.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Expected shape [1 1 2 2], got %v", result.Shape())
	}
	assertClose(t, result.AsFloat32(), []float32{6, 8, 14, 16})
}

func TestReLU(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{-1, 0, 2, -3}, tensor.Shape{4})
	assertClose(t, backend.ReLU(x).AsFloat32(), []float32{0, 0, 2, 0})
}

func TestSigmoid(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{0, 100, -100}, tensor.Shape{3})
	got := backend.Sigmoid(x).AsFloat32()
	assertClose(t, got, []float32{0.5, 1, 0})
}

func TestSiLU(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{0, 1}, tensor.Shape{2})
	got := backend.SiLU(x).AsFloat32()
	// silu(0) = 0, silu(1) = 1 * sigmoid(1) ≈ 0.731059
	assertClose(t, got, []float32{0, 0.731059})
}

func TestSoftmax(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{1, 3})
	got := backend.Softmax(x, 1).AsFloat32()

	var sum float32
	for _, v := range got {
		sum += v
	}
	if math.Abs(float64(sum-1)) > eps {
		t.Errorf("Softmax should sum to 1, got %f", sum)
	}
	if !(got[2] > got[1] && got[1] > got[0]) {
		t.Errorf("Softmax should be monotonic in input, got %v", got)
	}
	assertClose(t, got, []float32{0.0900306, 0.244728, 0.665241})
}

func TestSoftmax_StabilityWithLargeValues(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1000, 1001, 1002}, tensor.Shape{1, 3})
	got := backend.Softmax(x, 1).AsFloat32()
	for i, v := range got {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("Element %d is not finite: %f", i, v)
		}
	}
	assertClose(t, got, []float32{0.0900306, 0.244728, 0.665241})
}
