package tensor

import "testing"

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{3}, 3},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4, 5}, 120},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape %v: expected %d elements, got %d", tt.shape, tt.want, got)
		}
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("Valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("Expected error for zero dimension")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("Expected error for negative dimension")
	}
}

func TestShape_ComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("Strides: expected %v, got %v", want, strides)
			break
		}
	}
}

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if r.NumElements() != 6 {
		t.Errorf("Expected 6 elements, got %d", r.NumElements())
	}
	if r.ByteSize() != 24 {
		t.Errorf("Expected 24 bytes, got %d", r.ByteSize())
	}

	// Zero-initialized
	for i, v := range r.AsFloat32() {
		if v != 0 {
			t.Errorf("Element %d: expected 0, got %f", i, v)
		}
	}

	if _, err := NewRaw(Shape{2, -1}, Float32, CPU); err == nil {
		t.Error("Expected error for invalid shape")
	}
}

func TestFromFloat32(t *testing.T) {
	r, err := FromFloat32([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}
	data := r.AsFloat32()
	if data[0] != 1 || data[5] != 6 {
		t.Errorf("Unexpected data: %v", data)
	}

	if _, err := FromFloat32([]float32{1, 2}, Shape{2, 3}); err == nil {
		t.Error("Expected error for length mismatch")
	}
}

func TestRawTensor_CopyFrom(t *testing.T) {
	src, _ := FromFloat32([]float32{1, 2, 3}, Shape{1, 3, 1})
	dst, _ := NewRaw(Shape{1, 3, 1}, Float32, CPU)

	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	got := dst.AsFloat32()
	for i, want := range []float32{1, 2, 3} {
		if got[i] != want {
			t.Errorf("Element %d: expected %f, got %f", i, want, got[i])
		}
	}

	// Mutating the destination must not affect the source.
	dst.AsFloat32()[0] = 99
	if src.AsFloat32()[0] != 1 {
		t.Error("CopyFrom aliased buffers instead of copying")
	}

	other, _ := NewRaw(Shape{3, 1, 1}, Float32, CPU)
	if err := other.CopyFrom(src); err == nil {
		t.Error("Expected shape mismatch error")
	}
}

func TestRawTensor_Clone(t *testing.T) {
	src, _ := FromFloat32([]float32{1, 2, 3}, Shape{3})
	dup := src.Clone()
	dup.AsFloat32()[0] = 42
	if src.AsFloat32()[0] != 1 {
		t.Error("Clone shares buffer with original")
	}
}

func TestRawTensor_Reshape(t *testing.T) {
	r, _ := FromFloat32([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	v, err := r.Reshape(Shape{1, 6})
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if !v.Shape().Equal(Shape{1, 6}) {
		t.Errorf("Expected shape [1 6], got %v", v.Shape())
	}
	// Reshape is a view: data shared.
	v.AsFloat32()[0] = 10
	if r.AsFloat32()[0] != 10 {
		t.Error("Reshape should share the underlying buffer")
	}

	if _, err := r.Reshape(Shape{4, 2}); err == nil {
		t.Error("Expected error for element count mismatch")
	}
}
