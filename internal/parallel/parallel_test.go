package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}
	sum := 0
	For(10, func(i int) { sum += i }, cfg)
	if sum != 45 {
		t.Errorf("Expected 45, got %d", sum)
	}
}

func TestFor_Parallel(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	var count atomic.Int64
	For(1000, func(i int) { count.Add(1) }, cfg)
	if count.Load() != 1000 {
		t.Errorf("Expected 1000 invocations, got %d", count.Load())
	}
}

func TestForBatch(t *testing.T) {
	cfg := Config{Enabled: false}
	visited := make(map[[2]int]bool)
	ForBatch(3, 4, func(b, c int) { visited[[2]int{b, c}] = true }, cfg)
	if len(visited) != 12 {
		t.Errorf("Expected 12 unique (b,c) pairs, got %d", len(visited))
	}
	if !visited[[2]int{2, 3}] {
		t.Error("Missing pair (2,3)")
	}
}
