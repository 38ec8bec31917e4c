package sgemm

import (
	"math"
	"math/rand"
	"testing"
)

func TestReferenceIdentityMultiply(t *testing.T) {
	// A = [[1,2],[3,4]], B = identity, C starts at zero, alpha=1, beta=0.
	a := []float32{1, 2, 3, 4}
	b := []float32{1, 0, 0, 1}
	c := make([]float32, 4)

	Reference(2, 2, 2, 1, a, b, 0, c)

	want := []float32{1, 2, 3, 4}
	for i := range want {
		if c[i] != want[i] {
			t.Errorf("c[%d] = %v, expected %v", i, c[i], want[i])
		}
	}
}

func TestReferenceAlphaBetaScaling(t *testing.T) {
	a := []float32{2}
	b := []float32{3}
	c := []float32{10}

	Reference(1, 1, 1, 2, a, b, 0.5, c)

	// alpha*A*B + beta*C = 2*(2*3) + 0.5*10 = 12 + 5 = 17
	want := float32(17)
	if math.Abs(float64(c[0]-want)) > 1e-6 {
		t.Errorf("c[0] = %v, expected %v", c[0], want)
	}
}

func TestNewTileAndThreadCount(t *testing.T) {
	tile := NewTile(96, 363, 3072, 2, 6)
	if got := tile.ThreadCount(); got != 12 {
		t.Errorf("ThreadCount() = %d, expected 12", got)
	}
	if tile.RowsPerTile != 3 {
		t.Errorf("RowsPerTile = %d, expected 3 (96 / (16*2))", tile.RowsPerTile)
	}
	if tile.ColsPerTile != 8 {
		t.Errorf("ColsPerTile = %d, expected 8 (3072 / (64*6))", tile.ColsPerTile)
	}
}

func TestUniformsLayoutSharedAcrossThreads(t *testing.T) {
	tile := NewTile(32, 8, 128, 1, 2)
	f32ToU32 := func(f float32) uint32 { return math.Float32bits(f) }

	us := tile.Uniforms(0x1000, 0x2000, 0x3000, 8, 128, 128, 1.5, 0.25, f32ToU32)

	n := tile.ThreadCount()
	if len(us) != n {
		t.Fatalf("Uniforms returned %d blocks, expected %d", len(us), n)
	}

	for th := 0; th < n; th++ {
		u := us[th]
		if u[0] != uint32(th*UniformSize*4) {
			t.Errorf("thread %d: uniform[0] (own base) = %d, expected %d", th, u[0], th*UniformSize*4)
		}
		if u[2] != uint32(tile.Q) {
			t.Errorf("thread %d: uniform[2] (Q) = %d, expected %d", th, u[2], tile.Q)
		}
		if got := math.Float32frombits(u[10]); got != 1.5 {
			t.Errorf("thread %d: alpha = %v, expected 1.5", th, got)
		}
		if got := math.Float32frombits(u[11]); got != 0.25 {
			t.Errorf("thread %d: beta = %v, expected 0.25", th, got)
		}
		if u[12] != uint32(th) {
			t.Errorf("thread %d: uniform[12] (thread index) = %d, expected %d", th, u[12], th)
		}
		if u[13] != uint32(n) {
			t.Errorf("thread %d: uniform[13] (thread count) = %d, expected %d", th, u[13], n)
		}
	}
}

func TestRandomMatrixRangeAndShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := RandomMatrix(rng, 4, 5)
	if len(m) != 20 {
		t.Fatalf("RandomMatrix length = %d, expected 20", len(m))
	}
	for i, v := range m {
		if v < 0 || v >= 1 {
			t.Errorf("m[%d] = %v, expected value in [0,1)", i, v)
		}
	}
}
