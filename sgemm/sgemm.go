// Package sgemm provides the scalar reference matrix-multiply kernel and
// the host-side uniform layout used to drive a tiled QPU SGEMM workload.
package sgemm

import "math/rand"

// Reference computes C = alpha*A*B + beta*C in place, row-major, matching
// the original host harness's scalar reference kernel exactly. A is M×K, B
// is K×N, C is M×N.
func Reference(m, n, k int, alpha float32, a, b []float32, beta float32, c []float32) {
	for mi := 0; mi < m; mi++ {
		for ni := 0; ni < n; ni++ {
			var ab float32
			for ki := 0; ki < k; ki++ {
				ab += a[mi*k+ki] * b[ki*n+ni]
			}
			c[mi*n+ni] = alpha*ab + beta*c[mi*n+ni]
		}
	}
}

// UniformSize is the number of 32-bit words in one thread's uniform block.
const UniformSize = 14

// Tile describes one thread's share of the P×Q×R SGEMM tiling: a ph×Q
// row-panel of A times a Q×rw column-panel of B, writing into a ph×rw
// block of C.
type Tile struct {
	RowTiles, ColTiles int // P_DIV, R_DIV
	P, Q, R            int
	RowsPerTile        int // h
	ColsPerTile        int // w
}

// NewTile computes the per-thread tile geometry for a P×Q×R SGEMM split
// across rowTiles×colTiles threads, 16 rows and 64 columns per thread step
// respectively — the original harness's 96×363×3072, 2×6-thread layout
// generalized to arbitrary divisor counts.
func NewTile(p, q, r, rowTiles, colTiles int) Tile {
	return Tile{
		RowTiles:    rowTiles,
		ColTiles:    colTiles,
		P:           p,
		Q:           q,
		R:           r,
		RowsPerTile: (p + 16*rowTiles - 1) / (16 * rowTiles),
		ColsPerTile: (r + 64*colTiles - 1) / (64 * colTiles),
	}
}

// ThreadCount returns the total number of QPU threads this tiling uses.
func (t Tile) ThreadCount() int { return t.RowTiles * t.ColTiles }

// Uniforms builds the per-thread uniform word blocks for every thread in
// the tiling, given the base addresses and strides (in elements) of the A,
// B and C matrices in QPU memory, and the SGEMM scale factors.
func (t Tile) Uniforms(aAddr, bAddr, cAddr uint32, aStride, bStride, cStride int, alpha, beta float32, f32ToU32 func(float32) uint32) [][UniformSize]uint32 {
	n := t.ThreadCount()
	out := make([][UniformSize]uint32, n)

	th := 0
	for i := 0; i < t.RowTiles; i++ {
		for j := 0; j < t.ColTiles; j++ {
			pIdx := uint32(t.RowsPerTile)
			if i == t.RowTiles-1 {
				pIdx = uint32((t.P - i*t.RowsPerTile*16) / 16)
			}
			rIdx := uint32(t.ColsPerTile)
			if j == t.ColTiles-1 {
				rIdx = uint32((t.R - j*t.ColsPerTile*64) / 64)
			}

			out[th][0] = uint32(th * UniformSize * 4)
			out[th][1] = pIdx
			out[th][2] = uint32(t.Q)
			out[th][3] = rIdx
			out[th][4] = aAddr + uint32(aStride*(i*16*t.RowsPerTile))*4
			out[th][5] = bAddr + uint32(bStride*(j*64*t.ColsPerTile))*4
			out[th][6] = cAddr + uint32(cStride*(i*16*t.RowsPerTile)+j*64*t.ColsPerTile)*4
			th++
		}
	}

	for th := 0; th < n; th++ {
		out[th][7] = uint32(aStride * 4)
		out[th][8] = uint32(bStride * 4)
		out[th][9] = uint32(cStride * 4)
		out[th][10] = f32ToU32(alpha)
		out[th][11] = f32ToU32(beta)
		out[th][12] = uint32(th)
		out[th][13] = uint32(n)
	}

	return out
}

// RandomMatrix fills an m×n row-major matrix with independent uniform
// [0,1) samples, matching the original harness's input-data generation.
func RandomMatrix(rng *rand.Rand, rows, cols int) []float32 {
	out := make([]float32, rows*cols)
	for i := range out {
		out[i] = rng.Float32()
	}
	return out
}
