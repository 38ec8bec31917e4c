package vm

import (
	"math"
	"math/bits"
	"testing"
)

func TestMuxOperand(t *testing.T) {
	reg := NewRegisterFile(NumLanes, 6)
	for i := 0; i < 6; i++ {
		reg.Set(0, i, uint32(100+i))
	}
	raVal, rbVal := uint32(0xAAAA), uint32(0xBBBB)

	tests := []struct {
		src      uint8
		expected uint32
	}{
		{AluSrcR0, 100},
		{AluSrcR1, 101},
		{AluSrcR2, 102},
		{AluSrcR3, 103},
		{AluSrcR4, 104},
		{AluSrcR5, 105},
		{AluSrcRA, raVal},
		{AluSrcRB, rbVal},
	}
	for _, tt := range tests {
		got, err := MuxOperand(reg, tt.src, 0, raVal, rbVal)
		if err != nil {
			t.Fatalf("MuxOperand(src=%d): unexpected error: %v", tt.src, err)
		}
		if got != tt.expected {
			t.Errorf("MuxOperand(src=%d) = %#x, expected %#x", tt.src, got, tt.expected)
		}
	}

	if _, err := MuxOperand(reg, 8, 0, raVal, rbVal); err == nil {
		t.Error("MuxOperand(src=8) expected error for out-of-range source")
	}
}

func TestPerformAddALU(t *testing.T) {
	f := func(v float32) uint32 { return F32ToU32(v) }
	i32 := func(v int32) uint32 { return uint32(v) }

	tests := []struct {
		name     string
		op       uint8
		v1, v2   uint32
		expected uint32
	}{
		{"NOP", AddOpNOP, 5, 7, 0},
		{"FADD", AddOpFADD, f(1.5), f(2.5), f(4.0)},
		{"FSUB", AddOpFSUB, f(5.0), f(2.0), f(3.0)},
		{"FMIN", AddOpFMIN, f(3.0), f(5.0), f(3.0)},
		{"FMAX", AddOpFMAX, f(3.0), f(5.0), f(5.0)},
		{"FMINABS", AddOpFMINABS, f(-3.0), f(2.0), f(2.0)},
		{"FMAXABS", AddOpFMAXABS, f(-3.0), f(2.0), f(3.0)},
		{"FTOI", AddOpFTOI, f(3.9), 0, i32(3)},
		{"ITOF", AddOpITOF, i32(-4), 0, f(-4.0)},
		{"ADD", AddOpADD, 10, 20, 30},
		{"SUB", AddOpSUB, 20, 5, 15},
		{"SHR", AddOpSHR, 0x80000000, 4, 0x08000000},
		{"AND", AddOpAND, 0xF0F0, 0x0F0F, 0},
		{"OR", AddOpOR, 0xF0F0, 0x0F0F, 0xFFFF},
		{"XOR", AddOpXOR, 0xFFFF, 0x00FF, 0xFF00},
		{"NOT", AddOpNOT, 0, 0, 0xFFFFFFFF},
		{"MIN", AddOpMIN, i32(-5), i32(3), i32(-5)},
		{"MAX", AddOpMAX, i32(-5), i32(3), i32(3)},
		{"CLZ", AddOpCLZ, 0x00000001, 0, 31},
	}
	for _, tt := range tests {
		got, err := PerformAddALU(tt.op, tt.v1, tt.v2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.expected {
			t.Errorf("%s: PerformAddALU(%#x, %#x) = %#x, expected %#x", tt.name, tt.v1, tt.v2, got, tt.expected)
		}
	}
}

// TestPerformAddALU_ASR checks the arithmetic shift right against Go's own
// signed shift semantics rather than a hand-computed constant.
func TestPerformAddALU_ASR(t *testing.T) {
	v1 := uint32(0x80000000)
	n := uint32(4)
	want := uint32(int32(v1) >> n)
	got, err := PerformAddALU(AddOpASR, v1, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("ASR(%#x, %d) = %#x, expected %#x", v1, n, got, want)
	}
}

// TestAddOpSHLIsRotateNotShift locks in the documented reference-implementation
// quirk: ADDOP_SHL rotates left instead of performing a logical shift left.
func TestAddOpSHLIsRotateNotShift(t *testing.T) {
	v1, n := uint32(0x80000001), uint32(4)

	got, err := PerformAddALU(AddOpSHL, v1, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rotated := bits.RotateLeft32(v1, int(n))
	shifted := v1 << n
	if got != rotated {
		t.Errorf("AddOpSHL(%#x, %d) = %#x, expected rotate-left result %#x", v1, n, got, rotated)
	}
	if got == shifted {
		t.Errorf("AddOpSHL(%#x, %d) matched a plain logical shift (%#x); the rotate quirk must be preserved", v1, n, shifted)
	}
}

func TestAddOpROR(t *testing.T) {
	v1, n := uint32(0x00000001), uint32(4)
	want := bits.RotateLeft32(v1, -int(n))
	got, err := PerformAddALU(AddOpROR, v1, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("AddOpROR(%#x, %d) = %#x, expected %#x", v1, n, got, want)
	}
}

func TestPerformAddALUUnimplementedIsFatal(t *testing.T) {
	if _, err := PerformAddALU(AddOpV8ADDS, 1, 2); err == nil {
		t.Error("expected error for unimplemented V8ADDS add op")
	}
	if _, err := PerformAddALU(99, 1, 2); err == nil {
		t.Error("expected error for invalid add op")
	}
}

func TestPerformMulALU(t *testing.T) {
	f := func(v float32) uint32 { return F32ToU32(v) }

	tests := []struct {
		name     string
		v1, v2   uint32
		expected uint32
	}{
		{"FMUL", f(2.0), f(3.0), f(6.0)},
	}
	for _, tt := range tests {
		got, err := PerformMulALU(MulOpFMUL, tt.v1, tt.v2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.expected {
			t.Errorf("%s = %#x, expected %#x", tt.name, got, tt.expected)
		}
	}
}

func TestMulOpMUL24(t *testing.T) {
	// Only the low 24 bits of each operand participate, signed.
	got, err := PerformMulALU(MulOpMUL24, 6, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("MUL24(6, 7) = %d, expected 42", got)
	}
}

func TestMulOpV8MinMax(t *testing.T) {
	a := U8x4ToU32([4]byte{10, 200, 5, 255})
	b := U8x4ToU32([4]byte{20, 100, 5, 0})

	gotMin, err := PerformMulALU(MulOpV8MIN, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMin := U8x4ToU32([4]byte{10, 100, 5, 0})
	if gotMin != wantMin {
		t.Errorf("V8MIN = %#x, expected %#x", gotMin, wantMin)
	}

	gotMax, err := PerformMulALU(MulOpV8MAX, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMax := U8x4ToU32([4]byte{20, 200, 5, 255})
	if gotMax != wantMax {
		t.Errorf("V8MAX = %#x, expected %#x", gotMax, wantMax)
	}
}

func TestPerformMulALUUnimplementedIsFatal(t *testing.T) {
	if _, err := PerformMulALU(MulOpV8MULD, 1, 2); err == nil {
		t.Error("expected error for unimplemented V8MULD mul op")
	}
	if _, err := PerformMulALU(MulOpV8ADDS, 1, 2); err == nil {
		t.Error("expected error for unimplemented V8ADDS mul op")
	}
	if _, err := PerformMulALU(99, 1, 2); err == nil {
		t.Error("expected error for invalid mul op")
	}
}

func TestFTOISaturatesOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want uint32
	}{
		{"InRange", 42.9, 42},
		{"NegativeTruncatesTowardZero", -42.9, uint32(0xFFFFFFD6)}, // -42
		{"SaturatesHigh", 3e9, uint32(math.MaxInt32)},
		{"SaturatesLow", -3e9, uint32(1) << 31}, // math.MinInt32
		{"NaNIsZero", float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		got, err := PerformAddALU(AddOpFTOI, F32ToU32(tt.in), 0)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: FTOI(%v) = %#x, expected %#x", tt.name, tt.in, got, tt.want)
		}
	}
}
