package vm

import (
	"fmt"
	"math"
	"math/bits"
)

// MuxOperand selects one of the eight ALU operand sources for a given
// lane: the five general accumulators R0-R4, the write-only-to-read-back
// accumulator R5, or the already-resolved RA/RB bank value for this lane.
func MuxOperand(reg *RegisterFile, src uint8, elem int, raVal, rbVal uint32) (uint32, error) {
	switch src {
	case AluSrcR0:
		return reg.Get(elem, 0), nil
	case AluSrcR1:
		return reg.Get(elem, 1), nil
	case AluSrcR2:
		return reg.Get(elem, 2), nil
	case AluSrcR3:
		return reg.Get(elem, 3), nil
	case AluSrcR4:
		return reg.Get(elem, 4), nil
	case AluSrcR5:
		return reg.Get(elem, 5), nil
	case AluSrcRA:
		return raVal, nil
	case AluSrcRB:
		return rbVal, nil
	default:
		return 0, fmt.Errorf("alu: invalid operand source %d", src)
	}
}

const mask24Bit = int32(1<<24) - 1

// PerformAddALU computes the add-ALU result for op on val1/val2.
//
// ADDOP_SHL is implemented here as a left rotate, not a logical shift left,
// reproducing a known bug in the reference implementation faithfully
// rather than fixing it.
func PerformAddALU(op uint8, val1, val2 uint32) (uint32, error) {
	i1, i2 := int32(val1), int32(val2)
	f1, f2 := U32ToF32(val1), U32ToF32(val2)

	switch op {
	case AddOpNOP:
		return 0, nil
	case AddOpFADD:
		return F32ToU32(f1 + f2), nil
	case AddOpFSUB:
		return F32ToU32(f1 - f2), nil
	case AddOpFMIN:
		return F32ToU32(fmin32(f1, f2)), nil
	case AddOpFMAX:
		return F32ToU32(fmax32(f1, f2)), nil
	case AddOpFMINABS:
		return F32ToU32(fmin32(fabs32(f1), fabs32(f2))), nil
	case AddOpFMAXABS:
		return F32ToU32(fmax32(fabs32(f1), fabs32(f2))), nil
	case AddOpFTOI:
		return uint32(ftoi32(f1)), nil
	case AddOpITOF:
		return F32ToU32(float32(i1)), nil
	case AddOpADD:
		return uint32(i1 + i2), nil
	case AddOpSUB:
		return uint32(i1 - i2), nil
	case AddOpSHR:
		return val1 >> val2, nil
	case AddOpASR:
		return uint32(i1 >> val2), nil
	case AddOpROR:
		return rotateRight32(val1, val2), nil
	case AddOpSHL:
		return rotateLeft32(val1, val2), nil
	case AddOpMIN:
		if i1 < i2 {
			return uint32(i1), nil
		}
		return uint32(i2), nil
	case AddOpMAX:
		if i1 > i2 {
			return uint32(i1), nil
		}
		return uint32(i2), nil
	case AddOpAND:
		return val1 & val2, nil
	case AddOpOR:
		return val1 | val2, nil
	case AddOpXOR:
		return val1 ^ val2, nil
	case AddOpNOT:
		return ^val1, nil
	case AddOpCLZ:
		return countLeadingZeros32(val1), nil
	case AddOpV8ADDS, AddOpV8SUBS:
		return 0, fmt.Errorf("alu: add op %d (v8adds/v8subs) not implemented", op)
	default:
		return 0, fmt.Errorf("alu: invalid add operation %d", op)
	}
}

// PerformMulALU computes the mul-ALU result for op on val1/val2.
func PerformMulALU(op uint8, val1, val2 uint32) (uint32, error) {
	i1, i2 := int32(val1), int32(val2)
	f1, f2 := U32ToF32(val1), U32ToF32(val2)

	switch op {
	case MulOpNOP:
		return 0, nil
	case MulOpFMUL:
		return F32ToU32(f1 * f2), nil
	case MulOpMUL24:
		return uint32((i1 & mask24Bit) * (i2 & mask24Bit)), nil
	case MulOpV8MULD:
		return 0, fmt.Errorf("alu: mul op v8muld not implemented")
	case MulOpV8MIN:
		a, b := U32ToU8x4(val1), U32ToU8x4(val2)
		var out [4]byte
		for i := range out {
			out[i] = minByte(a[i], b[i])
		}
		return U8x4ToU32(out), nil
	case MulOpV8MAX:
		a, b := U32ToU8x4(val1), U32ToU8x4(val2)
		var out [4]byte
		for i := range out {
			out[i] = maxByte(a[i], b[i])
		}
		return U8x4ToU32(out), nil
	case MulOpV8ADDS, MulOpV8SUBS:
		return 0, fmt.Errorf("alu: mul op %d (v8adds/v8subs) not implemented", op)
	default:
		return 0, fmt.Errorf("alu: invalid multiply operation %d", op)
	}
}

// ftoi32 truncates toward zero, saturating out-of-range values and mapping
// NaN to 0. Go's float-to-int conversion is implementation-defined outside
// the int32 range, while the reference implementation's conversion
// saturates; this keeps FTOI total and bit-identical to the reference.
func ftoi32(f float32) int32 {
	switch {
	case f != f: // NaN
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

func fmin32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func fabs32(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

func rotateLeft32(v, n uint32) uint32 {
	return bits.RotateLeft32(v, int(n))
}

func rotateRight32(v, n uint32) uint32 {
	return bits.RotateLeft32(v, -int(n))
}

func countLeadingZeros32(v uint32) uint32 {
	return uint32(bits.LeadingZeros32(v))
}
