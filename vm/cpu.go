package vm

// RegisterFile is a per-lane vector register bank: `count` registers, each
// holding one uint32 per SIMD lane.
type RegisterFile struct {
	numElems int
	regs     []uint32
}

// NewRegisterFile allocates a register file of `count` registers, each
// numElems lanes wide.
func NewRegisterFile(numElems, count int) *RegisterFile {
	return &RegisterFile{
		numElems: numElems,
		regs:     make([]uint32, numElems*count),
	}
}

// Get reads lane `elem` of register `idx`.
func (r *RegisterFile) Get(elem, idx int) uint32 {
	return r.regs[r.numElems*idx+elem]
}

// Set writes lane `elem` of register `idx`.
func (r *RegisterFile) Set(elem, idx int, val uint32) {
	r.regs[r.numElems*idx+elem] = val
}

// GetVec returns the full 16-lane view of register `idx`.
func (r *RegisterFile) GetVec(idx int) []uint32 {
	beg := r.numElems * idx
	return r.regs[beg : beg+r.numElems]
}

// SetVec writes register `idx`, one lane per entry. A nil entry leaves that
// lane's existing value untouched (predication).
func (r *RegisterFile) SetVec(idx int, vals [NumLanes]*uint32) {
	for elem := 0; elem < r.numElems; elem++ {
		if vals[elem] != nil {
			r.Set(elem, idx, *vals[elem])
		}
	}
}

// CPU holds the QPU's per-lane state: the program counter, the R0-R5
// accumulator file, the RA/RB banked register files, and the Z/N/C
// condition flags (one set per lane).
type CPU struct {
	PC int

	RegR  *RegisterFile // 6 accumulators, R0..R5
	RegRA *RegisterFile // 32 banked registers
	RegRB *RegisterFile // 32 banked registers

	ZF [NumLanes]bool
	NF [NumLanes]bool
	CF [NumLanes]bool

	UniformPtr uint32
}

// NewCPU constructs a QPU register file set with flags reset to the
// power-on state (Z set, N/C clear, matching the Rust reference's default).
func NewCPU() *CPU {
	c := &CPU{
		RegR:  NewRegisterFile(NumLanes, 6),
		RegRA: NewRegisterFile(NumLanes, 32),
		RegRB: NewRegisterFile(NumLanes, 32),
	}
	c.Reset()
	return c
}

// Reset restores the CPU to its power-on state: PC 0, all registers zero,
// Z flags set, N/C flags clear.
func (c *CPU) Reset() {
	c.PC = 0
	c.UniformPtr = 0
	c.RegR = NewRegisterFile(NumLanes, 6)
	c.RegRA = NewRegisterFile(NumLanes, 32)
	c.RegRB = NewRegisterFile(NumLanes, 32)
	for i := 0; i < NumLanes; i++ {
		c.ZF[i] = true
		c.NF[i] = false
		c.CF[i] = false
	}
}

// SetFlag sets lane `elem`'s Z/N/C flags from an ALU result. The carry flag
// is always cleared: the reference implementation never computes carry for
// any add/mul ALU op, and this is preserved faithfully rather than fixed.
func (c *CPU) SetFlag(elem int, value uint32) {
	c.ZF[elem] = value == 0
	c.NF[elem] = int32(value) < 0
	c.CF[elem] = false
}

// EvalElemCond evaluates a per-lane add/mul condition code for lane `elem`.
func (c *CPU) EvalElemCond(cond uint8, elem int) bool {
	switch cond {
	case CondNever:
		return false
	case CondAlways:
		return true
	case CondZS:
		return c.ZF[elem]
	case CondZC:
		return !c.ZF[elem]
	case CondNS:
		return c.NF[elem]
	case CondNC:
		return !c.NF[elem]
	case CondCS:
		return c.CF[elem]
	case CondCC:
		return !c.CF[elem]
	default:
		panic("vm: invalid per-lane condition code")
	}
}

// EvalBranchCond evaluates a whole-vector branch condition code.
func (c *CPU) EvalBranchCond(cond uint8) bool {
	switch cond {
	case CondBrAlways:
		return true
	case CondBrZS:
		return ReductionAnd(c.ZF, false)
	case CondBrZC:
		return ReductionAnd(c.ZF, true)
	case CondBrAnyZS:
		return ReductionOr(c.ZF, false)
	case CondBrAnyZC:
		return ReductionOr(c.ZF, true)
	case CondBrNS:
		return ReductionAnd(c.NF, false)
	case CondBrNC:
		return ReductionAnd(c.NF, true)
	case CondBrAnyNS:
		return ReductionOr(c.NF, false)
	case CondBrAnyNC:
		return ReductionOr(c.NF, true)
	case CondBrCS:
		return ReductionAnd(c.CF, false)
	case CondBrCC:
		return ReductionAnd(c.CF, true)
	case CondBrAnyCS:
		return ReductionOr(c.CF, false)
	case CondBrAnyCC:
		return ReductionOr(c.CF, true)
	default:
		panic("vm: invalid branch condition code")
	}
}
