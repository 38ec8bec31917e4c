package vm

import "fmt"

// ExecuteInst dispatches a decoded instruction to its executor.
func (q *QPU) ExecuteInst(inst Inst) error {
	switch {
	case inst.Alu != nil:
		return q.executeAlu(inst.Alu)
	case inst.AluSmallImm != nil:
		return q.executeAluSmallImm(inst.AluSmallImm)
	case inst.Branch != nil:
		return q.executeBranch(inst.Branch)
	case inst.LoadImm32 != nil:
		return q.executeLoadImm32(inst.LoadImm32)
	case inst.LoadImmPerElemSigned != nil:
		return q.executeLoadImmPerElem(inst.LoadImmPerElemSigned, true)
	case inst.LoadImmPerElemUnsign != nil:
		return q.executeLoadImmPerElem(inst.LoadImmPerElemUnsign, false)
	case inst.Semaphore != nil:
		return q.executeSemaphore(inst.Semaphore)
	default:
		return nil
	}
}

func (q *QPU) executeAlu(f *InstAlu) error {
	var addResults, mulResults [NumLanes]*uint32

	for elem := 0; elem < NumLanes; elem++ {
		doAdd := q.CPU.EvalElemCond(f.CondAdd, elem) && f.OpAdd != AddOpNOP
		doMul := q.CPU.EvalElemCond(f.CondMul, elem) && f.OpMul != MulOpNOP

		raVal, err := q.ReadRA(elem, f.RaddrA)
		if err != nil {
			return err
		}
		rbVal, err := q.ReadRB(elem, f.RaddrB)
		if err != nil {
			return err
		}

		if doAdd {
			a, err := MuxOperand(q.CPU.RegR, f.AddA, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			b, err := MuxOperand(q.CPU.RegR, f.AddB, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			result, err := PerformAddALU(f.OpAdd, a, b)
			if err != nil {
				return err
			}
			addResults[elem] = &result
			if f.SF != 0 {
				q.CPU.SetFlag(elem, result)
			}
		}

		if doMul {
			a, err := MuxOperand(q.CPU.RegR, f.MulA, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			b, err := MuxOperand(q.CPU.RegR, f.MulB, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			result, err := PerformMulALU(f.OpMul, a, b)
			if err != nil {
				return err
			}
			mulResults[elem] = &result
			if f.SF != 0 && !doAdd {
				q.CPU.SetFlag(elem, result)
			}
		}
	}

	if f.WS == 0 {
		if err := q.WriteRA(f.WaddrAdd, addResults); err != nil {
			return err
		}
		if err := q.WriteRB(f.WaddrMul, mulResults); err != nil {
			return err
		}
	} else {
		if err := q.WriteRB(f.WaddrAdd, addResults); err != nil {
			return err
		}
		if err := q.WriteRA(f.WaddrMul, mulResults); err != nil {
			return err
		}
	}

	if f.RaddrA == RAUniformRead || f.RaddrB == RBUniformRead {
		q.CPU.UniformPtr += 4
	}

	if f.Sig == SigLDTMU0 {
		if err := q.TMU0.Drain(q.Mem, q.CPU.RegR, q.MemTrace); err != nil {
			return err
		}
		if q.Stats != nil {
			q.Stats.RecordMemoryRead(NumLanes * 4)
		}
	}
	return nil
}

// decodeSmallImm decodes the 6-bit small-immediate/rotate field of an
// AluSmallImm instruction into its resolved B-operand value and the lane
// rotate amount. Values 0-31 are 5-bit sign-extended integers, 32-39 select
// a power-of-two float constant, 40-47 are fatal (reserved, unlike real
// hardware which treats them as zero), and 49-63 encode a rotate amount;
// 48 itself is also fatal, a quirk of the reference implementation
// reproduced here rather than fixed.
func decodeSmallImm(imm uint8) (uint32, int, error) {
	var immVal uint32
	switch {
	case imm <= 31:
		immVal = SignExtend(uint32(imm), 5)
	case imm <= 39:
		immVal = F32ToU32(float32(uint32(1) << (imm - 32)))
	case imm >= 48 && imm <= 63:
		immVal = 0
	default:
		return 0, 0, errSmallImm(imm)
	}

	var rotate int
	switch {
	case imm <= 47:
		rotate = 0
	case imm == 48:
		return 0, 0, errSmallImm(imm)
	case imm >= 49 && imm <= 63:
		rotate = int(imm) - 48
	default:
		return 0, 0, errSmallImm(imm)
	}

	return immVal, rotate, nil
}

func errSmallImm(imm uint8) error {
	return fmt.Errorf("alu: small immediate code %d is fatal", imm)
}

func (q *QPU) executeAluSmallImm(f *InstAluSmallImm) error {
	var addResults, mulResults [NumLanes]*uint32

	rbVal, rotate, err := decodeSmallImm(f.SmallImmed)
	if err != nil {
		return err
	}

	for elem := 0; elem < NumLanes; elem++ {
		doAdd := q.CPU.EvalElemCond(f.CondAdd, elem) && f.OpAdd != AddOpNOP
		doMul := q.CPU.EvalElemCond(f.CondMul, elem) && f.OpMul != MulOpNOP

		raVal, err := q.ReadRA(elem, f.RaddrA)
		if err != nil {
			return err
		}
		rotatedElem := (elem + rotate) % NumLanes

		if doAdd {
			a, err := MuxOperand(q.CPU.RegR, f.AddA, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			b, err := MuxOperand(q.CPU.RegR, f.AddB, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			result, err := PerformAddALU(f.OpAdd, a, b)
			if err != nil {
				return err
			}
			addResults[rotatedElem] = &result
			if f.SF != 0 {
				q.CPU.SetFlag(rotatedElem, result)
			}
		}

		if doMul {
			a, err := MuxOperand(q.CPU.RegR, f.MulA, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			b, err := MuxOperand(q.CPU.RegR, f.MulB, elem, raVal, rbVal)
			if err != nil {
				return err
			}
			result, err := PerformMulALU(f.OpMul, a, b)
			if err != nil {
				return err
			}
			mulResults[rotatedElem] = &result
			if f.SF != 0 && !doAdd {
				q.CPU.SetFlag(rotatedElem, result)
			}
		}
	}

	if f.WS == 0 {
		if err := q.WriteRA(f.WaddrAdd, addResults); err != nil {
			return err
		}
		if err := q.WriteRB(f.WaddrMul, mulResults); err != nil {
			return err
		}
	} else {
		if err := q.WriteRB(f.WaddrAdd, addResults); err != nil {
			return err
		}
		if err := q.WriteRA(f.WaddrMul, mulResults); err != nil {
			return err
		}
	}

	if f.RaddrA == RAUniformRead {
		q.CPU.UniformPtr += 4
	}
	return nil
}

// executeBranch evaluates the whole-vector branch condition and, if taken,
// updates the PC. A relative branch adds the signed byte displacement
// divided by 8 (one instruction word) to the current PC; an absolute branch
// sets PC to displacement/8 - 1 so that the driver's unconditional PC++
// lands exactly on the target word. When Reg is set the displacement is
// read from RA lane 0 only (not all 16 lanes) — a documented quirk
// reproduced faithfully. Whether or not the branch is taken, UP advances
// by 4 when RaddrA names the uniform-read port.
func (q *QPU) executeBranch(f *InstBranch) error {
	var taken bool
	switch f.CondBr {
	case CondBrAlways:
		taken = true
	case CondBrZS:
		taken = ReductionAnd(q.CPU.ZF, false)
	case CondBrZC:
		taken = ReductionAnd(q.CPU.ZF, true)
	case CondBrAnyZS:
		taken = ReductionOr(q.CPU.ZF, false)
	case CondBrAnyZC:
		taken = ReductionOr(q.CPU.ZF, true)
	case CondBrNS:
		taken = ReductionAnd(q.CPU.NF, false)
	case CondBrNC:
		taken = ReductionAnd(q.CPU.NF, true)
	case CondBrAnyNS:
		taken = ReductionOr(q.CPU.NF, false)
	case CondBrAnyNC:
		taken = ReductionOr(q.CPU.NF, true)
	case CondBrCS:
		taken = ReductionAnd(q.CPU.CF, false)
	case CondBrCC:
		taken = ReductionAnd(q.CPU.CF, true)
	case CondBrAnyCS:
		taken = ReductionOr(q.CPU.CF, false)
	case CondBrAnyCC:
		taken = ReductionOr(q.CPU.CF, true)
	default:
		return fmt.Errorf("branch: invalid condition code %d", f.CondBr)
	}

	if q.Stats != nil {
		q.Stats.RecordBranch(taken)
	}

	if taken {
		var brVal int32
		if f.Reg != 0 {
			brVal = int32(q.CPU.RegRA.Get(0, int(f.RaddrA)))
		} else {
			brVal = int32(f.Immediate)
		}

		if f.Rel == 0 {
			q.CPU.PC = int(brVal/8 - 1)
		} else {
			q.CPU.PC = int(int32(q.CPU.PC) + brVal/8)
		}
	}

	if f.RaddrA == RAUniformRead {
		q.CPU.UniformPtr += 4
	}
	return nil
}

// executeLoadImm32 loads a single 32-bit immediate into every lane of the
// add and mul write targets. Per spec, this variant ignores cond codes and
// SF entirely — it always writes, unconditionally, and never touches the
// condition flags — a documented quirk reproduced faithfully.
func (q *QPU) executeLoadImm32(f *InstLoadImm32) error {
	var addResult, mulResult [NumLanes]*uint32
	imm := f.Immediate
	for i := range addResult {
		v := imm
		addResult[i] = &v
		v2 := imm
		mulResult[i] = &v2
	}

	if f.WS == 0 {
		if err := q.WriteRA(f.WaddrAdd, addResult); err != nil {
			return err
		}
		return q.WriteRB(f.WaddrMul, mulResult)
	}
	if err := q.WriteRB(f.WaddrAdd, addResult); err != nil {
		return err
	}
	return q.WriteRA(f.WaddrMul, mulResult)
}

// decodeImmPerElem resolves the per-lane immediate bit for lane `elem` from
// the MS/LS bit planes. In signed mode the MS bit is the sign and the LS
// bit the magnitude (0 or 1); in unsigned mode the two bits pack directly
// into bit 31 and bit 0 of the result.
func decodeImmPerElem(hi, lo uint16, signed bool, elem int) uint32 {
	hiBit := uint32((hi >> uint(elem)) & 1)
	loBit := uint32((lo >> uint(elem)) & 1)

	if signed {
		sign := int32(hiBit)*2 - 1
		return uint32(sign * int32(loBit))
	}
	return hiBit<<31 | loBit
}

// executeLoadImmPerElem loads per-lane immediates honoring per-lane cond
// codes, but — per spec — updates flags only when SF is set, same as the
// ALU variant, even though this format otherwise behaves like LoadImm32.
func (q *QPU) executeLoadImmPerElem(f *InstLoadImmPerElem, signed bool) error {
	var addResults, mulResults [NumLanes]*uint32

	for elem := 0; elem < NumLanes; elem++ {
		doAdd := q.CPU.EvalElemCond(f.CondAdd, elem)
		doMul := q.CPU.EvalElemCond(f.CondMul, elem)

		if doAdd {
			result := decodeImmPerElem(f.PerElementMSBit, f.PerElementLSBit, signed, elem)
			addResults[elem] = &result
			if f.SF != 0 {
				q.CPU.SetFlag(elem, result)
			}
		}
		if doMul {
			result := decodeImmPerElem(f.PerElementMSBit, f.PerElementLSBit, signed, elem)
			mulResults[elem] = &result
			if f.SF != 0 && !doAdd {
				q.CPU.SetFlag(elem, result)
			}
		}
	}

	if f.WS == 0 {
		if err := q.WriteRA(f.WaddrAdd, addResults); err != nil {
			return err
		}
		return q.WriteRB(f.WaddrMul, mulResults)
	}
	if err := q.WriteRB(f.WaddrAdd, addResults); err != nil {
		return err
	}
	return q.WriteRA(f.WaddrMul, mulResults)
}

// executeSemaphore is a no-op: the reference implementation never models
// inter-QPU semaphore synchronization (there is exactly one QPU core here),
// so both acquire and release are observationally empty.
func (q *QPU) executeSemaphore(f *InstSemaphore) error {
	return nil
}
