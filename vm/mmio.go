package vm

import "fmt"

// ReadRA resolves a read from the RA file's lane `elem` at address `addr`,
// redirecting reserved addresses to the peripherals they alias.
func (q *QPU) ReadRA(elem int, addr uint8) (uint32, error) {
	switch {
	case addr <= RARA31:
		return q.CPU.RegRA.Get(elem, int(addr)), nil
	case addr == RAUniformRead:
		return q.Mem.ReadU32(q.CPU.UniformPtr)
	case addr == RAElementNumber:
		return uint32(elem), nil
	case addr == RANop:
		return 0, nil
	case addr == RAMutexAcquire:
		return 0, nil
	case addr == RAVPMRead:
		return ReadVPM(q.VPMMem, q.VPMReadSetup, elem)
	case addr == RAVPMLdBusy, addr == RAVPMLdWait:
		return 0, nil
	default:
		return 0, fmt.Errorf("mmio: RA address %d out of range", addr)
	}
}

// ReadRB resolves a read from the RB file's lane `elem` at address `addr`.
func (q *QPU) ReadRB(elem int, addr uint8) (uint32, error) {
	switch {
	case addr <= RBRB31:
		return q.CPU.RegRB.Get(elem, int(addr)), nil
	case addr == RBUniformRead:
		return q.Mem.ReadU32(q.CPU.UniformPtr)
	case addr == RBNop:
		return 0, nil
	case addr == RBMutexAcquire:
		return 0, nil
	case addr == RBVPMRead:
		return ReadVPM(q.VPMMem, q.VPMReadSetup, elem)
	case addr == RBVPMStBusy, addr == RBVPMStWait:
		return 0, nil
	default:
		return 0, fmt.Errorf("mmio: RB address %d out of range", addr)
	}
}

// WriteRA dispatches a predicated 16-lane write to the RA file's write-side
// address space.
func (q *QPU) WriteRA(addr uint8, values [NumLanes]*uint32) error {
	switch {
	case addr >= WARA0 && addr <= WARA31:
		q.CPU.RegRA.SetVec(int(addr), values)
	case addr == WAACC0:
		q.CPU.RegR.SetVec(0, values)
	case addr == WAACC1:
		q.CPU.RegR.SetVec(1, values)
	case addr == WAACC2:
		q.CPU.RegR.SetVec(2, values)
	case addr == WAACC3:
		q.CPU.RegR.SetVec(3, values)
	case addr == WBACC5:
		return fmt.Errorf("mmio: write-side ACC5 via A-side address not implemented")
	case addr == WANop:
		// nop
	case addr == WAUniformsAddress:
		if values[0] != nil {
			q.CPU.UniformPtr = *values[0]
		}
	case addr == WATMUNoswap:
		// not implemented
	case addr == WATMU0S:
		return q.pushTMU0(tmu0ParamS, values)
	case addr == WATMU0T:
		return q.pushTMU0(tmu0ParamT, values)
	case addr == WATMU0R:
		return q.pushTMU0(tmu0ParamR, values)
	case addr == WATMU0B:
		return q.pushTMU0(tmu0ParamB, values)
	case addr == WAVPMWrite:
		return WriteVPM(q.VPMMem, q.VPMWriteSetup, values)
	case addr == WAVPMVCDRdSetup:
		if values[0] != nil {
			q.CPU.SetupVPMLoad(q.VPMDMALoad, q.VPMReadSetup, *values[0])
		}
	case addr == WAVPMLdAddr:
		if values[0] != nil {
			if err := ExecuteVPMDMALoad(q.Mem, q.VPMMem, q.VPMDMALoad, *values[0], q.MemTrace); err != nil {
				return err
			}
			if q.Stats != nil {
				q.Stats.RecordMemoryRead(uint64(q.VPMDMALoad.NRows*q.VPMDMALoad.RowLen) * 4)
			}
		}
	case addr == WAMutexRelease:
		// not implemented
	case addr == WAHostInt:
		// not implemented
	default:
		return fmt.Errorf("mmio: WA address %d invalid", addr)
	}
	return nil
}

// WriteRB dispatches a predicated 16-lane write to the RB file's write-side
// address space.
func (q *QPU) WriteRB(addr uint8, values [NumLanes]*uint32) error {
	switch {
	case addr >= WBRB0 && addr <= WBRB31:
		q.CPU.RegRB.SetVec(int(addr), values)
	case addr == WBACC0:
		q.CPU.RegR.SetVec(0, values)
	case addr == WBACC1:
		q.CPU.RegR.SetVec(1, values)
	case addr == WBACC2:
		q.CPU.RegR.SetVec(2, values)
	case addr == WBACC3:
		q.CPU.RegR.SetVec(3, values)
	case addr == WBACC5:
		if values[0] != nil {
			for elem := 0; elem < NumLanes; elem++ {
				q.CPU.RegR.Set(elem, 5, *values[0])
			}
		}
	case addr == WBNop:
		// nop
	case addr == WBUniformsAddress:
		if values[0] != nil {
			q.CPU.UniformPtr = *values[0]
		}
	case addr == WBTMUNoswap:
		// not implemented
	case addr == WBTMU0S:
		return q.pushTMU0(tmu0ParamS, values)
	case addr == WBTMU0T:
		return q.pushTMU0(tmu0ParamT, values)
	case addr == WBTMU0R:
		return q.pushTMU0(tmu0ParamR, values)
	case addr == WBTMU0B:
		return q.pushTMU0(tmu0ParamB, values)
	case addr == WBVPMWrite:
		return WriteVPM(q.VPMMem, q.VPMWriteSetup, values)
	case addr == WBVPMVCDWrSetup:
		if values[0] != nil {
			return q.CPU.SetupVPMStore(q.VPMDMAStore, q.VPMWriteSetup, *values[0])
		}
	case addr == WBVPMStAddr:
		if values[0] != nil {
			if err := ExecuteVPMDMAStore(q.Mem, q.VPMMem, q.VPMDMAStore, *values[0], q.MemTrace); err != nil {
				return err
			}
			if q.Stats != nil {
				q.Stats.RecordMemoryWrite(uint64(q.VPMDMAStore.Units*q.VPMDMAStore.Depth) * 4)
			}
		}
	case addr == WBMutexRelease:
		// not implemented
	case addr == WBHostInt:
		// not implemented
	default:
		return fmt.Errorf("mmio: WB address %d invalid", addr)
	}
	return nil
}

// pushTMU0 unwraps a predicated lane vector and enqueues it as a TMU0
// coordinate. The reference implementation unwraps all 16 lanes
// unconditionally, so a TMU0 coordinate write with any lane predicated off
// is a fatal error, not a silent zero.
func (q *QPU) pushTMU0(param tmu0Param, values [NumLanes]*uint32) error {
	var vec [NumLanes]uint32
	for i, v := range values {
		if v == nil {
			return fmt.Errorf("mmio: tmu0 coordinate write with lane %d predicated off", i)
		}
		vec[i] = *v
	}
	return q.TMU0.Push(param, vec)
}
