package vm

import "fmt"

// VPMReadSetup holds the state configured by a VPMVCD_RD_SETUP write and
// consumed by subsequent VPM_READ reads.
type VPMReadSetup struct {
	Num        int
	Stride     int
	Horizontal bool
	Laned      bool
	Size       int
	Addr       int
}

// NewVPMReadSetup returns the power-on default read setup.
func NewVPMReadSetup() *VPMReadSetup {
	return &VPMReadSetup{Horizontal: true}
}

// VPMWriteSetup holds the state configured by a VPMVCD_WR_SETUP write and
// consumed by subsequent VPM_WRITE writes.
type VPMWriteSetup struct {
	Stride     int
	Horizontal bool
	Laned      bool
	Size       int
	Addr       int
}

// NewVPMWriteSetup returns the power-on default write setup.
func NewVPMWriteSetup() *VPMWriteSetup {
	return &VPMWriteSetup{Horizontal: true}
}

// VPMDMALoad holds the state configured for a VPM DMA load (main memory ->
// VPM) and the parameters of the transfer itself.
type VPMDMALoad struct {
	ModeW   uint32
	MPitch  uint32
	RowLen  int
	NRows   int
	VPitch  uint32
	Vert    bool
	AddrXY  uint32
	MPitchB uint32
}

// NewVPMDMALoad returns the power-on default DMA-load state.
func NewVPMDMALoad() *VPMDMALoad { return &VPMDMALoad{} }

// VPMDMAStore holds the state configured for a VPM DMA store (VPM -> main
// memory) and the parameters of the transfer itself.
type VPMDMAStore struct {
	Units     uint32
	Depth     uint32
	Laned     bool
	Horiz     bool
	VPMBase   uint32
	ModeW     uint32
	BlockMode uint32
	Stride    uint32
}

// NewVPMDMAStore returns the power-on default DMA-store state.
func NewVPMDMAStore() *VPMDMAStore { return &VPMDMAStore{Horiz: true} }

// SetupVPMLoad decodes a VPMVCD_RD_SETUP command word into either the DMA
// load state machine or the plain VPM read setup, following the command's
// top bits exactly as the reference implementation's setup_vpm_load does.
func (c *CPU) SetupVPMLoad(load *VPMDMALoad, read *VPMReadSetup, command uint32) {
	switch {
	case Bits32(command, 31, 28) == 9:
		load.MPitchB = Bits32(command, 15, 0)
	case Bits32(command, 31, 31) == 1:
		load.ModeW = Bits32(command, 30, 28)
		load.MPitch = Bits32(command, 27, 24)
		load.RowLen = int(Bits32(command, 23, 20))
		load.NRows = int(Bits32(command, 19, 16))
		load.VPitch = Bits32(command, 15, 12)
		load.Vert = Bits32(command, 11, 11) != 0
		load.AddrXY = Bits32(command, 10, 0)

		if load.RowLen == 0 {
			load.RowLen = 16
		}
		if load.NRows == 0 {
			load.NRows = 16
		}
		if load.VPitch == 0 {
			load.VPitch = 16
		}
	default: // ID == 0
		read.Num = int(Bits32(command, 23, 20))
		read.Stride = int(Bits32(command, 17, 12))
		read.Horizontal = Bits32(command, 11, 11) != 0
		read.Laned = Bits32(command, 10, 10) != 0
		read.Size = int(Bits32(command, 9, 8))
		read.Addr = int(Bits32(command, 7, 0))

		if read.Num == 0 {
			read.Num = 16
		}
		if read.Stride == 0 {
			read.Stride = 64
		}
	}
}

// ExecuteVPMDMALoad runs a configured DMA load transaction from main memory
// starting at addr into the VPM. Only the 32-bit-width, horizontal path is
// implemented; other modes are a fatal error, matching the reference's
// unimplemented!() branches. mtrace may be nil; when set, every word read
// from main memory is recorded.
func ExecuteVPMDMALoad(mem *Memory, vpmMem *VPM, load *VPMDMALoad, addr uint32, mtrace *MemoryTrace) error {
	var mpitch uint32
	if load.MPitch != 0 {
		mpitch = 8 * (uint32(1) << load.MPitch)
	} else {
		mpitch = load.MPitchB
	}

	switch {
	case load.ModeW == 0: // 32-bit width
		if load.Vert {
			return fmt.Errorf("vpm: vertical DMA load not implemented")
		}

		vpmAddr := load.AddrXY
		memAddrRow := addr

		for row := 0; row < load.NRows; row++ {
			memAddr := memAddrRow

			for col := 0; col < load.RowLen; col++ {
				x := int(Bits32(vpmAddr, 3, 0))
				y := int(Bits32(vpmAddr, 31, 4))

				for b := 0; b < 4; b++ {
					if int(memAddr)+b >= len(mem.Bytes) {
						return fmt.Errorf("vpm: DMA load out of range at %#x", memAddr)
					}
					vpmMem.Columns[x][y*4+b] = mem.Bytes[int(memAddr)+b]
				}
				if mtrace != nil {
					word, _ := vpmMem.ReadU32(x, y*4)
					mtrace.RecordRead(memAddr, word)
				}

				vpmAddr += load.VPitch
				memAddr += 4
			}

			memAddrRow += mpitch
		}
		return nil
	case load.ModeW >= 2 && load.ModeW <= 3:
		return fmt.Errorf("vpm: 16-bit DMA load not implemented")
	case load.ModeW >= 4 && load.ModeW <= 7:
		return fmt.Errorf("vpm: 8-bit DMA load not implemented")
	default:
		return fmt.Errorf("vpm: DMA load mode %d out of range", load.ModeW)
	}
}

// SetupVPMStore decodes a VPMVCD_WR_SETUP command word into either the DMA
// store state machine or the plain VPM write setup.
func (c *CPU) SetupVPMStore(store *VPMDMAStore, write *VPMWriteSetup, command uint32) error {
	switch {
	case Bits32(command, 31, 30) == 3:
		store.BlockMode = Bits32(command, 16, 16)
		store.Stride = Bits32(command, 15, 0)
	case Bits32(command, 31, 30) == 2:
		store.Units = Bits32(command, 29, 23)
		store.Depth = Bits32(command, 22, 16)
		store.Laned = Bits32(command, 15, 15) != 0
		store.Horiz = Bits32(command, 14, 14) != 0
		store.VPMBase = Bits32(command, 13, 3)
		store.ModeW = Bits32(command, 2, 0)

		if store.Units == 0 {
			store.Units = 128
		}
		if store.Depth == 0 {
			store.Depth = 128
		}
	case Bits32(command, 31, 30) == 0:
		write.Stride = int(Bits32(command, 17, 12))
		write.Horizontal = Bits32(command, 11, 11) != 0
		write.Laned = Bits32(command, 10, 10) != 0
		write.Size = int(Bits32(command, 9, 8))
		write.Addr = int(Bits32(command, 7, 0))

		if write.Stride == 0 {
			write.Stride = 64
		}
	default:
		return fmt.Errorf("vpm: store command ID out of range")
	}
	return nil
}

// ExecuteVPMDMAStore runs a configured DMA store transaction from the VPM
// into main memory starting at addr. Only the 32-bit-width, horizontal,
// non-blockmode path is implemented. mtrace may be nil; when set, every
// word written to main memory is recorded.
func ExecuteVPMDMAStore(mem *Memory, vpmMem *VPM, store *VPMDMAStore, addr uint32, mtrace *MemoryTrace) error {
	switch {
	case store.ModeW == 0: // 32-bit width
		if store.BlockMode == 1 {
			return fmt.Errorf("vpm: blockmode DMA store not implemented")
		}
		if !store.Horiz {
			return fmt.Errorf("vpm: vertical DMA store not implemented")
		}

		vpmAddr := store.VPMBase
		memAddr := addr

		for row := uint32(0); row < store.Units; row++ {
			for col := uint32(0); col < store.Depth; col++ {
				x := int(Bits32(vpmAddr, 3, 0))
				y := int(Bits32(vpmAddr, 31, 4))

				for b := 0; b < 4; b++ {
					if int(memAddr)+b >= len(mem.Bytes) {
						return fmt.Errorf("vpm: DMA store out of range at %#x", memAddr)
					}
					mem.Bytes[int(memAddr)+b] = vpmMem.Columns[x][y*4+b]
				}
				if mtrace != nil {
					word, _ := vpmMem.ReadU32(x, y*4)
					mtrace.RecordWrite(memAddr, word)
				}

				vpmAddr++ // vpitch is always 1 in the horizontal path
				memAddr += 4
			}

			memAddr += store.Stride
		}
		return nil
	case store.ModeW >= 2 && store.ModeW <= 3:
		return fmt.Errorf("vpm: 16-bit DMA store not implemented")
	case store.ModeW >= 4 && store.ModeW <= 7:
		return fmt.Errorf("vpm: 8-bit DMA store not implemented")
	default:
		return fmt.Errorf("vpm: DMA store mode %d out of range", store.ModeW)
	}
}

// ReadVPM executes one VPM read transaction for lane `elem`, following the
// currently configured read setup. Only Size == 2 (32-bit, word) transfers
// are implemented; other sizes are a fatal error, matching the reference.
func ReadVPM(vpmMem *VPM, read *VPMReadSetup, elem int) (uint32, error) {
	switch read.Size {
	case 2:
		if read.Horizontal {
			x := 0
			y := Bits32(uint32(read.Addr), 31, 0)

			if elem == 15 {
				read.Addr += read.Stride
			}

			return vpmMem.ReadU32(x+elem, int(y)*4)
		}
		x := int(Bits32(uint32(read.Addr), 3, 0))
		y := int(Bits32(uint32(read.Addr), 31, 4))

		if elem == 15 {
			read.Addr += read.Stride
		}

		return vpmMem.ReadU32(x, (y*16+elem)*4)
	case 0, 1:
		return 0, fmt.Errorf("vpm: read size %d not implemented", read.Size)
	default:
		return 0, fmt.Errorf("vpm: read size %d reserved", read.Size)
	}
}

// WriteVPM executes one VPM write transaction across all 16 lanes,
// following the currently configured write setup. Lanes whose value is nil
// are not written (predication). Only Size == 2 transfers are implemented.
func WriteVPM(vpmMem *VPM, write *VPMWriteSetup, values [NumLanes]*uint32) error {
	switch write.Size {
	case 2:
		if write.Horizontal {
			x := 0
			y := Bits32(uint32(write.Addr), 5, 0)
			write.Addr += write.Stride

			for elem := 0; elem < NumLanes; elem++ {
				if values[elem] != nil {
					if err := vpmMem.WriteU32(x+elem, int(y)*4, *values[elem]); err != nil {
						return err
					}
				}
			}
			return nil
		}
		x := int(Bits32(uint32(write.Addr), 3, 0))
		y := int(Bits32(uint32(write.Addr), 31, 4))
		write.Addr += write.Stride

		for elem := 0; elem < NumLanes; elem++ {
			if values[elem] != nil {
				if err := vpmMem.WriteU32(x, (y*16+elem)*4, *values[elem]); err != nil {
					return err
				}
			}
		}
		return nil
	case 0, 1:
		return fmt.Errorf("vpm: write size %d not implemented", write.Size)
	default:
		return fmt.Errorf("vpm: write size %d reserved", write.Size)
	}
}
