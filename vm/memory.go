package vm

import "fmt"

// Memory is the QPU's flat, byte-addressable main memory. Spec requires a
// single fixed-size byte array; there is no segmentation or permission
// model, unlike the ARM teacher this package was adapted from.
type Memory struct {
	Bytes []byte
}

// NewMemory allocates a zeroed flat memory of the given size in bytes.
func NewMemory(size int) *Memory {
	return &Memory{Bytes: make([]byte, size)}
}

// ReadU32 reads a little-endian 32-bit word at addr. addr must be 4-byte
// aligned; misalignment is a fatal error.
func (m *Memory) ReadU32(addr uint32) (uint32, error) {
	if addr&3 != 0 {
		return 0, fmt.Errorf("memory: read at %#x not aligned by 4 bytes", addr)
	}
	if int(addr)+4 > len(m.Bytes) {
		return 0, fmt.Errorf("memory: read at %#x out of range", addr)
	}
	return U8x4ToU32([4]byte{m.Bytes[addr], m.Bytes[addr+1], m.Bytes[addr+2], m.Bytes[addr+3]}), nil
}

// WriteU32 writes a little-endian 32-bit word at addr. addr must be 4-byte
// aligned; misalignment is a fatal error.
func (m *Memory) WriteU32(addr uint32, v uint32) error {
	if addr&3 != 0 {
		return fmt.Errorf("memory: write at %#x not aligned by 4 bytes", addr)
	}
	if int(addr)+4 > len(m.Bytes) {
		return fmt.Errorf("memory: write at %#x out of range", addr)
	}
	b := U32ToU8x4(v)
	copy(m.Bytes[addr:addr+4], b[:])
	return nil
}

// VPM is the Vertex Pipe Memory scratchpad: 16 columns, each a 64-row by
// 4-byte-wide byte array, addressed independently of main memory.
type VPM struct {
	Columns [VPMColumns][]byte
}

// NewVPM allocates a zeroed VPM scratchpad.
func NewVPM() *VPM {
	v := &VPM{}
	for i := range v.Columns {
		v.Columns[i] = make([]byte, VPMColumnSize)
	}
	return v
}

// ReadU32 reads a little-endian 32-bit word from VPM column `col` at byte
// offset `off`. off must be 4-byte aligned.
func (v *VPM) ReadU32(col, off int) (uint32, error) {
	if off&3 != 0 {
		return 0, fmt.Errorf("vpm: read at column %d offset %#x not aligned by 4 bytes", col, off)
	}
	c := v.Columns[col]
	return U8x4ToU32([4]byte{c[off], c[off+1], c[off+2], c[off+3]}), nil
}

// WriteU32 writes a little-endian 32-bit word into VPM column `col` at byte
// offset `off`. off must be 4-byte aligned.
func (v *VPM) WriteU32(col, off int, val uint32) error {
	if off&3 != 0 {
		return fmt.Errorf("vpm: write at column %d offset %#x not aligned by 4 bytes", col, off)
	}
	b := U32ToU8x4(val)
	copy(v.Columns[col][off:off+4], b[:])
	return nil
}
