// Package loader reads the flat binary inputs a QPU program needs: a
// little-endian stream of 64-bit instruction words, and raw data images
// (uniforms, matrices) placed at a caller-chosen memory offset.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/vc4sim/qpuemu/vm"
)

// LoadInstructions reads a file of little-endian 64-bit instruction words,
// matching the reference harness's byteorder.LittleEndian.read_u64_into.
// The file size must be a multiple of 8 bytes.
func LoadInstructions(path string) ([]uint64, error) {
	buf, err := os.ReadFile(path) // #nosec G304 -- caller-supplied program path
	if err != nil {
		return nil, fmt.Errorf("loader: reading instruction file %s: %w", path, err)
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("loader: instruction file %s size %d is not a multiple of 8", path, len(buf))
	}

	insts := make([]uint64, len(buf)/8)
	for i := range insts {
		insts[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return insts, nil
}

// LoadImageInto copies the raw bytes of the file at path into q's memory
// starting at byte offset addr. It is a fatal error for the image to run
// past the end of memory.
func LoadImageInto(q *vm.QPU, path string, addr uint32) error {
	buf, err := os.ReadFile(path) // #nosec G304 -- caller-supplied data path
	if err != nil {
		return fmt.Errorf("loader: reading data file %s: %w", path, err)
	}
	if int(addr)+len(buf) > len(q.Mem.Bytes) {
		return fmt.Errorf("loader: data file %s (size %d) at %#x overflows memory of size %d", path, len(buf), addr, len(q.Mem.Bytes))
	}
	copy(q.Mem.Bytes[addr:], buf)
	return nil
}

// WriteU32sAt writes a sequence of little-endian 32-bit words into q's
// memory starting at byte offset addr — the layout used to place uniform
// blocks and matrix data ahead of a run.
func WriteU32sAt(q *vm.QPU, addr uint32, words []uint32) error {
	for i, w := range words {
		off, err := vm.SafeIntToUint32(i * 4)
		if err != nil {
			return fmt.Errorf("loader: word offset %d: %w", i, err)
		}
		if err := q.Mem.WriteU32(addr+off, w); err != nil {
			return err
		}
	}
	return nil
}
