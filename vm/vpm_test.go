package vm

import "testing"

func TestWriteReadVPMHorizontalRoundTrip(t *testing.T) {
	vpmMem := NewVPM()
	write := NewVPMWriteSetup()
	write.Size = 2
	write.Horizontal = true
	write.Addr = 0
	write.Stride = 1

	var values [NumLanes]*uint32
	for i := range values {
		v := uint32(1000 + i)
		values[i] = &v
	}

	if err := WriteVPM(vpmMem, write, values); err != nil {
		t.Fatalf("WriteVPM: unexpected error: %v", err)
	}

	read := NewVPMReadSetup()
	read.Size = 2
	read.Horizontal = true
	read.Addr = 0
	read.Stride = 1

	for elem := 0; elem < NumLanes; elem++ {
		got, err := ReadVPM(vpmMem, read, elem)
		if err != nil {
			t.Fatalf("ReadVPM(elem=%d): unexpected error: %v", elem, err)
		}
		if got != uint32(1000+elem) {
			t.Errorf("ReadVPM(elem=%d) = %d, expected %d", elem, got, 1000+elem)
		}
	}
}

func TestWriteVPMPredication(t *testing.T) {
	vpmMem := NewVPM()
	write := NewVPMWriteSetup()
	write.Size = 2
	write.Horizontal = true

	var values [NumLanes]*uint32
	v := uint32(0xABCD)
	values[3] = &v // only lane 3 written

	if err := WriteVPM(vpmMem, write, values); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	read := NewVPMReadSetup()
	read.Size = 2
	read.Horizontal = true

	got, err := ReadVPM(vpmMem, read, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xABCD {
		t.Errorf("lane 3 = %#x, expected 0xABCD", got)
	}

	gotUnset, err := ReadVPM(vpmMem, read, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUnset != 0 {
		t.Errorf("lane 0 (unwritten) = %#x, expected 0", gotUnset)
	}
}

func TestSetupVPMLoadPlainRead(t *testing.T) {
	var load VPMDMALoad
	read := NewVPMReadSetup()

	cpu := NewCPU()
	// ID bits 31:28 == 0 selects the plain read setup path.
	var command uint32
	command = putBits32(command, 23, 20, 4) // Num
	command = putBits32(command, 17, 12, 8) // Stride
	command = putBits32(command, 11, 11, 1) // Horizontal
	command = putBits32(command, 9, 8, 2)   // Size = 2 (word)
	command = putBits32(command, 7, 0, 16)  // Addr

	cpu.SetupVPMLoad(&load, read, command)

	if read.Num != 4 || read.Stride != 8 || !read.Horizontal || read.Size != 2 || read.Addr != 16 {
		t.Errorf("read setup = %+v, expected Num=4 Stride=8 Horizontal=true Size=2 Addr=16", read)
	}
}

func TestSetupVPMLoadZeroFieldsDefaultTo16And64(t *testing.T) {
	var load VPMDMALoad
	read := NewVPMReadSetup()
	cpu := NewCPU()

	// All of Num/Stride left zero in the command word.
	var command uint32
	command = putBits32(command, 9, 8, 2)

	cpu.SetupVPMLoad(&load, read, command)
	if read.Num != 16 {
		t.Errorf("Num = %d, expected default 16", read.Num)
	}
	if read.Stride != 64 {
		t.Errorf("Stride = %d, expected default 64", read.Stride)
	}
}

func TestExecuteVPMDMALoadAndStoreRoundTrip(t *testing.T) {
	mem := NewMemory(4096)
	vpmMem := NewVPM()

	for i := 0; i < 16; i++ {
		if err := mem.WriteU32(uint32(i*4), uint32(0x1000+i)); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	load := NewVPMDMALoad()
	load.ModeW = 0
	load.MPitch = 1 // mpitch = 8*(1<<1) = 16
	load.RowLen = 16
	load.NRows = 1
	load.VPitch = 1
	load.Vert = false
	load.AddrXY = 0

	if err := ExecuteVPMDMALoad(mem, vpmMem, load, 0, nil); err != nil {
		t.Fatalf("ExecuteVPMDMALoad: unexpected error: %v", err)
	}

	for i := 0; i < 16; i++ {
		got, err := vpmMem.ReadU32(i, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != uint32(0x1000+i) {
			t.Errorf("VPM column %d = %#x, expected %#x", i, got, 0x1000+i)
		}
	}

	store := NewVPMDMAStore()
	store.ModeW = 0
	store.Units = 1
	store.Depth = 16
	store.Horiz = true
	store.BlockMode = 0
	store.VPMBase = 0
	store.Stride = 0

	destAddr := uint32(1024)
	if err := ExecuteVPMDMAStore(mem, vpmMem, store, destAddr, nil); err != nil {
		t.Fatalf("ExecuteVPMDMAStore: unexpected error: %v", err)
	}

	for i := 0; i < 16; i++ {
		got, err := mem.ReadU32(destAddr + uint32(i*4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != uint32(0x1000+i) {
			t.Errorf("stored word %d = %#x, expected %#x", i, got, 0x1000+i)
		}
	}
}

func TestExecuteVPMDMALoadVerticalIsFatal(t *testing.T) {
	mem := NewMemory(256)
	vpmMem := NewVPM()
	load := NewVPMDMALoad()
	load.Vert = true
	load.RowLen = 1
	load.NRows = 1
	load.VPitch = 1

	if err := ExecuteVPMDMALoad(mem, vpmMem, load, 0, nil); err == nil {
		t.Error("expected error: vertical DMA load is not implemented")
	}
}

func TestExecuteVPMDMAStoreBlockModeIsFatal(t *testing.T) {
	mem := NewMemory(256)
	vpmMem := NewVPM()
	store := NewVPMDMAStore()
	store.Horiz = true
	store.BlockMode = 1
	store.Units = 1
	store.Depth = 1

	if err := ExecuteVPMDMAStore(mem, vpmMem, store, 0, nil); err == nil {
		t.Error("expected error: blockmode DMA store is not implemented")
	}
}

func TestReadWriteVPMNonWordSizeIsFatal(t *testing.T) {
	vpmMem := NewVPM()
	read := NewVPMReadSetup()
	read.Size = 0
	if _, err := ReadVPM(vpmMem, read, 0); err == nil {
		t.Error("expected error for unimplemented VPM read size")
	}

	write := NewVPMWriteSetup()
	write.Size = 1
	var values [NumLanes]*uint32
	if err := WriteVPM(vpmMem, write, values); err == nil {
		t.Error("expected error for unimplemented VPM write size")
	}
}

// putBits32 is the 32-bit word counterpart of putBits, used to build VPM
// command words for setup tests.
func putBits32(word uint32, hi, lo int, val uint32) uint32 {
	width := hi + 1 - lo
	mask := uint32(1)<<uint(width) - 1
	return word | ((val & mask) << uint(lo))
}
