package vm

import "testing"

// putBits returns word with the inclusive range [hi, lo] set to val,
// val assumed to fit within that width.
func putBits(word uint64, hi, lo int, val uint64) uint64 {
	width := hi + 1 - lo
	mask := uint64(1)<<uint(width) - 1
	return word | ((val & mask) << uint(lo))
}

func TestDecodeAlu(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, SigNone) // any signal outside the NOPSI/LDI/BRA set decodes as Alu
	w = putBits(w, 56, 56, 1) // PM
	w = putBits(w, 55, 52, 0xA)
	w = putBits(w, 51, 49, CondAlways)
	w = putBits(w, 48, 46, CondZS)
	w = putBits(w, 45, 45, 1) // SF
	w = putBits(w, 44, 44, 0) // WS
	w = putBits(w, 43, 38, 5)
	w = putBits(w, 37, 32, 6)
	w = putBits(w, 31, 29, MulOpFMUL)
	w = putBits(w, 28, 24, AddOpADD)
	w = putBits(w, 23, 18, 3)
	w = putBits(w, 17, 12, 4)
	w = putBits(w, 11, 9, AluSrcRA)
	w = putBits(w, 8, 6, AluSrcRB)
	w = putBits(w, 5, 3, AluSrcR0)
	w = putBits(w, 2, 0, AluSrcR1)

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	f := d.Alu
	if f == nil {
		t.Fatal("expected Alu variant")
	}
	if f.PM != 1 || f.Pack != 0xA {
		t.Errorf("PM/Pack = %d/%d, expected 1/0xA", f.PM, f.Pack)
	}
	if f.CondAdd != CondAlways || f.CondMul != CondZS {
		t.Errorf("CondAdd/CondMul = %d/%d, expected %d/%d", f.CondAdd, f.CondMul, CondAlways, CondZS)
	}
	if f.SF != 1 || f.WS != 0 {
		t.Errorf("SF/WS = %d/%d, expected 1/0", f.SF, f.WS)
	}
	if f.WaddrAdd != 5 || f.WaddrMul != 6 {
		t.Errorf("WaddrAdd/WaddrMul = %d/%d, expected 5/6", f.WaddrAdd, f.WaddrMul)
	}
	if f.OpMul != MulOpFMUL || f.OpAdd != AddOpADD {
		t.Errorf("OpMul/OpAdd = %d/%d, expected %d/%d", f.OpMul, f.OpAdd, MulOpFMUL, AddOpADD)
	}
	if f.RaddrA != 3 || f.RaddrB != 4 {
		t.Errorf("RaddrA/RaddrB = %d/%d, expected 3/4", f.RaddrA, f.RaddrB)
	}
	if f.AddA != AluSrcRA || f.AddB != AluSrcRB || f.MulA != AluSrcR0 || f.MulB != AluSrcR1 {
		t.Errorf("operand mux fields mismatch: %+v", f)
	}
}

func TestDecodeAluSmallImm(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigNOPSI))
	w = putBits(w, 51, 49, CondAlways)
	w = putBits(w, 48, 46, CondNever)
	w = putBits(w, 45, 45, 1)
	w = putBits(w, 44, 44, 1)
	w = putBits(w, 43, 38, 10)
	w = putBits(w, 37, 32, 11)
	w = putBits(w, 31, 29, MulOpNOP)
	w = putBits(w, 28, 24, AddOpADD)
	w = putBits(w, 23, 18, 7)
	w = putBits(w, 17, 12, 50) // small immediate/rotate field
	w = putBits(w, 11, 9, AluSrcRA)
	w = putBits(w, 8, 6, AluSrcRB)

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	f := d.AluSmallImm
	if f == nil {
		t.Fatal("expected AluSmallImm variant")
	}
	if f.WS != 1 || f.WaddrAdd != 10 || f.WaddrMul != 11 {
		t.Errorf("WS/WaddrAdd/WaddrMul = %d/%d/%d, expected 1/10/11", f.WS, f.WaddrAdd, f.WaddrMul)
	}
	if f.RaddrA != 7 || f.SmallImmed != 50 {
		t.Errorf("RaddrA/SmallImmed = %d/%d, expected 7/50", f.RaddrA, f.SmallImmed)
	}
}

func TestDecodeBranch(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigBRA))
	w = putBits(w, 55, 52, CondBrAnyZS)
	w = putBits(w, 51, 51, 1) // Rel
	w = putBits(w, 50, 50, 0) // Reg
	w = putBits(w, 49, 45, 9)
	w = putBits(w, 44, 44, 0)
	w = putBits(w, 43, 38, 12)
	w = putBits(w, 37, 32, 13)
	w = putBits(w, 31, 0, 0xDEADBEEF)

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	f := d.Branch
	if f == nil {
		t.Fatal("expected Branch variant")
	}
	if f.CondBr != CondBrAnyZS || f.Rel != 1 || f.Reg != 0 {
		t.Errorf("CondBr/Rel/Reg = %d/%d/%d, expected %d/1/0", f.CondBr, f.Rel, f.Reg, CondBrAnyZS)
	}
	if f.RaddrA != 9 || f.WaddrAdd != 12 || f.WaddrMul != 13 {
		t.Errorf("RaddrA/WaddrAdd/WaddrMul = %d/%d/%d, expected 9/12/13", f.RaddrA, f.WaddrAdd, f.WaddrMul)
	}
	if f.Immediate != 0xDEADBEEF {
		t.Errorf("Immediate = %#x, expected 0xDEADBEEF", f.Immediate)
	}
}

func TestDecodeLoadImm32(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigLDI))
	w = putBits(w, 59, 57, uint64(UnpackLDI32))
	w = putBits(w, 51, 49, CondAlways)
	w = putBits(w, 48, 46, CondAlways)
	w = putBits(w, 45, 45, 0)
	w = putBits(w, 44, 44, 0)
	w = putBits(w, 43, 38, 1)
	w = putBits(w, 37, 32, 2)
	w = putBits(w, 31, 0, 0x12345678)

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	f := d.LoadImm32
	if f == nil {
		t.Fatal("expected LoadImm32 variant")
	}
	if f.Immediate != 0x12345678 {
		t.Errorf("Immediate = %#x, expected 0x12345678", f.Immediate)
	}
	if f.WaddrAdd != 1 || f.WaddrMul != 2 {
		t.Errorf("WaddrAdd/WaddrMul = %d/%d, expected 1/2", f.WaddrAdd, f.WaddrMul)
	}
}

func TestDecodeLoadImmPerElem(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigLDI))
	w = putBits(w, 59, 57, uint64(UnpackLDIPerElemSgn))
	w = putBits(w, 31, 16, 0x00FF) // PerElementMSBit
	w = putBits(w, 15, 0, 0xFF00)  // PerElementLSBit

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if d.LoadImmPerElemSigned == nil {
		t.Fatal("expected LoadImmPerElemSigned variant")
	}
	if d.LoadImmPerElemSigned.PerElementMSBit != 0x00FF || d.LoadImmPerElemSigned.PerElementLSBit != 0xFF00 {
		t.Errorf("MSBit/LSBit = %#x/%#x, expected 0x00FF/0xFF00",
			d.LoadImmPerElemSigned.PerElementMSBit, d.LoadImmPerElemSigned.PerElementLSBit)
	}

	var w2 uint64
	w2 = putBits(w2, 63, 60, uint64(SigLDI))
	w2 = putBits(w2, 59, 57, uint64(UnpackLDIPerElemUns))
	w2 = putBits(w2, 31, 16, 0x00FF)
	w2 = putBits(w2, 15, 0, 0xFF00)
	d2, err := Decode(w2)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	if d2.LoadImmPerElemUnsign == nil {
		t.Fatal("expected LoadImmPerElemUnsign variant")
	}
}

func TestDecodeSemaphore(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigLDI))
	w = putBits(w, 59, 57, uint64(UnpackSemaphore))
	w = putBits(w, 4, 4, 1)
	w = putBits(w, 3, 0, 5)

	d, err := Decode(w)
	if err != nil {
		t.Fatalf("Decode: unexpected error: %v", err)
	}
	f := d.Semaphore
	if f == nil {
		t.Fatal("expected Semaphore variant")
	}
	if f.SA != 1 || f.Semaphor != 5 {
		t.Errorf("SA/Semaphor = %d/%d, expected 1/5", f.SA, f.Semaphor)
	}
}

func TestDecodeUnknownUnpackIsFatal(t *testing.T) {
	var w uint64
	w = putBits(w, 63, 60, uint64(SigLDI))
	w = putBits(w, 59, 57, 0b010) // not one of the four known LDI unpack codes

	if _, err := Decode(w); err == nil {
		t.Fatal("expected decode error for unknown LDI unpack sub-code")
	}
}
