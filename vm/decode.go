package vm

import "fmt"

// InstAlu is the dual-issue add+mul ALU instruction format. It is also the
// decoder's default (any signal value other than SigNOPSI/SigLDI/SigBRA).
type InstAlu struct {
	Sig      uint8
	Unpack   uint8
	PM       uint8
	Pack     uint8
	CondAdd  uint8
	CondMul  uint8
	SF       uint8
	WS       uint8
	WaddrAdd uint8
	WaddrMul uint8
	OpMul    uint8
	OpAdd    uint8
	RaddrA   uint8
	RaddrB   uint8
	AddA     uint8
	AddB     uint8
	MulA     uint8
	MulB     uint8
}

// InstAluSmallImm is the SIG_NOPSI variant: the B-side read address field is
// reinterpreted as a 6-bit small immediate/rotate code.
type InstAluSmallImm struct {
	Unpack     uint8
	PM         uint8
	Pack       uint8
	CondAdd    uint8
	CondMul    uint8
	SF         uint8
	WS         uint8
	WaddrAdd   uint8
	WaddrMul   uint8
	OpMul      uint8
	OpAdd      uint8
	RaddrA     uint8
	SmallImmed uint8
	AddA       uint8
	AddB       uint8
	MulA       uint8
	MulB       uint8
}

// InstBranch is the SIG_BRA variant.
type InstBranch struct {
	CondBr    uint8
	Rel       uint8
	Reg       uint8
	RaddrA    uint8
	WS        uint8
	WaddrAdd  uint8
	WaddrMul  uint8
	Immediate uint32
}

// InstLoadImm32 is the SIG_LDI variant with unpack == UnpackLDI32.
type InstLoadImm32 struct {
	PM        uint8
	Pack      uint8
	CondAdd   uint8
	CondMul   uint8
	SF        uint8
	WS        uint8
	WaddrAdd  uint8
	WaddrMul  uint8
	Immediate uint32
}

// InstLoadImmPerElem is the SIG_LDI variant with unpack ==
// UnpackLDIPerElemSgn or UnpackLDIPerElemUns. Which interpretation applies
// is carried alongside the decoded value, not in the struct itself.
type InstLoadImmPerElem struct {
	PM              uint8
	Pack            uint8
	CondAdd         uint8
	CondMul         uint8
	SF              uint8
	WS              uint8
	WaddrAdd        uint8
	WaddrMul        uint8
	PerElementMSBit uint16
	PerElementLSBit uint16
}

// InstSemaphore is the SIG_LDI variant with unpack == UnpackSemaphore.
type InstSemaphore struct {
	PM       uint8
	Pack     uint8
	CondAdd  uint8
	CondMul  uint8
	SF       uint8
	WS       uint8
	WaddrAdd uint8
	WaddrMul uint8
	SA       uint8
	Semaphor uint8
}

// Inst is a decoded instruction word, tagged by which of the seven formats
// it holds. Exactly one of the pointer fields is non-nil.
type Inst struct {
	Alu                   *InstAlu
	AluSmallImm           *InstAluSmallImm
	Branch                *InstBranch
	LoadImm32             *InstLoadImm32
	LoadImmPerElemSigned  *InstLoadImmPerElem
	LoadImmPerElemUnsign  *InstLoadImmPerElem
	Semaphore             *InstSemaphore
}

// Decode decodes a single 64-bit instruction word. It is pure and total
// except for unknown "unpack" sub-codes under SIG_LDI, which are a fatal
// decode error.
func Decode(inst uint64) (Inst, error) {
	sig := uint8(Bits(inst, 63, 60))

	switch sig {
	case SigNOPSI:
		return Inst{AluSmallImm: &InstAluSmallImm{
			Unpack:     uint8(Bits(inst, 59, 57)),
			PM:         uint8(Bits(inst, 56, 56)),
			Pack:       uint8(Bits(inst, 55, 52)),
			CondAdd:    uint8(Bits(inst, 51, 49)),
			CondMul:    uint8(Bits(inst, 48, 46)),
			SF:         uint8(Bits(inst, 45, 45)),
			WS:         uint8(Bits(inst, 44, 44)),
			WaddrAdd:   uint8(Bits(inst, 43, 38)),
			WaddrMul:   uint8(Bits(inst, 37, 32)),
			OpMul:      uint8(Bits(inst, 31, 29)),
			OpAdd:      uint8(Bits(inst, 28, 24)),
			RaddrA:     uint8(Bits(inst, 23, 18)),
			SmallImmed: uint8(Bits(inst, 17, 12)),
			AddA:       uint8(Bits(inst, 11, 9)),
			AddB:       uint8(Bits(inst, 8, 6)),
			MulA:       uint8(Bits(inst, 5, 3)),
			MulB:       uint8(Bits(inst, 2, 0)),
		}}, nil

	case SigBRA:
		return Inst{Branch: &InstBranch{
			CondBr:    uint8(Bits(inst, 55, 52)),
			Rel:       uint8(Bits(inst, 51, 51)),
			Reg:       uint8(Bits(inst, 50, 50)),
			RaddrA:    uint8(Bits(inst, 49, 45)),
			WS:        uint8(Bits(inst, 44, 44)),
			WaddrAdd:  uint8(Bits(inst, 43, 38)),
			WaddrMul:  uint8(Bits(inst, 37, 32)),
			Immediate: uint32(Bits(inst, 31, 0)),
		}}, nil

	case SigLDI:
		unpack := uint8(Bits(inst, 59, 57))
		switch unpack {
		case UnpackLDI32:
			return Inst{LoadImm32: &InstLoadImm32{
				PM:        uint8(Bits(inst, 56, 56)),
				Pack:      uint8(Bits(inst, 55, 52)),
				CondAdd:   uint8(Bits(inst, 51, 49)),
				CondMul:   uint8(Bits(inst, 48, 46)),
				SF:        uint8(Bits(inst, 45, 45)),
				WS:        uint8(Bits(inst, 44, 44)),
				WaddrAdd:  uint8(Bits(inst, 43, 38)),
				WaddrMul:  uint8(Bits(inst, 37, 32)),
				Immediate: uint32(Bits(inst, 31, 0)),
			}}, nil
		case UnpackLDIPerElemSgn:
			return Inst{LoadImmPerElemSigned: decodeLoadImmPerElem(inst)}, nil
		case UnpackLDIPerElemUns:
			return Inst{LoadImmPerElemUnsign: decodeLoadImmPerElem(inst)}, nil
		case UnpackSemaphore:
			return Inst{Semaphore: &InstSemaphore{
				PM:       uint8(Bits(inst, 56, 56)),
				Pack:     uint8(Bits(inst, 55, 52)),
				CondAdd:  uint8(Bits(inst, 51, 49)),
				CondMul:  uint8(Bits(inst, 48, 46)),
				SF:       uint8(Bits(inst, 45, 45)),
				WS:       uint8(Bits(inst, 44, 44)),
				WaddrAdd: uint8(Bits(inst, 43, 38)),
				WaddrMul: uint8(Bits(inst, 37, 32)),
				SA:       uint8(Bits(inst, 4, 4)),
				Semaphor: uint8(Bits(inst, 3, 0)),
			}}, nil
		default:
			return Inst{}, fmt.Errorf("decode: unknown LDI unpack sub-code %#o", unpack)
		}

	default:
		return Inst{Alu: &InstAlu{
			Sig:      sig,
			Unpack:   uint8(Bits(inst, 59, 57)),
			PM:       uint8(Bits(inst, 56, 56)),
			Pack:     uint8(Bits(inst, 55, 52)),
			CondAdd:  uint8(Bits(inst, 51, 49)),
			CondMul:  uint8(Bits(inst, 48, 46)),
			SF:       uint8(Bits(inst, 45, 45)),
			WS:       uint8(Bits(inst, 44, 44)),
			WaddrAdd: uint8(Bits(inst, 43, 38)),
			WaddrMul: uint8(Bits(inst, 37, 32)),
			OpMul:    uint8(Bits(inst, 31, 29)),
			OpAdd:    uint8(Bits(inst, 28, 24)),
			RaddrA:   uint8(Bits(inst, 23, 18)),
			RaddrB:   uint8(Bits(inst, 17, 12)),
			AddA:     uint8(Bits(inst, 11, 9)),
			AddB:     uint8(Bits(inst, 8, 6)),
			MulA:     uint8(Bits(inst, 5, 3)),
			MulB:     uint8(Bits(inst, 2, 0)),
		}}, nil
	}
}

func decodeLoadImmPerElem(inst uint64) *InstLoadImmPerElem {
	return &InstLoadImmPerElem{
		PM:              uint8(Bits(inst, 56, 56)),
		Pack:            uint8(Bits(inst, 55, 52)),
		CondAdd:         uint8(Bits(inst, 51, 49)),
		CondMul:         uint8(Bits(inst, 48, 46)),
		SF:              uint8(Bits(inst, 45, 45)),
		WS:              uint8(Bits(inst, 44, 44)),
		WaddrAdd:        uint8(Bits(inst, 43, 38)),
		WaddrMul:        uint8(Bits(inst, 37, 32)),
		PerElementMSBit: uint16(Bits(inst, 31, 16)),
		PerElementLSBit: uint16(Bits(inst, 15, 0)),
	}
}
