package vm

// Signal nibble values (instruction bits 63..60). SIG_LDI additionally
// discriminates on a 3-bit "unpack" sub-field (bits 59..57); see decode.go. SIG_BPKT and SIG_LDTMU0 are ordinary Alu-variant signals that
// the thread driver and the add-ALU executor special-case after decode.
const (
	SigBPKT   = 0
	SigNone   = 1
	SigLDTMU0 = 10
	SigNOPSI  = 13
	SigLDI    = 14
	SigBRA    = 15
)

// Unpack sub-codes under SIG_LDI.
const (
	UnpackLDI32         = 0b000
	UnpackLDIPerElemSgn = 0b001
	UnpackLDIPerElemUns = 0b011
	UnpackSemaphore     = 0b100
)

// Per-lane ALU condition codes (cond_add / cond_mul, 3 bits).
const (
	CondNever  = 0
	CondAlways = 1
	CondZS     = 2
	CondZC     = 3
	CondNS     = 4
	CondNC     = 5
	CondCS     = 6
	CondCC     = 7
)

// Branch condition codes (cond_br, 4 bits).
const (
	CondBrAlways = 0
	CondBrZS     = 1
	CondBrZC     = 2
	CondBrAnyZS  = 3
	CondBrAnyZC  = 4
	CondBrNS     = 5
	CondBrNC     = 6
	CondBrAnyNS  = 7
	CondBrAnyNC  = 8
	CondBrCS     = 9
	CondBrCC     = 10
	CondBrAnyCS  = 11
	CondBrAnyCC  = 12
)

// ALU operand mux select codes (add_a/add_b/mul_a/mul_b, 3 bits).
const (
	AluSrcR0 = 0
	AluSrcR1 = 1
	AluSrcR2 = 2
	AluSrcR3 = 3
	AluSrcR4 = 4
	AluSrcR5 = 5
	AluSrcRA = 6
	AluSrcRB = 7
)

// Add-ALU opcodes (op_add, 5 bits).
const (
	AddOpNOP     = 0
	AddOpFADD    = 1
	AddOpFSUB    = 2
	AddOpFMIN    = 3
	AddOpFMAX    = 4
	AddOpFMINABS = 5
	AddOpFMAXABS = 6
	AddOpFTOI    = 7
	AddOpITOF    = 8
	AddOpADD     = 12
	AddOpSUB     = 13
	AddOpSHR     = 14
	AddOpASR     = 15
	AddOpROR     = 16
	AddOpSHL     = 17
	AddOpMIN     = 18
	AddOpMAX     = 19
	AddOpAND     = 20
	AddOpOR      = 21
	AddOpXOR     = 22
	AddOpNOT     = 23
	AddOpCLZ     = 24
	AddOpV8ADDS  = 30
	AddOpV8SUBS  = 31
)

// Mul-ALU opcodes (op_mul, 3 bits).
const (
	MulOpNOP    = 0
	MulOpFMUL   = 1
	MulOpMUL24  = 2
	MulOpV8MULD = 3
	MulOpV8MIN  = 4
	MulOpV8MAX  = 5
	MulOpV8ADDS = 6
	MulOpV8SUBS = 7
)

// RA file read-side MMIO addresses (raddr_a, 6 bits). Addresses 0..31
// address the physical RA bank directly.
const (
	RARA31          = 31
	RAUniformRead   = 32
	RAElementNumber = 38
	RANop           = 39
	RAMutexAcquire  = 43
	RAVPMRead       = 48
	RAVPMLdBusy     = 49
	RAVPMLdWait     = 50
)

// RB file read-side MMIO addresses (raddr_b, 6 bits).
const (
	RBRB31         = 31
	RBUniformRead  = 32
	RBNop          = 39
	RBMutexAcquire = 43
	RBVPMRead      = 48
	RBVPMStBusy    = 49
	RBVPMStWait    = 50
)

// RA/RB write-side MMIO addresses (waddr_add / waddr_mul, 6 bits).
const (
	WARA0             = 0
	WARA31            = 31
	WAACC0            = 32
	WAACC1            = 33
	WAACC2            = 34
	WAACC3            = 35
	WAHostInt         = 38
	WANop             = 39
	WAUniformsAddress = 40
	WATMUNoswap       = 41
	WAMutexRelease    = 43
	WAVPMWrite        = 48
	WAVPMVCDRdSetup   = 49
	WAVPMLdAddr       = 50
	WATMU0S           = 56
	WATMU0T           = 57
	WATMU0R           = 58
	WATMU0B           = 59

	WBRB0             = 0
	WBRB31            = 31
	WBACC0            = 32
	WBACC1            = 33
	WBACC2            = 34
	WBACC3            = 35
	WBACC5            = 37
	WBHostInt         = 38
	WBNop             = 39
	WBUniformsAddress = 40
	WBTMUNoswap       = 41
	WBMutexRelease    = 43
	WBVPMWrite        = 48
	WBVPMVCDWrSetup   = 49
	WBVPMStAddr       = 50
	WBTMU0S           = 56
	WBTMU0T           = 57
	WBTMU0R           = 58
	WBTMU0B           = 59
)

// NumLanes is the SIMD width of the QPU.
const NumLanes = 16

// TMU0FIFODepth is the maximum number of pending TMU0 requests.
const TMU0FIFODepth = 8

// VPMColumns, VPMRows and VPMColumnSize (bytes per column) describe the VPM
// scratchpad: 16 columns of 64 4-byte rows each.
const (
	VPMColumns    = 16
	VPMRows       = 64
	VPMColumnSize = VPMRows * 4
)
