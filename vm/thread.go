package vm

// ExecState describes whether single-step execution (as driven by an
// interactive debugger) is still runnable or has reached the end of the
// loaded instruction stream.
type ExecState int

const (
	StateRunning ExecState = iota
	StateHalted
)

// slot is one entry in the 3-deep shadow ring. It does not implement real
// branch delay slots (the QPU has none in this model); it only records the
// PC and raw word of recently fetched instructions. When a BPKT signal is
// recognized, the PC reported is slots[0].pc as read before the ring shifts:
// the instruction fetched three steps before the BPKT instruction (0 while
// the ring is still filling).
type slot struct {
	pc   uint32
	inst uint64
}

// BreakpointHandler is invoked with the QPU state and the PC held in the
// oldest shadow-ring entry (three instructions before the one carrying the
// BPKT signal), immediately before the BPKT instruction executes.
type BreakpointHandler func(q *QPU, pc uint32)

// QPU is the complete emulator state: CPU register files and flags, flat
// memory, the VPM scratchpad and its read/write/DMA setups, the TMU0 FIFO,
// and the instruction stream currently loaded for execution.
type QPU struct {
	CPU *CPU
	Mem *Memory

	VPMMem        *VPM
	VPMReadSetup  *VPMReadSetup
	VPMWriteSetup *VPMWriteSetup
	VPMDMALoad    *VPMDMALoad
	VPMDMAStore   *VPMDMAStore

	TMU0 *TMU0

	Insts       []uint64
	slots       [3]slot
	uniformBase uint32

	BreakpointHandler BreakpointHandler

	// State tracks single-step execution for the interactive debugger, which
	// steps one thread at a time rather than driving the full Run dispatch
	// loop below.
	State ExecState

	// Trace records lane-0 register changes for each executed instruction,
	// if set. Both Run and Step feed it; it is nil (disabled) by default.
	Trace *ExecutionTrace

	// MemTrace records VPM-DMA and TMU0 main-memory traffic, if set.
	MemTrace *MemoryTrace

	// Stats accumulates per-variant instruction counts, branch outcomes and
	// peripheral traffic totals, if set.
	Stats *PerformanceStatistics
}

// NewQPU allocates a QPU with memSize bytes of flat memory. handler may be
// nil, in which case BPKT signals are silently ignored.
func NewQPU(memSize int, handler BreakpointHandler) *QPU {
	if handler == nil {
		handler = func(*QPU, uint32) {}
	}
	return &QPU{
		CPU:               NewCPU(),
		Mem:               NewMemory(memSize),
		VPMMem:            NewVPM(),
		VPMReadSetup:      NewVPMReadSetup(),
		VPMWriteSetup:     NewVPMWriteSetup(),
		VPMDMALoad:        NewVPMDMALoad(),
		VPMDMAStore:       NewVPMDMAStore(),
		TMU0:              NewTMU0(),
		BreakpointHandler: handler,
	}
}

// Run executes insts sequentially, once per thread in 0..nThreads, each
// thread starting at PC 0 with its own uniform-stream base address from
// uniformPtrs. Threads are not interleaved or run in parallel; they share
// the same memory, register files and VPM state and run one after another,
// matching the reference implementation's sequential threading model.
func (q *QPU) Run(insts []uint64, uniformPtrs []uint32, nThreads int) error {
	q.Insts = insts

	for th := 0; th < nThreads; th++ {
		q.CPU.UniformPtr = uniformPtrs[th]
		q.CPU.PC = 0
		q.slots = [3]slot{}

		for q.CPU.PC < len(q.Insts) {
			curPC, curInst := uint32(q.CPU.PC), q.Insts[q.CPU.PC]
			reportPC := q.slots[0].pc
			if q.MemTrace != nil {
				q.MemTrace.SetPC(curPC)
			}

			q.slots[0] = q.slots[1]
			q.slots[1] = q.slots[2]
			q.slots[2] = slot{pc: curPC, inst: curInst}

			decoded, err := Decode(curInst)
			if err != nil {
				return err
			}

			if decoded.Alu != nil && decoded.Alu.Sig == SigBPKT {
				q.BreakpointHandler(q, reportPC)
			}

			if err := q.ExecuteInst(decoded); err != nil {
				return err
			}

			if q.Trace != nil {
				q.Trace.RecordInstruction(q, uint64(len(q.Trace.entries)), curPC, decoded)
			}
			if q.Stats != nil {
				q.Stats.RecordInstruction(instMnemonic(decoded), curPC)
			}

			q.CPU.PC++
		}
	}

	return nil
}

// LoadProgram installs insts as the thread's instruction stream and resets
// CPU/ring state for single-step execution via Step, seeding the uniform
// stream pointer the way Run does for each thread it drives.
func (q *QPU) LoadProgram(insts []uint64, uniformPtr uint32) {
	q.Insts = insts
	q.uniformBase = uniformPtr
	q.CPU.PC = 0
	q.CPU.UniformPtr = uniformPtr
	q.slots = [3]slot{}
	q.State = StateRunning
}

// Restart rewinds the loaded program to its initial state: PC 0, power-on
// register/flag state, and the uniform pointer back at the base that
// LoadProgram was given.
func (q *QPU) Restart() {
	q.CPU.Reset()
	q.CPU.UniformPtr = q.uniformBase
	q.slots = [3]slot{}
	q.State = StateRunning
}

// Step decodes and executes exactly one instruction at the current PC, then
// advances PC. It is the single-thread counterpart to Run's dispatch loop,
// used by the interactive debugger to stop after each instruction. Once PC
// runs off the end of the loaded program, State becomes StateHalted and
// further calls are no-ops.
func (q *QPU) Step() error {
	if q.State == StateHalted {
		return nil
	}
	if q.CPU.PC < 0 || q.CPU.PC >= len(q.Insts) {
		q.State = StateHalted
		return nil
	}

	curPC, curInst := uint32(q.CPU.PC), q.Insts[q.CPU.PC]
	reportPC := q.slots[0].pc
	if q.MemTrace != nil {
		q.MemTrace.SetPC(curPC)
	}

	q.slots[0] = q.slots[1]
	q.slots[1] = q.slots[2]
	q.slots[2] = slot{pc: curPC, inst: curInst}

	decoded, err := Decode(curInst)
	if err != nil {
		return err
	}

	if decoded.Alu != nil && decoded.Alu.Sig == SigBPKT {
		q.BreakpointHandler(q, reportPC)
	}

	if err := q.ExecuteInst(decoded); err != nil {
		return err
	}

	if q.Trace != nil {
		q.Trace.RecordInstruction(q, uint64(len(q.Trace.entries)), curPC, decoded)
	}
	if q.Stats != nil {
		q.Stats.RecordInstruction(instMnemonic(decoded), curPC)
	}

	q.CPU.PC++
	if q.CPU.PC >= len(q.Insts) {
		q.State = StateHalted
	}
	return nil
}
