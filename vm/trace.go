package vm

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// instMnemonic names the decoded instruction variant for trace/statistics
// display; it does not attempt real disassembly.
func instMnemonic(d Inst) string {
	switch {
	case d.Alu != nil:
		return "ALU"
	case d.AluSmallImm != nil:
		return "ALU_SMALL_IMM"
	case d.Branch != nil:
		return "BRANCH"
	case d.LoadImm32 != nil:
		return "LOAD_IMM32"
	case d.LoadImmPerElemSigned != nil, d.LoadImmPerElemUnsign != nil:
		return "LOAD_IMM_PER_ELEM"
	case d.Semaphore != nil:
		return "SEMAPHORE"
	default:
		return "UNKNOWN"
	}
}

// TraceEntry represents a single executed instruction, as seen through the
// debugger's lane-0 register view.
type TraceEntry struct {
	Sequence        uint64            // Instruction sequence number
	Address         uint32            // Instruction index (PC)
	Mnemonic        string            // Decoded instruction variant name
	RegisterChanges map[string]uint32 // Lane-0 register changes (name -> new value)
	Flags           string            // Lane-0 N/Z/C flags after execution
	Duration        time.Duration     // Time since trace start
}

// ExecutionTrace manages execution tracing over the QPU's lane-0 register
// view, adapted from a scalar-CPU execution trace to a single-lane slice of
// the 16-wide SIMD register files.
type ExecutionTrace struct {
	Enabled       bool
	Writer        io.Writer
	FilterRegs    map[string]bool // Registers to track (empty = all)
	IncludeFlags  bool
	IncludeTiming bool
	MaxEntries    int

	entries      []TraceEntry
	startTime    time.Time
	lastSnapshot map[string]uint32
}

// NewExecutionTrace creates a new execution trace.
func NewExecutionTrace(writer io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:       true,
		Writer:        writer,
		FilterRegs:    make(map[string]bool),
		IncludeFlags:  true,
		IncludeTiming: true,
		MaxEntries:    100000,
		entries:       make([]TraceEntry, 0, 1000),
		lastSnapshot:  make(map[string]uint32),
	}
}

// SetFilterRegisters sets which registers to track. Pass nil or empty to
// track all registers.
func (t *ExecutionTrace) SetFilterRegisters(regs []string) {
	t.FilterRegs = make(map[string]bool)
	for _, reg := range regs {
		t.FilterRegs[strings.ToLower(reg)] = true
	}
}

// Start resets the trace and begins timing.
func (t *ExecutionTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint32)
}

// RecordInstruction records one executed instruction's lane-0 register
// changes, reading the QPU's current state after execution.
func (t *ExecutionTrace) RecordInstruction(q *QPU, seq uint64, pc uint32, d Inst) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}

	entry := TraceEntry{
		Sequence:        seq,
		Address:         pc,
		Mnemonic:        instMnemonic(d),
		RegisterChanges: make(map[string]uint32),
	}

	if t.IncludeTiming {
		entry.Duration = time.Since(t.startTime)
	}

	for idx := 0; idx < RegCount; idx++ {
		name := RegisterName(idx)
		if len(t.FilterRegs) > 0 && !t.FilterRegs[name] {
			continue
		}
		value := q.GetRegister(idx)
		if old, exists := t.lastSnapshot[name]; !exists || old != value {
			entry.RegisterChanges[name] = value
			t.lastSnapshot[name] = value
		}
	}
	if len(t.FilterRegs) == 0 || t.FilterRegs["pc"] {
		if old, exists := t.lastSnapshot["pc"]; !exists || old != uint32(q.CPU.PC) {
			entry.RegisterChanges["pc"] = uint32(q.CPU.PC)
			t.lastSnapshot["pc"] = uint32(q.CPU.PC)
		}
	}

	if t.IncludeFlags {
		flags := ""
		if q.CPU.NF[0] {
			flags += "N"
		} else {
			flags += "-"
		}
		if q.CPU.ZF[0] {
			flags += "Z"
		} else {
			flags += "-"
		}
		if q.CPU.CF[0] {
			flags += "C"
		} else {
			flags += "-"
		}
		entry.Flags = flags
	}

	t.entries = append(t.entries, entry)
}

// Flush writes all trace entries to the writer.
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *ExecutionTrace) writeEntry(entry TraceEntry) error {
	line := fmt.Sprintf("[%06d] pc=%06d: %-18s", entry.Sequence, entry.Address, entry.Mnemonic)

	if len(entry.RegisterChanges) > 0 {
		changes := make([]string, 0, len(entry.RegisterChanges))
		for name, value := range entry.RegisterChanges {
			changes = append(changes, fmt.Sprintf("%s=0x%08X", name, value))
		}
		line += " | " + strings.Join(changes, " ")
	} else {
		line += " | (no changes)"
	}

	if t.IncludeFlags {
		line += " | " + entry.Flags
	}
	if t.IncludeTiming {
		line += fmt.Sprintf(" | %v", entry.Duration)
	}
	line += "\n"

	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all trace entries.
func (t *ExecutionTrace) GetEntries() []TraceEntry {
	return t.entries
}

// Clear clears all trace entries.
func (t *ExecutionTrace) Clear() {
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint32)
}

// MemoryAccessEntry represents one main-memory access triggered by a VPM DMA
// transfer or a TMU0 load. Unlike the scalar teacher's byte/halfword/word
// memory model, every access here is word-sized, since that is the only
// granularity this memory implementation supports.
type MemoryAccessEntry struct {
	Sequence  uint64
	Address   uint32
	PC        uint32
	Type      string // "READ" or "WRITE"
	Value     uint32
	Timestamp time.Duration
}

// MemoryTrace traces the QPU's VPM-DMA and TMU0 main-memory traffic.
type MemoryTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries   []MemoryAccessEntry
	startTime time.Time
	pc        uint32
}

// NewMemoryTrace creates a new memory trace.
func NewMemoryTrace(writer io.Writer) *MemoryTrace {
	return &MemoryTrace{
		Enabled:    true,
		Writer:     writer,
		MaxEntries: 100000,
		entries:    make([]MemoryAccessEntry, 0, 1000),
	}
}

// Start resets the memory trace and begins timing.
func (t *MemoryTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
}

// SetPC records the PC of the instruction whose memory traffic follows;
// the thread driver calls this before executing each instruction.
func (t *MemoryTrace) SetPC(pc uint32) {
	t.pc = pc
}

// RecordRead records a main-memory read.
func (t *MemoryTrace) RecordRead(address, value uint32) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{
		Sequence: uint64(len(t.entries)), Address: address, PC: t.pc, Type: "READ", Value: value,
		Timestamp: time.Since(t.startTime),
	})
}

// RecordWrite records a main-memory write.
func (t *MemoryTrace) RecordWrite(address, value uint32) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{
		Sequence: uint64(len(t.entries)), Address: address, PC: t.pc, Type: "WRITE", Value: value,
		Timestamp: time.Since(t.startTime),
	})
}

// Flush writes all memory trace entries to the writer.
func (t *MemoryTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTrace) writeEntry(entry MemoryAccessEntry) error {
	var line string
	if entry.Type == "READ" {
		line = fmt.Sprintf("[%06d] [%-5s] pc=%06d <- [0x%08X] = 0x%08X\n",
			entry.Sequence, entry.Type, entry.PC, entry.Address, entry.Value)
	} else {
		line = fmt.Sprintf("[%06d] [%-5s] pc=%06d -> [0x%08X] = 0x%08X\n",
			entry.Sequence, entry.Type, entry.PC, entry.Address, entry.Value)
	}
	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all memory trace entries.
func (t *MemoryTrace) GetEntries() []MemoryAccessEntry {
	return t.entries
}

// Clear clears all memory trace entries.
func (t *MemoryTrace) Clear() {
	t.entries = t.entries[:0]
}

// OpenTraceFile opens a trace file for writing.
func OpenTraceFile(filename string) (*os.File, error) {
	return os.Create(filename) // #nosec G304 -- caller-specified trace output path
}
