package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency controls how often the TUI display updates during continuous execution
	// (every N instructions to keep display responsive without overwhelming the terminal)
	DisplayUpdateFrequency = 100
)

// Instruction View Constants
const (
	// DisasmContextBefore is the number of instruction words shown before PC in the instruction view
	DisasmContextBefore = 8

	// DisasmWindowSize is the total number of instruction words shown in the instruction view
	DisasmWindowSize = 16

	// SourceContextLines is the number of source-map lines shown around PC in the source view
	SourceContextLines = 10
)

// Memory Display Constants
const (
	// MemoryViewRows is the number of rows to show in the memory hex dump view
	MemoryViewRows = 12

	// MemoryViewWordsPerRow is the number of 32-bit words displayed per row
	MemoryViewWordsPerRow = 4
)

// VPM Display Constants
const (
	// VPMViewRows is the number of 32-bit rows of the selected VPM column shown in the VPM view
	VPMViewRows = 12
)

// Register Display Constants
const (
	// RegisterViewRows is the fixed height of the register view panel
	// (6 accumulators + pc + blank line + RA row + RB row + blank line + flags + borders)
	RegisterViewRows = 15

	// BankRegistersShown is the number of RA/RB banked registers displayed per bank
	BankRegistersShown = 8
)
