package debugger

import (
	"fmt"
	"strings"

	"github.com/vc4sim/qpuemu/vm"
)

// Debugger drives a single QPU thread interactively: breakpoints and
// watchpoints, an expression evaluator, and the run loop shared by the
// line-mode and TUI front ends. It also hooks the VM's BPKT callback, so
// breakpoint instructions compiled into the kernel stop the run loop just
// like debugger-set breakpoints do.
type Debugger struct {
	VM *vm.QPU

	Breakpoints *BreakpointSet
	Watchpoints *WatchpointSet
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	// Running is set by run/continue and cleared when the run loop stops.
	Running bool

	// Symbols maps label names to addresses for expressions and display.
	Symbols map[string]uint32

	// SourceMap maps instruction indices to source lines, when available.
	SourceMap map[uint32]string

	// LastCommand repeats on empty input, GDB-style.
	LastCommand string

	// Output buffers command responses for the front end to drain.
	Output strings.Builder

	// bpktPC carries the PC reported by the VM's BPKT callback from one
	// Step to the run loop's check after it.
	bpktPC *uint32
}

// NewDebugger creates a debugger attached to machine, taking over the
// machine's BPKT breakpoint callback.
func NewDebugger(machine *vm.QPU) *Debugger {
	d := &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointSet(),
		Watchpoints: NewWatchpointSet(),
		History:     NewCommandHistory(0),
		Evaluator:   NewExpressionEvaluator(),
		Symbols:     make(map[string]uint32),
		SourceMap:   make(map[uint32]string),
	}
	machine.BreakpointHandler = func(_ *vm.QPU, pc uint32) {
		d.bpktPC = &pc
	}
	return d
}

// LoadSymbols loads the symbol table for label resolution.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// LoadSourceMap loads the instruction-index to source-line mapping.
func (d *Debugger) LoadSourceMap(sourceMap map[uint32]string) {
	d.SourceMap = sourceMap
}

// ResolveAddress resolves a label to an address, or parses a numeric
// address (decimal or 0x-hex).
func (d *Debugger) ResolveAddress(addrStr string) (uint32, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint32
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		if _, err := fmt.Sscanf(addrStr, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(addrStr, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// ExecuteCommand processes and executes a debugger command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty input repeats the last command (for step, continue, ...).
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

// handleCommand dispatches commands to their handlers.
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	// Execution control
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	// Breakpoints and watchpoints
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "watch", "w":
		return d.cmdWatch(args)

	// Inspection
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "history":
		return d.cmdHistory(args)

	// State modification
	case "set":
		return d.cmdSet(args)

	// Program control
	case "reset":
		return d.cmdReset(args)

	// Help
	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks whether the run loop should stop before executing the
// instruction at the current PC.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := uint32(d.VM.CPU.PC)

	bp := d.Breakpoints.At(pc)
	if bp == nil || !bp.Enabled {
		return false, ""
	}

	if bp.Condition != "" {
		hold, err := d.Evaluator.Evaluate(bp.Condition, d.VM, d.Symbols)
		if err != nil {
			return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
		}
		if !hold {
			return false, ""
		}
	}

	bp.HitCount++
	if bp.Temporary {
		_ = d.Breakpoints.Delete(bp.ID)
	}
	return true, fmt.Sprintf("breakpoint %d", bp.ID)
}

// RunLoop steps the VM while Running is set, stopping at breakpoints, BPKT
// signals, watchpoint changes, runtime errors, or program halt. Stop
// messages go through report; onStep, when non-nil, is called after every
// executed instruction so a front end can refresh its display.
func (d *Debugger) RunLoop(report func(string), onStep func(steps int)) {
	steps := 0
	for d.Running {
		if stop, reason := d.ShouldBreak(); stop {
			d.Running = false
			report(fmt.Sprintf("Stopped: %s at instruction %d", reason, d.VM.CPU.PC))
			return
		}

		if err := d.VM.Step(); err != nil {
			d.Running = false
			report(fmt.Sprintf("Runtime error: %v", err))
			return
		}

		if d.bpktPC != nil {
			pc := *d.bpktPC
			d.bpktPC = nil
			d.Running = false
			report(fmt.Sprintf("Stopped: BPKT signal (instruction %d)", pc))
			return
		}
		if wp := d.Watchpoints.Check(d.VM); wp != nil {
			d.Running = false
			report(fmt.Sprintf("Stopped: watchpoint %d: %s = 0x%08X", wp.ID, wp.Expression, wp.LastValue))
			return
		}
		if d.VM.State == vm.StateHalted {
			d.Running = false
			report("Program halted")
			return
		}

		steps++
		if onStep != nil {
			onStep(steps)
		}
	}
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// StepOnce executes exactly one instruction and reports the new PC. It is
// the shared body of the step/next/finish commands; the QPU instruction set
// has no call/return, so all three collapse to a single step.
func (d *Debugger) StepOnce() error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program has halted")
	}
	if err := d.VM.Step(); err != nil {
		return err
	}
	if pc := d.bpktPC; pc != nil {
		d.bpktPC = nil
		d.Printf("BPKT signal (instruction %d)\n", *pc)
	}
	if d.VM.State == vm.StateHalted {
		d.Println("Program halted")
		return nil
	}
	d.Printf("PC=0x%08X\n", uint32(d.VM.CPU.PC))
	return nil
}
