package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives the line-mode debugger over stdin until the user quits or
// input ends. Commands that start execution hand off to the shared
// Debugger.RunLoop, which stops at breakpoints, BPKT signals, watchpoint
// changes, or program halt.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(qpu-dbg) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "quit" || line == "q" || line == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if out := dbg.GetOutput(); out != "" {
			fmt.Print(out)
		}

		dbg.RunLoop(func(msg string) { fmt.Println(msg) }, nil)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI runs the full-screen (tcell/tview) debugger interface.
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).Run()
}
