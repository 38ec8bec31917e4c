package debugger

// CommandHistory remembers the commands typed into the debugger, newest
// last, so the `history` command can replay them. Immediate repeats are
// collapsed: stepping twenty times records "step" once.
type CommandHistory struct {
	commands []string
	limit    int
}

// NewCommandHistory returns an empty history capped at limit entries;
// limit <= 0 selects the default of 1000.
func NewCommandHistory(limit int) *CommandHistory {
	if limit <= 0 {
		limit = 1000
	}
	return &CommandHistory{limit: limit}
}

// Add appends a command, dropping empty input and immediate duplicates.
// The oldest entries fall off once the cap is reached.
func (h *CommandHistory) Add(cmd string) {
	if cmd == "" || (len(h.commands) > 0 && h.commands[len(h.commands)-1] == cmd) {
		return
	}
	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.limit {
		h.commands = h.commands[len(h.commands)-h.limit:]
	}
}

// Last returns the most recent command, or "" when the history is empty.
func (h *CommandHistory) Last() string {
	if len(h.commands) == 0 {
		return ""
	}
	return h.commands[len(h.commands)-1]
}

// Recent returns up to n of the most recent commands, oldest first.
func (h *CommandHistory) Recent(n int) []string {
	if n <= 0 || n > len(h.commands) {
		n = len(h.commands)
	}
	out := make([]string, n)
	copy(out, h.commands[len(h.commands)-n:])
	return out
}

// Len returns the number of recorded commands.
func (h *CommandHistory) Len() int {
	return len(h.commands)
}

// Clear empties the history.
func (h *CommandHistory) Clear() {
	h.commands = h.commands[:0]
}
