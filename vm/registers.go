package vm

import "strconv"

// Register indices used by the debugger's flat register numbering: R0-R5
// accumulators first, then the 32-entry RA bank, then the 32-entry RB bank.
// Every register is actually NumLanes wide; these accessors operate on lane
// 0 only, giving the debugger a single scalar view of each vector register
// (the same simplification the teacher's debugger makes for ARM's scalar
// registers, generalized to "the first lane").
const (
	RegCount = 6 + 32 + 32
)

// GetRegister reads lane 0 of the flat register numbered idx.
func (q *QPU) GetRegister(idx int) uint32 {
	switch {
	case idx < 6:
		return q.CPU.RegR.Get(0, idx)
	case idx < 6+32:
		return q.CPU.RegRA.Get(0, idx-6)
	case idx < 6+32+32:
		return q.CPU.RegRB.Get(0, idx-6-32)
	default:
		return 0
	}
}

// SetRegister writes lane 0 of the flat register numbered idx, bypassing
// per-lane predication — a direct poke, for debugger "set" commands.
func (q *QPU) SetRegister(idx int, val uint32) {
	switch {
	case idx < 6:
		q.CPU.RegR.Set(0, idx, val)
	case idx < 6+32:
		q.CPU.RegRA.Set(0, idx-6, val)
	case idx < 6+32+32:
		q.CPU.RegRB.Set(0, idx-6-32, val)
	}
}

// RegisterName returns the canonical lowercase name of flat register idx:
// "r0".."r5", "ra0".."ra31", "rb0".."rb31".
func RegisterName(idx int) string {
	switch {
	case idx < 6:
		return "r" + strconv.Itoa(idx)
	case idx < 6+32:
		return "ra" + strconv.Itoa(idx-6)
	case idx < 6+32+32:
		return "rb" + strconv.Itoa(idx-6-32)
	default:
		return "?"
	}
}

// ParseRegisterName resolves a lowercase register name to its flat
// index, as used by GetRegister/SetRegister/RegisterName. ok is false for
// anything that isn't a recognized r/ra/rb register.
func ParseRegisterName(name string) (idx int, ok bool) {
	if len(name) < 2 {
		return 0, false
	}
	switch {
	case name[0] == 'r' && name[1] >= '0' && name[1] <= '9':
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 0 || n > 5 {
			return 0, false
		}
		return n, true
	case len(name) > 2 && name[0:2] == "ra":
		n, err := strconv.Atoi(name[2:])
		if err != nil || n < 0 || n > 31 {
			return 0, false
		}
		return 6 + n, true
	case len(name) > 2 && name[0:2] == "rb":
		n, err := strconv.Atoi(name[2:])
		if err != nil || n < 0 || n > 31 {
			return 0, false
		}
		return 6 + 32 + n, true
	default:
		return 0, false
	}
}
