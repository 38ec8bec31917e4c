package debugger

import (
	"fmt"
	"sort"

	"github.com/vc4sim/qpuemu/vm"
)

// A Watchpoint fires when the lane-0 value it monitors changes between
// instructions. The QPU's register files and memory have no access hooks,
// so this is change detection polled by the run loop after every step;
// it cannot distinguish reads from writes.
type Watchpoint struct {
	ID         int
	Expression string
	IsRegister bool
	Register   int    // flat register index when IsRegister
	Address    uint32 // memory byte address otherwise
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// current reads the monitored value from the machine.
func (wp *Watchpoint) current(machine *vm.QPU) (uint32, error) {
	if wp.IsRegister {
		return machine.GetRegister(wp.Register), nil
	}
	return machine.Mem.ReadU32(wp.Address)
}

// WatchpointSet holds the debugger's watchpoints. Single-goroutine, like
// the rest of the debugger.
type WatchpointSet struct {
	watchpoints []*Watchpoint
	nextID      int
}

// NewWatchpointSet returns an empty watchpoint set.
func NewWatchpointSet() *WatchpointSet {
	return &WatchpointSet{nextID: 1}
}

// Add registers a watchpoint and seeds its baseline value from the
// machine's current state, so it fires on the first change, not on the
// value it was created with.
func (ws *WatchpointSet) Add(machine *vm.QPU, expression string, isRegister bool, register int, address uint32) (*Watchpoint, error) {
	wp := &Watchpoint{
		ID:         ws.nextID,
		Expression: expression,
		IsRegister: isRegister,
		Register:   register,
		Address:    address,
		Enabled:    true,
	}

	value, err := wp.current(machine)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", expression, err)
	}
	wp.LastValue = value

	ws.watchpoints = append(ws.watchpoints, wp)
	ws.nextID++
	return wp, nil
}

// find locates a watchpoint by ID.
func (ws *WatchpointSet) find(id int) (int, error) {
	for i, wp := range ws.watchpoints {
		if wp.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("watchpoint %d not found", id)
}

// Delete removes a watchpoint by ID.
func (ws *WatchpointSet) Delete(id int) error {
	i, err := ws.find(id)
	if err != nil {
		return err
	}
	ws.watchpoints = append(ws.watchpoints[:i], ws.watchpoints[i+1:]...)
	return nil
}

// SetEnabled enables or disables a watchpoint by ID.
func (ws *WatchpointSet) SetEnabled(id int, enabled bool) error {
	i, err := ws.find(id)
	if err != nil {
		return err
	}
	ws.watchpoints[i].Enabled = enabled
	return nil
}

// Check polls every enabled watchpoint against the machine and returns the
// first whose value changed, updating its baseline and hit count. Memory
// watchpoints whose address has become unreadable are skipped.
func (ws *WatchpointSet) Check(machine *vm.QPU) *Watchpoint {
	for _, wp := range ws.watchpoints {
		if !wp.Enabled {
			continue
		}
		value, err := wp.current(machine)
		if err != nil {
			continue
		}
		if value != wp.LastValue {
			wp.LastValue = value
			wp.HitCount++
			return wp
		}
	}
	return nil
}

// All returns the watchpoints ordered by ID.
func (ws *WatchpointSet) All() []*Watchpoint {
	out := make([]*Watchpoint, len(ws.watchpoints))
	copy(out, ws.watchpoints)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear removes every watchpoint.
func (ws *WatchpointSet) Clear() {
	ws.watchpoints = nil
}

// Count returns the number of watchpoints.
func (ws *WatchpointSet) Count() int {
	return len(ws.watchpoints)
}
