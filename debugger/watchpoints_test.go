package debugger

import (
	"testing"

	"github.com/vc4sim/qpuemu/vm"
)

func TestWatchpointFiresOnRegisterChange(t *testing.T) {
	machine := vm.NewQPU(1<<16, nil)
	ws := NewWatchpointSet()

	machine.SetRegister(0, 5)
	wp, err := ws.Add(machine, "r0", true, 0, 0)
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}

	// Unchanged value: no hit.
	if hit := ws.Check(machine); hit != nil {
		t.Errorf("Check fired on unchanged value: %+v", hit)
	}

	machine.SetRegister(0, 6)
	hit := ws.Check(machine)
	if hit == nil {
		t.Fatal("Check did not fire on changed register")
	}
	if hit.ID != wp.ID || hit.LastValue != 6 || hit.HitCount != 1 {
		t.Errorf("hit = %+v, expected ID=%d LastValue=6 HitCount=1", hit, wp.ID)
	}

	// Baseline updated: no second hit until the value moves again.
	if hit := ws.Check(machine); hit != nil {
		t.Errorf("Check fired again without a change: %+v", hit)
	}
}

func TestWatchpointFiresOnMemoryChange(t *testing.T) {
	machine := vm.NewQPU(1<<16, nil)
	ws := NewWatchpointSet()

	if _, err := ws.Add(machine, "[0x100]", false, 0, 0x100); err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}

	if err := machine.Mem.WriteU32(0x100, 0xBEEF); err != nil {
		t.Fatalf("WriteU32: unexpected error: %v", err)
	}
	hit := ws.Check(machine)
	if hit == nil || hit.LastValue != 0xBEEF {
		t.Errorf("hit = %+v, expected memory watchpoint firing with 0xBEEF", hit)
	}
}

func TestWatchpointAddUnreadableAddress(t *testing.T) {
	machine := vm.NewQPU(64, nil)
	ws := NewWatchpointSet()

	if _, err := ws.Add(machine, "[0x10000]", false, 0, 0x10000); err == nil {
		t.Error("expected error watching an out-of-range address")
	}
	if ws.Count() != 0 {
		t.Errorf("Count = %d, expected 0 after failed Add", ws.Count())
	}
}

func TestWatchpointDisableSuppressesCheck(t *testing.T) {
	machine := vm.NewQPU(1<<16, nil)
	ws := NewWatchpointSet()

	wp, err := ws.Add(machine, "r1", true, 1, 0)
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if err := ws.SetEnabled(wp.ID, false); err != nil {
		t.Fatalf("SetEnabled: unexpected error: %v", err)
	}

	machine.SetRegister(1, 42)
	if hit := ws.Check(machine); hit != nil {
		t.Errorf("disabled watchpoint fired: %+v", hit)
	}
}

func TestWatchpointDeleteAndClear(t *testing.T) {
	machine := vm.NewQPU(1<<16, nil)
	ws := NewWatchpointSet()

	wp, err := ws.Add(machine, "r0", true, 0, 0)
	if err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	if err := ws.Delete(wp.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if err := ws.Delete(wp.ID); err == nil {
		t.Error("expected error deleting a watchpoint twice")
	}

	if _, err := ws.Add(machine, "r2", true, 2, 0); err != nil {
		t.Fatalf("Add: unexpected error: %v", err)
	}
	ws.Clear()
	if ws.Count() != 0 {
		t.Errorf("Count after Clear = %d, expected 0", ws.Count())
	}
}
