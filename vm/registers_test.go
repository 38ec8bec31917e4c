package vm

import "testing"

func TestRegisterNameAndParseRoundTrip(t *testing.T) {
	for idx := 0; idx < RegCount; idx++ {
		name := RegisterName(idx)
		got, ok := ParseRegisterName(name)
		if !ok {
			t.Fatalf("ParseRegisterName(%q) failed to resolve register %d", name, idx)
		}
		if got != idx {
			t.Errorf("ParseRegisterName(%q) = %d, expected %d", name, got, idx)
		}
	}
}

func TestParseRegisterNameRejectsGarbage(t *testing.T) {
	for _, name := range []string{"", "r", "rc0", "ra32", "rb99", "r6", "xyz"} {
		if _, ok := ParseRegisterName(name); ok {
			t.Errorf("ParseRegisterName(%q) expected ok=false", name)
		}
	}
}

func TestGetSetRegisterLaneZero(t *testing.T) {
	q := NewQPU(256, nil)
	q.SetRegister(0, 0xAA)
	q.SetRegister(6, 0xBB)  // ra0
	q.SetRegister(38, 0xCC) // rb0

	if got := q.GetRegister(0); got != 0xAA {
		t.Errorf("GetRegister(0) = %#x, expected 0xAA", got)
	}
	if got := q.GetRegister(6); got != 0xBB {
		t.Errorf("GetRegister(6) = %#x, expected 0xBB", got)
	}
	if got := q.GetRegister(38); got != 0xCC {
		t.Errorf("GetRegister(38) = %#x, expected 0xCC", got)
	}
}
