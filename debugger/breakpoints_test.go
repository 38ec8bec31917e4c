package debugger

import "testing"

func TestBreakpointAddAndAt(t *testing.T) {
	bs := NewBreakpointSet()
	bp := bs.Add(10, false, "")

	if bp.ID != 1 || bp.Index != 10 || !bp.Enabled {
		t.Errorf("Add returned %+v, expected ID=1 Index=10 Enabled", bp)
	}
	if got := bs.At(10); got != bp {
		t.Error("At(10) should return the added breakpoint")
	}
	if bs.At(11) != nil {
		t.Error("At(11) should be nil where no breakpoint exists")
	}
}

func TestBreakpointAddSameIndexReArms(t *testing.T) {
	bs := NewBreakpointSet()
	first := bs.Add(5, false, "")
	_ = bs.SetEnabled(first.ID, false)

	second := bs.Add(5, true, "r0 & 1")
	if second.ID != first.ID {
		t.Errorf("re-adding at the same index allocated ID %d, expected to reuse %d", second.ID, first.ID)
	}
	if !second.Enabled || !second.Temporary || second.Condition != "r0 & 1" {
		t.Errorf("re-added breakpoint = %+v, expected re-armed with new settings", second)
	}
	if bs.Count() != 1 {
		t.Errorf("Count = %d, expected 1", bs.Count())
	}
}

func TestBreakpointDelete(t *testing.T) {
	bs := NewBreakpointSet()
	bp := bs.Add(3, false, "")

	if err := bs.Delete(bp.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if bs.At(3) != nil {
		t.Error("breakpoint still present after Delete")
	}
	if err := bs.Delete(bp.ID); err == nil {
		t.Error("expected error deleting a breakpoint twice")
	}
}

func TestBreakpointSetEnabled(t *testing.T) {
	bs := NewBreakpointSet()
	bp := bs.Add(7, false, "")

	if err := bs.SetEnabled(bp.ID, false); err != nil {
		t.Fatalf("SetEnabled: unexpected error: %v", err)
	}
	if bp.Enabled {
		t.Error("breakpoint still enabled after SetEnabled(false)")
	}
	if err := bs.SetEnabled(99, true); err == nil {
		t.Error("expected error enabling an unknown breakpoint ID")
	}
}

func TestBreakpointAllOrderedByID(t *testing.T) {
	bs := NewBreakpointSet()
	bs.Add(30, false, "")
	bs.Add(10, false, "")
	bs.Add(20, false, "")

	all := bs.All()
	if len(all) != 3 {
		t.Fatalf("All returned %d breakpoints, expected 3", len(all))
	}
	for i, bp := range all {
		if bp.ID != i+1 {
			t.Errorf("All()[%d].ID = %d, expected %d (ordered by ID)", i, bp.ID, i+1)
		}
	}
}

func TestBreakpointClear(t *testing.T) {
	bs := NewBreakpointSet()
	bs.Add(1, false, "")
	bs.Add(2, false, "")

	bs.Clear()
	if bs.Count() != 0 {
		t.Errorf("Count after Clear = %d, expected 0", bs.Count())
	}
}
