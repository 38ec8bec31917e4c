package vm

import "testing"

func TestNewCPUPowerOnState(t *testing.T) {
	c := NewCPU()
	if c.PC != 0 || c.UniformPtr != 0 {
		t.Errorf("PC/UniformPtr = %d/%d, expected 0/0", c.PC, c.UniformPtr)
	}
	for lane := 0; lane < NumLanes; lane++ {
		if !c.ZF[lane] {
			t.Errorf("lane %d ZF = false, expected true at power-on", lane)
		}
		if c.NF[lane] || c.CF[lane] {
			t.Errorf("lane %d NF/CF = %v/%v, expected false/false at power-on", lane, c.NF[lane], c.CF[lane])
		}
	}
}

func TestSetFlagCarryAlwaysClear(t *testing.T) {
	c := NewCPU()
	c.CF[0] = true // pretend it was somehow set

	c.SetFlag(0, 0)
	if c.CF[0] {
		t.Error("SetFlag must always clear the carry flag, reproducing the reference implementation's quirk")
	}
	if !c.ZF[0] {
		t.Error("SetFlag(0) should set Z for a zero result")
	}
	if c.NF[0] {
		t.Error("SetFlag(0) should clear N for a non-negative result")
	}

	c.SetFlag(0, 0x80000000)
	if !c.NF[0] {
		t.Error("SetFlag(0x80000000) should set N for a negative result")
	}
	if c.ZF[0] {
		t.Error("SetFlag(0x80000000) should clear Z for a non-zero result")
	}
}

func TestEvalElemCond(t *testing.T) {
	c := NewCPU()
	c.ZF[0], c.NF[0], c.CF[0] = true, false, true

	tests := []struct {
		cond     uint8
		expected bool
	}{
		{CondNever, false},
		{CondAlways, true},
		{CondZS, true},
		{CondZC, false},
		{CondNS, false},
		{CondNC, true},
		{CondCS, true},
		{CondCC, false},
	}
	for _, tt := range tests {
		if got := c.EvalElemCond(tt.cond, 0); got != tt.expected {
			t.Errorf("EvalElemCond(%d) = %v, expected %v", tt.cond, got, tt.expected)
		}
	}
}

func TestEvalBranchCondAnyVsAll(t *testing.T) {
	c := NewCPU()
	for lane := range c.ZF {
		c.ZF[lane] = false
	}
	c.ZF[3] = true // exactly one lane set

	if c.EvalBranchCond(CondBrZS) {
		t.Error("CondBrZS (all lanes) should be false when only one lane is set")
	}
	if !c.EvalBranchCond(CondBrAnyZS) {
		t.Error("CondBrAnyZS should be true when at least one lane is set")
	}
}

func TestRegisterFileSetVecPredication(t *testing.T) {
	rf := NewRegisterFile(NumLanes, 4)
	var vals [NumLanes]*uint32
	a := uint32(7)
	vals[2] = &a

	rf.SetVec(1, vals)
	if got := rf.Get(2, 1); got != 7 {
		t.Errorf("Get(2,1) = %d, expected 7", got)
	}
	if got := rf.Get(0, 1); got != 0 {
		t.Errorf("Get(0,1) = %d, expected 0 (untouched by predication)", got)
	}
}

func TestRegisterFileGetVec(t *testing.T) {
	rf := NewRegisterFile(NumLanes, 2)
	for lane := 0; lane < NumLanes; lane++ {
		rf.Set(lane, 1, uint32(lane*10))
	}
	vec := rf.GetVec(1)
	if len(vec) != NumLanes {
		t.Fatalf("GetVec length = %d, expected %d", len(vec), NumLanes)
	}
	for lane, v := range vec {
		if v != uint32(lane*10) {
			t.Errorf("GetVec(1)[%d] = %d, expected %d", lane, v, lane*10)
		}
	}
}
