package vm

import "fmt"

// tmu0Param tags a queued TMU0 request by which coordinate it carries: s, t,
// r, b := 0, 1, 2, 3.
type tmu0Param uint8

const (
	tmu0ParamS tmu0Param = 0
	tmu0ParamT tmu0Param = 1
	tmu0ParamR tmu0Param = 2
	tmu0ParamB tmu0Param = 3
)

// TMU0 is the texture memory unit's bounded request FIFO. Only linear,
// s-only addressing is implemented; 2D and cube-texture addressing (any
// request that also supplies t) are a fatal error, matching the reference.
// An r or b coordinate queued without t is accepted and does not affect the
// load.
type TMU0 struct {
	fifo []tmu0Entry
}

type tmu0Entry struct {
	param tmu0Param
	value [NumLanes]uint32
}

// NewTMU0 returns an empty TMU0 FIFO.
func NewTMU0() *TMU0 {
	return &TMU0{}
}

// Len reports the number of requests currently queued.
func (t *TMU0) Len() int {
	return len(t.fifo)
}

// Push enqueues a request. It is a fatal error to push past TMU0FIFODepth
// entries.
func (t *TMU0) Push(param tmu0Param, value [NumLanes]uint32) error {
	if len(t.fifo) >= TMU0FIFODepth {
		return fmt.Errorf("tmu0: request fifo overflow")
	}
	t.fifo = append(t.fifo, tmu0Entry{param: param, value: value})
	return nil
}

// Drain executes one TMU0 load: it pops entries off the front of the FIFO
// until it has seen an `s` coordinate (s always terminates one texture
// request), loads the addressed word for every lane, and writes the result
// into R4. It is a fatal error for the same coordinate to be queued twice
// within one request, or for the request to lack an `s` coordinate. mtrace
// may be nil; when set, every lane's gather is recorded.
func (t *TMU0) Drain(mem *Memory, reg *RegisterFile, mtrace *MemoryTrace) error {
	var available [4]bool
	var value [4][NumLanes]uint32

	for len(t.fifo) > 0 {
		e := t.fifo[0]
		t.fifo = t.fifo[1:]

		if available[e.param] {
			return fmt.Errorf("tmu0: parameter duplicated")
		}
		available[e.param] = true
		value[e.param] = e.value

		if e.param == tmu0ParamS {
			break
		}
	}

	switch {
	case available[tmu0ParamS] && available[tmu0ParamT] && available[tmu0ParamR]:
		return fmt.Errorf("tmu0: cube texture addressing not implemented")
	case available[tmu0ParamS] && available[tmu0ParamT]:
		return fmt.Errorf("tmu0: 2D texture addressing not implemented")
	case available[tmu0ParamS]:
		addr := value[tmu0ParamS]
		for elem := 0; elem < NumLanes; elem++ {
			v, err := mem.ReadU32(addr[elem])
			if err != nil {
				return err
			}
			if mtrace != nil {
				mtrace.RecordRead(addr[elem], v)
			}
			reg.Set(elem, 4, v)
		}
		return nil
	default:
		return fmt.Errorf("tmu0: parameter s is required")
	}
}
