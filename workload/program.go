package workload

import (
	"hash/fnv"
	"math/rand"
)

// Class is the class of a synthetic instruction.
type Class int

const (
	// ClassALU is an integer or logic operation.
	ClassALU Class = iota

	// ClassLoad reads memory.
	ClassLoad

	// ClassStore writes memory.
	ClassStore

	// ClassBranch is a control-flow instruction.
	ClassBranch

	numClasses
)

func (c Class) String() string {
	switch c {
	case ClassALU:
		return "alu"
	case ClassLoad:
		return "load"
	case ClassStore:
		return "store"
	case ClassBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// MarkerKind is the kind of a workload annotation marker.
type MarkerKind int

const (
	// MarkerWorkBegin marks the start of an annotated work region.
	MarkerWorkBegin MarkerKind = iota

	// MarkerWorkEnd marks the end of an annotated work region.
	MarkerWorkEnd
)

// Marker is a workload annotation at an absolute instruction position. The
// marker fires once execution has retired Instruction instructions.
type Marker struct {
	Kind        MarkerKind
	Instruction uint64
}

// Op is one synthetic instruction as seen by a core.
type Op struct {
	// Class is the instruction class.
	Class Class

	// Addr is the memory address touched, meaningful for loads and
	// stores.
	Addr uint64

	// Mispredict is set on branches the predictor would miss.
	Mispredict bool
}

// Program is a validated, executable workload.
type Program struct {
	// Total is the length of the instruction stream.
	Total uint64

	// Markers are the annotation markers in ascending instruction order.
	Markers []Marker

	seed       int64
	cumulative [numClasses]float64
}

// Synthetic memory behavior: mostly strided accesses over a working set,
// with an occasional random jump, and a fixed branch misprediction rate.
const (
	workingSetBytes = 1 << 22
	accessStride    = 64
	randomJumpRate  = 0.05
	mispredictRate  = 0.04
)

// Stream returns the deterministic operation stream beginning at the given
// absolute instruction position. The same program and position always
// produce the same stream, regardless of how execution was chunked before
// that position.
func (p *Program) Stream(start uint64) *Stream {
	h := fnv.New64a()

	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(uint64(p.seed) >> (8 * i))
		buf[8+i] = byte(start >> (8 * i))
	}
	h.Write(buf[:])

	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	return &Stream{
		program: p,
		rng:     rng,
		addr:    (start * accessStride) % workingSetBytes,
	}
}

// Stream generates the synthetic operations of a Program, one per
// instruction.
type Stream struct {
	program *Program
	rng     *rand.Rand
	addr    uint64
}

// Next returns the next operation.
func (s *Stream) Next() Op {
	var op Op

	draw := s.rng.Float64()
	switch {
	case draw < s.program.cumulative[ClassALU]:
		op.Class = ClassALU
	case draw < s.program.cumulative[ClassLoad]:
		op.Class = ClassLoad
	case draw < s.program.cumulative[ClassStore]:
		op.Class = ClassStore
	default:
		op.Class = ClassBranch
	}

	switch op.Class {
	case ClassLoad, ClassStore:
		if s.rng.Float64() < randomJumpRate {
			s.addr = uint64(s.rng.Int63()) % workingSetBytes
		} else {
			s.addr = (s.addr + accessStride) % workingSetBytes
		}
		op.Addr = s.addr
	case ClassBranch:
		op.Mispredict = s.rng.Float64() < mispredictRate
	}

	return op
}
