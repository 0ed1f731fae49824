package walk

import (
	"rrstream/device"
	"rrstream/enforce"
	"rrstream/rng"
)

// TraverseBlockSize is the block size of the reverse-BFS traversal kernel.
const TraverseBlockSize = 256

// BFSSolver drives one Independent-Cascade reverse BFS per Traverse call
// over the device graph. Each frontier slot is owned by a virtual device
// thread whose state slot supplies the per-edge randomness, so a traversal
// is deterministic for a fixed worker layout and seed.
//
// The solver writes a predecessor buffer of length N: pred[v] >= 0 iff v was
// reached, else -1. The root's own entry is left at -1; the host patches it
// after copy-back.
type BFSSolver struct {
	dg        *device.Graph
	stream    *device.Stream
	maxBlocks int

	states []rng.Stream
	pred   []int32

	frontier []uint32
	next     []uint32
}

func NewBFSSolver(dg *device.Graph, maxBlocks int, stream *device.Stream) *BFSSolver {
	enforce.ENFORCE(maxBlocks > 0, "BFS solver needs at least one block")
	return &BFSSolver{
		dg:        dg,
		stream:    stream,
		maxBlocks: maxBlocks,
		frontier:  make([]uint32, 0, dg.N),
		next:      make([]uint32, 0, dg.N),
	}
}

// Rng hands the solver its device RNG state array (maxBlocks *
// TraverseBlockSize slots).
func (b *BFSSolver) Rng(states []rng.Stream) {
	enforce.ENFORCE(len(states) == b.maxBlocks*TraverseBlockSize,
		"BFS rng state array sized ", len(states), " want ", b.maxBlocks*TraverseBlockSize)
	b.states = states
}

// Configure points the solver at its device predecessor buffer.
func (b *BFSSolver) Configure(pred []int32) {
	enforce.ENFORCE(len(pred) == int(b.dg.N), "predecessor buffer sized ", len(pred), " want ", b.dg.N)
	b.pred = pred
}

// Traverse enqueues one traversal from root on the solver's stream. The
// predecessor buffer holds the result after the next Synchronize.
func (b *BFSSolver) Traverse(root uint32) {
	b.stream.Submit(func() {
		b.traverse(root)
	})
}

func (b *BFSSolver) traverse(root uint32) {
	numThreads := b.maxBlocks * TraverseBlockSize
	for i := range b.pred {
		b.pred[i] = -1
	}
	b.frontier = append(b.frontier[:0], root)
	for len(b.frontier) > 0 {
		b.next = b.next[:0]
		for pos, u := range b.frontier {
			s := b.states[pos%numThreads]
			for e := b.dg.Offsets[u]; e < b.dg.Offsets[u+1]; e++ {
				v := b.dg.Edges[e]
				if s.UniformCO() <= b.dg.Weights[e] && v != root && b.pred[v] == -1 {
					b.pred[v] = int32(u)
					b.next = append(b.next, v)
				}
			}
		}
		b.frontier, b.next = b.next, b.frontier
	}
}
