package stream

import (
	"sync/atomic"
	"time"

	"rrstream/device"
	"rrstream/graph"
	"rrstream/rng"
	"rrstream/utils"
	"rrstream/walk"
)

// Walks are not fused on the device for IC, so the claim is host-bound like
// the CPU workers'.
const icBatchSize = 32

// GPUWorkerIC drains slots one reverse-BFS traversal at a time. Its block
// budget is a slice of the whole device so every IC worker can be resident
// at once.
type GPUWorkerIC struct {
	g      *graph.CSR
	dg     *device.Graph
	stream *device.Stream
	rng    rng.Stream // host-side, draws the roots

	solver *walk.BFSSolver
	states []rng.Stream
	pred   []int32 // host-side predecessor buffer
	dPred  []int32 // device-side predecessor buffer

	profile bool
	prof    []iterProfile
}

func NewGPUWorkerIC(g *graph.CSR, dg *device.Graph, rs rng.Stream, stream *device.Stream, maxBlocks int, profile bool) *GPUWorkerIC {
	w := &GPUWorkerIC{
		g:       g,
		dg:      dg,
		stream:  stream,
		rng:     rs,
		solver:  walk.NewBFSSolver(dg, maxBlocks, stream),
		states:  make([]rng.Stream, maxBlocks*walk.TraverseBlockSize),
		pred:    make([]int32, dg.N),
		dPred:   device.MallocVertices(int(dg.N)),
		profile: profile,
	}
	w.solver.Configure(w.dPred)
	return w
}

// NumGPUThreads is the device RNG stream count of the traversal kernel.
func (w *GPUWorkerIC) NumGPUThreads() int { return len(w.states) }

func (w *GPUWorkerIC) RngSetup(master rng.Stream, total, firstSeq uint64) {
	for i := range w.states {
		w.states[i] = master.Split(total, firstSeq+uint64(i))
	}
	w.solver.Rng(w.states)
}

func (w *GPUWorkerIC) Kind() WorkerKind { return KindGPU }

func (w *GPUWorkerIC) SvcLoop(head *atomic.Uint64, res []RRRSet) {
	n := uint64(len(res))
	for {
		offset := head.Add(icBatchSize) - icBatchSize
		if offset >= n {
			return
		}
		w.batch(res[offset:utils.Min(offset+icBatchSize, n)])
	}
}

func (w *GPUWorkerIC) batch(seg []RRRSet) {
	var watch utils.Watch
	if w.profile {
		watch.Start()
	}
	p := &w.prof[len(w.prof)-1]
	var tPrev time.Duration
	for i := range seg {
		root := w.rng.UInt32n(w.g.NumNodes())
		w.solver.Traverse(root)
		if w.profile {
			w.stream.Synchronize()
			t := watch.Elapsed()
			p.dWalk += t - tPrev
			tPrev = t
		}

		device.CopyToHostVertices(w.stream, w.pred, w.dPred)
		w.stream.Synchronize()
		if w.profile {
			t := watch.Elapsed()
			p.dD2H += t - tPrev
			tPrev = t
		}

		w.pred[root] = int32(root)
		w.build(&seg[i])
		if w.profile {
			t := watch.Elapsed()
			p.dBuild += t - tPrev
			tPrev = t
		}
	}
	p.n += uint64(len(seg))
	if w.profile {
		p.d += watch.Elapsed()
	}
}

// build emits every reached vertex; ascending index order keeps the set
// sorted without an explicit sort.
func (w *GPUWorkerIC) build(dst *RRRSet) {
	set := (*dst)[:0]
	for v := uint32(0); v < w.dg.N; v++ {
		if w.pred[v] != -1 {
			set = append(set, v)
		}
	}
	*dst = set
}

func (w *GPUWorkerIC) BeginProfIter() {
	w.prof = append(w.prof, iterProfile{})
}

func (w *GPUWorkerIC) LogProfIter(iter int) {
	w.prof[iter].logLine(KindGPU)
}
