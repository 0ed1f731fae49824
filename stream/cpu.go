package stream

import (
	"sync/atomic"

	"rrstream/graph"
	"rrstream/rng"
	"rrstream/utils"
	"rrstream/walk"
)

// Small claim so the tail of a generation leaves little idle work behind a
// straggling batch.
const cpuBatchSize = 32

// CPUWorker produces one host walk per output slot.
type CPUWorker struct {
	g       *graph.CSR
	model   walk.Model
	rng     rng.Stream
	profile bool
	prof    []iterProfile
}

func NewCPUWorker(g *graph.CSR, model walk.Model, rs rng.Stream, profile bool) *CPUWorker {
	return &CPUWorker{g: g, model: model, rng: rs, profile: profile}
}

func (w *CPUWorker) Kind() WorkerKind { return KindCPU }

func (w *CPUWorker) SvcLoop(head *atomic.Uint64, res []RRRSet) {
	n := uint64(len(res))
	for {
		offset := head.Add(cpuBatchSize) - cpuBatchSize
		if offset >= n {
			return
		}
		w.batch(res[offset:utils.Min(offset+cpuBatchSize, n)])
	}
}

func (w *CPUWorker) batch(seg []RRRSet) {
	var watch utils.Watch
	if w.profile {
		watch.Start()
	}
	for i := range seg {
		root := w.rng.UInt32n(w.g.NumNodes())
		walk.AddRRRSet(w.g, root, w.rng, &seg[i], w.model)
	}
	p := &w.prof[len(w.prof)-1]
	p.n += uint64(len(seg))
	if w.profile {
		p.d += watch.Elapsed()
	}
}

func (w *CPUWorker) BeginProfIter() {
	w.prof = append(w.prof, iterProfile{})
}

func (w *CPUWorker) LogProfIter(iter int) {
	w.prof[iter].logLine(KindCPU)
}
