package stream

import (
	"sort"
	"sync/atomic"
	"time"

	"rrstream/device"
	"rrstream/graph"
	"rrstream/rng"
	"rrstream/utils"
	"rrstream/walk"
)

// Fixed launch geometry of the batched LT kernel. The claim equals the
// number of concurrent walks per launch, which is what amortizes the launch
// cost against the CPU workers' small claims.
const (
	ltBlockSize  = 256
	ltNumThreads = 1 << 15
	ltMaskWords  = 8 // maximum device walk size
)

// GPUWorkerLT drains slots with the batched device LT kernel. Walks that
// exceed the fixed mask slot are redone on the host with the worker's own
// host-side stream and counted as exceedances.
type GPUWorkerLT struct {
	g      *graph.CSR
	dg     *device.Graph
	stream *device.Stream
	rng    rng.Stream // host-side, drives overflow fallbacks

	states []rng.Stream // device RNG state array, one per kernel thread
	mask   []uint32     // host-side copy-back buffer
	dMask  []uint32     // device-side mask buffer

	maxBlocks     int
	profile       bool
	prof          []iterProfile
	numExceedings uint64
}

func NewGPUWorkerLT(g *graph.CSR, dg *device.Graph, rs rng.Stream, stream *device.Stream, profile bool) *GPUWorkerLT {
	return &GPUWorkerLT{
		g:         g,
		dg:        dg,
		stream:    stream,
		rng:       rs,
		states:    make([]rng.Stream, ltNumThreads),
		mask:      make([]uint32, ltNumThreads*ltMaskWords),
		dMask:     device.MallocWords(ltNumThreads * ltMaskWords),
		maxBlocks: ltNumThreads / ltBlockSize,
		profile:   profile,
	}
}

// NumGPUThreads is the worker's claim size and device RNG stream count.
func (w *GPUWorkerLT) NumGPUThreads() int { return ltNumThreads }

// RngSetup derives the device thread streams: sequences
// [firstSeq, firstSeq+NumGPUThreads) of the master split.
func (w *GPUWorkerLT) RngSetup(master rng.Stream, total, firstSeq uint64) {
	for i := range w.states {
		w.states[i] = master.Split(total, firstSeq+uint64(i))
	}
}

func (w *GPUWorkerLT) Kind() WorkerKind { return KindGPU }

// NumExceedings reports device walks redone on the host since construction.
func (w *GPUWorkerLT) NumExceedings() uint64 { return w.numExceedings }

func (w *GPUWorkerLT) SvcLoop(head *atomic.Uint64, res []RRRSet) {
	n := uint64(len(res))
	batchSize := uint64(ltNumThreads)
	for {
		offset := head.Add(batchSize) - batchSize
		if offset >= n {
			return
		}
		w.batch(res[offset:utils.Min(offset+batchSize, n)])
	}
}

func (w *GPUWorkerLT) batch(seg []RRRSet) {
	var watch utils.Watch
	var tWalk, tD2H time.Duration
	if w.profile {
		watch.Start()
	}
	size := len(seg)
	p := &w.prof[len(w.prof)-1]

	walk.LTKernel(w.dg, w.states, w.dMask, ltMaskWords, size,
		device.Dim3{X: w.maxBlocks}, device.Dim3{X: ltBlockSize}, w.stream)
	if w.profile {
		w.stream.Synchronize()
		tWalk = watch.Elapsed()
	}

	device.CopyToHostWords(w.stream, w.mask[:size*ltMaskWords], w.dMask[:size*ltMaskWords])
	w.stream.Synchronize()
	if w.profile {
		tD2H = watch.Elapsed()
	}

	w.build(seg)

	p.n += uint64(size)
	if w.profile {
		total := watch.Elapsed()
		p.dWalk += tWalk
		p.dD2H += tD2H - tWalk
		p.dBuild += total - tD2H
		p.d += total
	}
}

// build turns each copied-back mask slot into a sorted RRR set, falling back
// to the host walk for overflowed slots.
func (w *GPUWorkerLT) build(seg []RRRSet) {
	sentinel := w.dg.Sentinel()
	p := &w.prof[len(w.prof)-1]
	for i := range seg {
		words := w.mask[i*ltMaskWords : (i+1)*ltMaskWords]
		if words[0] != sentinel {
			set := seg[i][:0]
			for j := 0; j < ltMaskWords && words[j] != sentinel; j++ {
				set = append(set, words[j])
			}
			sort.SliceStable(set, func(a, b int) bool { return set[a] < set[b] })
			seg[i] = set
		} else {
			root := words[1]
			w.numExceedings++
			p.numExceedings++
			walk.LTFromRoot(w.g, root, w.rng, &seg[i])
		}
	}
}

func (w *GPUWorkerLT) BeginProfIter() {
	w.prof = append(w.prof, iterProfile{})
}

func (w *GPUWorkerLT) LogProfIter(iter int) {
	w.prof[iter].logLine(KindGPU)
}
