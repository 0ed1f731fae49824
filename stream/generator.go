package stream

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"rrstream/device"
	"rrstream/graph"
	"rrstream/rng"
	"rrstream/utils"
	"rrstream/walk"
)

type Options struct {
	NumCPU   int        // CPU worker threads
	NumGPU   int        // GPU worker threads; 0 disables the device path
	GPUSlots []int      // sorted unique slot indexes for GPU workers; empty = CPU first, GPU after
	Model    walk.Model // diffusion model; never mixed within one generator
	Profile  bool       // collect and log per-iteration worker timings
}

// Generator owns the worker pool, the shared cursor, and (when any GPU
// worker exists) the device graph mirror, from construction to Close.
type Generator struct {
	opts    Options
	workers []Worker
	gpuLT   []*GPUWorkerLT
	streams []*device.Stream
	dg      *device.Graph
	head    atomic.Uint64
	iters   int
}

// NewGenerator builds the worker pool over g. For LT the walks follow g's
// out-edges directly; for IC the generator builds the reverse image once, so
// callers hand over the same graph for either model.
//
// All RNG streams in the session derive from seed: the first NumCPU
// sub-streams feed the CPU workers, the next NumGPU feed the GPU workers'
// host-side draws, and the remainder fill the device state arrays in
// contiguous blocks per worker.
func NewGenerator(g *graph.CSR, seed uint64, opts Options) (*Generator, error) {
	if opts.NumCPU < 0 || opts.NumGPU < 0 || opts.NumCPU+opts.NumGPU == 0 {
		return nil, fmt.Errorf("invalid number of streaming workers: %d cpu, %d gpu", opts.NumCPU, opts.NumGPU)
	}
	total := opts.NumCPU + opts.NumGPU
	if len(opts.GPUSlots) != 0 {
		if len(opts.GPUSlots) != opts.NumGPU {
			return nil, fmt.Errorf("gpu mapping names %d slots for %d gpu workers", len(opts.GPUSlots), opts.NumGPU)
		}
		for i, slot := range opts.GPUSlots {
			if slot < 0 || slot >= total {
				return nil, fmt.Errorf("gpu mapping slot %d out of range", slot)
			}
			if i > 0 && opts.GPUSlots[i-1] >= slot {
				return nil, fmt.Errorf("gpu mapping slots must be sorted and unique")
			}
		}
	}

	gen := &Generator{opts: opts}
	walkGraph := g
	if opts.Model == walk.IndependentCascade {
		walkGraph = graph.Transpose(g)
	}

	master := rng.Master(seed)
	threadsPerGPU := 0
	maxBlocksIC := 0
	if opts.NumGPU > 0 {
		gen.dg = device.UploadGraph(walkGraph)
		if opts.Model == walk.LinearThreshold {
			threadsPerGPU = ltNumThreads
		} else {
			maxBlocksIC = device.MaxBlocks() / opts.NumGPU
			threadsPerGPU = maxBlocksIC * walk.TraverseBlockSize
		}
	}
	numSequences := uint64(opts.NumCPU) + uint64(opts.NumGPU)*uint64(threadsPerGPU+1)
	gpuSeqOffset := uint64(opts.NumCPU + opts.NumGPU)

	cpuWorkers := make([]Worker, 0, opts.NumCPU)
	for i := 0; i < opts.NumCPU; i++ {
		cpuWorkers = append(cpuWorkers, NewCPUWorker(walkGraph, opts.Model, master.Split(numSequences, uint64(i)), opts.Profile))
	}

	gpuWorkers := make([]Worker, 0, opts.NumGPU)
	for i := 0; i < opts.NumGPU; i++ {
		hostRng := master.Split(numSequences, uint64(opts.NumCPU+i))
		stream := device.NewStream()
		gen.streams = append(gen.streams, stream)
		firstSeq := gpuSeqOffset + uint64(i)*uint64(threadsPerGPU)
		if opts.Model == walk.LinearThreshold {
			w := NewGPUWorkerLT(walkGraph, gen.dg, hostRng, stream, opts.Profile)
			w.RngSetup(master, numSequences, firstSeq)
			gen.gpuLT = append(gen.gpuLT, w)
			gpuWorkers = append(gpuWorkers, w)
		} else {
			w := NewGPUWorkerIC(walkGraph, gen.dg, hostRng, stream, maxBlocksIC, opts.Profile)
			w.RngSetup(master, numSequences, firstSeq)
			gpuWorkers = append(gpuWorkers, w)
		}
	}

	// Map workers to their slots. Default is CPU low, GPU high.
	gen.workers = make([]Worker, 0, total)
	if len(opts.GPUSlots) == 0 {
		gen.workers = append(gen.workers, cpuWorkers...)
		gen.workers = append(gen.workers, gpuWorkers...)
	} else {
		cw, gw, m := 0, 0, 0
		for slot := 0; slot < total; slot++ {
			if m < len(opts.GPUSlots) && slot == opts.GPUSlots[m] {
				gen.workers = append(gen.workers, gpuWorkers[gw])
				gw++
				m++
			} else {
				gen.workers = append(gen.workers, cpuWorkers[cw])
				cw++
			}
		}
	}
	for slot, w := range gen.workers {
		log.Debug().Msg("mapping: slot=" + utils.V(slot) + " -> " + w.Kind().String())
	}
	return gen, nil
}

// Generate produces theta RRR sets. One goroutine per worker slot; the only
// coordination between them is the claim cursor.
func (gen *Generator) Generate(theta int) []RRRSet {
	res := make([]RRRSet, theta)
	gen.head.Store(0)
	for _, w := range gen.workers {
		w.BeginProfIter()
	}

	done := make(chan struct{}, len(gen.workers))
	for k := range gen.workers {
		go func(w Worker) {
			w.SvcLoop(&gen.head, res)
			done <- struct{}{}
		}(gen.workers[k])
	}
	for range gen.workers {
		<-done
	}
	gen.iters++
	return res
}

// WorkerKinds reports the slot to device-kind mapping.
func (gen *Generator) WorkerKinds() []WorkerKind {
	kinds := make([]WorkerKind, len(gen.workers))
	for i, w := range gen.workers {
		kinds[i] = w.Kind()
	}
	return kinds
}

// NumExceedings totals the LT device walks that overflowed their mask slot
// and were redone on the host.
func (gen *Generator) NumExceedings() (n uint64) {
	for _, w := range gen.gpuLT {
		n += w.NumExceedings()
	}
	return n
}

// Close logs the profile when enabled and tears down the device state.
func (gen *Generator) Close() {
	if gen.opts.Profile {
		log.Info().Msg("*** BEGIN streaming engine profile")
		for iter := 0; iter < gen.iters; iter++ {
			log.Info().Msg("+++ iter " + utils.V(iter))
			for slot, w := range gen.workers {
				log.Info().Msg("--- slot " + utils.V(slot) + " (" + w.Kind().String() + ")")
				w.LogProfIter(iter)
			}
		}
		log.Info().Msg("*** END streaming engine profile")
	}
	for _, s := range gen.streams {
		s.Destroy()
	}
	gen.streams = nil
	if gen.dg != nil {
		gen.dg.Free()
		gen.dg = nil
	}
}
