// Package stream is the heterogeneous streaming generator: a pool of CPU and
// device workers cooperatively drains one theta-sized output vector, each
// worker pulling contiguous slot ranges off a shared atomic cursor and
// filling them with walks produced on its preferred device.
package stream

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"rrstream/utils"
	"rrstream/walk"
)

// RRRSet re-exported for the generator's callers.
type RRRSet = walk.RRRSet

type WorkerKind uint8

const (
	KindCPU WorkerKind = iota
	KindGPU
)

func (k WorkerKind) String() string {
	if k == KindCPU {
		return "CPU-worker"
	}
	return "GPU-worker"
}

// Worker is one drain of the shared output vector. A worker owns its RNG
// sub-streams and scratch buffers outright; the cursor is the only state it
// shares. SvcLoop returns once a claim lands at or past len(res).
type Worker interface {
	SvcLoop(head *atomic.Uint64, res []RRRSet)
	Kind() WorkerKind
	BeginProfIter()
	LogProfIter(iter int)
}

// Per-iteration worker counters. Timings are only collected when profiling
// is enabled; set counts and exceedances are always maintained.
type iterProfile struct {
	n             uint64
	numExceedings uint64
	d             time.Duration
	dWalk         time.Duration
	dD2H          time.Duration
	dBuild        time.Duration
}

func (p *iterProfile) logLine(kind WorkerKind) {
	if p.n == 0 {
		log.Info().Msg("> idle worker")
		return
	}
	ms := p.d.Milliseconds()
	throughput := float64(0)
	if ms > 0 {
		throughput = float64(p.n) * 1e3 / float64(ms)
	}
	log.Info().Msg("n-sets=" + utils.V(p.n) + " ns=" + utils.V(p.d.Nanoseconds()) + " b=" + utils.F("%.1f", throughput))
	if kind == KindGPU {
		log.Info().Msg("walk=" + utils.V(p.dWalk.Nanoseconds()) + " d2h=" + utils.V(p.dD2H.Nanoseconds()) + " build=" + utils.V(p.dBuild.Nanoseconds()))
		if p.numExceedings > 0 {
			log.Info().Msg("n. exceedings=" + utils.V(p.numExceedings) + " (/" + utils.V(p.n) + "=" + utils.F("%.4f", float64(p.numExceedings)/float64(p.n)) + ")")
		}
	}
}
