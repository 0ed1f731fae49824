// Package walk implements the two diffusion models, each in a host flavor
// (one RRR set per call) and a device flavor (a batch of sets per launch).
package walk

import (
	"sort"

	"rrstream/enforce"
	"rrstream/graph"
	"rrstream/rng"
)

// MaxSetSize bounds a host walk. A walk that would grow past this many
// distinct vertices is a data-integrity failure for the intended inputs, so
// it halts the run.
const MaxSetSize = 256

// RRRSet is one Reverse Reachable set: distinct vertex ids, sorted ascending
// on return from any walk.
type RRRSet []uint32

// Model selects the diffusion rule at generator construction. The two models
// never mix within one generator.
type Model uint8

const (
	LinearThreshold Model = iota
	IndependentCascade
)

func (m Model) String() string {
	if m == LinearThreshold {
		return "LT"
	}
	return "IC"
}

func contains(set RRRSet, v uint32) bool {
	for i := range set {
		if set[i] == v {
			return true
		}
	}
	return false
}

// LTFromRoot runs one reverse Linear-Threshold walk from root. At each
// visited vertex a threshold in (0,1] is drawn and out-edge weights are
// subtracted in CSR order; the first edge driving it to <= 0 names the next
// vertex. The walk stops on no activation, on revisit (which covers selected
// self loops), or at a sink.
func LTFromRoot(g *graph.CSR, root uint32, s rng.Stream, set *RRRSet) {
	sentinel := g.Sentinel()
	*set = append((*set)[:0], root)
	cur := root
	for {
		threshold := s.Uniform()
		next := sentinel
		for e := g.Offsets[cur]; e < g.Offsets[cur+1]; e++ {
			threshold -= g.Weights[e]
			if threshold <= 0 {
				next = g.Edges[e]
				break
			}
		}
		if next == sentinel || contains(*set, next) {
			break
		}
		enforce.ENFORCE(len(*set) < MaxSetSize, "walk exceeded ", MaxSetSize, " vertices from root ", root)
		*set = append(*set, next)
		cur = next
	}
	sort.Slice(*set, func(i, j int) bool { return (*set)[i] < (*set)[j] })
}

// ICFromRoot runs one reverse Independent-Cascade walk from root: a frontier
// BFS where each out-edge is kept with its own probability. The set is every
// vertex reached, root included.
func ICFromRoot(g *graph.CSR, root uint32, s rng.Stream, set *RRRSet) {
	*set = append((*set)[:0], root)
	for head := 0; head < len(*set); head++ {
		cur := (*set)[head]
		for e := g.Offsets[cur]; e < g.Offsets[cur+1]; e++ {
			v := g.Edges[e]
			if s.UniformCO() <= g.Weights[e] && !contains(*set, v) {
				enforce.ENFORCE(len(*set) < MaxSetSize, "walk exceeded ", MaxSetSize, " vertices from root ", root)
				*set = append(*set, v)
			}
		}
	}
	sort.Slice(*set, func(i, j int) bool { return (*set)[i] < (*set)[j] })
}

// AddRRRSet dispatches on the diffusion model.
func AddRRRSet(g *graph.CSR, root uint32, s rng.Stream, set *RRRSet, model Model) {
	if model == LinearThreshold {
		LTFromRoot(g, root, s, set)
	} else {
		ICFromRoot(g, root, s, set)
	}
}
