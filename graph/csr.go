// Package graph holds the immutable CSR image that walks sample from.
// RRR walks run over the reverse graph. LT walks follow the CSR's out-edges
// as given, so callers transpose once at load time for LT; for IC the
// generator builds the transpose itself.
package graph

import (
	"rrstream/enforce"
)

type Edge struct {
	Src    uint32
	Dst    uint32
	Weight float64
}

// CSR is a compressed sparse row image of a weighted digraph. Immutable for
// the lifetime of any generator constructed over it.
type CSR struct {
	Offsets []uint32 // len NumNodes+1, edge offsets per vertex
	Edges   []uint32 // destination vertices
	Weights []float64
}

func (g *CSR) NumNodes() uint32 {
	return uint32(len(g.Offsets) - 1)
}

func (g *CSR) NumEdges() uint32 {
	return uint32(len(g.Edges))
}

// Sentinel is the out-of-range vertex id that marks "no vertex" inside
// packed device buffers.
func (g *CSR) Sentinel() uint32 {
	return g.NumNodes()
}

func (g *CSR) OutDegree(v uint32) uint32 {
	return g.Offsets[v+1] - g.Offsets[v]
}

// FromEdges builds a CSR over n vertices. Neighbor order per source vertex
// is the order edges appear in the input.
func FromEdges(n uint32, edges []Edge) *CSR {
	g := &CSR{
		Offsets: make([]uint32, n+1),
		Edges:   make([]uint32, len(edges)),
		Weights: make([]float64, len(edges)),
	}
	for i := range edges {
		enforce.ENFORCE(edges[i].Src < n && edges[i].Dst < n, "edge endpoint out of range: ", edges[i])
		g.Offsets[edges[i].Src+1]++
	}
	for v := uint32(0); v < n; v++ {
		g.Offsets[v+1] += g.Offsets[v]
	}
	next := make([]uint32, n)
	for i := range edges {
		s := edges[i].Src
		pos := g.Offsets[s] + next[s]
		next[s]++
		g.Edges[pos] = edges[i].Dst
		g.Weights[pos] = edges[i].Weight
	}
	return g
}

// Transpose returns the reverse graph. Edge weights move with their edge.
func Transpose(g *CSR) *CSR {
	n := g.NumNodes()
	edges := make([]Edge, 0, g.NumEdges())
	for v := uint32(0); v < n; v++ {
		for e := g.Offsets[v]; e < g.Offsets[v+1]; e++ {
			edges = append(edges, Edge{Src: g.Edges[e], Dst: v, Weight: g.Weights[e]})
		}
	}
	return FromEdges(n, edges)
}

// UniformWeights overwrites every vertex's out-edge weights with
// 1/outdegree. Applied to the transposed graph this is the usual
// normalization for LT and weighted-cascade IC inputs.
func (g *CSR) UniformWeights() {
	n := g.NumNodes()
	for v := uint32(0); v < n; v++ {
		deg := g.OutDegree(v)
		if deg == 0 {
			continue
		}
		w := 1.0 / float64(deg)
		for e := g.Offsets[v]; e < g.Offsets[v+1]; e++ {
			g.Weights[e] = w
		}
	}
}
