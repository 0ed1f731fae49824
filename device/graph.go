package device

import (
	"rrstream/graph"
)

// Graph is the device-resident CSR mirror. Built once per generation session
// when any device worker exists, read-only until Free. Workers reference it
// directly; it must outlive every stream that launches kernels over it.
type Graph struct {
	Offsets []uint32
	Edges   []uint32
	Weights []float64
	N       uint32
}

// UploadGraph copies the host CSR to the device.
func UploadGraph(g *graph.CSR) *Graph {
	dg := &Graph{
		Offsets: make([]uint32, len(g.Offsets)),
		Edges:   make([]uint32, len(g.Edges)),
		Weights: make([]float64, len(g.Weights)),
		N:       g.NumNodes(),
	}
	copy(dg.Offsets, g.Offsets)
	copy(dg.Edges, g.Edges)
	copy(dg.Weights, g.Weights)
	return dg
}

// Sentinel mirrors graph.CSR.Sentinel for kernels.
func (dg *Graph) Sentinel() uint32 {
	return dg.N
}

// Free releases the mirror.
func (dg *Graph) Free() {
	dg.Offsets = nil
	dg.Edges = nil
	dg.Weights = nil
}
