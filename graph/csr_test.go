package graph

import (
	"testing"
)

func chainEdges() []Edge {
	// 0->1->2->3->4
	return []Edge{
		{Src: 0, Dst: 1, Weight: 1.0},
		{Src: 1, Dst: 2, Weight: 1.0},
		{Src: 2, Dst: 3, Weight: 1.0},
		{Src: 3, Dst: 4, Weight: 1.0},
	}
}

func TestFromEdges(t *testing.T) {
	g := FromEdges(5, chainEdges())
	if g.NumNodes() != 5 || g.NumEdges() != 4 {
		t.Fatal("wrong sizes: ", g.NumNodes(), g.NumEdges())
	}
	if g.Sentinel() != 5 {
		t.Error("sentinel should equal vertex count")
	}
	for v := uint32(0); v < 4; v++ {
		if g.OutDegree(v) != 1 || g.Edges[g.Offsets[v]] != v+1 {
			t.Error("vertex ", v, " should have one edge to ", v+1)
		}
	}
	if g.OutDegree(4) != 0 {
		t.Error("vertex 4 should be a sink")
	}
}

func TestNeighborOrderPreserved(t *testing.T) {
	g := FromEdges(4, []Edge{
		{Src: 0, Dst: 3, Weight: 0.1},
		{Src: 0, Dst: 1, Weight: 0.2},
		{Src: 0, Dst: 2, Weight: 0.3},
	})
	want := []uint32{3, 1, 2}
	for i, dst := range want {
		if g.Edges[g.Offsets[0]+uint32(i)] != dst {
			t.Error("neighbor scan order must match insertion order, got ", g.Edges[g.Offsets[0]:g.Offsets[1]])
			break
		}
	}
}

func TestTranspose(t *testing.T) {
	g := FromEdges(5, chainEdges())
	tr := Transpose(g)
	for v := uint32(1); v < 5; v++ {
		if tr.OutDegree(v) != 1 || tr.Edges[tr.Offsets[v]] != v-1 {
			t.Error("transposed vertex ", v, " should point to ", v-1)
		}
	}
	if tr.OutDegree(0) != 0 {
		t.Error("transposed vertex 0 should be a sink")
	}
}

func TestUniformWeights(t *testing.T) {
	g := FromEdges(4, []Edge{
		{Src: 1, Dst: 0}, {Src: 1, Dst: 2}, {Src: 1, Dst: 3},
		{Src: 2, Dst: 0},
	})
	g.UniformWeights()
	for e := g.Offsets[1]; e < g.Offsets[2]; e++ {
		if g.Weights[e] != 1.0/3.0 {
			t.Error("expected 1/3 weight, got ", g.Weights[e])
		}
	}
	if g.Weights[g.Offsets[2]] != 1.0 {
		t.Error("expected weight 1 for single out-edge")
	}
}

func TestRandom(t *testing.T) {
	g := Random(50, 200, 1)
	if g.NumNodes() != 50 || g.NumEdges() != 200 {
		t.Fatal("wrong random graph size: ", g.NumNodes(), g.NumEdges())
	}
	for v := uint32(0); v < g.NumNodes(); v++ {
		seen := make(map[uint32]bool)
		for e := g.Offsets[v]; e < g.Offsets[v+1]; e++ {
			if g.Edges[e] == v {
				t.Error("self loop at ", v)
			}
			if seen[g.Edges[e]] {
				t.Error("duplicate edge ", v, "->", g.Edges[e])
			}
			seen[g.Edges[e]] = true
		}
	}
	// Same seed, same graph.
	h := Random(50, 200, 1)
	for i := range g.Edges {
		if g.Edges[i] != h.Edges[i] {
			t.Fatal("random graph not reproducible for fixed seed")
		}
	}
}
