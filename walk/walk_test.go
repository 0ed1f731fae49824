package walk

import (
	"sort"
	"testing"

	"rrstream/graph"
	"rrstream/rng"
)

func chain(n uint32) *graph.CSR {
	edges := make([]graph.Edge, 0, n-1)
	for v := uint32(0); v < n-1; v++ {
		edges = append(edges, graph.Edge{Src: v, Dst: v + 1, Weight: 1.0})
	}
	return graph.FromEdges(n, edges)
}

func sorted(set RRRSet) bool {
	return sort.SliceIsSorted(set, func(i, j int) bool { return set[i] < set[j] })
}

func TestLTChainIsSuffixInterval(t *testing.T) {
	g := chain(5)
	s := rng.Master(1).Split(1, 0)
	var set RRRSet
	for root := uint32(0); root < 5; root++ {
		LTFromRoot(g, root, s, &set)
		if uint32(len(set)) != 5-root {
			t.Fatal("root ", root, " expected interval to 4, got ", set)
		}
		for i, v := range set {
			if v != root+uint32(i) {
				t.Fatal("root ", root, " expected contiguous interval, got ", set)
			}
		}
		if !sorted(set) {
			t.Error("set not sorted: ", set)
		}
	}
}

func TestLTSinkTerminates(t *testing.T) {
	g := chain(2)
	s := rng.Master(2).Split(1, 0)
	var set RRRSet
	LTFromRoot(g, 1, s, &set)
	if len(set) != 1 || set[0] != 1 {
		t.Error("sink root should yield only itself, got ", set)
	}
}

func TestLTSelfLoopTerminates(t *testing.T) {
	g := graph.FromEdges(2, []graph.Edge{{Src: 0, Dst: 0, Weight: 1.0}})
	s := rng.Master(3).Split(1, 0)
	var set RRRSet
	for i := 0; i < 100; i++ {
		LTFromRoot(g, 0, s, &set)
		if len(set) != 1 || set[0] != 0 {
			t.Fatal("selected self loop must terminate the walk, got ", set)
		}
	}
}

func TestLTNoActivationBelowThreshold(t *testing.T) {
	// Weight sum is 0, so no edge can drive the threshold to zero.
	g := graph.FromEdges(3, []graph.Edge{{Src: 0, Dst: 1, Weight: 0.0}, {Src: 0, Dst: 2, Weight: 0.0}})
	s := rng.Master(4).Split(1, 0)
	var set RRRSet
	for i := 0; i < 100; i++ {
		LTFromRoot(g, 0, s, &set)
		if len(set) != 1 {
			t.Fatal("zero weights must never activate, got ", set)
		}
	}
}

// Star with the center as walk target: walking from the center reaches all
// leaves, walking from a leaf reaches only itself. This is the reverse image
// of a star-in graph, which is how the generator hands IC its input.
func TestICStar(t *testing.T) {
	g := graph.FromEdges(4, []graph.Edge{
		{Src: 0, Dst: 1, Weight: 1.0},
		{Src: 0, Dst: 2, Weight: 1.0},
		{Src: 0, Dst: 3, Weight: 1.0},
	})
	s := rng.Master(5).Split(1, 0)
	var set RRRSet
	ICFromRoot(g, 0, s, &set)
	if len(set) != 4 {
		t.Fatal("root 0 should reach every leaf, got ", set)
	}
	for i, v := range set {
		if v != uint32(i) {
			t.Fatal("expected {0,1,2,3}, got ", set)
		}
	}
	for root := uint32(1); root < 4; root++ {
		ICFromRoot(g, root, s, &set)
		if len(set) != 1 || set[0] != root {
			t.Error("leaf root ", root, " should reach only itself, got ", set)
		}
	}
}

func TestICZeroWeightNeverSpreads(t *testing.T) {
	g := graph.FromEdges(3, []graph.Edge{{Src: 0, Dst: 1, Weight: 0.0}, {Src: 1, Dst: 2, Weight: 0.0}})
	s := rng.Master(6).Split(1, 0)
	var set RRRSet
	for i := 0; i < 100; i++ {
		ICFromRoot(g, 0, s, &set)
		if len(set) != 1 {
			t.Fatal("zero weights must never spread, got ", set)
		}
	}
}

func TestWalksReproducibleForFixedStream(t *testing.T) {
	g := graph.Random(64, 256, 9)
	g.UniformWeights()
	for _, model := range []Model{LinearThreshold, IndependentCascade} {
		a := rng.Master(11).Split(2, 1)
		b := rng.Master(11).Split(2, 1)
		var x, y RRRSet
		for i := 0; i < 200; i++ {
			root := a.UInt32n(g.NumNodes())
			if r := b.UInt32n(g.NumNodes()); r != root {
				t.Fatal("streams diverged on root draw")
			}
			AddRRRSet(g, root, a, &x, model)
			AddRRRSet(g, root, b, &y, model)
			if len(x) != len(y) {
				t.Fatal(model.String(), " walk not reproducible: ", x, " vs ", y)
			}
			for j := range x {
				if x[j] != y[j] {
					t.Fatal(model.String(), " walk not reproducible: ", x, " vs ", y)
				}
			}
		}
	}
}

func TestWalkSetsWellFormed(t *testing.T) {
	g := graph.Random(100, 500, 13)
	g.UniformWeights()
	s := rng.Master(17).Split(1, 0)
	var set RRRSet
	for _, model := range []Model{LinearThreshold, IndependentCascade} {
		for i := 0; i < 500; i++ {
			root := s.UInt32n(g.NumNodes())
			AddRRRSet(g, root, s, &set, model)
			if !sorted(set) {
				t.Fatal("unsorted set: ", set)
			}
			for j := 1; j < len(set); j++ {
				if set[j] == set[j-1] {
					t.Fatal("duplicate in set: ", set)
				}
			}
			for _, v := range set {
				if v >= g.NumNodes() {
					t.Fatal("vertex out of range: ", v)
				}
			}
			if !contains(set, root) {
				t.Fatal("set must contain its root")
			}
		}
	}
}
