package graph

import (
	"sort"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/graph/simple"

	"rrstream/enforce"
)

// Random generates a simple weighted digraph with n vertices and m edges,
// uniformly among vertex pairs without self loops or duplicates. Used by the
// CLI harness and the statistical tests.
func Random(n uint32, m int, seed uint64) *CSR {
	enforce.ENFORCE(n > 1 && m <= int(n)*int(n-1), "impossible random graph: ", n, " vertices ", m, " edges")
	g := simple.NewWeightedDirectedGraph(0, 0)
	for i := uint32(0); i < n; i++ {
		node, _ := g.NodeWithID(int64(i))
		g.AddNode(node)
	}

	rnd := rand.New(rand.NewSource(seed))
	for g.WeightedEdges().Len() < m {
		src := int64(rnd.Intn(int(n)))
		dst := int64(rnd.Intn(int(n)))
		if src == dst || g.HasEdgeFromTo(src, dst) {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(g.Node(src), g.Node(dst), 1.0))
	}

	edges := make([]Edge, 0, m)
	it := g.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		edges = append(edges, Edge{Src: uint32(e.From().ID()), Dst: uint32(e.To().ID()), Weight: e.Weight()})
	}
	// The iteration order above is not stable; sort so a seed maps to one CSR.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Src != edges[j].Src {
			return edges[i].Src < edges[j].Src
		}
		return edges[i].Dst < edges[j].Dst
	})
	return FromEdges(n, edges)
}
