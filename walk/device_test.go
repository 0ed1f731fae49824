package walk

import (
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"rrstream/device"
	"rrstream/graph"
	"rrstream/rng"
)

const testMaskWords = 8

func launchLT(t *testing.T, g *graph.CSR, states []rng.Stream, size int) []uint32 {
	t.Helper()
	dg := device.UploadGraph(g)
	defer dg.Free()
	stream := device.NewStream()
	defer stream.Destroy()

	dMask := device.MallocWords(size * testMaskWords)
	mask := make([]uint32, size*testMaskWords)
	grid := device.Dim3{X: (size + 255) / 256}
	block := device.Dim3{X: 256}
	LTKernel(dg, states, dMask, testMaskWords, size, grid, block, stream)
	device.CopyToHostWords(stream, mask, dMask)
	stream.Synchronize()
	return mask
}

func deviceStates(total int, seed uint64) []rng.Stream {
	master := rng.Master(seed)
	states := make([]rng.Stream, total)
	for i := range states {
		states[i] = master.Split(uint64(total), uint64(i))
	}
	return states
}

func TestLTKernelChainEncoding(t *testing.T) {
	g := chain(5)
	size := 512
	mask := launchLT(t, g, deviceStates(size, 21), size)
	sentinel := g.Sentinel()
	for i := 0; i < size; i++ {
		words := mask[i*testMaskWords : (i+1)*testMaskWords]
		if words[0] == sentinel {
			t.Fatal("no walk on a 5-chain can overflow 8 words")
		}
		// Visit order on the chain is root, root+1, ... 4, then sentinels.
		root := words[0]
		want := 5 - root
		for j := uint32(0); j < uint32(testMaskWords); j++ {
			if j < want {
				if words[j] != root+j {
					t.Fatal("slot ", i, " bad visit order: ", words)
				}
			} else if words[j] != sentinel {
				t.Fatal("slot ", i, " missing sentinel padding: ", words)
			}
		}
	}
}

func TestLTKernelOverflowPreservesRoot(t *testing.T) {
	// A 32-chain forces every walk rooted before vertex 24 past 8 words.
	g := chain(32)
	size := 1024
	mask := launchLT(t, g, deviceStates(size, 22), size)
	sentinel := g.Sentinel()
	overflows := 0
	for i := 0; i < size; i++ {
		words := mask[i*testMaskWords : (i+1)*testMaskWords]
		if words[0] == sentinel {
			overflows++
			if words[1] >= g.NumNodes() {
				t.Fatal("overflow slot must preserve a valid root, got ", words[1])
			}
			if words[1] >= 32-testMaskWords {
				t.Fatal("root ", words[1], " cannot overflow an 8-word slot on a 32-chain")
			}
		}
	}
	if overflows == 0 {
		t.Fatal("expected overflows on a 32-chain")
	}
}

func TestLTKernelMatchesHostSizes(t *testing.T) {
	// Host and device LT must produce indistinguishable set-size
	// distributions when nothing overflows. Chi-square over size buckets.
	// Weights are kept small so walks stay far below the mask width.
	g := graph.Random(200, 800, 31)
	for i := range g.Weights {
		g.Weights[i] = 0.05
	}
	const walks = 1 << 14

	states := deviceStates(walks, 33)
	mask := launchLT(t, g, states, walks)
	sentinel := g.Sentinel()
	devCounts := make([]float64, testMaskWords+1)
	for i := 0; i < walks; i++ {
		words := mask[i*testMaskWords : (i+1)*testMaskWords]
		if words[0] == sentinel {
			t.Fatal("overflow in a test calibrated for none")
		}
		n := 0
		for n < testMaskWords && words[n] != sentinel {
			n++
		}
		devCounts[n]++
	}

	hostCounts := make([]float64, MaxSetSize+1)
	s := rng.Master(34).Split(1, 0)
	var set RRRSet
	for i := 0; i < walks; i++ {
		root := s.UInt32n(g.NumNodes())
		LTFromRoot(g, root, s, &set)
		hostCounts[len(set)]++
	}

	// Skip sparse buckets, then chi-square on host-expected frequencies.
	chi2 := 0.0
	df := 0
	for n := 1; n <= testMaskWords; n++ {
		if hostCounts[n] < 8 {
			continue
		}
		diff := devCounts[n] - hostCounts[n]
		chi2 += diff * diff / hostCounts[n]
		df++
	}
	if df < 2 {
		t.Skip("degenerate size distribution")
	}
	limit := distuv.ChiSquared{K: float64(df - 1)}.Quantile(0.999)
	if chi2 > limit {
		t.Error("host/device LT size distributions diverge: chi2=", chi2, " limit=", limit,
			" host=", hostCounts, " dev=", devCounts)
	}
}

func TestBFSSolverStar(t *testing.T) {
	g := graph.FromEdges(4, []graph.Edge{
		{Src: 0, Dst: 1, Weight: 1.0},
		{Src: 0, Dst: 2, Weight: 1.0},
		{Src: 0, Dst: 3, Weight: 1.0},
	})
	dg := device.UploadGraph(g)
	defer dg.Free()
	stream := device.NewStream()
	defer stream.Destroy()

	maxBlocks := 2
	solver := NewBFSSolver(dg, maxBlocks, stream)
	solver.Rng(deviceStates(maxBlocks*TraverseBlockSize, 41))
	dPred := device.MallocVertices(int(dg.N))
	solver.Configure(dPred)

	pred := make([]int32, dg.N)
	solver.Traverse(0)
	device.CopyToHostVertices(stream, pred, dPred)
	stream.Synchronize()
	if pred[0] != -1 {
		t.Error("root entry is patched by the host, solver must leave it -1")
	}
	for v := 1; v < 4; v++ {
		if pred[v] != 0 {
			t.Error("leaf ", v, " should be reached from 0, pred=", pred[v])
		}
	}

	solver.Traverse(2)
	device.CopyToHostVertices(stream, pred, dPred)
	stream.Synchronize()
	for v := 0; v < 4; v++ {
		if pred[v] != -1 {
			t.Error("sink root reaches nothing, pred[", v, "]=", pred[v])
		}
	}
}

func TestBFSSolverDeterministic(t *testing.T) {
	g := graph.Random(80, 400, 43)
	g.UniformWeights()
	dg := device.UploadGraph(g)
	defer dg.Free()

	run := func() []int32 {
		stream := device.NewStream()
		defer stream.Destroy()
		maxBlocks := 4
		solver := NewBFSSolver(dg, maxBlocks, stream)
		solver.Rng(deviceStates(maxBlocks*TraverseBlockSize, 44))
		dPred := device.MallocVertices(int(dg.N))
		solver.Configure(dPred)
		out := make([]int32, 0, 10*dg.N)
		pred := make([]int32, dg.N)
		for root := uint32(0); root < 10; root++ {
			solver.Traverse(root)
			device.CopyToHostVertices(stream, pred, dPred)
			stream.Synchronize()
			out = append(out, pred...)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("solver not deterministic for fixed states at ", i)
		}
	}
}
