package main

import (
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"rrstream/graph"
	"rrstream/stream"
	"rrstream/utils"
	"rrstream/walk"
)

type options struct {
	GraphFile string
	RandSpec  string
	Theta     int
	NumCPU    int
	NumGPU    int
	GPUMap    string
	Seed      uint64
	Model     walk.Model
	Weighted  bool
	Profile   bool
}

// Declare your own flags before you call this function.
func flagsToOptions() (opts options) {
	graphPtr := flag.String("g", "", "Graph edge-list file (src dst [weight] per line).")
	randPtr := flag.String("rand", "", "Generate a random graph instead, as n:m (vertices:edges).")
	thetaPtr := flag.Int("theta", 100000, "Number of RRR sets to generate.")
	cpuPtr := flag.Int("t", 1, "CPU worker threads.")
	gpuPtr := flag.Int("gt", 0, "GPU worker threads. 0 disables the device path.")
	gmapPtr := flag.String("gmap", "", "Comma-separated worker slots for GPU workers. Empty maps CPU workers first, GPU workers after.")
	seedPtr := flag.Uint64("seed", 1, "Seed of the master RNG stream.")
	modelPtr := flag.String("model", "lt", "Diffusion model: lt or ic.")
	weightedPtr := flag.Bool("w", false, "Input file carries a weight column. Otherwise weights are 1/indegree.")
	profilePtr := flag.Bool("profile", false, "Collect and log per-worker phase timings, print memory stats.")
	debugPtr := flag.Int("debug", 0, "Adds extra debug output. Level 0 for info, 1 for debug, 2+ for trace.")
	colourPtr := flag.Bool("nc", false, "Removes the colouring from the log output.")
	flag.Parse()

	if *colourPtr {
		utils.SetLoggerConsole(true)
	}
	utils.SetLevel(*debugPtr)

	if *graphPtr == "" && *randPtr == "" {
		log.Info().Msg("Provide a graph with -g, or -rand n:m for a synthetic one.")
		flag.Usage()
		os.Exit(1)
	}

	var model walk.Model
	switch *modelPtr {
	case "lt":
		model = walk.LinearThreshold
	case "ic":
		model = walk.IndependentCascade
	default:
		log.Panic().Msg("Unknown model: " + *modelPtr)
	}

	if *thetaPtr <= 0 {
		log.Panic().Msg("Invalid theta.")
	}
	if *cpuPtr < 0 || *gpuPtr < 0 || *cpuPtr+*gpuPtr == 0 {
		log.Panic().Msg("Invalid worker counts.")
	}

	return options{
		GraphFile: *graphPtr,
		RandSpec:  *randPtr,
		Theta:     *thetaPtr,
		NumCPU:    *cpuPtr,
		NumGPU:    *gpuPtr,
		GPUMap:    *gmapPtr,
		Seed:      *seedPtr,
		Model:     model,
		Weighted:  *weightedPtr,
		Profile:   *profilePtr,
	}
}

func buildGraph(opts options) *graph.CSR {
	if opts.RandSpec != "" {
		parts := strings.SplitN(opts.RandSpec, ":", 2)
		if len(parts) != 2 {
			log.Panic().Msg("Bad -rand value, want n:m, got " + opts.RandSpec)
		}
		n := utils.ToIntStr(parts[0])
		m := utils.ToIntStr(parts[1])
		g := graph.Random(n, int(m), opts.Seed)
		g.UniformWeights()
		return g
	}

	edges, n := graph.LoadEdgeList(opts.GraphFile)
	g := graph.FromEdges(n, edges)
	// LT walks run on the reverse image; IC transposes internally.
	if opts.Model == walk.LinearThreshold {
		g = graph.Transpose(g)
	}
	if !opts.Weighted {
		if opts.Model == walk.LinearThreshold {
			g.UniformWeights()
		} else {
			// IC normalizes on the reverse image, where the weight of
			// (v <- u) is 1/indegree(v) in the input orientation.
			rev := graph.Transpose(g)
			rev.UniformWeights()
			g = graph.Transpose(rev)
		}
	}
	return g
}

func main() {
	opts := flagsToOptions()

	gpuSlots, err := stream.ParseGPUMapping(opts.GPUMap, opts.NumCPU+opts.NumGPU, opts.NumGPU)
	if err != nil {
		log.Error().Err(err).Msg("Invalid GPU mapping.")
		os.Exit(1)
	}

	g := buildGraph(opts)
	log.Info().Msg("Graph: " + utils.V(g.NumNodes()) + " vertices, " + utils.V(g.NumEdges()) + " edges. Model: " + opts.Model.String())

	gen, err := stream.NewGenerator(g, opts.Seed, stream.Options{
		NumCPU:   opts.NumCPU,
		NumGPU:   opts.NumGPU,
		GPUSlots: gpuSlots,
		Model:    opts.Model,
		Profile:  opts.Profile,
	})
	if err != nil {
		log.Error().Err(err).Msg("Generator construction failed.")
		os.Exit(1)
	}
	defer gen.Close()

	watch := utils.Watch{}
	watch.Start()
	res := gen.Generate(opts.Theta)
	elapsed := watch.Elapsed()

	sizes := make([]float64, len(res))
	for i := range res {
		sizes[i] = float64(len(res[i]))
	}
	log.Info().Msg("Generated " + utils.V(len(res)) + " RRR sets in " + utils.V(elapsed.Milliseconds()) + "ms" +
		" (" + utils.F("%.0f", float64(len(res))/elapsed.Seconds()) + " sets/s)")
	log.Info().Msg("Set size: mean " + utils.F("%.2f", stat.Mean(sizes, nil)) +
		" stddev " + utils.F("%.2f", stat.StdDev(sizes, nil)) +
		" median " + utils.V(utils.Median(sizes)) +
		" max " + utils.V(utils.MaxSlice(sizes)))
	if opts.NumGPU > 0 && opts.Model == walk.LinearThreshold {
		log.Info().Msg("Device walk exceedances: " + utils.V(gen.NumExceedings()))
	}
	if opts.Profile {
		utils.MemoryStats()
	}
}
