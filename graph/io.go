package graph

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"rrstream/utils"
)

// LoadEdgeList reads a whitespace separated "src dst [weight]" file.
// Lines starting with '#' are comments. Vertex ids are taken as-is; the
// vertex count is one past the largest id seen. Edges without a weight
// column get weight 0 (callers normalize with UniformWeights).
func LoadEdgeList(path string) (edges []Edge, n uint32) {
	file := utils.OpenFile(path)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			log.Panic().Msg("Bad edge at line " + utils.V(lines) + ": " + line)
		}
		src := utils.ToIntStr(fields[0])
		dst := utils.ToIntStr(fields[1])
		weight := 0.0
		if len(fields) >= 3 {
			w, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				log.Panic().Err(err).Msg("Bad weight at line " + utils.V(lines))
			}
			weight = w
		}
		edges = append(edges, Edge{Src: src, Dst: dst, Weight: weight})
		n = utils.Max(n, utils.Max(src, dst)+1)
	}
	log.Info().Msg("Loaded edges: " + utils.V(len(edges)) + " vertices: " + utils.V(n))
	return edges, n
}
