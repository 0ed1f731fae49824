package stream

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseGPUMapping validates a user-supplied comma-separated list of worker
// slots that should host GPU workers. An empty string selects the default
// layout (CPU workers on the low slots, GPU workers after). The returned
// slots are sorted and unique.
func ParseGPUMapping(mapping string, totalWorkers, gpuWorkers int) ([]int, error) {
	if totalWorkers <= 0 || gpuWorkers > totalWorkers {
		return nil, fmt.Errorf("invalid number of streaming workers: %d total, %d gpu", totalWorkers, gpuWorkers)
	}
	if mapping == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	for _, token := range strings.Split(mapping, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid worker slot %q in GPU mapping", token)
		}
		if n >= totalWorkers {
			return nil, fmt.Errorf("worker slot %d out of range in GPU mapping (total %d)", n, totalWorkers)
		}
		seen[n] = true
	}
	if len(seen) != gpuWorkers {
		return nil, fmt.Errorf("invalid length of GPU mapping: %d slots for %d gpu workers", len(seen), gpuWorkers)
	}
	slots := make([]int, 0, len(seen))
	for n := range seen {
		slots = append(slots, n)
	}
	sort.Ints(slots)
	return slots, nil
}
