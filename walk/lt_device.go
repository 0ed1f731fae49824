package walk

import (
	"rrstream/device"
	"rrstream/rng"
)

// LTKernel launches the batched Linear-Threshold kernel: one walk per device
// thread, each thread drawing its root and every threshold from its own
// state slot. Thread i writes visit-order vertex ids into the maskWords-wide
// slot mask[i*maskWords:], terminated by the sentinel when shorter than the
// slot. A walk that would exceed the slot instead records the sentinel in
// word 0 and its root in word 1, deferring completion to the host.
func LTKernel(dg *device.Graph, states []rng.Stream, mask []uint32, maskWords int,
	size int, grid, block device.Dim3, stream *device.Stream) {
	sentinel := dg.Sentinel()
	device.LaunchFunc(stream, grid, block, func(tid device.ThreadID) {
		i := tid.Global()
		if i >= size {
			return
		}
		s := states[i]
		words := mask[i*maskWords : (i+1)*maskWords]

		root := s.UInt32n(dg.N)
		words[0] = root
		count := 1
		cur := root
		for {
			threshold := s.Uniform()
			next := sentinel
			for e := dg.Offsets[cur]; e < dg.Offsets[cur+1]; e++ {
				threshold -= dg.Weights[e]
				if threshold <= 0 {
					next = dg.Edges[e]
					break
				}
			}
			if next == sentinel {
				break
			}
			revisit := false
			for j := 0; j < count; j++ {
				if words[j] == next {
					revisit = true
					break
				}
			}
			if revisit {
				break
			}
			if count == maskWords {
				// Slot overflow: keep only the root so the host can redo the walk.
				words[0] = sentinel
				words[1] = root
				return
			}
			words[count] = next
			count++
			cur = next
		}
		for j := count; j < maskWords; j++ {
			words[j] = sentinel
		}
	})
}
