// Package device is a CPU-backed emulation of the device runtime the batched
// walk kernels were written against: per-worker streams with in-order task
// queues, packed word buffers, grid/block kernel launches, and a resident
// graph mirror. Work submitted to a stream is asynchronous to the submitting
// goroutine until Synchronize.
package device

import (
	"runtime"
	"sync"

	"rrstream/enforce"
)

// totalBlocks is the block budget of the emulated device; IC workers divide
// it among themselves so they can all be resident at once.
const totalBlocks = 512

func MaxBlocks() int { return totalBlocks }

// Dim3 sizes a grid or block. Walk kernels are one dimensional.
type Dim3 struct {
	X, Y, Z int
}

func (d Dim3) Size() int {
	size := d.X
	if d.Y > 0 {
		size *= d.Y
	}
	if d.Z > 0 {
		size *= d.Z
	}
	return size
}

// ThreadID identifies one thread of a launch.
type ThreadID struct {
	Block    int
	Thread   int
	BlockDim int
}

func (tid ThreadID) Global() int {
	return tid.Block*tid.BlockDim + tid.Thread
}

type KernelFunc func(tid ThreadID)

// Stream is an in-order task queue owned by exactly one worker. Tasks run on
// a dedicated goroutine; Synchronize blocks until everything submitted so
// far has completed.
type Stream struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

func NewStream() *Stream {
	s := &Stream{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

func (s *Stream) Synchronize() {
	s.wg.Wait()
}

func (s *Stream) Destroy() {
	s.wg.Wait()
	close(s.tasks)
	<-s.done
}

// LaunchFunc enqueues a kernel launch of grid x block threads on the stream.
// Blocks are spread over the host cores; every thread id in the launch is
// visited exactly once. The launch is complete only after Synchronize.
func LaunchFunc(s *Stream, grid, block Dim3, fn KernelFunc) {
	numBlocks := grid.Size()
	blockSize := block.Size()
	enforce.ENFORCE(numBlocks > 0 && blockSize > 0, "invalid launch configuration: ", grid, block)
	s.Submit(func() {
		workers := minInt(numBlocks, runtime.NumCPU())
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func(w int) {
				for b := w; b < numBlocks; b += workers {
					for t := 0; t < blockSize; t++ {
						fn(ThreadID{Block: b, Thread: t, BlockDim: blockSize})
					}
				}
				wg.Done()
			}(w)
		}
		wg.Wait()
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MallocWords allocates a device word buffer.
func MallocWords(n int) []uint32 {
	enforce.ENFORCE(n > 0, "device allocation of ", n, " words")
	return make([]uint32, n)
}

// MallocVertices allocates a device predecessor buffer.
func MallocVertices(n int) []int32 {
	enforce.ENFORCE(n > 0, "device allocation of ", n, " vertices")
	return make([]int32, n)
}

// CopyToHostWords enqueues a device-to-host copy on the stream. The host
// buffer is valid after the next Synchronize.
func CopyToHostWords(s *Stream, dst, src []uint32) {
	enforce.ENFORCE(len(dst) == len(src), "d2h size mismatch: ", len(dst), " != ", len(src))
	s.Submit(func() {
		copy(dst, src)
	})
}

// CopyToHostVertices enqueues a device-to-host copy of a predecessor buffer.
func CopyToHostVertices(s *Stream, dst, src []int32) {
	enforce.ENFORCE(len(dst) == len(src), "d2h size mismatch: ", len(dst), " != ", len(src))
	s.Submit(func() {
		copy(dst, src)
	})
}
