package utils

import "time"

// Watch times one worker's batch phases. A watch is strictly private to the
// worker that starts it, so reads need no locking.
type Watch struct {
	startTime time.Time
}

func (w *Watch) Start() {
	w.startTime = time.Now()
}

func (w *Watch) Elapsed() time.Duration {
	return time.Since(w.startTime)
}
