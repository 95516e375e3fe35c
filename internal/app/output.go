package app

import (
	"io"
	"sync"
)

// lockedWriter serializes writes from concurrently running actions and the
// logger sharing one output.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
