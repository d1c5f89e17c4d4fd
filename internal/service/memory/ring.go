package memory

import "github.com/sandevgo/medrag/internal/core"

// ring is a fixed-capacity FIFO of turns. Not safe for concurrent use.
type ring struct {
	buf   []core.Turn
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]core.Turn, capacity)}
}

func (r *ring) push(t core.Turn) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = t
		r.size++
		return
	}
	// full: overwrite the oldest slot and advance
	r.buf[r.start] = t
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) snapshot() []core.Turn {
	out := make([]core.Turn, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
