// Package frame implements the line-framed sentence reader shared by
// serial-class inputs: it splits a byte stream on CR LF, drops
// oversize sentences, and pushes one senblk per delimited record.
package frame

import (
	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
)

// Reader accumulates bytes fed via Feed and emits complete sentences to
// a queue. It holds no transport reference; callers own the read loop
// and call Feed with whatever bytes the transport returned.
type Reader struct {
	src     int
	q       *squeue.Queue
	buf     [senblk.Max]byte
	count   int
	crSeen  bool
	overrun bool
}

// NewReader returns a framer that pushes completed sentences, tagged
// with src, onto q.
func NewReader(q *squeue.Queue, src int) *Reader {
	return &Reader{q: q, src: src}
}

// Feed processes one chunk of raw bytes, exactly as spec.md §4.4
// describes: only an LF immediately following a CR terminates a
// sentence. Every CR (including a second consecutive one) sets cr_seen;
// any other byte clears it without acting as a delimiter.
func (r *Reader) Feed(chunk []byte) {
	for _, b := range chunk {
		if r.count < senblk.Max {
			r.buf[r.count] = b
			r.count++
		} else {
			r.overrun = true
		}

		switch {
		case b == '\r':
			r.crSeen = true
		case b == '\n' && r.crSeen:
			if !r.overrun {
				var blk senblk.Block
				blk.Set(r.buf[:r.count], r.src)
				r.q.Push(&blk)
			}
			r.count = 0
			r.overrun = false
			r.crSeen = false
		default:
			r.crSeen = false
		}
	}
}
