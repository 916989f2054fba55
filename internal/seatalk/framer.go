// Package seatalk implements the parity-error-delimited command reader
// for Seatalk instrument buses, and wraps a small Seatalk→NMEA
// translation table.
//
// Seatalk is carried on a serial line configured with SPACE parity so
// that command bytes arrive as parity errors; with PARMRK set, the
// kernel reports each parity error as the two-byte escape 0xFF 0x00
// immediately before the erroneous byte. The framer's only contract
// with the core is this escape-delimited read loop — the translation
// table itself is an external collaborator (spec.md §1).
package seatalk

import (
	"github.com/kplexgo/kplex/internal/nmea"
	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
)

type scanState int

const (
	scanEscape scanState = iota
	scanZero
	scanCmd
	scanAttr
	scanData
)

// Reader assembles Seatalk commands from a raw byte stream and pushes
// their NMEA translation, when one exists, to a queue.
type Reader struct {
	q   *squeue.Queue
	src int

	state     scanState
	cmd       byte
	attr      byte
	remaining int
	data      []byte

	translate func(cmd, attr byte, data []byte) ([]byte, bool)
}

// NewReader returns a Seatalk framer pushing translated sentences,
// tagged with src, onto q. translate performs the Seatalk→NMEA lookup;
// pass Translate for the built-in table.
func NewReader(q *squeue.Queue, src int, translate func(cmd, attr byte, data []byte) ([]byte, bool)) *Reader {
	return &Reader{q: q, src: src, translate: translate}
}

// Feed processes one chunk of raw bytes from the serial line.
func (r *Reader) Feed(chunk []byte) {
	for _, b := range chunk {
		switch r.state {
		case scanEscape:
			if b == 0xff {
				r.state = scanZero
			}
		case scanZero:
			switch b {
			case 0x00:
				r.state = scanCmd
			case 0xff:
				// stay in scanZero: a run of 0xff bytes keeps looking
				// for the terminating 0x00.
			default:
				r.state = scanEscape
			}
		case scanCmd:
			r.cmd = b
			r.state = scanAttr
		case scanAttr:
			r.attr = b
			r.remaining = int(b & 0x3f)
			r.data = r.data[:0]
			if r.remaining == 0 {
				r.emit()
			} else {
				r.state = scanData
			}
		case scanData:
			r.data = append(r.data, b)
			r.remaining--
			if r.remaining == 0 {
				r.emit()
			}
		}
	}
}

func (r *Reader) emit() {
	r.state = scanEscape
	body, ok := r.translate(r.cmd, r.attr, r.data)
	if !ok {
		return
	}
	var blk senblk.Block
	blk.Set(nmea.Frame(body), r.src)
	r.q.Push(&blk)
}
