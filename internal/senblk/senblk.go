// Package senblk defines the sentence block: the unit of traffic that
// flows through the multiplexer queues.
package senblk

// Max is the maximum length of an NMEA-0183 sentence, terminator included.
const Max = 82

// Block is a fixed-capacity record carrying one NMEA sentence, its length
// and the identity of the interface that produced it. Blocks are always
// copied by value into queue storage; callers never retain a pointer into
// a queue's arena once released.
type Block struct {
	Data [Max]byte
	Len  int
	Src  int // interface handle of the producing input, or -1
}

// Bytes returns the sentence payload.
func (b *Block) Bytes() []byte {
	return b.Data[:b.Len]
}

// Set copies src into the block, truncating to Max bytes.
func (b *Block) Set(src []byte, from int) {
	n := copy(b.Data[:], src)
	b.Len = n
	b.Src = from
}
