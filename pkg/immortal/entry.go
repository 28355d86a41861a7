// Package immortal implements the append-only write log that records every
// mutation a Handle applies to the graph store: a BLAKE3
// hash-chained history, a CRC32-framed WAL for crash recovery, tiered
// storage as entries age, and a pluggable "ghost writer" notification sink
// (spec.md §4.9).
package immortal

import "github.com/zeebo/blake3"

// OpTag identifies the kind of mutation an Entry records.
type OpTag string

const (
	OpAdd         OpTag = "add"
	OpLink        OpTag = "link"
	OpDelete      OpTag = "delete"
	OpCorrect     OpTag = "correct"
	OpConsolidate OpTag = "consolidate"
	OpCompact     OpTag = "compact"
)

// Entry is one immortal log record. Hash chains to the previous entry via
// BLAKE3 so any tampering with history is detectable by replay.
type Entry struct {
	Sequence  uint64
	Op        OpTag
	Payload   []byte // msgpack-encoded operation data
	PrevHash  [32]byte
	Hash      [32]byte
}

// NewEntry builds an Entry chained to prevHash, computing its own Hash as
// BLAKE3(prevHash || op || payload).
func NewEntry(sequence uint64, op OpTag, payload []byte, prevHash [32]byte) Entry {
	e := Entry{Sequence: sequence, Op: op, Payload: payload, PrevHash: prevHash}
	e.Hash = computeHash(prevHash, op, payload)
	return e
}

func computeHash(prevHash [32]byte, op OpTag, payload []byte) [32]byte {
	h := blake3.New()
	h.Write(prevHash[:])
	h.Write([]byte(op))
	h.Write(payload)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Verify reports whether e.Hash is consistent with e.PrevHash, e.Op, and
// e.Payload.
func (e Entry) Verify() bool {
	return computeHash(e.PrevHash, e.Op, e.Payload) == e.Hash
}

// GenesisHash is the PrevHash of the first entry in a fresh log.
var GenesisHash [32]byte
