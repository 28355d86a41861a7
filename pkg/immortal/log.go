package immortal

import (
	"context"
	"sync"
	"time"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/trace"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Log is the immortal log: every mutation accepted by a Handle is appended
// here, hash-chained to the entry before it. Writes that allocate an id
// (add, link, correct, promote) are appended after the graph store has
// accepted them; compaction is appended before its nodes are purged. It
// owns the active WAL and notifies an optional ghost writer sink on every
// append (spec.md §4.9).
type Log struct {
	mu       sync.Mutex
	wal      *WAL
	lastHash [32]byte
	nextSeq  uint64
	ghost    trace.Exporter
}

// Open opens or creates the immortal log rooted at dir, replaying existing
// segments to recover the last sequence number and hash.
func Open(dir string) (*Log, error) {
	wal, err := OpenWAL(dir, DefaultSegmentSize)
	if err != nil {
		return nil, err
	}
	l := &Log{wal: wal, lastHash: GenesisHash}

	segments, err := ListSegments(dir)
	if err != nil {
		return nil, err
	}
	for _, n := range segments {
		err := ReadSegment(SegmentPath(dir, n), func(e Entry) error {
			if !e.Verify() {
				return errs.New(errs.KindIntegrityFailed, "immortal: entry %d fails hash verification", e.Sequence)
			}
			l.lastHash = e.Hash
			l.nextSeq = e.Sequence + 1
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

// WithGhostWriter attaches a trace.Exporter that receives a sanitized
// notification for every appended entry. It never participates in the
// durability path: export errors are discarded and never returned from
// Append, so a broken sink cannot stall writes.
func (l *Log) WithGhostWriter(exporter trace.Exporter) *Log {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ghost = exporter
	return l
}

// Append hash-chains, frames, and writes one operation to the WAL's
// buffer, notifying the ghost writer sink (if any) afterward. The entry
// reaches disk at the next Checkpoint, segment rotation, or Close.
// Returns the new entry's sequence number.
func (l *Log) Append(ctx context.Context, op OpTag, payload any) (uint64, error) {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return 0, errs.Wrap(errs.KindInvalidArgument, err, "immortal: marshal payload")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.nextSeq
	entry := NewEntry(seq, op, data, l.lastHash)

	start := time.Now()
	if err := l.wal.Append(entry); err != nil {
		return 0, errs.Wrap(errs.KindIO, err, "immortal: append wal entry")
	}
	l.lastHash = entry.Hash
	l.nextSeq++

	if l.ghost != nil {
		record := &trace.TraceRecord{
			Timestamp:   start,
			OperationID: uuid.NewString(),
			Operation:   string(op),
			DurationMs:  time.Since(start).Milliseconds(),
			Status:      "success",
			IDs:         map[string]interface{}{"sequence": seq},
		}
		_ = l.ghost.Export(ctx, record) // best-effort, never blocks durability
	}
	return seq, nil
}

// Checkpoint fsyncs the active WAL segment. Callers should checkpoint
// after a consolidation or compaction pass so recovery never needs to
// replay past a known-good boundary.
func (l *Log) Checkpoint() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wal.Sync()
}

// Close flushes and closes the log, including the ghost writer sink.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ghost != nil {
		_ = l.ghost.Close()
	}
	return l.wal.Close()
}

// LastHash returns the hash of the most recently appended entry (or
// GenesisHash if the log is empty), for callers that want to verify
// external chain continuity.
func (l *Log) LastHash() [32]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastHash
}

// NextSequence returns the sequence number the next Append will use.
func (l *Log) NextSequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq
}

// Replay walks every entry across all segments under dir, oldest first,
// verifying the hash chain and invoking fn for each entry. It stops and
// returns an error at the first entry that fails its own hash check or
// breaks the chain. A CRC mismatch or truncated frame ends reading of
// that segment without an error (see ReadSegment); if a later segment
// follows, its first entry then no longer chains and Replay returns an
// error there.
func Replay(dir string, fn func(Entry) error) error {
	segments, err := ListSegments(dir)
	if err != nil {
		return err
	}
	prevHash := GenesisHash
	for _, n := range segments {
		err := ReadSegment(SegmentPath(dir, n), func(e Entry) error {
			if !e.Verify() {
				return errs.New(errs.KindIntegrityFailed, "immortal: entry %d fails self-verification", e.Sequence)
			}
			if e.PrevHash != prevHash {
				return errs.New(errs.KindIntegrityFailed, "immortal: entry %d breaks hash chain", e.Sequence)
			}
			prevHash = e.Hash
			return fn(e)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
