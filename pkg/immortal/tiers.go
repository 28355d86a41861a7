package immortal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Tier names the storage tier an entry currently lives in, by age
// (spec.md §4.9).
type Tier int

const (
	// TierHot entries are under 24h old and held in memory for fast access.
	TierHot Tier = iota
	// TierWarm entries are under 30 days old and live in uncompressed WAL segments.
	TierWarm
	// TierCold entries are under 1 year old and live in zstd-compressed segments.
	TierCold
	// TierFrozen entries are a year or older and live in monthly merged archives,
	// addressable only through a FrozenIndex (no per-entry hot path).
	TierFrozen
)

const (
	hotWindow  = 24 * time.Hour
	warmWindow = 30 * 24 * time.Hour
	coldWindow = 365 * 24 * time.Hour
)

// ClassifyAge returns the Tier an entry written age ago belongs in.
func ClassifyAge(age time.Duration) Tier {
	switch {
	case age < hotWindow:
		return TierHot
	case age < warmWindow:
		return TierWarm
	case age < coldWindow:
		return TierCold
	default:
		return TierFrozen
	}
}

// CompressSegment reads the uncompressed WAL segment at srcPath and writes
// a zstd-compressed copy to dstPath, demoting it from warm to cold. The
// frame layout (length, crc32, msgpack payload) is preserved; only the
// segment's bytes as a whole are compressed, not each frame individually.
func CompressSegment(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("immortal: open segment for compaction: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("immortal: create cold segment: %w", err)
	}
	defer dst.Close()

	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("immortal: create zstd writer: %w", err)
	}
	if _, err := io.Copy(zw, bufio.NewReader(src)); err != nil {
		zw.Close()
		return fmt.Errorf("immortal: compress segment: %w", err)
	}
	return zw.Close()
}

// DecompressedSegmentReader opens a zstd-compressed cold segment for
// sequential frame reads and returns it wrapped as an io.ReadCloser.
func DecompressedSegmentReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("immortal: open cold segment: %w", err)
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("immortal: create zstd reader: %w", err)
	}
	return &zstdReadCloser{zr: zr, f: f}, nil
}

type zstdReadCloser struct {
	zr *zstd.Decoder
	f  *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.zr.Read(p) }
func (z *zstdReadCloser) Close() error {
	z.zr.Close() // zstd.Decoder.Close returns nothing
	return z.f.Close()
}

// ReadColdSegment decodes every frame out of a zstd-compressed cold
// segment, the same framing ReadSegment expects from a warm one.
func ReadColdSegment(path string, fn func(Entry) error) error {
	r, err := DecompressedSegmentReader(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer r.Close()

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		var header [frameHeaderSize]byte
		if _, err := readFull(br, header[:]); err != nil {
			break
		}
		length := binary.LittleEndian.Uint32(header[0:4])
		wantCRC := binary.LittleEndian.Uint32(header[4:8])
		payload := make([]byte, length)
		if _, err := readFull(br, payload); err != nil {
			break
		}
		if crc32.ChecksumIEEE(payload) != wantCRC {
			break
		}
		var e Entry
		if err := msgpack.Unmarshal(payload, &e); err != nil {
			break
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// FrozenIndexEntry locates one archived entry within a frozen monthly
// archive file.
type FrozenIndexEntry struct {
	Sequence uint64
	Offset   int64
	Length   int64
}

// FrozenIndex is the index-only structure kept for data a year or older:
// the archive itself is never scanned sequentially, only seeked into via
// this map (spec.md §4.9).
type FrozenIndex struct {
	ArchivePath string
	Entries     map[uint64]FrozenIndexEntry
}

// FreezeSegments merges one or more cold (zstd) segments, in order, into a
// single frozen monthly archive at archivePath and returns the index
// needed to look up individual entries by sequence without rescanning.
func FreezeSegments(archivePath string, coldSegmentPaths []string) (*FrozenIndex, error) {
	dst, err := os.OpenFile(archivePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("immortal: create frozen archive: %w", err)
	}
	defer dst.Close()

	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return nil, fmt.Errorf("immortal: create zstd writer for archive: %w", err)
	}
	defer zw.Close()

	idx := &FrozenIndex{ArchivePath: archivePath, Entries: map[uint64]FrozenIndexEntry{}}
	var offset int64

	for _, path := range coldSegmentPaths {
		err := ReadColdSegment(path, func(e Entry) error {
			payload, err := msgpack.Marshal(&e)
			if err != nil {
				return err
			}
			var header [frameHeaderSize]byte
			binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)))
			binary.LittleEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(payload))
			if _, err := zw.Write(header[:]); err != nil {
				return err
			}
			if _, err := zw.Write(payload); err != nil {
				return err
			}
			idx.Entries[e.Sequence] = FrozenIndexEntry{
				Sequence: e.Sequence,
				Offset:   offset,
				Length:   int64(len(payload)) + frameHeaderSize,
			}
			offset += int64(len(payload)) + frameHeaderSize
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("immortal: freeze segment %s: %w", path, err)
		}
	}
	return idx, nil
}

// FrozenArchivePath returns the conventional path for the archive covering
// the given year and month under dir.
func FrozenArchivePath(dir string, year int, month time.Month) string {
	return filepath.Join(dir, fmt.Sprintf("frozen-%04d-%02d.zst", year, int(month)))
}
