package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/edsrzf/mmap-go"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// Save writes store to path as a complete .amem file. It writes to a
// sibling temp file, fsyncs, and renames over path so a crash mid-write
// never leaves a partial file at the destination (spec.md §4.1).
func Save(path string, store *graphstore.Store) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".new-*")
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "create temp file for %s", path)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // no-op once renamed
	}()

	if err := writeAll(tmp, store); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return errs.Wrap(errs.KindIO, err, "fsync %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.KindIO, err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Wrap(errs.KindIO, err, "rename %s to %s", tmpPath, path)
	}
	return nil
}

func writeAll(w io.Writer, store *graphstore.Store) error {
	hasher := blake3.New()
	mw := io.MultiWriter(w, hasher)
	bw := bufio.NewWriterSize(mw, 256*1024)

	nodes := store.AllNodes()
	edges := store.AllEdges()

	var flags uint32
	dim := store.Dimension()
	if dim > 0 {
		flags |= FlagHasEmbeddings
	}

	header := Header{
		Magic:              Magic,
		Version:            FormatVersion,
		Flags:              flags,
		NodeCount:          uint64(len(nodes)),
		EdgeCount:          uint64(len(edges)),
		EmbeddingDimension: uint32(dim),
		NextNodeID:         store.NextNodeID(),
		NextEdgeID:         store.NextEdgeID(),
	}
	if err := writeHeader(bw, header); err != nil {
		return err
	}

	nodesOffset := uint64(HeaderSize)
	var nodeBytes uint64
	for _, n := range nodes {
		written, err := writeFrame(bw, toNodeRecord(n))
		if err != nil {
			return errs.Wrap(errs.KindIO, err, "encode node %d", n.ID)
		}
		nodeBytes += written
	}

	edgesOffset := nodesOffset + nodeBytes
	for _, e := range edges {
		if _, err := writeFrame(bw, toEdgeRecord(e)); err != nil {
			return errs.Wrap(errs.KindIO, err, "encode edge %d", e.ID)
		}
	}

	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.KindIO, err, "flush")
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))

	footer := Footer{
		NodesOffset: nodesOffset,
		EdgesOffset: edgesOffset,
		FooterSize:  footerEncodedSize,
		Digest:      digest,
	}
	// Footer is written after hashing is complete, so it is NOT itself part
	// of the digest; write it directly to w, bypassing the hasher.
	return writeFooter(w, footer)
}

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint32(buf[6:10], h.Flags)
	binary.LittleEndian.PutUint64(buf[10:18], h.NodeCount)
	binary.LittleEndian.PutUint64(buf[18:26], h.EdgeCount)
	binary.LittleEndian.PutUint32(buf[26:30], h.EmbeddingDimension)
	binary.LittleEndian.PutUint64(buf[30:38], h.NextNodeID)
	binary.LittleEndian.PutUint64(buf[38:46], h.NextEdgeID)
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, errs.Wrap(errs.KindCorruptFormat, err, "read header")
	}
	var h Header
	copy(h.Magic[:], buf[0:4])
	if h.Magic != Magic {
		return Header{}, errs.Wrap(errs.KindCorruptFormat, ErrBadMagic, "read header")
	}
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	if h.Version > FormatVersion {
		return Header{}, errs.Wrap(errs.KindCorruptFormat, ErrUnsupportedVersion, "version %d", h.Version)
	}
	h.Flags = binary.LittleEndian.Uint32(buf[6:10])
	h.NodeCount = binary.LittleEndian.Uint64(buf[10:18])
	h.EdgeCount = binary.LittleEndian.Uint64(buf[18:26])
	h.EmbeddingDimension = binary.LittleEndian.Uint32(buf[26:30])
	h.NextNodeID = binary.LittleEndian.Uint64(buf[30:38])
	h.NextEdgeID = binary.LittleEndian.Uint64(buf[38:46])
	return h, nil
}

func writeFooter(w io.Writer, f Footer) error {
	buf := make([]byte, footerEncodedSize)
	binary.LittleEndian.PutUint64(buf[0:8], f.NodesOffset)
	binary.LittleEndian.PutUint64(buf[8:16], f.EdgesOffset)
	binary.LittleEndian.PutUint64(buf[16:24], f.FooterSize)
	copy(buf[24:56], f.Digest[:])
	_, err := w.Write(buf)
	return err
}

func readFooter(r io.ReaderAt, size int64) (Footer, error) {
	if size < footerEncodedSize {
		return Footer{}, errs.Wrap(errs.KindCorruptFormat, ErrTruncated, "footer")
	}
	buf := make([]byte, footerEncodedSize)
	if _, err := r.ReadAt(buf, size-footerEncodedSize); err != nil {
		return Footer{}, errs.Wrap(errs.KindCorruptFormat, err, "read footer")
	}
	var f Footer
	f.NodesOffset = binary.LittleEndian.Uint64(buf[0:8])
	f.EdgesOffset = binary.LittleEndian.Uint64(buf[8:16])
	f.FooterSize = binary.LittleEndian.Uint64(buf[16:24])
	copy(f.Digest[:], buf[24:56])
	return f, nil
}

// writeFrame writes a length-prefixed msgpack record: a uint32 little-endian
// byte length followed by the encoded record. Returns the total number of
// bytes written, including the length prefix.
func writeFrame(w io.Writer, v any) (uint64, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return 0, err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(payload); err != nil {
		return 0, err
	}
	return uint64(len(lenBuf) + len(payload)), nil
}

func readFrame(r io.Reader, v any) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return msgpack.Unmarshal(payload, v)
}

// Load reads path, verifies its BLAKE3 digest, and returns a populated
// Store. For files above a few hundred MB prefer LoadMmap, which avoids
// copying the whole file into the Go heap before decoding.
func Load(path string) (*graphstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.KindNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.KindIO, err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "stat %s", path)
	}

	footer, err := readFooter(f, info.Size())
	if err != nil {
		return nil, err
	}

	if err := verifyDigest(f, info.Size()-footerEncodedSize, footer.Digest); err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "seek %s", path)
	}
	br := bufio.NewReaderSize(f, 256*1024)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	nodes := make([]*graphstore.Node, 0, header.NodeCount)
	for i := uint64(0); i < header.NodeCount; i++ {
		var rec nodeRecord
		if err := readFrame(br, &rec); err != nil {
			return nil, errs.Wrap(errs.KindCorruptFormat, err, "decode node %d", i)
		}
		nodes = append(nodes, rec.toNode())
	}

	edges := make([]*graphstore.Edge, 0, header.EdgeCount)
	for i := uint64(0); i < header.EdgeCount; i++ {
		var rec edgeRecord
		if err := readFrame(br, &rec); err != nil {
			return nil, errs.Wrap(errs.KindCorruptFormat, err, "decode edge %d", i)
		}
		edges = append(edges, rec.toEdge())
	}

	store := graphstore.New(int(header.EmbeddingDimension))
	store.LoadSnapshot(nodes, edges, header.NextNodeID, header.NextEdgeID)
	return store, nil
}

// LoadMmap is like Load but memory-maps the file read-only and decodes
// directly from the mapping instead of buffering reads through the page
// cache twice. Intended for files large enough that avoiding the extra
// copy matters; semantics are identical to Load.
func LoadMmap(path string) (*graphstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.KindNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.KindIO, err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "stat %s", path)
	}
	if info.Size() == 0 {
		return nil, errs.New(errs.KindCorruptFormat, "empty file %s", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "mmap %s", path)
	}
	defer m.Unmap()

	data := []byte(m)
	if int64(len(data)) < footerEncodedSize {
		return nil, errs.Wrap(errs.KindCorruptFormat, ErrTruncated, "footer")
	}
	footerStart := len(data) - footerEncodedSize
	var footer Footer
	fb := data[footerStart:]
	footer.NodesOffset = binary.LittleEndian.Uint64(fb[0:8])
	footer.EdgesOffset = binary.LittleEndian.Uint64(fb[8:16])
	footer.FooterSize = binary.LittleEndian.Uint64(fb[16:24])
	copy(footer.Digest[:], fb[24:56])

	sum := blake3.Sum256(data[:footerStart])
	if sum != footer.Digest {
		return nil, errs.New(errs.KindIntegrityFailed, "digest mismatch in %s", path)
	}

	r := bytes.NewReader(data[:footerStart])
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	nodes := make([]*graphstore.Node, 0, header.NodeCount)
	for i := uint64(0); i < header.NodeCount; i++ {
		var rec nodeRecord
		if err := readFrame(r, &rec); err != nil {
			return nil, errs.Wrap(errs.KindCorruptFormat, err, "decode node %d", i)
		}
		nodes = append(nodes, rec.toNode())
	}

	edges := make([]*graphstore.Edge, 0, header.EdgeCount)
	for i := uint64(0); i < header.EdgeCount; i++ {
		var rec edgeRecord
		if err := readFrame(r, &rec); err != nil {
			return nil, errs.Wrap(errs.KindCorruptFormat, err, "decode edge %d", i)
		}
		edges = append(edges, rec.toEdge())
	}

	store := graphstore.New(int(header.EmbeddingDimension))
	store.LoadSnapshot(nodes, edges, header.NextNodeID, header.NextEdgeID)
	return store, nil
}

func verifyDigest(f *os.File, size int64, want [32]byte) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errs.Wrap(errs.KindIO, err, "seek")
	}
	hasher := blake3.New()
	if _, err := io.CopyN(hasher, f, size); err != nil {
		return errs.Wrap(errs.KindCorruptFormat, err, "hash body")
	}
	var got [32]byte
	copy(got[:], hasher.Sum(nil))
	if got != want {
		return errs.New(errs.KindIntegrityFailed, "digest mismatch")
	}
	return nil
}

// ValidationReport summarizes an integrity check without loading a full
// Store into memory.
type ValidationReport struct {
	Valid     bool
	NodeCount uint64
	EdgeCount uint64
	Version   uint16
	Err       error
}

// Validate checks a .amem file's header, frame counts, and BLAKE3 digest
// without materializing node/edge records beyond what's needed to count
// them.
func Validate(path string) ValidationReport {
	f, err := os.Open(path)
	if err != nil {
		return ValidationReport{Err: errs.Wrap(errs.KindIO, err, "open %s", path)}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ValidationReport{Err: errs.Wrap(errs.KindIO, err, "stat %s", path)}
	}

	footer, err := readFooter(f, info.Size())
	if err != nil {
		return ValidationReport{Err: err}
	}
	if err := verifyDigest(f, info.Size()-footerEncodedSize, footer.Digest); err != nil {
		return ValidationReport{Err: err}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ValidationReport{Err: errs.Wrap(errs.KindIO, err, "seek %s", path)}
	}
	br := bufio.NewReaderSize(f, 256*1024)
	header, err := readHeader(br)
	if err != nil {
		return ValidationReport{Err: err}
	}

	for i := uint64(0); i < header.NodeCount; i++ {
		var rec nodeRecord
		if err := readFrame(br, &rec); err != nil {
			return ValidationReport{Err: fmt.Errorf("node %d: %w", i, err)}
		}
	}
	for i := uint64(0); i < header.EdgeCount; i++ {
		var rec edgeRecord
		if err := readFrame(br, &rec); err != nil {
			return ValidationReport{Err: fmt.Errorf("edge %d: %w", i, err)}
		}
	}

	return ValidationReport{
		Valid:     true,
		NodeCount: header.NodeCount,
		EdgeCount: header.EdgeCount,
		Version:   header.Version,
	}
}
