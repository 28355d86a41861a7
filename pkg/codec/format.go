// Package codec implements the on-disk .amem binary format: a magic-tagged
// header, length-prefixed MessagePack node and edge records, and a trailing
// footer carrying section offsets plus a BLAKE3 digest over everything that
// precedes it. Save, Load, LoadMmap and Validate are the entry points;
// everything else here is framing detail.
package codec

import "errors"

// Magic is the four-byte tag at the start of every .amem file.
var Magic = [4]byte{'A', 'M', 'E', 'M'}

// FormatVersion is the current on-disk format version. Bump this and add a
// migration path in Load whenever the header or record layout changes
// incompatibly.
const FormatVersion uint16 = 1

// Flag bits stored in the header.
const (
	FlagHasEmbeddings uint32 = 1 << 0
)

// Header is the fixed-size preamble written at offset 0.
type Header struct {
	Magic              [4]byte
	Version            uint16
	Flags              uint32
	NodeCount          uint64
	EdgeCount          uint64
	EmbeddingDimension uint32
	NextNodeID         uint64
	NextEdgeID         uint64
}

// HeaderSize is the encoded byte size of Header (4+2+4+8+8+4+8+8, padded).
const HeaderSize = 48

// Footer trails the file: offsets into the node/edge sections plus the
// BLAKE3 digest of everything from byte 0 up to the start of the footer.
type Footer struct {
	NodesOffset uint64
	EdgesOffset uint64
	FooterSize  uint64
	Digest      [32]byte
}

// footerEncodedSize is the encoded byte size of Footer (8+8+8+32).
const footerEncodedSize = 56

var (
	// ErrBadMagic is returned when a file does not start with Magic.
	ErrBadMagic = errors.New("codec: bad magic bytes")
	// ErrUnsupportedVersion is returned when a file's version is newer than
	// FormatVersion and no migration exists.
	ErrUnsupportedVersion = errors.New("codec: unsupported format version")
	// ErrTruncated is returned when a file is shorter than its header/footer
	// claim.
	ErrTruncated = errors.New("codec: file truncated")
)
