package immortal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendThenReplayRecoversHashChain(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)

	_, err = log.Append(context.Background(), OpAdd, map[string]string{"content": "first"})
	require.NoError(t, err)
	_, err = log.Append(context.Background(), OpAdd, map[string]string{"content": "second"})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	var seen []uint64
	err = Replay(dir, func(e Entry) error {
		seen = append(seen, e.Sequence)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, seen)
}

func TestReopenResumesSequenceAndHash(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)
	_, err = log.Append(context.Background(), OpAdd, map[string]string{"content": "a"})
	require.NoError(t, err)
	lastHash := log.LastHash()
	require.NoError(t, log.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reopened.NextSequence())
	assert.Equal(t, lastHash, reopened.LastHash())
}

func TestEntryVerifyDetectsTamper(t *testing.T) {
	e := NewEntry(0, OpAdd, []byte("payload"), GenesisHash)
	assert.True(t, e.Verify())

	e.Payload = []byte("tampered")
	assert.False(t, e.Verify())
}

func TestWALRotatesAtSegmentSize(t *testing.T) {
	dir := t.TempDir()
	wal, err := OpenWAL(dir, 64) // tiny threshold forces rotation quickly
	require.NoError(t, err)

	prev := GenesisHash
	for i := 0; i < 20; i++ {
		e := NewEntry(uint64(i), OpAdd, []byte("some payload bytes to fill a segment"), prev)
		require.NoError(t, wal.Append(e))
		prev = e.Hash
	}
	require.NoError(t, wal.Close())

	segments, err := ListSegments(dir)
	require.NoError(t, err)
	assert.Greater(t, len(segments), 1)
}

func TestClassifyAgeBoundaries(t *testing.T) {
	assert.Equal(t, TierHot, ClassifyAge(time.Hour))
	assert.Equal(t, TierWarm, ClassifyAge(48*time.Hour))
	assert.Equal(t, TierCold, ClassifyAge(60*24*time.Hour))
	assert.Equal(t, TierFrozen, ClassifyAge(400*24*time.Hour))
}

func TestCompressAndReadColdSegmentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	wal, err := OpenWAL(dir, DefaultSegmentSize)
	require.NoError(t, err)
	e := NewEntry(0, OpAdd, []byte("hello cold tier"), GenesisHash)
	require.NoError(t, wal.Append(e))
	require.NoError(t, wal.Close())

	segments, err := ListSegments(dir)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	coldPath := filepath.Join(dir, "segment-000001.wal.zst")
	require.NoError(t, CompressSegment(SegmentPath(dir, segments[0]), coldPath))

	var recovered []Entry
	require.NoError(t, ReadColdSegment(coldPath, func(e Entry) error {
		recovered = append(recovered, e)
		return nil
	}))
	require.Len(t, recovered, 1)
	assert.Equal(t, e.Payload, recovered[0].Payload)
}
