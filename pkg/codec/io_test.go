package codec

import (
	"path/filepath"
	"testing"

	"github.com/agenticmemory/amem/pkg/graphstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s := graphstore.New(3)
	a, err := s.Add(graphstore.Fact, "the build is green", 1, 0.95, []float32{0.1, 0.2, 0.3}, []string{"ci"})
	require.NoError(t, err)
	b, err := s.Add(graphstore.Decision, "ship it", 1, 0.8, []float32{0.4, 0.1, 0.0}, nil)
	require.NoError(t, err)
	_, err = s.Link(b, a, graphstore.DerivedFrom, 0.7)
	require.NoError(t, err)
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.amem")

	s := buildSampleStore(t)
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, s.NodeCount(), loaded.NodeCount())
	assert.Equal(t, s.EdgeCount(), loaded.EdgeCount())
	assert.Equal(t, 3, loaded.Dimension())
	assert.Equal(t, s.NextNodeID(), loaded.NextNodeID())
	assert.Equal(t, s.NextEdgeID(), loaded.NextEdgeID())

	nodes := loaded.AllNodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "the build is green", nodes[0].Content)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, nodes[0].Embedding)
}

func TestLoadMmapMatchesLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.amem")

	s := buildSampleStore(t)
	require.NoError(t, Save(path, s))

	viaRead, err := Load(path)
	require.NoError(t, err)
	viaMmap, err := LoadMmap(path)
	require.NoError(t, err)

	assert.Equal(t, viaRead.AllNodes(), viaMmap.AllNodes())
	assert.Equal(t, viaRead.AllEdges(), viaMmap.AllEdges())
}

func TestLoadRejectsCorruptDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.amem")
	require.NoError(t, Save(path, buildSampleStore(t)))

	data, err := readFileForTest(path)
	require.NoError(t, err)
	data[10] ^= 0xFF // flip a byte inside the header's node count field
	require.NoError(t, writeFileForTest(path, data))

	_, err = Load(path)
	require.Error(t, err)
}

func TestValidateReportsCounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.amem")
	require.NoError(t, Save(path, buildSampleStore(t)))

	report := Validate(path)
	assert.True(t, report.Valid)
	assert.EqualValues(t, 2, report.NodeCount)
	assert.EqualValues(t, 1, report.EdgeCount)
	assert.Equal(t, FormatVersion, report.Version)
}

func TestIDsNeverReusedAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.amem")

	s := graphstore.New(0)
	id, err := s.Add(graphstore.Fact, "first", 1, 0.9, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Delete(id))
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	next, err := loaded.Add(graphstore.Fact, "second", 1, 0.9, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, next, id)
}
