package fontstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	writeGlyphFiles(t, srcDir, map[string][]byte{
		"0041.png": []byte("AAA"),
		"0042.png": []byte("BB"),
	})
	outDir := filepath.Join(t.TempDir(), "dist")
	res, err := Pack(context.Background(), srcDir, outDir)
	require.NoError(t, err)

	s, err := Open(filepath.Join(outDir, DefaultIndexName), filepath.Join(outDir, DefaultStoreName))
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Verify()
	require.NoError(t, err)

	assert.Equal(t, 2, report.GlyphCount)
	assert.Equal(t, int64(5), report.StoreSize)
	assert.Equal(t, int64(5), report.ReferencedBytes)
	assert.Equal(t, int64(0), report.OrphanedBytes)
	assert.Equal(t, res.StoreDigest, report.StoreDigest)
}

func TestVerifyOrphans(t *testing.T) {
	t.Parallel()

	// The displaced duplicate's bytes stay in the store unreferenced.
	s := createTestStore(t, map[string][]byte{
		"a/0041.png": []byte("AAA"),
		"b/0041.png": []byte("BB"),
	})

	report, err := s.Verify()
	require.NoError(t, err)

	assert.Equal(t, 1, report.GlyphCount)
	assert.Equal(t, int64(5), report.StoreSize)
	assert.Equal(t, int64(2), report.ReferencedBytes)
	assert.Equal(t, int64(3), report.OrphanedBytes)
}

func TestVerifyOutOfBounds(t *testing.T) {
	t.Parallel()

	s, err := NewFromBytes([]byte(`{"U+0041":[0,10]}`), []byte("abc"))
	require.NoError(t, err)

	_, err = s.Verify()
	require.ErrorIs(t, err, ErrCorruptIndex)
}

func TestVerifyOffsetOverflow(t *testing.T) {
	t.Parallel()

	// An offset near the int64 limit must not wrap past the bounds check.
	s, err := NewFromBytes([]byte(`{"U+0041":[9223372036854775807,1]}`), []byte("abc"))
	require.NoError(t, err)

	_, err = s.Verify()
	require.ErrorIs(t, err, ErrCorruptIndex)
}

func TestVerifyOverlap(t *testing.T) {
	t.Parallel()

	s, err := NewFromBytes([]byte(`{"U+0041":[0,3],"U+0042":[1,3]}`), []byte("abcde"))
	require.NoError(t, err)

	_, err = s.Verify()
	require.ErrorIs(t, err, ErrCorruptIndex)
}

func TestVerifyZeroSizeEntries(t *testing.T) {
	t.Parallel()

	// Zero-size entries claim no bytes and never overlap anything.
	s, err := NewFromBytes([]byte(`{"U+0041":[0,3],"U+0042":[1,0]}`), []byte("abc"))
	require.NoError(t, err)

	report, err := s.Verify()
	require.NoError(t, err)

	assert.Equal(t, 2, report.GlyphCount)
	assert.Equal(t, int64(3), report.ReferencedBytes)
	assert.Equal(t, int64(0), report.OrphanedBytes)
}

func TestVerifyEmpty(t *testing.T) {
	t.Parallel()

	s, err := NewFromBytes([]byte(`{}`), nil)
	require.NoError(t, err)

	report, err := s.Verify()
	require.NoError(t, err)

	assert.Equal(t, 0, report.GlyphCount)
	assert.Equal(t, int64(0), report.StoreSize)
	assert.Equal(t, digest.FromBytes(nil), report.StoreDigest)
}
