package ppm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"

	"github.com/arloliu/fractal/types"
)

func TestSort(t *testing.T) {
	t.Run("orders by row then column", func(t *testing.T) {
		pixels := []types.Pixel{
			{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 2, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0},
		}
		Sort(pixels)

		require.True(t, IsSorted(pixels))
		require.Equal(t, []types.Pixel{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
		}, pixels)
	})

	t.Run("equal coordinates keep insertion order", func(t *testing.T) {
		pixels := []types.Pixel{
			{X: 0, Y: 1, Red: 1}, {X: 0, Y: 0}, {X: 0, Y: 1, Red: 2},
		}
		Sort(pixels)

		require.Equal(t, 1, pixels[1].Red)
		require.Equal(t, 2, pixels[2].Red)
	})

	t.Run("columns strictly ascend within a row", func(t *testing.T) {
		var pixels []types.Pixel
		for x := 9; x >= 0; x-- {
			pixels = append(pixels, types.Pixel{X: x, Y: 3})
		}
		Sort(pixels)

		for i := 1; i < len(pixels); i++ {
			require.Less(t, pixels[i-1].X, pixels[i].X)
		}
	})
}

func TestEncode(t *testing.T) {
	pixels := []types.Pixel{
		{X: 0, Y: 0, Red: 765, Green: 3825, Blue: 4335},
		{X: 1, Y: 0, Red: 3, Green: 15, Blue: 17},
		{X: 0, Y: 1, Red: 0, Green: 0, Blue: 0},
		{X: 1, Y: 1, Red: 6, Green: 30, Blue: 34},
	}

	var buf bytes.Buffer
	digest, err := Encode(&buf, 2, 2, pixels)
	require.NoError(t, err)

	want := "P3\n2 2\n256\n" +
		"765 3825 4335 3 15 17 \n" +
		"0 0 0 6 30 34 \n"
	require.Equal(t, want, buf.String())
	require.Equal(t, Digest(xxh3.HashString(want)), digest)
}

func TestEncode_SingleRowAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, 1, 1, []types.Pixel{{Red: 1, Green: 2, Blue: 3}})
	require.NoError(t, err)
	require.Equal(t, "P3\n1 1\n256\n1 2 3 \n", buf.String())

	buf.Reset()
	_, err = Encode(&buf, 0, 0, nil)
	require.NoError(t, err)
	require.Equal(t, "P3\n0 0\n256\n\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncode_WriteFailure(t *testing.T) {
	_, err := Encode(failingWriter{}, 1, 1, []types.Pixel{{}})

	require.ErrorIs(t, err, types.ErrOutput)
	require.ErrorContains(t, err, "disk full")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ppm")
	pixels := []types.Pixel{{X: 0, Y: 0, Red: 3, Green: 15, Blue: 17}}

	digest, err := WriteFile(path, 1, 1, pixels)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "P3\n1 1\n256\n3 15 17 \n", string(data))

	fromFile, err := DigestFile(path)
	require.NoError(t, err)
	require.Equal(t, digest, fromFile)
	require.Len(t, digest.String(), 16)
}

func TestWriteFile_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.ppm")

	_, err := WriteFile(path, 1, 1, []types.Pixel{{}})
	require.ErrorIs(t, err, types.ErrOutput)

	_, err = DigestFile(path)
	require.Error(t, err)
}
