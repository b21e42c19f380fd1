// Package ppm sorts rendered pixels and writes them as a plain-text P3 raster.
//
// Layout of the output:
//
//	P3
//	<width> <height>
//	256
//	r g b r g b ... (one line per image row)
//
// Every triplet is followed by a single space, including the last one of a
// row, and the file ends with a line break. Channel values are written as
// given and may exceed the declared maximum.
package ppm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/fractal/types"
)

// MaxValue is the maximum color value written in the header.
const MaxValue = 256

// Digest is the xxh3 64-bit hash of an encoded image.
type Digest uint64

// String renders the digest as 16 hex digits.
func (d Digest) String() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// Sort orders pixels row-major (by row, then column). The sort is stable.
func Sort(pixels []types.Pixel) {
	slices.SortStableFunc(pixels, types.Pixel.Compare)
}

// IsSorted reports whether pixels are in row-major order.
func IsSorted(pixels []types.Pixel) bool {
	return slices.IsSortedFunc(pixels, types.Pixel.Compare)
}

// Encode writes pixels as a P3 raster and returns the digest of the bytes written.
//
// Pixels must already be sorted; a line break is emitted whenever the row of
// the next pixel differs from the current one.
//
// Parameters:
//   - w: Destination; writes are buffered internally
//   - width, height: Image dimensions written to the header
//   - pixels: Row-major pixels
//
// Returns:
//   - Digest: xxh3 hash of the encoded bytes
//   - error: Write failure wrapped with ErrOutput
func Encode(w io.Writer, width, height int, pixels []types.Pixel) (Digest, error) {
	hasher := xxh3.New()
	bw := bufio.NewWriterSize(io.MultiWriter(w, hasher), 64*1024)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n%d\n", width, height, MaxValue); err != nil {
		return 0, fmt.Errorf("%w: header: %w", types.ErrOutput, err)
	}

	var num []byte
	for i, p := range pixels {
		for _, v := range [3]int{p.Red, p.Green, p.Blue} {
			num = strconv.AppendInt(num[:0], int64(v), 10)
			num = append(num, ' ')
			if _, err := bw.Write(num); err != nil {
				return 0, fmt.Errorf("%w: pixel (%d,%d): %w", types.ErrOutput, p.X, p.Y, err)
			}
		}

		if i+1 < len(pixels) && pixels[i+1].Y != p.Y {
			if err := bw.WriteByte('\n'); err != nil {
				return 0, fmt.Errorf("%w: row %d: %w", types.ErrOutput, p.Y, err)
			}
		}
	}

	if err := bw.WriteByte('\n'); err != nil {
		return 0, fmt.Errorf("%w: trailer: %w", types.ErrOutput, err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: flush: %w", types.ErrOutput, err)
	}

	return Digest(hasher.Sum64()), nil
}

// WriteFile encodes pixels into the file at path, creating or truncating it.
//
// Returns:
//   - Digest: xxh3 hash of the file contents
//   - error: Create, write or close failure wrapped with ErrOutput
func WriteFile(path string, width, height int, pixels []types.Pixel) (Digest, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrOutput, err)
	}

	digest, err := Encode(f, width, height, pixels)
	if err != nil {
		_ = f.Close()
		return 0, err
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: close %s: %w", types.ErrOutput, path, err)
	}

	return digest, nil
}

// DigestFile hashes an existing file the same way Encode does.
func DigestFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	hasher := xxh3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, err
	}

	return Digest(hasher.Sum64()), nil
}
