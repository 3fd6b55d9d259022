// Package tile implements the sliced tile codec: splitting one tile
// into up to four horizontal slices processed in lock-step, producing
// the scratch delta buffer handed to the FSE collaborator, and the two
// fallback encodings (constant-delta, raw) used when entropy coding
// cannot win. Grounded in the teacher's jpegls/lossless encoder/decoder
// pair: direct strided array addressing, a scalar prediction call per
// pixel, and an explicit scratch buffer owned by the caller.
package tile

import (
	"encoding/binary"

	"github.com/sciframe/codec12/delta"
	"github.com/sciframe/codec12/frameerr"
	"github.com/sciframe/codec12/fse16"
)

// MaxSlices is the largest number of horizontal slices a tile is ever
// split into.
const MaxSlices = 4

// SliceHeights returns the heights of the tile's active slices,
// tallest first, differing by at most one row, and their count
// s = min(th, 4).
func SliceHeights(th int) ([]int, int) {
	s := th
	if s > MaxSlices {
		s = MaxSlices
	}
	heights := make([]int, s)
	base := th / s
	rem := th % s
	for i := range heights {
		h := base
		if i < rem {
			h++
		}
		heights[i] = h
	}
	return heights, s
}

func rowOffsets(heights []int) []int {
	offs := make([]int, len(heights))
	sum := 0
	for i, h := range heights {
		offs[i] = sum
		sum += h
	}
	return offs
}

func activeSlices(heights []int, row int) []int {
	active := make([]int, 0, len(heights))
	for i, h := range heights {
		if h > row {
			active = append(active, i)
		}
	}
	return active
}

// DeltaCount returns the number of deltas a tw x th tile produces:
// one per non-initial pixel.
func DeltaCount(tw, th int) int {
	_, s := SliceHeights(th)
	return tw*th - s
}

// RawLen is the raw-fallback wire length of a tw x th tile.
func RawLen(tw, th int) int {
	return 2 * tw * th
}

// constLen is the constant-delta wire length of a tw x th tile.
func constLen(s int) int {
	return 2*s + 2
}

func putLE12(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst, v&delta.Mask)
}

func getLE12(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src) & delta.Mask
}

// EncodeTile encodes the tw x th tile whose top-left pixel sits at
// linear offset origin within base (strides dx, dy, in cells) into
// dst, using scratch (length >= DeltaCount(tw, th)) as delta-staging
// space. It returns the number of bytes written to dst.
func EncodeTile(tw, th int, base []uint16, origin, dx, dy int, scratch []uint16, dst []byte) (int, error) {
	if tw <= 0 || th <= 0 || dx == 0 || dy == 0 {
		return 0, frameerr.ErrInvalidParams
	}

	heights, s := SliceHeights(th)
	offs := rowOffsets(heights)
	need := DeltaCount(tw, th)

	if need > len(scratch) {
		return 0, frameerr.ErrCapacityExceeded
	}
	if 2*s > len(dst) {
		return 0, frameerr.ErrCapacityExceeded
	}

	for i := 0; i < s; i++ {
		idx := origin + offs[i]*dy
		putLE12(dst[2*i:], base[idx])
	}

	o := 0
	for r := 0; r < heights[0]; r++ {
		active := activeSlices(heights, r)
		startCol := 0
		if r == 0 {
			startCol = 1
		}
		for c := startCol; c < tw; c++ {
			for _, i := range active {
				row := offs[i] + r
				idx := origin + row*dy + c*dx

				var left, top uint16
				if c > 0 {
					left = base[idx-dx] & delta.Mask
				}
				if r > 0 {
					top = base[idx-dy] & delta.Mask
				}
				pred := delta.Predict(c, r, left, top)
				scratch[o] = delta.Encode(base[idx], pred)
				o++
			}
		}
	}

	if need == 0 {
		// Unreachable given the framer's tile-shape validation (every
		// accepted tile has tw,th >= 2), kept as a defensive fallback.
		return 2 * s, nil
	}

	R, err := fse16.Compress(dst[2*s:], scratch[:need], int(delta.Mask))
	if err != nil {
		return 0, frameerr.ErrEntropyCoder
	}

	switch {
	case R > 1:
		return 2*s + R, nil
	case R == 1:
		if 2*s+2 > len(dst) {
			return 0, frameerr.ErrCapacityExceeded
		}
		putLE12(dst[2*s:], scratch[0])
		return 2*s + 2, nil
	default:
		return encodeRawFallback(tw, th, base, origin, dx, dy, dst)
	}
}

func encodeRawFallback(tw, th int, base []uint16, origin, dx, dy int, dst []byte) (int, error) {
	need := RawLen(tw, th)
	if need > len(dst) {
		return 0, frameerr.ErrCapacityExceeded
	}
	o := 0
	for r := 0; r < th; r++ {
		rowBase := origin + r*dy
		for c := 0; c < tw; c++ {
			putLE12(dst[o:], base[rowBase+c*dx])
			o += 2
		}
	}
	return need, nil
}

// DecodeTile reconstructs the tw x th tile described by src (its exact
// byte length) into base at linear offset origin, strides dx, dy,
// using scratch (length >= DeltaCount(tw, th)) as delta-staging space.
func DecodeTile(tw, th int, src []byte, base []uint16, origin, dx, dy int, scratch []uint16) error {
	if tw <= 0 || th <= 0 || dx == 0 || dy == 0 {
		return frameerr.ErrInvalidParams
	}
	if len(src) == 0 {
		return frameerr.ErrTruncated
	}

	heights, s := SliceHeights(th)
	offs := rowOffsets(heights)
	need := DeltaCount(tw, th)
	cLen := constLen(s)
	rLen := RawLen(tw, th)

	switch {
	case len(src) == cLen:
		if len(src) < 2*s+2 {
			return frameerr.ErrTruncated
		}
		if need > len(scratch) {
			return frameerr.ErrCapacityExceeded
		}
		v := getLE12(src[2*s:])
		for i := 0; i < need; i++ {
			scratch[i] = v
		}
	case len(src) == rLen:
		return decodeRawFallback(tw, th, src, base, origin, dx, dy)
	default:
		if len(src) < 2*s {
			return frameerr.ErrTruncated
		}
		if need > len(scratch) {
			return frameerr.ErrCapacityExceeded
		}
		n, err := fse16.Decompress(scratch[:need], src[2*s:])
		if err != nil || n != need {
			return frameerr.ErrEntropyCoder
		}
	}

	for i := 0; i < s; i++ {
		idx := origin + offs[i]*dy
		base[idx] = getLE12(src[2*i:])
	}

	o := 0
	for r := 0; r < heights[0]; r++ {
		active := activeSlices(heights, r)
		startCol := 0
		if r == 0 {
			startCol = 1
		}
		for c := startCol; c < tw; c++ {
			for _, i := range active {
				row := offs[i] + r
				idx := origin + row*dy + c*dx

				var left, top uint16
				if c > 0 {
					left = base[idx-dx]
				}
				if r > 0 {
					top = base[idx-dy]
				}
				pred := delta.Predict(c, r, left, top)
				base[idx] = delta.Decode(scratch[o], pred)
				o++
			}
		}
	}
	return nil
}

func decodeRawFallback(tw, th int, src []byte, base []uint16, origin, dx, dy int) error {
	need := RawLen(tw, th)
	if len(src) != need {
		return frameerr.ErrTruncated
	}
	o := 0
	for r := 0; r < th; r++ {
		rowBase := origin + r*dy
		for c := 0; c < tw; c++ {
			base[rowBase+c*dx] = getLE12(src[o:])
			o += 2
		}
	}
	return nil
}
