// Package delta implements the scalar 12-bit modular delta codec and the
// average-of-neighbors predictor used by the sliced tile codec.
package delta

// Mask keeps only the 12 significant bits of a 16-bit cell.
const Mask = 0x0FFF

// Encode computes the 12-bit modular delta between a pixel and its
// prediction. Only the low 12 bits of the result are meaningful.
//
// Round-trip law: Decode(Encode(p, q), q) == p & Mask for all p, q.
func Encode(pixel, prediction uint16) uint16 {
	return (pixel - prediction) & Mask
}

// Decode inverts Encode: it reconstructs a pixel from a delta and the
// same prediction used on encode.
func Decode(delta, prediction uint16) uint16 {
	return (delta + prediction) & Mask
}

// Predict returns the prediction for a pixel at local position (x, y)
// within a slice, given its left (L) and top (T) neighbors. Callers
// must handle (x=0, y=0) themselves: that pixel has no prediction and
// is emitted raw by the tile codec.
//
// L and T are widened to 32 bits before the average is taken, since
// their sum can exceed 16 bits; the modular delta absorbs any
// difference this widening makes versus a narrower intermediate type.
func Predict(x, y int, left, top uint16) uint16 {
	switch {
	case y == 0:
		return left
	case x == 0:
		return top
	default:
		return uint16((uint32(left) + uint32(top)) / 2)
	}
}
