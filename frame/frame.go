// Package frame implements the tile framer: a validated W x H x TW x TH
// pack geometry, the per-tile length table that lets a decoder navigate
// a packed frame without a container format, and the strided pixel-view
// type callers use to describe their own memory layout. Grounded in the
// teacher's codec.Codec: a small validated-construction type wrapping
// the lower-level per-unit codec, with an owned scratch buffer reused
// across calls instead of allocated per call.
package frame

import (
	"encoding/binary"

	"github.com/sciframe/codec12/frameerr"
	"github.com/sciframe/codec12/tile"
)

// lengthFieldSize is the width, in bytes, of each entry in a packed
// frame's tile length table.
const lengthFieldSize = 4

// bitsPerPixel is the only pixel depth this codec supports; NewContext
// rejects any other value.
const bitsPerPixel = 12

// PixelView describes a caller-owned 12-bit pixel plane: Base holds
// pixel cells in whatever 16-bit-addressable layout the caller uses,
// Origin is the cell index of pixel (0, 0) within Base, and DX, DY are
// the cell strides (not byte strides) between horizontally and
// vertically adjacent pixels. Planar, interleaved, and bottom-up
// (negative DY, with Origin pointing at the last row) layouts are all
// expressed by choosing Origin, DX, and DY accordingly; the frame
// codec never assumes contiguity.
type PixelView struct {
	Base   []uint16
	Origin int
	DX, DY int
}

func (v PixelView) offset(x, y int) int {
	return v.Origin + x*v.DX + y*v.DY
}

// corners returns the four cell offsets addressed by a w x h view
// rooted at v's origin: since offset is affine in x and y, the extreme
// reachable offsets always fall on one of these four corners.
func (v PixelView) corners(w, h int) [4]int {
	return [4]int{
		v.offset(0, 0),
		v.offset(w-1, 0),
		v.offset(0, h-1),
		v.offset(w-1, h-1),
	}
}

// checkBounds reports whether every cell a w x h view could address
// falls within Base, and that DX, DY are both non-zero (a zero stride
// would alias every pixel along that axis onto the same cell).
func (v PixelView) checkBounds(w, h int) error {
	if v.DX == 0 || v.DY == 0 {
		return frameerr.ErrInvalidParams
	}
	c := v.corners(w, h)
	min, max := c[0], c[0]
	for _, o := range c[1:] {
		if o < min {
			min = o
		}
		if o > max {
			max = o
		}
	}
	if min < 0 || max >= len(v.Base) {
		return frameerr.ErrInvalidParams
	}
	return nil
}

// Context holds a validated W x H frame geometry tiled into TW x TH
// tiles, plus a scratch buffer sized for the largest tile that
// geometry can produce. Construct one Context per distinct geometry
// and reuse it across frames: EncodeFrame and DecodeFrame borrow the
// scratch buffer rather than allocating one per call.
type Context struct {
	w, h, tw, th   int
	tilesX, tilesY int
	scratch        []uint16
	closed         bool
}

// NewContext validates a W x H frame at the given bit depth, tiled
// into TW x TH tiles, and returns a Context ready for repeated
// EncodeFrame/DecodeFrame calls.
//
// bpp must be exactly 12: this codec has no other pixel-depth
// implementation, and construction fails rather than silently
// truncate or misinterpret a different depth. Both tile dimensions
// must be at least 2: a smaller tile dimension can make the
// raw-fallback and constant-delta wire lengths coincide, which would
// make the tile dispatch ambiguous. The same reasoning rules out a
// final row or column of exactly one leftover pixel, so NewContext
// rejects any (W, TW) or (H, TH) pairing whose remainder is exactly 1.
func NewContext(w, h, bpp, tw, th int) (*Context, error) {
	if bpp != bitsPerPixel {
		return nil, frameerr.ErrInvalidParams
	}
	if w <= 0 || h <= 0 || tw < 2 || th < 2 {
		return nil, frameerr.ErrInvalidParams
	}
	if tw > w || th > h {
		return nil, frameerr.ErrInvalidParams
	}
	if remainderIsOne(w, tw) || remainderIsOne(h, th) {
		return nil, frameerr.ErrInvalidParams
	}

	tilesX := (w + tw - 1) / tw
	tilesY := (h + th - 1) / th

	return &Context{
		w: w, h: h, tw: tw, th: th,
		tilesX: tilesX, tilesY: tilesY,
		scratch: make([]uint16, tile.DeltaCount(tw, th)),
	}, nil
}

func remainderIsOne(total, tileSize int) bool {
	return total%tileSize == 1
}

// Close releases the Context's scratch buffer. Further EncodeFrame,
// DecodeFrame, or Close calls on a closed Context return ErrClosed;
// W, H, and MaxPackedSize keep reporting the geometry.
func (c *Context) Close() error {
	if c.closed {
		return frameerr.ErrClosed
	}
	c.closed = true
	c.scratch = nil
	return nil
}

// W and H return the Context's frame dimensions in pixels.
func (c *Context) W() int { return c.w }
func (c *Context) H() int { return c.h }

func (c *Context) tileCount() int { return c.tilesX * c.tilesY }

func (c *Context) tileWidth(tx int) int {
	if tx == c.tilesX-1 {
		if r := c.w % c.tw; r != 0 {
			return r
		}
	}
	return c.tw
}

func (c *Context) tileHeight(ty int) int {
	if ty == c.tilesY-1 {
		if r := c.h % c.th; r != 0 {
			return r
		}
	}
	return c.th
}

// MaxPackedSize returns the largest byte length EncodeFrame can ever
// produce for this Context's geometry: the length table plus every
// tile falling back to its raw encoding.
func (c *Context) MaxPackedSize() int {
	total := lengthFieldSize * c.tileCount()
	for ty := 0; ty < c.tilesY; ty++ {
		th := c.tileHeight(ty)
		for tx := 0; tx < c.tilesX; tx++ {
			total += tile.RawLen(c.tileWidth(tx), th)
		}
	}
	return total
}

// EncodeFrame packs the W x H frame described by src into dst and
// returns the number of bytes written. dst must have capacity for at
// least MaxPackedSize() to be guaranteed to succeed regardless of
// pixel content.
func (c *Context) EncodeFrame(src PixelView, dst []byte) (int, error) {
	if c.closed {
		return 0, frameerr.ErrClosed
	}
	if err := src.checkBounds(c.w, c.h); err != nil {
		return 0, err
	}
	headerLen := lengthFieldSize * c.tileCount()
	if headerLen > len(dst) {
		return 0, frameerr.ErrCapacityExceeded
	}

	body := dst[headerLen:]
	off := 0
	idx := 0
	for ty := 0; ty < c.tilesY; ty++ {
		th := c.tileHeight(ty)
		for tx := 0; tx < c.tilesX; tx++ {
			tw := c.tileWidth(tx)
			origin := src.offset(tx*c.tw, ty*c.th)

			need := tile.DeltaCount(tw, th)
			if need > len(c.scratch) {
				return 0, frameerr.ErrCapacityExceeded
			}
			if off > len(body) {
				return 0, frameerr.ErrCapacityExceeded
			}
			n, err := tile.EncodeTile(tw, th, src.Base, origin, src.DX, src.DY, c.scratch[:need], body[off:])
			if err != nil {
				return 0, err
			}
			binary.LittleEndian.PutUint32(dst[lengthFieldSize*idx:], uint32(n))
			off += n
			idx++
		}
	}
	return headerLen + off, nil
}

// DecodeFrame unpacks src, which must be exactly the byte slice a
// prior EncodeFrame call produced for this Context's geometry, into
// dst.
func (c *Context) DecodeFrame(src []byte, dst PixelView) error {
	if c.closed {
		return frameerr.ErrClosed
	}
	if err := dst.checkBounds(c.w, c.h); err != nil {
		return err
	}
	headerLen := lengthFieldSize * c.tileCount()
	if headerLen > len(src) {
		return frameerr.ErrTruncated
	}

	body := src[headerLen:]
	off := 0
	idx := 0
	for ty := 0; ty < c.tilesY; ty++ {
		th := c.tileHeight(ty)
		for tx := 0; tx < c.tilesX; tx++ {
			tw := c.tileWidth(tx)
			tlen := int(binary.LittleEndian.Uint32(src[lengthFieldSize*idx:]))
			if tlen < 0 || off+tlen > len(body) {
				return frameerr.ErrTileOverrun
			}

			need := tile.DeltaCount(tw, th)
			if need > len(c.scratch) {
				return frameerr.ErrCapacityExceeded
			}
			origin := dst.offset(tx*c.tw, ty*c.th)
			if err := tile.DecodeTile(tw, th, body[off:off+tlen], dst.Base, origin, dst.DX, dst.DY, c.scratch[:need]); err != nil {
				return err
			}
			off += tlen
			idx++
		}
	}
	if off != len(body) {
		return frameerr.ErrTruncated
	}
	return nil
}
