package service

import "encoding/binary"

// ghash is the GCM universal hash over GF(2^128), fed incrementally.
// Field elements are held as big-endian (hi, lo) pairs.
type ghash struct {
	hHi, hLo uint64
	yHi, yLo uint64
	buf      [16]byte
	buffered int
}

func newGHash(h []byte) *ghash {
	return &ghash{
		hHi: binary.BigEndian.Uint64(h[:8]),
		hLo: binary.BigEndian.Uint64(h[8:16]),
	}
}

// update absorbs p, zero padding is only applied by pad or sum.
func (g *ghash) update(p []byte) {
	if g.buffered > 0 {
		n := copy(g.buf[g.buffered:], p)
		g.buffered += n
		p = p[n:]
		if g.buffered < 16 {
			return
		}
		g.block(g.buf[:])
		g.buffered = 0
	}
	for len(p) >= 16 {
		g.block(p[:16])
		p = p[16:]
	}
	if len(p) > 0 {
		g.buffered = copy(g.buf[:], p)
	}
}

// pad completes a partial block with zeros.
func (g *ghash) pad() {
	if g.buffered == 0 {
		return
	}
	for i := g.buffered; i < 16; i++ {
		g.buf[i] = 0
	}
	g.block(g.buf[:])
	g.buffered = 0
}

// sum pads the pending data and absorbs the length block built from the bit lengths of
// the additional data and of the hashed data.
func (g *ghash) sum(aadBits, dataBits uint64) [16]byte {
	g.pad()

	var lengths [16]byte
	binary.BigEndian.PutUint64(lengths[:8], aadBits)
	binary.BigEndian.PutUint64(lengths[8:], dataBits)
	g.block(lengths[:])

	var out [16]byte
	binary.BigEndian.PutUint64(out[:8], g.yHi)
	binary.BigEndian.PutUint64(out[8:], g.yLo)
	return out
}

func (g *ghash) block(b []byte) {
	g.yHi ^= binary.BigEndian.Uint64(b[:8])
	g.yLo ^= binary.BigEndian.Uint64(b[8:16])
	g.yHi, g.yLo = gfMul(g.yHi, g.yLo, g.hHi, g.hLo)
}

func (g *ghash) reset() {
	*g = ghash{}
}

// gfMul multiplies x by y in GF(2^128) with the GCM bit order and reduction polynomial.
// The loop is branch free on secret data.
func gfMul(xHi, xLo, yHi, yLo uint64) (uint64, uint64) {
	var zHi, zLo uint64
	vHi, vLo := yHi, yLo
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = (xHi >> (63 - i)) & 1
		} else {
			bit = (xLo >> (127 - i)) & 1
		}
		mask := -bit
		zHi ^= vHi & mask
		zLo ^= vLo & mask

		carry := vLo & 1
		vLo = vLo>>1 | vHi<<63
		vHi = vHi>>1 ^ (0xe100000000000000 & -carry)
	}
	return zHi, zLo
}
