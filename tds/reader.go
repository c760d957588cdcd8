package tds

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Scale factors for reconstructing wide unsigned integers from 32-bit
// words. Sums computed this way are exact only below 2^53; larger values
// round to the nearest representable float64. This approximation is part
// of the wire contract and is deliberately not corrected.
const (
	twoTo32 = 4294967296.0
	twoTo64 = twoTo32 * twoTo32
	twoTo96 = twoTo64 * twoTo32
)

// take returns the next n bytes and advances the cursor. Callers must have
// awaited n bytes first.
func (p *Parser) take(n int) []byte {
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}

// ReadBytes reads exactly n raw bytes. The slice passed to next is a copy
// owned by the callee.
func (p *Parser) ReadBytes(n int, next func([]byte)) {
	p.AwaitData(n, func() {
		b := make([]byte, n)
		copy(b, p.take(n))
		next(b)
	})
}

// ReadUInt8 reads an unsigned 8-bit integer.
func (p *Parser) ReadUInt8(next func(uint8)) {
	p.AwaitData(1, func() {
		next(p.take(1)[0])
	})
}

// ReadInt8 reads a signed 8-bit integer.
func (p *Parser) ReadInt8(next func(int8)) {
	p.AwaitData(1, func() {
		next(int8(p.take(1)[0]))
	})
}

// ReadUInt16LE reads an unsigned little-endian 16-bit integer.
func (p *Parser) ReadUInt16LE(next func(uint16)) {
	p.AwaitData(2, func() {
		next(binary.LittleEndian.Uint16(p.take(2)))
	})
}

// ReadUInt16BE reads an unsigned big-endian 16-bit integer.
func (p *Parser) ReadUInt16BE(next func(uint16)) {
	p.AwaitData(2, func() {
		next(binary.BigEndian.Uint16(p.take(2)))
	})
}

// ReadInt16LE reads a signed little-endian 16-bit integer.
func (p *Parser) ReadInt16LE(next func(int16)) {
	p.ReadUInt16LE(func(v uint16) { next(int16(v)) })
}

// ReadInt16BE reads a signed big-endian 16-bit integer.
func (p *Parser) ReadInt16BE(next func(int16)) {
	p.ReadUInt16BE(func(v uint16) { next(int16(v)) })
}

// ReadUInt32LE reads an unsigned little-endian 32-bit integer.
func (p *Parser) ReadUInt32LE(next func(uint32)) {
	p.AwaitData(4, func() {
		next(binary.LittleEndian.Uint32(p.take(4)))
	})
}

// ReadUInt32BE reads an unsigned big-endian 32-bit integer.
func (p *Parser) ReadUInt32BE(next func(uint32)) {
	p.AwaitData(4, func() {
		next(binary.BigEndian.Uint32(p.take(4)))
	})
}

// ReadInt32LE reads a signed little-endian 32-bit integer.
func (p *Parser) ReadInt32LE(next func(int32)) {
	p.ReadUInt32LE(func(v uint32) { next(int32(v)) })
}

// ReadInt32BE reads a signed big-endian 32-bit integer.
func (p *Parser) ReadInt32BE(next func(int32)) {
	p.ReadUInt32BE(func(v uint32) { next(int32(v)) })
}

// ReadUInt24LE reads an unsigned little-endian 24-bit integer: a 16-bit low
// part plus an 8-bit high part shifted into position.
func (p *Parser) ReadUInt24LE(next func(uint32)) {
	p.AwaitData(3, func() {
		b := p.take(3)
		low := uint32(binary.LittleEndian.Uint16(b))
		high := uint32(b[2])
		next(low | high<<16)
	})
}

// ReadUInt40LE reads an unsigned little-endian 40-bit integer: a 32-bit low
// part plus an 8-bit high part scaled by 2^32.
func (p *Parser) ReadUInt40LE(next func(float64)) {
	p.AwaitData(5, func() {
		b := p.take(5)
		low := binary.LittleEndian.Uint32(b)
		high := b[4]
		next(float64(low) + twoTo32*float64(high))
	})
}

// ReadUInt64LE reads an unsigned little-endian 64-bit integer as the sum of
// two 32-bit words scaled by powers of 2^32. Exact only below 2^53.
func (p *Parser) ReadUInt64LE(next func(float64)) {
	p.AwaitData(8, func() {
		b := p.take(8)
		w0 := binary.LittleEndian.Uint32(b)
		w1 := binary.LittleEndian.Uint32(b[4:])
		next(float64(w0) + twoTo32*float64(w1))
	})
}

// ReadUInt96LE reads an unsigned little-endian 96-bit integer as the sum of
// three 32-bit words scaled by powers of 2^32. Exact only below 2^53.
func (p *Parser) ReadUInt96LE(next func(float64)) {
	p.AwaitData(12, func() {
		b := p.take(12)
		w0 := binary.LittleEndian.Uint32(b)
		w1 := binary.LittleEndian.Uint32(b[4:])
		w2 := binary.LittleEndian.Uint32(b[8:])
		next(float64(w0) + twoTo32*float64(w1) + twoTo64*float64(w2))
	})
}

// ReadUInt128LE reads an unsigned little-endian 128-bit integer as the sum
// of four 32-bit words scaled by powers of 2^32. Exact only below 2^53.
func (p *Parser) ReadUInt128LE(next func(float64)) {
	p.AwaitData(16, func() {
		b := p.take(16)
		w0 := binary.LittleEndian.Uint32(b)
		w1 := binary.LittleEndian.Uint32(b[4:])
		w2 := binary.LittleEndian.Uint32(b[8:])
		w3 := binary.LittleEndian.Uint32(b[12:])
		next(float64(w0) + twoTo32*float64(w1) + twoTo64*float64(w2) + twoTo96*float64(w3))
	})
}

// ReadInt64LE reads a signed little-endian 64-bit integer: the low word as
// unsigned magnitude plus 2^32 times the high word interpreted as a signed
// 32-bit integer. Exact only for magnitudes below 2^53.
func (p *Parser) ReadInt64LE(next func(float64)) {
	p.AwaitData(8, func() {
		b := p.take(8)
		low := binary.LittleEndian.Uint32(b)
		high := int32(binary.LittleEndian.Uint32(b[4:]))
		next(float64(low) + twoTo32*float64(high))
	})
}

// ReadFloatLE reads a little-endian IEEE single-precision float.
func (p *Parser) ReadFloatLE(next func(float32)) {
	p.ReadUInt32LE(func(v uint32) { next(math.Float32frombits(v)) })
}

// ReadFloatBE reads a big-endian IEEE single-precision float.
func (p *Parser) ReadFloatBE(next func(float32)) {
	p.ReadUInt32BE(func(v uint32) { next(math.Float32frombits(v)) })
}

// ReadDoubleLE reads a little-endian IEEE double-precision float.
func (p *Parser) ReadDoubleLE(next func(float64)) {
	p.AwaitData(8, func() {
		next(math.Float64frombits(binary.LittleEndian.Uint64(p.take(8))))
	})
}

// ReadDoubleBE reads a big-endian IEEE double-precision float.
func (p *Parser) ReadDoubleBE(next func(float64)) {
	p.AwaitData(8, func() {
		next(math.Float64frombits(binary.BigEndian.Uint64(p.take(8))))
	})
}

// ReadBVarByte reads a binary blob prefixed by an 8-bit byte count.
func (p *Parser) ReadBVarByte(next func([]byte)) {
	p.ReadUInt8(func(n uint8) {
		p.ReadBytes(int(n), next)
	})
}

// ReadUsVarByte reads a binary blob prefixed by a 16-bit little-endian
// byte count.
func (p *Parser) ReadUsVarByte(next func([]byte)) {
	p.ReadUInt16LE(func(n uint16) {
		p.ReadBytes(int(n), next)
	})
}

// ReadBVarChar reads text prefixed by an 8-bit character count, encoded as
// two bytes per character.
func (p *Parser) ReadBVarChar(next func(string)) {
	p.ReadUInt8(func(n uint8) {
		p.ReadBytes(2*int(n), func(b []byte) {
			next(ucs2String(b))
		})
	})
}

// ReadUsVarChar reads text prefixed by a 16-bit little-endian character
// count, encoded as two bytes per character.
func (p *Parser) ReadUsVarChar(next func(string)) {
	p.ReadUInt16LE(func(n uint16) {
		p.ReadBytes(2*int(n), func(b []byte) {
			next(ucs2String(b))
		})
	})
}

// ucs2String decodes little-endian 2-byte-per-character text.
func ucs2String(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units))
}

// latin1String decodes single-byte text by mapping each byte to the code
// point of the same value.
func latin1String(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
