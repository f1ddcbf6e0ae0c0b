package egtbfile

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed byte length of every table file's header.
const HeaderSize = 128

// Signature identifies a valid table file; DecodeHeader checks it when
// a file's header is first loaded.
const Signature = 23456

// Header is the fixed 128-byte prefix of a table file, encoded little
// endian. Name and Copyright are fixed-width, NUL-padded ASCII.
type Header struct {
	Signature uint16
	Property  uint32
	Order     uint32
	DTMMax    uint8
	Name      [20]byte
	Copyright [64]byte
	Checksum  int64
}

// IsCompressed reports whether the payload is split into LZMA blocks.
func (h *Header) IsCompressed() bool { return h.Property&PropCompressed != 0 }

// SpecialScoreRange reports whether cell bytes use the special decode.
func (h *Header) SpecialScoreRange() bool { return h.Property&PropSpecialScoreRange != 0 }

// HasSideTable reports whether the header declares a payload for the
// given side (0 = black-to-move, 1 = white-to-move). A query for a
// side the table doesn't carry must return MISSING without touching
// that side's payload offsets.
func (h *Header) HasSideTable(side int) bool {
	if side == 0 {
		return h.Property&PropHasBlackTable != 0
	}
	return h.Property&PropHasWhiteTable != 0
}

// NameString trims the Name field's NUL padding.
func (h *Header) NameString() string { return cstring(h.Name[:]) }

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Encode writes the header into a HeaderSize-byte buffer.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.Signature)
	binary.LittleEndian.PutUint32(buf[2:6], h.Property)
	binary.LittleEndian.PutUint32(buf[6:10], h.Order)
	buf[10] = h.DTMMax
	copy(buf[11:31], h.Name[:])
	copy(buf[31:95], h.Copyright[:])
	binary.LittleEndian.PutUint64(buf[95:103], uint64(h.Checksum))
	// buf[103:128] is reserved and left zero.
	return buf
}

// DecodeHeader parses a HeaderSize-byte buffer into a Header and
// validates the signature.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("egtbfile: short header (%d bytes)", len(buf))
	}
	h := &Header{
		Signature: binary.LittleEndian.Uint16(buf[0:2]),
		Property:  binary.LittleEndian.Uint32(buf[2:6]),
		Order:     binary.LittleEndian.Uint32(buf[6:10]),
		DTMMax:    buf[10],
		Checksum:  int64(binary.LittleEndian.Uint64(buf[95:103])),
	}
	copy(h.Name[:], buf[11:31])
	copy(h.Copyright[:], buf[31:95])
	if h.Signature != Signature {
		return nil, fmt.Errorf("egtbfile: bad signature %d, want %d", h.Signature, Signature)
	}
	return h, nil
}

// OrderPermutation unpacks Order into the six 3-bit slot indices that
// determine the sequence egtbkey walks a signature's slots in. A zero
// Order means the identity permutation (0,1,2,3,4,5).
func (h *Header) OrderPermutation() [6]int {
	if h.Order == 0 {
		return [6]int{0, 1, 2, 3, 4, 5}
	}
	var o [6]int
	for i := range o {
		o[i] = int((h.Order >> uint(i*3)) & 0x7)
	}
	return o
}
