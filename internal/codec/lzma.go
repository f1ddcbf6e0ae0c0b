// Package codec decodes the raw LZMA blocks used by the table-file
// payload format. Blocks carry no stream header of their own: every
// one is encoded with the same fixed properties (lc=3, lp=0, pb=2)
// and dictionary size, the property bytes {93,0,0,0,1} the original
// tool stamps into its format, so the caller's destination capacity
// is the only bound on how much output to expect.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// UncompressedBit marks a compression-block-table entry as already
// stored uncompressed (high bit of the cumulative-offset word).
const UncompressedBit = uint32(1) << 31

// propertyBytes is the fixed LZMA property prefix shared by every
// block: one packed (pb*5+lp)*9+lc byte followed by the little-endian
// dictionary size.
var propertyBytes = [5]byte{93, 0, 0, 0, 1}

// dictCap mirrors the dictionary size encoded in propertyBytes.
const dictCap = 1 << 24

// lzma's classic container is propertyBytes plus a 64-bit uncompressed
// length; the payload blocks store neither, so Decompress synthesizes
// the 13-byte header around each raw block before handing it to the
// reader.
const headerLen = 13

// Decompress inflates one raw LZMA block from src, writing at most
// dstCap bytes, and returns the bytes produced.
func Decompress(src []byte, dstCap int) ([]byte, error) {
	hdr := make([]byte, headerLen)
	copy(hdr, propertyBytes[:])
	binary.LittleEndian.PutUint64(hdr[5:], uint64(dstCap))

	r, err := lzma.ReaderConfig{DictCap: dictCap}.NewReader(
		io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(src)))
	if err != nil {
		return nil, fmt.Errorf("codec: open lzma stream: %w", err)
	}

	dst := make([]byte, dstCap)
	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("codec: decode lzma stream: %w", err)
	}
	return dst[:n], nil
}

// DecompressAllBlocks reassembles a payload split into fixed-size
// compression blocks. blockTable holds one cumulative end-offset per
// block (into the compressed src), with UncompressedBit set on any
// block stored verbatim. blockSize is the uncompressed size of every
// block but the last, which is whatever remains of uncompressedLen.
func DecompressAllBlocks(blockSize int, blockTable []uint32, src []byte, uncompressedLen int64) ([]byte, error) {
	dst := make([]byte, 0, uncompressedLen)
	var srcOff uint32

	for i, end := range blockTable {
		blockEnd := end &^ UncompressedBit
		stored := end&UncompressedBit != 0

		if int(srcOff) > len(src) || int(blockEnd) > len(src) || blockEnd < srcOff {
			return nil, fmt.Errorf("codec: block %d offsets out of range", i)
		}
		chunk := src[srcOff:blockEnd]

		if stored {
			dst = append(dst, chunk...)
		} else {
			left := uncompressedLen - int64(len(dst))
			want := int64(blockSize)
			if left < want {
				want = left
			}
			out, err := Decompress(chunk, int(want))
			if err != nil {
				return nil, fmt.Errorf("codec: block %d: %w", i, err)
			}
			dst = append(dst, out...)
		}
		srcOff = blockEnd
	}

	if int64(len(dst)) != uncompressedLen {
		return nil, fmt.Errorf("codec: decompressed %d bytes, want %d", len(dst), uncompressedLen)
	}
	return dst, nil
}
