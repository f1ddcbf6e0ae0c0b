// Package egtbfile reads a single material signature's on-disk table.
// A signature is stored as up to two files, one per side to move
// ("krk.w.mtb", "krk.b.mtb"); both share one header layout and each
// carries its own compression block table and payload. Loading is lazy
// and safe for concurrent use; no goroutine ever holds more than one
// of a File's locks at a time.
package egtbfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/kranbrook/egtb/internal/codec"
	"github.com/kranbrook/egtb/internal/egtbkey"
)

// MemMode controls how much of a table's payload File keeps resident.
type MemMode int

const (
	// MemTiny keeps a small LRU of decompressed 4 KiB blocks per side.
	MemTiny MemMode = iota
	// MemAll decompresses the whole payload into memory on first use.
	MemAll
	// MemSmart picks MemAll for tables under the smart threshold and
	// MemTiny for everything larger.
	MemSmart
)

// smartThreshold is the payload size below which MemSmart behaves as
// MemAll.
const smartThreshold = 10 << 20

// CompressBlockSize is the uncompressed size of every compression
// block but the last.
const CompressBlockSize = 4096

// tinyBlockCacheSize bounds the per-side block LRU in MemTiny mode.
const tinyBlockCacheSize = 16

// knownExtensions are the table-file suffixes Db.Preload recognizes.
var knownExtensions = []string{".mtb", ".zmt"}

// KnownExtension reports whether path names a recognized table file.
func KnownExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range knownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

type sideBuf struct {
	mu     sync.Mutex
	blocks *lru.Cache[int64, []byte]
	full   atomic.Pointer[[]byte]
}

// File is one material signature's table: its header, its symmetry key
// encoder, and lazily-loaded per-side score payloads. A File may start
// with only one side's path and gain the other through MergeFrom when
// Db.Preload discovers the sibling file.
type File struct {
	Name string

	MemMode MemMode
	log     zerolog.Logger

	rowCount int64 // fixed by the material name at Open time

	mu           sync.Mutex // guards everything below
	paths        [2]string
	headerLoaded bool
	loadErr      error // latched: a failed load is never retried
	header       *Header
	key          *egtbkey.Key
	blockTable   [2][]uint32
	dataStart    [2]int64 // payload byte offset within each side's file

	sides [2]sideBuf
}

// Open constructs a File for path without reading anything from disk.
// The filename stem names the material and the side to move: the last
// stem character is 'w' or 'b', the rest (minus a separating dot, if
// any) is the material name. The header and payload are loaded lazily
// on first query.
func Open(path string, log zerolog.Logger) (*File, error) {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if len(stem) < 3 {
		return nil, fmt.Errorf("egtbfile: filename %q too short for <material><side>", path)
	}
	var side int
	switch stem[len(stem)-1] {
	case 'w':
		side = 1
	case 'b':
		side = 0
	default:
		return nil, fmt.Errorf("egtbfile: filename %q does not end in a side letter", path)
	}
	name := strings.TrimSuffix(stem[:len(stem)-1], ".")

	key, err := egtbkey.NewKey(name)
	if err != nil {
		return nil, fmt.Errorf("egtbfile: %s: %w", path, err)
	}

	f := &File{
		Name:     name,
		log:      log,
		key:      key,
		rowCount: key.Sig.TotalSize(),
	}
	f.paths[side] = path
	return f, nil
}

// SidePath returns the table-file path registered for a side, empty if
// that side has not been discovered.
func (f *File) SidePath(side int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[side]
}

// PreloadHeader eagerly loads the header and (if compressed) the block
// tables, without materializing any payload bytes. Callers that want
// load-now semantics call this from Db.Preload; on-request callers
// skip it and let GetScore trigger the same work lazily.
func (f *File) PreloadHeader() error {
	return f.checkLoadHeader()
}

// checkLoadHeader loads the header under f.mu on first call. A load
// failure is latched: every later query observes the same error and
// returns MISSING without touching the disk again.
func (f *File) checkLoadHeader() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	if f.headerLoaded {
		return nil
	}
	if err := f.loadLocked(); err != nil {
		f.loadErr = err
		f.log.Warn().Err(err).Str("name", f.Name).Msg("egtbfile: load header")
		return err
	}
	f.headerLoaded = true
	return nil
}

// loadLocked reads each discovered side's header and block table and
// combines them into one header. The key is rebuilt from the material
// name and permuted by the on-disk order field, replacing the
// tentative identity-order key Open installed.
func (f *File) loadLocked() error {
	var combined *Header
	for side := 0; side < 2; side++ {
		path := f.paths[side]
		if path == "" {
			continue
		}
		h, table, err := readHeaderAndTable(path, f.rowCount)
		if err != nil {
			return err
		}
		f.blockTable[side] = table
		f.dataStart[side] = HeaderSize + int64(len(table)*4)
		if combined == nil {
			combined = h
		} else {
			combined.Property |= h.Property & (PropHasBlackTable | PropHasWhiteTable)
		}
		if side == 0 {
			combined.Property |= PropHasBlackTable
		} else {
			combined.Property |= PropHasWhiteTable
		}
	}
	if combined == nil {
		return fmt.Errorf("egtbfile: %s: no table file discovered for either side", f.Name)
	}

	key, err := egtbkey.NewKey(f.Name)
	if err != nil {
		return err
	}
	if combined.Order != 0 {
		if err := key.Sig.Permute(combined.OrderPermutation()); err != nil {
			return err
		}
	}

	f.header = combined
	f.key = key
	return nil
}

// readHeaderAndTable reads one side file's 128-byte header and, when
// the payload is compressed, the block table that follows it.
func readHeaderAndTable(path string, rowCount int64) (*Header, []uint32, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("egtbfile: open %s: %w", path, err)
	}
	defer fh.Close()

	r := bufio.NewReader(fh)
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("egtbfile: read header %s: %w", path, err)
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("egtbfile: %s: %w", path, err)
	}
	if !h.IsCompressed() {
		return h, nil, nil
	}

	numBlocks := int((rowCount + CompressBlockSize - 1) / CompressBlockSize)
	tblBuf := make([]byte, numBlocks*4)
	if _, err := io.ReadFull(r, tblBuf); err != nil {
		return nil, nil, fmt.Errorf("egtbfile: read block table %s: %w", path, err)
	}
	table := make([]uint32, numBlocks)
	for i := range table {
		table[i] = uint32(tblBuf[i*4]) | uint32(tblBuf[i*4+1])<<8 |
			uint32(tblBuf[i*4+2])<<16 | uint32(tblBuf[i*4+3])<<24
	}
	return h, table, nil
}

func (f *File) effectiveMode() MemMode {
	if f.MemMode == MemSmart {
		if f.rowCount < smartThreshold {
			return MemAll
		}
		return MemTiny
	}
	return f.MemMode
}

// GetCell returns the raw payload byte at row for the given side
// (0 = black to move, 1 = white to move), loading whatever slice of
// that side's payload the memory mode calls for.
func (f *File) GetCell(row int64, side int) (byte, error) {
	if err := f.checkLoadHeader(); err != nil {
		return 0, err
	}
	if row < 0 || row >= f.rowCount {
		return 0, fmt.Errorf("egtbfile: row %d out of range for %s", row, f.Name)
	}

	sb := &f.sides[side]
	// MemAll publishes the payload pointer exactly once; after that the
	// slice is immutable and readable without the side lock.
	if p := sb.full.Load(); p != nil {
		return (*p)[row], nil
	}

	f.mu.Lock()
	path := f.paths[side]
	compressed := f.header.IsCompressed()
	table := f.blockTable[side]
	start := f.dataStart[side]
	f.mu.Unlock()
	if path == "" {
		return 0, fmt.Errorf("egtbfile: %s has no file for side %d", f.Name, side)
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()
	if p := sb.full.Load(); p != nil {
		return (*p)[row], nil
	}

	if f.effectiveMode() == MemAll {
		data, err := readWholePayload(path, start, f.rowCount, compressed, table)
		if err != nil {
			return 0, err
		}
		sb.full.Store(&data)
		return data[row], nil
	}

	blockStart := (row / CompressBlockSize) * CompressBlockSize
	if sb.blocks == nil {
		sb.blocks, _ = lru.New[int64, []byte](tinyBlockCacheSize)
	}
	if b, ok := sb.blocks.Get(blockStart); ok {
		return b[row-blockStart], nil
	}
	b, err := readBlock(path, start, f.rowCount, compressed, table, blockStart)
	if err != nil {
		return 0, err
	}
	if row-blockStart >= int64(len(b)) {
		return 0, fmt.Errorf("egtbfile: block at %d in %s shorter than expected", blockStart, path)
	}
	sb.blocks.Add(blockStart, b)
	return b[row-blockStart], nil
}

func readWholePayload(path string, start, rowCount int64, compressed bool, table []uint32) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("egtbfile: open %s: %w", path, err)
	}
	defer fh.Close()

	if !compressed {
		buf := make([]byte, rowCount)
		if _, err := fh.ReadAt(buf, start); err != nil {
			return nil, fmt.Errorf("egtbfile: read payload %s: %w", path, err)
		}
		return buf, nil
	}

	var end int64
	if n := len(table); n > 0 {
		end = int64(table[n-1] &^ codec.UncompressedBit)
	}
	raw := make([]byte, end)
	if _, err := fh.ReadAt(raw, start); err != nil {
		return nil, fmt.Errorf("egtbfile: read compressed payload %s: %w", path, err)
	}
	out, err := codec.DecompressAllBlocks(CompressBlockSize, table, raw, rowCount)
	if err != nil {
		return nil, fmt.Errorf("egtbfile: decompress %s: %w", path, err)
	}
	return out, nil
}

// readBlock fetches the single 4 KiB-aligned payload block starting at
// blockStart, decompressing it if the block table says it was packed.
func readBlock(path string, start, rowCount int64, compressed bool, table []uint32, blockStart int64) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("egtbfile: open %s: %w", path, err)
	}
	defer fh.Close()

	length := int64(CompressBlockSize)
	if blockStart+length > rowCount {
		length = rowCount - blockStart
	}

	if !compressed {
		buf := make([]byte, length)
		if _, err := fh.ReadAt(buf, start+blockStart); err != nil {
			return nil, fmt.Errorf("egtbfile: read block %s @%d: %w", path, blockStart, err)
		}
		return buf, nil
	}

	idx := int(blockStart / CompressBlockSize)
	if idx >= len(table) {
		return nil, fmt.Errorf("egtbfile: block %d beyond table in %s", idx, path)
	}
	var prevEnd uint32
	if idx > 0 {
		prevEnd = table[idx-1] &^ codec.UncompressedBit
	}
	end := table[idx] &^ codec.UncompressedBit
	if end < prevEnd {
		return nil, fmt.Errorf("egtbfile: block table not monotonic at %d in %s", idx, path)
	}
	raw := make([]byte, end-prevEnd)
	if _, err := fh.ReadAt(raw, start+int64(prevEnd)); err != nil {
		return nil, fmt.Errorf("egtbfile: read block %d of %s: %w", idx, path, err)
	}
	if table[idx]&codec.UncompressedBit != 0 {
		return raw, nil
	}
	return codec.Decompress(raw, int(length))
}

// GetScore decodes the score for row/side into a sentinel or a signed
// distance-to-mate integer, per the header's score-range property.
// Every failure mode (side absent, row beyond the table, I/O or decode
// error) collapses to ScoreMissing, the probe contract's only error
// channel.
func (f *File) GetScore(row int64, side int) int {
	if err := f.checkLoadHeader(); err != nil {
		return ScoreMissing
	}
	if row < 0 || row >= f.rowCount {
		return ScoreMissing
	}

	f.mu.Lock()
	hasSide := f.paths[side] != "" && f.header.HasSideTable(side)
	special := f.header.SpecialScoreRange()
	f.mu.Unlock()
	if !hasSide {
		return ScoreMissing
	}

	c, err := f.GetCell(row, side)
	if err != nil {
		f.log.Debug().Err(err).Str("name", f.Name).Int64("row", row).Msg("egtbfile: cell read")
		return ScoreMissing
	}
	return cellToScore(c, special)
}

// Key returns the file's index encoder. The header is loaded first so
// the on-disk slot order, if any, is already applied.
func (f *File) Key() (*egtbkey.Key, error) {
	if err := f.checkLoadHeader(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key, nil
}

// RowCount returns the table's row count, fixed by the material name.
func (f *File) RowCount() int64 { return f.rowCount }

// ReleaseBuffers drops every cached payload block and block table so
// they can be re-fetched from disk on next use. The header is dropped
// with them; a latched load error stays latched. Must not be called
// concurrently with queries.
func (f *File) ReleaseBuffers() {
	for side := range f.sides {
		sb := &f.sides[side]
		sb.mu.Lock()
		sb.full.Store(nil)
		if sb.blocks != nil {
			sb.blocks.Purge()
		}
		sb.mu.Unlock()
	}

	f.mu.Lock()
	if f.loadErr == nil {
		f.headerLoaded = false
		f.header = nil
		f.blockTable = [2][]uint32{}
		f.dataStart = [2]int64{}
	}
	f.mu.Unlock()
}

// MergeFrom absorbs the donor's side paths into f (used when
// Db.Preload discovers the sibling side file of an already-registered
// signature) and empties the donor so dropping it is safe. If f had
// already loaded its header, the load is redone lazily so the combined
// side bits reflect both files.
func (f *File) MergeFrom(donor *File) {
	donor.mu.Lock()
	dpaths := donor.paths
	donor.paths = [2]string{}
	donor.headerLoaded = false
	donor.header = nil
	donor.blockTable = [2][]uint32{}
	donor.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	changed := false
	for side, p := range dpaths {
		if p != "" && f.paths[side] == "" {
			f.paths[side] = p
			changed = true
		}
	}
	if changed && f.loadErr == nil {
		f.headerLoaded = false
		f.header = nil
		f.blockTable = [2][]uint32{}
		f.dataStart = [2]int64{}
	}
}
