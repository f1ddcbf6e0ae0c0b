package symmetry

import "sort"

// KK8Size and KK2Size are the cardinalities of the two-king reduction
// tables: KK8 excludes positions by the full 8-fold symmetry (one king
// confined to the canonical octant), KK2 by the weaker 2-fold (one king
// confined to the a-d half of the board).
const (
	KK8Size = 564
	KK2Size = 1806
)

// Sizes of the ordered-tuple combinatorial tables for same-type pieces
// sharing one side, for 2, 3, and 4 non-pawn pieces (XX/XXX/XXXX) and
// the pawn-restricted equivalents (PP/PPP/PPPP, squares 8..55 only).
const (
	XXSize   = 2016
	XXXSize  = 41664
	XXXXSize = 635376
	PPSize   = 1128
	PPPSize  = 17296
	PPPPSize = 194580
)

// kk8 and kk2 list every legal (non-adjacent, non-identical) pair of
// king squares as pos0<<8|pos1, sorted ascending for binary search.
// kk8 additionally confines pos0 to the 10-square king-8 canonical
// octant; kk2 confines pos0 to files a-d.
var kk8 [KK8Size]int32
var kk2 [KK2Size]int32

// xx, xxx, xxxx hold every strictly increasing tuple of 2/3/4 distinct
// squares out of 64, packed big-endian into one int (8 bits/square).
// pp, ppp, pppp are the same restricted to pawn squares 8..55.
var (
	xx   [XXSize]int32
	xxx  [XXXSize]int32
	xxxx [XXXXSize]int32
	pp   [PPSize]int32
	ppp  [PPPSize]int32
	pppp [PPPPSize]int32
)

func init() {
	buildKingTables()
	buildTupleTables(0, 64, xx[:], xxx[:], xxxx[:])
	buildTupleTables(8, 56, pp[:], ppp[:], pppp[:])
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func buildKingTables() {
	x := 0
	for _, k0 := range kIdxToPos {
		r0, f0 := int(k0)>>3, int(k0)&7
		for k1 := 0; k1 < 64; k1++ {
			if int(k0) == k1 || (abs(k1>>3-r0) <= 1 && abs(k1&7-f0) <= 1) {
				continue
			}
			kk8[x] = int32(int(k0)<<8 | k1)
			x++
		}
	}
	sort.Slice(kk8[:], func(i, j int) bool { return kk8[i] < kk8[j] })

	x = 0
	for k0 := 0; k0 < 64; k0++ {
		if f0 := k0 & 7; f0 > 3 {
			continue
		}
		r0, f0 := k0>>3, k0&7
		for k1 := 0; k1 < 64; k1++ {
			if k0 == k1 || (abs(k1>>3-r0) <= 1 && abs(k1&7-f0) <= 1) {
				continue
			}
			kk2[x] = int32(k0<<8 | k1)
			x++
		}
	}
	sort.Slice(kk2[:], func(i, j int) bool { return kk2[i] < kk2[j] })
}

func buildTupleTables(lo, hi int, two, three, four []int32) {
	k0, k1, k2 := 0, 0, 0
	for i0 := lo; i0 < hi; i0++ {
		for i1 := i0 + 1; i1 < hi; i1++ {
			two[k0] = int32(i0<<8 | i1)
			k0++
			for i2 := i1 + 1; i2 < hi; i2++ {
				three[k1] = int32(i0<<16 | i1<<8 | i2)
				k1++
				for i3 := i2 + 1; i3 < hi; i3++ {
					four[k2] = int32(i0<<24 | i1<<16 | i2<<8 | i3)
					k2++
				}
			}
		}
	}
}

func bsearch(table []int32, key int32) int {
	i, j := 0, len(table)-1
	for i <= j {
		mid := (i + j) / 2
		switch {
		case table[mid] == key:
			return mid
		case key < table[mid]:
			j = mid - 1
		default:
			i = mid + 1
		}
	}
	return -1
}

func packSorted2(a, b int) int32 {
	if a > b {
		a, b = b, a
	}
	return int32(a<<8 | b)
}

func packSorted3(a, b, c int) int32 {
	s := []int{a, b, c}
	sort.Ints(s)
	return int32(s[0]<<16 | s[1]<<8 | s[2])
}

func packSorted4(a, b, c, d int) int32 {
	s := []int{a, b, c, d}
	sort.Ints(s)
	return int32(s[0]<<24 | s[1]<<16 | s[2]<<8 | s[3])
}

// KK8Index and KK2Index return the row index of a (pos0, pos1) king
// pair in the KK8/KK2 reduction table, or -1 if not present (the pair
// was excluded as adjacent, identical, or outside the canonical half).
func KK8Index(pos0, pos1 int) int { return bsearch(kk8[:], int32(pos0<<8|pos1)) }
func KK2Index(pos0, pos1 int) int { return bsearch(kk2[:], int32(pos0<<8|pos1)) }

// KK8Pair and KK2Pair decode a row index back to its (pos0, pos1) pair.
func KK8Pair(idx int) (int, int) { v := kk8[idx]; return int(v >> 8), int(v & 0xff) }
func KK2Pair(idx int) (int, int) { v := kk2[idx]; return int(v >> 8), int(v & 0xff) }

// XXIndex/XXXIndex/XXXXIndex return the row index of an unordered
// tuple of 2/3/4 distinct non-pawn squares.
func XXIndex(a, b int) int       { return bsearch(xx[:], packSorted2(a, b)) }
func XXXIndex(a, b, c int) int   { return bsearch(xxx[:], packSorted3(a, b, c)) }
func XXXXIndex(a, b, c, d int) int { return bsearch(xxxx[:], packSorted4(a, b, c, d)) }

// PPIndex/PPPIndex/PPPPIndex are the pawn-restricted equivalents
// (squares 8..55 only).
func PPIndex(a, b int) int       { return bsearch(pp[:], packSorted2(a, b)) }
func PPPIndex(a, b, c int) int   { return bsearch(ppp[:], packSorted3(a, b, c)) }
func PPPPIndex(a, b, c, d int) int { return bsearch(pppp[:], packSorted4(a, b, c, d)) }

// XXPair/XXXPair/XXXXPair and PPPair/PPPPair/PPPPPair decode a row
// index back to its square tuple.
func XXPair(idx int) (int, int) { v := xx[idx]; return int(v >> 8), int(v & 0xff) }
func XXXPair(idx int) (int, int, int) {
	v := xxx[idx]
	return int(v >> 16), int((v >> 8) & 0xff), int(v & 0xff)
}
func XXXXPair(idx int) (int, int, int, int) {
	v := xxxx[idx]
	return int(v >> 24), int((v >> 16) & 0xff), int((v >> 8) & 0xff), int(v & 0xff)
}
func PPPair(idx int) (int, int) { v := pp[idx]; return int(v >> 8), int(v & 0xff) }
func PPPPair(idx int) (int, int, int) {
	v := ppp[idx]
	return int(v >> 16), int((v >> 8) & 0xff), int(v & 0xff)
}
func PPPPPair(idx int) (int, int, int, int) {
	v := pppp[idx]
	return int(v >> 24), int((v >> 16) & 0xff), int((v >> 8) & 0xff), int(v & 0xff)
}
