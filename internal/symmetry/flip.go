// Package symmetry provides the dihedral-group board symmetry tables
// and ordered-tuple combinatorial index tables the key encoder uses to
// fold a position down to its canonical representative. Everything
// here is deterministic board geometry, not chess rules, so it has no
// dependency on internal/rules.Board.
package symmetry

import "github.com/kranbrook/egtb/internal/rules"

// FlipMode names one element of the board's dihedral symmetry group of
// order 8 (identity, the two axis reflections, the two diagonal
// reflections, and the three non-trivial rotations).
type FlipMode int

const (
	None FlipMode = iota
	Horizontal
	Vertical
	FlipVH
	FlipHV
	Rotate90
	Rotate180
	Rotate270
)

// composeTable[a][b] gives the flip mode equivalent to applying a then
// b. It is derived once, at init, by brute-force matching FlipSquare's
// own output over every square against each of the 8 candidate modes,
// rather than transcribed as a hand-written Cayley table.
var composeTable [8][8]FlipMode

func init() {
	for a := FlipMode(0); a < 8; a++ {
		for b := FlipMode(0); b < 8; b++ {
			composeTable[a][b] = matchComposition(a, b)
		}
	}
}

func matchComposition(a, b FlipMode) FlipMode {
	for cand := FlipMode(0); cand < 8; cand++ {
		match := true
		for sq := rules.Square(0); sq < 64; sq++ {
			if FlipSquare(FlipSquare(sq, a), b) != FlipSquare(sq, cand) {
				match = false
				break
			}
		}
		if match {
			return cand
		}
	}
	panic("symmetry: no matching flip mode for composition")
}

// Compose returns the flip mode equivalent to applying a, then b.
func Compose(a, b FlipMode) FlipMode {
	return composeTable[a][b]
}

// FlipSquare maps sq through the given flip mode. The board is indexed
// rank-major with a8 = 0, h1 = 63: file = sq&7, rank = sq>>3. The eight
// modes are the dihedral group of the square: identity, the two
// axis mirrors (Horizontal, Vertical), the two diagonal mirrors
// (FlipVH, FlipHV), and the three non-trivial rotations.
func FlipSquare(sq rules.Square, mode FlipMode) rules.Square {
	if sq == rules.NoSquare {
		return sq
	}
	f, r := sq.File(), sq.Rank()
	var nf, nr int
	switch mode {
	case None:
		nf, nr = f, r
	case Horizontal:
		nf, nr = 7-f, r
	case Vertical:
		nf, nr = f, 7-r
	case FlipVH: // main-diagonal mirror (transpose)
		nf, nr = r, f
	case FlipHV: // anti-diagonal mirror
		nf, nr = 7-r, 7-f
	case Rotate90:
		nf, nr = 7-r, f
	case Rotate180:
		nf, nr = 7-f, 7-r
	case Rotate270:
		nf, nr = r, 7-f
	}
	return rules.Square(nr*8 + nf)
}

// kingFlipMode[sq] is the flip mode needed to fold the king-8 reduction
// (a corner of the board's 10 strong-king squares) onto its canonical
// representative, indexed by the king's square before folding.
var kingFlipMode = [64]FlipMode{
	0, 0, 0, 0, 1, 1, 1, 1,
	3, 0, 0, 0, 1, 1, 1, 7,
	3, 3, 0, 0, 1, 1, 7, 7,
	3, 3, 3, 0, 1, 7, 7, 7,
	5, 5, 5, 2, 6, 4, 4, 4,
	5, 5, 2, 2, 6, 6, 4, 4,
	5, 2, 2, 2, 6, 6, 6, 4,
	2, 2, 2, 2, 6, 6, 6, 6,
}

// KingFlipMode returns the flip mode that folds sq into the king-8
// canonical octant.
func KingFlipMode(sq rules.Square) FlipMode {
	return kingFlipMode[sq]
}

// kIdxToPos lists the 10 squares that form the king-8 reduction's
// canonical octant: the a8-d8-d5 triangle, i.e. the diagonal a8..d5
// plus the squares between it and rank 8 on files b-d.
var kIdxToPos = [10]rules.Square{0, 1, 2, 3, 9, 10, 11, 18, 19, 27}

// kIdx maps a canonical-octant square to its 0..9 king-8 slot index, or
// -1 if the square is not one of the 10 canonical squares.
var kIdx [64]int

func init() {
	for i := range kIdx {
		kIdx[i] = -1
	}
	for i, sq := range kIdxToPos {
		kIdx[sq] = i
	}
}

// KIdxToPos returns the i'th canonical king-8 square.
func KIdxToPos(i int) rules.Square { return kIdxToPos[i] }

// KIdx returns the king-8 slot index of sq, or -1 if sq is not one of
// the 10 canonical squares.
func KIdx(sq rules.Square) int { return kIdx[sq] }
