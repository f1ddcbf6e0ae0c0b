package egtbkey

import (
	"fmt"
	"sort"

	"github.com/kranbrook/egtb/internal/rules"
	"github.com/kranbrook/egtb/internal/symmetry"
)

// Key encodes and decodes table rows for one material signature.
type Key struct {
	Sig *Signature
}

// NewKey builds a Key for the given canonical material name.
func NewKey(name string) (*Key, error) {
	sig, err := ParseAttr(name)
	if err != nil {
		return nil, err
	}
	return &Key{Sig: sig}, nil
}

// Result is the outcome of Encode: the row number and whether the
// position had to be color-flipped (black-to-move-equivalent) to reach
// the table's standard-White orientation.
type Result struct {
	Row      int64
	FlipSide bool
}

// Encode folds the position held by white/black piece lists down to
// its canonical row in this signature's table. The stronger side (by
// piece count, then material) is normalized to White; FlipSide in the
// result records whether that normalization inverted the board's
// actual colors.
func (k *Key) Encode(white, black rules.PieceList) (Result, error) {
	lists := [2]rules.PieceList{black, white} // index by rules.Side (Black=0, White=1)

	cnt := [2]int{black.Count(), white.Count()}
	mat := [2]int{black.Material(), white.Material()}

	sd := rules.White
	flip := symmetry.None
	if cnt[rules.Black] > cnt[rules.White] || (cnt[rules.Black] == cnt[rules.White] && mat[rules.Black] > mat[rules.White]) {
		sd = rules.Black
		flip = symmetry.Vertical
	}

	// The king fold decides the flip every other slot sees, so the
	// joint king slot is resolved first no matter where the order
	// permutation placed it.
	kingSlot := -1
	for i, slot := range k.Sig.Slots {
		if slot.Tag == TagKingPair {
			kingSlot = i
			break
		}
	}
	if kingSlot < 0 {
		return Result{}, fmt.Errorf("egtbkey: signature %q has no king slot", k.Sig.Name)
	}
	kkIdx, kingFlip, err := encodeKingPair(lists, sd, flip, k.Sig.HasPawns)
	if err != nil {
		return Result{}, err
	}
	key := int64(kkIdx) * k.Sig.Mult[kingSlot]

	for i, slot := range k.Sig.Slots {
		if i == kingSlot {
			continue
		}
		effSide := rules.Side(slot.Side)
		if sd == rules.Black {
			effSide = effSide.Opposite()
		}
		idx, err := encodeRun(lists[effSide], slot.Tag, slot.Count, kingFlip)
		if err != nil {
			return Result{}, err
		}
		key += int64(idx) * k.Sig.Mult[i]
	}

	if key < 0 {
		return Result{}, fmt.Errorf("egtbkey: negative key computed for %q", k.Sig.Name)
	}
	return Result{Row: key, FlipSide: sd == rules.Black}, nil
}

// encodeKingPair folds both kings into the joint reduction slot,
// returning its row index and the flip mode that places the side-to
// the-move-relative-strong king in the canonical region (mirrors the
// original's KK_8/KK_2 handling: 8-fold when no pawns are on the
// board, 2-fold otherwise since pawns break diagonal symmetry).
func encodeKingPair(lists [2]rules.PieceList, sd rules.Side, flip symmetry.FlipMode, hasPawns bool) (int, symmetry.FlipMode, error) {
	pos0 := symmetry.FlipSquare(lists[sd].King().Sq, flip)
	pos1 := symmetry.FlipSquare(lists[sd.Opposite()].King().Sq, flip)

	if !hasPawns {
		if kf := symmetry.KingFlipMode(pos0); kf != symmetry.None {
			flip = symmetry.Compose(flip, kf)
			pos0 = symmetry.FlipSquare(pos0, kf)
			pos1 = symmetry.FlipSquare(pos1, kf)
		}
		idx := symmetry.KK8Index(int(pos0), int(pos1))
		if idx < 0 {
			return 0, flip, fmt.Errorf("egtbkey: king pair %d,%d not in KK8 table", pos0, pos1)
		}
		return idx, flip, nil
	}

	if pos0.File() > 3 {
		flip = symmetry.Compose(flip, symmetry.Horizontal)
		pos0 = symmetry.FlipSquare(pos0, symmetry.Horizontal)
		pos1 = symmetry.FlipSquare(pos1, symmetry.Horizontal)
	}
	idx := symmetry.KK2Index(int(pos0), int(pos1))
	if idx < 0 {
		return 0, flip, fmt.Errorf("egtbkey: king pair %d,%d not in KK2 table", pos0, pos1)
	}
	return idx, flip, nil
}

// encodeRun finds the run'th consecutive pieces of the given type in
// pl, flips their squares, and encodes them as a single tuple index.
func encodeRun(pl rules.PieceList, tag Tag, run int, flip symmetry.FlipMode) (int, error) {
	var pt rules.PieceType
	switch tag {
	case TagQueen:
		pt = rules.Queen
	case TagRook:
		pt = rules.Rook
	case TagBishop:
		pt = rules.Bishop
	case TagKnight:
		pt = rules.Knight
	case TagPawn:
		pt = rules.Pawn
	}

	var sq []int
	for _, p := range pl {
		if !p.IsEmpty() && p.Type == pt {
			sq = append(sq, int(symmetry.FlipSquare(p.Sq, flip)))
			if len(sq) == run {
				break
			}
		}
	}
	if len(sq) != run {
		return 0, fmt.Errorf("egtbkey: expected %d pieces of type %v, found %d", run, pt, len(sq))
	}

	if tag == TagPawn {
		switch run {
		case 1:
			return sq[0] - 8, nil
		case 2:
			return symmetry.PPIndex(sq[0], sq[1]), nil
		case 3:
			return symmetry.PPPIndex(sq[0], sq[1], sq[2]), nil
		case 4:
			return symmetry.PPPPIndex(sq[0], sq[1], sq[2], sq[3]), nil
		}
	}
	switch run {
	case 1:
		return sq[0], nil
	case 2:
		return symmetry.XXIndex(sq[0], sq[1]), nil
	case 3:
		return symmetry.XXXIndex(sq[0], sq[1], sq[2]), nil
	case 4:
		return symmetry.XXXXIndex(sq[0], sq[1], sq[2], sq[3]), nil
	}
	return 0, fmt.Errorf("egtbkey: unsupported run length %d", run)
}

// Decode rebuilds the white and black piece lists for the given row,
// in the table's own canonical orientation. No un-flipping is applied;
// callers that need the position as it stood on the board must track
// FlipSide themselves.
func (k *Key) Decode(row int64) (white, black rules.PieceList, err error) {
	if row < 0 || row >= k.Sig.TotalSize() {
		return white, black, fmt.Errorf("egtbkey: row %d out of range for %q", row, k.Sig.Name)
	}

	next := make([]int, 2)
	for i := range next {
		next[i] = 1 // slot 0 of each side's list is the king
	}

	// Slot 0 carries the largest multiplier, so digits peel off in
	// natural slot order.
	for i, slot := range k.Sig.Slots {
		mult := k.Sig.Mult[i]
		idx := int(row / mult)
		row -= int64(idx) * mult

		switch slot.Tag {
		case TagKingPair:
			var p0, p1 int
			if slot.Size == symmetry.KK8Size {
				p0, p1 = symmetry.KK8Pair(idx)
			} else {
				p0, p1 = symmetry.KK2Pair(idx)
			}
			white[0] = rules.Piece{Type: rules.King, Side: rules.White, Sq: rules.Square(p0)}
			black[0] = rules.Piece{Type: rules.King, Side: rules.Black, Sq: rules.Square(p1)}
		default:
			pl := &black
			if slot.Side == int(rules.White) {
				pl = &white
			}
			placeRun(pl, next, slot.Side, tagPieceType(slot.Tag), slot.Tag, slot.Count, idx)
		}
	}
	return white, black, nil
}

func tagPieceType(t Tag) rules.PieceType {
	switch t {
	case TagQueen:
		return rules.Queen
	case TagRook:
		return rules.Rook
	case TagBishop:
		return rules.Bishop
	case TagKnight:
		return rules.Knight
	case TagPawn:
		return rules.Pawn
	}
	return rules.Empty
}

func placeRun(pl *rules.PieceList, next []int, side int, pt rules.PieceType, tag Tag, run, idx int) {
	var sq []int
	if tag == TagPawn {
		switch run {
		case 1:
			sq = []int{idx + 8}
		case 2:
			a, b := symmetry.PPPair(idx)
			sq = []int{a, b}
		case 3:
			a, b, c := symmetry.PPPPair(idx)
			sq = []int{a, b, c}
		case 4:
			a, b, c, d := symmetry.PPPPPair(idx)
			sq = []int{a, b, c, d}
		}
	} else {
		switch run {
		case 1:
			sq = []int{idx}
		case 2:
			a, b := symmetry.XXPair(idx)
			sq = []int{a, b}
		case 3:
			a, b, c := symmetry.XXXPair(idx)
			sq = []int{a, b, c}
		case 4:
			a, b, c, d := symmetry.XXXXPair(idx)
			sq = []int{a, b, c, d}
		}
	}
	sort.Ints(sq)
	for _, s := range sq {
		slotIdx := next[side]
		next[side]++
		pl[slotIdx] = rules.Piece{Type: pt, Side: rules.Side(side), Sq: rules.Square(s)}
	}
}
