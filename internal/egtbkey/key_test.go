package egtbkey

import (
	"testing"

	"github.com/kranbrook/egtb/internal/rules"
	"github.com/kranbrook/egtb/internal/symmetry"
)

func plWithKingAnd(kingSq rules.Square, side rules.Side, extra ...rules.Piece) rules.PieceList {
	var pl rules.PieceList
	pl[0] = rules.Piece{Type: rules.King, Side: side, Sq: kingSq}
	for i, p := range extra {
		pl[i+1] = p
	}
	return pl
}

func TestComputeSizeKRK(t *testing.T) {
	size, err := ComputeSize("krk")
	if err != nil {
		t.Fatalf("ComputeSize: %v", err)
	}
	want := int64(564 * 64)
	if size != want {
		t.Fatalf("ComputeSize(krk) = %d, want %d", size, want)
	}
}

func TestComputeSizeKPK(t *testing.T) {
	size, err := ComputeSize("kpk")
	if err != nil {
		t.Fatalf("ComputeSize: %v", err)
	}
	want := int64(1806 * 48)
	if size != want {
		t.Fatalf("ComputeSize(kpk) = %d, want %d", size, want)
	}
}

// TestEncodeDecodeCanonicalKRK uses a position already in the table's
// canonical orientation (white king inside the king-8 octant), so the
// decoded squares must come back exactly as given.
func TestEncodeDecodeCanonicalKRK(t *testing.T) {
	k, err := NewKey("krk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	white := plWithKingAnd(18, rules.White, rules.Piece{Type: rules.Rook, Side: rules.White, Sq: 40})
	black := plWithKingAnd(60, rules.Black)

	res, err := k.Encode(white, black)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.FlipSide {
		t.Fatal("canonical position should not flip sides")
	}
	// The king pair is the most significant digit: row = kk*64 + rook.
	wantRow := int64(symmetry.KK8Index(18, 60))*64 + 40
	if res.Row != wantRow {
		t.Fatalf("row = %d, want %d", res.Row, wantRow)
	}

	dw, db, err := k.Decode(res.Row)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dw[0].Sq != white[0].Sq || db[0].Sq != black[0].Sq {
		t.Fatalf("king squares mismatch: got w=%d b=%d, want w=%d b=%d", dw[0].Sq, db[0].Sq, white[0].Sq, black[0].Sq)
	}
	if dw[1].Sq != white[1].Sq || dw[1].Type != rules.Rook {
		t.Fatalf("rook mismatch: got %+v, want sq=%d", dw[1], white[1].Sq)
	}
}

// TestEncodeRowMatchesMixedRadix pins the multiplier convention
// directly: each slot's multiplier is the product of every later
// slot's size, so the last-parsed slot is the units digit.
func TestEncodeRowMatchesMixedRadix(t *testing.T) {
	k, err := NewKey("kpk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	white := plWithKingAnd(17, rules.White, rules.Piece{Type: rules.Pawn, Side: rules.White, Sq: 20})
	black := plWithKingAnd(60, rules.Black)

	res, err := k.Encode(white, black)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wantRow := int64(symmetry.KK2Index(17, 60))*48 + (20 - 8)
	if res.Row != wantRow {
		t.Fatalf("row = %d, want %d", res.Row, wantRow)
	}

	if got := k.Sig.Mult[0]; got != 48 {
		t.Fatalf("Mult[0] = %d, want 48 (product of later slot sizes)", got)
	}
	if got := k.Sig.Mult[len(k.Sig.Mult)-1]; got != 1 {
		t.Fatalf("last Mult = %d, want 1 (units digit)", got)
	}
}

// TestDecodeEncodeRoundTripRows checks the round-trip law row by row:
// re-encoding any decoded row must land back on the same row, both for
// a pawnless (king-8) and a pawn (king-2) signature.
func TestDecodeEncodeRoundTripRows(t *testing.T) {
	for _, name := range []string{"krk", "kpk", "krrk"} {
		k, err := NewKey(name)
		if err != nil {
			t.Fatalf("NewKey(%s): %v", name, err)
		}
		size := k.Sig.TotalSize()
		step := size/997 + 1
		for row := int64(0); row < size; row += step {
			white, black, err := k.Decode(row)
			if err != nil {
				t.Fatalf("%s: Decode(%d): %v", name, row, err)
			}
			res, err := k.Encode(white, black)
			if err != nil {
				t.Fatalf("%s: Encode of decoded row %d: %v", name, row, err)
			}
			if res.Row != row {
				t.Fatalf("%s: round trip %d -> %d", name, row, res.Row)
			}
		}
	}
}

// TestEncodeMirroredPositionSameRow pins the symmetry law: a position
// and its horizontal mirror fold to the same row in a pawnless table.
func TestEncodeMirroredPositionSameRow(t *testing.T) {
	k, err := NewKey("krk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	white := plWithKingAnd(18, rules.White, rules.Piece{Type: rules.Rook, Side: rules.White, Sq: 40})
	black := plWithKingAnd(60, rules.Black)

	mirror := func(sq rules.Square) rules.Square {
		return rules.Square(sq.Rank()*8 + (7 - sq.File()))
	}
	mw := plWithKingAnd(mirror(18), rules.White, rules.Piece{Type: rules.Rook, Side: rules.White, Sq: mirror(40)})
	mb := plWithKingAnd(mirror(60), rules.Black)

	a, err := k.Encode(white, black)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := k.Encode(mw, mb)
	if err != nil {
		t.Fatalf("Encode mirror: %v", err)
	}
	if a.Row != b.Row {
		t.Fatalf("mirror encodes to row %d, want %d", b.Row, a.Row)
	}
}

func TestEncodeFlipsWeakerSideToBlack(t *testing.T) {
	k, err := NewKey("krk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	// Black holds the rook; White is bare king, so the encoder must
	// normalize by flip-swapping sides.
	white := plWithKingAnd(4, rules.White)
	black := plWithKingAnd(60, rules.Black, rules.Piece{Type: rules.Rook, Side: rules.Black, Sq: 20})

	res, err := k.Encode(white, black)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !res.FlipSide {
		t.Fatal("expected FlipSide=true when black holds the material")
	}
}

func TestPermuteReordersSlots(t *testing.T) {
	k, err := NewKey("krk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	size := k.Sig.TotalSize()

	if err := k.Sig.Permute([6]int{1, 0, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if k.Sig.TotalSize() != size {
		t.Fatalf("TotalSize changed under permutation: %d != %d", k.Sig.TotalSize(), size)
	}
	if k.Sig.Slots[0].Tag != TagRook || k.Sig.Slots[1].Tag != TagKingPair {
		t.Fatalf("slots not reordered: %+v", k.Sig.Slots)
	}

	// The permuted key must still satisfy the round-trip law.
	white, black, err := k.Decode(12345)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	res, err := k.Encode(white, black)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.Row != 12345 {
		t.Fatalf("permuted round trip 12345 -> %d", res.Row)
	}
}

func TestPermuteRejectsBadOrder(t *testing.T) {
	k, err := NewKey("krk")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if err := k.Sig.Permute([6]int{0, 0, 2, 3, 4, 5}); err == nil {
		t.Fatal("expected error for duplicate order entry")
	}
	if err := k.Sig.Permute([6]int{0, 1, 3, 2, 4, 5}); err == nil {
		t.Fatal("expected error for out-of-range permutation of a 2-slot signature")
	}
}

func TestComputeSizeRejectsBadName(t *testing.T) {
	if _, err := ComputeSize("qkk"); err == nil {
		t.Fatal("expected error for material name not starting with k")
	}
	if _, err := ComputeSize("kzk"); err == nil {
		t.Fatal("expected error for unknown piece letter")
	}
}
