// Package rules defines the data model and external adapter contract the
// EGTB core is built around: pieces, piece lists, and the chess-rules
// interface the core calls into for move generation, making/unmaking
// moves, and legality checks. The core never implements chess rules
// itself; it only consumes this contract.
package rules

// PieceType enumerates the piece kinds a PieceList slot can hold.
// Empty is the zero value, so an unset slot and an unset Move.Captured
// field both read as no piece at all.
type PieceType int

const (
	Empty PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// pieceTypeName maps a non-king, non-empty PieceType to its material-name
// letter, indexed the same way the original source indexes pieceTypeName:
// Q, R, B, H (knight), P.
const pieceTypeName = "qrbhp"

// ExchangePieceValue gives the material weight used to decide which side
// is "stronger" when normalizing a position to standard-White (§4.3).
var ExchangePieceValue = [...]int{
	King:   0,
	Queen:  9,
	Rook:   5,
	Bishop: 3,
	Knight: 3,
	Pawn:   1,
	Empty:  0,
}

// Side is the color to move or a piece's owner.
type Side int

const (
	Black Side = iota
	White
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == White {
		return Black
	}
	return White
}

// Square is a board square, 0 = a8, 63 = h1, rank-major with rank 8 first.
type Square int

// NoSquare marks an unoccupied slot or an absent en-passant target.
const NoSquare Square = -1

// File and Rank decompose a Square into zero-based file (a=0) and rank
// (rank 8 = 0), matching the encoding used throughout the index encoder.
func (sq Square) File() int { return int(sq) & 7 }
func (sq Square) Rank() int { return int(sq) >> 3 }

// Piece is one occupant of a PieceList slot.
type Piece struct {
	Type PieceType
	Side Side
	Sq   Square
}

// IsEmpty reports whether the slot is unoccupied.
func (p Piece) IsEmpty() bool { return p.Type == Empty || p.Sq == NoSquare }

// MaxPieces is the fixed slot capacity of a PieceList; slot 0 is always
// the king.
const MaxPieces = 16

// PieceList is a fixed-capacity ordered sequence of pieces for one side.
// Slot 0 always holds the king; empty slots carry Type == Empty.
type PieceList [MaxPieces]Piece

// King returns the side's king piece (slot 0).
func (pl PieceList) King() Piece { return pl[0] }

// Count returns the number of occupied slots, including the king.
func (pl PieceList) Count() int {
	n := 0
	for _, p := range pl {
		if !p.IsEmpty() {
			n++
		}
	}
	return n
}

// Material sums the exchange value of every piece in the list (including
// the king, whose value is 0).
func (pl PieceList) Material() int {
	total := 0
	for _, p := range pl {
		if !p.IsEmpty() {
			total += ExchangePieceValue[p.Type]
		}
	}
	return total
}

// PieceListToName builds the canonical lowercase material name for a pair
// of piece lists (white, black): a king letter followed by piece-type
// letters in Q,R,B,H,P order, white's group first.
func PieceListToName(white, black PieceList) string {
	var cnt [2][7]int
	for _, p := range white {
		if !p.IsEmpty() {
			cnt[1][p.Type]++
		}
	}
	for _, p := range black {
		if !p.IsEmpty() {
			cnt[0][p.Type]++
		}
	}

	var b []byte
	for sd := 1; sd >= 0; sd-- {
		b = append(b, 'k')
		for t := Queen; t <= Pawn; t++ {
			for j := 0; j < cnt[sd][t]; j++ {
				b = append(b, pieceTypeName[t-Queen])
			}
		}
	}
	return string(b)
}
