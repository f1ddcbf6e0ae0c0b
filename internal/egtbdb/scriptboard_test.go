package egtbdb

import "github.com/kranbrook/egtb/internal/rules"

// scriptBoard is a rules.Board whose move lists and check states are
// scripted per ply rather than derived from piece geometry. It lets
// the search tests pin exact terminal behaviors (stalemate, checkmate,
// forced mate in one) without a full move generator: the piece lists
// only have to name a material signature for table lookups.
type scriptBoard struct {
	white, black rules.PieceList
	side         rules.Side
	ep           int
	ply          int
	movesAt      map[int][]rules.Move
	checkAt      map[int]bool // side to move at this ply is in check
}

func (b *scriptBoard) Gen(ml *rules.MoveList) {
	ml.N = 0
	for _, m := range b.movesAt[b.ply] {
		ml.Add(m)
	}
}

func (b *scriptBoard) Make(m rules.Move) rules.Hist {
	b.ply++
	b.side = b.side.Opposite()
	return rules.Hist{Move: m}
}

func (b *scriptBoard) TakeBack(h rules.Hist) {
	b.ply--
	b.side = b.side.Opposite()
}

func (b *scriptBoard) IsInCheck(side rules.Side) bool {
	if side == b.side {
		return b.checkAt[b.ply]
	}
	return false
}

func (b *scriptBoard) IsValid() bool         { return true }
func (b *scriptBoard) PieceListIsDraw() bool { return false }
func (b *scriptBoard) SetFEN(string) error   { return nil }
func (b *scriptBoard) Show() string          { return "" }

func (b *scriptBoard) SideToMove() rules.Side { return b.side }
func (b *scriptBoard) EnPassantFile() int     { return b.ep }

func (b *scriptBoard) Pieces() (rules.PieceList, rules.PieceList) {
	return b.white, b.black
}
