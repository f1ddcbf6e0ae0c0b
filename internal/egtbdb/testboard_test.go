package egtbdb

import "github.com/kranbrook/egtb/internal/rules"

// testBoard is a minimal, deliberately narrow implementation of
// rules.Board covering king-and-rook-class endgames: enough legality
// (a king may not move onto its own piece, kings may not touch) to
// exercise GetScoreOnePly and Probe without pulling in a full move
// generator. Attacks by pieces other than kings are not modelled.
type testBoard struct {
	white, black rules.PieceList
	side         rules.Side
	epFile       int
}

func newTestBoard(white, black rules.PieceList, side rules.Side) *testBoard {
	return &testBoard{white: white, black: black, side: side, epFile: -1}
}

func (b *testBoard) Pieces() (rules.PieceList, rules.PieceList) { return b.white, b.black }
func (b *testBoard) SideToMove() rules.Side                     { return b.side }
func (b *testBoard) EnPassantFile() int                          { return b.epFile }

func (b *testBoard) list(side rules.Side) *rules.PieceList {
	if side == rules.White {
		return &b.white
	}
	return &b.black
}

func kingSteps(sq rules.Square) []rules.Square {
	f, r := sq.File(), sq.Rank()
	var out []rules.Square
	for df := -1; df <= 1; df++ {
		for dr := -1; dr <= 1; dr++ {
			if df == 0 && dr == 0 {
				continue
			}
			nf, nr := f+df, r+dr
			if nf < 0 || nf > 7 || nr < 0 || nr > 7 {
				continue
			}
			out = append(out, rules.Square(nr*8+nf))
		}
	}
	return out
}

func occupiedBy(pl rules.PieceList, sq rules.Square) (rules.Piece, bool) {
	for _, p := range pl {
		if !p.IsEmpty() && p.Sq == sq {
			return p, true
		}
	}
	return rules.Piece{}, false
}

// Gen produces king moves (to any square not held by the mover's own
// pieces, captures included) for the side to move; moves next to the
// enemy king are generated and left for IsValid to reject. Moves of
// other pieces are not
// generated since no test fixture in this package uses a rook's full
// mobility, only its presence as static material.
func (b *testBoard) Gen(ml *rules.MoveList) {
	ml.N = 0
	mine := b.list(b.side)
	for _, p := range mine {
		if p.IsEmpty() {
			continue
		}
		if p.Type != rules.King {
			continue
		}
		for _, to := range kingSteps(p.Sq) {
			if _, occ := occupiedBy(*mine, to); occ {
				continue
			}
			var captured rules.PieceType = rules.Empty
			if cp, occ := occupiedBy(*b.list(b.side.Opposite()), to); occ {
				captured = cp.Type
			}
			ml.Add(rules.Move{From: p.Sq, To: to, Piece: rules.King, Captured: captured})
		}
	}
}

func (b *testBoard) Make(m rules.Move) rules.Hist {
	mine := b.list(b.side)
	for i := range mine {
		if !mine[i].IsEmpty() && mine[i].Sq == m.From {
			mine[i].Sq = m.To
		}
	}
	if m.Captured != rules.Empty {
		theirs := b.list(b.side.Opposite())
		for i := range theirs {
			if !theirs[i].IsEmpty() && theirs[i].Sq == m.To && theirs[i].Type == m.Captured {
				theirs[i] = rules.Piece{}
			}
		}
	}
	prevEP := b.epFile
	b.epFile = -1
	b.side = b.side.Opposite()
	return rules.Hist{Move: m, PrevEnPassant: rules.Square(prevEP)}
}

func (b *testBoard) TakeBack(h rules.Hist) {
	b.side = b.side.Opposite()
	mine := b.list(b.side)
	for i := range mine {
		if !mine[i].IsEmpty() && mine[i].Sq == h.Move.To && mine[i].Type == h.Move.Piece {
			mine[i].Sq = h.Move.From
		}
	}
	if h.Move.Captured != rules.Empty {
		theirs := b.list(b.side.Opposite())
		for i := range theirs {
			if theirs[i].IsEmpty() {
				theirs[i] = rules.Piece{Type: h.Move.Captured, Side: b.side.Opposite(), Sq: h.Move.To}
				break
			}
		}
	}
	b.epFile = int(h.PrevEnPassant)
}

func (b *testBoard) IsInCheck(side rules.Side) bool {
	king, ok := kingOf(*b.list(side))
	if !ok {
		return false
	}
	otherKing, ok := kingOf(*b.list(side.Opposite()))
	return ok && isKingAdjacent(king.Sq, otherKing.Sq)
}

func kingOf(pl rules.PieceList) (rules.Piece, bool) {
	if pl[0].Type == rules.King {
		return pl[0], true
	}
	return rules.Piece{}, false
}

func isKingAdjacent(a, b rules.Square) bool {
	df := a.File() - b.File()
	dr := a.Rank() - b.Rank()
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	return df <= 1 && dr <= 1
}

func (b *testBoard) IsValid() bool {
	return !b.IsInCheck(b.side.Opposite())
}

func (b *testBoard) PieceListIsDraw() bool {
	return b.white.Count() == 1 && b.black.Count() == 1
}

func (b *testBoard) SetFEN(fen string) error { return nil }
func (b *testBoard) Show() string            { return "" }
