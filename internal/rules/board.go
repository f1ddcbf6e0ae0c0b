package rules

// Move is a single chess move as produced by a rules adapter's move
// generator. It carries enough information for Board.Make/TakeBack to
// apply and unapply it without consulting the board again.
type Move struct {
	From, To  Square
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	EnPassant bool
	Castle    bool
}

// IsCapture reports whether the move removes an enemy piece from the
// board, including an en-passant capture.
func (m Move) IsCapture() bool { return m.Captured != Empty }

// Hist is the undo record Board.Make returns and Board.TakeBack consumes.
// Its shape is adapter-defined; the core only ever round-trips it.
type Hist struct {
	Move          Move
	PrevEnPassant Square
	PrevHalfMove  int
}

// MoveList is a fixed-capacity move buffer a Board fills during
// generation, avoiding a heap allocation per call in hot search loops.
type MoveList struct {
	Moves [218]Move
	N     int
}

// Add appends a move to the list; callers are expected to stay within
// capacity since 218 already bounds the legal moves of any standard
// chess position.
func (ml *MoveList) Add(m Move) {
	ml.Moves[ml.N] = m
	ml.N++
}

// Board is the external chess-rules adapter contract. The EGTB core
// never implements chess rules itself: move generation, making and
// unmaking moves, check detection, and FEN parsing all come from a
// caller-supplied implementation of this interface. internal/egtbdb
// (GetScore, the one-ply search GetScoreOnePly, and principal-variation
// probing in Probe) is the only caller.
type Board interface {
	// Gen fills ml with every pseudo-legal move for the side to move.
	Gen(ml *MoveList)
	// Make applies m and returns the undo record for TakeBack.
	Make(m Move) Hist
	// TakeBack undoes the move captured in h, restoring the prior
	// position exactly.
	TakeBack(h Hist)
	// IsInCheck reports whether side's king is currently attacked.
	IsInCheck(side Side) bool
	// IsValid reports whether the current position is legal (the side
	// that just moved did not leave its own king in check).
	IsValid() bool
	// PieceListIsDraw reports whether the material on the board is an
	// automatic draw regardless of position (bare kings, king+minor vs
	// king), used to substitute DRAW for a MISSING child score.
	PieceListIsDraw() bool
	// SetFEN resets the board to the given Forsyth-Edwards position.
	SetFEN(fen string) error
	// Show renders the board for diagnostics.
	Show() string

	// SideToMove is the color to move in the current position.
	SideToMove() Side
	// EnPassantFile is the file (0..7) a pawn may capture en passant
	// into, or -1 if none is available.
	EnPassantFile() int
	// Pieces returns the white and black piece lists for the current
	// position.
	Pieces() (white, black PieceList)
}
