package egtbdb

import (
	"testing"

	"github.com/kranbrook/egtb/internal/egtbfile"
	"github.com/kranbrook/egtb/internal/rules"
)

// TestProbeMateInOne builds a kqk table whose every black-to-move cell
// reads "mated now" (-MATE), scripts a single white move into it, and
// expects Probe to return a one-move line scoring MATE-1.
func TestProbeMateInOne(t *testing.T) {
	dir := t.TempDir()
	// Cell 130 in the standard range decodes to -MATE: Black, to move,
	// is checkmated in every row of this synthetic table.
	writeSideTable(t, dir, "kqk", 0, 130)

	d := New(Config{Folders: []string{dir}})
	if err := d.Preload(); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	var white, black rules.PieceList
	white[0] = rules.Piece{Type: rules.King, Side: rules.White, Sq: 18}
	white[1] = rules.Piece{Type: rules.Queen, Side: rules.White, Sq: 40}
	black[0] = rules.Piece{Type: rules.King, Side: rules.Black, Sq: 60}

	mate := rules.Move{From: 40, To: 56, Piece: rules.Queen}
	board := &scriptBoard{
		white: white,
		black: black,
		side:  rules.White,
		ep:    -1,
		movesAt: map[int][]rules.Move{
			0: {mate},
			// Ply 1: Black has no moves; the scripted mate is final.
		},
		checkAt: map[int]bool{1: true},
	}

	pv := d.Probe(board, 16)
	if len(pv) != 1 {
		t.Fatalf("Probe returned %d moves, want 1", len(pv))
	}
	if pv[0].Move != mate {
		t.Fatalf("Probe picked %+v, want %+v", pv[0].Move, mate)
	}
	if pv[0].Score != egtbfile.ScoreMate-1 {
		t.Fatalf("Probe score = %d, want %d", pv[0].Score, egtbfile.ScoreMate-1)
	}
	if board.ply != 0 || board.side != rules.White {
		t.Fatal("Probe must restore the board before returning")
	}
}

// TestProbeStopsAtDraw: a scripted move into an all-draw table ends
// the principal variation immediately.
func TestProbeStopsAtDraw(t *testing.T) {
	dir := t.TempDir()
	writeBothSides(t, dir, "kqk", 5)

	d := New(Config{Folders: []string{dir}})
	if err := d.Preload(); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	var white, black rules.PieceList
	white[0] = rules.Piece{Type: rules.King, Side: rules.White, Sq: 18}
	white[1] = rules.Piece{Type: rules.Queen, Side: rules.White, Sq: 40}
	black[0] = rules.Piece{Type: rules.King, Side: rules.Black, Sq: 60}

	m := rules.Move{From: 40, To: 41, Piece: rules.Queen}
	board := &scriptBoard{
		white:   white,
		black:   black,
		side:    rules.White,
		ep:      -1,
		movesAt: map[int][]rules.Move{0: {m}, 1: {{From: 60, To: 52, Piece: rules.King}}},
		checkAt: map[int]bool{},
	}

	pv := d.Probe(board, 16)
	if len(pv) != 1 {
		t.Fatalf("Probe returned %d moves, want 1 (stops at draw)", len(pv))
	}
	if pv[0].Score != egtbfile.ScoreDraw {
		t.Fatalf("Probe score = %d, want draw", pv[0].Score)
	}
}
