package egtbdb

import (
	"github.com/kranbrook/egtb/internal/egtbfile"
	"github.com/kranbrook/egtb/internal/rules"
)

// PVEntry is one step of a Probe result: the move played and the
// score of the position that move reaches, from the mover's
// perspective at that point.
type PVEntry struct {
	Move  rules.Move
	Score int
}

// Probe reconstructs the principal variation from board by repeatedly
// picking the best move according to GetScoreOnePly's ranking and
// replaying it, stopping once the position is an immediate mate
// (|score| == egtbfile.ScoreMate), a draw, or maxPly moves have been
// played. The board is returned to its original position before
// Probe returns.
func (d *Db) Probe(board rules.Board, maxPly int) []PVEntry {
	var pv []PVEntry
	var hists []rules.Hist

	for ply := 0; ply < maxPly; ply++ {
		move, score, ok := d.bestMove(board)
		if !ok {
			break
		}
		hists = append(hists, board.Make(move))
		pv = append(pv, PVEntry{Move: move, Score: score})

		if score == egtbfile.ScoreDraw || abs(score) == egtbfile.ScoreMate {
			break
		}
	}

	for i := len(hists) - 1; i >= 0; i-- {
		board.TakeBack(hists[i])
	}
	return pv
}

// bestMove runs the same one-ply search as GetScoreOnePly but records
// which move produced the best rank, returning its post-move score
// from the mover's perspective.
func (d *Db) bestMove(board rules.Board) (rules.Move, int, bool) {
	var ml rules.MoveList
	board.Gen(&ml)

	bestRank := 0
	var bestMove rules.Move
	var bestScore int
	found := false

	for i := 0; i < ml.N; i++ {
		m := ml.Moves[i]
		h := board.Make(m)
		if !board.IsValid() {
			board.TakeBack(h)
			continue
		}

		child := d.GetScore(board)
		if child == egtbfile.ScoreMissing && m.IsCapture() && board.PieceListIsDraw() {
			child = egtbfile.ScoreDraw
		}
		val := bumpPly(negateScore(child))
		board.TakeBack(h)

		r := scoreRank(val)
		if !found || r > bestRank {
			found = true
			bestRank = r
			bestMove = m
			bestScore = val
		}
	}
	return bestMove, bestScore, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
