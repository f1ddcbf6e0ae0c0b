package egtbdb

import (
	"math"

	"github.com/kranbrook/egtb/internal/egtbfile"
	"github.com/kranbrook/egtb/internal/rules"
)

// GetScoreOnePly scores board by a one-ply negamax search: generate
// its legal moves, look each successor up in the tables, and combine.
// This is how en passant positions are answered (the index encoder has
// no slot for en passant rights, so the position itself is not in any
// table) and it also resolves checkmates and stalemates directly,
// since a position with no legal moves never consults a table at all.
func (d *Db) GetScoreOnePly(board rules.Board) int {
	hash := positionHash(board)
	if d.probeCache != nil {
		if v, ok := d.probeCache.Get(hash); ok {
			return v
		}
	}

	score := d.searchOnePly(board)
	if d.probeCache != nil {
		d.probeCache.Put(hash, score)
	}
	return score
}

func (d *Db) searchOnePly(board rules.Board) int {
	var ml rules.MoveList
	board.Gen(&ml)

	best := math.MinInt32
	sawLegal := false

	for i := 0; i < ml.N; i++ {
		m := ml.Moves[i]
		h := board.Make(m)
		if !board.IsValid() {
			board.TakeBack(h)
			continue
		}
		sawLegal = true

		child := d.GetScore(board)
		if child == egtbfile.ScoreMissing && m.IsCapture() && board.PieceListIsDraw() {
			child = egtbfile.ScoreDraw
		}
		val := bumpPly(negateScore(child))
		board.TakeBack(h)

		if best == math.MinInt32 || scoreRank(val) > scoreRank(best) {
			best = val
		}
	}

	if !sawLegal {
		if board.IsInCheck(board.SideToMove()) {
			return -egtbfile.ScoreMate
		}
		return egtbfile.ScoreDraw
	}
	return best
}

// negateScore flips a child score to the mover's perspective. Mate
// distances invert sign; sentinels that are not distances pass
// through unchanged.
func negateScore(s int) int {
	switch s {
	case egtbfile.ScoreDraw, egtbfile.ScoreIllegal, egtbfile.ScoreUnknown,
		egtbfile.ScoreMissing, egtbfile.ScoreUnset, egtbfile.ScoreWinning:
		return s
	default:
		return -s
	}
}

// bumpPly pushes a mate-distance score one ply further from the leaf
// that produced it, leaving sentinels untouched. A winning score is
// MATE-ply, so one more ply away from mate lowers it by one; a losing
// score is -MATE+ply, so surviving one ply longer raises it by one.
func bumpPly(s int) int {
	switch s {
	case egtbfile.ScoreDraw, egtbfile.ScoreIllegal, egtbfile.ScoreUnknown,
		egtbfile.ScoreMissing, egtbfile.ScoreUnset, egtbfile.ScoreWinning:
		return s
	}
	if s > 0 {
		return s - 1
	}
	return s + 1
}

// scoreRank gives a total order for negamax comparison: winning (by
// shortest mate) beats draw/unknown beats losing (by longest mate),
// with Missing ranked just below Unknown since it carries no
// information either way. Real mate scores already sort correctly by
// value (MATE-ply for a win, -MATE+ply for a loss), so only the
// sentinels need remapping around them.
func scoreRank(s int) int {
	switch s {
	case egtbfile.ScoreIllegal:
		return math.MinInt32
	case egtbfile.ScoreMissing:
		return -2
	case egtbfile.ScoreUnknown:
		return -1
	case egtbfile.ScoreDraw:
		return 0
	case egtbfile.ScoreWinning:
		return math.MaxInt32 - 1
	}
	return s
}

// positionHash mixes the side to move, en passant file, and every
// occupied square/piece into a 64-bit fingerprint for the probe
// cache. It is not a Zobrist table (no incremental update is needed
// here, since one-ply search always starts from a fresh position) but
// uses the same multiplicative mixing idea.
func positionHash(board rules.Board) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)

	mix := func(v uint64) {
		h ^= v
		h *= prime
	}

	mix(uint64(board.SideToMove()))
	mix(uint64(board.EnPassantFile() + 1))

	white, black := board.Pieces()
	for side, pl := range [2]rules.PieceList{black, white} {
		for _, p := range pl {
			if p.IsEmpty() {
				continue
			}
			mix(uint64(side)<<24 | uint64(p.Type)<<16 | uint64(p.Sq))
		}
	}
	return h
}
