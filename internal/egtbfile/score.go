package egtbfile

// Sentinel scores returned by GetScore alongside, or instead of, a
// plain distance-to-mate integer. Search code consuming these values
// treats them as out-of-band signals rather than distances, so they
// deliberately sit outside any real mate distance.
const (
	ScoreDraw    = 0
	ScoreMate    = 1000
	ScoreWinning = 1003
	ScoreIllegal = 1004
	ScoreUnknown = 1005
	ScoreMissing = 1006
	ScoreUnset   = 1007
)

// PropHasBlackTable marks a table file as carrying a black-to-move
// payload.
const PropHasBlackTable = 1 << 0

// PropHasWhiteTable marks a table file as carrying a white-to-move
// payload.
const PropHasWhiteTable = 1 << 1

// PropCompressed marks a table file's payload as split into LZMA
// blocks rather than stored as one flat array.
const PropCompressed = 1 << 2

// PropSpecialScoreRange switches cellToScore from the standard 8-bit
// cell encoding to the special one used by tables whose mate distances
// would otherwise not fit a byte.
const PropSpecialScoreRange = 1 << 3

// cellToScore decodes one payload byte into a signed distance-to-mate
// score, using whichever of the two encodings the header's property
// bits select.
//
// Standard range: 0 illegal, 1 unset, 2 missing, 3 winning (distance
// not computed), 4 unknown, 5 draw, 6..129 mating in ply=(c-6)*2+1
// (score = MATE - ply), 130..255 losing in ply=(c-130)*2
// (score = -MATE + ply).
//
// Special range (PropSpecialScoreRange): 0 draw, 1..127 mating in
// ply=(c-1)*2+1 (score = MATE - ply), 128..255 losing in
// ply=(c-128)*2 (score = -MATE + ply). This range trades the
// standalone illegal/unset/missing/unknown/winning sentinels for more
// mate-distance headroom; those sentinels never occur in a table that
// sets this bit.
func cellToScore(c byte, special bool) int {
	if !special {
		switch {
		case c == 0:
			return ScoreIllegal
		case c == 1:
			return ScoreUnset
		case c == 2:
			return ScoreMissing
		case c == 3:
			return ScoreWinning
		case c == 4:
			return ScoreUnknown
		case c == 5:
			return ScoreDraw
		case c < 130:
			ply := (int(c)-6)*2 + 1
			return ScoreMate - ply
		default:
			ply := (int(c) - 130) * 2
			return -ScoreMate + ply
		}
	}

	switch {
	case c == 0:
		return ScoreDraw
	case c < 128:
		ply := (int(c)-1)*2 + 1
		return ScoreMate - ply
	default:
		ply := (int(c) - 128) * 2
		return -ScoreMate + ply
	}
}
