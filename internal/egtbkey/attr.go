// Package egtbkey implements the table-row index encoder: folding a
// position down through the board's symmetry group and a fixed
// piece-ordering permutation into a single row number, and the inverse
// decode used by round-trip tests and tooling.
package egtbkey

import (
	"fmt"
	"strings"

	"github.com/kranbrook/egtb/internal/symmetry"
)

// Tag identifies one component of a material signature's index
// encoding: either the joint two-king slot, or a run of same-type
// pieces belonging to one side.
type Tag int

const (
	// TagKingPair covers both kings in a single slot, since a king's
	// legal squares are never independent of the other king's square
	// (they can't be adjacent). hasPawns selects which reduction table
	// backs the slot: pawns break the board's diagonal symmetry, so a
	// pawn signature uses the weaker 2-fold table instead of the full
	// 8-fold one.
	TagKingPair Tag = iota
	TagQueen
	TagRook
	TagBishop
	TagKnight
	TagPawn
)

var tagLetter = map[byte]Tag{
	'q': TagQueen,
	'r': TagRook,
	'b': TagBishop,
	'h': TagKnight,
	'p': TagPawn,
}

// Slot is one component of a parsed material signature: the side it
// belongs to (ignored for TagKingPair, which spans both), the run
// length (2..4 for grouped same-type pieces, 1 for a single piece, 0
// for TagKingPair), and the
// row-count Size this slot contributes to the mixed-radix key.
type Slot struct {
	Tag    Tag
	Side   int // 0 = black, 1 = white; unused for TagKingPair
	Count  int
	Size   int64
}

// Signature is a parsed material name: an ordered list of slots plus
// the per-slot mixed-radix multiplier. Mult[i] is the product of the
// sizes of every slot after i, so the first slot (the king pair) is
// the most significant digit and the last slot is the units digit:
// row = sum of subIndex[i] * Mult[i].
type Signature struct {
	Name     string
	HasPawns bool
	Slots    []Slot
	Mult     []int64
}

// TotalSize is the product of every slot's size: the number of distinct
// rows this material signature's table has.
func (s *Signature) TotalSize() int64 {
	if len(s.Mult) == 0 {
		return 1
	}
	return s.Mult[0] * s.Slots[0].Size
}

func slotSize(t Tag, count int, hasPawns bool) int64 {
	switch t {
	case TagKingPair:
		if hasPawns {
			return symmetry.KK2Size
		}
		return symmetry.KK8Size
	case TagPawn:
		switch count {
		case 1:
			return 48
		case 2:
			return symmetry.PPSize
		case 3:
			return symmetry.PPPSize
		case 4:
			return symmetry.PPPPSize
		}
	default:
		switch count {
		case 1:
			return 64
		case 2:
			return symmetry.XXSize
		case 3:
			return symmetry.XXXSize
		case 4:
			return symmetry.XXXXSize
		}
	}
	panic(fmt.Sprintf("egtbkey: unsupported run length %d for tag %d", count, t))
}

// ParseAttr parses a canonical material name ("kqkp", "kbnk", ...) into
// a Signature: the shared king-pair slot first, followed by one slot
// per maximal run of same-type letters within each side's group, in the
// order the letters appear in the name (White's group, then Black's,
// matching PieceListToName's k+white+k+black convention: the name's
// two 'k' markers delimit White's group first, Black's second).
func ParseAttr(name string) (*Signature, error) {
	name = strings.ToLower(name)
	firstK := strings.IndexByte(name, 'k')
	if firstK != 0 {
		return nil, fmt.Errorf("egtbkey: material name %q must start with 'k'", name)
	}
	rest := name[1:]
	secondK := strings.IndexByte(rest, 'k')
	if secondK < 0 {
		return nil, fmt.Errorf("egtbkey: material name %q has only one king", name)
	}
	group := [2]string{rest[:secondK], rest[secondK+1:]}

	sig := &Signature{Name: name}
	for _, g := range group {
		if strings.ContainsAny(g, "k") {
			return nil, fmt.Errorf("egtbkey: material name %q has more than two kings", name)
		}
		if strings.IndexByte(g, 'p') >= 0 {
			sig.HasPawns = true
		}
	}

	sig.Slots = append(sig.Slots, Slot{Tag: TagKingPair, Size: slotSize(TagKingPair, 0, sig.HasPawns)})

	for side := 0; side < 2; side++ {
		g := group[side]
		for i := 0; i < len(g); {
			t, ok := tagLetter[g[i]]
			if !ok {
				return nil, fmt.Errorf("egtbkey: material name %q has unknown piece letter %q", name, g[i])
			}
			j := i + 1
			for j < len(g) && g[j] == g[i] {
				j++
			}
			run := j - i
			for run > 0 {
				n := run
				if n > 4 {
					n = 4
				}
				sig.Slots = append(sig.Slots, Slot{Tag: t, Side: 1 - side, Count: n, Size: slotSize(t, n, sig.HasPawns)})
				run -= n
			}
			i = j
		}
	}

	sig.Mult = make([]int64, len(sig.Slots))
	var mult int64 = 1
	for i := len(sig.Slots) - 1; i >= 0; i-- {
		sig.Mult[i] = mult
		mult *= sig.Slots[i].Size
	}

	return sig, nil
}

// Permute reorders the signature's slots per a table header's 6-slot
// order field, so that slot i of the permuted signature carries what
// the canonical parse produced at position order[i], and recomputes
// the mixed-radix multipliers to match. The identity permutation is a
// no-op. Entries at or beyond the slot count must be identity.
func (s *Signature) Permute(order [6]int) error {
	n := len(s.Slots)
	if n > len(order) {
		return fmt.Errorf("egtbkey: %q has %d slots, more than the order field can permute", s.Name, n)
	}
	seen := [6]bool{}
	for i, o := range order {
		if i >= n {
			if o != i {
				return fmt.Errorf("egtbkey: order entry %d = %d permutes beyond %q's %d slots", i, o, s.Name, n)
			}
			continue
		}
		if o < 0 || o >= n || seen[o] {
			return fmt.Errorf("egtbkey: order %v is not a permutation of %q's %d slots", order, s.Name, n)
		}
		seen[o] = true
	}

	slots := make([]Slot, n)
	for i := 0; i < n; i++ {
		slots[i] = s.Slots[order[i]]
	}
	s.Slots = slots

	var mult int64 = 1
	for i := n - 1; i >= 0; i-- {
		s.Mult[i] = mult
		mult *= s.Slots[i].Size
	}
	return nil
}

// ComputeSize returns the row count of the table for a material
// signature without needing to open or build the table file itself.
func ComputeSize(name string) (int64, error) {
	sig, err := ParseAttr(name)
	if err != nil {
		return 0, err
	}
	return sig.TotalSize(), nil
}
