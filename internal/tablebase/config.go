// Package tablebase implements the retrograde-analysis tablebase builder:
// position indexing, the per-index Entry state machine, and the
// Initializer/Propagator passes that turn a material configuration into a
// complete win/loss/draw classification (spec §3, §4).
package tablebase

import (
	"fmt"

	"github.com/hailam/tbbuild/internal/board"
)

// MobileSpec names one mobile piece slot: a (kind, color) pair whose
// square varies across the index space (spec §3.2).
type MobileSpec struct {
	Kind  board.PieceType
	Color board.Color
}

// FrozenPiece pins a piece to a fixed square for the whole tablebase
// (spec §3.2): e.g. a king confined to one side of the board by symmetry
// reduction, or a piece held fixed to shrink an oversized configuration.
type FrozenPiece struct {
	Kind   board.PieceType
	Color  board.Color
	Square board.Square
}

// Config describes one tablebase's material configuration: which pieces
// are mobile (and thus contribute a square field to the index) and which
// are frozen (fixed squares, occupying the board but never indexed).
type Config struct {
	Mobiles []MobileSpec
	Frozen  []FrozenPiece

	// PrunedOurMove and PrunedHisMove record the two futurebase pruning
	// modes of spec §4.6 and are written to the tablebase file header.
	// During a build either one makes a capture that no loaded futurebase
	// covers count as a loss for the capturing side, whichever side moves
	// (see PruneDirectives).
	PrunedOurMove bool
	PrunedHisMove bool
}

// MinMobiles and MaxMobiles bound the number of mobile pieces a Config
// may declare: below two there is no retrograde analysis to do (a bare
// king), and above eight the index space outgrows what a 4-byte Entry
// array can address on a single build host (spec §3.2 "2 to 8 mobile
// pieces, not counting frozen pieces").
const (
	MinMobiles = 2
	MaxMobiles = 8
)

// Validate checks the structural invariants of spec §3.2: mobile-piece
// count bounds, exactly one king per color among mobiles+frozen, and no
// two pieces (mobile spec slots aside — those vary) pinned to the same
// frozen square.
func (c Config) Validate() error {
	if n := len(c.Mobiles); n < MinMobiles || n > MaxMobiles {
		return fmt.Errorf("tablebase: config has %d mobile pieces, want %d..%d", n, MinMobiles, MaxMobiles)
	}

	kings := map[board.Color]int{}
	for _, m := range c.Mobiles {
		if m.Kind == board.King {
			kings[m.Color]++
		}
	}
	for _, f := range c.Frozen {
		if f.Kind == board.King {
			kings[f.Color]++
		}
	}
	if kings[board.White] != 1 {
		return fmt.Errorf("tablebase: config has %d white kings, want 1", kings[board.White])
	}
	if kings[board.Black] != 1 {
		return fmt.Errorf("tablebase: config has %d black kings, want 1", kings[board.Black])
	}

	seen := map[board.Square]bool{}
	for _, f := range c.Frozen {
		if seen[f.Square] {
			return fmt.Errorf("tablebase: two frozen pieces share square %s", f.Square)
		}
		seen[f.Square] = true
	}
	return nil
}

// NumMobiles is the number of mobile piece slots, i.e. how many 6-bit
// square fields the index packs (spec §3.3).
func (c Config) NumMobiles() int {
	return len(c.Mobiles)
}

// MaxIndex returns one past the largest valid index: 2 * 64^NumMobiles
// (spec §3.3's side-to-move bit plus one 6-bit field per mobile).
func (c Config) MaxIndex() uint64 {
	n := uint64(1)
	for i := 0; i < c.NumMobiles(); i++ {
		n *= 64
	}
	return 2 * n
}

// frozenOccupancy returns the board-wide occupancy contributed by the
// frozen pieces alone, split by color, plus the set of frozen squares for
// collision checks during decode.
func (c Config) frozenOccupancy() (white, black board.Bitboard, squares map[board.Square]bool) {
	squares = make(map[board.Square]bool, len(c.Frozen))
	for _, f := range c.Frozen {
		squares[f.Square] = true
		if f.Color == board.White {
			white = white.Set(f.Square)
		} else {
			black = black.Set(f.Square)
		}
	}
	return white, black, squares
}
