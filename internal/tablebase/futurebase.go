package tablebase

import "github.com/hailam/tbbuild/internal/board"

// MoveOutcome is the resolved value of a move that leaves this
// tablebase's index space (spec §4.6): a capture or promotion transforms
// the material configuration into a smaller one, whose tablebase (if
// supplied) already knows the answer.
type MoveOutcome int

const (
	// OutcomeUnknown means no futurebase is configured to answer this
	// transition. The Initializer treats it the same as OutcomeDraw: the
	// move stays forever untried, so it can never be disproven and the
	// position can never be shown lost through it alone — the
	// conservative choice when the true value isn't known.
	OutcomeUnknown MoveOutcome = iota
	OutcomeWinForMover
	OutcomeLossForMover
	OutcomeDraw
)

// CaptureResolver answers "what happens if the mover plays this capture
// (or promotion)", looking the resulting smaller-configuration position
// up in an already-built futurebase. pos is the position before the
// move; mobileIdx names which of Config.Mobiles is moving; dest is its
// destination square (occupied by the piece being captured).
//
// A nil resolver makes every such move resolve to OutcomeUnknown — valid
// for any configuration where it happens to be true that every capture
// leads to an unconditionally drawn remainder (the King+Queen vs King
// baseline: capturing the queen always reaches a drawn bare-king
// ending), and conservative (never wrongly optimistic) otherwise.
type CaptureResolver func(pos *Position, mobileIdx int, dest board.Square) MoveOutcome

// PruneDirectives records the two futurebase pruning flags (spec §4.6).
// When a CaptureResolver is set, the Initializer consults it for every
// capture, whichever side is to move; the flags only decide the
// resolver's fallback for a capture that no loaded futurebase covers:
// with either flag set it counts as a loss for the capturing side, with
// neither it stays OutcomeUnknown. The two flags are not told apart when
// resolving, and the opponent's replies after a pruned move are not
// looked up.
type PruneDirectives struct {
	PrunedOurMove bool
	PrunedHisMove bool
}
