package tablebase

import "github.com/hailam/tbbuild/internal/board"

// StalemateCutoff bounds how many accumulated half-moves a forced
// winning line may carry before the Propagator stops extending it
// (spec §4.5's stalemate_cnt gate; see DESIGN.md's Open Question
// decision on its exact role — here it simply caps how far a winning
// line propagates, it does not change any entry's final classification).
const StalemateCutoff = 100

// PassRecord summarizes one propagation pass, for the build's checkpoint
// store.
type PassRecord struct {
	Pass       int
	Processed  int
	Propagated int
}

// Propagator runs the spec §4.5 fixed-point loop: passes of strictly
// increasing mate-distance, each re-deriving every still-pending
// predecessor of that pass's newly concluded wins.
type Propagator struct {
	// MaxPass caps the pass loop as a safety valve; zero means no cap
	// beyond the natural termination (a pass that resolves nothing).
	MaxPass int
}

// Run drives passes until one resolves nothing, calling onPass (if
// non-nil) after each pass completes — the Driver uses this to persist a
// checkpoint per pass.
func (p *Propagator) Run(t *Table, onPass func(PassRecord)) {
	parent := t.Config.NewPosition()
	for pass := 0; p.MaxPass == 0 || pass <= p.MaxPass; pass++ {
		processed := 0
		propagated := 0
		n := t.Config.MaxIndex()
		for idx := uint64(0); idx < n; idx++ {
			entry := t.At(idx)
			state, _ := entry.State()
			if state != StatePTMWinsPending && state != StatePNTMWinsPending {
				continue
			}
			if int(entry.MateIn()) != pass {
				continue
			}
			processed++
			propagated += p.propagateFrom(t, idx, entry, parent)
			entry.MarkPropagated()
		}
		if onPass != nil {
			onPass(PassRecord{Pass: pass, Processed: processed, Propagated: propagated})
		}
		if processed == 0 {
			return
		}
	}
}

func (p *Propagator) propagateFrom(t *Table, parentIdx uint64, parentEntry *Entry, parent *Position) int {
	state, _ := parentEntry.State()
	if err := t.Config.Decode(parentIdx, parent); err != nil {
		t.addDiagnostic(parentIdx, "propagator: re-decode of a win entry failed: "+err.Error())
		return 0
	}

	var winner board.Color
	switch state {
	case StatePTMWinsPending:
		winner = parent.SideToMove
	case StatePNTMWinsPending:
		winner = parent.SideToMove.Other()
	default:
		return 0
	}

	staleCount := parentEntry.StalemateCount()
	if staleCount == StalemateUnknown {
		staleCount = 0
	}
	if staleCount >= StalemateCutoff {
		return 0
	}

	parentMateIn := parentEntry.MateIn()
	childMateIn := parentMateIn + 1
	childStale := staleCount + 1

	mover := parent.SideToMove.Other()
	moverWins := mover == winner

	child := t.Config.NewPosition()
	touched := 0
	for i, m := range t.Config.Mobiles {
		if m.Color != mover {
			continue
		}
		sq := parent.MobileSquares[i]
		candidates := t.Movement.Predecessors(m.Kind, mover, sq, parent.Occupied)
		candidates.ForEach(func(origin board.Square) {
			child.MobileSquares = append(child.MobileSquares[:0], parent.MobileSquares...)
			child.MobileSquares[i] = origin
			child.SideToMove = mover

			// Re-derive occupancy for the swapped square rather than patch
			// the parent's bitboards in place, to keep this in lockstep
			// with Config.Decode's own accounting.
			whiteOcc, blackOcc, _ := t.Config.frozenOccupancy()
			occ := whiteOcc | blackOcc
			for j, mj := range t.Config.Mobiles {
				sqj := parent.MobileSquares[j]
				if j == i {
					sqj = origin
				}
				mask := board.BitVector(sqj)
				occ |= mask
				if mj.Color == board.White {
					whiteOcc |= mask
				} else {
					blackOcc |= mask
				}
			}
			child.WhiteOccupied = whiteOcc
			child.BlackOccupied = blackOcc
			child.Occupied = occ

			childIdx := t.Config.Encode(child)
			childEntry := t.At(childIdx)
			diag := func(msg string) { t.addDiagnostic(childIdx, msg) }
			if moverWins {
				childEntry.DeclareWin(childMateIn, childStale, diag)
			} else {
				childEntry.DeclareLossMove(childMateIn, childStale, diag)
			}
			touched++
		})
	}
	return touched
}
