// Package futurebase resolves the moves that leave a tablebase's index
// space — captures, and (reserved) pawn promotions — against
// already-built smaller tablebases (spec SPEC_FULL §4.6, §4.9).
package futurebase

import (
	"fmt"
	"os"
	"sort"

	"github.com/hailam/tbbuild/internal/board"
	"github.com/hailam/tbbuild/internal/tablebase"
	"github.com/hailam/tbbuild/internal/tbfile"
)

type pieceKey struct {
	kind  board.PieceType
	color board.Color
}

// Importer holds the set of smaller tablebases a build may transition
// into via a capture, keyed by their material signature so a capturing
// move can look up the table that already answers the resulting
// position.
type Importer struct {
	tables map[string]*tablebase.Table
	errs   []string
}

// Load opens every futurebase file named in paths and indexes it by
// material signature. A path that fails to open or decode is recorded
// as an error returned immediately — a missing futurebase is a build
// configuration mistake, not a per-position anomaly.
func Load(paths []string) (*Importer, error) {
	imp := &Importer{tables: make(map[string]*tablebase.Table, len(paths))}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("futurebase: open %s: %w", path, err)
		}
		t, err := tbfile.Read(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("futurebase: read %s: %w", path, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("futurebase: close %s: %w", path, closeErr)
		}
		imp.tables[signature(t.Config)] = t
	}
	return imp, nil
}

// signature returns a canonical, order-independent string identifying a
// Config's material: every mobile and frozen piece's (kind, color),
// sorted. Two configs with the same signature have the same pieces on
// the board, though not necessarily on the same squares — frozen
// squares are assumed to carry over unchanged from the importing build,
// matching the square-locked use of "frozen" in spec §3.2.
func signature(cfg tablebase.Config) string {
	keys := make([]pieceKey, 0, len(cfg.Mobiles)+len(cfg.Frozen))
	for _, m := range cfg.Mobiles {
		keys = append(keys, pieceKey{m.Kind, m.Color})
	}
	for _, f := range cfg.Frozen {
		keys = append(keys, pieceKey{f.Kind, f.Color})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].color != keys[j].color {
			return keys[i].color < keys[j].color
		}
		return keys[i].kind < keys[j].kind
	})
	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("%d:%d,", k.color, k.kind)
	}
	return s
}

// Errs returns every unresolved-futuremove anomaly recorded by
// Resolver calls so far (spec §7 "Unresolved futuremove ... abort").
// The caller is expected to check this after the Initializer sweep
// completes and abort the build if it's non-empty.
func (imp *Importer) Errs() []string {
	return imp.errs
}

// Resolver returns a tablebase.CaptureResolver that looks up the
// resulting (smaller) position's win/loss/draw value in whichever
// loaded futurebase matches the material left after the capture. When
// no futurebase covers the resulting material, prune decides the
// fallback: with either prune flag set the capture is treated as a loss
// for the mover (spec §4.6's flat prune semantics — see DESIGN.md's Open
// Question decision); with neither it resolves to OutcomeUnknown and is
// recorded in Errs as an unresolved futuremove.
func (imp *Importer) Resolver(cfg tablebase.Config, prune tablebase.PruneDirectives) tablebase.CaptureResolver {
	return func(pos *tablebase.Position, mobileIdx int, dest board.Square) tablebase.MoveOutcome {
		capturedIdx, ok := capturedMobile(cfg, pos, mobileIdx, dest)
		if !ok {
			imp.errs = append(imp.errs, fmt.Sprintf("no captured mobile found at %s for mobile %d", dest, mobileIdx))
			return tablebase.OutcomeDraw
		}

		resultCfg, resultPos := afterCapture(cfg, pos, mobileIdx, capturedIdx, dest)
		target, ok := imp.tables[signature(resultCfg)]
		if !ok {
			if prune.PrunedOurMove || prune.PrunedHisMove {
				return tablebase.OutcomeLossForMover
			}
			imp.errs = append(imp.errs, fmt.Sprintf("no futurebase covers the material left by capturing at %s", dest))
			return tablebase.OutcomeUnknown
		}

		idx := target.Config.Encode(resultPos)
		state, _ := target.At(idx).State()
		switch state {
		case tablebase.StateIllegal:
			imp.errs = append(imp.errs, fmt.Sprintf("futurebase reports ILLEGAL for a position reached by capturing at %s", dest))
			return tablebase.OutcomeDraw
		case tablebase.StatePTMWinsDone, tablebase.StatePTMWinsPending:
			// The side to move in the resulting position is the mover's
			// opponent (the move just flipped sides), so a PTM win there
			// is a loss for the capturing mover.
			return tablebase.OutcomeLossForMover
		case tablebase.StatePNTMWinsDone, tablebase.StatePNTMWinsPending:
			return tablebase.OutcomeWinForMover
		default:
			return tablebase.OutcomeDraw
		}
	}
}

// capturedMobile finds which of cfg.Mobiles (other than mobileIdx) sits
// on dest in pos.
func capturedMobile(cfg tablebase.Config, pos *tablebase.Position, mobileIdx int, dest board.Square) (int, bool) {
	for i := range cfg.Mobiles {
		if i == mobileIdx {
			continue
		}
		if pos.MobileSquares[i] == dest {
			return i, true
		}
	}
	return 0, false
}

// afterCapture builds the smaller Config and Position reached by
// mobileIdx capturing capturedIdx and arriving at dest, side to move
// flipped.
func afterCapture(cfg tablebase.Config, pos *tablebase.Position, mobileIdx, capturedIdx int, dest board.Square) (tablebase.Config, *tablebase.Position) {
	resultCfg := tablebase.Config{Frozen: cfg.Frozen}
	squares := make([]board.Square, 0, len(cfg.Mobiles)-1)
	for i, m := range cfg.Mobiles {
		if i == capturedIdx {
			continue
		}
		resultCfg.Mobiles = append(resultCfg.Mobiles, m)
		if i == mobileIdx {
			squares = append(squares, dest)
		} else {
			squares = append(squares, pos.MobileSquares[i])
		}
	}

	resultPos := resultCfg.NewPosition()
	resultPos.SideToMove = pos.SideToMove.Other()
	copy(resultPos.MobileSquares, squares)
	return resultCfg, resultPos
}
