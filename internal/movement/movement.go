// Package movement builds the precomputed, per (piece-kind, origin
// square, direction, step) movement tables that drive both forward move
// counting and backward (retrograde) move generation (spec §3.5, §4.2).
package movement

import (
	"fmt"

	"github.com/hailam/tbbuild/internal/board"
)

// Step is a single entry of a movement ray: the destination square and
// its single-bit mask, or the sentinel {NoSquare, AllOnes} that
// terminates every ray so a scan `for mask&occupied == 0` always halts
// at either a blocker or the board edge.
type Step struct {
	Dest board.Square
	Mask board.Bitboard
}

var sentinel = Step{Dest: board.NoSquare, Mask: board.AllOnes}

// IsSentinel reports whether s terminates a ray.
func (s Step) IsSentinel() bool {
	return s.Dest == board.NoSquare && s.Mask == board.AllOnes
}

// direction is a single (file, rank) step vector.
type direction struct{ df, dr int }

var (
	dirN  = direction{0, 1}
	dirS  = direction{0, -1}
	dirE  = direction{1, 0}
	dirW  = direction{-1, 0}
	dirNE = direction{1, 1}
	dirNW = direction{-1, 1}
	dirSE = direction{1, -1}
	dirSW = direction{-1, -1}
)

var kingQueenDirs = []direction{dirN, dirNE, dirE, dirSE, dirS, dirSW, dirW, dirNW}
var rookDirs = []direction{dirN, dirE, dirS, dirW}
var bishopDirs = []direction{dirNE, dirSE, dirSW, dirNW}
var knightDirs = []direction{
	{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

// maxSteps is the per-direction step cap of spec §3.5: King/Knight move
// one square, sliding pieces up to seven, pawns up to two (the double
// push), en-passant-pawn exactly one.
func maxSteps(kind board.PieceType) int {
	switch kind {
	case board.King, board.Knight:
		return 1
	case board.Queen, board.Rook, board.Bishop:
		return 7
	case board.Pawn:
		return 2
	case board.EnPassantPawn:
		return 1
	default:
		return 0
	}
}

// directions returns the direction vectors for kind, color-dependent
// only for pawns (White pushes north, Black pushes south).
func directions(kind board.PieceType, color board.Color) []direction {
	switch kind {
	case board.King, board.Queen:
		return kingQueenDirs
	case board.Rook:
		return rookDirs
	case board.Bishop:
		return bishopDirs
	case board.Knight:
		return knightDirs
	case board.Pawn:
		if color == board.White {
			return []direction{dirN}
		}
		return []direction{dirS}
	case board.EnPassantPawn:
		// The en-passant pawn's reserved single direction is its own
		// forward push square, the square it would vacate if captured
		// en passant a move later. Population beyond this is left to a
		// future pawn-aware build (spec §9 "Extensibility to pawns").
		if color == board.White {
			return []direction{dirN}
		}
		return []direction{dirS}
	default:
		return nil
	}
}

// Table is the read-only, process-wide movement table (spec §3.5,
// "Global mutable state"): built once at startup and never mutated
// thereafter, so it is safe to share across goroutines.
type Table struct {
	// rays[kind][color][sq] holds one ray (slice of Step, sentinel-terminated) per direction.
	rays [board.NoPieceType][2][64][][]Step
}

// Build constructs the movement table for every piece kind, color, and
// origin square. It never fails — edge tests simply produce a ray whose
// first entry is the sentinel.
func Build() *Table {
	t := &Table{}
	for kind := board.PieceType(0); kind < board.NoPieceType; kind++ {
		for _, color := range [2]board.Color{board.White, board.Black} {
			dirs := directions(kind, color)
			cap := maxSteps(kind)
			for sq := board.Square(0); sq < 64; sq++ {
				rays := make([][]Step, len(dirs))
				for d, dir := range dirs {
					rays[d] = buildRay(sq, dir, cap)
				}
				t.rays[kind][color][sq] = rays
			}
		}
	}
	return t
}

// buildRay walks dir from origin up to cap steps, writing the sentinel
// as soon as an edge test fails (spec §4.2 build contract).
func buildRay(origin board.Square, dir direction, cap int) []Step {
	ray := make([]Step, 0, cap+1)
	cur := origin
	for step := 0; step < cap; step++ {
		if !canStep(cur, dir) {
			ray = append(ray, sentinel)
			return ray
		}
		cur = board.NewSquare(cur.File()+dir.df, cur.Rank()+dir.dr)
		ray = append(ray, Step{Dest: cur, Mask: board.BitVector(cur)})
	}
	ray = append(ray, sentinel)
	return ray
}

// canStep reports whether moving one square in dir from sq stays on the
// board, using the compound edge tests of spec §4.1.
func canStep(sq board.Square, dir direction) bool {
	switch {
	case dir.df == 1 && !sq.CanEast():
		return false
	case dir.df == -1 && !sq.CanWest():
		return false
	case dir.df == 2 && !sq.CanEast2():
		return false
	case dir.df == -2 && !sq.CanWest2():
		return false
	}
	switch {
	case dir.dr == 1 && !sq.CanNorth():
		return false
	case dir.dr == -1 && !sq.CanSouth():
		return false
	case dir.dr == 2 && !sq.CanNorth2():
		return false
	case dir.dr == -2 && !sq.CanSouth2():
		return false
	}
	return true
}

// Rays returns the directional rays for kind/color/sq. Each inner slice
// is sentinel-terminated; callers scan it with a blocker test.
func (t *Table) Rays(kind board.PieceType, color board.Color, sq board.Square) [][]Step {
	return t.rays[kind][color][sq]
}

// Reachable walks every ray from sq for kind/color and returns the set
// of squares struck before a blocker, i.e. the pseudo-legal destination
// set against a given occupancy — used by the Initializer's forward
// move count and by the propagator's predecessor search.
func (t *Table) Reachable(kind board.PieceType, color board.Color, sq board.Square, occupied board.Bitboard) board.Bitboard {
	var dest board.Bitboard
	for _, ray := range t.Rays(kind, color, sq) {
		for _, step := range ray {
			if step.IsSentinel() {
				break
			}
			dest |= step.Mask
			if step.Mask&occupied != 0 {
				break
			}
		}
	}
	return dest
}

// Predecessors walks every ray from sq for kind/color and returns the
// set of squares strictly before the first blocker in parent's
// occupancy — the retrograde candidate squares a piece could have
// departed from to reach sq by a non-capturing move (spec §4.5 step 2).
// Unlike Reachable, the blocker square itself is excluded: a retrograde
// step never reconstructs through an occupied square.
func (t *Table) Predecessors(kind board.PieceType, color board.Color, sq board.Square, occupied board.Bitboard) board.Bitboard {
	var dest board.Bitboard
	for _, ray := range t.Rays(kind, color, sq) {
		for _, step := range ray {
			if step.IsSentinel() {
				break
			}
			if step.Mask&occupied != 0 {
				break
			}
			dest |= step.Mask
		}
	}
	return dest
}

// Verify runs the spec §4.2 verification pass once after Build and
// returns a descriptive error on the first violation found. It must be
// run before the table is trusted by the Initializer or Propagator.
func Verify(t *Table) error {
	nonPawn := []board.PieceType{board.King, board.Queen, board.Rook, board.Bishop, board.Knight}
	for _, kind := range nonPawn {
		for _, color := range [2]board.Color{board.White, board.Black} {
			if err := verifyKind(t, kind, color); err != nil {
				return err
			}
		}
		// Non-pawn kinds are color-symmetric; verifying one color's
		// reachability also exercises the other via the same ray shapes,
		// but since Rays are stored per-color we still check both above
		// to catch a build bug that accidentally made them diverge.
	}
	return nil
}

func verifyKind(t *Table, kind board.PieceType, color board.Color) error {
	reaches := make([][64]bool, 64)
	for a := board.Square(0); a < 64; a++ {
		reaches[a] = [64]bool{}
		hits := map[board.Square]int{}
		for _, ray := range t.Rays(kind, color, a) {
			for _, step := range ray {
				if step.IsSentinel() {
					if step.Mask != board.AllOnes || step.Dest != board.NoSquare {
						return fmt.Errorf("movement: %s %s sentinel malformed at %s", color, kind, a)
					}
					break
				}
				if step.Dest == a {
					return fmt.Errorf("movement: %s %s ray from %s contains a self-move", color, kind, a)
				}
				hits[step.Dest]++
				reaches[a][step.Dest] = true
			}
		}
		for sq, n := range hits {
			if n > 1 {
				return fmt.Errorf("movement: %s %s from %s reaches %s by more than one ray", color, kind, a, sq)
			}
		}
	}
	for a := board.Square(0); a < 64; a++ {
		for b := board.Square(0); b < 64; b++ {
			if a == b {
				continue
			}
			if reaches[a][b] && !reaches[b][a] {
				return fmt.Errorf("movement: %s %s asymmetric: %s reaches %s but not vice versa", color, kind, a, b)
			}
		}
	}
	return nil
}
