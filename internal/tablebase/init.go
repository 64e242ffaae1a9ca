package tablebase

import "github.com/hailam/tbbuild/internal/board"

// Initializer runs the spec §4.4 first pass over every index: decoding
// it, classifying coarse illegality, seeding king-capture win signals,
// and recording the initial untried-move count for everything else.
type Initializer struct {
	Resolver CaptureResolver
	Prune    PruneDirectives
}

// Run classifies every index of t. It never returns an error: per-index
// problems are either a legitimate StateIllegal classification or are
// recorded as diagnostics, never aborting the sweep (spec §7).
func (ini *Initializer) Run(t *Table) {
	pos := t.Config.NewPosition()
	n := t.Config.MaxIndex()
	for idx := uint64(0); idx < n; idx++ {
		ini.initOne(t, idx, pos)
	}
}

func (ini *Initializer) initOne(t *Table, idx uint64, pos *Position) {
	entry := t.At(idx)

	if err := t.Config.Decode(idx, pos); err != nil {
		entry.InitIllegal()
		return
	}

	whiteKing := t.Config.KingSquare(pos, board.White)
	blackKing := t.Config.KingSquare(pos, board.Black)
	if kingsAdjacent(whiteKing, blackKing) {
		entry.InitIllegal()
		return
	}

	mover := pos.SideToMove
	enemyKing := blackKing
	if mover == board.Black {
		enemyKing = whiteKing
	}

	useResolver := ini.Resolver != nil

	moveCount := 0
	bestWinMate := byte(0)
	sawWin := false
	for i, m := range t.Config.Mobiles {
		if m.Color != mover {
			continue
		}
		from := pos.MobileSquares[i]
		ownOccupied := pos.WhiteOccupied
		if mover == board.Black {
			ownOccupied = pos.BlackOccupied
		}
		reach := t.Movement.Reachable(m.Kind, m.Color, from, pos.Occupied) &^ ownOccupied

		// King-capture detection (spec §4.4 step 3) takes priority over
		// everything else: this index is a seed, not a normal position.
		if reach.IsSet(enemyKing) {
			entry.InitTerminalWin()
			return
		}

		enemyOccupied := pos.BlackOccupied
		if mover == board.Black {
			enemyOccupied = pos.WhiteOccupied
		}

		reach.ForEach(func(dest board.Square) {
			if enemyOccupied.IsSet(dest) {
				outcome := OutcomeUnknown
				if useResolver {
					outcome = ini.Resolver(pos, i, dest)
				}
				switch outcome {
				case OutcomeWinForMover:
					sawWin = true
					bestWinMate = 1
				case OutcomeLossForMover:
					// Excluded: a pre-resolved losing capture contributes
					// nothing to the untried-move count.
				default:
					moveCount++
				}
				return
			}
			moveCount++
		})
	}

	if sawWin {
		entry.InitWin(bestWinMate)
		return
	}

	if moveCount == 0 {
		entry.InitStalemate()
		return
	}
	if moveCount > 250 {
		moveCount = 250
	}
	entry.InitMovesRemaining(moveCount)
}

func kingsAdjacent(a, b board.Square) bool {
	fd := a.File() - b.File()
	rd := a.Rank() - b.Rank()
	if fd < 0 {
		fd = -fd
	}
	if rd < 0 {
		rd = -rd
	}
	return fd <= 1 && rd <= 1
}
