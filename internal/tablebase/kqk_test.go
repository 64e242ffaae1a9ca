package tablebase

import (
	"testing"

	"github.com/hailam/tbbuild/internal/board"
	"github.com/hailam/tbbuild/internal/movement"
)

// buildKQK runs a full King+Queen vs King build: Mobiles King(W), Queen(W),
// King(B), matching spec.md §8's round-trip scenario.
func buildKQK(t *testing.T) (*Table, *movement.Table) {
	t.Helper()
	moves := movement.Build()
	if err := movement.Verify(moves); err != nil {
		t.Fatalf("movement.Verify: %v", err)
	}
	cfg := kqkConfig()
	table, err := NewTable(cfg, moves)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	driver := &Driver{Table: table, Propagator: Propagator{MaxPass: 20}}
	if err := driver.Run(); err != nil {
		t.Fatalf("Driver.Run: %v", err)
	}
	return table, moves
}

func entryAt(t *testing.T, table *Table, side board.Color, wk, wq, bk board.Square) *Entry {
	t.Helper()
	pos := table.Config.NewPosition()
	pos.SideToMove = side
	pos.MobileSquares = []board.Square{wk, wq, bk}
	idx := table.Config.Encode(pos)
	return table.At(idx)
}

func TestBareKingsAlwaysDraw(t *testing.T) {
	// Scenario 1: K vs K, no mating material, so every legal (non-adjacent)
	// position is a draw and every adjacent-kings index is illegal.
	moves := movement.Build()
	if err := movement.Verify(moves); err != nil {
		t.Fatalf("movement.Verify: %v", err)
	}
	cfg := Config{Mobiles: []MobileSpec{
		{Kind: board.King, Color: board.White},
		{Kind: board.King, Color: board.Black},
	}}
	table, err := NewTable(cfg, moves)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	driver := &Driver{Table: table, Propagator: Propagator{MaxPass: 5}}
	if err := driver.Run(); err != nil {
		t.Fatalf("Driver.Run: %v", err)
	}

	n := cfg.MaxIndex()
	pos := cfg.NewPosition()
	for idx := uint64(0); idx < n; idx++ {
		if err := cfg.Decode(idx, pos); err != nil {
			continue
		}
		wk, bk := pos.MobileSquares[0], pos.MobileSquares[1]
		adjacent := kingsAdjacent(wk, bk)
		state, _ := table.At(idx).State()
		if adjacent && state != StateIllegal {
			t.Errorf("index %d (wk=%s bk=%s, adjacent): state = %v, want Illegal", idx, wk, bk, state)
		}
		if !adjacent {
			switch state {
			case StateIllegal, StatePTMWinsDone, StatePNTMWinsDone, StatePTMWinsPending, StatePNTMWinsPending:
				t.Errorf("index %d (wk=%s bk=%s): state = %v, want a drawn (non-concluded) state", idx, wk, bk, state)
			}
		}
	}
}

func TestKQKAdjacentKingsIllegal(t *testing.T) {
	table, _ := buildKQK(t)
	e := entryAt(t, table, board.White, board.E4, board.A1, board.E5)
	state, _ := e.State()
	if state != StateIllegal {
		t.Errorf("adjacent kings state = %v, want Illegal", state)
	}
}

func TestKQKMateInThree(t *testing.T) {
	table, _ := buildKQK(t)
	// Scenario 2: White Ke6, Black Ke8, White Qd1, White to move: mate in
	// at most 3 half-moves.
	e := entryAt(t, table, board.White, board.E6, board.D1, board.E8)
	state, _ := e.State()
	if state != StatePTMWinsDone && state != StatePTMWinsPending {
		t.Fatalf("state = %v, want a PTM-wins state", state)
	}
	if mate := e.MateIn(); mate > 3 {
		t.Errorf("mate_in_cnt = %d, want <= 3", mate)
	}
}

func TestKQKMateInOneTerminalSeed(t *testing.T) {
	table, _ := buildKQK(t)
	// Scenario 3: White Kf6, Black Kh8, White Qg7 is mate (Black to move).
	// The same square placement with White to move is not itself reachable
	// in legal play — it is the king-capture terminal seed of spec §4.4
	// step 3 (White's queen already attacks the black king), used to seed
	// retrograde propagation, and is recorded directly as a PTM win with
	// mate_in_cnt = 0 rather than a counted move.
	e := entryAt(t, table, board.White, board.F6, board.G7, board.H8)
	state, _ := e.State()
	if state != StatePTMWinsDone && state != StatePTMWinsPending {
		t.Fatalf("state = %v, want a PTM-wins state", state)
	}
	if mate := e.MateIn(); mate != 0 {
		t.Errorf("mate_in_cnt = %d, want 0 (terminal seed)", mate)
	}
}

func TestKQKStalemate(t *testing.T) {
	table, _ := buildKQK(t)
	// Scenario 4: White Kf6, Black Kh8, White Qg6, Black to move: stalemate.
	e := entryAt(t, table, board.Black, board.F6, board.G6, board.H8)
	state, movecnt := e.State()
	if state != StateStalemate {
		t.Errorf("state = %v, want Stalemate", state)
	}
	if movecnt != 251 {
		t.Errorf("movecnt = %d, want 251", movecnt)
	}
}

func TestKQKTerminatesWithinTenPasses(t *testing.T) {
	moves := movement.Build()
	if err := movement.Verify(moves); err != nil {
		t.Fatalf("movement.Verify: %v", err)
	}
	table, err := NewTable(kqkConfig(), moves)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	(&Initializer{}).Run(table)

	lastPass := -1
	(&Propagator{MaxPass: 20}).Run(table, func(rec PassRecord) {
		lastPass = rec.Pass
	})
	// lastPass is the pass index at which nothing further was propagated,
	// one past the true maximum mate distance; spec.md §8 scenario 6 puts
	// that maximum at 10 for this material.
	if lastPass > 11 {
		t.Errorf("propagation ran through pass %d, want <= 11", lastPass)
	}
}
