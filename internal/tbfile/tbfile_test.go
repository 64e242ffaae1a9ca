package tbfile

import (
	"bytes"
	"testing"

	"github.com/hailam/tbbuild/internal/board"
	"github.com/hailam/tbbuild/internal/movement"
	"github.com/hailam/tbbuild/internal/tablebase"
)

func buildSample(t *testing.T) *tablebase.Table {
	t.Helper()
	moves := movement.Build()
	if err := movement.Verify(moves); err != nil {
		t.Fatalf("movement.Verify: %v", err)
	}
	cfg := tablebase.Config{
		Mobiles: []tablebase.MobileSpec{
			{Kind: board.King, Color: board.White},
			{Kind: board.Queen, Color: board.White},
			{Kind: board.King, Color: board.Black},
		},
		Frozen: []tablebase.FrozenPiece{
			{Kind: board.Pawn, Color: board.Black, Square: board.A7},
		},
		PrunedOurMove: true,
	}
	table, err := tablebase.NewTable(cfg, moves)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	(&tablebase.Initializer{}).Run(table)
	return table
}

func TestWriteReadRoundTrip(t *testing.T) {
	table := buildSample(t)

	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Config.NumMobiles() != table.Config.NumMobiles() {
		t.Fatalf("NumMobiles = %d, want %d", got.Config.NumMobiles(), table.Config.NumMobiles())
	}
	for i, m := range table.Config.Mobiles {
		if got.Config.Mobiles[i] != m {
			t.Errorf("mobile %d = %+v, want %+v", i, got.Config.Mobiles[i], m)
		}
	}
	if len(got.Config.Frozen) != 1 || got.Config.Frozen[0].Square != board.A7 {
		t.Errorf("Frozen = %+v, want one piece pinned to a7", got.Config.Frozen)
	}
	if !got.Config.PrunedOurMove || got.Config.PrunedHisMove {
		t.Errorf("PrunedOurMove/PrunedHisMove = %v/%v, want true/false", got.Config.PrunedOurMove, got.Config.PrunedHisMove)
	}
	if got.Movement != nil {
		t.Error("a table loaded from disk should have a nil Movement table")
	}

	n := table.Config.MaxIndex()
	for idx := uint64(0); idx < n; idx++ {
		if got.At(idx).Raw() != table.At(idx).Raw() {
			t.Fatalf("entry %d = %#x, want %#x", idx, got.At(idx).Raw(), table.At(idx).Raw())
		}
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("NOPE totally not a tablebase file")
	if _, err := Read(buf); err == nil {
		t.Error("Read should reject a file with a bad magic header")
	}
}

func TestReadRejectsTrailingData(t *testing.T) {
	table := buildSample(t)
	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf.WriteByte(0xFF)

	if _, err := Read(&buf); err == nil {
		t.Error("Read should reject trailing bytes after the entry array")
	}
}
