package control

import (
	"strings"
	"testing"

	"github.com/hailam/tbbuild/internal/board"
)

const sampleKQK = `<tablebase>
  <mobile type="King" color="White"/>
  <mobile type="Queen" color="White"/>
  <mobile type="King" color="Black"/>
  <output path="kqk.tb"/>
</tablebase>`

func TestParseBasic(t *testing.T) {
	cfg, plan, err := Parse(strings.NewReader(sampleKQK))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Mobiles) != 3 {
		t.Fatalf("got %d mobiles, want 3", len(cfg.Mobiles))
	}
	if cfg.Mobiles[1].Kind != board.Queen || cfg.Mobiles[1].Color != board.White {
		t.Errorf("mobile 1 = %+v, want White Queen", cfg.Mobiles[1])
	}
	if plan.OutputPath != "kqk.tb" {
		t.Errorf("OutputPath = %q, want kqk.tb", plan.OutputPath)
	}
	if plan.Prune.PrunedOurMove || plan.Prune.PrunedHisMove {
		t.Error("no pruning directives in sampleKQK, Prune should be all false")
	}
}

func TestParseWithFrozenAndFuturebase(t *testing.T) {
	doc := `<tablebase>
  <mobile type="King" color="White"/>
  <mobile type="Rook" color="White"/>
  <mobile type="King" color="Black"/>
  <frozen type="Pawn" color="Black" square="a7"/>
  <futurebase path="kpk.tb"/>
  <prune-our-move move="capture"/>
  <output path="out.tb"/>
</tablebase>`
	cfg, plan, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Frozen) != 1 || cfg.Frozen[0].Square != board.A7 {
		t.Errorf("Frozen = %+v, want one piece on a7", cfg.Frozen)
	}
	if !cfg.PrunedOurMove || cfg.PrunedHisMove {
		t.Errorf("PrunedOurMove/PrunedHisMove = %v/%v, want true/false", cfg.PrunedOurMove, cfg.PrunedHisMove)
	}
	if !plan.Prune.PrunedOurMove {
		t.Error("plan.Prune.PrunedOurMove should mirror cfg.PrunedOurMove")
	}
	if len(plan.FuturebasePaths) != 1 || plan.FuturebasePaths[0] != "kpk.tb" {
		t.Errorf("FuturebasePaths = %v, want [kpk.tb]", plan.FuturebasePaths)
	}
}

func TestParseMissingOutput(t *testing.T) {
	doc := `<tablebase>
  <mobile type="King" color="White"/>
  <mobile type="King" color="Black"/>
</tablebase>`
	if _, _, err := Parse(strings.NewReader(doc)); err == nil {
		t.Error("Parse should require <output>")
	}
}

func TestParseInvalidConfig(t *testing.T) {
	// Missing a king.
	doc := `<tablebase>
  <mobile type="Queen" color="White"/>
  <mobile type="King" color="Black"/>
  <output path="bad.tb"/>
</tablebase>`
	if _, _, err := Parse(strings.NewReader(doc)); err == nil {
		t.Error("Parse should reject a config missing a white king")
	}
}

func TestParseUnknownPieceType(t *testing.T) {
	doc := `<tablebase>
  <mobile type="Archbishop" color="White"/>
  <mobile type="King" color="Black"/>
  <output path="bad.tb"/>
</tablebase>`
	if _, _, err := Parse(strings.NewReader(doc)); err == nil {
		t.Error("Parse should reject an unknown piece type")
	}
}
