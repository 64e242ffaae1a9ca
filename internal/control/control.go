// Package control parses the XML control file that names a tablebase
// build's material configuration, futurebase imports, and output path
// (spec SPEC_FULL §3.8, §4.7). encoding/xml is used because no XML
// library appears anywhere in the retrieved example pack — this is a
// stdlib-justified ambient concern, recorded in DESIGN.md.
package control

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/hailam/tbbuild/internal/board"
	"github.com/hailam/tbbuild/internal/tablebase"
)

type document struct {
	XMLName       xml.Name     `xml:"tablebase"`
	Mobiles       []pieceElem  `xml:"mobile"`
	Frozen        []frozenElem `xml:"frozen"`
	Futurebases   []pathElem   `xml:"futurebase"`
	PrunedOurMove []moveElem   `xml:"prune-our-move"`
	PrunedHisMove []moveElem   `xml:"prune-his-move"`
	Output        pathElem     `xml:"output"`
}

type pieceElem struct {
	Type  string `xml:"type,attr"`
	Color string `xml:"color,attr"`
}

type frozenElem struct {
	Type   string `xml:"type,attr"`
	Color  string `xml:"color,attr"`
	Square string `xml:"square,attr"`
}

type pathElem struct {
	Path string `xml:"path,attr"`
}

type moveElem struct {
	Move string `xml:"move,attr"`
}

// ImportPlan names the external collaborators a control file wires up
// around the core Config: which futurebase files to import, which move
// classes are pruned against them, and where to write the result.
type ImportPlan struct {
	FuturebasePaths []string
	Prune           tablebase.PruneDirectives
	PrunedOurMoves  []string
	PrunedHisMoves  []string
	OutputPath      string
}

// Parse reads a control-file document from r into a tablebase.Config and
// an ImportPlan. It validates piece-type/color spelling, frozen-square
// syntax, and the resulting Config's own invariants (spec §4.7) before
// returning — malformed input is rejected before the caller allocates an
// entry table.
func Parse(r io.Reader) (tablebase.Config, ImportPlan, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: parse: %w", err)
	}

	cfg := tablebase.Config{
		PrunedOurMove: len(doc.PrunedOurMove) > 0,
		PrunedHisMove: len(doc.PrunedHisMove) > 0,
	}

	for i, m := range doc.Mobiles {
		kind, err := board.ParsePieceType(m.Type)
		if err != nil {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: mobile %d: %w", i, err)
		}
		color, err := board.ParseColor(m.Color)
		if err != nil {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: mobile %d: %w", i, err)
		}
		cfg.Mobiles = append(cfg.Mobiles, tablebase.MobileSpec{Kind: kind, Color: color})
	}

	for i, f := range doc.Frozen {
		kind, err := board.ParsePieceType(f.Type)
		if err != nil {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: frozen %d: %w", i, err)
		}
		color, err := board.ParseColor(f.Color)
		if err != nil {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: frozen %d: %w", i, err)
		}
		sq, err := board.ParseSquare(f.Square)
		if err != nil {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: frozen %d: %w", i, err)
		}
		cfg.Frozen = append(cfg.Frozen, tablebase.FrozenPiece{Kind: kind, Color: color, Square: sq})
	}

	if err := cfg.Validate(); err != nil {
		return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: %w", err)
	}

	if doc.Output.Path == "" {
		return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: <output path=...> is required")
	}

	plan := ImportPlan{
		Prune: tablebase.PruneDirectives{
			PrunedOurMove: cfg.PrunedOurMove,
			PrunedHisMove: cfg.PrunedHisMove,
		},
		OutputPath: doc.Output.Path,
	}
	for _, fb := range doc.Futurebases {
		if fb.Path == "" {
			return tablebase.Config{}, ImportPlan{}, fmt.Errorf("control: <futurebase> missing path attribute")
		}
		plan.FuturebasePaths = append(plan.FuturebasePaths, fb.Path)
	}
	for _, m := range doc.PrunedOurMove {
		plan.PrunedOurMoves = append(plan.PrunedOurMoves, m.Move)
	}
	for _, m := range doc.PrunedHisMove {
		plan.PrunedHisMoves = append(plan.PrunedHisMoves, m.Move)
	}

	return cfg, plan, nil
}
