package tablebase

import "log"

// CheckpointStore receives one PassRecord after every propagation pass,
// for a build-progress store (internal/store) to persist. A nil store is
// valid — the Driver simply doesn't checkpoint.
type CheckpointStore interface {
	RecordPass(record PassRecord) error
}

// Driver orchestrates one tablebase build end to end: Initializer, then
// Propagator passes, then a reserved finalization stage (spec §4.4/§4.5
// plus the Open Question decision recorded in DESIGN.md not to implement
// a separate forced-draw finalization pass).
type Driver struct {
	Table      *Table
	Init       Initializer
	Propagator Propagator
	Store      CheckpointStore
}

// Run executes the full build.
func (d *Driver) Run() error {
	d.Init.Run(d.Table)

	d.Propagator.Run(d.Table, func(rec PassRecord) {
		diagCount := len(d.Table.Diagnostics())
		log.Printf("tablebase: pass %d processed=%d propagated=%d diagnostics=%d",
			rec.Pass, rec.Processed, rec.Propagated, diagCount)
		if d.Store != nil {
			if err := d.Store.RecordPass(rec); err != nil {
				log.Printf("tablebase: checkpoint for pass %d failed: %v", rec.Pass, err)
			}
		}
	})

	d.finalizeDraws()

	for _, diag := range d.Table.Diagnostics() {
		log.Printf("tablebase: %s", diag)
	}
	return nil
}

// finalizeDraws is a reserved no-op stage. Every entry still carrying a
// moves-remaining or stalemate-tag state once the Propagator's fixed
// point is reached is, by construction, a draw (every move it had either
// stayed unresolved or was disproven without the position itself ever
// being marked lost) — spec §4.5's "Termination" leaves open whether a
// dedicated sweep should rewrite those entries to a distinct DRAW tag;
// this build reads "moves-remaining or stalemate-tag after the fixed
// point" as the draw condition directly (see DESIGN.md) rather than
// rewriting them in place.
func (d *Driver) finalizeDraws() {}
