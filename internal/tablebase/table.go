package tablebase

import (
	"fmt"
	"sync"

	"github.com/hailam/tbbuild/internal/movement"
)

// Diagnostic is one anomaly surfaced during a build: a contradiction
// between two entry updates, a decode failure, or similar. It never
// aborts the build (spec §7): the entry involved is left as-is and the
// diagnostic is logged and counted.
type Diagnostic struct {
	Index   uint64
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("index %d: %s", d.Index, d.Message)
}

// Table holds one tablebase build in progress: its material Config, the
// dense Entry array addressed by index, and a shared movement.Table used
// by both the Initializer and the Propagator.
type Table struct {
	Config   Config
	Movement *movement.Table
	Entries  []Entry

	diagMu sync.Mutex
	diags  []Diagnostic
}

// NewTable allocates a Table sized for config's full index space.
func NewTable(config Config, moves *movement.Table) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Table{
		Config:   config,
		Movement: moves,
		Entries:  make([]Entry, config.MaxIndex()),
	}, nil
}

// At returns the entry for idx.
func (t *Table) At(idx uint64) *Entry {
	return &t.Entries[idx]
}

// addDiagnostic records an anomaly without aborting the build.
func (t *Table) addDiagnostic(idx uint64, message string) {
	t.diagMu.Lock()
	defer t.diagMu.Unlock()
	t.diags = append(t.diags, Diagnostic{Index: idx, Message: message})
}

// Diagnostics returns every diagnostic recorded so far.
func (t *Table) Diagnostics() []Diagnostic {
	t.diagMu.Lock()
	defer t.diagMu.Unlock()
	out := make([]Diagnostic, len(t.diags))
	copy(out, t.diags)
	return out
}
