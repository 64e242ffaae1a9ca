// Command tbbuild builds an endgame tablebase from an XML control file
// by exhaustive retrograde analysis (spec SPEC_FULL §4.11).
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/hailam/tbbuild/internal/control"
	"github.com/hailam/tbbuild/internal/futurebase"
	"github.com/hailam/tbbuild/internal/movement"
	"github.com/hailam/tbbuild/internal/store"
	"github.com/hailam/tbbuild/internal/tablebase"
	"github.com/hailam/tbbuild/internal/tbfile"
)

func main() {
	var (
		futurebasePaths []string
		pruneOurMove    bool
		pruneHisMove    bool
		outputOverride  string
		verifyMovement  bool
		verbose         bool
	)
	pflag.StringArrayVar(&futurebasePaths, "futurebase", nil, "path to a futurebase file (repeatable; in addition to any named in the control file)")
	pflag.BoolVar(&pruneOurMove, "prune-our-move", false, "mark the build pruned on our move; a capture no loaded futurebase covers counts as a loss for the capturing side (either prune flag applies to both sides)")
	pflag.BoolVar(&pruneHisMove, "prune-his-move", false, "mark the build pruned on his move; a capture no loaded futurebase covers counts as a loss for the capturing side (either prune flag applies to both sides)")
	pflag.StringVar(&outputOverride, "output", "", "output tablebase path (overrides the control file's <output>)")
	pflag.BoolVar(&verifyMovement, "verify-movement-tables", true, "run the movement table verification pass before building")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "also log each pass's checkpoint record with its elapsed time")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tbbuild [flags] <control.xml>")
		os.Exit(2)
	}

	if err := run(pflag.Arg(0), futurebasePaths, pruneOurMove, pruneHisMove, outputOverride, verifyMovement, verbose); err != nil {
		log.Printf("tbbuild: %v", err)
		os.Exit(1)
	}
}

func run(controlPath string, extraFuturebases []string, pruneOurMove, pruneHisMove bool, outputOverride string, verifyMovement, verbose bool) error {
	moves := movement.Build()
	if verifyMovement {
		if err := movement.Verify(moves); err != nil {
			return fmt.Errorf("movement table verification failed: %w", err)
		}
	}

	f, err := os.Open(controlPath)
	if err != nil {
		return fmt.Errorf("open control file: %w", err)
	}
	cfg, plan, err := control.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse control file: %w", err)
	}

	if pruneOurMove {
		cfg.PrunedOurMove = true
		plan.Prune.PrunedOurMove = true
	}
	if pruneHisMove {
		cfg.PrunedHisMove = true
		plan.Prune.PrunedHisMove = true
	}
	outputPath := plan.OutputPath
	if outputOverride != "" {
		outputPath = outputOverride
	}

	t, err := tablebase.NewTable(cfg, moves)
	if err != nil {
		return fmt.Errorf("allocate tablebase: %w", err)
	}

	ini := tablebase.Initializer{Prune: plan.Prune}

	allFuturebases := append(append([]string{}, plan.FuturebasePaths...), extraFuturebases...)
	var imp *futurebase.Importer
	if len(allFuturebases) > 0 {
		imp, err = futurebase.Load(allFuturebases)
		if err != nil {
			return fmt.Errorf("load futurebases: %w", err)
		}
		ini.Resolver = imp.Resolver(cfg, plan.Prune)
	}

	checkpoints, err := store.Open(outputPath + ".checkpoint")
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	driver := &tablebase.Driver{
		Table:      t,
		Init:       ini,
		Propagator: tablebase.Propagator{},
		Store:      &checkpointAdapter{store: checkpoints, diagCount: func() int { return len(t.Diagnostics()) }, verbose: verbose},
	}
	if err := driver.Run(); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if imp != nil {
		if errs := imp.Errs(); len(errs) > 0 {
			for _, e := range errs {
				log.Printf("tbbuild: unresolved futuremove: %s", e)
			}
			return fmt.Errorf("%d unresolved futuremove(s)", len(errs))
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := tbfile.Write(out, t); err != nil {
		out.Close()
		return fmt.Errorf("write tablebase: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	log.Printf("tbbuild: wrote %s (%d diagnostics)", outputPath, len(t.Diagnostics()))
	return nil
}

// checkpointAdapter records each pass's checkpoint with wall-clock and
// diagnostic counts the core Driver doesn't itself track.
type checkpointAdapter struct {
	store     *store.Store
	diagCount func() int
	verbose   bool
	lastStamp time.Time
}

func (c *checkpointAdapter) RecordPass(rec tablebase.PassRecord) error {
	now := time.Now()
	elapsed := time.Duration(0)
	if !c.lastStamp.IsZero() {
		elapsed = now.Sub(c.lastStamp)
	}
	c.lastStamp = now

	if c.verbose {
		log.Printf("tbbuild: pass %d: %d processed, %d propagated, %d diagnostics, %s",
			rec.Pass, rec.Processed, rec.Propagated, c.diagCount(), elapsed)
	}

	return c.store.RecordPassDetail(store.PassRecord{
		PassRecord:  rec,
		Diagnostics: c.diagCount(),
		Elapsed:     elapsed,
	})
}
