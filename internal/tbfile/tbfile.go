// Package tbfile implements the on-disk tablebase file format (spec
// SPEC_FULL §3.7): a fixed-width header describing the material
// configuration, followed by the dense 4-byte-per-index entry array.
// encoding/binary is used because the entry array is already a flat
// fixed-width binary blob and the header must be seekable/
// memory-mappable without a parsing pass — no third-party wire format in
// the retrieved pack fits a flat struct-of-fixed-ints better than the
// standard library here (justified in DESIGN.md).
package tbfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hailam/tbbuild/internal/board"
	"github.com/hailam/tbbuild/internal/tablebase"
)

var magic = [4]byte{'T', 'B', 'L', 'B'}

const formatVersion uint32 = 1

type mobileRecord struct {
	Kind  uint8
	Color uint8
}

type frozenRecord struct {
	Kind   uint8
	Color  uint8
	Square uint8
}

// Write encodes t's configuration and entry array to w.
func Write(w io.Writer, t *tablebase.Table) error {
	if err := binary.Write(w, binary.BigEndian, magic); err != nil {
		return fmt.Errorf("tbfile: write magic: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, formatVersion); err != nil {
		return fmt.Errorf("tbfile: write version: %w", err)
	}

	cfg := t.Config
	if err := binary.Write(w, binary.BigEndian, uint8(len(cfg.Mobiles))); err != nil {
		return fmt.Errorf("tbfile: write num_mobiles: %w", err)
	}
	mobiles := make([]mobileRecord, len(cfg.Mobiles))
	for i, m := range cfg.Mobiles {
		mobiles[i] = mobileRecord{Kind: uint8(m.Kind), Color: uint8(m.Color)}
	}
	if err := binary.Write(w, binary.BigEndian, mobiles); err != nil {
		return fmt.Errorf("tbfile: write mobiles: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, uint8(len(cfg.Frozen))); err != nil {
		return fmt.Errorf("tbfile: write num_frozen: %w", err)
	}
	frozen := make([]frozenRecord, len(cfg.Frozen))
	for i, f := range cfg.Frozen {
		frozen[i] = frozenRecord{Kind: uint8(f.Kind), Color: uint8(f.Color), Square: uint8(f.Square)}
	}
	if err := binary.Write(w, binary.BigEndian, frozen); err != nil {
		return fmt.Errorf("tbfile: write frozen: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, cfg.PrunedOurMove); err != nil {
		return fmt.Errorf("tbfile: write pruned_our_move: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, cfg.PrunedHisMove); err != nil {
		return fmt.Errorf("tbfile: write pruned_his_move: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, [3]byte{}); err != nil {
		return fmt.Errorf("tbfile: write reserved: %w", err)
	}

	n := cfg.MaxIndex()
	words := make([]uint32, n)
	for i := uint64(0); i < n; i++ {
		words[i] = t.At(i).Raw()
	}
	if err := binary.Write(w, binary.BigEndian, words); err != nil {
		return fmt.Errorf("tbfile: write entries: %w", err)
	}
	return nil
}

// Read decodes a tablebase file from r into a Table whose movement table
// is unset (nil) — a loaded table is read-only lookup data for a
// futurebase import, not a build in progress, so it never needs to walk
// movement rays itself.
func Read(r io.Reader) (*tablebase.Table, error) {
	var gotMagic [4]byte
	if err := binary.Read(r, binary.BigEndian, &gotMagic); err != nil {
		return nil, fmt.Errorf("tbfile: read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("tbfile: bad magic %q, want %q", gotMagic, magic)
	}

	var version uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("tbfile: read version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("tbfile: unsupported version %d, want %d", version, formatVersion)
	}

	var numMobiles uint8
	if err := binary.Read(r, binary.BigEndian, &numMobiles); err != nil {
		return nil, fmt.Errorf("tbfile: read num_mobiles: %w", err)
	}
	mobileRecs := make([]mobileRecord, numMobiles)
	if err := binary.Read(r, binary.BigEndian, mobileRecs); err != nil {
		return nil, fmt.Errorf("tbfile: read mobiles: %w", err)
	}

	var numFrozen uint8
	if err := binary.Read(r, binary.BigEndian, &numFrozen); err != nil {
		return nil, fmt.Errorf("tbfile: read num_frozen: %w", err)
	}
	frozenRecs := make([]frozenRecord, numFrozen)
	if err := binary.Read(r, binary.BigEndian, frozenRecs); err != nil {
		return nil, fmt.Errorf("tbfile: read frozen: %w", err)
	}

	var cfg tablebase.Config
	for _, m := range mobileRecs {
		cfg.Mobiles = append(cfg.Mobiles, tablebase.MobileSpec{
			Kind:  board.PieceType(m.Kind),
			Color: board.Color(m.Color),
		})
	}
	for _, f := range frozenRecs {
		cfg.Frozen = append(cfg.Frozen, tablebase.FrozenPiece{
			Kind:   board.PieceType(f.Kind),
			Color:  board.Color(f.Color),
			Square: board.Square(f.Square),
		})
	}

	if err := binary.Read(r, binary.BigEndian, &cfg.PrunedOurMove); err != nil {
		return nil, fmt.Errorf("tbfile: read pruned_our_move: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &cfg.PrunedHisMove); err != nil {
		return nil, fmt.Errorf("tbfile: read pruned_his_move: %w", err)
	}
	var reserved [3]byte
	if err := binary.Read(r, binary.BigEndian, &reserved); err != nil {
		return nil, fmt.Errorf("tbfile: read reserved: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tbfile: %w", err)
	}

	t, err := tablebase.NewTable(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("tbfile: %w", err)
	}

	n := cfg.MaxIndex()
	words := make([]uint32, n)
	if err := binary.Read(r, binary.BigEndian, words); err != nil {
		return nil, fmt.Errorf("tbfile: read entries: %w (want %d entries)", err, n)
	}
	for i := uint64(0); i < n; i++ {
		t.At(i).SetRaw(words[i])
	}

	// Confirm no trailing bytes: a well-formed file ends exactly at the
	// entry array.
	var extra [1]byte
	if _, err := io.ReadFull(r, extra[:]); err != io.EOF && err != io.ErrUnexpectedEOF {
		if err == nil {
			return nil, fmt.Errorf("tbfile: trailing data after entry array")
		}
		return nil, fmt.Errorf("tbfile: checking for trailing data: %w", err)
	}

	return t, nil
}
