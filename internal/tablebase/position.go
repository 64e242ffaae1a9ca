package tablebase

import (
	"fmt"

	"github.com/hailam/tbbuild/internal/board"
)

// Position is the decoded form of an index: occupancy bitboards plus the
// square of each mobile piece in Config.Mobiles order (spec §3.1, §3.3).
type Position struct {
	SideToMove board.Color

	// MobileSquares[i] is the square of Config.Mobiles[i].
	MobileSquares []board.Square

	WhiteOccupied board.Bitboard
	BlackOccupied board.Bitboard
	Occupied      board.Bitboard
}

// PieceAt reports the mobile or frozen piece sitting on sq, if any.
func (c Config) PieceAt(pos *Position, sq board.Square) (kind board.PieceType, color board.Color, ok bool) {
	for i, m := range c.Mobiles {
		if pos.MobileSquares[i] == sq {
			return m.Kind, m.Color, true
		}
	}
	for _, f := range c.Frozen {
		if f.Square == sq {
			return f.Kind, f.Color, true
		}
	}
	return board.NoPieceType, board.NoColor, false
}

// Encode packs pos into its index (spec §3.3): the side-to-move occupies
// bit 0, and mobile i's square occupies bits [1+6i, 7+6i).
func (c Config) Encode(pos *Position) uint64 {
	idx := uint64(pos.SideToMove)
	for i, sq := range pos.MobileSquares {
		idx |= uint64(sq) << uint(1+6*i)
	}
	return idx
}

// Decode unpacks idx into a Position. It returns an error only for the
// coarse, codec-level illegality of spec §4.3: two mobiles (or a mobile
// and a frozen piece) occupying the same square. Finer legality —
// adjacent kings — is the Initializer's job, not the codec's.
func (c Config) Decode(idx uint64, pos *Position) error {
	if idx >= c.MaxIndex() {
		return fmt.Errorf("tablebase: index %d out of range [0,%d)", idx, c.MaxIndex())
	}

	pos.SideToMove = board.Color(idx & 1)

	if cap(pos.MobileSquares) < c.NumMobiles() {
		pos.MobileSquares = make([]board.Square, c.NumMobiles())
	} else {
		pos.MobileSquares = pos.MobileSquares[:c.NumMobiles()]
	}

	whiteOcc, blackOcc, frozenSquares := c.frozenOccupancy()
	occupied := whiteOcc | blackOcc

	for i, m := range c.Mobiles {
		sq := board.Square((idx >> uint(1+6*i)) & 0x3F)
		pos.MobileSquares[i] = sq

		mask := board.BitVector(sq)
		if occupied&mask != 0 {
			return fmt.Errorf("tablebase: index %d: mobile %d collides on %s", idx, i, sq)
		}
		if frozenSquares[sq] {
			return fmt.Errorf("tablebase: index %d: mobile %d collides with frozen piece on %s", idx, i, sq)
		}
		occupied |= mask
		if m.Color == board.White {
			whiteOcc |= mask
		} else {
			blackOcc |= mask
		}
	}

	pos.WhiteOccupied = whiteOcc
	pos.BlackOccupied = blackOcc
	pos.Occupied = occupied
	return nil
}

// NewPosition allocates a Position with its MobileSquares slice sized for c.
func (c Config) NewPosition() *Position {
	return &Position{MobileSquares: make([]board.Square, c.NumMobiles())}
}

// KingSquare returns the square of the king of the given color, searching
// mobiles first and then frozen pieces.
func (c Config) KingSquare(pos *Position, color board.Color) board.Square {
	for i, m := range c.Mobiles {
		if m.Kind == board.King && m.Color == color {
			return pos.MobileSquares[i]
		}
	}
	for _, f := range c.Frozen {
		if f.Kind == board.King && f.Color == color {
			return f.Square
		}
	}
	return board.NoSquare
}
