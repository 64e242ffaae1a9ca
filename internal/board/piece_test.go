package board

import "testing"

func TestParsePieceTypeRoundTrip(t *testing.T) {
	kinds := []PieceType{King, Queen, Rook, Bishop, Knight, Pawn, EnPassantPawn}
	for _, k := range kinds {
		got, err := ParsePieceType(k.String())
		if err != nil {
			t.Errorf("ParsePieceType(%q) error: %v", k.String(), err)
			continue
		}
		if got != k {
			t.Errorf("ParsePieceType(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestParsePieceTypeUnknown(t *testing.T) {
	if _, err := ParsePieceType("Archbishop"); err == nil {
		t.Error("ParsePieceType should reject an unknown piece name")
	}
}

func TestParseColor(t *testing.T) {
	if c, err := ParseColor("White"); err != nil || c != White {
		t.Errorf("ParseColor(White) = %v, %v", c, err)
	}
	if c, err := ParseColor("Black"); err != nil || c != Black {
		t.Errorf("ParseColor(Black) = %v, %v", c, err)
	}
	if _, err := ParseColor("Red"); err == nil {
		t.Error("ParseColor should reject an unknown color name")
	}
}

func TestColorOther(t *testing.T) {
	if White.Other() != Black {
		t.Error("White.Other() should be Black")
	}
	if Black.Other() != White {
		t.Error("Black.Other() should be White")
	}
}
