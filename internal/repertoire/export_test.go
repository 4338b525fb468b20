// ABOUTME: Tests for repertoire export and load
// ABOUTME: Verifies round trips and repair of inconsistent selections

package repertoire

import (
	"testing"

	"github.com/harper/repertoire/internal/fen"
	"github.com/harper/repertoire/internal/models"
)

func TestExport_RoundTrip(t *testing.T) {
	r := New()
	if err := r.PushLine([]string{"e4", "e5", "Nf3"}, models.White); err != nil {
		t.Fatal(err)
	}
	r.AddMove(startPosition, move(t, startPosition, "d4"), models.White)
	r.AddAlternative(startPosition, "d4")
	r.SetNotes(postE4E5, "king's pawn")

	data, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := FromJSON(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(loaded.Positions()) != len(r.Positions()) {
		t.Errorf("expected %d positions, got %d", len(r.Positions()), len(loaded.Positions()))
	}
	if !loaded.IsMainMove(startPosition, "e4") {
		t.Error("main move lost")
	}
	if !loaded.IsRepertoireMove(startPosition, "d4") {
		t.Error("alternative lost")
	}
	if !loaded.IsMainMove(postE4E5, "Nf3") {
		t.Error("deep main move lost")
	}
	if loaded.Notes(postE4E5) != "king's pawn" {
		t.Errorf("notes lost: %q", loaded.Notes(postE4E5))
	}
}

func TestExport_Shape(t *testing.T) {
	r := New()
	r.AddMove(startPosition, move(t, startPosition, "e4"), models.White)

	exp := r.Export()
	start, ok := exp[startPosition]
	if !ok {
		t.Fatal("start position missing from export")
	}
	if start.Selection == nil || start.Selection.DisplayNotation != "e4" {
		t.Errorf("unexpected selection %+v", start.Selection)
	}
	if start.Selection.Notation != "e2e4" || start.Selection.ResultingKey != postE4 {
		t.Errorf("unexpected option data %+v", start.Selection)
	}
	after := exp[postE4]
	if after.Selection != nil {
		t.Error("leaf should have no selection")
	}
	if after.Options == nil || after.AlternativeSelections == nil {
		t.Error("empty lists should export as empty, not nil")
	}
}

func TestLoad_RepairsSelections(t *testing.T) {
	e4 := NewOption(move(t, startPosition, "e4"))
	d4 := NewOption(move(t, startPosition, "d4"))

	r := Load(Export{
		startPosition: {
			Selection:             &e4,
			AlternativeSelections: []Option{d4},
		},
	})

	if !r.IsMainMove(startPosition, "e4") {
		t.Error("selection should become main")
	}
	if !r.IsRepertoireMove(startPosition, "e4") || !r.IsRepertoireMove(startPosition, "d4") {
		t.Errorf("alternatives not repaired: %v", r.Alternatives(startPosition))
	}
	if !r.IsOpponentMove(startPosition, "e4") || !r.IsOpponentMove(startPosition, "d4") {
		t.Error("selections should be added to options")
	}
}

func TestLoad_AddsStartAndNormalisesKeys(t *testing.T) {
	full := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
	r := Load(Export{full: {Notes: "open"}})

	if !r.ContainsPosition(fen.StartKey) {
		t.Error("start position should always exist")
	}
	if !r.ContainsPosition(postE4E5) {
		t.Error("full key should be normalised")
	}
	if r.Notes(postE4E5) != "open" {
		t.Errorf("notes lost: %q", r.Notes(postE4E5))
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	if _, err := FromJSON([]byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
