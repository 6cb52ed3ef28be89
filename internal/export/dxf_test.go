package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/ProfilePack/internal/model"
)

func TestExportDXF_DrawsPallets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pallets.dxf")

	if err := ExportDXF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("DXF file was not created: %v", err)
	}
	for _, want := range []string{layerPallet, layerBoxes, "Angle 40", "Channel 60"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("DXF output is missing %q", want)
		}
	}
	if strings.Contains(string(data), "Long Bar") {
		t.Error("unpacked profile should not be drawn")
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen DXF: %v", err)
	}
	lines := 0
	for _, e := range drawing.Entities() {
		if _, ok := e.(*entity.Line); ok {
			lines++
		}
	}
	// Angle 40: pallet outline + 2×1 boxes; Channel 60: outline + 3×3 boxes.
	want := (4 + 4*2) + (4 + 4*9)
	if lines != want {
		t.Errorf("expected %d lines, got %d", want, lines)
	}
}

func TestExportDXF_NothingToDraw(t *testing.T) {
	dir := t.TempDir()
	result := buildTestResult()
	result.Outcomes = result.Outcomes[2:]

	if err := ExportDXF(filepath.Join(dir, "none.dxf"), result); err == nil {
		t.Fatal("expected error when no profile is palletized")
	}
}

func TestFootprintOnPallet(t *testing.T) {
	box := model.BoxCandidate{Width: 500, Height: 300, Length: 400}
	tests := []struct {
		orientation string
		w, l        float64
	}{
		{"", 500, 400},
		{"WLH", 500, 400},
		{"LWH", 400, 500},
		{"WHL", 500, 300},
		{"HLW", 300, 400},
	}
	for _, tt := range tests {
		w, l := footprintOnPallet(box, tt.orientation)
		if w != tt.w || l != tt.l {
			t.Errorf("footprintOnPallet(%q) = %g×%g, want %g×%g", tt.orientation, w, l, tt.w, tt.l)
		}
	}
}
