package diff

import (
	"strings"
	"testing"
)

func TestCompute_SimpleChange(t *testing.T) {
	oldText := "line1\nline2\nline3"
	newText := "line1\nchanged\nline3"

	d := Compute("old.ll", "new.ll", oldText, newText)
	if d.Identical() {
		t.Fatal("expected changes, got identical")
	}
	if len(d.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(d.Hunks))
	}

	hasRemoval, hasAddition := false, false
	for _, line := range d.Hunks[0].Lines {
		if line.Type == LineRemoved && line.Content == "line2" {
			hasRemoval = true
		}
		if line.Type == LineAdded && line.Content == "changed" {
			hasAddition = true
		}
	}
	if !hasRemoval {
		t.Error("expected removed line 'line2'")
	}
	if !hasAddition {
		t.Error("expected added line 'changed'")
	}
}

func TestCompute_Identical(t *testing.T) {
	text := "a\nb\nc"
	d := Compute("x", "y", text, text)
	if !d.Identical() {
		t.Errorf("expected identical, got %d hunks", len(d.Hunks))
	}
}

func TestUnified_Format(t *testing.T) {
	oldText := "a\nb\nc"
	newText := "a\nx\nc"

	out := Compute("legacy/pass", "npm/pass", oldText, newText).Unified()

	for _, want := range []string{
		"--- legacy/pass\n",
		"+++ npm/pass\n",
		"@@ -1,3 +1,3 @@\n",
		"\n-b\n",
		"\n+x\n",
		"\n a\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("unified output missing %q:\n%s", want, out)
		}
	}
}

func TestUnified_HunkCounts(t *testing.T) {
	// A pure addition: old count stays at context size, new count grows.
	oldText := "a\nb"
	newText := "a\nnew\nb"

	d := Compute("o", "n", oldText, newText)
	if len(d.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(d.Hunks))
	}
	h := d.Hunks[0]
	if h.OldCount != 2 || h.NewCount != 3 {
		t.Errorf("expected counts (2,3), got (%d,%d)", h.OldCount, h.NewCount)
	}
}

func TestCompute_DistantChangesSplitIntoHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		line := "ctx"
		oldLines = append(oldLines, line)
		newLines = append(newLines, line)
	}
	oldLines[0] = "old-head"
	newLines[0] = "new-head"
	oldLines[29] = "old-tail"
	newLines[29] = "new-tail"

	d := Compute("o", "n", strings.Join(oldLines, "\n"), strings.Join(newLines, "\n"))
	if len(d.Hunks) != 2 {
		t.Errorf("expected 2 hunks for distant changes, got %d", len(d.Hunks))
	}
}
