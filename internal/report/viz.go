package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"irdiverge/internal/irdump"
)

// vizRow is one line of the dual-column display. Unmapped passes leave the
// other side and the arrow empty.
type vizRow struct {
	legacy string
	arrow  string
	npm    string
}

const (
	arrowMapped    = " <---> "
	arrowDivergent = " <-D-> "
)

// writeVisualization renders every pass of both pipelines chronologically:
// mapped pairs share a row, the first divergent pair is marked distinctly,
// and unmapped passes appear on their own side only.
func (g *Generator) writeVisualization(path string, in Input) error {
	rows := buildVizRows(in)

	var b strings.Builder
	b.WriteString("LLVM PASS PIPELINE MAPPING VISUALIZATION\n")
	b.WriteString(strings.Repeat("=", 120) + "\n\n")
	fmt.Fprintf(&b, "%-60s", fmt.Sprintf("LEGACY PASSES (%d total)", len(in.Legacy)))
	fmt.Fprintf(&b, "NPM PASSES (%d total)\n", len(in.NPM))
	b.WriteString(strings.Repeat("=", 60) + strings.Repeat("=", 60) + "\n\n")

	for _, row := range rows {
		fmt.Fprintf(&b, "%-50s%-7s%s\n", row.legacy, row.arrow, row.npm)
	}

	b.WriteString("\n" + strings.Repeat("=", 120) + "\n")
	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "  Total Legacy Passes: %d\n", len(in.Legacy))
	fmt.Fprintf(&b, "  Total NPM Passes: %d\n", len(in.NPM))
	fmt.Fprintf(&b, "  Successfully Mapped: %d\n", len(in.Alignment.Pairs))
	fmt.Fprintf(&b, "  Unmapped Legacy: %d\n", len(in.Legacy)-len(in.Alignment.Pairs))
	fmt.Fprintf(&b, "  Unmapped NPM: %d\n", len(in.NPM)-len(in.Alignment.Pairs))

	if in.Divergence.Found {
		b.WriteString("\nFIRST DIVERGENCE:\n")
		fmt.Fprintf(&b, "  Legacy: %s (#%d)\n", in.Divergence.Pair.A.Name, in.Divergence.Pair.A.Index)
		fmt.Fprintf(&b, "  NPM: %s (#%d)\n", in.Divergence.Pair.B.Name, in.Divergence.Pair.B.Index)
		b.WriteString("  Marked with: <-D->\n")
	} else {
		b.WriteString("\nNO DIVERGENCE FOUND\n")
	}

	b.WriteString("\nLEGEND:\n")
	b.WriteString("  <--->  Mapped passes with identical IR\n")
	b.WriteString("  <-D->  First divergent pass pair\n")
	b.WriteString("  (no arrow)  Unmapped pass\n")

	if err := afero.WriteFile(g.FS, path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func buildVizRows(in Input) []vizRow {
	type anchor struct {
		legacyIdx int
		npmIdx    int
		divergent bool
	}

	anchors := make([]anchor, 0, len(in.Alignment.Pairs))
	for _, p := range in.Alignment.Pairs {
		divergent := in.Divergence.Found &&
			p.A.Index == in.Divergence.Pair.A.Index &&
			p.B.Index == in.Divergence.Pair.B.Index
		anchors = append(anchors, anchor{p.A.Index, p.B.Index, divergent})
	}
	// Anchor order follows the NPM side: both pipelines advance monotonically
	// between anchors, so sorting by NPM index keeps the display chronological.
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].npmIdx < anchors[j].npmIdx })

	passLabel := func(rec irdump.PassRecord) string {
		return fmt.Sprintf("(#%3d) %s", rec.Index, rec.Name)
	}

	var rows []vizRow
	prevLegacy, prevNPM := -1, -1

	for _, an := range anchors {
		for i := prevLegacy + 1; i < an.legacyIdx && i < len(in.Legacy); i++ {
			rows = append(rows, vizRow{legacy: passLabel(in.Legacy[i])})
		}
		for i := prevNPM + 1; i < an.npmIdx && i < len(in.NPM); i++ {
			rows = append(rows, vizRow{npm: passLabel(in.NPM[i])})
		}

		arrow := arrowMapped
		if an.divergent {
			arrow = arrowDivergent
		}
		rows = append(rows, vizRow{
			legacy: passLabel(in.Legacy[an.legacyIdx]),
			arrow:  arrow,
			npm:    passLabel(in.NPM[an.npmIdx]),
		})
		prevLegacy, prevNPM = an.legacyIdx, an.npmIdx
	}

	for i := prevLegacy + 1; i < len(in.Legacy); i++ {
		rows = append(rows, vizRow{legacy: passLabel(in.Legacy[i])})
	}
	for i := prevNPM + 1; i < len(in.NPM); i++ {
		rows = append(rows, vizRow{npm: passLabel(in.NPM[i])})
	}
	return rows
}
