package report

import (
	"fmt"
	"io"
	"strings"
)

// PrintSummary writes the human-readable analysis summary to w.
func PrintSummary(w io.Writer, rep *Report) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "LLVM IR DIVERGENCE ANALYSIS RESULTS")
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "SUMMARY:")
	fmt.Fprintf(w, "   Legacy passes:     %d\n", rep.Summary.TotalLegacyPasses)
	fmt.Fprintf(w, "   NPM passes:        %d\n", rep.Summary.TotalNPMPasses)
	fmt.Fprintf(w, "   Successfully mapped: %d\n", rep.Summary.SuccessfullyMapped)
	fmt.Fprintf(w, "   Skipped passes:    %d\n", rep.Summary.SkippedLegacyPasses)

	if rep.Divergence.Found {
		first := rep.Divergence.FirstDivergentPass
		fmt.Fprintln(w, "\nFIRST DIVERGENCE FOUND:")
		fmt.Fprintf(w, "   Position:      Pass pair #%d\n", first.Index)
		fmt.Fprintf(w, "   Legacy Pass:   %q (#%d in legacy pipeline)\n", first.Legacy, first.LegacyAt)
		fmt.Fprintf(w, "   NPM Pass:      %q (#%d in NPM pipeline)\n", first.NPM, first.NPMAt)

		if last := rep.Divergence.LastCommonPass; last != nil {
			fmt.Fprintln(w, "\nLAST COMMON PASS:")
			fmt.Fprintf(w, "   Position:      Pass pair #%d\n", last.Index)
			fmt.Fprintf(w, "   Legacy Pass:   %q (#%d in legacy pipeline)\n", last.Legacy, last.LegacyAt)
			fmt.Fprintf(w, "   NPM Pass:      %q (#%d in NPM pipeline)\n", last.NPM, last.NPMAt)
		}
	} else {
		fmt.Fprintln(w, "\nNO DIVERGENCE FOUND!")
		fmt.Fprintf(w, "   All %d compared passes have identical IR\n", rep.Divergence.TotalCompared)
	}

	fmt.Fprintln(w, "\nOUTPUT FILES:")
	fmt.Fprintf(w, "   JSON Report:   %s\n", rep.OutputFiles.JSONReport)
	if rep.OutputFiles.DiffFile != "" {
		fmt.Fprintf(w, "   Diff File:     %s\n", rep.OutputFiles.DiffFile)
	}
	fmt.Fprintf(w, "   Mapping Info:  %s\n", rep.OutputFiles.MappingFile)
	fmt.Fprintf(w, "   Visualization: %s\n", rep.OutputFiles.Visualization)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}
