// Package diff computes line-level diffs between two normalized IR texts
// using the sergi/go-diff engine and renders them in unified format.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies a diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is a single line of a hunk.
type Line struct {
	Content string
	Type    LineType
}

// Hunk is a group of nearby changes with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Diff holds the line-level differences between two texts.
type Diff struct {
	OldName string
	NewName string
	Hunks   []Hunk
}

const contextLines = 3

// Compute diffs oldText against newText at line granularity. The line-level
// reduction (DiffLinesToChars) avoids newline boundary artifacts when
// converting character diffs back to line operations.
func Compute(oldName, newName, oldText, newText string) *Diff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // accuracy over speed

	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	return &Diff{
		OldName: oldName,
		NewName: newName,
		Hunks:   buildHunks(toOperations(diffs), contextLines),
	}
}

// Identical reports whether the two inputs produced no change hunks.
func (d *Diff) Identical() bool {
	return len(d.Hunks) == 0
}

// Unified renders the diff in unified format, with ---/+++ file headers and
// @@ hunk headers.
func (d *Diff) Unified() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", d.OldName)
	fmt.Fprintf(&b, "+++ %s\n", d.NewName)

	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, line := range h.Lines {
			switch line.Type {
			case LineAdded:
				b.WriteByte('+')
			case LineRemoved:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0

	for _, df := range diffs {
		lines := strings.Split(df.Text, "\n")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}

		for _, line := range lines {
			switch df.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{LineContext, oldLine, newLine, line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{LineRemoved, oldLine, -1, line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{LineAdded, -1, newLine, line})
				newLine++
			}
		}
	}
	return ops
}

func buildHunks(ops []operation, context int) []Hunk {
	var hunks []Hunk
	var current *Hunk
	lastChange := -1

	for i, op := range ops {
		if op.typ != LineContext {
			if current == nil {
				current = &Hunk{}
				start := i - context
				if start < 0 {
					start = 0
				}
				for j := start; j < i; j++ {
					current.Lines = append(current.Lines, Line{Content: ops[j].content, Type: LineContext})
				}
				current.OldStart = lineStart(ops[start].oldLine)
				current.NewStart = lineStart(ops[start].newLine)
			}
			lastChange = i
		}

		if current == nil {
			continue
		}
		current.Lines = append(current.Lines, Line{Content: op.content, Type: op.typ})

		// Close the hunk once enough unchanged context has accumulated.
		if op.typ == LineContext && i-lastChange > context {
			trimTo := len(current.Lines) - (i - lastChange - context)
			if trimTo > 0 && trimTo < len(current.Lines) {
				current.Lines = current.Lines[:trimTo]
			}
			hunks = append(hunks, finishHunk(current))
			current = nil
		}
	}

	if current != nil && len(current.Lines) > 0 {
		hunks = append(hunks, finishHunk(current))
	}
	return hunks
}

func lineStart(zeroBased int) int {
	if zeroBased < 0 {
		return 0
	}
	return zeroBased + 1
}

func finishHunk(h *Hunk) Hunk {
	for _, line := range h.Lines {
		if line.Type != LineAdded {
			h.OldCount++
		}
		if line.Type != LineRemoved {
			h.NewCount++
		}
	}
	return *h
}
