// Package irdump parses LLVM IR dump streams: it recognizes per-pass banner
// lines in both the legacy and new pass manager formats, slices the raw text
// into per-pass blocks, and persists each block as an artifact.
package irdump

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Scope describes what a pass dump covers.
type Scope int

const (
	ScopeUnknown Scope = iota // legacy headers carry no target
	ScopeModule
	ScopeFunction
)

func (s Scope) String() string {
	switch s {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Header is one recognized pass banner line.
type Header struct {
	Name         string // canonical pass name
	OriginalLine string
	LineNumber   int // 1-based
	Scope        Scope
	Target       string // function name when Scope is ScopeFunction
}

var (
	// Legacy: *** IR Dump After Pass Description (pass-id) ***
	legacyHeaderRe = regexp.MustCompile(`^\s*#?\s*\*\*\* IR Dump After (.+) \*\*\*:?`)

	// NPM: ; *** IR Dump After pass-name on target ***
	npmHeaderRe = regexp.MustCompile(`^\s*; \*\*\* IR Dump After (.+?) on (.+?) \*\*\*`)

	parenGroupRe = regexp.MustCompile(`\(([^)]+)\)`)
)

// moduleTarget is the reserved NPM target meaning the dump covers the whole module.
const moduleTarget = "[module]"

// ScanHeaders reads r line by line and returns every recognized pass header in
// discovery order. Lines that match neither dialect are simply not headers;
// the only failure mode is a read error on r.
func ScanHeaders(r io.Reader) ([]Header, error) {
	var headers []Header
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")

		if h, ok := parseHeaderLine(line); ok {
			h.LineNumber = lineNo
			headers = append(headers, h)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning dump: %w", err)
	}
	return headers, nil
}

func parseHeaderLine(line string) (Header, bool) {
	if m := npmHeaderRe.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		target := strings.TrimSpace(m[2])
		h := Header{Name: name, OriginalLine: line}
		if target == moduleTarget {
			h.Scope = ScopeModule
			h.Target = "module"
		} else {
			h.Scope = ScopeFunction
			h.Target = target
		}
		return h, true
	}

	if m := legacyHeaderRe.FindStringSubmatch(line); m != nil {
		return Header{
			Name:         lastParenGroup(strings.TrimSpace(m[1])),
			OriginalLine: line,
			Scope:        ScopeUnknown,
		}, true
	}

	return Header{}, false
}

// lastParenGroup returns the contents of the last parenthesized group in text,
// which is where the legacy pass manager places the pass identifier, e.g.
// "Instrument function entry/exit (post inlining) (post-inline-ee-instrument)"
// yields "post-inline-ee-instrument". Text without parentheses is returned
// trimmed as-is.
func lastParenGroup(text string) string {
	groups := parenGroupRe.FindAllStringSubmatch(text, -1)
	if len(groups) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(groups[len(groups)-1][1])
}
