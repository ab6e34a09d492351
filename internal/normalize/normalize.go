// Package normalize rewrites LLVM IR text into a canonical form so that two
// dumps differing only in naming or formatting compare byte-identical.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Options toggles each rewrite independently.
type Options struct {
	IgnoreWhitespace bool `json:"ignore_whitespace" yaml:"ignore_whitespace"`
	IgnoreEmptyLines bool `json:"ignore_empty_lines" yaml:"ignore_empty_lines"`
	IgnoreTempVars   bool `json:"ignore_temp_vars" yaml:"ignore_temp_vars"`
	IgnoreLabels     bool `json:"ignore_labels" yaml:"ignore_labels"`
	IgnoreMetadata   bool `json:"ignore_metadata" yaml:"ignore_metadata"`
	IgnoreDebugInfo  bool `json:"ignore_debug_info" yaml:"ignore_debug_info"`
	IgnoreComments   bool `json:"ignore_comments" yaml:"ignore_comments"`
}

// DefaultOptions matches the stock comparison profile: everything canonical
// except comments, which LLVM uses for block headers and are often meaningful.
func DefaultOptions() Options {
	return Options{
		IgnoreWhitespace: true,
		IgnoreEmptyLines: true,
		IgnoreTempVars:   true,
		IgnoreLabels:     true,
		IgnoreMetadata:   true,
		IgnoreDebugInfo:  true,
		IgnoreComments:   false,
	}
}

var (
	// Temporaries: %call, %temp.1, %add_3, %call.i and the like. The whole
	// dotted identifier is consumed so the replacement is a fixed point
	// under renormalization.
	tempVarRe = regexp.MustCompile(`%[a-zA-Z_][a-zA-Z0-9_.]*`)

	// Block label definitions: entry:, bb.3:, if.then.2:
	labelDefRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*\.?[0-9]*):`)

	// Bare identifier tokens, used for label back-reference rewriting.
	identTokenRe = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_.]*`)

	commentRe   = regexp.MustCompile(`;.*$`)
	debugInfoRe = regexp.MustCompile(`, !dbg ![0-9]+`)
	blankRunRe  = regexp.MustCompile(`\s+`)
)

// renamer assigns position-stable canonical names to tokens in first-seen
// order. One instance per category per block, threaded through the line fold.
type renamer struct {
	prefix string
	next   int
	names  map[string]string
}

func newRenamer(prefix string) *renamer {
	return &renamer{prefix: prefix, names: make(map[string]string)}
}

func (r *renamer) canonical(token string) string {
	if name, ok := r.names[token]; ok {
		return name
	}
	name := fmt.Sprintf("%s_%d", r.prefix, r.next)
	r.next++
	r.names[token] = name
	return name
}

// lookup returns the canonical name without assigning a new one.
func (r *renamer) lookup(token string) (string, bool) {
	name, ok := r.names[token]
	return name, ok
}

// Normalize applies the enabled rewrites to text, line by line in source
// order. It is a pure function: identical (text, opts) always yields
// identical output. Lines that become empty after the enabled rewrites are
// dropped.
func Normalize(text string, opts Options) string {
	lines := strings.Split(text, "\n")
	temps := newRenamer("%temp")
	labels := newRenamer("label")

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if opts.IgnoreEmptyLines && trimmed == "" {
			continue
		}
		if opts.IgnoreMetadata && strings.HasPrefix(trimmed, "!") {
			continue
		}
		if opts.IgnoreComments {
			line = commentRe.ReplaceAllString(line, "")
		}
		if opts.IgnoreDebugInfo {
			line = debugInfoRe.ReplaceAllString(line, "")
		}
		if opts.IgnoreLabels {
			line = rewriteLabels(line, labels)
		}
		if opts.IgnoreTempVars {
			line = tempVarRe.ReplaceAllStringFunc(line, temps.canonical)
		}
		if opts.IgnoreWhitespace {
			line = strings.TrimSpace(blankRunRe.ReplaceAllString(line, " "))
		}

		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// rewriteLabels renames a label definition on this line (if any) and rewrites
// every back-reference to an already-seen label. References use exact token
// boundaries: br and phi instructions name labels bare, so a single tokenizing
// pass over the line substitutes known labels without substring collisions.
func rewriteLabels(line string, labels *renamer) string {
	if m := labelDefRe.FindStringSubmatch(line); m != nil {
		line = labels.canonical(m[1]) + ":" + line[len(m[0]):]
	}

	return identTokenRe.ReplaceAllStringFunc(line, func(token string) string {
		if name, ok := labels.lookup(token); ok {
			return name
		}
		return token
	})
}
