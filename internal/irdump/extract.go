package irdump

import (
	"fmt"
	"regexp"
	"strings"
)

// PassRecord is one extracted pass dump. Immutable once created.
type PassRecord struct {
	Name   string // canonical pass name from the header
	Index  int    // 0-based position in the pipeline
	Scope  Scope
	Target string
	Path   string // artifact path returned by the store
}

// Extract slices text into per-header content blocks and writes each block
// through store. The block for header i spans the lines strictly after the
// header's line up to (exclusive) header i+1's line, or end of input for the
// last header. Trailing whitespace is stripped from every stored line.
//
// A store failure aborts extraction; the returned error wraps ErrStorage.
func Extract(text string, headers []Header, store ArtifactStore) ([]PassRecord, error) {
	lines := strings.Split(text, "\n")
	// A trailing newline yields a phantom empty element; it is not a content line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	records := make([]PassRecord, 0, len(headers))
	for i, h := range headers {
		start := h.LineNumber // first content line, 0-based == LineNumber since headers are 1-based
		end := len(lines)
		if i+1 < len(headers) {
			end = headers[i+1].LineNumber - 1
		}

		content := contentBlock(lines, start, end)
		name := artifactName(i, h)

		path, err := store.Write(name, []byte(content))
		if err != nil {
			return nil, fmt.Errorf("extracting pass %d (%s): %w", i, h.Name, err)
		}

		records = append(records, PassRecord{
			Name:   h.Name,
			Index:  i,
			Scope:  h.Scope,
			Target: h.Target,
			Path:   path,
		})
	}
	return records, nil
}

func contentBlock(lines []string, start, end int) string {
	if start >= len(lines) || start >= end {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for _, line := range lines[start:end] {
		b.WriteString(strings.TrimRight(line, " \t\r"))
		b.WriteByte('\n')
	}
	return b.String()
}

// artifactName builds a filesystem-safe name for a pass dump:
// 001_PassName.ll, or 001_PassName_target.ll for function-scoped dumps.
func artifactName(index int, h Header) string {
	name := sanitizeName(h.Name)
	if h.Scope == ScopeFunction && h.Target != "" {
		return fmt.Sprintf("%03d_%s_%s.ll", index, name, sanitizeName(h.Target))
	}
	return fmt.Sprintf("%03d_%s.ll", index, name)
}

var (
	hostileCharsRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	bracketRe      = regexp.MustCompile(`[,()\[\]]`)
	underscoresRe  = regexp.MustCompile(`_+`)
)

const maxArtifactNameLen = 100

func sanitizeName(name string) string {
	clean := hostileCharsRe.ReplaceAllString(name, "_")
	clean = whitespaceRe.ReplaceAllString(clean, "_")
	clean = bracketRe.ReplaceAllString(clean, "_")
	clean = underscoresRe.ReplaceAllString(clean, "_")
	clean = strings.Trim(clean, "_")
	if runes := []rune(clean); len(runes) > maxArtifactNameLen {
		clean = string(runes[:maxArtifactNameLen])
	}
	return clean
}
