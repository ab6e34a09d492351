// Package report turns core analysis results into their output artifacts:
// the JSON summary report, the first-divergence unified diff, the mapping
// info document, the dual-column visualization, and the terminal summary.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"irdiverge/internal/align"
	"irdiverge/internal/diff"
	"irdiverge/internal/diverge"
	"irdiverge/internal/irdump"
)

const toolVersion = "1.0"

// Input is everything the generator needs from the core.
type Input struct {
	Legacy     []irdump.PassRecord
	NPM        []irdump.PassRecord
	Alignment  align.Result
	Divergence diverge.Result
}

// Report is the structured analysis summary, serialized to JSON.
type Report struct {
	AnalysisInfo   AnalysisInfo   `json:"analysis_info"`
	Summary        Summary        `json:"summary"`
	Divergence     Divergence     `json:"divergence_analysis"`
	MappingDetails MappingDetails `json:"mapping_details"`
	OutputFiles    OutputFiles    `json:"output_files"`
	Success        bool           `json:"success"`
}

type AnalysisInfo struct {
	Timestamp    string `json:"timestamp"`
	RunID        string `json:"run_id"`
	ToolVersion  string `json:"tool_version"`
	AnalysisType string `json:"analysis_type"`
}

type Summary struct {
	TotalLegacyPasses   int `json:"total_legacy_passes"`
	TotalNPMPasses      int `json:"total_npm_passes"`
	SuccessfullyMapped  int `json:"successfully_mapped"`
	SkippedLegacyPasses int `json:"skipped_legacy_passes"`
	UnusedNPMPasses     int `json:"unused_npm_passes"`
}

type PassRef struct {
	Index      int    `json:"index"`
	Legacy     string `json:"legacy_pass"`
	NPM        string `json:"npm_pass"`
	LegacyAt   int    `json:"legacy_position"`
	NPMAt      int    `json:"npm_position"`
	LegacyFile string `json:"legacy_file"`
	NPMFile    string `json:"npm_file"`
}

type Divergence struct {
	Found              bool     `json:"divergence_found"`
	Message            string   `json:"message,omitempty"`
	FirstDivergentPass *PassRef `json:"first_divergent_pass,omitempty"`
	LastCommonPass     *PassRef `json:"last_common_pass,omitempty"`
	ComparedBefore     int      `json:"passes_compared_before_divergence"`
	TotalCompared      int      `json:"total_compared_passes"`
}

type Mapping struct {
	PairIndex int    `json:"pair_index"`
	Legacy    string `json:"legacy_pass"`
	NPM       string `json:"npm_pass"`
}

type MappingDetails struct {
	SuccessfulMappings  []Mapping `json:"successful_mappings"`
	SkippedLegacyPasses []string  `json:"skipped_legacy_passes"`
	ExcludedPasses      []string  `json:"excluded_passes,omitempty"`
	DuplicateTargets    []string  `json:"duplicate_npm_targets,omitempty"`
	SuccessRate         float64   `json:"mapping_success_rate"`
}

type OutputFiles struct {
	JSONReport    string `json:"json_report"`
	DiffFile      string `json:"diff_file,omitempty"`
	MappingFile   string `json:"mapping_file"`
	Visualization string `json:"visualization_file"`
}

// Generator writes report artifacts through an afero filesystem.
type Generator struct {
	FS     afero.Fs
	Logger *zap.Logger
}

func NewGenerator(fs afero.Fs, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{FS: fs, Logger: logger}
}

// Generate builds the report and writes every output artifact under
// outputDir: analysis/divergence_report.json, analysis/pass_mapping_used.json,
// analysis/first_divergence_diff.txt (when divergent), and
// logs/pass_mapping_visualization.txt.
func (g *Generator) Generate(outputDir string, in Input) (*Report, error) {
	analysisDir := filepath.Join(outputDir, "analysis")
	logsDir := filepath.Join(outputDir, "logs")
	for _, dir := range []string{analysisDir, logsDir} {
		if err := g.FS.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	rep := g.build(in)

	rep.OutputFiles = OutputFiles{
		JSONReport:    filepath.Join(analysisDir, "divergence_report.json"),
		MappingFile:   filepath.Join(analysisDir, "pass_mapping_used.json"),
		Visualization: filepath.Join(logsDir, "pass_mapping_visualization.txt"),
	}

	if in.Divergence.Found {
		rep.OutputFiles.DiffFile = filepath.Join(analysisDir, "first_divergence_diff.txt")
		if err := g.writeDiffFile(rep.OutputFiles.DiffFile, in.Divergence); err != nil {
			return nil, err
		}
	}

	if err := g.writeJSON(rep.OutputFiles.JSONReport, rep); err != nil {
		return nil, err
	}
	if err := g.writeMappingInfo(rep.OutputFiles.MappingFile, in.Alignment); err != nil {
		return nil, err
	}
	if err := g.writeVisualization(rep.OutputFiles.Visualization, in); err != nil {
		return nil, err
	}

	g.Logger.Info("generated analysis report",
		zap.String("dir", outputDir),
		zap.Bool("divergence_found", in.Divergence.Found))
	return rep, nil
}

func (g *Generator) build(in Input) *Report {
	matched := len(in.Alignment.Pairs)
	skipped := len(in.Alignment.Unmatched)

	rep := &Report{
		AnalysisInfo: AnalysisInfo{
			Timestamp:    time.Now().Format(time.RFC3339),
			RunID:        uuid.NewString(),
			ToolVersion:  toolVersion,
			AnalysisType: "llvm_ir_divergence",
		},
		Summary: Summary{
			TotalLegacyPasses:   len(in.Legacy),
			TotalNPMPasses:      len(in.NPM),
			SuccessfullyMapped:  matched,
			SkippedLegacyPasses: skipped,
			UnusedNPMPasses:     len(in.NPM) - matched,
		},
		Divergence:     buildDivergence(in.Divergence, matched),
		MappingDetails: buildMappingDetails(in.Alignment),
		Success:        true,
	}
	return rep
}

func buildDivergence(res diverge.Result, totalCompared int) Divergence {
	if !res.Found {
		return Divergence{
			Found:         false,
			Message:       "No divergence found - all compared passes have identical IR",
			TotalCompared: totalCompared,
		}
	}

	d := Divergence{
		Found:              true,
		FirstDivergentPass: pairRef(res.Index, res.Pair),
		ComparedBefore:     res.Index,
		TotalCompared:      totalCompared,
	}
	if res.LastCommon != nil {
		d.LastCommonPass = pairRef(res.Index-1, *res.LastCommon)
	}
	return d
}

func pairRef(index int, p align.Pair) *PassRef {
	return &PassRef{
		Index:      index,
		Legacy:     p.A.Name,
		NPM:        p.B.Name,
		LegacyAt:   p.A.Index,
		NPMAt:      p.B.Index,
		LegacyFile: p.A.Path,
		NPMFile:    p.B.Path,
	}
}

func buildMappingDetails(res align.Result) MappingDetails {
	mappings := make([]Mapping, 0, len(res.Pairs))
	for i, p := range res.Pairs {
		mappings = append(mappings, Mapping{PairIndex: i, Legacy: p.A.Name, NPM: p.B.Name})
	}

	skipped := make([]string, 0, len(res.Unmatched))
	for _, rec := range res.Unmatched {
		skipped = append(skipped, rec.Name)
	}

	total := len(res.Pairs) + len(res.Unmatched)
	rate := 0.0
	if total > 0 {
		rate = float64(len(res.Pairs)) / float64(total)
	}

	return MappingDetails{
		SuccessfulMappings:  mappings,
		SkippedLegacyPasses: skipped,
		ExcludedPasses:      res.Excluded,
		DuplicateTargets:    res.DuplicateTargets,
		SuccessRate:         rate,
	}
}

func (g *Generator) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := afero.WriteFile(g.FS, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// mappingInfo is the standalone pass_mapping_used.json document.
type mappingInfo struct {
	SuccessfulMappings  map[string]string `json:"successful_mappings"`
	SkippedLegacyPasses []string          `json:"skipped_legacy_passes"`
	Statistics          struct {
		TotalMappings int     `json:"total_mappings"`
		SkippedPasses int     `json:"skipped_passes"`
		SuccessRate   float64 `json:"success_rate"`
	} `json:"statistics"`
}

func (g *Generator) writeMappingInfo(path string, res align.Result) error {
	info := mappingInfo{
		SuccessfulMappings:  make(map[string]string, len(res.Pairs)),
		SkippedLegacyPasses: make([]string, 0, len(res.Unmatched)),
	}
	for _, p := range res.Pairs {
		info.SuccessfulMappings[p.A.Name] = p.B.Name
	}
	for _, rec := range res.Unmatched {
		info.SkippedLegacyPasses = append(info.SkippedLegacyPasses, rec.Name)
	}

	total := len(res.Pairs) + len(res.Unmatched)
	info.Statistics.TotalMappings = len(res.Pairs)
	info.Statistics.SkippedPasses = len(res.Unmatched)
	if total > 0 {
		info.Statistics.SuccessRate = float64(len(res.Pairs)) / float64(total)
	}

	return g.writeJSON(path, info)
}

func (g *Generator) writeDiffFile(path string, res diverge.Result) error {
	d := diff.Compute(
		"legacy/"+res.Pair.A.Name,
		"npm/"+res.Pair.B.Name,
		res.NormalizedA,
		res.NormalizedB,
	)

	var content string
	content += "LLVM IR Divergence Diff\n"
	content += "======================\n\n"
	content += fmt.Sprintf("Legacy Pass: %s\n", res.Pair.A.Name)
	content += fmt.Sprintf("NPM Pass:    %s\n", res.Pair.B.Name)
	content += fmt.Sprintf("Generated:   %s\n\n", time.Now().Format(time.RFC3339))
	content += "Unified Diff:\n"
	content += "-------------\n"
	content += d.Unified()

	if err := afero.WriteFile(g.FS, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
