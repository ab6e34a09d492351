// Package analyzer orchestrates a divergence run: it extracts both pipeline
// dumps, aligns their passes through the name mapping, scans for the first
// divergence, and hands the results to the report generator.
package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"irdiverge/internal/align"
	"irdiverge/internal/config"
	"irdiverge/internal/diverge"
	"irdiverge/internal/irdump"
	"irdiverge/internal/report"
)

// Analyzer runs one complete analysis. All collaborators are injected; there
// is no process-wide mutable state.
type Analyzer struct {
	LegacyPath  string
	NPMPath     string
	MappingPath string
	OutputDir   string

	Config config.Config
	FS     afero.Fs
	Logger *zap.Logger
}

func New(legacy, npm, mapping, outputDir string, cfg config.Config, fs afero.Fs, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		LegacyPath:  legacy,
		NPMPath:     npm,
		MappingPath: mapping,
		OutputDir:   outputDir,
		Config:      cfg,
		FS:          fs,
		Logger:      logger,
	}
}

// Run executes the full pipeline. Fatal error classes are surfaced as wrapped
// sentinels (config.ErrMissingInput, config.ErrMalformedMapping,
// irdump.ErrStorage); unmapped and ambiguous-mapping conditions are logged
// and aggregated into the report instead.
func (a *Analyzer) Run(ctx context.Context) (*report.Report, error) {
	legacyText, err := a.readInput(a.LegacyPath, "legacy dump")
	if err != nil {
		return nil, err
	}
	npmText, err := a.readInput(a.NPMPath, "npm dump")
	if err != nil {
		return nil, err
	}

	// The mapping must parse before any scanning starts.
	mapping, err := config.LoadMapping(a.FS, a.MappingPath)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("loaded pass mapping", zap.Int("entries", len(mapping)))

	legacyRecs, npmRecs, err := a.extractBoth(ctx, legacyText, npmText)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("extracted pipelines",
		zap.Int("legacy_passes", len(legacyRecs)),
		zap.Int("npm_passes", len(npmRecs)))

	alignment := align.Align(legacyRecs, npmRecs, mapping,
		config.ExclusionSet(a.Config.ExcludedLegacy),
		config.ExclusionSet(a.Config.ExcludedNPM))
	a.logAlignment(alignment)

	divergence, err := diverge.FindFirst(alignment.Pairs, a.Config.Normalize, irdump.FsLoader{Fs: a.FS})
	if err != nil {
		return nil, err
	}
	if divergence.Found {
		a.Logger.Info("divergence found",
			zap.Int("pair_index", divergence.Index),
			zap.String("legacy_pass", divergence.Pair.A.Name),
			zap.String("npm_pass", divergence.Pair.B.Name))
	} else {
		a.Logger.Info("no divergence found",
			zap.Int("compared_pairs", len(alignment.Pairs)))
	}

	gen := report.NewGenerator(a.FS, a.Logger)
	return gen.Generate(a.OutputDir, report.Input{
		Legacy:     legacyRecs,
		NPM:        npmRecs,
		Alignment:  alignment,
		Divergence: divergence,
	})
}

func (a *Analyzer) readInput(path, kind string) (string, error) {
	data, err := afero.ReadFile(a.FS, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v", config.ErrMissingInput, kind, path, err)
	}
	return string(data), nil
}

// extractBoth scans and extracts the two pipelines concurrently. Each side is
// read-only over its own input, so the only coordination needed is waiting
// for both to finish.
func (a *Analyzer) extractBoth(ctx context.Context, legacyText, npmText string) ([]irdump.PassRecord, []irdump.PassRecord, error) {
	var legacyRecs, npmRecs []irdump.PassRecord

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacyRecs, err = a.extractPipeline(legacyText, filepath.Join(a.OutputDir, "extracted", "legacy"))
		return err
	})
	g.Go(func() error {
		var err error
		npmRecs, err = a.extractPipeline(npmText, filepath.Join(a.OutputDir, "extracted", "npm"))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return legacyRecs, npmRecs, nil
}

func (a *Analyzer) extractPipeline(text, dir string) ([]irdump.PassRecord, error) {
	headers, err := irdump.ScanHeaders(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	store, err := irdump.NewDirStore(a.FS, dir)
	if err != nil {
		return nil, err
	}
	return irdump.Extract(text, headers, store)
}

func (a *Analyzer) logAlignment(res align.Result) {
	for _, target := range res.DuplicateTargets {
		a.Logger.Warn("duplicate mapping target", zap.String("npm_pass", target))
	}
	for _, rec := range res.Unmatched {
		a.Logger.Warn("unmatched legacy pass",
			zap.String("pass", rec.Name),
			zap.Int("index", rec.Index))
	}
	a.Logger.Info("alignment complete",
		zap.Int("pairs", len(res.Pairs)),
		zap.Int("unmatched", len(res.Unmatched)),
		zap.Int("excluded", len(res.Excluded)))
}

// Clean removes a previous run's output subtrees.
func Clean(fs afero.Fs, outputDir string) error {
	for _, sub := range []string{"extracted", "analysis", "logs"} {
		if err := fs.RemoveAll(filepath.Join(outputDir, sub)); err != nil {
			return fmt.Errorf("cleaning %s: %w", sub, err)
		}
	}
	return nil
}
