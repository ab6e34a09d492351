package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"irdiverge/internal/analyzer"
	"irdiverge/internal/config"
	"irdiverge/internal/report"
)

var (
	// Input flags
	legacyFile  string
	npmFile     string
	mappingFile string
	configFile  string

	// Output flags
	outputDir   string
	archiveName string
	noCleanup   bool

	// Normalization overrides
	noIgnoreTempVars bool
	noIgnoreLabels   bool
	noIgnoreMetadata bool
	ignoreComments   bool

	verbose bool
	quiet   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "irdiverge",
	Short: "LLVM IR divergence analyzer - find where Legacy and NPM pipelines diverge",
	Long: `irdiverge compares two LLVM IR pipeline dumps (legacy pass manager vs new
pass manager), aligns their passes chronologically through a name mapping,
and reports the first pass pair whose normalized IR differs.

Outputs a JSON report, a unified diff of the first divergent pair, the
mapping actually used, and a dual-column pipeline visualization.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if quiet {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAnalysis,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove previous analysis output and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		if err := analyzer.Clean(fs, outputDir); err != nil {
			return err
		}
		if !quiet {
			fmt.Println("Cleanup completed")
		}
		return nil
	},
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()

	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	dir := outputDir
	if archiveName != "" {
		stamp := time.Now().Format("20060102_150405")
		dir = filepath.Join("output", "archive", fmt.Sprintf("%s_%s", archiveName, stamp))
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if !noCleanup && archiveName == "" {
		if err := analyzer.Clean(fs, dir); err != nil {
			return err
		}
	}

	if !cfg.Quiet {
		fmt.Println("LLVM IR Divergence Analyzer")
		fmt.Println("==================================================")
		fmt.Printf("Legacy dump:  %s\n", legacyFile)
		fmt.Printf("NPM dump:     %s\n", npmFile)
		fmt.Printf("Pass mapping: %s\n", mappingFile)
		fmt.Printf("Output dir:   %s\n\n", dir)
	}

	a := analyzer.New(legacyFile, npmFile, mappingFile, dir, cfg, fs, logger)
	rep, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		report.PrintSummary(os.Stdout, rep)
	}
	return nil
}

// loadConfig merges the config file (when given) with the CLI overrides.
func loadConfig(fs afero.Fs) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(fs, configFile)
		if err != nil {
			return cfg, err
		}
	}

	if noIgnoreTempVars {
		cfg.Normalize.IgnoreTempVars = false
	}
	if noIgnoreLabels {
		cfg.Normalize.IgnoreLabels = false
	}
	if noIgnoreMetadata {
		cfg.Normalize.IgnoreMetadata = false
	}
	if ignoreComments {
		cfg.Normalize.IgnoreComments = true
	}
	cfg.Quiet = quiet
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&outputDir, "output-dir", filepath.Join("output", "current"), "Output directory for analysis results")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Minimal output (errors only)")

	f := rootCmd.Flags()
	f.StringVar(&legacyFile, "legacy", filepath.Join("data", "legacy.full.txt"), "Legacy pass manager dump file")
	f.StringVar(&npmFile, "npm", filepath.Join("data", "npm.full.txt"), "New pass manager dump file")
	f.StringVar(&mappingFile, "mapping", filepath.Join("data", "legacy-to-npm-pass-mapping.json"), "Legacy-to-NPM pass mapping JSON file")
	f.StringVar(&configFile, "config", "", "Config file (JSON or YAML) with normalization and exclusion settings")
	f.StringVar(&archiveName, "archive", "", "Archive results under output/archive/<name>_<timestamp>")
	f.BoolVar(&noCleanup, "no-cleanup", false, "Keep previous results in the output directory")
	f.BoolVar(&noIgnoreTempVars, "no-ignore-temp-vars", false, "Don't normalize temporary variable names")
	f.BoolVar(&noIgnoreLabels, "no-ignore-labels", false, "Don't normalize basic block label names")
	f.BoolVar(&noIgnoreMetadata, "no-ignore-metadata", false, "Don't drop metadata lines (starting with !)")
	f.BoolVar(&ignoreComments, "ignore-comments", false, "Strip comments (starting with ;)")

	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
