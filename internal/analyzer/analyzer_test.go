package analyzer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"irdiverge/internal/config"
	"irdiverge/internal/irdump"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const legacyDump = `*** IR Dump After Combine redundant instructions (instcombine) ***
define i32 @main() {
entry:
  %a = add i32 1, 2
  ret i32 %a
}
*** IR Dump After Early CSE (early-cse) ***
define i32 @main() {
entry:
  %a = add i32 1, 2
  ret i32 %a
}
`

const npmDump = `; *** IR Dump After InstCombinePass on main ***
define i32 @main() {
start:
  %b = add i32 1, 2
  ret i32 %b
}
; *** IR Dump After SimplifyCFGPass on main ***
define i32 @main() {
start:
  ret i32 3
}
; *** IR Dump After EarlyCSEPass on main ***
define i32 @main() {
start:
  %b = add i32 9, 9
  ret i32 %b
}
`

const mappingDoc = `{
  "instcombine": "InstCombinePass",
  "early-cse": "EarlyCSEPass"
}`

func writeInputs(t *testing.T, fs afero.Fs) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "legacy.txt", []byte(legacyDump), 0o644))
	require.NoError(t, afero.WriteFile(fs, "npm.txt", []byte(npmDump), 0o644))
	require.NoError(t, afero.WriteFile(fs, "mapping.json", []byte(mappingDoc), 0o644))
}

func newAnalyzer(fs afero.Fs) *Analyzer {
	return New("legacy.txt", "npm.txt", "mapping.json", "out", config.Default(), fs, zap.NewNop())
}

func TestRun_FindsFirstDivergence(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)

	rep, err := newAnalyzer(fs).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Summary.TotalLegacyPasses)
	assert.Equal(t, 3, rep.Summary.TotalNPMPasses)
	assert.Equal(t, 2, rep.Summary.SuccessfullyMapped)

	// Pair 0 (instcombine vs InstCombinePass) matches after normalization;
	// pair 1 (early-cse vs EarlyCSEPass) differs in constants.
	require.True(t, rep.Divergence.Found)
	assert.Equal(t, 1, rep.Divergence.FirstDivergentPass.Index)
	assert.Equal(t, "early-cse", rep.Divergence.FirstDivergentPass.Legacy)
	assert.Equal(t, "EarlyCSEPass", rep.Divergence.FirstDivergentPass.NPM)
	assert.Equal(t, 2, rep.Divergence.FirstDivergentPass.NPMAt)
	require.NotNil(t, rep.Divergence.LastCommonPass)
	assert.Equal(t, "instcombine", rep.Divergence.LastCommonPass.Legacy)
}

func TestRun_NoDivergence(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)
	// Map only the structurally identical first pair.
	require.NoError(t, afero.WriteFile(fs, "mapping.json",
		[]byte(`{"instcombine": "InstCombinePass"}`), 0o644))

	rep, err := newAnalyzer(fs).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, rep.Divergence.Found)
	assert.Equal(t, 1, rep.Summary.SuccessfullyMapped)
	assert.Equal(t, 1, rep.Summary.SkippedLegacyPasses)
}

func TestRun_WritesExtractedArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)

	_, err := newAnalyzer(fs).Run(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		filepath.Join("out", "extracted", "legacy", "000_instcombine.ll"),
		filepath.Join("out", "extracted", "legacy", "001_early-cse.ll"),
		filepath.Join("out", "extracted", "npm", "000_InstCombinePass_main.ll"),
		filepath.Join("out", "extracted", "npm", "002_EarlyCSEPass_main.ll"),
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, "missing %s", path)
	}

	content, err := afero.ReadFile(fs, filepath.Join("out", "extracted", "legacy", "000_instcombine.ll"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "define i32 @main()"))
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)
	require.NoError(t, fs.Remove("npm.txt"))

	_, err := newAnalyzer(fs).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingInput)
}

func TestRun_MalformedMappingIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)
	require.NoError(t, afero.WriteFile(fs, "mapping.json", []byte("not json"), 0o644))

	a := newAnalyzer(fs)
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMalformedMapping)

	// Fatal before any scanning: no extraction output may exist.
	exists, statErr := afero.DirExists(fs, filepath.Join("out", "extracted"))
	require.NoError(t, statErr)
	assert.False(t, exists)
}

func TestRun_ExclusionsSkipAlignment(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)

	cfg := config.Default()
	cfg.ExcludedLegacy = []string{"early-cse"}
	a := New("legacy.txt", "npm.txt", "mapping.json", "out", cfg, fs, zap.NewNop())

	rep, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Summary.SuccessfullyMapped)
	assert.False(t, rep.Divergence.Found)
	assert.Contains(t, rep.MappingDetails.ExcludedPasses, "early-cse")
}

func TestRun_StorageFaultIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)

	a := newAnalyzer(fs)
	a.FS = readOnlyInputs{fs}

	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, irdump.ErrStorage)
}

func TestClean(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeInputs(t, fs)

	_, err := newAnalyzer(fs).Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, Clean(fs, "out"))
	for _, sub := range []string{"extracted", "analysis", "logs"} {
		exists, err := afero.DirExists(fs, filepath.Join("out", sub))
		require.NoError(t, err)
		assert.False(t, exists, "%s should be removed", sub)
	}
}

// readOnlyInputs lets reads through but rejects artifact writes.
type readOnlyInputs struct {
	afero.Fs
}

func (r readOnlyInputs) Create(name string) (afero.File, error) {
	return nil, afero.ErrFileClosed
}
