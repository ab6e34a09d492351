package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_TempVars(t *testing.T) {
	opts := Options{IgnoreTempVars: true}
	input := "%call = call i32 @f()\n%add = add i32 %call, 1"

	got := Normalize(input, opts)
	assert.Equal(t, "%temp_0 = call i32 @f()\n%temp_1 = add i32 %temp_0, 1", got)
}

func TestNormalize_TempVarsDottedSuffix(t *testing.T) {
	opts := Options{IgnoreTempVars: true}
	input := "%call.i = call i32 @f()\n%call.i2 = add i32 %call.i, 1"

	got := Normalize(input, opts)
	assert.Equal(t, "%temp_0 = call i32 @f()\n%temp_1 = add i32 %temp_0, 1", got)
	assert.Equal(t, got, Normalize(got, opts))
}

func TestNormalize_Labels(t *testing.T) {
	opts := Options{IgnoreLabels: true}
	input := strings.Join([]string{
		"entry:",
		"  br label %loop1",
		"loop1:",
		"  br i1 true, label %loop1, label %exit2",
		"exit2:",
		"  ret void",
	}, "\n")

	got := Normalize(input, opts)
	lines := strings.Split(got, "\n")

	assert.Equal(t, "label_0:", lines[0])
	assert.Equal(t, "label_1:", lines[2])
	assert.Equal(t, "label_2:", lines[4])

	// References to already-seen labels are rewritten at token boundaries.
	// References resolve as labels are seen, so the forward reference on the
	// second line keeps its original spelling.
	assert.Equal(t, "  br label %loop1", lines[1])
	assert.Equal(t, "  br i1 true, label %label_1, label %exit2", lines[3])
}

func TestNormalize_MetadataAndDebugInfo(t *testing.T) {
	opts := Options{IgnoreMetadata: true, IgnoreDebugInfo: true}
	input := strings.Join([]string{
		"!0 = !{i32 1}",
		"  %x = load i32, i32* %p, !dbg !42",
		"!llvm.module.flags = !{!0}",
	}, "\n")

	got := Normalize(input, opts)
	assert.Equal(t, "  %x = load i32, i32* %p", got)
}

func TestNormalize_Comments(t *testing.T) {
	opts := Options{IgnoreComments: true}
	input := "; whole line comment\n  ret void ; trailing note"

	got := Normalize(input, opts)
	assert.Equal(t, "  ret void ", got)
}

func TestNormalize_Whitespace(t *testing.T) {
	opts := Options{IgnoreWhitespace: true}
	got := Normalize("   ret    void  ", opts)
	assert.Equal(t, "ret void", got)
}

func TestNormalize_EmptyLines(t *testing.T) {
	opts := Options{IgnoreEmptyLines: true}
	got := Normalize("a\n\n  \nb", opts)
	assert.Equal(t, "a\nb", got)
}

func TestNormalize_LineEmptyAfterTransformsIsDropped(t *testing.T) {
	opts := Options{IgnoreComments: true}
	got := Normalize("ret void\n; only a comment\ndone", opts)
	assert.Equal(t, "ret void\ndone", got)
}

func TestNormalize_Idempotent(t *testing.T) {
	input := strings.Join([]string{
		"define i32 @main() {",
		"entry:",
		"  %call.i = call i32 @f(), !dbg !7",
		"  br i1 true, label %good, label %entry",
		"good:",
		"  ret i32 %call.i",
		"}",
		"!7 = !{}",
	}, "\n")

	for _, opts := range []Options{DefaultOptions(), {}, {IgnoreLabels: true, IgnoreTempVars: true}} {
		once := Normalize(input, opts)
		twice := Normalize(once, opts)
		assert.Equal(t, once, twice)
	}
}

// Two structurally identical bodies with different naming schemes must
// normalize to byte-identical text.
func TestNormalize_RenamingInvariant(t *testing.T) {
	left := strings.Join([]string{
		"entry:",
		"  %a = add i32 1, 2",
		"  %b = mul i32 %a, 3",
		"  br label %entry",
	}, "\n")
	right := strings.Join([]string{
		"start:",
		"  %x.1 = add i32 1, 2",
		"  %y.2 = mul i32 %x.1, 3",
		"  br label %start",
	}, "\n")

	opts := DefaultOptions()
	assert.Equal(t, Normalize(left, opts), Normalize(right, opts))
}

func TestNormalize_StructurallyDifferentStaysDifferent(t *testing.T) {
	opts := DefaultOptions()
	left := "entry:\n  %a = add i32 1, 2"
	right := "entry:\n  %a = add i32 1, 3"
	assert.NotEqual(t, Normalize(left, opts), Normalize(right, opts))
}

func TestNormalize_Deterministic(t *testing.T) {
	input := "entry:\n  %v = add i32 1, 2\n  br label %entry"
	opts := DefaultOptions()

	first := Normalize(input, opts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Normalize(input, opts))
	}
}

func TestNormalize_NoOptionsKeepsText(t *testing.T) {
	input := "entry:\n  %a = add i32 1, 2"
	assert.Equal(t, input, Normalize(input, Options{}))
}
