package yamlcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cover the reader's core scenarios and documented boundary
// behaviors.

func TestSeedFlowSequenceOfIntegers(t *testing.T) {
	n, err := ParseBytes([]byte("foo: [1, 2, 3]"))
	require.NoError(t, err)
	require.Equal(t, MappingKind, n.Kind)
	seq := n.MapIndex("foo")
	require.Equal(t, SequenceKind, seq.Kind)
	require.Len(t, seq.Seq, 3)
	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, seq.Seq[i].Int)
	}
}

func TestSeedAnchorRedefinitionInSequence(t *testing.T) {
	n, err := ParseBytes([]byte("- &a 10\n- *a\n- &a 20\n- *a\n"))
	require.NoError(t, err)
	require.Equal(t, SequenceKind, n.Kind)
	require.Len(t, n.Seq, 4)
	want := []int64{10, 10, 20, 20}
	for i, w := range want {
		assert.Equal(t, w, n.Seq[i].Int)
	}
}

func TestSeedLiteralBlockScalar(t *testing.T) {
	n, err := ParseBytes([]byte("key: |\n  line1\n  line2\n"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", n.MapIndex("key").Str)
}

func TestSeedFoldedBlockScalarWithBlankLine(t *testing.T) {
	n, err := ParseBytes([]byte("key: >\n  a\n  b\n\n  c\n"))
	require.NoError(t, err)
	assert.Equal(t, "a b\nc\n", n.MapIndex("key").Str)
}

func TestSeedFlowMixedCollections(t *testing.T) {
	n, err := ParseBytes([]byte("{a: [1, {b: 2}], c: ~}"))
	require.NoError(t, err)
	a := n.MapIndex("a")
	require.Equal(t, SequenceKind, a.Kind)
	require.Len(t, a.Seq, 2)
	assert.EqualValues(t, 1, a.Seq[0].Int)
	require.Equal(t, MappingKind, a.Seq[1].Kind)
	assert.EqualValues(t, 2, a.Seq[1].MapIndex("b").Int)
	assert.True(t, n.MapIndex("c").IsNull())
}

func TestSeedMultiDocumentStream(t *testing.T) {
	docs, err := ParseAllBytes([]byte("---\nfoo: 1\n...\n---\nbar: 2\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.EqualValues(t, 1, docs[0].MapIndex("foo").Int)
	assert.EqualValues(t, 2, docs[1].MapIndex("bar").Int)
}

func TestBoundaryEmptyInputIsNull(t *testing.T) {
	n, err := ParseBytes([]byte(""))
	require.NoError(t, err)
	assert.True(t, n.IsNull())
}

func TestBoundaryBlockScalarStripAllWhitespaceIsEmptyString(t *testing.T) {
	n, err := ParseBytes([]byte("foo: |-\n   \n"))
	require.NoError(t, err)
	assert.Equal(t, "", n.MapIndex("foo").Str)
}

func TestBoundaryForwardAliasRejected(t *testing.T) {
	_, err := ParseBytes([]byte("a: *x\nx: &x 1\n"))
	require.Error(t, err)
}

func TestBoundaryTabIndentationRejected(t *testing.T) {
	_, err := ParseBytes([]byte("foo:\n\tbar: 1\n"))
	require.Error(t, err)
}

func TestBoundaryUnsupportedYAMLVersionRejected(t *testing.T) {
	_, err := ParseBytes([]byte("%YAML 1.3\n---\nfoo: 1\n"))
	require.Error(t, err)
}

func TestBoundaryDuplicateMappingKeyRejected(t *testing.T) {
	_, err := ParseBytes([]byte("foo: 1\nfoo: 2\n"))
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ParseErr, perr.Kind)
}

func TestBoundaryEmptyDocumentBetweenMarkersIsNull(t *testing.T) {
	docs, err := ParseAllBytes([]byte("---\n---\nfoo: 1\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[0].IsNull())
	assert.EqualValues(t, 1, docs[1].MapIndex("foo").Int)
}
