package yamlcore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInputIsNull(t *testing.T) {
	n, err := ParseBytes(nil)
	require.NoError(t, err)
	assert.True(t, n.IsNull())
}

func TestParseScalarDocument(t *testing.T) {
	n, err := ParseBytes([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, StringKind, n.Kind)
	assert.Equal(t, "hello", n.Str)
}

func TestParseMapping(t *testing.T) {
	n, err := Parse(strings.NewReader("foo: [1,2,3]\n"))
	require.NoError(t, err)
	require.Equal(t, MappingKind, n.Kind)
	seq := n.MapIndex("foo")
	require.NotNil(t, seq)
	require.Equal(t, SequenceKind, seq.Kind)
	require.Len(t, seq.Seq, 3)
	assert.EqualValues(t, 1, seq.Seq[0].Int)
}

func TestParseRejectsMultipleDocumentsWithoutParseAll(t *testing.T) {
	_, err := ParseBytes([]byte("---\na: 1\n---\nb: 2\n"))
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ParseErr, perr.Kind)
}

func TestParseAllMultipleDocuments(t *testing.T) {
	docs, err := ParseAllBytes([]byte("---\na: 1\n---\nb: 2\n"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.EqualValues(t, 1, docs[0].MapIndex("a").Int)
	assert.EqualValues(t, 2, docs[1].MapIndex("b").Int)
}

func TestParseInvalidEncodingSurfacesStructuredError(t *testing.T) {
	_, err := ParseBytes([]byte{0xC0, 0x80})
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidEncoding, perr.Kind)
}

func TestParseAnchorsAndAliases(t *testing.T) {
	n, err := ParseBytes([]byte("base: &b\n  x: 1\nuse: *b\n"))
	require.NoError(t, err)
	base := n.MapIndex("base")
	use := n.MapIndex("use")
	require.Equal(t, MappingKind, base.Kind)
	require.Equal(t, MappingKind, use.Kind)
	assert.EqualValues(t, 1, use.MapIndex("x").Int)
}

func TestParseUnitsUTF16(t *testing.T) {
	units := []byte{'v', 0, ':', 0, ' ', 0, '1', 0}
	n, err := ParseUnits(units, Width2, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n.MapIndex("v").Int)
}

func TestParseBlockScalarLiteral(t *testing.T) {
	n, err := ParseBytes([]byte("text: |\n  line one\n  line two\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", n.MapIndex("text").Str)
}
