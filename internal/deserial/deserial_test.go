package deserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Node {
	t.Helper()
	docs, err := New([]byte(src)).Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func TestEmptyInputIsNull(t *testing.T) {
	n := parse(t, "")
	assert.Equal(t, NullKind, n.Kind)
}

func TestScalarDocument(t *testing.T) {
	n := parse(t, "123")
	assert.Equal(t, IntegerKind, n.Kind)
	assert.EqualValues(t, 123, n.Int)
}

func TestBlockMapping(t *testing.T) {
	n := parse(t, "a: 1\nb: 2\n")
	require.Equal(t, MappingKind, n.Kind)
	require.Len(t, n.Map, 2)
	assert.Equal(t, "a", n.Map[0].Key.Str)
	assert.EqualValues(t, 1, n.Map[0].Value.Int)
	assert.Equal(t, "b", n.Map[1].Key.Str)
	assert.EqualValues(t, 2, n.Map[1].Value.Int)
}

func TestBlockSequenceOfMappings(t *testing.T) {
	n := parse(t, "- name: a\n  age: 1\n- name: b\n  age: 2\n")
	require.Equal(t, SequenceKind, n.Kind)
	require.Len(t, n.Seq, 2)
	first := n.Seq[0]
	require.Equal(t, MappingKind, first.Kind)
	require.Len(t, first.Map, 2)
	assert.Equal(t, "name", first.Map[0].Key.Str)
	assert.Equal(t, "a", first.Map[0].Value.Str)
}

func TestFlowCollections(t *testing.T) {
	n := parse(t, "{a: [1, 2, 3], b: c}")
	require.Equal(t, MappingKind, n.Kind)
	seq := n.Map[0].Value
	require.Equal(t, SequenceKind, seq.Kind)
	require.Len(t, seq.Seq, 3)
	assert.EqualValues(t, 2, seq.Seq[1].Int)
}

func TestAnchorAndAliasValueCopy(t *testing.T) {
	n := parse(t, "a: &x foo\nb: *x\n")
	val := n.Map[0].Value
	assert.Equal(t, "x", val.AnchorName)
	assert.Equal(t, AnchorDefinition, val.AnchorRole)

	alias := n.Map[1].Value
	assert.Equal(t, StringKind, alias.Kind)
	assert.Equal(t, "foo", alias.Str)
	assert.Equal(t, AnchorAlias, alias.AnchorRole)

	// value-copy semantics: the alias node is independent of the original.
	alias.Str = "mutated"
	assert.Equal(t, "foo", val.Str)
}

func TestUndefinedAliasIsAnError(t *testing.T) {
	_, err := New([]byte("a: *missing\n")).Documents()
	require.Error(t, err)
}

func TestAnchorRedefinitionOverwrites(t *testing.T) {
	n := parse(t, "a: &x foo\nb: &x bar\nc: *x\n")
	assert.Equal(t, "bar", n.Map[2].Value.Str)
}

func TestExplicitTagForcesString(t *testing.T) {
	n := parse(t, "v: !!str 123\n")
	v := n.Map[0].Value
	assert.Equal(t, StringKind, v.Kind)
	assert.Equal(t, "123", v.Str)
}

func TestMultiDocumentStream(t *testing.T) {
	docs, err := New([]byte("---\na: 1\n---\nb: 2\n")).Documents()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.EqualValues(t, 1, docs[0].Map[0].Value.Int)
	assert.EqualValues(t, 2, docs[1].Map[0].Value.Int)
}

func TestDirectivesSetVersion(t *testing.T) {
	n := parse(t, "%YAML 1.1\n---\nv: 1\n")
	assert.EqualValues(t, 1, n.Map[0].Value.VersionMajor)
	assert.EqualValues(t, 1, n.Map[0].Value.VersionMinor)
}

func TestBlockMappingThreeKeysInOrder(t *testing.T) {
	n := parse(t, "a: 1\nb: 2\nc: 3\n")
	require.Len(t, n.Map, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, n.Map[i].Key.Str)
	}
	for i, want := range []int64{1, 2, 3} {
		assert.EqualValues(t, want, n.Map[i].Value.Int)
	}
}

func TestBlockMappingDuplicateKeyIsAnError(t *testing.T) {
	_, err := New([]byte("a: 1\na: 2\n")).Documents()
	require.Error(t, err)
	de, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ParseErrKind, de.Kind)
	assert.Contains(t, de.Message, "duplication")
}

func TestFlowMappingDuplicateKeyIsAnError(t *testing.T) {
	_, err := New([]byte("{a: 1, a: 2}")).Documents()
	require.Error(t, err)
}

func TestFlowMappingSecondKeyIsNotReadAsNestedMapping(t *testing.T) {
	n := parse(t, "{a: 1, b: c}")
	require.Len(t, n.Map, 2)
	assert.Equal(t, "a", n.Map[0].Key.Str)
	assert.EqualValues(t, 1, n.Map[0].Value.Int)
	assert.Equal(t, "b", n.Map[1].Key.Str)
	assert.Equal(t, "c", n.Map[1].Value.Str)
}
