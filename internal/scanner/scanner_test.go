package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamlcore/yamlcore/internal/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	s := New([]byte(src))
	var out []token.Token
	for {
		tok, err := s.Next(0)
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == token.EndOfBuffer {
			return out
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestScansFlowMapping(t *testing.T) {
	toks := allTokens(t, "{a: 1, b: 2}")
	assert.Equal(t, []token.Kind{
		token.MappingFlowBegin,
		token.StringValue, token.KeySeparator, token.IntegerValue,
		token.ValueSeparator,
		token.StringValue, token.KeySeparator, token.IntegerValue,
		token.MappingFlowEnd,
		token.EndOfBuffer,
	}, kinds(toks))
}

func TestScansBlockSequence(t *testing.T) {
	toks := allTokens(t, "- a\n- b\n")
	assert.Equal(t, []token.Kind{
		token.SequenceBlockPrefix, token.StringValue,
		token.SequenceBlockPrefix, token.StringValue,
		token.EndOfBuffer,
	}, kinds(toks))
}

func TestScansAnchorAndTag(t *testing.T) {
	toks := allTokens(t, "&a !!str foo")
	assert.Equal(t, []token.Kind{
		token.AnchorPrefix, token.TagPrefix, token.StringValue, token.EndOfBuffer,
	}, kinds(toks))
	assert.Equal(t, "a", toks[0].Raw)
	assert.Equal(t, "!!", toks[1].TagHandle)
}

func TestScansDirectivesAndMarkers(t *testing.T) {
	toks := allTokens(t, "%YAML 1.2\n---\nfoo: bar\n...\n")
	assert.Equal(t, []token.Kind{
		token.YAMLVersionDirective, token.EndOfDirectives,
		token.StringValue, token.KeySeparator, token.StringValue,
		token.EndOfDocument, token.EndOfBuffer,
	}, kinds(toks))
	assert.Equal(t, 1, toks[0].VersionMajor)
	assert.Equal(t, 2, toks[0].VersionMinor)
}

func TestScansSingleQuotedWithEscapedQuote(t *testing.T) {
	toks := allTokens(t, "'it''s here'")
	require.Len(t, toks, 2)
	assert.Equal(t, "it's here", toks[0].Scalar.Str)
}

func TestScansDoubleQuotedWithEscapes(t *testing.T) {
	toks := allTokens(t, `"a\tb\nc"`)
	require.Len(t, toks, 2)
	assert.Equal(t, "a\tb\nc", toks[0].Scalar.Str)
}

func TestScansLiteralBlockScalarClip(t *testing.T) {
	toks := allTokens(t, "|\n  line one\n  line two\n")
	require.Len(t, toks, 2)
	assert.Equal(t, "line one\nline two\n", toks[0].Scalar.Str)
}

func TestScansFoldedBlockScalarStrip(t *testing.T) {
	toks := allTokens(t, ">-\n  folded\n  text\n")
	require.Len(t, toks, 2)
	assert.Equal(t, "folded text", toks[0].Scalar.Str)
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := allTokens(t, "a: 1 # trailing comment\n")
	assert.Equal(t, []token.Kind{
		token.StringValue, token.KeySeparator, token.IntegerValue, token.EndOfBuffer,
	}, kinds(toks))
}

func TestTabIndentationIsRejected(t *testing.T) {
	s := New([]byte("\tfoo: bar\n"))
	_, err := s.Next(0)
	require.Error(t, err)
}

func TestPlainScalarReclassifiesImplicitTypes(t *testing.T) {
	toks := allTokens(t, "42")
	require.Len(t, toks, 2)
	assert.Equal(t, token.IntegerValue, toks[0].Kind)
	assert.EqualValues(t, 42, toks[0].Scalar.Int)
}
