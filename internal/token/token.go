// Package token defines the lexical vocabulary shared by the scanner and the
// deserializer: token types, source positions, and the small value types
// (version/tag directives) that ride along on directive tokens.
//
// The vocabulary is trimmed to what a reader needs: this module never emits
// YAML, so no emitter-only styles or directive echoes are carried here.
package token

import "fmt"

// Position is a zero-based (line, column) pair within the normalized input
// buffer, plus the byte offset it corresponds to.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Kind enumerates the tokens the scanner can produce.
type Kind int

const (
	NoToken Kind = iota
	EndOfBuffer

	YAMLVersionDirective
	TagDirective
	InvalidDirective

	EndOfDirectives // ---
	EndOfDocument   // ...

	SequenceBlockPrefix // "- "
	SequenceFlowBegin   // [
	SequenceFlowEnd     // ]
	MappingFlowBegin    // {
	MappingFlowEnd      // }

	KeySeparator    // :
	ValueSeparator  // ,
	ExplicitKeyPrefix // "? "

	AnchorPrefix // &name
	AliasPrefix  // *name
	TagPrefix    // !tag

	NullValue
	BooleanValue
	IntegerValue
	FloatValue
	StringValue
)

func (k Kind) String() string {
	switch k {
	case NoToken:
		return "NoToken"
	case EndOfBuffer:
		return "EndOfBuffer"
	case YAMLVersionDirective:
		return "YAMLVersionDirective"
	case TagDirective:
		return "TagDirective"
	case InvalidDirective:
		return "InvalidDirective"
	case EndOfDirectives:
		return "EndOfDirectives"
	case EndOfDocument:
		return "EndOfDocument"
	case SequenceBlockPrefix:
		return "SequenceBlockPrefix"
	case SequenceFlowBegin:
		return "SequenceFlowBegin"
	case SequenceFlowEnd:
		return "SequenceFlowEnd"
	case MappingFlowBegin:
		return "MappingFlowBegin"
	case MappingFlowEnd:
		return "MappingFlowEnd"
	case KeySeparator:
		return "KeySeparator"
	case ValueSeparator:
		return "ValueSeparator"
	case ExplicitKeyPrefix:
		return "ExplicitKeyPrefix"
	case AnchorPrefix:
		return "AnchorPrefix"
	case AliasPrefix:
		return "AliasPrefix"
	case TagPrefix:
		return "TagPrefix"
	case NullValue:
		return "NullValue"
	case BooleanValue:
		return "BooleanValue"
	case IntegerValue:
		return "IntegerValue"
	case FloatValue:
		return "FloatValue"
	case StringValue:
		return "StringValue"
	}
	return "<unknown token>"
}

// ScalarDecoded carries the side-effect decoding the scanner performs for
// typed scalar tokens.
type ScalarDecoded struct {
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Token is one lexical unit returned by Scanner.Next.
type Token struct {
	Kind Kind

	Begin Position
	End   Position

	// Raw is the anchor/alias name, the tag text (before handle expansion),
	// the name of an unrecognized directive, or a scalar's decoded text.
	// %YAML and %TAG operands travel in the fields below instead.
	Raw string

	// TagHandle/TagSuffix split a TAG_PREFIX token's raw text into the
	// handle portion ("!", "!!", "!named!") and the suffix/URI.
	TagHandle string
	TagSuffix string
	TagVerbatim bool // !<uri> form

	// VersionMajor/VersionMinor carry %YAML operands.
	VersionMajor int
	VersionMinor int

	// DirectiveHandle/DirectivePrefix carry %TAG operands.
	DirectiveHandle string
	DirectivePrefix string

	Scalar ScalarDecoded
}
