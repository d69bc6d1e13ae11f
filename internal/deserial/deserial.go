// Package deserial drives the scanner's token stream and builds a
// yamlcore.Node tree directly, without an intermediate event representation.
//
// A SAX-style event stream with a separate event-to-node conversion layer
// makes sense for a parser reusable by callers who only want the events.
// Since this project only ever wants a single in-memory tree, and has no
// streaming output to support, the two layers collapse into one
// recursive-descent walk grounded in the usual production rules: block
// sequence/mapping entry, flow collection, indentation roll/unroll, and
// anchor/tag/alias attachment.
package deserial

import (
	"fmt"

	"github.com/yamlcore/yamlcore/internal/directives"
	"github.com/yamlcore/yamlcore/internal/resolve"
	"github.com/yamlcore/yamlcore/internal/scanner"
	"github.com/yamlcore/yamlcore/internal/token"
)

// Node is deserial's view of the tree it builds. It mirrors the public
// yamlcore.Node field-for-field; the root package re-exports it as Node so
// callers never see this package. Keeping the type here (rather than
// importing yamlcore, which would be circular) lets deserial stay a leaf
// package.
type Node struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string
	Seq   []*Node
	Map   []Entry

	AnchorName string
	AnchorRole AnchorRole

	TagName string

	VersionMajor, VersionMinor int8
}

type Kind int

const (
	NullKind Kind = iota
	BooleanKind
	IntegerKind
	FloatKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "NullKind"
	case BooleanKind:
		return "BooleanKind"
	case IntegerKind:
		return "IntegerKind"
	case FloatKind:
		return "FloatKind"
	case StringKind:
		return "StringKind"
	case SequenceKind:
		return "SequenceKind"
	case MappingKind:
		return "MappingKind"
	}
	return "UnknownKind"
}

type AnchorRole int

const (
	AnchorNone AnchorRole = iota
	AnchorDefinition
	AnchorAlias
)

type Entry struct {
	Key, Value *Node
}

// Error is a deserializer-level parse failure, distinguished from a bare
// scanner.Error by carrying a document index and an ErrorKind so the root
// package can translate it into a *yamlcore.Error without re-deriving kind
// from message text.
type ErrorKind int

const (
	ParseErrKind ErrorKind = iota
	TypeErrKind
	OutOfRangeKind
)

type Error struct {
	Kind     ErrorKind
	Message  string
	Line     int
	Column   int
	Document int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d, column %d, document %d)", e.Message, e.Line, e.Column, e.Document)
}

func (d *Deserializer) errAt(kind ErrorKind, pos token.Position, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: pos.Line, Column: pos.Column, Document: d.docIndex}
}

func (d *Deserializer) wrap(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*scanner.Error); ok {
		return &Error{Kind: ParseErrKind, Message: se.Message, Line: se.Pos.Line, Column: se.Pos.Column, Document: d.docIndex}
	}
	return err
}

// Deserializer walks one multi-document stream.
type Deserializer struct {
	sc *scanner.Scanner

	hasPeek    bool
	peekTok    token.Token
	peekErr    error
	peekIndent int

	dirs     *directives.Set
	anchors  map[string]*Node
	docIndex int
}

// New constructs a Deserializer over a fully-materialized, already
// normalized buffer.
func New(buf []byte) *Deserializer {
	return &Deserializer{sc: scanner.New(buf), docIndex: -1}
}

func (d *Deserializer) peek(minIndent int) (token.Token, error) {
	if !d.hasPeek {
		d.peekTok, d.peekErr = d.sc.Next(minIndent)
		d.peekIndent = minIndent
		d.hasPeek = true
	}
	return d.peekTok, d.peekErr
}

func (d *Deserializer) consume() { d.hasPeek = false }

// Documents parses the entire stream and returns every document root in
// order. Directives and the anchor table both reset at each document
// boundary.
func (d *Deserializer) Documents() ([]*Node, error) {
	var docs []*Node
	for {
		d.docIndex++
		d.dirs = directives.New()
		d.anchors = make(map[string]*Node)

		// A document opened by "---" or by directives exists even when the
		// input ends right after it. A peek error resurfaces just below.
		first, _ := d.peek(0)
		explicitStart := first.Kind == token.EndOfDirectives || first.Kind == token.YAMLVersionDirective ||
			first.Kind == token.TagDirective || first.Kind == token.InvalidDirective

		if err := d.consumeDirectives(); err != nil {
			return nil, err
		}

		t, err := d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		if t.Kind == token.EndOfBuffer {
			if len(docs) == 0 || explicitStart {
				docs = append(docs, &Node{Kind: NullKind, VersionMajor: d.dirs.Version.Major, VersionMinor: d.dirs.Version.Minor})
			}
			return docs, nil
		}

		var node *Node
		if t.Kind == token.EndOfDirectives || t.Kind == token.EndOfDocument {
			// Empty document: directly followed by the next "---" or by "...".
			node = &Node{Kind: NullKind, VersionMajor: d.dirs.Version.Major, VersionMinor: d.dirs.Version.Minor}
		} else {
			node, err = d.parseNode(0)
			if err != nil {
				return nil, err
			}
		}
		docs = append(docs, node)

		t, err = d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		switch t.Kind {
		case token.EndOfDocument:
			d.consume()
			t, err = d.peek(0)
			if err != nil {
				return nil, d.wrap(err)
			}
			if t.Kind == token.EndOfBuffer {
				return docs, nil
			}
		case token.EndOfBuffer:
			return docs, nil
		case token.EndOfDirectives:
			// Implicit end of the previous document; next loop iteration's
			// consumeDirectives will consume the "---" marker.
		default:
			return nil, d.wrap(d.errAt(ParseErrKind, t.Begin, "unexpected content after document"))
		}
	}
}

func (d *Deserializer) consumeDirectives() error {
	for {
		t, err := d.peek(0)
		if err != nil {
			return d.wrap(err)
		}
		switch t.Kind {
		case token.YAMLVersionDirective:
			d.consume()
			if err := d.dirs.SetVersion(int8(t.VersionMajor), int8(t.VersionMinor)); err != nil {
				return d.wrap(d.errAt(ParseErrKind, t.Begin, "%s", err))
			}
		case token.TagDirective:
			d.consume()
			if err := d.dirs.SetHandle(t.DirectiveHandle, t.DirectivePrefix); err != nil {
				return d.wrap(d.errAt(ParseErrKind, t.Begin, "%s", err))
			}
		case token.InvalidDirective:
			d.consume() // reserved/unknown directives are ignored, not fatal
		case token.EndOfDirectives:
			d.consume()
			return nil
		default:
			return nil // no explicit "---"; directives end implicitly
		}
	}
}

// parseNode parses one node whose first token begins at column >= minIndent.
// A bare scalar immediately followed by ':' on the same line is read as the
// first key of an implicit block mapping.
func (d *Deserializer) parseNode(minIndent int) (*Node, error) {
	return d.parseNodeOrKey(minIndent, false)
}

// parseKey parses one mapping key: an anchor/tag-prefixed scalar or
// collection, but never the scalar-colon lookahead parseNode applies to
// values. Callers that already know they're reading a key (the block- and
// flow-mapping entry loops) must use this instead of parseNode, or a plain
// key like "b" in "a: 1\nb: 2" gets misread as the start of its own nested
// mapping, swallowing the rest of the entry.
func (d *Deserializer) parseKey(minIndent int) (*Node, error) {
	return d.parseNodeOrKey(minIndent, true)
}

func (d *Deserializer) parseNodeOrKey(minIndent int, asKey bool) (*Node, error) {
	var anchorName, tagRaw string
	var anchorTok, tagTok token.Token
	for {
		t, err := d.peek(minIndent)
		if err != nil {
			return nil, d.wrap(err)
		}
		switch t.Kind {
		case token.AnchorPrefix:
			anchorName, anchorTok = t.Raw, t
			d.consume()
			continue
		case token.TagPrefix:
			tagRaw, tagTok = t.Raw, t
			d.consume()
			continue
		}
		break
	}
	_ = anchorTok
	_ = tagTok

	t, err := d.peek(minIndent)
	if err != nil {
		return nil, d.wrap(err)
	}

	switch t.Kind {
	case token.AliasPrefix:
		d.consume()
		src, ok := d.anchors[t.Raw]
		if !ok {
			return nil, d.errAt(ParseErrKind, t.Begin, "undefined alias %q", t.Raw)
		}
		return copyNode(src, t.Raw), nil

	case token.SequenceFlowBegin:
		d.consume()
		node, err := d.parseFlowSequence()
		if err != nil {
			return nil, err
		}
		return d.finish(node, anchorName, tagRaw, tagTok)

	case token.MappingFlowBegin:
		d.consume()
		node, err := d.parseFlowMapping()
		if err != nil {
			return nil, err
		}
		return d.finish(node, anchorName, tagRaw, tagTok)

	case token.SequenceBlockPrefix:
		node, err := d.parseBlockSequence(t.Begin.Column)
		if err != nil {
			return nil, err
		}
		return d.finish(node, anchorName, tagRaw, tagTok)

	case token.ExplicitKeyPrefix:
		node, err := d.parseBlockMapping(t.Begin.Column, nil)
		if err != nil {
			return nil, err
		}
		return d.finish(node, anchorName, tagRaw, tagTok)

	case token.NullValue, token.BooleanValue, token.IntegerValue, token.FloatValue, token.StringValue:
		d.consume()
		// Two-token lookahead: in block context, when this scalar is being
		// read as a value (not as a key already), a ':' immediately after
		// it on the same line starts a block mapping whose first key is
		// this scalar. Flow context and key reads never apply this: flow
		// mappings require explicit '{}', and a key is never itself the
		// start of a mapping around its own ':'.
		if !asKey && d.sc.FlowLevel() == 0 {
			next, err := d.peek(minIndent)
			if err != nil {
				return nil, d.wrap(err)
			}
			if next.Kind == token.KeySeparator && next.Begin.Line == t.Begin.Line {
				d.consume()
				node, err := d.parseBlockMapping(t.Begin.Column, &t)
				if err != nil {
					return nil, err
				}
				return d.finish(node, anchorName, tagRaw, tagTok)
			}
		}
		node, err := d.buildScalar(t, tagRaw)
		if err != nil {
			return nil, err
		}
		return d.finish(node, anchorName, tagRaw, tagTok)

	default:
		return nil, d.errAt(ParseErrKind, t.Begin, "expected a node, found %s", t.Kind)
	}
}

// finish attaches anchor bookkeeping to an already-built collection/scalar
// node and registers it in the anchor table. Scalars route through
// buildScalar already (which doesn't know about anchors), so finish is the
// single place anchor registration happens for every node kind, letting an
// anchor attach to a scalar, sequence, or mapping alike.
func (d *Deserializer) finish(n *Node, anchorName, tagRaw string, tagTok token.Token) (*Node, error) {
	if anchorName != "" {
		n.AnchorName = anchorName
		n.AnchorRole = AnchorDefinition
		d.anchors[anchorName] = n // plain overwrite on redefinition
	}
	if tagRaw != "" && n.TagName == "" {
		n.TagName = tagRaw
	}
	n.VersionMajor, n.VersionMinor = d.dirs.Version.Major, d.dirs.Version.Minor
	return n, nil
}

func (d *Deserializer) parseBlockSequence(col int) (*Node, error) {
	n := &Node{Kind: SequenceKind}
	for {
		t, err := d.peek(col)
		if err != nil {
			return nil, d.wrap(err)
		}
		if t.Kind != token.SequenceBlockPrefix || t.Begin.Column != col {
			break
		}
		d.consume()
		item, err := d.parseNode(col + 1)
		if err != nil {
			return nil, err
		}
		n.Seq = append(n.Seq, item)
	}
	return n, nil
}

// parseBlockMapping collects entries at the given column. If firstKey is
// non-nil, its scalar token (and the ':' that follows it) were already
// consumed by the caller, and firstKey supplies the first entry's key.
func (d *Deserializer) parseBlockMapping(col int, firstKey *token.Token) (*Node, error) {
	n := &Node{Kind: MappingKind}

	if firstKey != nil {
		keyNode, err := d.buildScalar(*firstKey, "")
		if err != nil {
			return nil, err
		}
		val, err := d.parseNode(col)
		if err != nil {
			return nil, err
		}
		if err := d.appendMapEntry(n, keyNode, val, firstKey.Begin); err != nil {
			return nil, err
		}
	}

	for {
		t, err := d.peek(col)
		if err != nil {
			return nil, d.wrap(err)
		}
		if t.Kind == token.EndOfBuffer || t.Kind == token.EndOfDocument || t.Kind == token.EndOfDirectives {
			break
		}
		if t.Begin.Column != col {
			break
		}

		keyPos := t.Begin
		var keyNode *Node
		if t.Kind == token.ExplicitKeyPrefix {
			d.consume()
			keyNode, err = d.parseNode(col + 1)
			if err != nil {
				return nil, err
			}
			sep, err := d.peek(col)
			if err != nil {
				return nil, d.wrap(err)
			}
			if sep.Kind != token.KeySeparator {
				return nil, d.errAt(ParseErrKind, sep.Begin, "expected ':' after explicit mapping key")
			}
			d.consume()
		} else {
			keyNode, err = d.parseKey(col)
			if err != nil {
				return nil, err
			}
			sep, err := d.peek(col)
			if err != nil {
				return nil, d.wrap(err)
			}
			if sep.Kind != token.KeySeparator {
				return nil, d.errAt(ParseErrKind, sep.Begin, "expected ':' after mapping key")
			}
			d.consume()
		}

		val, err := d.parseNode(col)
		if err != nil {
			return nil, err
		}
		if err := d.appendMapEntry(n, keyNode, val, keyPos); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// appendMapEntry adds a (key, value) pair to a mapping node, rejecting a
// key that duplicates one already present.
func (d *Deserializer) appendMapEntry(n *Node, key, val *Node, pos token.Position) error {
	for _, e := range n.Map {
		if sameKey(e.Key, key) {
			return d.errAt(ParseErrKind, pos, "Detected duplication in mapping keys")
		}
	}
	n.Map = append(n.Map, Entry{Key: key, Value: val})
	return nil
}

// sameKey reports whether two mapping keys are equal for uniqueness
// purposes: same Kind and same typed value, recursing into Sequence/Mapping
// keys.
func sameKey(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NullKind:
		return true
	case BooleanKind:
		return a.Bool == b.Bool
	case IntegerKind:
		return a.Int == b.Int
	case FloatKind:
		return a.Float == b.Float
	case StringKind:
		return a.Str == b.Str
	case SequenceKind:
		if len(a.Seq) != len(b.Seq) {
			return false
		}
		for i := range a.Seq {
			if !sameKey(a.Seq[i], b.Seq[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !sameKey(a.Map[i].Key, b.Map[i].Key) || !sameKey(a.Map[i].Value, b.Map[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (d *Deserializer) parseFlowSequence() (*Node, error) {
	n := &Node{Kind: SequenceKind}
	for {
		t, err := d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		if t.Kind == token.SequenceFlowEnd {
			d.consume()
			return n, nil
		}
		item, err := d.parseNode(0)
		if err != nil {
			return nil, err
		}
		n.Seq = append(n.Seq, item)

		t, err = d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		switch t.Kind {
		case token.ValueSeparator:
			d.consume()
		case token.SequenceFlowEnd:
			d.consume()
			return n, nil
		default:
			return nil, d.errAt(ParseErrKind, t.Begin, "expected ',' or ']' in flow sequence")
		}
	}
}

func (d *Deserializer) parseFlowMapping() (*Node, error) {
	n := &Node{Kind: MappingKind}
	for {
		t, err := d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		if t.Kind == token.MappingFlowEnd {
			d.consume()
			return n, nil
		}

		keyPos := t.Begin
		var keyNode *Node
		if t.Kind == token.ExplicitKeyPrefix {
			d.consume()
			keyNode, err = d.parseKey(0)
		} else {
			keyNode, err = d.parseKey(0)
		}
		if err != nil {
			return nil, err
		}

		var valNode *Node
		sep, err := d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		if sep.Kind == token.KeySeparator {
			d.consume()
			valNode, err = d.parseNode(0)
			if err != nil {
				return nil, err
			}
		} else {
			valNode = &Node{Kind: NullKind, VersionMajor: d.dirs.Version.Major, VersionMinor: d.dirs.Version.Minor}
		}
		if err := d.appendMapEntry(n, keyNode, valNode, keyPos); err != nil {
			return nil, err
		}

		t, err = d.peek(0)
		if err != nil {
			return nil, d.wrap(err)
		}
		switch t.Kind {
		case token.ValueSeparator:
			d.consume()
		case token.MappingFlowEnd:
			d.consume()
			return n, nil
		default:
			return nil, d.errAt(ParseErrKind, t.Begin, "expected ',' or '}' in flow mapping")
		}
	}
}

// buildScalar turns a scalar token into a Node, applying explicit tag
// forcing over the scanner's implicit classification.
func (d *Deserializer) buildScalar(t token.Token, tagRaw string) (*Node, error) {
	n := &Node{VersionMajor: d.dirs.Version.Major, VersionMinor: d.dirs.Version.Minor}

	if tagRaw != "" {
		expanded, ok := resolve.Expand(tagRaw, d.dirs)
		if !ok {
			return nil, d.errAt(ParseErrKind, t.Begin, "unknown tag handle in %q", tagRaw)
		}
		switch resolve.Classify(expanded) {
		case resolve.KindString:
			n.Kind, n.Str, n.TagName = StringKind, t.Raw, tagRaw
			return n, nil
		case resolve.KindNull:
			n.Kind, n.TagName = NullKind, tagRaw
			return n, nil
		case resolve.KindBoolean:
			b, ok := resolve.ParseBoolText(t.Raw)
			if !ok {
				return nil, d.errAt(TypeErrKind, t.Begin, "%q is not a valid boolean", t.Raw)
			}
			n.Kind, n.Bool, n.TagName = BooleanKind, b, tagRaw
			return n, nil
		case resolve.KindInteger:
			i, ok := resolve.ParseIntText(t.Raw)
			if !ok {
				return nil, d.errAt(TypeErrKind, t.Begin, "%q is not a valid integer", t.Raw)
			}
			n.Kind, n.Int, n.TagName = IntegerKind, i, tagRaw
			return n, nil
		case resolve.KindFloat:
			f, ok := resolve.ParseFloatText(t.Raw)
			if !ok {
				return nil, d.errAt(TypeErrKind, t.Begin, "%q is not a valid float", t.Raw)
			}
			n.Kind, n.Float, n.TagName = FloatKind, f, tagRaw
			return n, nil
		case resolve.KindSequence, resolve.KindMapping:
			return nil, d.errAt(TypeErrKind, t.Begin, "tag %q is not a scalar kind", tagRaw)
		}
		// NonSpecific/Custom: fall through to implicit typing below, but
		// still record the verbatim tag text.
		n.TagName = tagRaw
	}

	switch t.Kind {
	case token.NullValue:
		n.Kind = NullKind
	case token.BooleanValue:
		n.Kind, n.Bool = BooleanKind, t.Scalar.Bool
	case token.IntegerValue:
		n.Kind, n.Int = IntegerKind, t.Scalar.Int
	case token.FloatValue:
		n.Kind, n.Float = FloatKind, t.Scalar.Float
	default:
		n.Kind, n.Str = StringKind, t.Raw
	}
	return n, nil
}

// copyNode implements value-copy alias semantics: every alias resolution
// yields an independent tree, not a pointer aliasing the original. Only the
// copy's root takes on the alias's own anchor bookkeeping; nested nodes keep
// whatever anchor role/name they already had.
func copyNode(n *Node, aliasName string) *Node {
	cp := deepCopy(n)
	cp.AnchorRole = AnchorAlias
	cp.AnchorName = aliasName
	return cp
}

func deepCopy(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Seq != nil {
		cp.Seq = make([]*Node, len(n.Seq))
		for i, c := range n.Seq {
			cp.Seq[i] = deepCopy(c)
		}
	}
	if n.Map != nil {
		cp.Map = make([]Entry, len(n.Map))
		for i, e := range n.Map {
			cp.Map[i] = Entry{Key: deepCopy(e.Key), Value: deepCopy(e.Value)}
		}
	}
	return &cp
}
