// Package yamlcore is a YAML 1.2 reader (with YAML 1.1 scalar compatibility
// forms) built from three stages: an input adapter that detects encoding
// and normalizes the byte stream into UTF-8, a lexical analyzer that
// tokenizes it, and a deserializer that builds a Node tree. The emitter,
// any serialization back to text, and user-facing type conversion are out
// of scope: callers work with the Node tree this package hands back.
package yamlcore

import (
	"io"

	"github.com/yamlcore/yamlcore/internal/deserial"
	"github.com/yamlcore/yamlcore/internal/inputadapter"
)

// UnitWidth selects the code-unit width for ParseUnits, for
// callers that already know their source is UTF-16 or UTF-32 and have it
// split into fixed-width units rather than a BOM-prefixed byte stream.
type UnitWidth = inputadapter.UnitWidth

const (
	Width1 = inputadapter.Width1
	Width2 = inputadapter.Width2
	Width4 = inputadapter.Width4
)

// Parse reads a single YAML document from r. It is an error for the input
// to contain more than one document; use ParseAll for multi-document
// streams. Empty input parses to a single Null node.
func Parse(r io.Reader) (*Node, error) {
	docs, err := parseAll(r)
	if err != nil {
		return nil, err
	}
	return soleDocument(docs)
}

// ParseAll reads every document from a multi-document YAML stream.
func ParseAll(r io.Reader) ([]*Node, error) {
	return parseAll(r)
}

// ParseBytes is Parse over an in-memory buffer, avoiding an io.Reader
// wrapper when the caller already holds the full input.
func ParseBytes(b []byte) (*Node, error) {
	docs, err := parseAllBytes(b)
	if err != nil {
		return nil, err
	}
	return soleDocument(docs)
}

// ParseAllBytes is ParseAll over an in-memory buffer.
func ParseAllBytes(b []byte) ([]*Node, error) {
	return parseAllBytes(b)
}

// ParseUnits parses a source already split into fixed-width code units
// (UTF-16 or UTF-32), as opposed to a raw byte stream the adapter must
// detect the encoding of.
func ParseUnits(units []byte, width UnitWidth, nativeBigEndian bool) (*Node, error) {
	buf, err := inputadapter.FromUnits(units, width, nativeBigEndian)
	if err != nil {
		return nil, translateEncodingError(err)
	}
	docs, err := runDeserializer(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return soleDocument(docs)
}

func parseAll(r io.Reader) ([]*Node, error) {
	buf, err := inputadapter.FromReader(r)
	if err != nil {
		return nil, translateEncodingError(err)
	}
	return runDeserializer(buf.Bytes())
}

func parseAllBytes(b []byte) ([]*Node, error) {
	buf, err := inputadapter.FromBytes(b)
	if err != nil {
		return nil, translateEncodingError(err)
	}
	return runDeserializer(buf.Bytes())
}

func runDeserializer(normalized []byte) ([]*Node, error) {
	docs, err := deserial.New(normalized).Documents()
	if err != nil {
		return nil, translateDeserialError(err)
	}
	out := make([]*Node, len(docs))
	for i, d := range docs {
		out[i] = fromInternal(d)
	}
	return out, nil
}

func soleDocument(docs []*Node) (*Node, error) {
	if len(docs) != 1 {
		return nil, newError(ParseErr, 0, 0, 0, "input contains multiple documents; use ParseAll")
	}
	return docs[0], nil
}

func translateEncodingError(err error) error {
	if ee, ok := err.(*inputadapter.EncodingError); ok {
		return newError(InvalidEncoding, 0, 0, 0, "%s", ee.Problem)
	}
	return newError(InvalidEncoding, 0, 0, 0, "%s", err.Error())
}

func translateDeserialError(err error) error {
	if de, ok := err.(*deserial.Error); ok {
		kind := ParseErr
		switch de.Kind {
		case deserial.TypeErrKind:
			kind = TypeErr
		case deserial.OutOfRangeKind:
			kind = OutOfRange
		}
		return newError(kind, de.Line, de.Column, de.Document, "%s", de.Message)
	}
	return newError(ParseErr, 0, 0, 0, "%s", err.Error())
}

func fromInternal(n *deserial.Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:        Kind(n.Kind),
		Bool:        n.Bool,
		Int:         n.Int,
		Float:       n.Float,
		Str:         n.Str,
		AnchorName:  n.AnchorName,
		AnchorRole:  AnchorRole(n.AnchorRole),
		TagName:     n.TagName,
		YAMLVersion: Version{Major: n.VersionMajor, Minor: n.VersionMinor},
	}
	if n.Seq != nil {
		out.Seq = make([]*Node, len(n.Seq))
		for i, c := range n.Seq {
			out.Seq[i] = fromInternal(c)
		}
	}
	if n.Map != nil {
		out.Map = make([]Entry, len(n.Map))
		for i, e := range n.Map {
			out.Map[i] = Entry{Key: fromInternal(e.Key), Value: fromInternal(e.Value)}
		}
	}
	return out
}
