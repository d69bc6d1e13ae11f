package yamlcore

// Kind is the tagged-union discriminant of a Node.
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
		return "null"
	case BooleanKind:
		return "boolean"
	case IntegerKind:
		return "integer"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	}
	return "unknown"
}

// AnchorRole classifies how a node's anchor property was populated.
type AnchorRole int

const (
	AnchorNone AnchorRole = iota
	AnchorDefinition
	AnchorAlias
)

// Version is the YAML version a node's enclosing document declared.
type Version struct {
	Major, Minor int8
}

// Entry is one (key, value) pair of a Mapping node. Order of Entry within
// Node.Map is insertion order.
type Entry struct {
	Key   *Node
	Value *Node
}

// Node is the tagged union produced by the deserializer: exactly one of the
// typed fields is meaningful, selected by Kind. A single concrete sum type
// rather than a generic template, since storage representation is left to
// the caller to adapt further.
type Node struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string
	Seq   []*Node
	Map   []Entry

	// AnchorName and AnchorRole record the node's anchor/alias bookkeeping.
	AnchorName string
	AnchorRole AnchorRole

	// TagName is the verbatim textual tag as seen in source (e.g. "!!str",
	// "!<tag:yaml.org,2002:int>", "!local"), before handle expansion.
	// Empty when the node carried no explicit tag.
	TagName string

	// YAMLVersion is inherited from the enclosing document's directive set.
	YAMLVersion Version
}

// MapIndex returns the value for a string-keyed mapping entry, or nil if
// absent. It's a convenience for tests and callers working with simple
// string-keyed documents; it does not implement general node equality.
func (n *Node) MapIndex(key string) *Node {
	if n == nil || n.Kind != MappingKind {
		return nil
	}
	for _, e := range n.Map {
		if e.Key != nil && e.Key.Kind == StringKind && e.Key.Str == key {
			return e.Value
		}
	}
	return nil
}

// IsNull reports whether the node is the Null variant.
func (n *Node) IsNull() bool { return n == nil || n.Kind == NullKind }
