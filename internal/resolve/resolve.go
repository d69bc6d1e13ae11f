// Package resolve implements tag handle expansion and classification, plus
// the implicit-scalar classification the scanner needs to decode plain
// scalars into typed tokens.
//
// Unlike a decoder that resolves a scalar straight to a Go value, this
// package classifies a scalar into the Kind enum and leaves the actual
// typed-value construction to the caller, since the node tree here stores
// typed variants directly rather than interface{}.
package resolve

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the resolved kind a tag (or an implicit plain scalar) maps to.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindSequence
	KindMapping
	KindNonSpecific
	KindCustom
)

const (
	nullTag      = "tag:yaml.org,2002:null"
	boolTag      = "tag:yaml.org,2002:bool"
	intTag       = "tag:yaml.org,2002:int"
	floatTag     = "tag:yaml.org,2002:float"
	strTag       = "tag:yaml.org,2002:str"
	seqTag       = "tag:yaml.org,2002:seq"
	mapTag       = "tag:yaml.org,2002:map"
	mergeTag     = "tag:yaml.org,2002:merge"
	timestampTag = "tag:yaml.org,2002:timestamp"
)

// Handles looks up handle prefixes from the document's active directive set.
// Implemented by the deserializer's directive tracking so this package
// stays decoupled from document state.
type Handles interface {
	PrimaryPrefix() string   // "!"
	SecondaryPrefix() string // "!!", default "tag:yaml.org,2002:"
	NamedPrefix(name string) (string, bool)
}

// Expand turns a tag's verbatim source text into its fully expanded form.
// ok is false for a malformed handle reference (unknown named handle).
func Expand(raw string, h Handles) (expanded string, ok bool) {
	switch {
	case strings.HasPrefix(raw, "!<") && strings.HasSuffix(raw, ">"):
		return raw[2 : len(raw)-1], true
	case raw == "!":
		return h.PrimaryPrefix(), true
	case strings.HasPrefix(raw, "!!"):
		return h.SecondaryPrefix() + raw[2:], true
	case strings.HasPrefix(raw, "!") && strings.Count(raw, "!") >= 2:
		// !named!suffix
		rest := raw[1:]
		idx := strings.IndexByte(rest, '!')
		if idx < 0 {
			break
		}
		name, suffix := rest[:idx], rest[idx+1:]
		prefix, found := h.NamedPrefix(name)
		if !found {
			return "", false
		}
		return prefix + suffix, true
	case strings.HasPrefix(raw, "!"):
		return h.PrimaryPrefix() + raw[1:], true
	}
	return raw, true
}

// Classify maps an expanded tag form to a resolved Kind.
func Classify(expanded string) Kind {
	switch expanded {
	case nullTag:
		return KindNull
	case boolTag:
		return KindBoolean
	case intTag:
		return KindInteger
	case floatTag:
		return KindFloat
	case strTag:
		return KindString
	case seqTag:
		return KindSequence
	case mapTag:
		return KindMapping
	case "!":
		return KindNonSpecific
	}
	return KindCustom
}

// MergeTag and TimestampTag are exposed for callers (e.g. the deserializer)
// that want to special-case "<<" or !!timestamp without re-deriving the
// expanded tag.yaml.org form.
const (
	MergeTag     = mergeTag
	TimestampTag = timestampTag
)

// ScalarText classifies the decoded text of a plain (unquoted) scalar into
// its implicit Kind. It returns the Kind and, for Boolean/Integer/Float,
// the decoded value.
func ScalarText(text string) (kind Kind, boolVal bool, intVal int64, floatVal float64) {
	switch text {
	case "", "~", "null", "Null", "NULL":
		return KindNull, false, 0, 0
	case "true", "True", "TRUE":
		return KindBoolean, true, 0, 0
	case "false", "False", "FALSE":
		return KindBoolean, false, 0, 0
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return KindFloat, false, 0, math.Inf(1)
	case "-.inf", "-.Inf", "-.INF":
		return KindFloat, false, 0, math.Inf(-1)
	case ".nan", ".NaN", ".NAN":
		return KindFloat, false, 0, math.NaN()
	}
	if i, ok := parseInteger(text); ok {
		return KindInteger, false, i, 0
	}
	if f, ok := parseFloat(text); ok {
		return KindFloat, false, 0, f
	}
	return KindString, false, 0, 0
}

// parseInteger accepts YAML 1.2 decimal/octal(0o)/hex(0x) integers and the
// YAML 1.1 compatibility forms (leading-zero octal, 0b binary, '_'
// separators).
func parseInteger(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if body == "" {
		return 0, false
	}
	body = strings.ReplaceAll(body, "_", "")
	if body == "" {
		return 0, false
	}
	var v int64
	var err error
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		v, err = strconv.ParseInt(body[2:], 16, 64)
	case strings.HasPrefix(body, "0o") || strings.HasPrefix(body, "0O"):
		v, err = strconv.ParseInt(body[2:], 8, 64)
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		v, err = strconv.ParseInt(body[2:], 2, 64)
	case len(body) > 1 && body[0] == '0' && allDigits(body):
		// YAML 1.1 leading-zero octal compatibility form.
		v, err = strconv.ParseInt(body, 8, 64)
	case allDigits(body):
		v, err = strconv.ParseInt(body, 10, 64)
	default:
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

var plainFloat = regexp.MustCompile(`^[-+]?(\.\d+|\d+(\.\d*)?)([eE][-+]?\d+)?$`)

func parseFloat(s string) (float64, bool) {
	if s == "" || !strings.ContainsAny(s, ".eE") {
		return 0, false
	}
	body := strings.ReplaceAll(s, "_", "")
	if !plainFloat.MatchString(body) {
		return 0, false
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseIntText, ParseFloatText, and ParseBoolText re-derive a typed value
// from raw scalar text regardless of the token's original form. The
// deserializer needs these when an explicit tag (e.g. "!!int") forces a
// quoted or otherwise non-plain scalar into a typed kind, since quoted
// scalars never go through ScalarText's implicit classification.
func ParseIntText(s string) (int64, bool)     { return parseInteger(s) }
func ParseFloatText(s string) (float64, bool) { return parseFloat(s) }

func ParseBoolText(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}
