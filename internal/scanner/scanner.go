// Package scanner implements a pull-style tokenizer over the normalized
// UTF-8 buffer the input adapter produces.
//
// Indentation and container bookkeeping belong entirely to the
// deserializer: this scanner's token vocabulary stays structural primitives
// (SEQUENCE_BLOCK_PREFIX, KEY_SEPARATOR, and so on) with no synthetic
// block-start/end tokens, unlike a scanner that tracks its own indentation
// stack and synthesizes those tokens itself. The caller's current
// indentation frame is passed in on every call (minIndent) so that
// block-scalar explicit-indent indicators can be resolved without the
// scanner owning a duplicate indent stack of its own.
package scanner

import (
	"fmt"

	"github.com/yamlcore/yamlcore/internal/resolve"
	"github.com/yamlcore/yamlcore/internal/token"
)

// Error is a scanner-level parse failure with source position.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string { return fmt.Sprintf("%s at %s", e.Message, e.Pos) }

func errf(pos token.Position, format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Scanner tokenizes a fully-materialized UTF-8 buffer (already BOM-stripped,
// transcoded, and newline-normalized by the input adapter).
type Scanner struct {
	buf  []byte
	pos  int
	line int
	col  int // byte column within the current line

	flowLevel int
}

// New constructs a Scanner over buf. buf is never mutated or retained
// beyond reference (the scanner only reads it).
func New(buf []byte) *Scanner {
	return &Scanner{buf: buf}
}

// FlowLevel reports the current flow-nesting depth.
func (s *Scanner) FlowLevel() int { return s.flowLevel }

func (s *Scanner) pos2(offset int) token.Position {
	return token.Position{Offset: s.pos + offset, Line: s.line, Column: s.col + offset}
}

func (s *Scanner) here() token.Position {
	return token.Position{Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *Scanner) eof() bool { return s.pos >= len(s.buf) }

func (s *Scanner) at(offset int) (byte, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.buf) {
		return 0, false
	}
	return s.buf[i], true
}

func (s *Scanner) cur() byte {
	b, ok := s.at(0)
	if !ok {
		return 0
	}
	return b
}

// advance consumes n bytes, updating line/column. Must not be called across
// a '\n' — callers step newlines explicitly via advanceNewline.
func (s *Scanner) advance(n int) {
	s.pos += n
	s.col += n
}

func (s *Scanner) advanceNewline() {
	s.pos++
	s.line++
	s.col = 0
}

func isBlank(b byte) bool  { return b == ' ' || b == '\t' }
func isBreakz(b byte, ok bool) bool {
	return !ok || b == '\n'
}
func isSpacez(b byte, ok bool) bool {
	return !ok || b == '\n' || b == ' '
}
func isBlankz(b byte, ok bool) bool {
	return !ok || b == '\n' || b == ' ' || b == '\t'
}

// Next returns the next token. minIndent is the column of the innermost
// open indentation frame the deserializer currently holds (0 at document
// top level); it lets block-scalar explicit indent indicators resolve
// relative indentation without the scanner keeping its own copy of the
// indent stack.
func (s *Scanner) Next(minIndent int) (token.Token, error) {
	sawTabIndent, err := s.skipToToken()
	if err != nil {
		return token.Token{}, err
	}
	begin := s.here()

	if s.eof() {
		return token.Token{Kind: token.EndOfBuffer, Begin: begin, End: begin}, nil
	}
	if sawTabIndent {
		return token.Token{}, errf(begin, "tab character must not be used for indentation")
	}

	c := s.cur()

	switch {
	case c == '%' && s.col == 0:
		return s.scanDirective(begin)
	case c == '-' && s.col == 0 && s.matchesMarker("---"):
		s.advance(3)
		return token.Token{Kind: token.EndOfDirectives, Begin: begin, End: s.here()}, nil
	case c == '.' && s.col == 0 && s.matchesMarker("..."):
		s.advance(3)
		return token.Token{Kind: token.EndOfDocument, Begin: begin, End: s.here()}, nil
	case c == '-' && s.flowLevel == 0 && s.followedByBlankOrEnd(1):
		s.advance(1)
		return token.Token{Kind: token.SequenceBlockPrefix, Begin: begin, End: s.here()}, nil
	case c == '?' && s.followedByBlankOrEnd(1):
		s.advance(1)
		return token.Token{Kind: token.ExplicitKeyPrefix, Begin: begin, End: s.here()}, nil
	case c == ':' && s.isKeySeparator():
		s.advance(1)
		return token.Token{Kind: token.KeySeparator, Begin: begin, End: s.here()}, nil
	case c == ',' && s.flowLevel > 0:
		s.advance(1)
		return token.Token{Kind: token.ValueSeparator, Begin: begin, End: s.here()}, nil
	case c == '[':
		s.advance(1)
		s.flowLevel++
		return token.Token{Kind: token.SequenceFlowBegin, Begin: begin, End: s.here()}, nil
	case c == ']':
		s.advance(1)
		if s.flowLevel > 0 {
			s.flowLevel--
		}
		return token.Token{Kind: token.SequenceFlowEnd, Begin: begin, End: s.here()}, nil
	case c == '{':
		s.advance(1)
		s.flowLevel++
		return token.Token{Kind: token.MappingFlowBegin, Begin: begin, End: s.here()}, nil
	case c == '}':
		s.advance(1)
		if s.flowLevel > 0 {
			s.flowLevel--
		}
		return token.Token{Kind: token.MappingFlowEnd, Begin: begin, End: s.here()}, nil
	case c == '&':
		return s.scanAnchorOrAlias(begin, token.AnchorPrefix)
	case c == '*':
		return s.scanAnchorOrAlias(begin, token.AliasPrefix)
	case c == '!':
		return s.scanTag(begin)
	case c == '\'':
		return s.scanSingleQuoted(begin)
	case c == '"':
		return s.scanDoubleQuoted(begin)
	case c == '|':
		return s.scanBlockScalar(begin, minIndent, false)
	case c == '>':
		return s.scanBlockScalar(begin, minIndent, true)
	default:
		return s.scanPlainScalar(begin, minIndent)
	}
}

// skipToToken advances past whitespace, blank lines, and comments,
// returning whether a raw tab was used as leading indentation along the
// way. Tabs are never valid indentation.
func (s *Scanner) skipToToken() (sawTab bool, err error) {
	leading := s.col == 0
	for {
		if s.eof() {
			return sawTab, nil
		}
		c := s.cur()
		switch {
		case c == ' ':
			s.advance(1)
		case c == '\t':
			if s.flowLevel == 0 && leading {
				sawTab = true
			}
			s.advance(1)
		case c == '\n':
			s.advanceNewline()
			leading = true
		case c == '#' && (leading || s.prevWasBlank()):
			s.skipComment()
		default:
			return sawTab, nil
		}
		if c != ' ' && c != '\t' {
			leading = s.col == 0
		}
	}
}

func (s *Scanner) prevWasBlank() bool {
	if s.pos == 0 {
		return true
	}
	p := s.buf[s.pos-1]
	return p == ' ' || p == '\t' || p == '\n'
}

func (s *Scanner) skipComment() {
	for !s.eof() && s.cur() != '\n' {
		s.advance(1)
	}
}

func (s *Scanner) matchesMarker(marker string) bool {
	for i := 0; i < len(marker); i++ {
		b, ok := s.at(i)
		if !ok || b != marker[i] {
			return false
		}
	}
	b, ok := s.at(len(marker))
	return !ok || b == ' ' || b == '\t' || b == '\n'
}

func (s *Scanner) followedByBlankOrEnd(offset int) bool {
	b, ok := s.at(offset)
	return !ok || b == ' ' || b == '\t' || b == '\n'
}

func (s *Scanner) isKeySeparator() bool {
	if s.followedByBlankOrEnd(1) {
		return true
	}
	if s.flowLevel > 0 {
		b, ok := s.at(1)
		if ok {
			switch b {
			case ',', '{', '}', '[', ']':
				return true
			}
		} else {
			return true
		}
	}
	return false
}

func isNameStop(b byte, ok bool) bool {
	if !ok {
		return true
	}
	switch b {
	case ' ', '\t', '\n', ',', '{', '}', '[', ']':
		return true
	}
	return false
}

func (s *Scanner) scanAnchorOrAlias(begin token.Position, kind token.Kind) (token.Token, error) {
	s.advance(1) // consume '&' or '*'
	nameStart := s.pos
	for {
		b, ok := s.at(0)
		if isNameStop(b, ok) {
			break
		}
		if b == ':' && isBlankOrEndAt(s, 1) {
			break
		}
		s.advance(1)
	}
	name := string(s.buf[nameStart:s.pos])
	if name == "" {
		return token.Token{}, errf(begin, "anchor name must not be empty")
	}
	return token.Token{Kind: kind, Begin: begin, End: s.here(), Raw: name}, nil
}

func isBlankOrEndAt(s *Scanner, offset int) bool {
	b, ok := s.at(offset)
	return !ok || b == ' ' || b == '\t' || b == '\n'
}

func (s *Scanner) scanTag(begin token.Position) (token.Token, error) {
	s.advance(1) // consume leading '!'
	if b, ok := s.at(0); !ok || b == ' ' || b == '\t' || b == '\n' {
		return token.Token{Kind: token.TagPrefix, Begin: begin, End: s.here(), Raw: "!", TagHandle: "!"}, nil
	}
	if b, _ := s.at(0); b == '<' {
		s.advance(1)
		uriStart := s.pos
		for {
			b, ok := s.at(0)
			if !ok || b == '\n' {
				return token.Token{}, errf(begin, "unterminated verbatim tag, expected '>'")
			}
			if b == '>' {
				break
			}
			s.advance(1)
		}
		uri := string(s.buf[uriStart:s.pos])
		s.advance(1) // consume '>'
		if uri == "" {
			return token.Token{}, errf(begin, "verbatim tag must not be empty")
		}
		return token.Token{
			Kind: token.TagPrefix, Begin: begin, End: s.here(),
			Raw: "!<" + uri + ">", TagSuffix: uri, TagVerbatim: true,
		}, nil
	}

	textStart := s.pos
	for {
		b, ok := s.at(0)
		if isNameStop(b, ok) {
			break
		}
		s.advance(1)
	}
	text := s.buf[textStart:s.pos]
	raw := "!" + string(text)

	if len(text) > 0 && text[0] == '!' {
		suffix := string(text[1:])
		if suffix == "" {
			return token.Token{}, errf(begin, "secondary tag handle requires a non-empty suffix")
		}
		return token.Token{Kind: token.TagPrefix, Begin: begin, End: s.here(), Raw: raw, TagHandle: "!!", TagSuffix: suffix}, nil
	}

	if idx := findHandleBang(text); idx >= 0 {
		handle := string(text[:idx])
		suffix := string(text[idx+1:])
		if suffix != "" && isHandleName(handle) {
			return token.Token{
				Kind: token.TagPrefix, Begin: begin, End: s.here(), Raw: raw,
				TagHandle: "!" + handle + "!", TagSuffix: suffix,
			}, nil
		}
	}

	if len(text) == 0 {
		return token.Token{}, errf(begin, "local tag must not be empty")
	}
	return token.Token{Kind: token.TagPrefix, Begin: begin, End: s.here(), Raw: raw, TagHandle: "!", TagSuffix: string(text)}, nil
}

func findHandleBang(text []byte) int {
	for i, b := range text {
		if b == '!' {
			return i
		}
	}
	return -1
}

func isHandleName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !(b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '-') {
			return false
		}
	}
	return true
}

func (s *Scanner) scanDirective(begin token.Position) (token.Token, error) {
	s.advance(1) // consume '%'
	nameStart := s.pos
	for {
		b, ok := s.at(0)
		if !ok || b == ' ' || b == '\t' || b == '\n' {
			break
		}
		s.advance(1)
	}
	name := string(s.buf[nameStart:s.pos])
	s.skipBlanks()

	switch name {
	case "YAML":
		major, minor, err := s.scanVersionOperand(begin)
		if err != nil {
			return token.Token{}, err
		}
		s.skipToEOL(begin)
		return token.Token{
			Kind: token.YAMLVersionDirective, Begin: begin, End: s.here(),
			VersionMajor: major, VersionMinor: minor,
		}, nil
	case "TAG":
		handle, prefix, err := s.scanTagOperand(begin)
		if err != nil {
			return token.Token{}, err
		}
		s.skipToEOL(begin)
		return token.Token{
			Kind: token.TagDirective, Begin: begin, End: s.here(),
			DirectiveHandle: handle, DirectivePrefix: prefix,
		}, nil
	default:
		s.skipToEOL(begin)
		return token.Token{Kind: token.InvalidDirective, Begin: begin, End: s.here(), Raw: name}, nil
	}
}

func (s *Scanner) skipBlanks() {
	for {
		b, ok := s.at(0)
		if !ok || (b != ' ' && b != '\t') {
			return
		}
		s.advance(1)
	}
}

func (s *Scanner) skipToEOL(begin token.Position) {
	for !s.eof() && s.cur() != '\n' {
		s.advance(1)
	}
}

func (s *Scanner) scanVersionOperand(begin token.Position) (major, minor int, err error) {
	start := s.pos
	for {
		b, ok := s.at(0)
		if !ok || b == ' ' || b == '\t' || b == '\n' || b == '#' {
			break
		}
		s.advance(1)
	}
	text := string(s.buf[start:s.pos])
	switch text {
	case "1.1":
		return 1, 1, nil
	case "1.2":
		return 1, 2, nil
	}
	return 0, 0, errf(begin, "unsupported YAML version %q", text)
}

func (s *Scanner) scanTagOperand(begin token.Position) (handle, prefix string, err error) {
	if s.cur() != '!' {
		return "", "", errf(begin, "malformed tag directive: expected handle starting with '!'")
	}
	hstart := s.pos
	s.advance(1)
	if b, ok := s.at(0); ok && b != ' ' && b != '\t' {
		for {
			b, ok := s.at(0)
			if !ok {
				return "", "", errf(begin, "malformed tag handle")
			}
			if b == '!' {
				s.advance(1)
				break
			}
			if !isHandleByte(b) {
				return "", "", errf(begin, "malformed tag handle")
			}
			s.advance(1)
		}
	}
	handle = string(s.buf[hstart:s.pos])
	s.skipBlanks()
	pstart := s.pos
	for {
		b, ok := s.at(0)
		if !ok || b == ' ' || b == '\t' || b == '\n' {
			break
		}
		s.advance(1)
	}
	prefix = string(s.buf[pstart:s.pos])
	if prefix == "" {
		return "", "", errf(begin, "malformed tag directive: missing prefix")
	}
	return handle, prefix, nil
}

func isHandleByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '-'
}

// scanPlainScalar scans an unquoted scalar. Per the scanner/deserializer
// split in this module's design (see package doc), plain scalars are
// scoped to a single physical line: YAML's multi-line plain-scalar folding
// needs the enclosing block's indentation, which belongs to the
// deserializer's indent stack, not the scanner. Block (| / >) and quoted
// scalars — the mechanisms callers actually reach for when they need
// multi-line text — are fully supported below.
//
// A plain scalar is not folded across lines: in "key: a long\n  run-on
// value" the continuation comes back as a separate scalar token, which the
// deserializer does not accept in that position, so such a document fails
// to parse. The same text in a block or quoted style parses.
func (s *Scanner) scanPlainScalar(begin token.Position, minIndent int) (token.Token, error) {
	start := s.pos
	for {
		b, ok := s.at(0)
		if !ok || b == '\n' {
			break
		}
		if b == '#' && s.prevWasBlank() {
			break
		}
		if b == ':' && s.isKeySeparator() {
			break
		}
		if s.flowLevel > 0 {
			switch b {
			case ',', '[', ']', '{', '}':
				goto done
			}
		}
		s.advance(1)
	}
done:
	text := trimTrailingBlanks(s.buf[start:s.pos])
	if len(text) == 0 && start == s.pos {
		return token.Token{}, errf(begin, "expected a scalar value")
	}
	return plainScalarToken(begin, s.here(), string(text)), nil
}

func trimTrailingBlanks(b []byte) []byte {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}
	return b[:end]
}

func plainScalarToken(begin, end token.Position, text string) token.Token {
	kind, boolVal, intVal, floatVal := resolve.ScalarText(text)
	switch kind {
	case resolve.KindNull:
		return token.Token{Kind: token.NullValue, Begin: begin, End: end, Raw: text}
	case resolve.KindBoolean:
		return token.Token{Kind: token.BooleanValue, Begin: begin, End: end, Raw: text, Scalar: token.ScalarDecoded{Bool: boolVal}}
	case resolve.KindInteger:
		return token.Token{Kind: token.IntegerValue, Begin: begin, End: end, Raw: text, Scalar: token.ScalarDecoded{Int: intVal}}
	case resolve.KindFloat:
		return token.Token{Kind: token.FloatValue, Begin: begin, End: end, Raw: text, Scalar: token.ScalarDecoded{Float: floatVal}}
	default:
		return token.Token{Kind: token.StringValue, Begin: begin, End: end, Raw: text, Scalar: token.ScalarDecoded{Str: text}}
	}
}

func (s *Scanner) scanSingleQuoted(begin token.Position) (token.Token, error) {
	s.advance(1)
	var buf []byte
	for {
		if s.eof() {
			return token.Token{}, errf(begin, "unterminated single-quoted scalar")
		}
		c := s.cur()
		if c == '\'' {
			if b, ok := s.at(1); ok && b == '\'' {
				buf = append(buf, '\'')
				s.advance(2)
				continue
			}
			s.advance(1)
			break
		}
		if c == '\n' {
			buf = trimTrailingBlanks(buf)
			breaks := 0
			for !s.eof() && s.cur() == '\n' {
				breaks++
				s.advanceNewline()
				for !s.eof() && (s.cur() == ' ' || s.cur() == '\t') {
					s.advance(1)
				}
			}
			if breaks == 1 {
				buf = append(buf, ' ')
			} else {
				for i := 0; i < breaks-1; i++ {
					buf = append(buf, '\n')
				}
			}
			continue
		}
		buf = append(buf, c)
		s.advance(1)
	}
	text := string(buf)
	return token.Token{Kind: token.StringValue, Begin: begin, End: s.here(), Raw: text, Scalar: token.ScalarDecoded{Str: text}}, nil
}

func (s *Scanner) scanDoubleQuoted(begin token.Position) (token.Token, error) {
	s.advance(1)
	var buf []byte
	for {
		if s.eof() {
			return token.Token{}, errf(begin, "unterminated double-quoted scalar")
		}
		c := s.cur()
		if c == '"' {
			s.advance(1)
			break
		}
		if c == '\\' {
			next, ok := s.at(1)
			if !ok {
				return token.Token{}, errf(begin, "unterminated escape sequence")
			}
			if next == '\n' {
				// Suppress folding for this line: consume the break and
				// any leading indentation on the continuation without
				// emitting a space or newline.
				s.advance(2)
				s.advanceNewline0Compensate()
				for !s.eof() && (s.cur() == ' ' || s.cur() == '\t') {
					s.advance(1)
				}
				continue
			}
			decoded, width, err := s.decodeEscape(begin)
			if err != nil {
				return token.Token{}, err
			}
			buf = append(buf, decoded...)
			_ = width
			continue
		}
		if c == '\n' {
			buf = trimTrailingBlanks(buf)
			breaks := 0
			for !s.eof() && s.cur() == '\n' {
				breaks++
				s.advanceNewline()
				for !s.eof() && (s.cur() == ' ' || s.cur() == '\t') {
					s.advance(1)
				}
			}
			if breaks == 1 {
				buf = append(buf, ' ')
			} else {
				for i := 0; i < breaks-1; i++ {
					buf = append(buf, '\n')
				}
			}
			continue
		}
		if c < 0x20 && c != '\t' {
			return token.Token{}, errf(begin, "Control character U+%04X must be escaped to \\u%04X", c, c)
		}
		buf = append(buf, c)
		s.advance(1)
	}
	text := string(buf)
	return token.Token{Kind: token.StringValue, Begin: begin, End: s.here(), Raw: text, Scalar: token.ScalarDecoded{Str: text}}, nil
}

// advanceNewline0Compensate exists because advance(2) above already stepped
// past the '\\' and part of what advanceNewline expects to handle; the
// second byte consumed by advance(2) was the '\n' itself, so line/column
// bookkeeping for it has already happened as a plain column increment. This
// corrects it to a real line break.
func (s *Scanner) advanceNewline0Compensate() {
	s.line++
	s.col = 0
}

func (s *Scanner) decodeEscape(begin token.Position) (decoded []byte, width int, err error) {
	b, _ := s.at(1)
	simple := func(r byte) ([]byte, int, error) {
		s.advance(2)
		return []byte{r}, 2, nil
	}
	switch b {
	case '0':
		return simple(0x00)
	case 'a':
		return simple(0x07)
	case 'b':
		return simple(0x08)
	case 't', '\t':
		return simple('\t')
	case 'n':
		return simple('\n')
	case 'v':
		return simple(0x0B)
	case 'f':
		return simple(0x0C)
	case 'r':
		return simple('\r')
	case 'e':
		return simple(0x1B)
	case '"':
		return simple('"')
	case '/':
		return simple('/')
	case '\\':
		return simple('\\')
	case 'N':
		s.advance(2)
		return appendUTF8Rune(0x85), 2, nil
	case '_':
		s.advance(2)
		return appendUTF8Rune(0xA0), 2, nil
	case 'L':
		s.advance(2)
		return appendUTF8Rune(0x2028), 2, nil
	case 'P':
		s.advance(2)
		return appendUTF8Rune(0x2029), 2, nil
	case 'x':
		return s.decodeHexEscape(begin, 2, 2)
	case 'u':
		return s.decodeHexEscape(begin, 2, 4)
	case 'U':
		return s.decodeHexEscape(begin, 2, 8)
	default:
		return nil, 0, errf(begin, "unknown escape character")
	}
}

func (s *Scanner) decodeHexEscape(begin token.Position, skip, digits int) ([]byte, int, error) {
	s.advance(skip)
	var value rune
	for i := 0; i < digits; i++ {
		b, ok := s.at(0)
		if !ok || !isHex(b) {
			return nil, 0, errf(begin, "invalid hex escape digit")
		}
		value = value<<4 | rune(hexVal(b))
		s.advance(1)
	}
	return appendUTF8Rune(value), skip + digits, nil
}

func isHex(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'F' || b >= 'a' && b <= 'f'
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	default:
		return int(b-'a') + 10
	}
}

func appendUTF8Rune(value rune) []byte {
	switch {
	case value <= 0x7F:
		return []byte{byte(value)}
	case value <= 0x7FF:
		return []byte{byte(0xC0 + (value >> 6)), byte(0x80 + (value & 0x3F))}
	case value <= 0xFFFF:
		return []byte{byte(0xE0 + (value >> 12)), byte(0x80 + ((value >> 6) & 0x3F)), byte(0x80 + (value & 0x3F))}
	default:
		return []byte{
			byte(0xF0 + (value >> 18)), byte(0x80 + ((value >> 12) & 0x3F)),
			byte(0x80 + ((value >> 6) & 0x3F)), byte(0x80 + (value & 0x3F)),
		}
	}
}

type chomping int

const (
	chompClip chomping = iota
	chompStrip
	chompKeep
)

func (s *Scanner) scanBlockScalar(begin token.Position, minIndent int, folded bool) (token.Token, error) {
	s.advance(1) // consume '|' or '>'
	chomp := chompClip
	explicitIndent := 0
	for i := 0; i < 2; i++ {
		b, ok := s.at(0)
		if !ok {
			break
		}
		switch b {
		case '-':
			chomp = chompStrip
			s.advance(1)
		case '+':
			chomp = chompKeep
			s.advance(1)
		case '0':
			return token.Token{}, errf(begin, "invalid explicit indentation indicator of 0")
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			explicitIndent = int(b - '0')
			s.advance(1)
		default:
			goto headerDone
		}
	}
headerDone:
	s.skipBlanks()
	if b, ok := s.at(0); ok && b == '#' {
		s.skipComment()
	}
	if !s.eof() && s.cur() != '\n' {
		return token.Token{}, errf(begin, "unexpected character in block scalar header")
	}
	if !s.eof() {
		s.advanceNewline()
	}

	baseIndent := -1
	if explicitIndent > 0 {
		baseIndent = minIndent + explicitIndent
	}

	var lines [][]byte
	var trailingBreaks int
	endPos := s.here()
	for {
		if s.eof() {
			break
		}
		lineStart := s.pos
		col := 0
		for !s.eof() && s.cur() == ' ' {
			s.advance(1)
			col++
		}
		if !s.eof() && s.cur() == '\t' && baseIndent < 0 {
			// A tab can't establish the block's indentation level, but is
			// permitted as content once the level is known.
		}
		if s.eof() || s.cur() == '\n' {
			// blank line
			lines = append(lines, nil)
			if !s.eof() {
				s.advanceNewline()
			}
			endPos = s.here()
			continue
		}
		if baseIndent < 0 {
			baseIndent = col
		}
		if col < baseIndent {
			s.pos = lineStart
			s.col = col
			break
		}
		// contentStart starts at baseIndent columns into the line, not at
		// the cursor (which has already consumed every leading space,
		// including any beyond baseIndent): a more-indented line must keep
		// its extra leading spaces as literal content.
		contentStart := lineStart + baseIndent
		for !s.eof() && s.cur() != '\n' {
			s.advance(1)
		}
		lines = append(lines, s.buf[contentStart:s.pos])
		if !s.eof() {
			s.advanceNewline()
		}
		endPos = s.here()
		_ = trailingBreaks
	}
	if baseIndent < 0 {
		baseIndent = minIndent
	}

	text := renderBlockScalar(lines, folded, chomp, baseIndent)
	return token.Token{Kind: token.StringValue, Begin: begin, End: endPos, Raw: text, Scalar: token.ScalarDecoded{Str: text}}, nil
}

// renderBlockScalar assembles the decoded lines per the literal/folded and
// chomping rules. Lines beyond baseIndent keep their extra indentation
// verbatim and are never folded (both literal and folded styles): a
// more-indented line's extra indentation is preserved, prefixed by the
// line break that precedes it.
func renderBlockScalar(lines [][]byte, folded bool, chomp chomping, baseIndent int) string {
	var out []byte
	pendingBreaks := 0
	moreIndented := false
	first := true
	for _, line := range lines {
		if line == nil {
			pendingBreaks++
			continue
		}
		content := line
		extra := len(content) > 0 && (content[0] == ' ' || content[0] == '\t')
		if !first {
			if folded && !extra && !moreIndented {
				if pendingBreaks == 0 {
					out = append(out, ' ')
				} else {
					for i := 0; i < pendingBreaks; i++ {
						out = append(out, '\n')
					}
				}
			} else {
				for i := 0; i < pendingBreaks+1; i++ {
					out = append(out, '\n')
				}
			}
		}
		out = append(out, content...)
		pendingBreaks = 0
		moreIndented = extra
		first = false
	}
	trailing := pendingBreaks + 1
	if first {
		trailing = pendingBreaks
	}

	switch chomp {
	case chompStrip:
		// no trailing break at all
	case chompKeep:
		for i := 0; i < trailing; i++ {
			out = append(out, '\n')
		}
	default: // clip
		if !first || len(out) > 0 {
			out = append(out, '\n')
		}
	}
	return string(out)
}
