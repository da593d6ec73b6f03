package ifc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ErrSyntax is returned for files that are not valid ISO 10303-21 clear text
var ErrSyntax = errors.New("invalid STEP file")

// SyntaxError reports where parsing stopped
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Attribute values. A null ($) attribute is nil.
type (
	// Ref is an instance reference (#123)
	Ref int
	// Enum is an enumeration literal without its dots (.ELEMENT.)
	Enum string
	// Derived is the * placeholder for attributes redeclared as derived
	Derived struct{}
	// Typed is a select value wrapped in its defining type, e.g. IFCLABEL('x')
	Typed struct {
		Type  string
		Value any
	}
)

// Instance is one entity instance of the DATA section
type Instance struct {
	ID   int
	Type string // Upper-case entity name as written in the file
	Args []any
}

// Arg returns the attribute at position i, nil when absent
func (in *Instance) Arg(i int) any {
	if in == nil || i < 0 || i >= len(in.Args) {
		return nil
	}
	return in.Args[i]
}

// RefArg returns the attribute at i as a reference
func (in *Instance) RefArg(i int) (Ref, bool) {
	return AsRef(in.Arg(i))
}

// StringArg returns the attribute at i as a string
func (in *Instance) StringArg(i int) (string, bool) {
	return AsString(in.Arg(i))
}

// FloatArg returns the attribute at i as a number
func (in *Instance) FloatArg(i int) (float64, bool) {
	return AsFloat(in.Arg(i))
}

// EnumArg returns the attribute at i as an enumeration literal
func (in *Instance) EnumArg(i int) (string, bool) {
	return AsEnum(in.Arg(i))
}

// ListArg returns the attribute at i as a list
func (in *Instance) ListArg(i int) []any {
	return AsList(in.Arg(i))
}

// RefsArg returns the references of the list attribute at i, skipping anything else
func (in *Instance) RefsArg(i int) []Ref {
	var refs []Ref
	for _, v := range in.ListArg(i) {
		if r, ok := AsRef(v); ok {
			refs = append(refs, r)
		}
	}
	return refs
}

func unwrap(v any) any {
	for {
		t, ok := v.(Typed)
		if !ok {
			return v
		}
		v = t.Value
	}
}

func AsRef(v any) (Ref, bool) {
	r, ok := v.(Ref)
	return r, ok
}

func AsString(v any) (string, bool) {
	s, ok := unwrap(v).(string)
	return s, ok
}

func AsFloat(v any) (float64, bool) {
	f, ok := unwrap(v).(float64)
	return f, ok
}

func AsEnum(v any) (string, bool) {
	e, ok := unwrap(v).(Enum)
	return string(e), ok
}

func AsList(v any) []any {
	l, _ := unwrap(v).([]any)
	return l
}

// stepFile is the parsed content of an exchange file
type stepFile struct {
	schemas   []string
	instances []*Instance // File order
}

// parser is a recursive-descent reader over the raw bytes
type parser struct {
	data []byte
	pos  int
	line int
}

func parseStep(data []byte) (*stepFile, error) {
	p := &parser{data: data, line: 1}
	f := &stepFile{}

	if err := p.keyword("ISO-10303-21"); err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	if err := p.keyword("HEADER"); err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	if err := p.header(f); err != nil {
		return nil, err
	}

	if err := p.keyword("DATA"); err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	if err := p.dataSection(f); err != nil {
		return nil, err
	}

	return f, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

// skip advances over whitespace and comments
func (p *parser) skip() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '*':
			end := bytes.Index(p.data[p.pos+2:], []byte("*/"))
			if end < 0 {
				p.line += bytes.Count(p.data[p.pos:], []byte{'\n'})
				p.pos = len(p.data)
				return
			}
			stop := p.pos + 2 + end + 2
			p.line += bytes.Count(p.data[p.pos:stop], []byte{'\n'})
			p.pos = stop
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skip()
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.data) {
			return p.errorf("expected %q, got end of file", c)
		}
		return p.errorf("expected %q, got %q", c, p.data[p.pos])
	}
	p.pos++
	return nil
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func (p *parser) name() string {
	p.skip()
	start := p.pos
	for p.pos < len(p.data) && isNameByte(p.data[p.pos]) {
		p.pos++
	}
	return strings.ToUpper(string(p.data[start:p.pos]))
}

func (p *parser) keyword(kw string) error {
	if got := p.name(); got != kw {
		return p.errorf("expected %s, got %q", kw, got)
	}
	return nil
}

// header reads header entities up to ENDSEC, keeping FILE_SCHEMA
func (p *parser) header(f *stepFile) error {
	for {
		name := p.name()
		switch name {
		case "ENDSEC":
			return p.expect(';')
		case "":
			return p.errorf("unterminated HEADER section")
		}

		args, err := p.args()
		if err != nil {
			return err
		}
		if err := p.expect(';'); err != nil {
			return err
		}

		if name == "FILE_SCHEMA" && len(args) > 0 {
			for _, v := range AsList(args[0]) {
				if s, ok := v.(string); ok {
					f.schemas = append(f.schemas, s)
				}
			}
		}
	}
}

// dataSection reads instances up to ENDSEC
func (p *parser) dataSection(f *stepFile) error {
	for {
		switch p.peek() {
		case '#':
		case 0:
			return p.errorf("unterminated DATA section")
		default:
			if name := p.name(); name != "ENDSEC" {
				return p.errorf("expected instance or ENDSEC, got %q", name)
			}
			return p.expect(';')
		}

		in, err := p.instance()
		if err != nil {
			return err
		}
		f.instances = append(f.instances, in)
	}
}

func (p *parser) instance() (*Instance, error) {
	p.pos++ // '#'
	id, err := p.integer()
	if err != nil {
		return nil, err
	}
	if err := p.expect('='); err != nil {
		return nil, err
	}

	in := &Instance{ID: id}
	if p.peek() == '(' {
		// Complex instance: keep the first partial entity
		p.pos++
		for p.peek() != ')' {
			name := p.name()
			if name == "" {
				return nil, p.errorf("malformed complex instance #%d", id)
			}
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			if in.Type == "" {
				in.Type, in.Args = name, args
			}
		}
		p.pos++
	} else {
		in.Type = p.name()
		if in.Type == "" {
			return nil, p.errorf("missing entity name for #%d", id)
		}
		if in.Args, err = p.args(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *parser) integer() (int, error) {
	start := p.pos
	for p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.data[start:p.pos]))
	if err != nil {
		return 0, p.errorf("invalid instance name")
	}
	return n, nil
}

// args reads a parenthesised, comma separated attribute list
func (p *parser) args() ([]any, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	list := []any{}
	if p.peek() == ')' {
		p.pos++
		return list, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		list = append(list, v)

		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return list, nil
		default:
			return nil, p.errorf("expected ',' or ')' in attribute list")
		}
	}
}

func (p *parser) value() (any, error) {
	c := p.peek()
	switch {
	case c == '$':
		p.pos++
		return nil, nil
	case c == '*':
		p.pos++
		return Derived{}, nil
	case c == '#':
		p.pos++
		id, err := p.integer()
		return Ref(id), err
	case c == '\'':
		return p.str()
	case c == '"':
		return p.binary()
	case c == '.':
		return p.enum()
	case c == '(':
		return p.args()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.number()
	case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
		name := p.name()
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		var inner any
		if len(args) > 0 {
			inner = args[0]
		}
		return Typed{Type: name, Value: inner}, nil
	case c == 0:
		return nil, p.errorf("unexpected end of file")
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c := p.data[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'E' || c == 'e' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.data[p.pos-1] == 'E' || p.data[p.pos-1] == 'e') {
			p.pos++
			continue
		}
		break
	}
	text := string(p.data[start:p.pos])
	// STEP reals may end in a bare dot (2.) or carry an exponent without fraction (1.E-3)
	f, err := strconv.ParseFloat(strings.Replace(text, ".E", ".0E", 1), 64)
	if err != nil {
		f, err = strconv.ParseFloat(strings.Replace(text, ".e", ".0e", 1), 64)
	}
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}

func (p *parser) enum() (any, error) {
	p.pos++ // '.'
	start := p.pos
	for p.pos < len(p.data) && isNameByte(p.data[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.data) || p.data[p.pos] != '.' {
		return nil, p.errorf("unterminated enumeration")
	}
	e := Enum(strings.ToUpper(string(p.data[start:p.pos])))
	p.pos++
	return e, nil
}

func (p *parser) binary() (any, error) {
	p.pos++ // '"'
	end := bytes.IndexByte(p.data[p.pos:], '"')
	if end < 0 {
		return nil, p.errorf("unterminated binary")
	}
	s := string(p.data[p.pos : p.pos+end])
	p.pos += end + 1
	return s, nil
}

// str reads a quoted string and decodes the STEP control directives
func (p *parser) str() (any, error) {
	p.pos++ // opening quote
	var raw []byte
	for {
		if p.pos >= len(p.data) {
			return nil, p.errorf("unterminated string")
		}
		c := p.data[p.pos]
		p.pos++
		if c == '\n' {
			p.line++
		}
		if c == '\'' {
			if p.pos < len(p.data) && p.data[p.pos] == '\'' {
				raw = append(raw, '\'')
				p.pos++
				continue
			}
			break
		}
		raw = append(raw, c)
	}
	return decodeString(string(raw)), nil
}

// decodeString resolves \X\, \X2\ and \X4\ escapes and the \\ backslash
func decodeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		case strings.HasPrefix(rest, `\X2\`), strings.HasPrefix(rest, `\X4\`):
			width := 4
			if rest[2] == '4' {
				width = 8
			}
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			hex := rest[4 : 4+end]
			var units []uint16
			for j := 0; j+width <= len(hex); j += width {
				n, err := strconv.ParseUint(hex[j:j+width], 16, 32)
				if err != nil {
					break
				}
				if width == 8 {
					b.WriteRune(rune(n))
				} else {
					units = append(units, uint16(n))
				}
			}
			if len(units) > 0 {
				b.WriteString(string(utf16.Decode(units)))
			}
			i += 4 + end + 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			if n, err := strconv.ParseUint(rest[3:5], 16, 8); err == nil {
				b.WriteRune(rune(n)) // ISO 8859-1 maps onto the first Unicode block
				i += 5
				continue
			}
			b.WriteByte('\\')
			i++
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			b.WriteRune(rune(rest[3]) + 128)
			i += 4
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}
