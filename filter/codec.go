package filter

import (
	"fmt"
	"strings"

	"github.com/friendsofgo/errors"
)

// maxDepth bounds expression nesting so hostile tokens cannot exhaust the
// stack. Serialize nests one level per leaf.
const maxDepth = 1024

// ErrNotConjunctive is returned by Decode for tokens that join expressions
// with anything other than AND. A flat filter list cannot represent them.
var ErrNotConjunctive = errors.New("filter expression is not a conjunction")

// SyntaxError describes a malformed filter token.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Serialize encodes filters into a filter token. An empty list encodes to
// the empty string. A range filter is written as its own AND group wrapped
// in an extra pair of parentheses, so it never reads back as two plain
// bounds:
//
//	((('created',GE,'1'),AND,('created',LE,'9')))
func Serialize(filters []Filter) string {
	if len(filters) == 0 {
		return ""
	}

	var b strings.Builder
	// Left nesting: every filter after the first closes one extra group.
	for i := 1; i < len(filters); i++ {
		b.WriteByte('(')
	}
	writeFilter(&b, filters[0])
	for _, f := range filters[1:] {
		b.WriteString(",")
		b.WriteString(string(And))
		b.WriteString(",")
		writeFilter(&b, f)
		b.WriteByte(')')
	}

	return b.String()
}

func writeFilter(b *strings.Builder, f Filter) {
	if !f.IsRange() {
		writeLeaf(b, f)
		return
	}

	leaves := f.Leaves()
	b.WriteString("((")
	writeLeaf(b, leaves[0])
	b.WriteString(",")
	b.WriteString(string(And))
	b.WriteString(",")
	writeLeaf(b, leaves[1])
	b.WriteString("))")
}

func writeLeaf(b *strings.Builder, f Filter) {
	b.WriteByte('(')
	writeQuoted(b, f.ColumnName)
	b.WriteByte(',')
	b.WriteString(string(f.Operator))
	b.WriteByte(',')
	writeQuoted(b, f.Value)
	b.WriteByte(')')
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
}

// Decode parses a filter token into its filter list. Plain leaves decode as
// plain filters; only a parenthesized group of two bounds on one column
// decodes as a range filter. The empty token decodes to an empty list.
func Decode(token string) ([]Filter, error) {
	if strings.TrimSpace(token) == "" {
		return []Filter{}, nil
	}

	p := &parser{src: token}
	filters, err := p.expr(0)
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}

	return filters, nil
}

// Parse is Decode for display code: a malformed token yields an empty list.
func Parse(token string) []Filter {
	filters, err := Decode(token)
	if err != nil {
		return []Filter{}
	}
	return filters
}

// Valid reports whether token decodes.
func Valid(token string) bool {
	_, err := Decode(token)
	return err == nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, found end of input", c)
		}
		return p.errorf("expected %q, found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

// expr parses a leaf ('col',OP,'val'), a group (expr,CONJ,expr) or a
// parenthesized range (group) and returns the filters in order.
func (p *parser) expr(depth int) ([]Filter, error) {
	if depth > maxDepth {
		return nil, p.errorf("expression nested too deeply")
	}

	if err := p.expect('('); err != nil {
		return nil, err
	}

	if p.peek() == '\'' {
		leaf, err := p.leaf()
		if err != nil {
			return nil, err
		}
		return []Filter{leaf}, nil
	}

	start := p.pos
	left, err := p.expr(depth + 1)
	if err != nil {
		return nil, err
	}

	if p.peek() == ')' {
		p.pos++
		return p.rangeFilter(start, left)
	}

	if err := p.expect(','); err != nil {
		return nil, err
	}

	start = p.pos
	conj := Conjunction(p.word())
	switch conj {
	case And:
	case Or:
		return nil, errors.Wrapf(ErrNotConjunctive, "offset %d", start)
	default:
		p.pos = start
		return nil, p.errorf("unknown conjunction %q", string(conj))
	}

	if err := p.expect(','); err != nil {
		return nil, err
	}

	right, err := p.expr(depth + 1)
	if err != nil {
		return nil, err
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}

	return append(left, right...), nil
}

// rangeFilter joins the contents of a parenthesized group into one range
// filter. The group must hold exactly two plain bounds on the same column.
func (p *parser) rangeFilter(start int, inner []Filter) ([]Filter, error) {
	if len(inner) != 2 || inner[0].IsRange() || inner[1].IsRange() ||
		inner[0].ColumnName != inner[1].ColumnName {
		return nil, &SyntaxError{Offset: start, Msg: "parenthesized group is not a range of two bounds on one column"}
	}

	f := inner[0]
	f.Operator2 = inner[1].Operator
	f.Value2 = inner[1].Value
	return []Filter{f}, nil
}

// leaf parses the remainder of a leaf after its opening parenthesis.
func (p *parser) leaf() (Filter, error) {
	column, err := p.quoted()
	if err != nil {
		return Filter{}, err
	}
	if column == "" {
		return Filter{}, p.errorf("empty column name")
	}

	if err := p.expect(','); err != nil {
		return Filter{}, err
	}

	start := p.pos
	op, err := ParseOperator(p.word())
	if err != nil {
		p.pos = start
		return Filter{}, p.errorf("%s", err.Error())
	}

	if err := p.expect(','); err != nil {
		return Filter{}, err
	}

	value, err := p.quoted()
	if err != nil {
		return Filter{}, err
	}

	if err := p.expect(')'); err != nil {
		return Filter{}, err
	}

	return Filter{ColumnName: column, Operator: op, Value: value}, nil
}

// word reads a bare uppercase token such as an operator or a conjunction.
func (p *parser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= 'A' && p.src[p.pos] <= 'Z' {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	if err := p.expect('\''); err != nil {
		return "", err
	}

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case '\'':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}

	return "", p.errorf("unterminated string")
}
