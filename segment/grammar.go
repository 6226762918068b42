package segment

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Grammar configures which question labels the locator accepts.
//
//	label := space* digits "."? space* { "(" space* part space* ")" space* }
//	part  := lowercase letters
//
// With Ordered set, parts are limited to an optional single letter followed
// by an optional lowercase roman numeral, as printed on question papers. Without it any
// run of lowercase letters is a part, so 4(abc) is accepted; mark schemes
// nest parts freely and are matched this loosely.
type Grammar struct {
	// MaxParts caps the number of parenthesised sub-parts. Zero means no cap.
	MaxParts int `yaml:"max_parts" json:"max_parts"`
	// Ordered requires the paper convention: an optional single letter part
	// followed by an optional roman numeral part.
	Ordered bool `yaml:"ordered" json:"ordered"`
	// RequireBold only considers spans set in a bold face.
	RequireBold bool `yaml:"require_bold" json:"require_bold"`
}

// Label is a parsed question label such as 4(a)(ii).
type Label struct {
	Base  int
	Parts []string
}

func (l Label) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(l.Base))
	for _, p := range l.Parts {
		b.WriteByte('(')
		b.WriteString(p)
		b.WriteByte(')')
	}
	return b.String()
}

// ParseLabel parses s as a question label under grammar g. The whole of s
// must match; surrounding whitespace is allowed.
func ParseLabel(s string, g Grammar) (Label, bool) {
	p := labelParser{src: []rune(norm.NFKC.String(s))}
	l, ok := p.label()
	if !ok {
		return Label{}, false
	}
	if g.MaxParts > 0 && len(l.Parts) > g.MaxParts {
		return Label{}, false
	}
	if g.Ordered && !orderedParts(l.Parts) {
		return Label{}, false
	}
	return l, true
}

// orderedParts accepts (letter), (roman) and (letter)(roman).
func orderedParts(parts []string) bool {
	switch len(parts) {
	case 0:
		return true
	case 1:
		return len(parts[0]) == 1 || isRoman(parts[0])
	case 2:
		return len(parts[0]) == 1 && isRoman(parts[1])
	default:
		return false
	}
}

func isRoman(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != 'i' && r != 'v' && r != 'x' {
			return false
		}
	}
	return true
}

type labelParser struct {
	src []rune
	pos int
}

func (p *labelParser) label() (Label, bool) {
	p.space()
	base, ok := p.number()
	if !ok {
		return Label{}, false
	}
	p.accept('.')
	p.space()

	l := Label{Base: base}
	for p.peek() == '(' {
		part, ok := p.part()
		if !ok {
			return Label{}, false
		}
		l.Parts = append(l.Parts, part)
		p.space()
	}
	return l, p.pos == len(p.src)
}

func (p *labelParser) number() (int, bool) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *labelParser) part() (string, bool) {
	if !p.accept('(') {
		return "", false
	}
	p.space()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	part := string(p.src[start:p.pos])
	p.space()
	if !p.accept(')') {
		return "", false
	}
	return part, true
}

func (p *labelParser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *labelParser) accept(r rune) bool {
	if p.peek() == r && p.pos < len(p.src) {
		p.pos++
		return true
	}
	return false
}

func (p *labelParser) space() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}
