package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Signature is a parsed function signature string such as
// "static get(key: K, fallback: V) => V".
type Signature struct {
	Name   string
	Static bool
	Spec   *FuncSpec
}

// ParseType parses a type string: dotted names with optional generic
// arguments, or function types "(A, B) => R".
func ParseType(a *Arena, src string) (Type, error) {
	p := &typeParser{arena: a, src: src}
	p.next()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return t, nil
}

// ParseSignature parses a function signature. A missing return type means
// Void.
func ParseSignature(a *Arena, src string) (*Signature, error) {
	p := &typeParser{arena: a, src: src}
	p.next()
	sig := &Signature{}
	if p.tok.kind == tokIdent && p.tok.text == "static" {
		sig.Static = true
		p.next()
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected function name")
	}
	sig.Name = p.tok.text
	p.next()
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var params []*Param
	for p.tok.text != ")" {
		if len(params) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		if p.tok.kind != tokIdent {
			return nil, p.errorf("expected parameter name")
		}
		name := p.tok.text
		p.next()
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		param := a.Param(name, t)
		if p.tok.text == "..." {
			param.Variadic = true
			p.next()
		}
		params = append(params, param)
	}
	p.next()
	var ret Type
	if p.tok.text == "=>" {
		p.next()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = t
	} else {
		ret = a.Named("Void")
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	sig.Spec = a.Spec(ret, params...)
	return sig, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
}

type typeParser struct {
	arena *Arena
	src   string
	pos   int
	tok   token
}

func (p *typeParser) errorf(format string, args ...any) error {
	return errors.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) expect(text string) error {
	if p.tok.text != text || p.tok.kind != tokPunct {
		return p.errorf("expected %q, got %q", text, p.tok.text)
	}
	p.next()
	return nil
}

func (p *typeParser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF}
		return
	}
	start := p.pos
	c := rune(p.src[p.pos])
	switch {
	case c == '_' || unicode.IsLetter(c) || c == '~':
		p.pos++
		for p.pos < len(p.src) {
			r := rune(p.src[p.pos])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			p.pos++
		}
		p.tok = token{tokIdent, p.src[start:p.pos]}
	case unicode.IsDigit(c) || c == '-':
		p.pos++
		for p.pos < len(p.src) && unicode.IsDigit(rune(p.src[p.pos])) {
			p.pos++
		}
		p.tok = token{tokInt, p.src[start:p.pos]}
	case c == '"':
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] != '"' {
			p.pos++
		}
		p.pos++
		if p.pos > len(p.src) {
			p.pos = len(p.src)
		}
		p.tok = token{tokString, p.src[start:p.pos]}
	case strings.HasPrefix(p.src[p.pos:], "=>"), strings.HasPrefix(p.src[p.pos:], "..."):
		n := 2
		if c == '.' {
			n = 3
		}
		p.pos += n
		p.tok = token{tokPunct, p.src[start:p.pos]}
	default:
		p.pos++
		p.tok = token{tokPunct, p.src[start:p.pos]}
	}
}

func (p *typeParser) parseType() (Type, error) {
	if p.tok.kind == tokPunct && p.tok.text == "(" {
		p.next()
		var params []*Param
		for p.tok.text != ")" {
			if len(params) > 0 {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, p.arena.Param("_"+strconv.Itoa(len(params)), t))
		}
		p.next()
		if err := p.expect("=>"); err != nil {
			return nil, err
		}
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return p.arena.Spec(ret, params...), nil
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected type name, got %q", p.tok.text)
	}
	path := []string{p.tok.text}
	p.next()
	for p.tok.text == "." {
		p.next()
		if p.tok.kind != tokIdent {
			return nil, p.errorf("expected name after '.'")
		}
		path = append(path, p.tok.text)
		p.next()
	}
	t := p.arena.UserType(path)
	if p.tok.text == "<" {
		p.next()
		for p.tok.text != ">" {
			if len(t.GenericArgs) > 0 {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseGenericArg()
			if err != nil {
				return nil, err
			}
			t.GenericArgs = append(t.GenericArgs, arg)
		}
		p.next()
	}
	return t, nil
}

func (p *typeParser) parseGenericArg() (*GenericArg, error) {
	switch p.tok.kind {
	case tokInt:
		v, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("bad literal %q", p.tok.text)
		}
		p.next()
		return p.arena.LiteralArg(p.arena.Int(v)), nil
	case tokString:
		s, err := strconv.Unquote(p.tok.text)
		if err != nil {
			return nil, p.errorf("bad literal %s", p.tok.text)
		}
		p.next()
		return p.arena.LiteralArg(p.arena.Str(s)), nil
	case tokEOF:
		return nil, p.errorf("unterminated generic argument list")
	}
	if p.tok.text == "[" {
		p.next()
		var types []Type
		for p.tok.text != "]" {
			if len(types) > 0 {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			types = append(types, t)
		}
		p.next()
		return p.arena.VariadicArg(types...), nil
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	arg := p.arena.TypeArg(t)
	if u, ok := t.(*UserType); ok && len(u.Path) == 1 && len(u.GenericArgs) == 0 {
		arg.MayBeTypeParam = true
	}
	return arg, nil
}
