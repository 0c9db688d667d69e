package coc

import "fmt"

// ParseError is the structured failure of the parse phase (§7):
// UnexpectedToken(expected, actual). The parser does not recover; it
// returns the first error with its source position.
type ParseError struct {
	Expected string
	Actual   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, but got %s at %s", e.Expected, e.Actual.Kind, e.Actual.Range.Start)
}

func newParseError(expected string, actual Token) *ParseError {
	return &ParseError{Expected: expected, Actual: actual}
}

// ParseProgram tokenizes and parses source into a Program, the parser's
// top-level output (§4.B). ParseProgramTraced does the same with an
// optional Tracer attached to the parser for diagnostics.
func ParseProgram(source string) (*Program, error) {
	return ParseProgramTraced(source, nil)
}

func ParseProgramTraced(source string, tracer *Tracer) (*Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens)
	p.tracer = tracer
	return p.ParseProgram()
}

// Parser is a recursive-descent LL(1) parser with one token of
// lookahead (§4.B).
type Parser struct {
	tokens []Token
	index  int
	tracer *Tracer
}

func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		tokens = append(tokens, Token{Kind: EOF})
	}
	return &Parser{tokens: tokens}
}

func (p *Parser) WithTracer(t *Tracer) *Parser {
	p.tracer = t
	return p
}

func (p *Parser) ParseProgram() (*Program, error) {
	ok := false
	defer p.trace("Program")(&ok)
	decls := []Decl{}
	for p.next().Kind != EOF {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	ok = true
	return &Program{Decls: decls}, nil
}

func (p *Parser) parseDecl() (Decl, error) {
	ok := false
	defer p.trace("Decl")(&ok)
	start := p.next().Range.Start

	kind := GlobalDef
	switch p.next().Kind {
	case KwDef:
		p.advance()
	case KwVar:
		kind = GlobalVar
		p.advance()
	}

	name, err := p.match(IDENT)
	if err != nil {
		return Decl{}, err
	}
	params, err := p.parseClosedBinders()
	if err != nil {
		return Decl{}, err
	}
	if _, err := p.match(Colon); err != nil {
		return Decl{}, err
	}
	typ, err := p.parseTerm()
	if err != nil {
		return Decl{}, err
	}

	var def PTerm
	switch kind {
	case GlobalDef:
		if _, err := p.match(ColonEq); err != nil {
			return Decl{}, err
		}
		def, err = p.parseTerm()
		if err != nil {
			return Decl{}, err
		}
	case GlobalVar:
		if p.next().Kind == ColonEq {
			return Decl{}, newParseError("';' (var forbids :=)", p.next())
		}
	}

	semi, err := p.match(Semi)
	if err != nil {
		return Decl{}, err
	}

	ok = true
	return Decl{
		Kind:   kind,
		Name:   name.Content,
		Params: params,
		Type:   typ,
		Def:    def,
		Local:  flattenBinders(params),
		Range:  Range{Start: start, End: semi.Range.End},
	}, nil
}

// parseClosedBinders parses ClosedBinder* (§4.B).
func (p *Parser) parseClosedBinders() ([]Binder, error) {
	binders := []Binder{}
	for p.next().Kind == LParen {
		b, err := p.parseClosedBinder()
		if err != nil {
			return nil, err
		}
		binders = append(binders, b)
	}
	return binders, nil
}

// parseBinders parses Binder+ after a quantifier/lambda/let keyword: a
// single OpenBinder, or one-or-more ClosedBinders (§4.B; the open form is
// valid only as the sole binder of the group — see DESIGN.md).
func (p *Parser) parseBinders() ([]Binder, error) {
	if p.next().Kind == IDENT {
		b, err := p.parseOpenBinder()
		if err != nil {
			return nil, err
		}
		return []Binder{b}, nil
	}
	binders, err := p.parseClosedBinders()
	if err != nil {
		return nil, err
	}
	if len(binders) == 0 {
		return nil, newParseError("binder", p.next())
	}
	return binders, nil
}

func (p *Parser) parseOpenBinder() (Binder, error) {
	start := p.next().Range.Start
	names := []string{}
	for p.next().Kind == IDENT {
		names = append(names, p.advance().Content)
	}
	if len(names) == 0 {
		return Binder{}, newParseError("identifier", p.next())
	}
	if _, err := p.match(Colon); err != nil {
		return Binder{}, err
	}
	typ, err := p.parseTerm()
	if err != nil {
		return Binder{}, err
	}
	return Binder{Kind: BinderVar, Names: names, Type: typ, Range: Range{Start: start, End: typ.Pos().End}}, nil
}

func (p *Parser) parseClosedBinder() (Binder, error) {
	lp := p.advance() // consume '('
	first, err := p.match(IDENT)
	if err != nil {
		return Binder{}, err
	}
	names := []string{first.Content}

	if p.next().Kind == ColonEq {
		p.advance()
		def, err := p.parseTerm()
		if err != nil {
			return Binder{}, err
		}
		rp, err := p.match(RParen)
		if err != nil {
			return Binder{}, err
		}
		return Binder{Kind: BinderDef, Names: names, Def: def, Range: Range{Start: lp.Range.Start, End: rp.Range.End}}, nil
	}

	for p.next().Kind == IDENT {
		names = append(names, p.advance().Content)
	}
	if _, err := p.match(Colon); err != nil {
		return Binder{}, err
	}
	typ, err := p.parseTerm()
	if err != nil {
		return Binder{}, err
	}
	if p.next().Kind == ColonEq && len(names) == 1 {
		p.advance()
		def, err := p.parseTerm()
		if err != nil {
			return Binder{}, err
		}
		rp, err := p.match(RParen)
		if err != nil {
			return Binder{}, err
		}
		return Binder{Kind: BinderDef, Names: names, Type: typ, Def: def, Range: Range{Start: lp.Range.Start, End: rp.Range.End}}, nil
	}
	rp, err := p.match(RParen)
	if err != nil {
		return Binder{}, err
	}
	return Binder{Kind: BinderVar, Names: names, Type: typ, Range: Range{Start: lp.Range.Start, End: rp.Range.End}}, nil
}

func (p *Parser) parseTerm() (PTerm, error) {
	ok := false
	defer p.trace("Term")(&ok)
	switch p.next().Kind {
	case KwFun:
		fun := p.advance()
		binders, err := p.parseBinders()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(FatArrow); err != nil {
			return nil, err
		}
		body, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ok = true
		return &PLambda{Binders: binders, Body: body, Range: Range{Start: fun.Range.Start, End: body.Pos().End}}, nil
	case KwForall:
		kw := p.advance()
		binders, err := p.parseBinders()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(Comma); err != nil {
			return nil, err
		}
		body, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ok = true
		return &PPi{Binders: binders, Body: body, Range: Range{Start: kw.Range.Start, End: body.Pos().End}}, nil
	case KwExist:
		kw := p.advance()
		binders, err := p.parseBinders()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(Comma); err != nil {
			return nil, err
		}
		body, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ok = true
		return &PSigma{Binders: binders, Body: body, Range: Range{Start: kw.Range.Start, End: body.Pos().End}}, nil
	case KwLet:
		kw := p.advance()
		name, err := p.match(IDENT)
		if err != nil {
			return nil, err
		}
		params, err := p.parseClosedBinders()
		if err != nil {
			return nil, err
		}
		var typ PTerm
		if p.next().Kind == Colon {
			p.advance()
			typ, err = p.parseTerm()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.match(ColonEq); err != nil {
			return nil, err
		}
		def, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(KwIn); err != nil {
			return nil, err
		}
		body, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ok = true
		return &PLet{Name: name.Content, Params: params, Type: typ, Def: def, Body: body, Range: Range{Start: kw.Range.Start, End: body.Pos().End}}, nil
	default:
		t, err := p.parseArrow()
		if err != nil {
			return nil, err
		}
		ok = true
		return t, nil
	}
}

// parseArrow implements `Arrow ::= Prod ("->" Term)?`, right-associative
// since the rhs is a full Term (§4.B).
func (p *Parser) parseArrow() (PTerm, error) {
	lhs, err := p.parseProd()
	if err != nil {
		return nil, err
	}
	if p.next().Kind == Arrow {
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &PArrow{In: lhs, Out: rhs, Range: Range{Start: lhs.Pos().Start, End: rhs.Pos().End}}, nil
	}
	return lhs, nil
}

// parseProd implements `Prod ::= App ("&" App)*`, left-associative.
func (p *Parser) parseProd() (PTerm, error) {
	lhs, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	for p.next().Kind == Amp {
		p.advance()
		rhs, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		lhs = &PProd{Fst: lhs, Snd: rhs, Range: Range{Start: lhs.Pos().Start, End: rhs.Pos().End}}
	}
	return lhs, nil
}

// parseApp implements `App ::= Proj Proj*`, left-associative n-ary
// application (§4.B); a single Proj with no further operands is returned
// unwrapped.
func (p *Parser) parseApp() (PTerm, error) {
	first, err := p.parseProj()
	if err != nil {
		return nil, err
	}
	terms := []PTerm{first}
	for startsAtom(p.next().Kind) {
		t, err := p.parseProj()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &PApply{Terms: terms, Range: Range{Start: terms[0].Pos().Start, End: terms[len(terms)-1].Pos().End}}, nil
}

// parseProj implements `Proj ::= Atom (".1" | ".2")*`.
func (p *Parser) parseProj() (PTerm, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.next().Kind == Dot1 || p.next().Kind == Dot2 {
		tok := p.advance()
		r := Range{Start: atom.Pos().Start, End: tok.Range.End}
		if tok.Kind == Dot1 {
			atom = &PFirst{X: atom, Range: r}
		} else {
			atom = &PSecond{X: atom, Range: r}
		}
	}
	return atom, nil
}

func (p *Parser) parseAtom() (PTerm, error) {
	ok := false
	defer p.trace("Atom")(&ok)
	t := p.next()
	switch t.Kind {
	case KwProp:
		p.advance()
		ok = true
		return &PSort{Sort: Prop, Range: t.Range}, nil
	case KwType:
		p.advance()
		ok = true
		return &PSort{Sort: Type, Range: t.Range}, nil
	case IDENT:
		p.advance()
		ok = true
		return &PVar{Name: t.Content, Range: t.Range}, nil
	case LParen:
		p.advance()
		inner, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(RParen); err != nil {
			return nil, err
		}
		ok = true
		return inner, nil
	case Langle:
		p.advance()
		fst, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(Comma); err != nil {
			return nil, err
		}
		snd, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		rangle, err := p.match(Rangle)
		if err != nil {
			return nil, err
		}
		end := rangle.Range.End
		var asc PTerm
		if p.next().Kind == Colon {
			p.advance()
			asc, err = p.parseTerm()
			if err != nil {
				return nil, err
			}
			end = asc.Pos().End
		}
		ok = true
		return &PPair{Fst: fst, Snd: snd, Asc: asc, Range: Range{Start: t.Range.Start, End: end}}, nil
	}
	return nil, newParseError("term", t)
}

func startsAtom(k TokenKind) bool {
	switch k {
	case KwProp, KwType, IDENT, LParen, Langle:
		return true
	}
	return false
}

func (p *Parser) next() Token {
	if p.index >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.index]
}

func (p *Parser) advance() Token {
	t := p.next()
	if p.index < len(p.tokens)-1 {
		p.index++
	}
	return t
}

func (p *Parser) match(k TokenKind) (Token, error) {
	t := p.next()
	if t.Kind != k {
		return Token{}, newParseError(k.String(), t)
	}
	return p.advance(), nil
}
