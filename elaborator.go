package coc

// Elaborate desugars a surface term into the minimal core language:
// grouped binders become nested single-variable binders, n-ary
// application left-folds into binary App, Arrow/Prod expand to their
// non-dependent Pi/Sig forms (§4.D). Elaboration is a pure function of
// its input: calling it twice on the same PTerm yields α-equal core
// terms (§8.3).
func Elaborate(t PTerm) Term {
	switch n := t.(type) {
	case *PSort:
		return &TSort{Sort: n.Sort}
	case *PVar:
		return &TVar{Name: n.Name}
	case *PLambda:
		return elaborateBinders(n.Binders, Elaborate(n.Body), newLam)
	case *PPi:
		return elaborateBinders(n.Binders, Elaborate(n.Body), newPi)
	case *PArrow:
		return &TPi{Name: Anon, Type: Elaborate(n.In), Body: Elaborate(n.Out)}
	case *PPair:
		var asc Term
		if n.Asc != nil {
			asc = Elaborate(n.Asc)
		}
		return &TPair{Fst: Elaborate(n.Fst), Snd: Elaborate(n.Snd), Asc: asc}
	case *PFirst:
		return &TFst{Pair: Elaborate(n.X)}
	case *PSecond:
		return &TSnd{Pair: Elaborate(n.X)}
	case *PSigma:
		return elaborateBinders(n.Binders, Elaborate(n.Body), newSig)
	case *PProd:
		return &TSig{Name: Anon, Type: Elaborate(n.Fst), Body: Elaborate(n.Snd)}
	case *PLet:
		return elaborateLet(n)
	case *PApply:
		return elaborateApply(n.Terms)
	}
	panic("unreachable")
}

func elaborateApply(terms []PTerm) Term {
	app := Elaborate(terms[0])
	for _, arg := range terms[1:] {
		app = &TApp{Fun: app, Arg: Elaborate(arg)}
	}
	return app
}

// elaborateLet desugars `let f (x:A) : B := body in rest` into
// `let f : Π x:A. B := λ x:A. body in rest` — the parameter binders
// apply to both the declared type (via Pi) and the definition (via Lam)
// (§4.D).
func elaborateLet(n *PLet) Term {
	var typ Term
	if n.Type != nil {
		typ = elaborateBinders(n.Params, Elaborate(n.Type), newPi)
	}
	def := elaborateBinders(n.Params, Elaborate(n.Def), newLam)
	return &TLet{Name: n.Name, Type: typ, Def: def, Body: Elaborate(n.Body)}
}

// binderNode builds one binder-level node (Lam, Pi or Sig) around body.
type binderNode func(name string, typ, body Term) Term

func newLam(name string, typ, body Term) Term { return &TLam{Name: name, Type: typ, Body: body} }
func newPi(name string, typ, body Term) Term  { return &TPi{Name: name, Type: typ, Body: body} }
func newSig(name string, typ, body Term) Term { return &TSig{Name: name, Type: typ, Body: body} }

// elaborateBinders right-folds a surface binder list onto an
// already-elaborated body: each BinderVar `(x1 x2 : T)` expands into as
// many nested `ctor` nodes as bound names; each BinderDef `(x : T := d)`
// always expands into a `Let`, regardless of which quantifier it
// appears under, since a definitional binder's meaning doesn't depend on
// whether the surrounding form is a Lam, Pi or Sig (§4.D).
func elaborateBinders(binders []Binder, body Term, ctor binderNode) Term {
	for i := len(binders) - 1; i >= 0; i-- {
		b := binders[i]
		switch b.Kind {
		case BinderVar:
			typ := Elaborate(b.Type)
			for j := len(b.Names) - 1; j >= 0; j-- {
				body = ctor(b.Names[j], typ, body)
			}
		case BinderDef:
			var typ Term
			if b.Type != nil {
				typ = Elaborate(b.Type)
			}
			body = &TLet{Name: b.Names[0], Type: typ, Def: Elaborate(b.Def), Body: body}
		}
	}
	return body
}

// ElaborateDecl turns a surface global declaration into its core
// context element: the type is the Π over all parameter binders, and
// the definition (if any) is the λ over the same binders (§4.D).
func ElaborateDecl(d Decl) Element {
	typ := elaborateBinders(d.Params, Elaborate(d.Type), newPi)
	if d.Kind == GlobalVar {
		return &CtxVar{Name: d.Name, Type: typ}
	}
	def := elaborateBinders(d.Params, Elaborate(d.Def), newLam)
	return &CtxDef{Name: d.Name, Type: typ, Def: def}
}
