package coc

import "slices"

// whnf reduces t to weak-head normal form: β at the head of an
// application, Σ-projection on a literal pair, and ζ at a Let, leaving
// everything else alone (§4.F).
func whnf(t Term) Term {
	switch n := t.(type) {
	case *TApp:
		fun := whnf(n.Fun)
		if lam, ok := fun.(*TLam); ok {
			return whnf(subst(lam.Body, lam.Name, n.Arg))
		}
		return &TApp{Fun: fun, Arg: n.Arg}
	case *TFst:
		if pair, ok := whnf(n.Pair).(*TPair); ok {
			return whnf(pair.Fst)
		}
		return n
	case *TSnd:
		if pair, ok := whnf(n.Pair).(*TPair); ok {
			return whnf(pair.Snd)
		}
		return n
	case *TLet:
		return whnf(subst(n.Body, n.Name, n.Def))
	default:
		return t
	}
}

// dszNF computes the definitional normal form under ctx: it descends
// structurally, additionally expanding δ (named definitions, looked up
// local-then-global, right to left) and driving ζ under binders (§4.F).
func dszNF(ctx JudgContext, t Term) Term {
	switch n := t.(type) {
	case *TSort:
		return n
	case *TVar:
		e, ok := dszLookup(ctx, n.Name)
		if !ok {
			return n
		}
		if d, ok := e.(*CtxDef); ok {
			return dszNF(ctx, d.Def)
		}
		return n
	case *TLam:
		return &TLam{Name: n.Name, Type: dszNF(ctx, n.Type), Body: dszNF(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)}
	case *TPi:
		return &TPi{Name: n.Name, Type: dszNF(ctx, n.Type), Body: dszNF(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)}
	case *TSig:
		return &TSig{Name: n.Name, Type: dszNF(ctx, n.Type), Body: dszNF(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)}
	case *TLet:
		def := dszNF(ctx, n.Def)
		return dszNF(ctx.withLocal(&CtxDef{Name: n.Name, Def: def}), n.Body)
	case *TPair:
		var asc Term
		if n.Asc != nil {
			asc = dszNF(ctx, n.Asc)
		}
		return &TPair{Fst: dszNF(ctx, n.Fst), Snd: dszNF(ctx, n.Snd), Asc: asc}
	case *TFst:
		if pair, ok := dszNF(ctx, n.Pair).(*TPair); ok {
			return pair.Fst
		}
		return &TFst{Pair: dszNF(ctx, n.Pair)}
	case *TSnd:
		if pair, ok := dszNF(ctx, n.Pair).(*TPair); ok {
			return pair.Snd
		}
		return &TSnd{Pair: dszNF(ctx, n.Pair)}
	case *TApp:
		fun := dszNF(ctx, n.Fun)
		if lam, ok := fun.(*TLam); ok {
			return dszNF(ctx, subst(lam.Body, lam.Name, n.Arg))
		}
		return &TApp{Fun: fun, Arg: dszNF(ctx, n.Arg)}
	}
	panic("unreachable")
}

// dszLookup finds name's element in ctx, local list before global, last
// entry before earlier ones (rightmost wins). It searches a reversed
// copy of each list with slices.IndexFunc rather than hand-rolling the
// backward scan.
func dszLookup(ctx JudgContext, name string) (Element, bool) {
	if e, ok := lookupRightmost(ctx.Local, name); ok {
		return e, true
	}
	return lookupRightmost(ctx.Global, name)
}

func lookupRightmost(elems []Element, name string) (Element, bool) {
	rev := slices.Clone(elems)
	slices.Reverse(rev)
	i := slices.IndexFunc(rev, func(e Element) bool { return e.elementName() == name })
	if i < 0 {
		return nil, false
	}
	return rev[i], true
}

// conv decides definitional equality of t and u under ctx: normalize
// both sides (dszNF then whnf), and if exactly one side is a Lam,
// η-expand the other before comparing bodies; otherwise fall back to
// α-equivalence (§4.F).
func conv(ctx JudgContext, t, u Term) bool {
	nt := whnf(dszNF(ctx, t))
	nu := whnf(dszNF(ctx, u))

	lt, tIsLam := nt.(*TLam)
	lu, uIsLam := nu.(*TLam)

	switch {
	case tIsLam && !uIsLam:
		fresh := freshFor(lt.Name, fv(lt.Body), fv(nu))
		x := &TVar{Name: fresh}
		return conv(ctx.withLocal(&CtxVar{Name: fresh, Type: lt.Type}), subst(lt.Body, lt.Name, x), &TApp{Fun: nu, Arg: x})
	case !tIsLam && uIsLam:
		fresh := freshFor(lu.Name, fv(lu.Body), fv(nt))
		x := &TVar{Name: fresh}
		return conv(ctx.withLocal(&CtxVar{Name: fresh, Type: lu.Type}), &TApp{Fun: nt, Arg: x}, subst(lu.Body, lu.Name, x))
	default:
		return alphaEq(nt, nu)
	}
}
