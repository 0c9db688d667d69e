package coc

import "github.com/samber/lo"

// subst replaces free occurrences of v in t with u, avoiding capture
// (§4.E). Anon ("_") is never a real bound name, so a binder named Anon
// neither shadows nor needs renaming.
func subst(t Term, v string, u Term) Term {
	if v == Anon || !lo.HasKey(fv(t), v) {
		return t
	}
	switch n := t.(type) {
	case *TSort:
		return n
	case *TVar:
		if n.Name == v {
			return u
		}
		return n
	case *TLam:
		name, body := substBinder(n.Name, n.Body, v, u)
		return &TLam{Name: name, Type: subst(n.Type, v, u), Body: body}
	case *TPi:
		name, body := substBinder(n.Name, n.Body, v, u)
		return &TPi{Name: name, Type: subst(n.Type, v, u), Body: body}
	case *TSig:
		name, body := substBinder(n.Name, n.Body, v, u)
		return &TSig{Name: name, Type: subst(n.Type, v, u), Body: body}
	case *TLet:
		var typ Term
		if n.Type != nil {
			typ = subst(n.Type, v, u)
		}
		name, body := substBinder(n.Name, n.Body, v, u)
		return &TLet{Name: name, Type: typ, Def: subst(n.Def, v, u), Body: body}
	case *TPair:
		var asc Term
		if n.Asc != nil {
			asc = subst(n.Asc, v, u)
		}
		return &TPair{Fst: subst(n.Fst, v, u), Snd: subst(n.Snd, v, u), Asc: asc}
	case *TFst:
		return &TFst{Pair: subst(n.Pair, v, u)}
	case *TSnd:
		return &TSnd{Pair: subst(n.Pair, v, u)}
	case *TApp:
		return &TApp{Fun: subst(n.Fun, v, u), Arg: subst(n.Arg, v, u)}
	}
	panic("unreachable")
}

// substBinder implements subst's binder rule for a single bound name x
// over body: shadow, pass through, or freshen-then-substitute. It
// returns the (possibly renamed) binder name alongside the new body,
// since a freshened bound name must also replace the binder's own Name
// or the renamed variable would escape as free (§4.E).
func substBinder(x string, body Term, v string, u Term) (string, Term) {
	if x == Anon {
		return x, subst(body, v, u)
	}
	if x == v {
		return x, body
	}
	if !lo.HasKey(fv(u), x) {
		return x, subst(body, v, u)
	}
	y := freshFor(x, fv(u), fv(body), map[string]bool{v: true})
	renamed := subst(body, x, &TVar{Name: y})
	return y, subst(renamed, v, u)
}
