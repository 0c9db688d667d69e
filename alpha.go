package coc

import (
	"strconv"

	"github.com/cznic/mathutil"
	"github.com/samber/lo"
)

// fv collects the names that occur free in t: a Var not under a binder
// for its own name (§4.E).
func fv(t Term) map[string]bool {
	out := map[string]bool{}
	var walk func(t Term, bound map[string]bool)
	walk = func(t Term, bound map[string]bool) {
		switch n := t.(type) {
		case *TSort:
		case *TVar:
			if !lo.HasKey(bound, n.Name) {
				out[n.Name] = true
			}
		case *TLam:
			walk(n.Type, bound)
			walk(n.Body, extendBound(bound, n.Name))
		case *TPi:
			walk(n.Type, bound)
			walk(n.Body, extendBound(bound, n.Name))
		case *TSig:
			walk(n.Type, bound)
			walk(n.Body, extendBound(bound, n.Name))
		case *TLet:
			if n.Type != nil {
				walk(n.Type, bound)
			}
			walk(n.Def, bound)
			walk(n.Body, extendBound(bound, n.Name))
		case *TPair:
			walk(n.Fst, bound)
			walk(n.Snd, bound)
			if n.Asc != nil {
				walk(n.Asc, bound)
			}
		case *TFst:
			walk(n.Pair, bound)
		case *TSnd:
			walk(n.Pair, bound)
		case *TApp:
			walk(n.Fun, bound)
			walk(n.Arg, bound)
		}
	}
	walk(t, nil)
	return out
}

func extendBound(bound map[string]bool, name string) map[string]bool {
	if name == Anon {
		return bound
	}
	return lo.Assign(bound, map[string]bool{name: true})
}

// freshen derives a name not present in avoid by stripping an optional
// trailing `_<digits>` suffix from base and incrementing it until the
// first non-colliding candidate is found (§4.E).
func freshen(base string, avoid map[string]bool) string {
	if !avoid[base] {
		return base
	}
	root, n := splitSuffix(base)
	for {
		n++
		cand := root + "_" + strconv.Itoa(n)
		if !avoid[cand] {
			return cand
		}
	}
}

// splitSuffix strips a trailing `_<digits>` suffix from name, returning
// the stem and the parsed counter (0 if there was none). The parsed
// value is clamped against overflow before use as a starting counter.
func splitSuffix(name string) (string, int) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 0 || name[i-1] != '_' {
		return name, 0
	}
	digits := name[i:]
	stem := name[:i-1]
	v, err := strconv.Atoi(digits)
	if err != nil {
		return name, 0
	}
	return stem, mathutil.Clamp(v, 0, mathutil.MaxInt-1)
}

// freshFor picks a name not occurring in any of the given sets, seeded
// from base.
func freshFor(base string, sets ...map[string]bool) string {
	return freshen(base, lo.Assign(sets...))
}

// alphaEq decides definitional α-equivalence between core terms: bound
// names are irrelevant, everything else must match structurally (§4.E).
func alphaEq(t, u Term) bool {
	switch a := t.(type) {
	case *TSort:
		b, ok := u.(*TSort)
		return ok && a.Sort == b.Sort
	case *TVar:
		b, ok := u.(*TVar)
		return ok && a.Name == b.Name
	case *TLam:
		b, ok := u.(*TLam)
		return ok && alphaEq(a.Type, b.Type) && alphaEqBinder(a.Name, a.Body, b.Name, b.Body)
	case *TPi:
		b, ok := u.(*TPi)
		return ok && alphaEq(a.Type, b.Type) && alphaEqBinder(a.Name, a.Body, b.Name, b.Body)
	case *TSig:
		b, ok := u.(*TSig)
		return ok && alphaEq(a.Type, b.Type) && alphaEqBinder(a.Name, a.Body, b.Name, b.Body)
	case *TLet:
		b, ok := u.(*TLet)
		if !ok {
			return false
		}
		if (a.Type == nil) != (b.Type == nil) {
			return false
		}
		if a.Type != nil && !alphaEq(a.Type, b.Type) {
			return false
		}
		return alphaEq(a.Def, b.Def) && alphaEqBinder(a.Name, a.Body, b.Name, b.Body)
	case *TPair:
		b, ok := u.(*TPair)
		if !ok || !alphaEq(a.Fst, b.Fst) || !alphaEq(a.Snd, b.Snd) {
			return false
		}
		if (a.Asc == nil) != (b.Asc == nil) {
			return false
		}
		return a.Asc == nil || alphaEq(a.Asc, b.Asc)
	case *TFst:
		b, ok := u.(*TFst)
		return ok && alphaEq(a.Pair, b.Pair)
	case *TSnd:
		b, ok := u.(*TSnd)
		return ok && alphaEq(a.Pair, b.Pair)
	case *TApp:
		b, ok := u.(*TApp)
		return ok && alphaEq(a.Fun, b.Fun) && alphaEq(a.Arg, b.Arg)
	}
	return false
}

// alphaEqBinder compares two single-name binder bodies under a shared
// fresh name, per §4.E's binding-form rule.
func alphaEqBinder(xName string, xBody Term, yName string, yBody Term) bool {
	fresh := freshFor("x", fv(xBody), fv(yBody), map[string]bool{xName: true, yName: true})
	freshVar := &TVar{Name: fresh}
	return alphaEq(substVar(xBody, xName, freshVar), substVar(yBody, yName, freshVar))
}

// substVar substitutes name with repl throughout t; name == Anon is
// never bound, so it is left untouched.
func substVar(t Term, name string, repl Term) Term {
	if name == Anon {
		return t
	}
	return subst(t, name, repl)
}
