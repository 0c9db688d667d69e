package coc

import "fmt"

// TypeError is the structured failure of the type-checking phase (§7).
type TypeError struct {
	Kind     TypeErrorKind
	Name     string // UnboundVariable
	Term     Term   // ExpectedSort/ExpectedPi/ExpectedSigma: the offending term
	Type     Term   // ExpectedPi/ExpectedSigma: its actual inferred type
	S0, S1   Sort   // ImpossibleCombination
	Expected Term   // TypeMismatch
	Actual   Term   // TypeMismatch
}

type TypeErrorKind int

const (
	TypeHasNoType TypeErrorKind = iota
	UnboundVariable
	ExpectedSort
	ExpectedPi
	ExpectedSigma
	ImpossibleCombination
	TypeMismatch
)

func (e *TypeError) Error() string {
	switch e.Kind {
	case TypeHasNoType:
		return "Type has no type"
	case UnboundVariable:
		return fmt.Sprintf("unbound variable %q", e.Name)
	case ExpectedSort:
		return "expected a sort"
	case ExpectedPi:
		return "expected a Pi type"
	case ExpectedSigma:
		return "expected a Sigma type"
	case ImpossibleCombination:
		return fmt.Sprintf("impossible sort combination (%s, %s)", e.S0, e.S1)
	case TypeMismatch:
		return "type mismatch"
	}
	panic("unreachable")
}

// WFError wraps the first failure encountered while checking a
// JudgContext's well-formedness, tagging the offending element (§4.G).
type WFError struct {
	Err error
	At  Element
}

func (e *WFError) Error() string { return fmt.Sprintf("%s: %v", e.At.elementName(), e.Err) }
func (e *WFError) Unwrap() error { return e.Err }

// infer derives the type of t under ctx, or a TypeError (§4.G).
func infer(ctx JudgContext, t Term) (Term, error) {
	switch n := t.(type) {
	case *TSort:
		if n.Sort == Prop {
			return &TSort{Sort: Type}, nil
		}
		return nil, &TypeError{Kind: TypeHasNoType}
	case *TVar:
		e, ok := ctx.lookup(n.Name)
		if !ok {
			return nil, &TypeError{Kind: UnboundVariable, Name: n.Name}
		}
		return e.elementType(), nil
	case *TLam:
		bodyType, err := infer(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)
		if err != nil {
			return nil, err
		}
		pi := &TPi{Name: n.Name, Type: n.Type, Body: bodyType}
		if _, err := inferSort(ctx, pi); err != nil {
			return nil, err
		}
		return pi, nil
	case *TPi:
		if _, err := inferSort(ctx, n.Type); err != nil {
			return nil, err
		}
		s1, err := inferSort(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)
		if err != nil {
			return nil, err
		}
		return &TSort{Sort: s1}, nil
	case *TSig:
		s0, err := inferSort(ctx, n.Type)
		if err != nil {
			return nil, err
		}
		s1, err := inferSort(ctx.withLocal(&CtxVar{Name: n.Name, Type: n.Type}), n.Body)
		if err != nil {
			return nil, err
		}
		if !((s0 == Prop && s1 == Prop) || s1 == Type) {
			return nil, &TypeError{Kind: ImpossibleCombination, S0: s0, S1: s1}
		}
		return &TSort{Sort: s1}, nil
	case *TPair:
		if n.Asc != nil {
			if err := check(ctx, t, n.Asc); err != nil {
				return nil, err
			}
			return n.Asc, nil
		}
		fstType, err := infer(ctx, n.Fst)
		if err != nil {
			return nil, err
		}
		sndType, err := infer(ctx, n.Snd)
		if err != nil {
			return nil, err
		}
		return &TSig{Name: Anon, Type: fstType, Body: sndType}, nil
	case *TFst:
		pairType, err := infer(ctx, n.Pair)
		if err != nil {
			return nil, err
		}
		sig, ok := whnf(dszNF(ctx, pairType)).(*TSig)
		if !ok {
			return nil, &TypeError{Kind: ExpectedSigma, Term: n.Pair, Type: pairType}
		}
		return sig.Type, nil
	case *TSnd:
		pairType, err := infer(ctx, n.Pair)
		if err != nil {
			return nil, err
		}
		sig, ok := whnf(dszNF(ctx, pairType)).(*TSig)
		if !ok {
			return nil, &TypeError{Kind: ExpectedSigma, Term: n.Pair, Type: pairType}
		}
		return subst(sig.Body, sig.Name, &TFst{Pair: n.Pair}), nil
	case *TLet:
		var typ Term
		if n.Type != nil {
			if err := check(ctx, n.Def, n.Type); err != nil {
				return nil, err
			}
			typ = n.Type
		} else {
			t2, err := infer(ctx, n.Def)
			if err != nil {
				return nil, err
			}
			typ = t2
		}
		bodyType, err := infer(ctx.withLocal(&CtxDef{Name: n.Name, Type: typ, Def: n.Def}), n.Body)
		if err != nil {
			return nil, err
		}
		return subst(bodyType, n.Name, n.Def), nil
	case *TApp:
		funType, err := infer(ctx, n.Fun)
		if err != nil {
			return nil, err
		}
		pi, ok := whnf(dszNF(ctx, funType)).(*TPi)
		if !ok {
			return nil, &TypeError{Kind: ExpectedPi, Term: n.Fun, Type: funType}
		}
		argType, err := infer(ctx, n.Arg)
		if err != nil {
			return nil, err
		}
		if !conv(ctx, argType, pi.Type) {
			return nil, &TypeError{Kind: TypeMismatch, Expected: pi.Type, Actual: argType}
		}
		return subst(pi.Body, pi.Name, n.Arg), nil
	}
	panic("unreachable")
}

// inferSort infers t's type and requires it to normalize to a Sort,
// returning that sort's value (§4.G).
func inferSort(ctx JudgContext, t Term) (Sort, error) {
	typ, err := infer(ctx, t)
	if err != nil {
		return 0, err
	}
	s, ok := whnf(dszNF(ctx, typ)).(*TSort)
	if !ok {
		return 0, &TypeError{Kind: ExpectedSort, Term: t, Type: typ}
	}
	return s.Sort, nil
}

// check verifies t against expected under ctx (§4.G).
func check(ctx JudgContext, t Term, expected Term) error {
	if pair, ok := t.(*TPair); ok {
		if sig, ok := whnf(dszNF(ctx, expected)).(*TSig); ok {
			if err := check(ctx, pair.Fst, sig.Type); err != nil {
				return err
			}
			instBody := subst(sig.Body, sig.Name, pair.Fst)
			if err := check(ctx, pair.Snd, instBody); err != nil {
				return err
			}
			_, err := inferSort(ctx, instBody)
			return err
		}
	}
	actual, err := infer(ctx, t)
	if err != nil {
		return err
	}
	if !conv(ctx, actual, expected) {
		return &TypeError{Kind: TypeMismatch, Expected: expected, Actual: actual}
	}
	return nil
}

// checkWellFormed builds up a JudgContext one global element at a time,
// checking each in turn: a Var's type must infer to a sort, a Def's
// definition must check against its type. The running context is
// extended after each successful element, so later elements may
// reference earlier ones (§4.G).
func checkWellFormed(elements []Element) (JudgContext, error) {
	ctx := JudgContext{}
	for _, e := range elements {
		switch el := e.(type) {
		case *CtxVar:
			if _, err := inferSort(ctx, el.Type); err != nil {
				return ctx, &WFError{Err: err, At: e}
			}
		case *CtxDef:
			if err := check(ctx, el.Def, el.Type); err != nil {
				return ctx, &WFError{Err: err, At: e}
			}
		}
		ctx = ctx.withGlobal(e)
	}
	return ctx, nil
}
