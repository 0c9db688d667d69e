package coc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustInfer(t *testing.T, ctx JudgContext, term Term) Term {
	t.Helper()
	ty, err := infer(ctx, term)
	assert.NoError(t, err)
	return ty
}

func typeErr(t *testing.T, err error) *TypeError {
	t.Helper()
	var te *TypeError
	assert.ErrorAs(t, err, &te)
	return te
}

func TestInferPropHasTypeType(t *testing.T) {
	ty := mustInfer(t, JudgContext{}, &TSort{Sort: Prop})
	assert.True(t, alphaEq(ty, &TSort{Sort: Type}), "infer(Prop) = %#v, want Type", ty)
}

func TestInferTypeHasNoType(t *testing.T) {
	_, err := infer(JudgContext{}, &TSort{Sort: Type})
	assert.Equal(t, TypeHasNoType, typeErr(t, err).Kind)
}

func TestInferUnboundVariable(t *testing.T) {
	_, err := infer(JudgContext{}, &TVar{Name: "x"})
	te := typeErr(t, err)
	assert.Equal(t, UnboundVariable, te.Kind)
	assert.Equal(t, "x", te.Name)
}

func TestInferLamFormsPi(t *testing.T) {
	// λx:Prop. x : Πx:Prop. Prop
	lam := &TLam{Name: "x", Type: &TSort{Sort: Prop}, Body: &TVar{Name: "x"}}
	ty := mustInfer(t, JudgContext{}, lam)
	pi, ok := ty.(*TPi)
	if !assert.True(t, ok, "infer(λx:Prop.x) = %#v, want *TPi", ty) {
		return
	}
	assert.True(t, alphaEq(pi.Type, &TSort{Sort: Prop}))
	assert.True(t, alphaEq(pi.Body, &TSort{Sort: Prop}))
}

func TestInferPiReturnsCodomainSort(t *testing.T) {
	// Πx:Prop. Prop : Type  (x:Prop under Prop's codomain Prop, whose own
	// type is Type)
	pi := &TPi{Name: "x", Type: &TSort{Sort: Prop}, Body: &TSort{Sort: Prop}}
	ty := mustInfer(t, JudgContext{}, pi)
	assert.True(t, alphaEq(ty, &TSort{Sort: Type}))
}

func TestInferSigAcceptsPropProp(t *testing.T) {
	sig := &TSig{Name: "x", Type: &TSort{Sort: Prop}, Body: &TSort{Sort: Prop}}
	ty := mustInfer(t, JudgContext{}, sig)
	assert.True(t, alphaEq(ty, &TSort{Sort: Type}), "infer(Σx:Prop.Prop) = %#v, want Type (Prop's own type)", ty)
}

func TestInferSigRejectsImpossibleCombination(t *testing.T) {
	// A domain living in Type (s0=Type) paired with a codomain living in
	// Prop (s1=Prop) is the one combination §4.G's Sig rule excludes.
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxVar{Name: "Big", Type: &TSort{Sort: Type}})
	ctx = ctx.withGlobal(&CtxVar{Name: "P", Type: &TSort{Sort: Prop}})
	sig := &TSig{Name: "x", Type: &TVar{Name: "Big"}, Body: &TVar{Name: "P"}}
	_, err := infer(ctx, sig)
	te := typeErr(t, err)
	assert.Equal(t, ImpossibleCombination, te.Kind)
	assert.Equal(t, Type, te.S0)
	assert.Equal(t, Prop, te.S1)
}

func TestInferPairWithAscription(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxVar{Name: "A", Type: &TSort{Sort: Prop}})
	asc := &TSig{Name: Anon, Type: &TSort{Sort: Prop}, Body: &TSort{Sort: Prop}}
	pair := &TPair{Fst: &TVar{Name: "A"}, Snd: &TVar{Name: "A"}, Asc: asc}
	ty := mustInfer(t, ctx, pair)
	assert.True(t, alphaEq(ty, asc), "infer(<A,A>:asc) = %#v, want the ascription", ty)
}

func TestInferPairWithoutAscription(t *testing.T) {
	pair := &TPair{Fst: &TSort{Sort: Prop}, Snd: &TSort{Sort: Prop}}
	ty := mustInfer(t, JudgContext{}, pair)
	sig, ok := ty.(*TSig)
	if assert.True(t, ok, "infer(<Prop,Prop>) = %#v, want *TSig", ty) {
		assert.Equal(t, Anon, sig.Name)
	}
}

func TestInferFstRequiresSigma(t *testing.T) {
	_, err := infer(JudgContext{}, &TFst{Pair: &TSort{Sort: Prop}})
	assert.Equal(t, ExpectedSigma, typeErr(t, err).Kind)
}

func TestInferSndSubstitutesFst(t *testing.T) {
	// p : Σx:Prop. x  |-  Snd(p) : subst(x, x, Fst(p)) = Fst(p)
	ctx := JudgContext{}
	sigTy := &TSig{Name: "x", Type: &TSort{Sort: Prop}, Body: &TVar{Name: "x"}}
	ctx = ctx.withLocal(&CtxVar{Name: "p", Type: sigTy})
	ty := mustInfer(t, ctx, &TSnd{Pair: &TVar{Name: "p"}})
	want := &TFst{Pair: &TVar{Name: "p"}}
	assert.True(t, alphaEq(ty, want), "infer(Snd(p)) = %#v, want %#v", ty, want)
}

func TestInferAppRequiresPi(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withLocal(&CtxVar{Name: "x", Type: &TSort{Sort: Prop}})
	_, err := infer(ctx, &TApp{Fun: &TVar{Name: "x"}, Arg: &TVar{Name: "x"}})
	assert.Equal(t, ExpectedPi, typeErr(t, err).Kind, "matches §8 scenario 5")
}

func TestInferAppTypeMismatch(t *testing.T) {
	ctx := JudgContext{}
	pi := &TPi{Name: "x", Type: &TSort{Sort: Prop}, Body: &TSort{Sort: Prop}}
	ctx = ctx.withLocal(&CtxVar{Name: "f", Type: pi})
	// Prop's type is Type, not the Prop that f's domain asks for.
	_, err := infer(ctx, &TApp{Fun: &TVar{Name: "f"}, Arg: &TSort{Sort: Prop}})
	assert.Equal(t, TypeMismatch, typeErr(t, err).Kind)
}

func TestInferAppSubstitutesCodomain(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxVar{Name: "A", Type: &TSort{Sort: Prop}})
	pi := &TPi{Name: "x", Type: &TVar{Name: "A"}, Body: &TVar{Name: "x"}}
	ctx = ctx.withLocal(&CtxVar{Name: "f", Type: pi})
	ctx = ctx.withLocal(&CtxVar{Name: "a", Type: &TVar{Name: "A"}})
	ty := mustInfer(t, ctx, &TApp{Fun: &TVar{Name: "f"}, Arg: &TVar{Name: "a"}})
	assert.True(t, alphaEq(ty, &TVar{Name: "a"}), "infer(f a) = %#v, want a", ty)
}

func TestCheckIdentityFunction(t *testing.T) {
	// def id (A : Prop) (x : A) : A := x;  (§8 scenario 1)
	typ := &TPi{Name: "A", Type: &TSort{Sort: Prop}, Body: &TPi{Name: "x", Type: &TVar{Name: "A"}, Body: &TVar{Name: "A"}}}
	def := &TLam{Name: "A", Type: &TSort{Sort: Prop}, Body: &TLam{Name: "x", Type: &TVar{Name: "A"}, Body: &TVar{Name: "x"}}}
	assert.NoError(t, check(JudgContext{}, def, typ))
}

func TestCheckPairAgainstSigma(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxVar{Name: "A", Type: &TSort{Sort: Prop}})
	sig := &TSig{Name: "x", Type: &TSort{Sort: Prop}, Body: &TSort{Sort: Prop}}
	pair := &TPair{Fst: &TVar{Name: "A"}, Snd: &TVar{Name: "A"}}
	assert.NoError(t, check(ctx, pair, sig))
}

func TestCheckFallsBackToInferAndConv(t *testing.T) {
	// infer(Prop) = Type, which does not convert to the expected Prop.
	err := check(JudgContext{}, &TSort{Sort: Prop}, &TSort{Sort: Prop})
	assert.Equal(t, TypeMismatch, typeErr(t, err).Kind)
}

func TestCheckWellFormedBuildsContextInOrder(t *testing.T) {
	// var A : Prop; def same : Prop := A;  -- "same" may reference the
	// earlier global A since globals are checked left to right.
	elements := []Element{
		&CtxVar{Name: "A", Type: &TSort{Sort: Prop}},
		&CtxDef{Name: "same", Type: &TSort{Sort: Prop}, Def: &TVar{Name: "A"}},
	}
	ctx, err := checkWellFormed(elements)
	if assert.NoError(t, err) {
		assert.Len(t, ctx.Global, 2)
	}
}

func TestCheckWellFormedRejectsBadDef(t *testing.T) {
	// def bad : Prop := Type;  (§8 scenario 4)
	elements := []Element{
		&CtxDef{Name: "bad", Type: &TSort{Sort: Prop}, Def: &TSort{Sort: Type}},
	}
	_, err := checkWellFormed(elements)
	var wf *WFError
	if assert.ErrorAs(t, err, &wf) {
		assert.Equal(t, "bad", wf.At.elementName())
	}
}
