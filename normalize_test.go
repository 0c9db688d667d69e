package coc

import "testing"

func TestWhnfBetaReduces(t *testing.T) {
	// (λx:Prop. x) Type  ~>  Type
	app := &TApp{
		Fun: &TLam{Name: "x", Type: &TSort{Sort: Prop}, Body: &TVar{Name: "x"}},
		Arg: &TSort{Sort: Type},
	}
	got := whnf(app)
	if !alphaEq(got, &TSort{Sort: Type}) {
		t.Fatalf("whnf() = %#v, want Type", got)
	}
}

func TestWhnfProjectsPair(t *testing.T) {
	pair := &TPair{Fst: &TSort{Sort: Prop}, Snd: &TSort{Sort: Type}}
	if got := whnf(&TFst{Pair: pair}); !alphaEq(got, &TSort{Sort: Prop}) {
		t.Fatalf("whnf(Fst) = %#v, want Prop", got)
	}
	if got := whnf(&TSnd{Pair: pair}); !alphaEq(got, &TSort{Sort: Type}) {
		t.Fatalf("whnf(Snd) = %#v, want Type", got)
	}
}

func TestWhnfZetaReducesLet(t *testing.T) {
	let := &TLet{Name: "x", Def: &TSort{Sort: Prop}, Body: &TVar{Name: "x"}}
	if got := whnf(let); !alphaEq(got, &TSort{Sort: Prop}) {
		t.Fatalf("whnf(let) = %#v, want Prop", got)
	}
}

func TestWhnfLeavesStuckAppAlone(t *testing.T) {
	app := &TApp{Fun: &TVar{Name: "f"}, Arg: &TVar{Name: "a"}}
	got := whnf(app)
	if !alphaEq(got, app) {
		t.Fatalf("whnf(stuck app) = %#v, want unchanged", got)
	}
}

func TestDszNFExpandsGlobalDefinition(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxDef{Name: "id", Type: &TSort{Sort: Prop}, Def: &TSort{Sort: Prop}})
	got := dszNF(ctx, &TVar{Name: "id"})
	if !alphaEq(got, &TSort{Sort: Prop}) {
		t.Fatalf("dszNF(id) = %#v, want Prop", got)
	}
}

func TestDszNFLeavesOpaqueVarAlone(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxVar{Name: "A", Type: &TSort{Sort: Type}})
	got := dszNF(ctx, &TVar{Name: "A"})
	if !alphaEq(got, &TVar{Name: "A"}) {
		t.Fatalf("dszNF(A) = %#v, want A unchanged (opaque var)", got)
	}
}

func TestConvAlphaEquivalent(t *testing.T) {
	ctx := JudgContext{}
	a := &TLam{Name: "x", Type: &TSort{Sort: Prop}, Body: &TVar{Name: "x"}}
	b := &TLam{Name: "y", Type: &TSort{Sort: Prop}, Body: &TVar{Name: "y"}}
	if !conv(ctx, a, b) {
		t.Fatalf("conv(λx.x, λy.y) = false, want true")
	}
}

func TestConvEtaExpandsNonLambdaSide(t *testing.T) {
	ctx := JudgContext{}
	lam := &TLam{Name: "x", Type: &TSort{Sort: Prop}, Body: &TApp{Fun: &TVar{Name: "f"}, Arg: &TVar{Name: "x"}}}
	if !conv(ctx, lam, &TVar{Name: "f"}) {
		t.Fatalf("conv(λx. f x, f) = false, want true (η)")
	}
}

func TestConvRejectsMismatch(t *testing.T) {
	ctx := JudgContext{}
	if conv(ctx, &TSort{Sort: Prop}, &TSort{Sort: Type}) {
		t.Fatalf("conv(Prop, Type) = true, want false")
	}
}

func TestConvExpandsThroughDefinitions(t *testing.T) {
	ctx := JudgContext{}
	ctx = ctx.withGlobal(&CtxDef{Name: "id", Type: &TSort{Sort: Prop}, Def: &TSort{Sort: Prop}})
	if !conv(ctx, &TVar{Name: "id"}, &TSort{Sort: Prop}) {
		t.Fatalf("conv(id, Prop) = false, want true")
	}
}
