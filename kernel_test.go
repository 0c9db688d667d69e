package coc_test

import (
	"testing"

	"coc"

	"github.com/stretchr/testify/assert"
)

func mustCheck(t *testing.T, source string) *coc.GlobalContext {
	t.Helper()
	ctx, diag := coc.Check(source)
	assert.Nil(t, diag, "Check(%q) = %v, want no diagnostic", source, diag)
	return ctx
}

func TestCheckIdentityFunctionProgram(t *testing.T) {
	// §8 scenario 1
	ctx := mustCheck(t, "def id (A : Prop) (x : A) : A := x;")
	assert.Len(t, ctx.Global, 1)
}

func TestCheckChurchNatProgram(t *testing.T) {
	// §8 scenario 2
	source := `
def Nat: Prop := forall A: Prop, (A -> A) -> A -> A;
def zero : Nat := fun (A:Prop) (f:A->A) (x:A) => x;
`
	ctx := mustCheck(t, source)
	assert.Len(t, ctx.Global, 2)
}

func TestCheckSigmaProjectionAndDefBinderProgram(t *testing.T) {
	// Exercises the same features as §8 scenario 3 — Σ projections,
	// definitional local binders, and anonymous products — in a
	// self-contained program.
	source := `
var A : Prop;
var B : Prop;
var a : A;
var b : B;
def swap : B & A :=
  let pair := <a, b> in
  <pair.2, pair.1>;
`
	mustCheck(t, source)
}

func TestCheckRejectsTypeHasNoType(t *testing.T) {
	// §8 scenario 4
	_, diag := coc.Check("def bad : Prop := Type;")
	if !assert.NotNil(t, diag) {
		return
	}
	assert.Equal(t, coc.PhaseTypecheck, diag.Phase)
	var te *coc.TypeError
	if assert.ErrorAs(t, diag.Err, &te) {
		assert.Equal(t, coc.TypeHasNoType, te.Kind)
	}
}

func TestCheckRejectsSelfApplicationWithExpectedPi(t *testing.T) {
	// §8 scenario 5
	_, diag := coc.Check("def f : Prop -> Prop := fun x : Prop => x x;")
	if !assert.NotNil(t, diag) {
		return
	}
	assert.Equal(t, coc.PhaseTypecheck, diag.Phase)
	var te *coc.TypeError
	if assert.ErrorAs(t, diag.Err, &te) {
		assert.Equal(t, coc.ExpectedPi, te.Kind)
	}
}

func TestCheckRejectsMutualCycleInContextPhase(t *testing.T) {
	// §8 scenario 6
	_, diag := coc.Check("def a : Prop := b; def b : Prop := a;")
	if !assert.NotNil(t, diag) {
		return
	}
	assert.Equal(t, coc.PhaseContext, diag.Phase)
	var se *coc.ScopeError
	if assert.ErrorAs(t, diag.Err, &se) {
		assert.Equal(t, coc.Cycle, se.Kind)
	}
}

func TestCheckFailsAtTokenizePhase(t *testing.T) {
	_, diag := coc.Check("def f : Prop := @;")
	if assert.NotNil(t, diag) {
		assert.Equal(t, coc.PhaseTokenize, diag.Phase)
	}
}

func TestCheckFailsAtParsePhase(t *testing.T) {
	_, diag := coc.Check("def f : Prop")
	if assert.NotNil(t, diag) {
		assert.Equal(t, coc.PhaseParse, diag.Phase)
	}
}
