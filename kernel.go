package coc

// Check runs the full pipeline over source: tokenize, parse, scope
// check, elaborate, then well-form the resulting global context. The
// first phase to fail short-circuits the rest (§6).
func Check(source string) (*GlobalContext, *Diagnostic) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseTokenize, Err: err}
	}

	prog, err := NewParser(tokens).ParseProgram()
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseParse, Err: err}
	}

	if err := CheckScope(prog); err != nil {
		return nil, &Diagnostic{Phase: PhaseContext, Err: err}
	}

	elements := make([]Element, len(prog.Decls))
	for i, d := range prog.Decls {
		elements[i] = ElaborateDecl(d)
	}

	ctx, err := checkWellFormed(elements)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseTypecheck, Err: err}
	}
	return &ctx, nil
}
