package coc

import "github.com/samber/lo"

// PTerm is a surface term, produced by the parser and consumed read-only
// by the elaborator (§3, §4.B). Every node carries the source Range of
// the tokens it was built from.
type PTerm interface {
	Pos() Range
	pterm()
}

type PSort struct {
	Sort  Sort
	Range Range
}

type PVar struct {
	Name  string
	Range Range
}

type PLambda struct {
	Binders []Binder
	Body    PTerm
	Range   Range
}

type PPi struct {
	Binders []Binder
	Body    PTerm
	Range   Range
}

type PArrow struct {
	In, Out PTerm
	Range   Range
}

// PPair is `<a, b>` or `<a, b> : T`; Asc is nil when no ascription was
// written.
type PPair struct {
	Fst, Snd PTerm
	Asc      PTerm
	Range    Range
}

type PFirst struct {
	X     PTerm
	Range Range
}

type PSecond struct {
	X     PTerm
	Range Range
}

type PSigma struct {
	Binders []Binder
	Body    PTerm
	Range   Range
}

type PProd struct {
	Fst, Snd PTerm
	Range    Range
}

// PLet is `let NAME ClosedBinder* (: T)? := D in Body`.
type PLet struct {
	Name    string
	Params  []Binder
	Type    PTerm // nil when omitted
	Def     PTerm
	Body    PTerm
	Range   Range
}

// PApply is left-to-right n-ary juxtaposition; len(Terms) >= 2.
type PApply struct {
	Terms []PTerm
	Range Range
}

func (n *PSort) Pos() Range   { return n.Range }
func (n *PVar) Pos() Range    { return n.Range }
func (n *PLambda) Pos() Range { return n.Range }
func (n *PPi) Pos() Range     { return n.Range }
func (n *PArrow) Pos() Range  { return n.Range }
func (n *PPair) Pos() Range   { return n.Range }
func (n *PFirst) Pos() Range  { return n.Range }
func (n *PSecond) Pos() Range { return n.Range }
func (n *PSigma) Pos() Range  { return n.Range }
func (n *PProd) Pos() Range   { return n.Range }
func (n *PLet) Pos() Range    { return n.Range }
func (n *PApply) Pos() Range  { return n.Range }

func (*PSort) pterm()   {}
func (*PVar) pterm()    {}
func (*PLambda) pterm() {}
func (*PPi) pterm()     {}
func (*PArrow) pterm()  {}
func (*PPair) pterm()   {}
func (*PFirst) pterm()  {}
func (*PSecond) pterm() {}
func (*PSigma) pterm()  {}
func (*PProd) pterm()   {}
func (*PLet) pterm()    {}
func (*PApply) pterm()  {}

// BinderKind distinguishes a variable binder from a definition binder.
type BinderKind int

const (
	BinderVar BinderKind = iota
	BinderDef
)

// Binder is either `(x1 x2 : T)` (BinderVar, possibly several Names) or
// `(x : T := d)` / `(x := d)` (BinderDef, always a single Name).
type Binder struct {
	Kind  BinderKind
	Names []string // len == 1 for BinderDef
	Type  PTerm    // may be nil for a BinderDef without ascription
	Def   PTerm    // only set for BinderDef
	Range Range
}

// GlobalKind distinguishes the two surface declaration forms (§6).
type GlobalKind int

const (
	GlobalDef GlobalKind = iota
	GlobalVar
)

// LocalParam is one flattened entry of a declaration's parameter list:
// one per bound name, carrying its own source range, its binder's type
// (shared across a grouped var binder) and, for a definition binder,
// its def expression (§3, §4.C).
type LocalParam struct {
	Name  string
	Type  PTerm // may be nil only for a def binder without ascription
	Def   PTerm // non-nil only when this entry came from a def binder
	Range Range
}

// Decl is a surface global declaration: a name, its declared type, an
// optional definition, the (unflattened) parameter binders used to
// elaborate both, and the flattened local parameter list used by the
// scope checker.
type Decl struct {
	Kind   GlobalKind
	Name   string
	Params []Binder
	Type   PTerm
	Def    PTerm // nil for GlobalVar
	Local  []LocalParam
	Range  Range
}

// Program is the parser's top-level output: an ordered list of global
// declarations (§3).
type Program struct {
	Decls []Decl
}

// flattenBinders expands a parameter binder list into one LocalParam per
// bound name, in left-to-right order (§4.C, §5 ordering policy).
func flattenBinders(binders []Binder) []LocalParam {
	return lo.FlatMap(binders, func(b Binder, _ int) []LocalParam {
		switch b.Kind {
		case BinderVar:
			return lo.Map(b.Names, func(name string, _ int) LocalParam {
				return LocalParam{Name: name, Type: b.Type, Range: b.Range}
			})
		case BinderDef:
			return []LocalParam{{Name: b.Names[0], Type: b.Type, Def: b.Def, Range: b.Range}}
		}
		panic("unreachable")
	})
}
