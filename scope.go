package coc

import (
	"fmt"
	"strings"

	"slices"

	"github.com/samber/lo"
)

// ScopeError is the structured failure of the scope/dependency phase
// (§7): DuplicateGlobal, DuplicateLocal, SelfReference, Undefined, or
// Cycle.
type ScopeError struct {
	Kind      ScopeErrorKind
	Name      string
	Enclosing string
	DepKind   string // "type" or "def", set for SelfReference/Undefined
	Path      []CycleEdge
	Range     Range
}

type ScopeErrorKind int

const (
	DuplicateGlobal ScopeErrorKind = iota
	DuplicateLocal
	SelfReference
	Undefined
	Cycle
)

// CycleEdge is one hop of a reported dependency cycle.
type CycleEdge struct {
	From, To, Kind string
}

func (e *ScopeError) Error() string {
	switch e.Kind {
	case DuplicateGlobal:
		return fmt.Sprintf("duplicate global declaration %q at %s", e.Name, e.Range)
	case DuplicateLocal:
		return fmt.Sprintf("duplicate parameter name %q at %s", e.Name, e.Range)
	case SelfReference:
		return fmt.Sprintf("%q self-references via its %s at %s", e.Enclosing, e.DepKind, e.Range)
	case Undefined:
		return fmt.Sprintf("undefined name %q used by %q (%s) at %s", e.Name, e.Enclosing, e.DepKind, e.Range)
	case Cycle:
		hops := lo.Map(e.Path, func(c CycleEdge, _ int) string {
			return fmt.Sprintf("%s -[%s]-> %s", c.From, c.Kind, c.To)
		})
		return fmt.Sprintf("dependency cycle: %s", strings.Join(hops, ", "))
	}
	panic("unreachable")
}

// CheckScope runs the dependency/scoping pre-pass over a parsed program
// (§4.C): uniqueness, reference validation, and cycle detection, in that
// order; the first violation found aborts the check.
func CheckScope(prog *Program) error {
	if err := checkUniqueness(prog); err != nil {
		return err
	}
	g, err := buildDependencyGraph(prog)
	if err != nil {
		return err
	}
	return g.findCycle()
}

func checkUniqueness(prog *Program) error {
	seen := map[string]Range{}
	for _, d := range prog.Decls {
		if r, ok := seen[d.Name]; ok {
			_ = r
			return &ScopeError{Kind: DuplicateGlobal, Name: d.Name, Range: d.Range}
		}
		seen[d.Name] = d.Range

		localSeen := map[string]struct{}{}
		for _, p := range d.Local {
			if _, ok := localSeen[p.Name]; ok {
				return &ScopeError{Kind: DuplicateLocal, Name: p.Name, Range: p.Range}
			}
			localSeen[p.Name] = struct{}{}
		}
	}
	return nil
}

type graphEdge struct {
	To    string
	Kind  string
	Range Range
}

type depGraph struct {
	order []string
	adj   map[string][]graphEdge
}

func newDepGraph() *depGraph {
	return &depGraph{adj: map[string][]graphEdge{}}
}

func (g *depGraph) addNode(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = nil
		g.order = append(g.order, id)
	}
}

func (g *depGraph) addEdge(from, to, kind string, r Range) {
	g.adj[from] = append(g.adj[from], graphEdge{To: to, Kind: kind, Range: r})
}

func globalNodeID(name string) string     { return "global:" + name }
func localNodeID(decl, name string) string { return "local:" + decl + ":" + name }

// buildDependencyGraph extracts type/def dependencies for every global
// and every flattened local parameter, validates each reference, and
// returns the resulting graph (§4.C steps 2–3).
func buildDependencyGraph(prog *Program) (*depGraph, error) {
	globalNames := lo.Map(prog.Decls, func(d Decl, _ int) string { return d.Name })

	g := newDepGraph()
	for _, name := range globalNames {
		g.addNode(globalNodeID(name))
	}
	for _, d := range prog.Decls {
		for _, p := range d.Local {
			g.addNode(localNodeID(d.Name, p.Name))
		}
	}

	for _, d := range prog.Decls {
		ownParamNames := lo.Map(d.Local, func(p LocalParam, _ int) string { return p.Name })
		bound := toSet(ownParamNames)

		for _, dep := range surfaceDeps(d.Type, bound) {
			if err := validateGlobalDep(d, dep, "type", globalNames); err != nil {
				return nil, err
			}
			g.addEdge(globalNodeID(d.Name), globalNodeID(dep.name), "type", dep.r)
		}
		if d.Def != nil {
			for _, dep := range surfaceDeps(d.Def, bound) {
				if err := validateGlobalDep(d, dep, "def", globalNames); err != nil {
					return nil, err
				}
				g.addEdge(globalNodeID(d.Name), globalNodeID(dep.name), "def", dep.r)
			}
		}

		seenLocal := map[string]struct{}{}
		for _, p := range d.Local {
			if p.Type != nil {
				for _, dep := range surfaceDeps(p.Type, nil) {
					to, err := validateLocalDep(d, p, dep, "type", globalNames, seenLocal)
					if err != nil {
						return nil, err
					}
					g.addEdge(localNodeID(d.Name, p.Name), to, "type", dep.r)
				}
			}
			if p.Def != nil {
				for _, dep := range surfaceDeps(p.Def, nil) {
					to, err := validateLocalDep(d, p, dep, "def", globalNames, seenLocal)
					if err != nil {
						return nil, err
					}
					g.addEdge(localNodeID(d.Name, p.Name), to, "def", dep.r)
				}
			}
			seenLocal[p.Name] = struct{}{}
		}
	}
	return g, nil
}

func validateGlobalDep(d Decl, dep namedDep, kind string, globalNames []string) error {
	if dep.name == d.Name {
		return &ScopeError{Kind: SelfReference, Name: dep.name, Enclosing: d.Name, DepKind: kind, Range: dep.r}
	}
	if !slices.Contains(globalNames, dep.name) {
		return &ScopeError{Kind: Undefined, Name: dep.name, Enclosing: d.Name, DepKind: kind, Range: dep.r}
	}
	return nil
}

// validateLocalDep checks that dep names a global or a previously-seen
// local of the same declaration, returning the graph node id it
// resolves to (§4.C step 3, §5 ordering policy).
func validateLocalDep(d Decl, p LocalParam, dep namedDep, kind string, globalNames []string, seenLocal map[string]struct{}) (string, error) {
	if slices.Contains(globalNames, dep.name) {
		return globalNodeID(dep.name), nil
	}
	if _, ok := seenLocal[dep.name]; ok {
		return localNodeID(d.Name, dep.name), nil
	}
	return "", &ScopeError{Kind: Undefined, Name: dep.name, Enclosing: d.Name, DepKind: kind, Range: dep.r}
}

func (g *depGraph) findCycle() error {
	const (
		white = iota
		gray
		black
	)
	color := map[string]int{}
	var stack []graphEdge

	var dfs func(node string) error
	dfs = func(node string) error {
		color[node] = gray
		for _, e := range g.adj[node] {
			switch color[e.To] {
			case white:
				stack = append(stack, e)
				if err := dfs(e.To); err != nil {
					return err
				}
				stack = stack[:len(stack)-1]
			case gray:
				return cycleFrom(stack, e)
			case black:
				// already fully explored, no cycle through it
			}
		}
		color[node] = black
		return nil
	}

	for _, n := range g.order {
		if color[n] == white {
			if err := dfs(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleFrom builds the Cycle error for the back-edge closing, given
// the current DFS edge stack; the reported path starts at the node the
// back edge returns to.
func cycleFrom(stack []graphEdge, closing graphEdge) error {
	start := 0
	for i, e := range stack {
		if e.To == closing.To {
			start = i + 1
			break
		}
	}
	path := make([]CycleEdge, 0, len(stack)-start+1)
	from := closing.To
	for _, e := range stack[start:] {
		path = append(path, CycleEdge{From: from, To: e.To, Kind: e.Kind})
		from = e.To
	}
	path = append(path, CycleEdge{From: from, To: closing.To, Kind: closing.Kind})
	return &ScopeError{Kind: Cycle, Path: path, Range: closing.Range}
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

type namedDep struct {
	name string
	r    Range
}

// surfaceDeps collects the free surface variables of t together with the
// range of their referencing occurrence, excluding any name in bound
// (§4.C step 2: "names bound by d's own parameter list are subtracted").
func surfaceDeps(t PTerm, bound map[string]bool) []namedDep {
	var deps []namedDep
	var walk func(t PTerm, bound map[string]bool)
	extend := func(bound map[string]bool, names []string) map[string]bool {
		next := make(map[string]bool, len(bound)+len(names))
		for k, v := range bound {
			next[k] = v
		}
		for _, n := range names {
			next[n] = true
		}
		return next
	}
	walkBinders := func(binders []Binder, body PTerm, bound map[string]bool) {
		cur := bound
		for _, b := range binders {
			if b.Type != nil {
				walk(b.Type, cur)
			}
			if b.Kind == BinderDef && b.Def != nil {
				walk(b.Def, cur)
			}
			cur = extend(cur, b.Names)
		}
		walk(body, cur)
	}
	walk = func(t PTerm, bound map[string]bool) {
		if t == nil {
			return
		}
		switch n := t.(type) {
		case *PSort:
		case *PVar:
			if !bound[n.Name] {
				deps = append(deps, namedDep{name: n.Name, r: n.Range})
			}
		case *PLambda:
			walkBinders(n.Binders, n.Body, bound)
		case *PPi:
			walkBinders(n.Binders, n.Body, bound)
		case *PSigma:
			walkBinders(n.Binders, n.Body, bound)
		case *PArrow:
			walk(n.In, bound)
			walk(n.Out, bound)
		case *PProd:
			walk(n.Fst, bound)
			walk(n.Snd, bound)
		case *PPair:
			walk(n.Fst, bound)
			walk(n.Snd, bound)
			if n.Asc != nil {
				walk(n.Asc, bound)
			}
		case *PFirst:
			walk(n.X, bound)
		case *PSecond:
			walk(n.X, bound)
		case *PApply:
			for _, s := range n.Terms {
				walk(s, bound)
			}
		case *PLet:
			cur := bound
			for _, b := range n.Params {
				if b.Type != nil {
					walk(b.Type, cur)
				}
				if b.Kind == BinderDef && b.Def != nil {
					walk(b.Def, cur)
				}
				cur = extend(cur, b.Names)
			}
			if n.Type != nil {
				walk(n.Type, cur)
			}
			walk(n.Def, cur)
			walk(n.Body, extend(bound, []string{n.Name}))
		}
	}
	walk(t, bound)
	return lo.UniqBy(deps, func(d namedDep) string { return d.name })
}
