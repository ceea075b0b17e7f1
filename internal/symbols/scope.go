package symbols

import (
	"glfuzz/internal/ast"
	"glfuzz/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // builtins and top-level declarations
	ScopeFunction           // parameters; the body block shares it
	ScopeBlock              // nested block
	ScopeLoop               // for-loop header
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// SymbolKind says where a variable came from.
type SymbolKind uint8

const (
	SymbolBuiltin SymbolKind = iota
	SymbolGlobal
	SymbolParam
	SymbolLocal
)

// Symbol is one visible variable.
type Symbol struct {
	Name string
	Type types.Type
	Kind SymbolKind
	// Decl is the declaring statement for locals, NoStmtID otherwise.
	Decl ast.StmtID
}

// Scope models a lexical scope with a parent chain. A scope is mutated
// while a walk is inside it; callers that keep one must take a Snapshot.
type Scope struct {
	Kind    ScopeKind
	parent  *Scope
	index   map[string]int
	symbols []Symbol
	structs []types.StructDef
}

// New creates a scope nested in parent (nil for a root).
func New(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:   kind,
		parent: parent,
		index:  make(map[string]int),
	}
}

// Push opens a child scope.
func (s *Scope) Push(kind ScopeKind) *Scope {
	return New(kind, s)
}

// Parent returns the enclosing scope, nil at the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare adds sym, shadowing any outer symbol of the same name. A second
// declaration in the same scope replaces the first.
func (s *Scope) Declare(sym Symbol) {
	if i, ok := s.index[sym.Name]; ok {
		s.symbols[i] = sym
		return
	}
	s.index[sym.Name] = len(s.symbols)
	s.symbols = append(s.symbols, sym)
}

// DeclareStruct records a struct definition.
func (s *Scope) DeclareStruct(def types.StructDef) {
	s.structs = append(s.structs, def)
}

// Lookup resolves name through the scope chain.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if i, ok := cur.index[name]; ok {
			return cur.symbols[i], true
		}
	}
	return Symbol{}, false
}

// LookupLocal resolves name in this scope only.
func (s *Scope) LookupLocal(name string) (Symbol, bool) {
	if i, ok := s.index[name]; ok {
		return s.symbols[i], true
	}
	return Symbol{}, false
}

// IsGlobal reports whether name resolves to a builtin or top-level variable.
func (s *Scope) IsGlobal(name string) bool {
	sym, ok := s.Lookup(name)
	return ok && (sym.Kind == SymbolGlobal || sym.Kind == SymbolBuiltin)
}

// LookupStruct finds the nearest struct definition called name.
func (s *Scope) LookupStruct(name string) (types.StructDef, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		for i := len(cur.structs) - 1; i >= 0; i-- {
			if cur.structs[i].Name == name {
				return cur.structs[i], true
			}
		}
	}
	return types.StructDef{}, false
}

// Names returns every visible variable name, innermost scope first and in
// declaration order within a scope; shadowed names appear once.
func (s *Scope) Names() []string {
	var out []string
	seen := make(map[string]bool)
	for cur := s; cur != nil; cur = cur.parent {
		for _, sym := range cur.symbols {
			if !seen[sym.Name] {
				seen[sym.Name] = true
				out = append(out, sym.Name)
			}
		}
	}
	return out
}

// Symbols returns the visible symbols in Names order.
func (s *Scope) Symbols() []Symbol {
	names := s.Names()
	out := make([]Symbol, 0, len(names))
	for _, n := range names {
		sym, _ := s.Lookup(n)
		out = append(out, sym)
	}
	return out
}

// Structs returns the visible struct definitions, outermost first. A
// shadowing definition takes the place of the one it hides.
func (s *Scope) Structs() []types.StructDef {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var out []types.StructDef
	at := make(map[string]int)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, def := range chain[i].structs {
			if j, ok := at[def.Name]; ok {
				out[j] = def.Clone()
				continue
			}
			at[def.Name] = len(out)
			out = append(out, def.Clone())
		}
	}
	return out
}

// Snapshot deep-copies the whole chain, so later declarations in the live
// scope do not leak into the copy.
func (s *Scope) Snapshot() *Scope {
	if s == nil {
		return nil
	}
	cp := &Scope{
		Kind:    s.Kind,
		parent:  s.parent.Snapshot(),
		index:   make(map[string]int, len(s.index)),
		symbols: append([]Symbol(nil), s.symbols...),
		structs: append([]types.StructDef(nil), s.structs...),
	}
	for k, v := range s.index {
		cp.index[k] = v
	}
	return cp
}
