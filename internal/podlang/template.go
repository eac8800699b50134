package podlang

import "podsolve/internal/value"

// ArgKind tags a TemplateArg's variant (spec.md §3 StatementTemplate).
type ArgKind int

const (
	ArgNone ArgKind = iota
	ArgLiteral
	ArgWildcard
	ArgAnchoredKey
)

// TemplateArg is one argument slot of a StatementTemplate: a concrete
// Literal, an unbound Wildcard identified by index (and a display Name),
// an AnchoredKey whose root is itself a wildcard, or None for an unused
// slot in an OR-disjunct whose arity is padded to the predicate's max.
type TemplateArg struct {
	Kind          ArgKind
	Literal       value.Value
	WildcardIndex int
	WildcardName  string
	Key           value.Key
}

func ArgLit(v value.Value) TemplateArg { return TemplateArg{Kind: ArgLiteral, Literal: v} }

func ArgWild(index int, name string) TemplateArg {
	return TemplateArg{Kind: ArgWildcard, WildcardIndex: index, WildcardName: name}
}

func ArgAnchored(wildcardIndex int, wildcardName string, key value.Key) TemplateArg {
	return TemplateArg{Kind: ArgAnchoredKey, WildcardIndex: wildcardIndex, WildcardName: wildcardName, Key: key}
}

func ArgEmpty() TemplateArg { return TemplateArg{Kind: ArgNone} }

func (a TemplateArg) String() string {
	switch a.Kind {
	case ArgLiteral:
		return a.Literal.String()
	case ArgWildcard:
		return "?" + a.WildcardName
	case ArgAnchoredKey:
		return "?" + a.WildcardName + "[\"" + a.Key.Name() + "\"]"
	default:
		return "_"
	}
}

// StatementTemplate (aka Atom) is a Statement with wildcard slots: the
// body literal of a CustomPredicate rule, or a conjunct of a Request
// (spec.md §3, §4.5).
type StatementTemplate struct {
	Predicate Predicate
	Args      []TemplateArg
}

func NewTemplate(pred Predicate, args ...TemplateArg) StatementTemplate {
	return StatementTemplate{Predicate: pred, Args: args}
}

func (t StatementTemplate) String() string {
	out := t.Predicate.String() + "("
	for i, a := range t.Args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}

// WildcardCount returns one past the highest wildcard index referenced
// by the template, used by the registry to size a rule's binding frame.
func (t StatementTemplate) WildcardCount() int {
	max := -1
	for _, a := range t.Args {
		if (a.Kind == ArgWildcard || a.Kind == ArgAnchoredKey) && a.WildcardIndex > max {
			max = a.WildcardIndex
		}
	}
	return max + 1
}
