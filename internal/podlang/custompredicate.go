package podlang

import (
	"sort"
	"strconv"
	"strings"

	"podsolve/internal/value"
)

// PredicateBodyKind selects a CustomPredicate's composition rule: AND
// requires every body template to hold, OR requires at least one
// (spec.md §3). Nested conjunctions-of-disjunctions are expressed by
// calling another custom predicate from a body template, not by nesting
// Kind directly.
type PredicateBodyKind int

const (
	BodyAnd PredicateBodyKind = iota
	BodyOr
)

// CustomPredicate is one user-defined predicate: a name, its arity, the
// wildcard names used across its body (for diagnostics/rendering), and
// the body of StatementTemplates combined per Kind.
type CustomPredicate struct {
	Name          string
	Kind          PredicateBodyKind
	ArgCount      int
	WildcardNames []string
	Body          []StatementTemplate
}

// BatchSelf builds a Predicate referencing the index-th predicate of the
// batch currently being defined, before that batch's content hash is
// known. NewCustomPredicateBatch resolves every such self-reference to
// the batch's real hash once it is computed.
func BatchSelf(index int, name string) Predicate {
	return Predicate{
		Kind:   PredicateKindCustom,
		Custom: CustomPredicateRef{BatchHash: value.ZeroHash, Index: index, Name: name},
	}
}

// CustomPredicateBatch is a content-addressed group of CustomPredicates
// (spec.md §3): its Hash identifies it, and BatchSelf references inside
// its own predicates resolve to (Hash, index) once built.
type CustomPredicateBatch struct {
	Hash       value.Hash
	Predicates []CustomPredicate
}

// NewCustomPredicateBatch computes the batch's content hash from a
// canonical serialization of its predicates, then resolves every
// BatchSelf reference inside the batch to (Hash, index).
func NewCustomPredicateBatch(preds []CustomPredicate) *CustomPredicateBatch {
	h := value.HashBytes([]byte(serializeBatch(preds)))

	resolved := make([]CustomPredicate, len(preds))
	for i, p := range preds {
		resolved[i] = resolveSelfRefs(p, h)
	}
	return &CustomPredicateBatch{Hash: h, Predicates: resolved}
}

// Ref returns a CustomPredicateRef naming the index-th predicate of b.
func (b *CustomPredicateBatch) Ref(index int) CustomPredicateRef {
	return CustomPredicateRef{BatchHash: b.Hash, Index: index, Name: b.Predicates[index].Name}
}

func resolveSelfRefs(p CustomPredicate, batchHash value.Hash) CustomPredicate {
	body := make([]StatementTemplate, len(p.Body))
	for i, t := range p.Body {
		pred := t.Predicate
		if pred.IsCustom() && pred.Custom.BatchHash == value.ZeroHash {
			pred.Custom.BatchHash = batchHash
		}
		body[i] = StatementTemplate{Predicate: pred, Args: t.Args}
	}
	p.Body = body
	return p
}

func serializeBatch(preds []CustomPredicate) string {
	var sb strings.Builder
	for _, p := range preds {
		sb.WriteString(p.Name)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(p.Kind)))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(p.ArgCount))
		sb.WriteByte(':')
		names := append([]string(nil), p.WildcardNames...)
		sort.Strings(names)
		sb.WriteString(strings.Join(names, ","))
		sb.WriteByte(';')
		for _, t := range p.Body {
			sb.WriteString(t.String())
			sb.WriteByte('&')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
