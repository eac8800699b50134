package podlang

import "podsolve/internal/value"

// MainPod is a proven bundle of statements: a content-addressed ID,
// public statements visible to anyone holding the pod, private
// statements used only while proving further pods, and the input pods
// it was itself built from (spec.md §3, §4.7). It lives in this package
// rather than value because its statement lists reference Predicate and
// ValueRef, both defined here.
type MainPod struct {
	ID                value.Hash
	PublicStatements  []Statement
	PrivateStatements []Statement
	InputPods         []value.PodRef
}

// Ref returns the PodRef other pods and the EDB use to address this pod.
func (p *MainPod) Ref() value.PodRef { return value.PodRef{ID: p.ID} }

// AllStatements returns public and private statements together, public
// first. (The EDB indexes only a pod's public statements.)
func (p *MainPod) AllStatements() []Statement {
	out := make([]Statement, 0, len(p.PublicStatements)+len(p.PrivateStatements))
	out = append(out, p.PublicStatements...)
	out = append(out, p.PrivateStatements...)
	return out
}
