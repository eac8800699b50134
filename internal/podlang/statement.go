package podlang

// Statement is a ground Podlang fact or goal: a Predicate applied to
// fully-resolved ValueRef arguments (spec.md §3). Statements are the
// nodes of the proof DAG and the entries of the EDB and the
// ConstraintStore's premise set.
type Statement struct {
	Predicate Predicate
	Args      []ValueRef
}

// NewStatement builds a Statement, trusting the caller to match the
// predicate's arity; handlers and the EDB validate arity at use.
func NewStatement(pred Predicate, args ...ValueRef) Statement {
	return Statement{Predicate: pred, Args: args}
}

func (s Statement) String() string {
	out := s.Predicate.String() + "("
	for i, a := range s.Args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}

// Equal compares two ground statements structurally: same predicate,
// same arity, pairwise-equal arguments.
func (s Statement) Equal(o Statement) bool {
	if !s.Predicate.Equal(o.Predicate) || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Key is a content-based dedup key for a Statement, used wherever the
// spec requires statement-set dedup (proof DAG nodes, EDB fact sets).
func (s Statement) Key() string {
	out := s.Predicate.String()
	for _, a := range s.Args {
		out += "|" + a.String()
	}
	return out
}
