package xfer

// Policy is the running decision on what to do when a transfer target
// already exists. The Once values apply to a single collision; the All
// values stick for the remainder of the operation.
type Policy int

const (
	Undecided Policy = iota
	SkipOnce
	SkipAll
	ReplaceOnce
	ReplaceAll
)

func (p Policy) String() string {
	switch p {
	case SkipOnce:
		return "skip-once"
	case SkipAll:
		return "skip-all"
	case ReplaceOnce:
		return "replace-once"
	case ReplaceAll:
		return "replace-all"
	}
	return "undecided"
}

// Decider is asked to resolve a collision when no running policy applies.
// It must return one of the four concrete policy values; returning
// Undecided is a contract violation.
type Decider interface {
	Decide(name string) (Policy, error)
}

// Resolver tracks the running collision policy across one operation.
type Resolver struct {
	decider Decider
	running Policy
}

func NewResolver(decider Decider) *Resolver {
	rv := Resolver{
		decider: decider,
		running: Undecided,
	}
	return &rv
}

// Resolve reports whether the conflicting entry should be replaced.
// A sticky All answer is retained as the running policy and silences the
// decider for the rest of the operation; a Once answer is consumed and
// the running policy is left as it was.
func (rv *Resolver) Resolve(name string) (bool, error) {
	switch rv.running {
	case SkipAll:
		return false, nil
	case ReplaceAll:
		return true, nil
	}

	policy, err := rv.decider.Decide(name)
	if err != nil {
		return false, err
	}

	switch policy {
	case SkipAll, ReplaceAll:
		rv.running = policy
	case Undecided:
		return false, &ErrBadDecision{name: name}
	}

	return policy == ReplaceOnce || policy == ReplaceAll, nil
}
