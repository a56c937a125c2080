// Package state holds the selection-state reducers of the viewer: which
// modules are chosen, which class occurrences are explicitly specified,
// and which individual events are hidden.
//
// Reducers are pure: each transition returns the next state together with
// the query-parameter writes it requires, and Apply executes those writes
// against a query.Store in order. Nothing here touches the store directly,
// which keeps the transitions testable without one.
package state

import "ttview/internal/query"

// CommandOp enumerates the query-parameter write kinds.
type CommandOp int

const (
	// OpSet writes a valued parameter.
	OpSet CommandOp = iota
	// OpFlag writes a presence-only parameter.
	OpFlag
	// OpUnset removes a parameter.
	OpUnset
)

// Command is a single query-parameter write produced by a reducer
// transition.
type Command struct {
	Op    CommandOp
	Name  string
	Value string
}

// Apply executes cmds against the store in the given order. Commands are
// never reordered, batched, or coalesced: the encoded store must pass
// through exactly the intermediate states the transitions produced, since
// a view URL may be shared at any point between dispatches.
func Apply(store *query.Store, cmds []Command) {
	for _, c := range cmds {
		switch c.Op {
		case OpSet:
			store.Set(c.Name, c.Value)
		case OpFlag:
			store.Flag(c.Name)
		case OpUnset:
			store.Unset(c.Name)
		}
	}
}
