package state

import (
	"fmt"
	"strconv"

	"ttview/internal/model"
)

// OccurrenceAction is the closed set of actions understood by
// ReduceOccurrences. A value of any other dynamic type is a programming
// error and panics.
type OccurrenceAction interface {
	occurrenceAction()
}

// SelectOccurrence chooses one occurrence within a module's class group.
type SelectOccurrence struct {
	Module     string
	Group      string
	Occurrence int
}

// ResetOccurrence withdraws a previously specified occurrence.
type ResetOccurrence struct {
	Module     string
	Group      string
	Occurrence int
}

func (SelectOccurrence) occurrenceAction() {}
func (ResetOccurrence) occurrenceAction()  {}

// ReduceOccurrences applies one action to the specified-occurrence
// sequence.
//
// select sets the module's parameter to "<group><occurrence>" and appends
// the triple. It does not remove earlier triples for the same
// (module, group); callers reset first if they want to avoid conflicting
// entries.
//
// reset unsets the module's parameter unconditionally — even when other
// groups of that module still have specified occurrences, the whole
// parameter goes away — and removes every triple matching all three
// fields. See TestOccurrenceResetDropsWholeParam for this edge.
func ReduceOccurrences(current []model.SpecifiedOccurrence, action OccurrenceAction) ([]model.SpecifiedOccurrence, []Command) {
	switch a := action.(type) {
	case SelectOccurrence:
		next := make([]model.SpecifiedOccurrence, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, model.SpecifiedOccurrence{
			Module:     a.Module,
			Group:      a.Group,
			Occurrence: a.Occurrence,
		})
		cmds := []Command{{Op: OpSet, Name: a.Module, Value: a.Group + strconv.Itoa(a.Occurrence)}}
		return next, cmds

	case ResetOccurrence:
		next := make([]model.SpecifiedOccurrence, 0, len(current))
		for _, o := range current {
			if o.Module == a.Module && o.Group == a.Group && o.Occurrence == a.Occurrence {
				continue
			}
			next = append(next, o)
		}
		cmds := []Command{{Op: OpUnset, Name: a.Module}}
		return next, cmds

	default:
		panic(fmt.Sprintf("state: unknown occurrence action %T", action))
	}
}
