package state

import "ttview/internal/model"

// ReduceSelection replaces the selected-module sequence with next and
// returns the parameter writes that keep the query string in step: every
// module that disappeared has its parameter unset, every module that
// appeared gets a presence-only flag, and modules present in both are left
// untouched.
//
// next becomes the new state verbatim; no filtering or dedup happens here,
// the caller controls what it passes in.
func ReduceSelection(current, next []model.Module) ([]model.Module, []Command) {
	currentIDs := make(map[string]bool, len(current))
	for _, m := range current {
		currentIDs[m.ID] = true
	}
	nextIDs := make(map[string]bool, len(next))
	for _, m := range next {
		nextIDs[m.ID] = true
	}

	var cmds []Command
	for _, m := range current {
		if !nextIDs[m.ID] {
			cmds = append(cmds, Command{Op: OpUnset, Name: m.ID})
		}
	}
	for _, m := range next {
		if !currentIDs[m.ID] {
			cmds = append(cmds, Command{Op: OpFlag, Name: m.ID})
		}
	}

	return next, cmds
}
