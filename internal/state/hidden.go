package state

import (
	"fmt"
	"strings"

	"ttview/internal/model"
)

// HideParam is the aggregated query parameter holding all hidden event
// keys. Its value joins key components with "_" and keys with ",".
const HideParam = "hide"

// HiddenAction is the closed set of actions understood by ReduceHidden.
// Any other dynamic type is a programming error and panics.
type HiddenAction interface {
	hiddenAction()
}

// HideEvent hides one concrete event occurrence.
type HideEvent struct {
	Key model.HiddenKey
}

// ResetHidden discards all hidden keys.
type ResetHidden struct{}

func (HideEvent) hiddenAction()   {}
func (ResetHidden) hiddenAction() {}

// ReduceHidden applies one action to the hidden-key sequence.
//
// hide appends the key and re-derives the aggregated parameter from the
// full sequence rather than appending to the previous value, so the
// parameter always matches the in-memory sequence even when dispatches
// arrive out of order. reset drops everything and unsets the parameter;
// resetting an already-empty sequence is a no-op.
func ReduceHidden(current []model.HiddenKey, action HiddenAction) ([]model.HiddenKey, []Command) {
	switch a := action.(type) {
	case HideEvent:
		next := make([]model.HiddenKey, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, a.Key)

		joined := EncodeHidden(next)
		if joined == "" {
			return next, []Command{{Op: OpUnset, Name: HideParam}}
		}
		return next, []Command{{Op: OpSet, Name: HideParam, Value: joined}}

	case ResetHidden:
		return nil, []Command{{Op: OpUnset, Name: HideParam}}

	default:
		panic(fmt.Sprintf("state: unknown hidden action %T", action))
	}
}

// EncodeHidden renders the aggregated hide value for a key sequence.
func EncodeHidden(keys []model.HiddenKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(k, "_"))
	}
	return strings.Join(parts, ",")
}

// DecodeHidden parses an aggregated hide value back into keys. An empty
// value yields no keys.
func DecodeHidden(value string) []model.HiddenKey {
	if value == "" {
		return nil
	}
	var keys []model.HiddenKey
	for _, part := range strings.Split(value, ",") {
		if part == "" {
			continue
		}
		keys = append(keys, model.HiddenKey(strings.Split(part, "_")))
	}
	return keys
}
