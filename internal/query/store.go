// Package query owns the URL query-parameter state of a timetable view.
//
// The store stands in for the browser address bar: every logical value of a
// view (year, session, per-module occurrence spec, hide list) is one named
// parameter, and the encoded form of the store is the shareable part of the
// URL. It is injected into the state reducers rather than accessed as a
// global.
package query

import "strings"

type entry struct {
	value string
	// flag marks a presence-only parameter (encoded as a bare key with no
	// "="), used for module-selection flags.
	flag bool
}

// Store is an ordered mapping from parameter name to value. Parameters
// encode in first-write order; re-setting an existing parameter keeps its
// position.
type Store struct {
	order   []string
	entries map[string]entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Parse seeds a Store from a raw query string (without the leading "?").
// A bare key or a key with an empty value both parse as presence-only
// flags. Absent parameters are simply absent; Parse never fails.
func Parse(raw string) *Store {
	s := New()
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		name, value, hasValue := strings.Cut(part, "=")
		name = unescape(name)
		if !hasValue || value == "" {
			s.Flag(name)
			continue
		}
		s.Set(name, unescape(value))
	}
	return s
}

// Get returns the parameter's value and whether it is present. A
// presence-only flag reports ("", true).
func (s *Store) Get(name string) (string, bool) {
	e, ok := s.entries[name]
	return e.value, ok
}

// Set sets or replaces the named parameter. Setting an empty value is
// equivalent to Unset.
func (s *Store) Set(name, value string) {
	if value == "" {
		s.Unset(name)
		return
	}
	s.put(name, entry{value: value})
}

// Flag records the named parameter as a presence-only flag (no value).
func (s *Store) Flag(name string) {
	s.put(name, entry{flag: true})
}

// Unset removes the parameter entirely; no-op when absent.
func (s *Store) Unset(name string) {
	if _, ok := s.entries[name]; !ok {
		return
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Names returns the parameter names in encode order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Encode renders the query string (no leading "?") in first-write order.
// Flags encode as bare keys.
func (s *Store) Encode() string {
	var b strings.Builder
	for i, name := range s.order {
		if i > 0 {
			b.WriteString("&")
		}
		e := s.entries[name]
		b.WriteString(escape(name))
		if !e.flag {
			b.WriteString("=")
			b.WriteString(escape(e.value))
		}
	}
	return b.String()
}

func (s *Store) put(name string, e entry) {
	if _, ok := s.entries[name]; !ok {
		s.order = append(s.order, name)
	}
	s.entries[name] = e
}
