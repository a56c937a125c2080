package query

import "testing"

func TestSetGetUnset(t *testing.T) {
	s := New()
	s.Set("y", "2025")
	s.Set("s", "S1")

	if v, ok := s.Get("y"); !ok || v != "2025" {
		t.Fatalf("Get(y) = %q, %v; want 2025, true", v, ok)
	}

	s.Unset("y")
	if _, ok := s.Get("y"); ok {
		t.Fatalf("y still present after Unset")
	}
	// Unset of an absent parameter is a no-op.
	s.Unset("y")
	if got := s.Encode(); got != "s=S1" {
		t.Fatalf("Encode() = %q, want s=S1", got)
	}
}

func TestSetEmptyValueUnsets(t *testing.T) {
	s := New()
	s.Set("COMP1130", "ComA1")
	s.Set("COMP1130", "")

	if _, ok := s.Get("COMP1130"); ok {
		t.Fatalf("empty-value Set must behave as Unset")
	}
	if got := s.Encode(); got != "" {
		t.Fatalf("Encode() = %q, want empty", got)
	}
}

func TestFlagEncodesBareKey(t *testing.T) {
	s := New()
	s.Set("y", "2025")
	s.Flag("COMP1130")

	if v, ok := s.Get("COMP1130"); !ok || v != "" {
		t.Fatalf("Get(flag) = %q, %v; want \"\", true", v, ok)
	}
	if got := s.Encode(); got != "y=2025&COMP1130" {
		t.Fatalf("Encode() = %q, want y=2025&COMP1130", got)
	}
}

func TestEncodeKeepsFirstWriteOrder(t *testing.T) {
	s := New()
	s.Set("y", "2025")
	s.Set("s", "S1")
	s.Set("hide", "1_2")
	// Re-setting keeps position.
	s.Set("y", "2026")

	if got := s.Encode(); got != "y=2026&s=S1&hide=1_2" {
		t.Fatalf("Encode() = %q", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	s := Parse("y=2025&s=S1&COMP1130&COMP1110=TutA3&hide=1_2,3_4")

	if v, ok := s.Get("COMP1110"); !ok || v != "TutA3" {
		t.Fatalf("Get(COMP1110) = %q, %v", v, ok)
	}
	if _, ok := s.Get("COMP1130"); !ok {
		t.Fatalf("bare key should parse as present")
	}
	if v, _ := s.Get("hide"); v != "1_2,3_4" {
		t.Fatalf("Get(hide) = %q", v)
	}
	if got := s.Encode(); got != "y=2025&s=S1&COMP1130&COMP1110=TutA3&hide=1_2,3_4" {
		t.Fatalf("round trip = %q", got)
	}
}

func TestParseEmptyValueIsFlag(t *testing.T) {
	s := Parse("COMP1130=&y=2025")
	if _, ok := s.Get("COMP1130"); !ok {
		t.Fatalf("key with empty value should parse as present")
	}
	if got := s.Encode(); got != "COMP1130&y=2025" {
		t.Fatalf("Encode() = %q", got)
	}
}

func TestParseAbsentIsNotError(t *testing.T) {
	s := Parse("")
	if _, ok := s.Get("y"); ok {
		t.Fatalf("empty query must yield no parameters")
	}
	if len(s.Names()) != 0 {
		t.Fatalf("Names() = %v, want empty", s.Names())
	}
}

func TestEscaping(t *testing.T) {
	s := New()
	s.Set("q", "a b&c")
	if got := s.Encode(); got != "q=a%20b%26c" {
		t.Fatalf("Encode() = %q", got)
	}
	back := Parse(s.Encode())
	if v, _ := back.Get("q"); v != "a b&c" {
		t.Fatalf("Parse(Encode()) lost value: %q", v)
	}
}
