package errors

import "testing"

func TestExitCodeMapping(t *testing.T) {
	cases := map[Kind]int{
		InvalidArgument: 2,
		UnknownEntity:   3,
		PartialParse:    4,
		Internal:        1,
	}
	for kind, want := range cases {
		if got := kind.ExitCode(); got != want {
			t.Errorf("%s.ExitCode() = %d, want %d", kind, got, want)
		}
	}
}

func TestToJSONRoundTrips(t *testing.T) {
	e := New(InvalidArgument, "bad glob").WithField("pattern", "[unterminated")
	b, err := e.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("expected non-empty JSON")
	}
}
