// internal/event/event_test.go
package event

import "testing"

func TestPostFormatsMessage(t *testing.T) {
	var gotMsg string
	var gotLevel Level
	sink := SinkFunc(func(message string, level Level) {
		gotMsg = message
		gotLevel = level
	})

	Post(sink, "S1", "slave started", Success)

	if gotMsg != "[S1] slave started" {
		t.Fatalf("message = %q, want %q", gotMsg, "[S1] slave started")
	}
	if gotLevel != Success {
		t.Fatalf("level = %v, want Success", gotLevel)
	}
}

func TestPostNilSink(t *testing.T) {
	// must not panic
	Post(nil, "S1", "ignored", Info)
}

func TestPostContainsSinkPanic(t *testing.T) {
	sink := SinkFunc(func(string, Level) {
		panic("sink exploded")
	})

	// the failure must not reach the caller
	Post(sink, "S1", "boom", Error)
}

func TestLevelStrings(t *testing.T) {
	cases := map[Level]string{
		Info:    "INFO",
		Success: "SUCCESS",
		Warning: "WARNING",
		Error:   "ERROR",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", level, got, want)
		}
	}
}
