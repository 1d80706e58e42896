package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/slotbot/core/telegram/state"
)

var errTooShort = errors.New("name must be at least 2 characters")

func nameStep(key, prompt string) Step {
	return Step{
		Name:   key,
		Prompt: prompt,
		Apply: func(raw string) (interface{}, error) {
			trimmed := strings.TrimSpace(raw)
			if len([]rune(trimmed)) < 2 {
				return nil, errTooShort
			}
			return trimmed, nil
		},
	}
}

func testDefinition() *Definition {
	return &Definition{
		Name: "signup",
		Steps: []Step{
			nameStep("first_name", "Enter your first name"),
			nameStep("last_name", "Enter your last name"),
		},
	}
}

func TestStepStateRoundTrip(t *testing.T) {
	st := StepState("create_slot", 2)
	name, idx, ok := ParseState(st)
	if !ok || name != "create_slot" || idx != 2 {
		t.Fatalf("ParseState(%q) = %q, %d, %v", st, name, idx, ok)
	}

	for _, raw := range []string{"idle", "flow:", "flow:x", "flow:x:-1", "flow:x:abc", "flow::3"} {
		if _, _, ok := ParseState(state.State(raw)); ok {
			t.Fatalf("ParseState(%q) accepted", raw)
		}
	}
}

func TestAdvanceDeterministic(t *testing.T) {
	def := testDefinition()

	for i := 0; i < 3; i++ {
		value, next, done, err := def.Advance(0, "  Alice ")
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if value != "Alice" || next != 1 || done {
			t.Fatalf("Advance = %v, %d, %v", value, next, done)
		}
	}

	value, next, done, err := def.Advance(1, "Smith")
	if err != nil {
		t.Fatalf("Advance last: %v", err)
	}
	if value != "Smith" || next != 2 || !done {
		t.Fatalf("Advance last = %v, %d, %v", value, next, done)
	}
}

func TestAdvanceRejection(t *testing.T) {
	def := testDefinition()

	_, next, done, err := def.Advance(0, "A")
	if !errors.Is(err, errTooShort) {
		t.Fatalf("err = %v, want errTooShort", err)
	}
	if next != 0 || done {
		t.Fatalf("rejection moved flow: next=%d done=%v", next, done)
	}

	if _, _, _, err := def.Advance(5, "x"); err == nil {
		t.Fatalf("out-of-range step accepted")
	}
}

func TestRetryText(t *testing.T) {
	def := testDefinition()
	if got := def.RetryText(0, errTooShort); got != errTooShort.Error() {
		t.Fatalf("RetryText = %q", got)
	}
	def.Steps[0].Retry = "try again"
	if got := def.RetryText(0, errTooShort); got != "try again" {
		t.Fatalf("RetryText override = %q", got)
	}
}

func TestEngineRegisterValidation(t *testing.T) {
	e := NewEngine(state.NewMemoryManager(), Options{})

	if err := e.Register(&Definition{Name: "empty"}); err == nil {
		t.Fatalf("stepless definition accepted")
	}
	if err := e.Register(&Definition{Steps: []Step{nameStep("x", "p")}}); err == nil {
		t.Fatalf("nameless definition accepted")
	}

	def := testDefinition()
	if err := e.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := e.Register(def); err == nil {
		t.Fatalf("duplicate registration accepted")
	}
}

func TestEngineInProgress(t *testing.T) {
	mgr := state.NewMemoryManager()
	e := NewEngine(mgr, Options{})
	if err := e.Register(testDefinition()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	const userID int64 = 42
	if e.InProgress(userID) {
		t.Fatalf("fresh user reported in progress")
	}

	mgr.SetState(userID, StepState("signup", 0))
	if !e.InProgress(userID) {
		t.Fatalf("active flow not reported")
	}

	mgr.SetState(userID, state.StateIdle)
	if e.InProgress(userID) {
		t.Fatalf("idle user reported in progress")
	}
}
