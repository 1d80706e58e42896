// Package flow builds multi-step conversational dialogs on top of the
// session manager. A flow is a fixed sequence of prompt/answer steps;
// each answer is validated by a pure function, so the whole transition
// table can be tested without a bot.
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/slotbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// Step is one prompt/answer exchange inside a flow.
type Step struct {
	// Name keys the accepted value in the session temp data and in the
	// values map handed to OnComplete.
	Name string
	// Prompt is sent when the step becomes active.
	Prompt string
	// Retry overrides the message sent when Apply rejects the input.
	// Empty means the validation error's own text is used.
	Retry string
	// Apply validates raw input and returns the value to record. It must
	// be pure: same input, same result.
	Apply func(raw string) (interface{}, error)
}

// Definition is a complete flow: an ordered step list plus a completion
// hook receiving every collected value.
type Definition struct {
	Name       string
	Steps      []Step
	OnComplete func(c tele.Context, values map[string]interface{}) error
}

const statePrefix = "flow:"

// StepState derives the session state naming step idx of flow name.
func StepState(name string, idx int) state.State {
	return state.State(statePrefix + name + ":" + strconv.Itoa(idx))
}

// ParseState splits a session state back into flow name and step index.
func ParseState(st state.State) (name string, idx int, ok bool) {
	raw := string(st)
	if !strings.HasPrefix(raw, statePrefix) {
		return "", 0, false
	}
	rest := raw[len(statePrefix):]
	cut := strings.LastIndexByte(rest, ':')
	if cut <= 0 {
		return "", 0, false
	}
	idx, err := strconv.Atoi(rest[cut+1:])
	if err != nil || idx < 0 {
		return "", 0, false
	}
	return rest[:cut], idx, true
}

// Advance applies raw input to the step at idx. On success it returns
// the recorded value, the next step index and whether the flow is done.
// On rejection it returns the validation error and the flow stays put.
func (d *Definition) Advance(idx int, raw string) (value interface{}, next int, done bool, err error) {
	if idx < 0 || idx >= len(d.Steps) {
		return nil, 0, false, fmt.Errorf("flow %s: no step %d", d.Name, idx)
	}
	step := d.Steps[idx]
	value, err = step.Apply(raw)
	if err != nil {
		return nil, idx, false, err
	}
	next = idx + 1
	return value, next, next >= len(d.Steps), nil
}

// RetryText resolves the message to send when the step at idx rejected
// input with err.
func (d *Definition) RetryText(idx int, err error) string {
	if idx >= 0 && idx < len(d.Steps) && d.Steps[idx].Retry != "" {
		return d.Steps[idx].Retry
	}
	return err.Error()
}
