package flow

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/core/telegram/keyboard"
	"github.com/m3rciful/slotbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// Options tune engine behaviour shared by every flow.
type Options struct {
	// CancelText is the reply-keyboard label that aborts any active flow.
	CancelText string
	// CancelledText is sent to the user after an abort.
	CancelledText string
	// OnExit restores the user's idle keyboard after completion or
	// cancellation.
	OnExit func(c tele.Context) error
}

// Engine drives registered flows over a session manager. It satisfies
// the text router's FSM contract, so any text update from a user with
// an active flow lands in ManagerHandler.
type Engine struct {
	mgr  state.Manager
	opts Options

	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewEngine builds an engine on the given session manager.
func NewEngine(mgr state.Manager, opts Options) *Engine {
	return &Engine{
		mgr:  mgr,
		opts: opts,
		defs: make(map[string]*Definition),
	}
}

// Register adds a flow definition. Definitions are fixed at wiring time.
func (e *Engine) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("flow: definition requires a name")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("flow %s: at least one step required", def.Name)
	}
	for i, st := range def.Steps {
		if st.Name == "" || st.Apply == nil {
			return fmt.Errorf("flow %s: step %d incomplete", def.Name, i)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.defs[def.Name]; ok {
		return fmt.Errorf("flow %s: already registered", def.Name)
	}
	e.defs[def.Name] = def
	return nil
}

// Start activates the named flow for the sender. An already active flow
// of any kind is dropped first, so re-entry always begins from step one
// with clean temp data.
func (e *Engine) Start(c tele.Context, name string) error {
	e.mu.RLock()
	def, ok := e.defs[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("flow %s: not registered", name)
	}

	userID := c.Sender().ID
	e.mgr.Clear(userID)
	e.mgr.SetState(userID, StepState(def.Name, 0))

	logger.SVCFlows.Info("flow started",
		slog.String("event", "flow.start"),
		slog.String("operation", def.Name),
		slog.Int64("user_id", userID),
	)
	return e.prompt(c, def, 0)
}

// Cancel aborts the sender's active flow, if any.
func (e *Engine) Cancel(c tele.Context) error {
	userID := c.Sender().ID
	st := e.mgr.GetState(userID)
	e.mgr.Clear(userID)

	if name, _, ok := ParseState(st); ok {
		logger.SVCFlows.Info("flow cancelled",
			slog.String("event", "flow.cancel"),
			slog.String("operation", name),
			slog.Int64("user_id", userID),
		)
	}
	if e.opts.CancelledText != "" {
		if err := c.Send(e.opts.CancelledText, keyboard.RemoveKeyboard()); err != nil {
			return err
		}
	}
	return e.exit(c)
}

// InProgress reports whether the user has an active flow.
func (e *Engine) InProgress(userID int64) bool {
	_, _, ok := ParseState(e.mgr.GetState(userID))
	return ok
}

// ManagerHandler consumes one text update for the sender's active flow.
func (e *Engine) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	name, idx, ok := ParseState(e.mgr.GetState(userID))
	if !ok {
		return nil
	}
	e.mu.RLock()
	def, found := e.defs[name]
	e.mu.RUnlock()
	if !found {
		e.mgr.Clear(userID)
		return nil
	}

	raw := c.Text()
	if e.opts.CancelText != "" && raw == e.opts.CancelText {
		return e.Cancel(c)
	}

	value, next, done, err := def.Advance(idx, raw)
	if err != nil {
		logger.SVCFlows.Debug("step rejected",
			slog.String("event", "flow.reject"),
			slog.String("operation", def.Name),
			slog.Int64("user_id", userID),
			slog.Int("page", idx),
			slog.String("err", err.Error()),
		)
		return c.Send(def.RetryText(idx, err), e.stepMarkup())
	}

	e.mgr.SetTemp(userID, def.Steps[idx].Name, value)
	if !done {
		e.mgr.SetState(userID, StepState(def.Name, next))
		return e.prompt(c, def, next)
	}

	values := make(map[string]interface{}, len(def.Steps))
	for _, st := range def.Steps {
		if v, ok := e.mgr.GetTemp(userID, st.Name); ok {
			values[st.Name] = v
		}
	}
	e.mgr.Clear(userID)

	logger.SVCFlows.Info("flow completed",
		slog.String("event", "flow.complete"),
		slog.String("operation", def.Name),
		slog.Int64("user_id", userID),
	)
	if def.OnComplete != nil {
		if err := def.OnComplete(c, values); err != nil {
			return err
		}
	}
	return e.exit(c)
}

func (e *Engine) prompt(c tele.Context, def *Definition, idx int) error {
	return c.Send(def.Steps[idx].Prompt, e.stepMarkup())
}

func (e *Engine) stepMarkup() *tele.ReplyMarkup {
	if e.opts.CancelText == "" {
		return keyboard.RemoveKeyboard()
	}
	return keyboard.ReplyButtons([]string{e.opts.CancelText})
}

func (e *Engine) exit(c tele.Context) error {
	if e.opts.OnExit != nil {
		return e.opts.OnExit(c)
	}
	return nil
}
