package app

import (
	"errors"
	"strconv"
	"strings"

	"github.com/m3rciful/slotbot/internal/booking"
	"github.com/m3rciful/slotbot/internal/flow"

	tele "gopkg.in/telebot.v4"
)

const (
	flowRegister    = "register"
	flowCreateSlot  = "create_slot"
	flowAddOperator = "add_operator"
)

func (a *App) registerFlows() error {
	for _, def := range []*flow.Definition{
		a.registerFlowDef(),
		a.createSlotFlowDef(),
		a.addOperatorFlowDef(),
	} {
		if err := a.engine.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func nameStep(key, prompt string) flow.Step {
	return flow.Step{
		Name:   key,
		Prompt: prompt,
		Retry:  msgNameTooShort,
		Apply: func(raw string) (interface{}, error) {
			trimmed := strings.TrimSpace(raw)
			if len([]rune(trimmed)) < 2 {
				return nil, errors.New("name shorter than 2 characters")
			}
			return trimmed, nil
		},
	}
}

func (a *App) registerFlowDef() *flow.Definition {
	return &flow.Definition{
		Name: flowRegister,
		Steps: []flow.Step{
			nameStep("first_name", msgAskFirstName),
			nameStep("last_name", msgAskLastName),
		},
		OnComplete: func(c tele.Context, values map[string]interface{}) error {
			sender := c.Sender()
			first, _ := values["first_name"].(string)
			last, _ := values["last_name"].(string)

			acc, err := a.svc.Register(sender.ID, first, last, sender.Username)
			switch {
			case errors.Is(err, booking.ErrAlreadyRegistered):
				return c.Send(msgWelcomeKnown)
			case err != nil && !booking.IsPersist(err):
				return err
			}
			a.notifier.UserRegistered(c, acc)
			if sendErr := c.Send(msgRegistered); sendErr != nil {
				return sendErr
			}
			return err
		},
	}
}

func (a *App) createSlotFlowDef() *flow.Definition {
	return &flow.Definition{
		Name: flowCreateSlot,
		Steps: []flow.Step{
			{
				Name:   "date",
				Prompt: msgAskSlotDate,
				Retry:  msgBadDate,
				Apply: func(raw string) (interface{}, error) {
					date, err := booking.ParseSlotDate(raw)
					if err != nil {
						return nil, err
					}
					return date, nil
				},
			},
			{
				Name:   "time",
				Prompt: msgAskSlotTime,
				Retry:  msgBadTime,
				Apply: func(raw string) (interface{}, error) {
					t, err := booking.ParseSlotTime(raw)
					if err != nil {
						return nil, err
					}
					return t, nil
				},
			},
			{
				Name:   "description",
				Prompt: msgAskSlotDesc,
				Apply: func(raw string) (interface{}, error) {
					return strings.TrimSpace(raw), nil
				},
			},
		},
		OnComplete: func(c tele.Context, values map[string]interface{}) error {
			date, _ := values["date"].(string)
			timeStr, _ := values["time"].(string)
			desc, _ := values["description"].(string)

			slot, err := a.svc.CreateSlot(c.Sender().ID, date, timeStr, desc)
			if err != nil && !booking.IsPersist(err) {
				return a.replyDomainError(c, err)
			}
			if sendErr := c.Send(msgSlotCreated + slot.Label()); sendErr != nil {
				return sendErr
			}
			return err
		},
	}
}

func (a *App) addOperatorFlowDef() *flow.Definition {
	return &flow.Definition{
		Name: flowAddOperator,
		Steps: []flow.Step{
			{
				Name:   "user_id",
				Prompt: msgAskOperatorID,
				Retry:  msgBadOperatorID,
				Apply: func(raw string) (interface{}, error) {
					id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
					if err != nil || id <= 0 {
						return nil, errors.New("not a positive numeric id")
					}
					return id, nil
				},
			},
		},
		OnComplete: func(c tele.Context, values map[string]interface{}) error {
			target, _ := values["user_id"].(int64)

			err := a.svc.AddOperator(c.Sender().ID, target)
			if err != nil && !booking.IsPersist(err) {
				return a.replyDomainError(c, err)
			}
			a.notifier.OperatorGranted(c, c.Sender().ID, target, a.displayName(target))
			a.notifier.Direct(c, target, msgYouAreOperator)
			if sendErr := c.Send(msgOperatorAdded); sendErr != nil {
				return sendErr
			}
			return err
		},
	}
}

// displayName resolves a user id to its registered name, falling back
// to the bare id for users the bot has never seen.
func (a *App) displayName(userID int64) string {
	if acc, ok := a.svc.Account(userID); ok {
		if acc.Username != "" {
			return acc.FullName + " (@" + acc.Username + ")"
		}
		return acc.FullName
	}
	return "id " + strconv.FormatInt(userID, 10)
}
