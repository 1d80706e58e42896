package app

import (
	"strconv"

	tg "github.com/m3rciful/slotbot/core/telegram"
	"github.com/m3rciful/slotbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the menu",
	})
	reg.RegisterCommand("/id", commands.Command{
		Handler:     a.handleID,
		Description: "Show your Telegram ID",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Abort the current dialog",
	})
}

// handleStart greets the user. Registered users get the menu right
// away; everyone else gets the registration prompt.
func (a *App) handleStart(c tele.Context) error {
	if a.svc.IsRegistered(c.Sender().ID) {
		return a.sendMenu(c, msgWelcomeKnown)
	}
	return c.Send(msgWelcomeNew, registerMarkup())
}

func (a *App) handleID(c tele.Context) error {
	return c.Send("Your Telegram ID: " + strconv.FormatInt(c.Sender().ID, 10))
}

func (a *App) handleCancel(c tele.Context) error {
	if !a.engine.InProgress(c.Sender().ID) {
		return a.sendMenu(c, msgNothingToCancel)
	}
	return a.engine.Cancel(c)
}
