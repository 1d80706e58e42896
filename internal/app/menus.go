package app

import (
	tghelpers "github.com/m3rciful/slotbot/core/telegram/helpers"
	"github.com/m3rciful/slotbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// mainMenu builds the reply keyboard for a user. Rows grow with the
// caller's privilege: everyone books, operators manage the inventory,
// the owner also controls the operator set.
func (a *App) mainMenu(userID int64) *tele.ReplyMarkup {
	rows := [][]string{
		{btnBook, btnMyBookings},
		{btnAbout},
	}
	if a.svc.IsOperator(userID) {
		rows = append(rows,
			[]string{btnNewSlot, btnSlots},
			[]string{btnAllBookings, btnUsers, btnStats},
		)
	}
	if a.svc.IsOwner(userID) {
		rows = append(rows, []string{btnOperators, btnClearAll})
	}
	return keyboard.ReplyButtons(rows...)
}

// sendMenu shows the main menu with the given text. Delivery goes
// through the async sender helpers.
func (a *App) sendMenu(c tele.Context, text string) error {
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: a.mainMenu(c.Sender().ID)})
}

func registerMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Register", Unique: cbRegister}},
		[]keyboard.InlineBtn{{Text: "❓ Why register?", Unique: cbWhyRegister}},
	)
}

func confirmMarkup(okUnique, payload string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	ok := markup.Data("✅ Yes", okUnique, payload)
	cancel := keyboard.CancelButton(markup, cbCancelGeneric)
	markup.InlineKeyboard = [][]tele.InlineButton{{*ok.Inline(), *cancel.Inline()}}
	return markup
}
