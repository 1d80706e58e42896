package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tghelpers "github.com/m3rciful/slotbot/core/telegram/helpers"
	"github.com/m3rciful/slotbot/core/telegram/keyboard"
	"github.com/m3rciful/slotbot/internal/booking"
	"github.com/m3rciful/slotbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// handleMenuText routes reply-keyboard presses. The labels arrive as
// plain text, so this runs as the registry's text fallback.
func (a *App) handleMenuText(c tele.Context) error {
	userID := c.Sender().ID
	switch c.Text() {
	case btnBook:
		return a.showDatePicker(c, false)
	case btnMyBookings:
		return a.showMyBookings(c)
	case btnAbout:
		return tghelpers.SendText(c, msgAbout)
	case btnCancel:
		return a.sendMenu(c, msgNothingToCancel)
	case btnNewSlot:
		if !a.svc.IsOperator(userID) {
			return a.sendMenu(c, msgNotOperator)
		}
		return a.engine.Start(c, flowCreateSlot)
	case btnSlots:
		if !a.svc.IsOperator(userID) {
			return a.sendMenu(c, msgNotOperator)
		}
		return a.showSlotList(c)
	case btnAllBookings:
		if !a.svc.IsOperator(userID) {
			return a.sendMenu(c, msgNotOperator)
		}
		return a.showAllBookings(c)
	case btnUsers:
		if !a.svc.IsOperator(userID) {
			return a.sendMenu(c, msgNotOperator)
		}
		return a.showUsers(c)
	case btnStats:
		if !a.svc.IsOperator(userID) {
			return a.sendMenu(c, msgNotOperator)
		}
		return a.showStats(c)
	case btnOperators:
		if !a.svc.IsOwner(userID) {
			return a.sendMenu(c, msgNotOwner)
		}
		return a.showOperators(c)
	case btnClearAll:
		if !a.svc.IsOwner(userID) {
			return a.sendMenu(c, msgNotOwner)
		}
		return tghelpers.SendText(c, msgConfirmClearAll, &tele.SendOptions{ReplyMarkup: confirmMarkup(cbClearAllOK, "all")})
	}
	return a.sendMenu(c, msgUnknownAction)
}

// replyDomainError turns a domain rejection into a user-facing message.
// Unrecognized errors propagate to the router for logging.
func (a *App) replyDomainError(c tele.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotRegistered):
		return c.Send(msgNotRegistered, registerMarkup())
	case errors.Is(err, booking.ErrSlotFull):
		return c.Send(msgSlotFull)
	case errors.Is(err, booking.ErrUnknownSlot):
		return c.Send(msgSlotGone)
	case errors.Is(err, booking.ErrAlreadyBooked):
		return c.Send(msgAlreadyBooked)
	case errors.Is(err, booking.ErrAlreadyOperator):
		return c.Send(msgAlreadyOperator)
	case errors.Is(err, booking.ErrIsOwner):
		return c.Send(msgTargetIsOwner)
	case errors.Is(err, booking.ErrCannotRemoveOwner):
		return c.Send(msgTargetIsOwner)
	case errors.Is(err, booking.ErrNotOperator):
		return c.Send(msgOperatorGone)
	case errors.Is(err, booking.ErrIndexOutOfRange):
		return c.Send(msgSlotGone)
	case errors.Is(err, booking.ErrUnauthorized):
		return c.Send(msgNotOperator)
	}
	return err
}

// showDatePicker lists dates that still have slots. edit switches
// between sending a fresh message and editing the tapped one.
func (a *App) showDatePicker(c tele.Context, edit bool) error {
	dates := a.svc.SlotDates()
	if len(dates) == 0 {
		if edit {
			return c.Edit(msgNoSlots)
		}
		return tghelpers.SendText(c, msgNoSlots)
	}

	markup := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(dates))
	for _, d := range dates {
		btns = append(btns, markup.Data(d, cbPickDate, d))
	}
	markup.InlineKeyboard = keyboard.ToInlineKeyboard(keyboard.ChunkButtons(btns, 2))
	if edit {
		return c.Edit(msgPickDate, markup)
	}
	return tghelpers.SendText(c, msgPickDate, &tele.SendOptions{ReplyMarkup: markup})
}

// showSlotPicker lists the distinct slots on one date with remaining
// seat counts. Full slots stay visible but carry a full marker.
func (a *App) showSlotPicker(c tele.Context, date string) error {
	slots := a.svc.SlotsOn(date)
	if len(slots) == 0 {
		return a.showDatePicker(c, true)
	}

	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton
	seen := make(map[models.SlotKey]struct{}, len(slots))
	for _, sl := range slots {
		key := sl.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		remaining := a.svc.Remaining(key)
		label := sl.Time
		if sl.Description != "" {
			label += " - " + sl.Description
		}
		if remaining > 0 {
			label += fmt.Sprintf(" (%d left)", remaining)
		} else {
			label += " (full)"
		}
		btn := markup.Data(label, cbPickSlot, key.Date+"|"+key.Time)
		rows = append(rows, []tele.InlineButton{*btn.Inline()})
	}
	back := markup.Data("⬅️ Back", cbBackToDates)
	rows = append(rows, []tele.InlineButton{*back.Inline()})
	markup.InlineKeyboard = rows
	return c.Edit(msgPickSlot, markup)
}

func (a *App) showMyBookings(c tele.Context) error {
	list := a.svc.BookingsFor(c.Sender().ID)
	if len(list) == 0 {
		return tghelpers.SendText(c, msgNoBookings)
	}
	var b strings.Builder
	b.WriteString("Your bookings:\n")
	for i, bk := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, bk.Key().String())
	}
	return tghelpers.SendText(c, b.String())
}

// showSlotList renders the operator inventory with per-slot delete
// buttons keyed by list position.
func (a *App) showSlotList(c tele.Context) error {
	slots := a.svc.Slots()
	if len(slots) == 0 {
		return tghelpers.SendText(c, msgNoSlots)
	}

	var b strings.Builder
	b.WriteString("Published slots:\n")
	markup := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(slots))
	for i, sl := range slots {
		taken := booking.MaxSeatsPerSlot - a.svc.Remaining(sl.Key())
		fmt.Fprintf(&b, "%d. %s — %d/%d booked\n", i+1, sl.Label(), taken, booking.MaxSeatsPerSlot)
		btns = append(btns, markup.Data("🗑 "+strconv.Itoa(i+1), cbSlotDelete, strconv.Itoa(i)))
	}
	markup.InlineKeyboard = keyboard.ToInlineKeyboard(keyboard.ChunkButtons(btns, 3))
	return tghelpers.SendText(c, b.String(), &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) showAllBookings(c tele.Context) error {
	groups := a.svc.BookingsByDate()
	if len(groups) == 0 {
		return tghelpers.SendText(c, msgNoBookingsAtAll)
	}
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "📅 %s\n", g.Date)
		for _, sg := range g.Slots {
			fmt.Fprintf(&b, "  %s (%d/%d):\n", sg.Key.Time, len(sg.Bookings), booking.MaxSeatsPerSlot)
			for _, bk := range sg.Bookings {
				fmt.Fprintf(&b, "    • %s\n", bk.DisplayName())
			}
		}
	}
	return tghelpers.SendText(c, b.String())
}

func (a *App) showUsers(c tele.Context) error {
	accounts := a.svc.Accounts()
	if len(accounts) == 0 {
		return tghelpers.SendText(c, msgNoUsers)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Registered users (%d):\n", len(accounts))
	for i, acc := range accounts {
		name := acc.FullName
		if acc.Username != "" {
			name += " (@" + acc.Username + ")"
		}
		if acc.Operator {
			name += " 🔑"
		}
		fmt.Fprintf(&b, "%d. %s — id %d, since %s\n",
			i+1, name, acc.ID, acc.RegisteredAt.Format("02.01.2006"))
	}
	return tghelpers.SendText(c, b.String())
}

func (a *App) showStats(c tele.Context) error {
	st := a.svc.Stats()
	var b strings.Builder
	b.WriteString("📊 Stats\n")
	fmt.Fprintf(&b, "Users: %d\n", st.Accounts)
	fmt.Fprintf(&b, "Operators: %d\n", st.Operators)
	fmt.Fprintf(&b, "Slots: %d\n", st.Slots)
	fmt.Fprintf(&b, "Bookings: %d (by %d users)\n", st.Bookings, st.UniqueUsers)
	fmt.Fprintf(&b, "Free seats: %d\n", st.FreeSeats)
	fmt.Fprintf(&b, "New users this week: %d\n", a.svc.RegisteredWithin(7*24*time.Hour))

	if top := a.svc.TopBookers(); len(top) > 0 {
		b.WriteString("\nMost active:\n")
		limit := len(top)
		if limit > 5 {
			limit = 5
		}
		for _, uc := range top[:limit] {
			fmt.Fprintf(&b, "  %s — %d\n", uc.Display, uc.Count)
		}
	}
	return tghelpers.SendText(c, b.String())
}

// showOperators renders the operator set with remove buttons and an
// add button. The owner never gets a remove button.
func (a *App) showOperators(c tele.Context) error {
	ops := a.svc.Operators()
	var b strings.Builder
	fmt.Fprintf(&b, "Operators (%d):\n", len(ops))

	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton
	for i, id := range ops {
		name := a.displayName(id)
		if id == a.svc.OwnerID() {
			fmt.Fprintf(&b, "%d. %s — owner\n", i+1, name)
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		btn := markup.Data("➖ "+name, cbOpRemove, strconv.FormatInt(id, 10))
		rows = append(rows, []tele.InlineButton{*btn.Inline()})
	}
	add := markup.Data("➕ Add operator", cbOpAdd)
	rows = append(rows, []tele.InlineButton{*add.Inline()})
	markup.InlineKeyboard = rows
	return tghelpers.SendText(c, b.String(), &tele.SendOptions{ReplyMarkup: markup})
}
