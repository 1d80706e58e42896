package app

import (
	"strconv"

	tg "github.com/m3rciful/slotbot/core/telegram"
	"github.com/m3rciful/slotbot/core/telegram/callbacks"
	"github.com/m3rciful/slotbot/internal/booking"
	"github.com/m3rciful/slotbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCallbacks(reg *tg.Registry) error {
	for key, h := range map[string]tele.HandlerFunc{
		cbRegister:      a.cbRegister,
		cbWhyRegister:   a.cbWhyRegister,
		cbPickDate:      a.cbPickDate,
		cbPickSlot:      a.cbPickSlot,
		cbBackToDates:   a.cbBackToDates,
		cbSlotDelete:    a.cbSlotDelete,
		cbSlotDeleteOK:  a.cbSlotDeleteConfirm,
		cbClearAllOK:    a.cbClearAllConfirm,
		cbOpAdd:         a.cbOperatorAdd,
		cbOpRemove:      a.cbOperatorRemove,
		cbOpRemoveOK:    a.cbOperatorRemoveConfirm,
		cbCancelGeneric: a.cbCancel,
	} {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cbRegister(c tele.Context) error {
	if a.svc.IsRegistered(c.Sender().ID) {
		return c.Edit(msgWelcomeKnown)
	}
	_ = c.Delete()
	return a.engine.Start(c, flowRegister)
}

func (a *App) cbWhyRegister(c tele.Context) error {
	return c.Edit(msgWhyRegister, registerMarkup())
}

func (a *App) cbPickDate(c tele.Context) error {
	date := callbacks.CallbackPayload(c)
	if date == "" {
		return a.showDatePicker(c, true)
	}
	return a.showSlotPicker(c, date)
}

func (a *App) cbBackToDates(c tele.Context) error {
	return a.showDatePicker(c, true)
}

// cbPickSlot books the tapped slot. The capacity shown on the button
// may be stale by now, so every rejection re-renders the picker state.
func (a *App) cbPickSlot(c tele.Context) error {
	date, timeStr, ok := splitSlotPayload(c)
	if !ok {
		return a.showDatePicker(c, true)
	}
	key := models.SlotKey{Date: date, Time: timeStr}

	b, err := a.svc.Book(c.Sender().ID, key)
	if err != nil && !booking.IsPersist(err) {
		return a.replyDomainError(c, err)
	}

	remaining := a.svc.Remaining(key)
	a.notifier.BookingCreated(c, b, remaining)
	if editErr := c.Edit(msgBookingDone + key.String()); editErr != nil {
		return editErr
	}
	return err
}

func splitSlotPayload(c tele.Context) (date, timeStr string, ok bool) {
	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (a *App) cbSlotDelete(c tele.Context) error {
	if !a.svc.IsOperator(c.Sender().ID) {
		return c.Edit(msgNotOperator)
	}
	idx, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Edit(msgSlotGone)
	}
	slot, err := a.svc.Slot(idx)
	if err != nil {
		return a.replyDomainError(c, err)
	}
	taken := len(a.svc.BookingsAt(slot.Key()))
	text := msgConfirmDelete + "\n" + slot.Label()
	if taken > 0 {
		text += "\nBookings on it: " + strconv.Itoa(taken)
	}
	return c.Edit(text, confirmMarkup(cbSlotDeleteOK, strconv.Itoa(idx)))
}

func (a *App) cbSlotDeleteConfirm(c tele.Context) error {
	idx, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Edit(msgSlotGone)
	}
	slot, dropped, err := a.svc.DeleteSlot(c.Sender().ID, idx)
	if err != nil && !booking.IsPersist(err) {
		return a.replyDomainError(c, err)
	}
	text := "Removed " + slot.Label()
	if len(dropped) > 0 {
		text += " with " + strconv.Itoa(len(dropped)) + " booking(s)"
	}
	if editErr := c.Edit(text); editErr != nil {
		return editErr
	}
	return err
}

func (a *App) cbClearAllConfirm(c tele.Context) error {
	slots, bookings, err := a.svc.ClearAll(c.Sender().ID)
	if err != nil && !booking.IsPersist(err) {
		return a.replyDomainError(c, err)
	}
	a.notifier.SlotsCleared(c, c.Sender().ID, slots, bookings)
	if editErr := c.Edit(msgCleared); editErr != nil {
		return editErr
	}
	return err
}

func (a *App) cbOperatorAdd(c tele.Context) error {
	if !a.svc.IsOwner(c.Sender().ID) {
		return c.Edit(msgNotOwner)
	}
	_ = c.Delete()
	return a.engine.Start(c, flowAddOperator)
}

func (a *App) cbOperatorRemove(c tele.Context) error {
	if !a.svc.IsOwner(c.Sender().ID) {
		return c.Edit(msgNotOwner)
	}
	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Edit(msgOperatorGone)
	}
	text := msgConfirmRemoveOp + "\n" + a.displayName(target)
	return c.Edit(text, confirmMarkup(cbOpRemoveOK, strconv.FormatInt(target, 10)))
}

func (a *App) cbOperatorRemoveConfirm(c tele.Context) error {
	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Edit(msgOperatorGone)
	}
	display := a.displayName(target)
	rmErr := a.svc.RemoveOperator(c.Sender().ID, target)
	if rmErr != nil && !booking.IsPersist(rmErr) {
		return a.replyDomainError(c, rmErr)
	}
	a.notifier.OperatorRevoked(c, c.Sender().ID, target, display)
	a.notifier.Direct(c, target, msgYouAreRevoked)
	if editErr := c.Edit(msgOperatorGone); editErr != nil {
		return editErr
	}
	return rmErr
}

func (a *App) cbCancel(c tele.Context) error {
	return c.Edit(msgCancelled)
}
