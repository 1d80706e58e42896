// Package notify fans events out to the operator set. Delivery goes
// through the async sender when one is wired; a recipient that cannot
// be reached is logged and skipped, never failing the whole fan-out.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/slotbot/core/logger"
	tghelpers "github.com/m3rciful/slotbot/core/telegram/helpers"
	"github.com/m3rciful/slotbot/core/telegram/sender"
	"github.com/m3rciful/slotbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// OperatorSource yields the current recipient set.
type OperatorSource interface {
	Operators() []int64
}

// Notifier delivers event messages to every operator except the actor
// who triggered the event. Sends use the bot of the update that caused
// the event.
type Notifier struct {
	disp *sender.Dispatcher
	ops  OperatorSource
}

// New builds a notifier. disp may be nil, in which case sends run
// synchronously on the caller's goroutine.
func New(disp *sender.Dispatcher, ops OperatorSource) *Notifier {
	return &Notifier{disp: disp, ops: ops}
}

// SetDispatcher wires the async sender once the runtime has built it.
func (n *Notifier) SetDispatcher(disp *sender.Dispatcher) {
	n.disp = disp
}

// BookingCreated announces a fresh booking.
func (n *Notifier) BookingCreated(c tele.Context, b models.Booking, remaining int) {
	text := fmt.Sprintf("📝 New booking: %s\n%s\nSeats left: %d",
		b.Key().String(), b.DisplayName(), remaining)
	n.fanOut(c, "booking_created", text, b.UserID)
}

// UserRegistered announces a completed registration.
func (n *Notifier) UserRegistered(c tele.Context, acc models.Account) {
	who := acc.FullName
	if acc.Username != "" {
		who = fmt.Sprintf("%s (@%s)", who, acc.Username)
	}
	n.fanOut(c, "user_registered", "👤 New user registered: "+who, acc.ID)
}

// OperatorGranted announces a new operator to the rest of the set.
func (n *Notifier) OperatorGranted(c tele.Context, actorID, targetID int64, display string) {
	n.fanOut(c, "operator_granted",
		fmt.Sprintf("🔑 Operator added: %s (id %d)", display, targetID),
		actorID, targetID)
}

// OperatorRevoked announces a removed operator to the rest of the set.
func (n *Notifier) OperatorRevoked(c tele.Context, actorID, targetID int64, display string) {
	n.fanOut(c, "operator_revoked",
		fmt.Sprintf("🔒 Operator removed: %s (id %d)", display, targetID),
		actorID, targetID)
}

// SlotsCleared announces a full inventory wipe.
func (n *Notifier) SlotsCleared(c tele.Context, actorID int64, slots, bookings int) {
	n.fanOut(c, "slots_cleared",
		fmt.Sprintf("🧹 Inventory cleared: %d slots, %d bookings removed", slots, bookings),
		actorID)
}

// Direct sends a one-off message to a single user, for example the
// congratulation DM to a freshly granted operator.
func (n *Notifier) Direct(c tele.Context, userID int64, text string) {
	if c.Bot() == nil {
		return
	}
	n.deliver(c, "direct", userID, text)
}

// fanOut sends text to every operator not named in except, usually the
// actor and the subject of the event. Each recipient is handled
// independently.
func (n *Notifier) fanOut(c tele.Context, event, text string, except ...int64) {
	if n.ops == nil || c.Bot() == nil {
		return
	}
	skip := make(map[int64]struct{}, len(except))
	for _, id := range except {
		skip[id] = struct{}{}
	}
	sent := 0
	for _, id := range n.ops.Operators() {
		if _, ok := skip[id]; ok {
			continue
		}
		n.deliver(c, event, id, text)
		sent++
	}
	logger.SVCNotify.Debug("fan-out queued",
		slog.String("event", "notify."+event),
		slog.Int("count", sent),
	)
}

func (n *Notifier) deliver(c tele.Context, event string, recipient int64, text string) {
	bot := c.Bot()
	run := func() error {
		_, err := bot.Send(&tele.User{ID: recipient}, text)
		return err
	}
	if n.disp != nil {
		ctx := tghelpers.BuildContext(c)
		if err := n.disp.Enqueue(ctx, "notify."+event, "sendMessage", run); err == nil {
			return
		}
	}
	if err := run(); err != nil {
		logger.SVCNotify.Warn("notify send failed",
			slog.String("event", "notify."+event),
			slog.Int64("chat_id", recipient),
			slog.String("err", err.Error()),
		)
	}
}
