package app

// Reply keyboard labels. These double as routing keys in the text
// fallback, so they must stay unique across menus.
const (
	btnBook        = "📅 Book a slot"
	btnMyBookings  = "🗂 My bookings"
	btnAbout       = "ℹ️ About"
	btnNewSlot     = "➕ New slot"
	btnSlots       = "📋 Slots"
	btnAllBookings = "📒 All bookings"
	btnUsers       = "👥 Users"
	btnStats       = "📊 Stats"
	btnOperators   = "🔑 Operators"
	btnClearAll    = "🧹 Clear everything"
	btnCancel      = "❌ Cancel"
)

// Callback uniques.
const (
	cbRegister      = "register"
	cbWhyRegister   = "why_register"
	cbPickDate      = "book_date"
	cbPickSlot      = "book_slot"
	cbSlotDelete    = "slot_del"
	cbSlotDeleteOK  = "slot_del_ok"
	cbClearAllOK    = "clear_all_ok"
	cbOpAdd         = "op_add"
	cbOpRemove      = "op_rm"
	cbOpRemoveOK    = "op_rm_ok"
	cbBackToDates   = "back_dates"
	cbCancelGeneric = "cancel"
)

const (
	msgWelcomeKnown = "Welcome back! Pick an action from the menu below."
	msgWelcomeNew   = "Hi! This bot books appointment slots.\n\nYou need to register before booking."
	msgWhyRegister  = "Registration links your bookings to your name so the operators know who is coming. It takes two short questions."
	msgAbout        = "This bot publishes appointment slots and books seats on them.\nEach slot holds up to 9 people.\nPick 📅 Book a slot to see what is available."

	msgAskFirstName = "Enter your first name:"
	msgAskLastName  = "Enter your last name:"
	msgNameTooShort = "The name must be at least 2 characters long. Try again:"
	msgRegistered   = "You are registered! Now you can book slots."

	msgAskSlotDate = "Enter the slot date (DD.MM.YYYY):"
	msgAskSlotTime = "Enter the slot time (HH:MM):"
	msgAskSlotDesc = "Enter a description, or \"-\" for none:"
	msgBadDate     = "That is not a valid date. Use DD.MM.YYYY, for example 05.09.2026:"
	msgBadTime     = "That is not a valid time. Use HH:MM, for example 18:30:"
	msgSlotCreated = "Slot created: "

	msgAskOperatorID = "Send the numeric Telegram ID of the new operator:"
	msgBadOperatorID = "That does not look like a numeric ID. Try again:"

	msgPickDate        = "Pick a date:"
	msgPickSlot        = "Pick a slot:"
	msgNoSlots         = "No slots are published yet. Check back later."
	msgSlotFull        = "This slot is already full. Pick another one."
	msgSlotGone        = "This slot no longer exists. Pick another one."
	msgAlreadyBooked   = "You already have a booking on this slot."
	msgNotRegistered   = "Please register first."
	msgBookingDone     = "Booked! "
	msgNoBookings      = "You have no bookings yet."
	msgNoBookingsAtAll = "There are no bookings yet."

	msgNotOperator     = "This action is for operators only."
	msgNotOwner        = "This action is for the owner only."
	msgCancelled       = "Cancelled."
	msgNothingToCancel = "Nothing to cancel."
	msgNoUsers         = "Nobody has registered yet."
	msgConfirmDelete   = "Delete this slot? Its bookings are removed with it."
	msgConfirmClearAll = "Remove ALL slots and ALL bookings? This cannot be undone."
	msgConfirmRemoveOp = "Revoke this operator?"
	msgCleared         = "Inventory cleared."
	msgOperatorAdded   = "Operator added."
	msgOperatorGone    = "Operator removed."
	msgYouAreOperator  = "🔑 You were made an operator of this bot. Open /start to see your new menu."
	msgYouAreRevoked   = "Your operator access was revoked."
	msgAlreadyOperator = "That user is already an operator."
	msgTargetIsOwner   = "The owner already has every permission."
	msgUnknownAction   = "I did not understand that. Use the menu below."
)
