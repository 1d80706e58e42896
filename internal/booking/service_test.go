package booking

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m3rciful/slotbot/internal/models"
	"github.com/m3rciful/slotbot/internal/storage"
)

type fakeStore struct {
	snap     storage.Snapshot
	saves    map[string]int
	failNext map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		snap:     storage.EmptySnapshot(),
		saves:    make(map[string]int),
		failNext: make(map[string]error),
	}
}

func (f *fakeStore) LoadAll() (storage.Snapshot, error) { return f.snap, nil }

func (f *fakeStore) save(name string) error {
	f.saves[name]++
	if err, ok := f.failNext[name]; ok {
		delete(f.failNext, name)
		return err
	}
	return nil
}

func (f *fakeStore) SaveAccounts(map[int64]*models.Account) error { return f.save("accounts") }
func (f *fakeStore) SaveOperators([]int64) error                  { return f.save("operators") }
func (f *fakeStore) SaveSlots([]models.Slot) error                { return f.save("slots") }
func (f *fakeStore) SaveBookings([]models.Booking) error          { return f.save("bookings") }
func (f *fakeStore) Close() error                                 { return nil }

const ownerID int64 = 100

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	svc, err := NewService(Config{OwnerID: ownerID}, st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, st
}

func registerUser(t *testing.T, svc *Service, id int64) {
	t.Helper()
	if _, err := svc.Register(id, fmt.Sprintf("User%d", id), "Tester", fmt.Sprintf("user%d", id)); err != nil {
		t.Fatalf("Register(%d): %v", id, err)
	}
}

func createSlot(t *testing.T, svc *Service, date, tm string) models.Slot {
	t.Helper()
	slot, err := svc.CreateSlot(ownerID, date, tm, "-")
	if err != nil {
		t.Fatalf("CreateSlot(%s %s): %v", date, tm, err)
	}
	return slot
}

func TestNewServiceAppendsOwner(t *testing.T) {
	svc, st := newTestService(t)
	if !svc.IsOperator(ownerID) {
		t.Fatalf("owner missing from operator set")
	}
	if st.saves["operators"] != 1 {
		t.Fatalf("operator repair saves = %d, want 1", st.saves["operators"])
	}

	st2 := newFakeStore()
	st2.snap.Operators = []int64{ownerID, 200}
	svc2, err := NewService(Config{OwnerID: ownerID}, st2)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if got := svc2.Operators(); len(got) != 2 {
		t.Fatalf("operators = %v, want unchanged pair", got)
	}
	if st2.saves["operators"] != 0 {
		t.Fatalf("no repair save expected, got %d", st2.saves["operators"])
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	acc, err := svc.Register(1, "  Alice ", "Smith", "alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acc.FullName != "Alice Smith" {
		t.Fatalf("FullName = %q", acc.FullName)
	}
	if acc.Operator {
		t.Fatalf("plain user marked operator")
	}

	if _, err := svc.Register(1, "Alice", "Smith", "alice"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate register err = %v, want ErrAlreadyRegistered", err)
	}

	owner, err := svc.Register(ownerID, "Owner", "One", "")
	if err != nil {
		t.Fatalf("Register owner: %v", err)
	}
	if !owner.Operator {
		t.Fatalf("owner account not marked operator")
	}
}

func TestBookCapacityLimit(t *testing.T) {
	svc, _ := newTestService(t)
	slot := createSlot(t, svc, "01.09.2026", "10:00")

	for i := int64(1); i <= MaxSeatsPerSlot; i++ {
		registerUser(t, svc, i)
		if _, err := svc.Book(i, slot.Key()); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}
	if got := svc.Remaining(slot.Key()); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}

	registerUser(t, svc, 50)
	if _, err := svc.Book(50, slot.Key()); !errors.Is(err, ErrSlotFull) {
		t.Fatalf("overflow booking err = %v, want ErrSlotFull", err)
	}
	if got := len(svc.BookingsAt(slot.Key())); got != MaxSeatsPerSlot {
		t.Fatalf("bookings = %d, want %d", got, MaxSeatsPerSlot)
	}
}

func TestBookRejections(t *testing.T) {
	svc, _ := newTestService(t)
	slot := createSlot(t, svc, "01.09.2026", "10:00")

	if _, err := svc.Book(7, slot.Key()); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("unregistered err = %v, want ErrNotRegistered", err)
	}

	registerUser(t, svc, 7)
	ghost := models.SlotKey{Date: "02.09.2026", Time: "11:00"}
	if _, err := svc.Book(7, ghost); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("unknown slot err = %v, want ErrUnknownSlot", err)
	}
}

func TestBookDuplicatesToggle(t *testing.T) {
	st := newFakeStore()
	svc, err := NewService(Config{OwnerID: ownerID, ForbidDuplicates: true}, st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	slot, err := svc.CreateSlot(ownerID, "01.09.2026", "10:00", "")
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	registerUser(t, svc, 7)

	if _, err := svc.Book(7, slot.Key()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Book(7, slot.Key()); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("second booking err = %v, want ErrAlreadyBooked", err)
	}

	svc2, _ := newTestService(t)
	slot2 := createSlot(t, svc2, "01.09.2026", "10:00")
	registerUser(t, svc2, 7)
	for i := 0; i < 2; i++ {
		if _, err := svc2.Book(7, slot2.Key()); err != nil {
			t.Fatalf("duplicate-allowed booking %d: %v", i, err)
		}
	}
}

func TestDeleteSlotCascade(t *testing.T) {
	svc, _ := newTestService(t)
	keep := createSlot(t, svc, "01.09.2026", "10:00")
	drop := createSlot(t, svc, "01.09.2026", "12:00")

	registerUser(t, svc, 1)
	registerUser(t, svc, 2)
	if _, err := svc.Book(1, keep.Key()); err != nil {
		t.Fatalf("book keep: %v", err)
	}
	if _, err := svc.Book(1, drop.Key()); err != nil {
		t.Fatalf("book drop: %v", err)
	}
	if _, err := svc.Book(2, drop.Key()); err != nil {
		t.Fatalf("book drop: %v", err)
	}

	removed, cascaded, err := svc.DeleteSlot(ownerID, 1)
	if err != nil {
		t.Fatalf("DeleteSlot: %v", err)
	}
	if removed.Key() != drop.Key() {
		t.Fatalf("removed %v, want %v", removed.Key(), drop.Key())
	}
	if len(cascaded) != 2 {
		t.Fatalf("cascaded = %d, want 2", len(cascaded))
	}
	left := svc.Bookings()
	if len(left) != 1 || left[0].Key() != keep.Key() {
		t.Fatalf("surviving bookings = %v", left)
	}

	if _, _, err := svc.DeleteSlot(ownerID, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("out of range err = %v, want ErrIndexOutOfRange", err)
	}
	if _, _, err := svc.DeleteSlot(999, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-operator delete err = %v, want ErrUnauthorized", err)
	}
}

func TestClearAll(t *testing.T) {
	svc, _ := newTestService(t)
	slot := createSlot(t, svc, "01.09.2026", "10:00")
	createSlot(t, svc, "02.09.2026", "10:00")
	registerUser(t, svc, 1)
	if _, err := svc.Book(1, slot.Key()); err != nil {
		t.Fatalf("Book: %v", err)
	}

	if _, _, err := svc.ClearAll(1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner clear err = %v, want ErrUnauthorized", err)
	}

	slots, bookings, err := svc.ClearAll(ownerID)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if slots != 2 || bookings != 1 {
		t.Fatalf("cleared %d/%d, want 2/1", slots, bookings)
	}
	if len(svc.Slots()) != 0 || len(svc.Bookings()) != 0 {
		t.Fatalf("collections not empty after clear")
	}
}

func TestOperatorRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc, 5)

	if err := svc.AddOperator(5, 6); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner grant err = %v, want ErrUnauthorized", err)
	}
	if err := svc.AddOperator(ownerID, ownerID); !errors.Is(err, ErrIsOwner) {
		t.Fatalf("grant to owner err = %v, want ErrIsOwner", err)
	}

	if err := svc.AddOperator(ownerID, 5); err != nil {
		t.Fatalf("AddOperator: %v", err)
	}
	if err := svc.AddOperator(ownerID, 5); !errors.Is(err, ErrAlreadyOperator) {
		t.Fatalf("re-grant err = %v, want ErrAlreadyOperator", err)
	}
	if !svc.IsOperator(5) {
		t.Fatalf("IsOperator(5) = false after grant")
	}
	if acc, ok := svc.Account(5); !ok || !acc.Operator {
		t.Fatalf("account snapshot not updated on grant")
	}

	if err := svc.RemoveOperator(ownerID, ownerID); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("remove owner err = %v, want ErrCannotRemoveOwner", err)
	}
	if err := svc.RemoveOperator(ownerID, 5); err != nil {
		t.Fatalf("RemoveOperator: %v", err)
	}
	if err := svc.RemoveOperator(ownerID, 5); !errors.Is(err, ErrNotOperator) {
		t.Fatalf("re-remove err = %v, want ErrNotOperator", err)
	}
	if svc.IsOperator(5) {
		t.Fatalf("IsOperator(5) = true after revoke")
	}
	if acc, _ := svc.Account(5); acc.Operator {
		t.Fatalf("account snapshot not updated on revoke")
	}
	if got := svc.Operators(); len(got) != 1 || got[0] != ownerID {
		t.Fatalf("operators = %v, want just owner", got)
	}
}

func TestPersistFailureSurfacesButKeepsEffect(t *testing.T) {
	svc, st := newTestService(t)
	slot := createSlot(t, svc, "01.09.2026", "10:00")
	registerUser(t, svc, 1)

	st.failNext["bookings"] = fmt.Errorf("disk gone")
	b, err := svc.Book(1, slot.Key())
	if !IsPersist(err) {
		t.Fatalf("err = %v, want persist error", err)
	}
	if b.UserID != 1 {
		t.Fatalf("booking not returned alongside persist error")
	}
	if got := len(svc.BookingsAt(slot.Key())); got != 1 {
		t.Fatalf("in-memory booking count = %d, want 1", got)
	}
	if IsPersist(ErrSlotFull) {
		t.Fatalf("domain rejection classified as persist error")
	}
}

func TestParseSlotDateTime(t *testing.T) {
	if got, err := ParseSlotDate(" 05.09.2026 "); err != nil || got != "05.09.2026" {
		t.Fatalf("ParseSlotDate = %q, %v", got, err)
	}
	if _, err := ParseSlotDate("31.02.2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("impossible date err = %v, want ErrInvalidDate", err)
	}
	if _, err := ParseSlotDate("2026-09-05"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("wrong layout err = %v, want ErrInvalidDate", err)
	}
	if got, err := ParseSlotTime("09:30"); err != nil || got != "09:30" {
		t.Fatalf("ParseSlotTime = %q, %v", got, err)
	}
	if _, err := ParseSlotTime("25:00"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("impossible time err = %v, want ErrInvalidTime", err)
	}
}

func TestCreateSlotDescriptionSentinel(t *testing.T) {
	svc, _ := newTestService(t)
	slot := createSlot(t, svc, "01.09.2026", "10:00")
	if slot.Description != "" {
		t.Fatalf("dash sentinel kept: %q", slot.Description)
	}
	if slot.Label() != "01.09.2026 10:00" {
		t.Fatalf("Label = %q", slot.Label())
	}

	with, err := svc.CreateSlot(ownerID, "01.09.2026", "11:00", " morning run ")
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if with.Label() != "01.09.2026 11:00 - morning run" {
		t.Fatalf("Label = %q", with.Label())
	}
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { now = now.Add(time.Minute); return now }

	a := createSlot(t, svc, "01.09.2026", "10:00")
	b := createSlot(t, svc, "02.09.2026", "12:00")
	registerUser(t, svc, 1)
	registerUser(t, svc, 2)
	for i := 0; i < 2; i++ {
		if _, err := svc.Book(1, a.Key()); err != nil {
			t.Fatalf("Book: %v", err)
		}
	}
	if _, err := svc.Book(2, b.Key()); err != nil {
		t.Fatalf("Book: %v", err)
	}

	stats := svc.Stats()
	if stats.Accounts != 2 || stats.Slots != 2 || stats.Bookings != 3 || stats.UniqueUsers != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if want := 2*MaxSeatsPerSlot - 3; stats.FreeSeats != want {
		t.Fatalf("FreeSeats = %d, want %d", stats.FreeSeats, want)
	}

	top := svc.TopBookers()
	if len(top) != 2 || top[0].UserID != 1 || top[0].Count != 2 {
		t.Fatalf("TopBookers = %+v", top)
	}

	groups := svc.BookingsByDate()
	if len(groups) != 2 || groups[0].Date != "01.09.2026" {
		t.Fatalf("BookingsByDate = %+v", groups)
	}
	if len(groups[0].Slots) != 1 || len(groups[0].Slots[0].Bookings) != 2 {
		t.Fatalf("first date groups = %+v", groups[0].Slots)
	}

	recent := svc.RecentAccounts(1)
	if len(recent) != 1 || recent[0].ID != 2 {
		t.Fatalf("RecentAccounts = %+v", recent)
	}
}

func TestFullScenario(t *testing.T) {
	svc, st := newTestService(t)

	registerUser(t, svc, 1)
	registerUser(t, svc, 2)
	if err := svc.AddOperator(ownerID, 2); err != nil {
		t.Fatalf("AddOperator: %v", err)
	}

	slot, err := svc.CreateSlot(2, "10.09.2026", "18:00", "evening")
	if err != nil {
		t.Fatalf("operator CreateSlot: %v", err)
	}
	if _, err := svc.CreateSlot(1, "10.09.2026", "19:00", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("plain user CreateSlot err = %v, want ErrUnauthorized", err)
	}

	if _, err := svc.Book(1, slot.Key()); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if got := svc.Remaining(slot.Key()); got != MaxSeatsPerSlot-1 {
		t.Fatalf("Remaining = %d", got)
	}

	if err := svc.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	for _, name := range []string{"accounts", "operators", "slots", "bookings"} {
		if st.saves[name] == 0 {
			t.Fatalf("collection %s never saved", name)
		}
	}
}
