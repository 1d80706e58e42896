package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m3rciful/slotbot/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	accounts := map[int64]*models.Account{
		7: {ID: 7, FirstName: "Alice", LastName: "Smith", FullName: "Alice Smith",
			Username: "alice", RegisteredAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
	}
	operators := []int64{100, 7}
	slots := []models.Slot{
		{Date: "01.09.2026", Time: "10:00", Description: "run", CreatedBy: 100,
			CreatedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)},
	}
	bookings := []models.Booking{
		{UserID: 7, FullName: "Alice Smith", Date: "01.09.2026", Time: "10:00",
			CreatedAt: time.Date(2026, 8, 3, 11, 0, 0, 0, time.UTC)},
	}

	if err := st.SaveAccounts(accounts); err != nil {
		t.Fatalf("SaveAccounts: %v", err)
	}
	if err := st.SaveOperators(operators); err != nil {
		t.Fatalf("SaveOperators: %v", err)
	}
	if err := st.SaveSlots(slots); err != nil {
		t.Fatalf("SaveSlots: %v", err)
	}
	if err := st.SaveBookings(bookings); err != nil {
		t.Fatalf("SaveBookings: %v", err)
	}

	st2, err := Open(Config{Driver: "file", Dir: dir}, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	snap, err := st2.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	acc, ok := snap.Accounts[7]
	if !ok || acc.FullName != "Alice Smith" || acc.Username != "alice" {
		t.Fatalf("accounts = %+v", snap.Accounts)
	}
	if !acc.RegisteredAt.Equal(accounts[7].RegisteredAt) {
		t.Fatalf("RegisteredAt = %v, want %v", acc.RegisteredAt, accounts[7].RegisteredAt)
	}
	if len(snap.Operators) != 2 || snap.Operators[0] != 100 {
		t.Fatalf("operators = %v", snap.Operators)
	}
	if len(snap.Slots) != 1 || snap.Slots[0].Key() != (models.SlotKey{Date: "01.09.2026", Time: "10:00"}) {
		t.Fatalf("slots = %+v", snap.Slots)
	}
	if !snap.Slots[0].CreatedAt.Equal(slots[0].CreatedAt) {
		t.Fatalf("slot CreatedAt = %v, want %v", snap.Slots[0].CreatedAt, slots[0].CreatedAt)
	}
	if len(snap.Bookings) != 1 || snap.Bookings[0].UserID != 7 {
		t.Fatalf("bookings = %+v", snap.Bookings)
	}
	if !snap.Bookings[0].CreatedAt.Equal(bookings[0].CreatedAt) {
		t.Fatalf("booking CreatedAt = %v, want %v", snap.Bookings[0].CreatedAt, bookings[0].CreatedAt)
	}
}

func TestFileStoreMissingFiles(t *testing.T) {
	st, err := Open(Config{Driver: "file", Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	snap, err := st.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on empty dir: %v", err)
	}
	if len(snap.Accounts) != 0 || len(snap.Operators) != 0 || len(snap.Slots) != 0 || len(snap.Bookings) != 0 {
		t.Fatalf("snapshot not empty: %+v", snap)
	}
}

func TestFileStoreCorruptFileTolerated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "slots.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	st, err := Open(Config{Driver: "file", Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	snap, err := st.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll with corrupt collection: %v", err)
	}
	if len(snap.Slots) != 0 {
		t.Fatalf("slots = %+v, want empty", snap.Slots)
	}
}

func TestFileStoreMistypedFileDiscarded(t *testing.T) {
	dir := t.TempDir()
	// Valid JSON that fails mid-decode must not leave the records that
	// decoded before the failure in the snapshot.
	body := `[{"date":"01.09.2026","time":"10:00"},{"date":123}]`
	if err := os.WriteFile(filepath.Join(dir, "slots.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write mistyped file: %v", err)
	}
	st, err := Open(Config{Driver: "file", Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	snap, err := st.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(snap.Slots) != 0 {
		t.Fatalf("slots = %+v, want empty", snap.Slots)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis"}, nil); err == nil {
		t.Fatalf("unknown driver accepted")
	}
	if _, err := Open(Config{Driver: "postgres"}, nil); err == nil {
		t.Fatalf("postgres without pool accepted")
	}
}
