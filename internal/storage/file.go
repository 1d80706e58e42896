package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
)

const (
	accountsFile  = "accounts.json"
	operatorsFile = "operators.json"
	slotsFile     = "slots.json"
	bookingsFile  = "bookings.json"
)

// fileStore keeps each collection in its own JSON document under a data
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written collection behind.
type fileStore struct {
	mu  sync.Mutex
	dir string
}

func openFile(dir string) (Store, error) {
	if dir == "" {
		return nil, errors.New("storage: dir is required for the file driver")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// LoadAll reads every collection. A missing file is a normal first run;
// a corrupt file is logged and replaced by the empty default so one bad
// collection cannot take the whole bot down.
func (s *fileStore) LoadAll() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := EmptySnapshot()
	loadCollection(filepath.Join(s.dir, accountsFile), &snap.Accounts)
	loadCollection(filepath.Join(s.dir, operatorsFile), &snap.Operators)
	loadCollection(filepath.Join(s.dir, slotsFile), &snap.Slots)
	loadCollection(filepath.Join(s.dir, bookingsFile), &snap.Bookings)
	if snap.Accounts == nil {
		snap.Accounts = make(map[int64]*models.Account)
	}

	logger.Store.Info("collections loaded",
		slog.String("event", "storage.load"),
		slog.String("driver", "file"),
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("operators", len(snap.Operators)),
		slog.Int("slots", len(snap.Slots)),
		slog.Int("bookings", len(snap.Bookings)),
	)
	return snap, nil
}

func loadCollection[T any](path string, out *T) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Store.Warn("collection unreadable, using empty default",
				slog.String("event", "storage.load"),
				slog.String("file", filepath.Base(path)),
				slog.String("err", err.Error()),
			)
		}
		return
	}
	// Decode into a scratch value so a file that fails mid-way cannot
	// leave half of its records in the snapshot.
	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		logger.Store.Warn("collection corrupt, using empty default",
			slog.String("event", "storage.load"),
			slog.String("file", filepath.Base(path)),
			slog.String("err", err.Error()),
		)
		return
	}
	*out = decoded
}

func (s *fileStore) SaveAccounts(accounts map[int64]*models.Account) error {
	return s.writeCollection(accountsFile, accounts, len(accounts))
}

func (s *fileStore) SaveOperators(operators []int64) error {
	return s.writeCollection(operatorsFile, operators, len(operators))
}

func (s *fileStore) SaveSlots(slots []models.Slot) error {
	return s.writeCollection(slotsFile, slots, len(slots))
}

func (s *fileStore) SaveBookings(bookings []models.Booking) error {
	return s.writeCollection(bookingsFile, bookings, len(bookings))
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) writeCollection(name string, v any, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: rename %s: %w", name, err)
	}
	logger.Store.Debug("collection saved",
		slog.String("event", "storage.save"),
		slog.String("file", name),
		slog.Int("count", count),
	)
	return nil
}
