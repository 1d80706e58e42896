package booking

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
	"github.com/m3rciful/slotbot/internal/storage"
)

// MaxSeatsPerSlot is the fixed capacity limit of every slot.
const MaxSeatsPerSlot = 9

// Config carries the domain settings of the booking service.
type Config struct {
	OwnerID int64 `yaml:"owner_id" envconfig:"BOT_OWNER_ID"`
	// ForbidDuplicates rejects a second booking by the same user on one
	// slot. Off keeps the historical behaviour of allowing several.
	ForbidDuplicates bool `yaml:"forbid_duplicates" envconfig:"BOOKING_FORBID_DUPLICATES"`
}

// Service owns the four collections and serializes every read and
// mutation through one mutex, so capacity checks and appends are atomic.
// Mutations are persisted through the gateway; a failed save keeps the
// in-memory effect and surfaces as ErrPersist.
type Service struct {
	mu    sync.Mutex
	cfg   Config
	store storage.Store
	clock func() time.Time

	accounts  map[int64]*models.Account
	operators []int64
	slots     []models.Slot
	bookings  []models.Booking
}

// NewService loads all collections and guarantees the owner is present
// in the operator set, re-saving the set when it had to be repaired.
func NewService(cfg Config, store storage.Store) (*Service, error) {
	if cfg.OwnerID == 0 {
		return nil, fmt.Errorf("booking: owner id is required")
	}
	snap, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("booking: load state: %w", err)
	}

	s := &Service{
		cfg:       cfg,
		store:     store,
		clock:     time.Now,
		accounts:  snap.Accounts,
		operators: snap.Operators,
		slots:     snap.Slots,
		bookings:  snap.Bookings,
	}
	if s.accounts == nil {
		s.accounts = make(map[int64]*models.Account)
	}

	if !contains(s.operators, cfg.OwnerID) {
		s.operators = append(s.operators, cfg.OwnerID)
		if err := store.SaveOperators(s.operators); err != nil {
			return nil, fmt.Errorf("booking: repair operator set: %w", err)
		}
		logger.SVCOperators.Info("owner appended to operator set",
			slog.String("event", "operators.repair"),
			slog.Int64("user_id", cfg.OwnerID),
		)
	}
	return s, nil
}

// OwnerID returns the configured owner identifier.
func (s *Service) OwnerID() int64 { return s.cfg.OwnerID }

// SaveAll persists every collection, joining failures. Used by the
// autosave job and the shutdown hook.
func (s *Service) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, save := range []struct {
		name string
		fn   func() error
	}{
		{"accounts", func() error { return s.store.SaveAccounts(s.accounts) }},
		{"operators", func() error { return s.store.SaveOperators(s.operators) }},
		{"slots", func() error { return s.store.SaveSlots(s.slots) }},
		{"bookings", func() error { return s.store.SaveBookings(s.bookings) }},
	} {
		if err := save.fn(); err != nil {
			logger.Store.Error("snapshot save failed",
				slog.String("event", "storage.save"),
				slog.String("collection", save.name),
				slog.String("err", err.Error()),
			)
			if firstErr == nil {
				firstErr = persistErr(save.name, err)
			}
		}
	}
	return firstErr
}

// persist runs one collection save, logging and wrapping the failure so
// callers can tell a diverged store from a domain rejection.
func (s *Service) persist(collection string, log *slog.Logger, fn func() error) error {
	if err := fn(); err != nil {
		log.Error("save failed, memory and store diverge",
			slog.String("event", "storage.save"),
			slog.String("collection", collection),
			slog.String("err", err.Error()),
		)
		return persistErr(collection, err)
	}
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
