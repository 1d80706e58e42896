package storage

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/slotbot/internal/models"
)

// Snapshot is the full durable state of the bot: the four named
// collections the gateway knows how to load and store. Slots and
// bookings keep their insertion order; the slot list's position doubles
// as the deletion index shown to operators.
type Snapshot struct {
	Accounts  map[int64]*models.Account
	Operators []int64
	Slots     []models.Slot
	Bookings  []models.Booking
}

// EmptySnapshot returns a snapshot with every collection at its zero default.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Accounts:  make(map[int64]*models.Account),
		Operators: nil,
		Slots:     nil,
		Bookings:  nil,
	}
}

// Store is the persistence gateway. Load is tolerant: a missing or
// corrupt source for one collection yields that collection's empty
// default. Each save replaces the whole collection.
type Store interface {
	LoadAll() (Snapshot, error)
	SaveAccounts(accounts map[int64]*models.Account) error
	SaveOperators(operators []int64) error
	SaveSlots(slots []models.Slot) error
	SaveBookings(bookings []models.Booking) error
	Close() error
}

// Config selects and configures a storage driver.
//
// Driver values:
//   - "file": one JSON document per collection under Dir
//   - "postgres": four tables in a Postgres database
type Config struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Dir    string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

// Open initializes the configured store. The postgres driver receives an
// already-connected pool so that bootstrap owns connection and migration
// sequencing.
func Open(cfg Config, db *sqlx.DB) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return openFile(cfg.Dir)
	case "postgres":
		if db == nil {
			return nil, errors.New("storage: postgres driver requires a database connection")
		}
		return &pgStore{db: db}, nil
	default:
		return nil, errors.New("storage: unknown driver: " + cfg.Driver)
	}
}
