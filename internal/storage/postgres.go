package storage

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/slotbot/core/logger"
	"github.com/m3rciful/slotbot/internal/models"
)

// pgStore persists the collections in Postgres. Every save replaces the
// whole collection in one transaction; a position column preserves the
// insertion order the file driver gets for free from JSON arrays.
type pgStore struct {
	db *sqlx.DB
}

func (s *pgStore) LoadAll() (Snapshot, error) {
	snap := EmptySnapshot()

	var accounts []models.Account
	if err := s.db.Select(&accounts, `SELECT id, first_name, last_name, username, full_name, registered_at, operator FROM accounts ORDER BY registered_at`); err != nil {
		return snap, fmt.Errorf("storage: load accounts: %w", err)
	}
	for i := range accounts {
		a := accounts[i]
		snap.Accounts[a.ID] = &a
	}

	if err := s.db.Select(&snap.Operators, `SELECT user_id FROM operators ORDER BY pos`); err != nil {
		return snap, fmt.Errorf("storage: load operators: %w", err)
	}
	if err := s.db.Select(&snap.Slots, `SELECT slot_date, slot_time, description, created_at, created_by FROM slots ORDER BY pos`); err != nil {
		return snap, fmt.Errorf("storage: load slots: %w", err)
	}
	if err := s.db.Select(&snap.Bookings, `SELECT user_id, first_name, last_name, username, full_name, operator, slot_date, slot_time, created_at FROM bookings ORDER BY pos`); err != nil {
		return snap, fmt.Errorf("storage: load bookings: %w", err)
	}

	logger.Store.Info("collections loaded",
		slog.String("event", "storage.load"),
		slog.String("driver", "postgres"),
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("operators", len(snap.Operators)),
		slog.Int("slots", len(snap.Slots)),
		slog.Int("bookings", len(snap.Bookings)),
	)
	return snap, nil
}

func (s *pgStore) SaveAccounts(accounts map[int64]*models.Account) error {
	return s.replace("accounts", len(accounts), func(tx *sqlx.Tx) error {
		for _, a := range accounts {
			if _, err := tx.NamedExec(`INSERT INTO accounts (id, first_name, last_name, username, full_name, registered_at, operator)
				VALUES (:id, :first_name, :last_name, :username, :full_name, :registered_at, :operator)`, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) SaveOperators(operators []int64) error {
	return s.replace("operators", len(operators), func(tx *sqlx.Tx) error {
		for i, id := range operators {
			if _, err := tx.Exec(`INSERT INTO operators (pos, user_id) VALUES ($1, $2)`, i, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) SaveSlots(slots []models.Slot) error {
	return s.replace("slots", len(slots), func(tx *sqlx.Tx) error {
		for i, sl := range slots {
			if _, err := tx.Exec(`INSERT INTO slots (pos, slot_date, slot_time, description, created_at, created_by)
				VALUES ($1, $2, $3, $4, $5, $6)`, i, sl.Date, sl.Time, sl.Description, sl.CreatedAt, sl.CreatedBy); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) SaveBookings(bookings []models.Booking) error {
	return s.replace("bookings", len(bookings), func(tx *sqlx.Tx) error {
		for i, b := range bookings {
			if _, err := tx.Exec(`INSERT INTO bookings (pos, user_id, first_name, last_name, username, full_name, operator, slot_date, slot_time, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				i, b.UserID, b.FirstName, b.LastName, b.Username, b.FullName, b.Operator, b.Date, b.Time, b.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) Close() error { return s.db.Close() }

func (s *pgStore) replace(table string, count int, insert func(tx *sqlx.Tx) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("storage: begin %s save: %w", table, err)
	}
	if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: save %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit %s save: %w", table, err)
	}
	logger.Store.Debug("collection saved",
		slog.String("event", "storage.save"),
		slog.String("table", table),
		slog.Int("count", count),
	)
	return nil
}
