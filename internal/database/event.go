package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"main/internal/apperrors"
	"main/internal/model"
)

// EventStore is the persistence surface for eventos_externos.
type EventStore interface {
	FindEventsByAccount(accountID int64) ([]model.ExternalEvent, error)
	// ReplaceAccountEvents makes the stored mirror for one account equal to
	// the given set: new external ids are inserted, existing ones
	// overwritten, and anything no longer present deleted. The account's
	// sync timestamp is stamped in the same transaction, so a failure leaves
	// the previous mirror untouched.
	ReplaceAccountEvents(accountID int64, events []model.ExternalEvent) error
}

type PostgresEventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) FindEventsByAccount(accountID int64) ([]model.ExternalEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, id_cuenta, id_evento_externo, COALESCE(titulo, ''), COALESCE(descripcion, ''), inicio, fin, COALESCE(estado, ''), COALESCE(origen, ''), sincronizado_en
		 FROM eventos_externos WHERE id_cuenta = $1 ORDER BY inicio`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	events := []model.ExternalEvent{}
	for rows.Next() {
		var e model.ExternalEvent
		var start, end, syncedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.AccountID, &e.ExternalID, &e.Title, &e.Description, &start, &end, &e.Status, &e.Origin, &syncedAt); err != nil {
			return nil, fmt.Errorf("%w: scan event: %v", apperrors.ErrStorage, err)
		}
		if start.Valid {
			e.Start = &start.Time
		}
		if end.Valid {
			e.End = &end.Time
		}
		if syncedAt.Valid {
			e.LastSyncedAt = &syncedAt.Time
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list events: %v", apperrors.ErrStorage, err)
	}
	return events, nil
}

func (s *PostgresEventStore) ReplaceAccountEvents(accountID int64, events []model.ExternalEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin reconciliation: %v", apperrors.ErrStorage, err)
	}
	defer tx.Rollback()

	seen := make([]string, 0, len(events))
	for _, e := range events {
		if e.ExternalID == "" {
			continue
		}
		seen = append(seen, e.ExternalID)

		_, err := tx.Exec(
			`INSERT INTO eventos_externos (id_cuenta, id_evento_externo, titulo, descripcion, inicio, fin, estado, origen, sincronizado_en)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id_cuenta, id_evento_externo) DO UPDATE SET
				titulo = EXCLUDED.titulo,
				descripcion = EXCLUDED.descripcion,
				inicio = EXCLUDED.inicio,
				fin = EXCLUDED.fin,
				estado = EXCLUDED.estado,
				sincronizado_en = EXCLUDED.sincronizado_en`,
			accountID, e.ExternalID, e.Title, e.Description, e.Start, e.End, e.Status, e.Origin, e.LastSyncedAt,
		)
		if err != nil {
			return fmt.Errorf("%w: upsert event %s: %v", apperrors.ErrStorage, e.ExternalID, err)
		}
	}

	// The provider response is authoritative for upcoming events: anything
	// it no longer reports is removed from the mirror.
	_, err = tx.Exec(
		"DELETE FROM eventos_externos WHERE id_cuenta = $1 AND id_evento_externo <> ALL($2)",
		accountID, pq.Array(seen),
	)
	if err != nil {
		return fmt.Errorf("%w: prune events: %v", apperrors.ErrStorage, err)
	}

	_, err = tx.Exec("UPDATE cuentas_conectadas SET sincronizado_en = now() WHERE id = $1", accountID)
	if err != nil {
		return fmt.Errorf("%w: stamp account: %v", apperrors.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit reconciliation: %v", apperrors.ErrStorage, err)
	}
	return nil
}
