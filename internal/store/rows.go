package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned by updates and deletes targeting an id the
// store does not hold.
var ErrNotFound = errors.New("not found")

const lockTimeout = 500 * time.Millisecond

// withWriteLock serializes mutations across processes sharing the same
// workspace. In-memory stores (tests) have no locker and skip it.
func (s *Store) withWriteLock(fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	if err := s.locker.acquire(lockTimeout); err != nil {
		return err
	}
	defer s.locker.release()
	return fn()
}

// insertRow writes one entity row. An existing id is an error; callers
// that want skip-on-duplicate check Has first.
func (s *Store) insertRow(table Collection, id, projectID string, entity any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table, err)
	}
	return s.withWriteLock(func() error {
		var execErr error
		if table == Projects {
			_, execErr = s.conn.Exec(
				fmt.Sprintf("INSERT INTO %s (id, data) VALUES (?, ?)", table), id, string(data))
		} else {
			_, execErr = s.conn.Exec(
				fmt.Sprintf("INSERT INTO %s (id, project_id, data) VALUES (?, ?, ?)", table),
				id, projectID, string(data))
		}
		if execErr != nil {
			return fmt.Errorf("insert %s %s: %w", table, id, execErr)
		}
		return nil
	})
}

// updateRow replaces an entity document in place. Overwriting is also
// how a corrupt row heals: the garbage document is simply replaced.
func (s *Store) updateRow(table Collection, id string, entity any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table, err)
	}
	return s.withWriteLock(func() error {
		res, err := s.conn.Exec(
			fmt.Sprintf("UPDATE %s SET data = ? WHERE id = ?", table), string(data), id)
		if err != nil {
			return fmt.Errorf("update %s %s: %w", table, id, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// deleteRow removes an entity. Reports whether anything was deleted.
func (s *Store) deleteRow(table Collection, id string) bool {
	deleted := false
	err := s.withWriteLock(func() error {
		res, err := s.conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		deleted = n > 0
		return nil
	})
	if err != nil {
		slog.Debug("store: delete", "table", table, "id", id, "err", err)
		return false
	}
	return deleted
}

// getRow loads one entity document into out. Missing and corrupt rows
// both report false: the cache has nothing usable for that id.
func (s *Store) getRow(table Collection, id string, out any) bool {
	var data string
	err := s.conn.QueryRow(
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table), id).Scan(&data)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		slog.Debug("store: corrupt row", "table", table, "id", id, "err", err)
		return false
	}
	return true
}

// Has reports whether an id exists in a collection, without decoding.
func (s *Store) Has(table Collection, id string) bool {
	var one int
	err := s.conn.QueryRow(
		fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", table), id).Scan(&one)
	return err == nil
}

// Count returns the number of entities a project holds in a collection.
func (s *Store) Count(table Collection, projectID string) int {
	var n int
	err := s.conn.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE project_id = ?", table), projectID).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

// listRows scans a project's rows in insertion order, decoding each via
// decode. Rows that fail to decode are dropped from the result and
// deleted so the next write starts clean; a read never fails outright.
func (s *Store) listRows(table Collection, projectID string, decode func(id string, data []byte) bool) {
	rows, err := s.conn.Query(
		fmt.Sprintf("SELECT id, data FROM %s WHERE project_id = ? ORDER BY rowid", table), projectID)
	if err != nil {
		slog.Debug("store: list", "table", table, "project", projectID, "err", err)
		return
	}
	defer rows.Close()

	var corrupt []string
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			continue
		}
		if !decode(id, []byte(data)) {
			corrupt = append(corrupt, id)
		}
	}
	rows.Close()

	for _, id := range corrupt {
		slog.Debug("store: healing corrupt row", "table", table, "id", id)
		s.deleteRow(table, id)
	}
}
