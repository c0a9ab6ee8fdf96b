package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Gesture represents a learned HDC gesture class, persisted as a row
// mirroring gesture.GestureClass: a name, an example count, and the
// unbinarized prototype accumulator.
type Gesture struct {
	ID           string
	Name         string
	ExampleCount uint64
	Prototype    []float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GestureRepository provides CRUD operations for gestures.
type GestureRepository struct {
	db *sql.DB
}

// Gestures returns the gesture repository for this store.
func (s *Store) Gestures() *GestureRepository {
	return &GestureRepository{db: s.db}
}

// Create inserts a new gesture into the database.
func (r *GestureRepository) Create(g *Gesture) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	prototype, err := json.Marshal(g.Prototype)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO gestures (id, name, example_count, prototype, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.ExampleCount, string(prototype), g.CreatedAt, g.UpdatedAt,
	)
	return err
}

// GetByID retrieves a gesture by its ID.
func (r *GestureRepository) GetByID(id string) (*Gesture, error) {
	return r.scanOne(`SELECT id, name, example_count, prototype, created_at, updated_at
		FROM gestures WHERE id = ?`, id)
}

// GetByName retrieves a gesture by its name.
func (r *GestureRepository) GetByName(name string) (*Gesture, error) {
	return r.scanOne(`SELECT id, name, example_count, prototype, created_at, updated_at
		FROM gestures WHERE name = ?`, name)
}

func (r *GestureRepository) scanOne(query string, arg any) (*Gesture, error) {
	g := &Gesture{}
	var prototype string

	err := r.db.QueryRow(query, arg).
		Scan(&g.ID, &g.Name, &g.ExampleCount, &prototype, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(prototype), &g.Prototype); err != nil {
		return nil, err
	}
	return g, nil
}

// List retrieves all gestures from the database, oldest first.
func (r *GestureRepository) List() ([]*Gesture, error) {
	rows, err := r.db.Query(
		`SELECT id, name, example_count, prototype, created_at, updated_at
		 FROM gestures ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gestures []*Gesture
	for rows.Next() {
		g := &Gesture{}
		var prototype string

		if err := rows.Scan(&g.ID, &g.Name, &g.ExampleCount, &prototype, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(prototype), &g.Prototype); err != nil {
			return nil, err
		}
		gestures = append(gestures, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gestures, nil
}

// Update replaces an existing gesture's example count and prototype.
func (r *GestureRepository) Update(g *Gesture) error {
	g.UpdatedAt = time.Now()

	prototype, err := json.Marshal(g.Prototype)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE gestures SET name = ?, example_count = ?, prototype = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, g.ExampleCount, string(prototype), g.UpdatedAt, g.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a gesture from the database by its ID.
func (r *GestureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM gestures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
