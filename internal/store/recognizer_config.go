package store

import (
	"database/sql"
	"errors"

	"github.com/ayusman/kuchipudi-hdc/internal/gesture"
)

// RecognizerConfigRepository persists the single (dim, numBins, threshold,
// seed) row that parameterizes the HDC recognizer across restarts.
type RecognizerConfigRepository struct {
	db *sql.DB
}

// RecognizerConfig returns the recognizer config repository for this store.
func (s *Store) RecognizerConfig() *RecognizerConfigRepository {
	return &RecognizerConfigRepository{db: s.db}
}

// Get retrieves the stored recognizer config. Returns ErrNotFound if no
// config has ever been saved.
func (r *RecognizerConfigRepository) Get() (gesture.Config, error) {
	var c gesture.Config
	err := r.db.QueryRow(
		`SELECT dim, num_bins, threshold, seed FROM recognizer_config WHERE id = 1`,
	).Scan(&c.Dim, &c.NumBins, &c.Threshold, &c.Seed)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gesture.Config{}, ErrNotFound
		}
		return gesture.Config{}, err
	}

	return c, nil
}

// Save upserts the recognizer config's single row.
func (r *RecognizerConfigRepository) Save(c gesture.Config) error {
	_, err := r.db.Exec(
		`INSERT INTO recognizer_config (id, dim, num_bins, threshold, seed)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			dim = excluded.dim,
			num_bins = excluded.num_bins,
			threshold = excluded.threshold,
			seed = excluded.seed`,
		c.Dim, c.NumBins, c.Threshold, c.Seed,
	)
	return err
}

// LoadRecognizer reconstructs a gesture.Recognizer from the stored
// recognizer config and gesture rows. Returns ErrNotFound if no config
// row exists yet (a fresh database).
func (s *Store) LoadRecognizer() (*gesture.Recognizer, error) {
	config, err := s.RecognizerConfig().Get()
	if err != nil {
		return nil, err
	}

	rows, err := s.Gestures().List()
	if err != nil {
		return nil, err
	}

	classes := make(map[string]gesture.SerializedClass, len(rows))
	for _, g := range rows {
		classes[g.Name] = gesture.SerializedClass{
			Prototype:    g.Prototype,
			ExampleCount: g.ExampleCount,
		}
	}

	state := gesture.State{
		Dim:       config.Dim,
		NumBins:   config.NumBins,
		Threshold: config.Threshold,
		Classes:   classes,
	}

	r := gesture.New(config)
	if err := r.Import(state); err != nil {
		return nil, err
	}
	return r, nil
}

// SaveRecognizer persists config and overwrites every gesture row with
// the recognizer's current state. Gestures removed from the recognizer
// since the last save are deleted; actions bound to them cascade away
// with them (ON DELETE CASCADE on gestures.id).
func (s *Store) SaveRecognizer(r *gesture.Recognizer) error {
	if err := s.RecognizerConfig().Save(r.Config()); err != nil {
		return err
	}

	state := r.Export()

	existing, err := s.Gestures().List()
	if err != nil {
		return err
	}
	byName := make(map[string]*Gesture, len(existing))
	for _, g := range existing {
		byName[g.Name] = g
	}

	for name, sc := range state.Classes {
		if g, ok := byName[name]; ok {
			g.ExampleCount = sc.ExampleCount
			g.Prototype = sc.Prototype
			if err := s.Gestures().Update(g); err != nil {
				return err
			}
			delete(byName, name)
			continue
		}

		if err := s.Gestures().Create(&Gesture{
			ID:           name,
			Name:         name,
			ExampleCount: sc.ExampleCount,
			Prototype:    sc.Prototype,
		}); err != nil {
			return err
		}
	}

	// Whatever remains in byName is either a gesture removed from the
	// recognizer (ExampleCount > 0, so it was synced here before) or a
	// zero-example placeholder created by the gestures API ahead of its
	// first sample (spec.md §4.6: a class only exists in the recognizer
	// once AddExample has run). Only the former should be deleted here;
	// the latter is left for an explicit DELETE or its first sample.
	for _, g := range byName {
		if g.ExampleCount == 0 {
			continue
		}
		if err := s.Gestures().Delete(g.ID); err != nil {
			return err
		}
	}

	return nil
}
