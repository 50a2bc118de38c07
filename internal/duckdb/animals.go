package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yardline/yardline/internal/model"
)

const animalColumns = `id, tag_number, species, breed, sex, CAST(live_weight_kg AS VARCHAR),
	supplier_id, status, arrived_at, updated_at`

func scanAnimal(r rowScanner) (model.Animal, error) {
	var (
		a      model.Animal
		weight string
		status string
	)
	if err := r.Scan(&a.ID, &a.TagNumber, &a.Species, &a.Breed, &a.Sex, &weight,
		&a.SupplierID, &status, &a.ArrivedAt, &a.UpdatedAt); err != nil {
		return model.Animal{}, err
	}
	w, err := parseDecimal(weight)
	if err != nil {
		return model.Animal{}, fmt.Errorf("animal %d weight %q: %w", a.ID, weight, err)
	}
	a.LiveWeightKg = w
	a.Status = model.AnimalStatus(status)
	a.ArrivedAt = a.ArrivedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func getAnimal(ctx context.Context, q querier, id int64) (model.Animal, error) {
	a, err := scanAnimal(q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = ?`, id))
	if err != nil {
		return model.Animal{}, notFound(err, "animal", id)
	}
	return a, nil
}

// checkTag returns model.ErrConflict if another animal already carries tag.
func checkTag(ctx context.Context, q querier, tag string, exceptID int64) error {
	var n int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM animals WHERE lower(tag_number) = lower(?) AND id <> ?`, tag, exceptID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("tag %s already registered: %w", tag, model.ErrConflict)
	}
	return nil
}

func checkSupplier(ctx context.Context, q querier, id int64) error {
	if _, err := getSupplier(ctx, q, id); err != nil {
		return fmt.Errorf("%w: unknown supplier %d", model.ErrInvalid, id)
	}
	return nil
}

// ListAnimals returns animals matching q ordered by id. Search matches tag
// number, species and breed.
func (s *Store) ListAnimals(ctx context.Context, q model.ListQuery) ([]model.Animal, error) {
	q = q.Normalized()

	var f filter
	f.search(q.Search, "tag_number", "species", "breed")
	if q.Status != "" {
		f.add("status = ?", q.Status)
	}
	if q.SupplierID > 0 {
		f.add("supplier_id = ?", q.SupplierID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM animals %s ORDER BY id`, animalColumns, f.where()), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Animal
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan animal: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAnimal returns one animal or model.ErrNotFound.
func (s *Store) GetAnimal(ctx context.Context, id int64) (model.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return getAnimal(ctx, s.db, id)
}

// CreateAnimal registers an arrival. Status defaults to received and
// ArrivedAt to now.
func (s *Store) CreateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	a.TagNumber = strings.TrimSpace(a.TagNumber)
	if a.Status == "" {
		a.Status = model.StatusReceived
	}
	if err := a.Validate(); err != nil {
		return model.Animal{}, err
	}
	if a.Status == model.StatusSlaughtered {
		return model.Animal{}, fmt.Errorf("%w: new animals cannot start slaughtered", model.ErrInvalid)
	}
	now := s.now()
	if a.ArrivedAt.IsZero() {
		a.ArrivedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if err := checkSupplier(ctx, s.db, a.SupplierID); err != nil {
		return model.Animal{}, err
	}
	if err := checkTag(ctx, s.db, a.TagNumber, 0); err != nil {
		return model.Animal{}, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO animals (tag_number, species, breed, sex, live_weight_kg, supplier_id, status, arrived_at, updated_at)
		VALUES (?, ?, ?, ?, CAST(? AS DECIMAL(9,2)), ?, ?, ?, ?)
		RETURNING id`,
		a.TagNumber, a.Species, a.Breed, a.Sex, a.LiveWeightKg.String(), a.SupplierID,
		string(a.Status), a.ArrivedAt.UTC(), now).Scan(&id)
	if err != nil {
		return model.Animal{}, fmt.Errorf("insert animal: %w", err)
	}
	return getAnimal(ctx, s.db, id)
}

// UpdateAnimal overwrites the descriptive fields of an animal. Status is
// left untouched; use SetAnimalStatus or SlaughterAnimal.
func (s *Store) UpdateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	a.TagNumber = strings.TrimSpace(a.TagNumber)
	a.Status = ""
	if err := a.Validate(); err != nil {
		return model.Animal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getAnimal(ctx, s.db, a.ID); err != nil {
		return model.Animal{}, err
	}
	if err := checkSupplier(ctx, s.db, a.SupplierID); err != nil {
		return model.Animal{}, err
	}
	if err := checkTag(ctx, s.db, a.TagNumber, a.ID); err != nil {
		return model.Animal{}, err
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE animals SET tag_number = ?, species = ?, breed = ?, sex = ?,
			live_weight_kg = CAST(? AS DECIMAL(9,2)), supplier_id = ?, updated_at = ?
		WHERE id = ?`,
		a.TagNumber, a.Species, a.Breed, a.Sex, a.LiveWeightKg.String(), a.SupplierID, s.now(), a.ID); err != nil {
		return model.Animal{}, fmt.Errorf("update animal %d: %w", a.ID, err)
	}
	return getAnimal(ctx, s.db, a.ID)
}

// SetAnimalStatus applies a manual lifecycle transition (lairage, rejected).
func (s *Store) SetAnimalStatus(ctx context.Context, id int64, status model.AnimalStatus) (model.Animal, error) {
	if !status.Valid() {
		return model.Animal{}, fmt.Errorf("%w: unknown status %q", model.ErrInvalid, status)
	}
	if status == model.StatusSlaughtered {
		return model.Animal{}, fmt.Errorf("%w: use slaughter to record a carcass", model.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	cur, err := getAnimal(ctx, s.db, id)
	if err != nil {
		return model.Animal{}, err
	}
	if !model.CanTransition(cur.Status, status) {
		return model.Animal{}, fmt.Errorf("animal %d is %s, cannot move to %s: %w", id, cur.Status, status, model.ErrConflict)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE animals SET status = ?, updated_at = ? WHERE id = ?`, string(status), s.now(), id); err != nil {
		return model.Animal{}, fmt.Errorf("update animal %d: %w", id, err)
	}
	return getAnimal(ctx, s.db, id)
}

// DeleteAnimal removes an animal that has no carcass on record.
func (s *Store) DeleteAnimal(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getAnimal(ctx, s.db, id); err != nil {
		return err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carcasses WHERE animal_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("animal %d has a carcass record: %w", id, model.ErrConflict)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM animals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete animal %d: %w", id, err)
	}
	return nil
}

// SlaughterAnimal records the carcass and marks the animal slaughtered in
// one transaction. Animals already slaughtered or rejected yield
// model.ErrConflict.
func (s *Store) SlaughterAnimal(ctx context.Context, in model.SlaughterInput) (model.Carcass, error) {
	in.Grade = strings.ToUpper(strings.TrimSpace(in.Grade))
	if err := in.Validate(); err != nil {
		return model.Carcass{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Carcass{}, fmt.Errorf("begin slaughter tx: %w", err)
	}
	defer tx.Rollback()

	a, err := getAnimal(ctx, tx, in.AnimalID)
	if err != nil {
		return model.Carcass{}, err
	}
	if a.Status.Final() {
		return model.Carcass{}, fmt.Errorf("animal %d is already %s: %w", a.ID, a.Status, model.ErrConflict)
	}

	now := s.now()
	publicID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO carcasses (public_id, animal_id, hot_weight_kg, grade, condemned, inspection_note, slaughtered_at)
		VALUES (?, ?, CAST(? AS DECIMAL(9,2)), ?, FALSE, ?, ?)`,
		publicID, a.ID, in.HotWeightKg.String(), in.Grade, strings.TrimSpace(in.InspectionNote), now); err != nil {
		return model.Carcass{}, fmt.Errorf("insert carcass: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE animals SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.StatusSlaughtered), now, a.ID); err != nil {
		return model.Carcass{}, fmt.Errorf("update animal %d: %w", a.ID, err)
	}

	c, err := getCarcass(ctx, tx, publicID)
	if err != nil {
		return model.Carcass{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Carcass{}, fmt.Errorf("commit slaughter: %w", err)
	}
	s.logger.Info().Int64("animal_id", a.ID).Str("carcass", publicID).Msg("animal slaughtered")
	return c, nil
}
