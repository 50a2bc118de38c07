package duckdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yardline/yardline/internal/model"
)

const carcassSelect = `SELECT c.public_id, c.animal_id, a.tag_number, a.species,
	CAST(c.hot_weight_kg AS VARCHAR), c.grade, c.condemned, c.inspection_note, c.slaughtered_at
	FROM carcasses c
	LEFT JOIN animals a ON a.id = c.animal_id`

func scanCarcass(r rowScanner) (model.Carcass, error) {
	var (
		c       model.Carcass
		tag     *string
		species *string
		weight  string
	)
	if err := r.Scan(&c.PublicID, &c.AnimalID, &tag, &species, &weight, &c.Grade,
		&c.Condemned, &c.InspectionNote, &c.SlaughteredAt); err != nil {
		return model.Carcass{}, err
	}
	w, err := parseDecimal(weight)
	if err != nil {
		return model.Carcass{}, fmt.Errorf("carcass %s weight %q: %w", c.PublicID, weight, err)
	}
	c.HotWeightKg = w
	if tag != nil {
		c.TagNumber = *tag
	}
	if species != nil {
		c.Species = *species
	}
	c.SlaughteredAt = c.SlaughteredAt.UTC()
	return c, nil
}

// validPublicID rejects malformed ids before they reach SQL.
func validPublicID(publicID string) error {
	if _, err := uuid.Parse(publicID); err != nil {
		return fmt.Errorf("carcass %q: %w", publicID, model.ErrNotFound)
	}
	return nil
}

func getCarcass(ctx context.Context, q querier, publicID string) (model.Carcass, error) {
	if err := validPublicID(publicID); err != nil {
		return model.Carcass{}, err
	}
	c, err := scanCarcass(q.QueryRowContext(ctx, carcassSelect+` WHERE c.public_id = ?`, publicID))
	if err != nil {
		return model.Carcass{}, notFound(err, "carcass", publicID)
	}
	return c, nil
}

// ListCarcasses returns carcasses matching q, newest first. Search matches
// the animal's tag number; Status accepts "condemned" or "passed".
func (s *Store) ListCarcasses(ctx context.Context, q model.ListQuery) ([]model.Carcass, error) {
	q = q.Normalized()

	var f filter
	f.search(q.Search, "a.tag_number", "c.grade")
	switch q.Status {
	case "condemned":
		f.add("c.condemned = TRUE")
	case "passed":
		f.add("c.condemned = FALSE")
	}
	if q.SupplierID > 0 {
		f.add("a.supplier_id = ?", q.SupplierID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`%s %s ORDER BY c.slaughtered_at DESC, c.public_id`, carcassSelect, f.where()), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Carcass
	for rows.Next() {
		c, err := scanCarcass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carcass: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCarcass returns one carcass by public id or model.ErrNotFound.
func (s *Store) GetCarcass(ctx context.Context, publicID string) (model.Carcass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return getCarcass(ctx, s.db, publicID)
}

// SetCarcassCondemned records the meat inspection outcome.
func (s *Store) SetCarcassCondemned(ctx context.Context, publicID string, condemned bool) (model.Carcass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getCarcass(ctx, s.db, publicID); err != nil {
		return model.Carcass{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE carcasses SET condemned = ? WHERE public_id = ?`, condemned, publicID); err != nil {
		return model.Carcass{}, fmt.Errorf("update carcass %s: %w", publicID, err)
	}
	return getCarcass(ctx, s.db, publicID)
}

// DeleteCarcass removes a carcass record. The animal stays slaughtered.
func (s *Store) DeleteCarcass(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getCarcass(ctx, s.db, publicID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carcasses WHERE public_id = ?`, publicID); err != nil {
		return fmt.Errorf("delete carcass %s: %w", publicID, err)
	}
	return nil
}
