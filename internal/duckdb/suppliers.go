package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/yardline/yardline/internal/model"
)

const supplierColumns = `id, name, region, phone, active, created_at`

func scanSupplier(r rowScanner) (model.Supplier, error) {
	var sp model.Supplier
	err := r.Scan(&sp.ID, &sp.Name, &sp.Region, &sp.Phone, &sp.Active, &sp.CreatedAt)
	sp.CreatedAt = sp.CreatedAt.UTC()
	return sp, err
}

func getSupplier(ctx context.Context, q querier, id int64) (model.Supplier, error) {
	sp, err := scanSupplier(q.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id))
	if err != nil {
		return model.Supplier{}, notFound(err, "supplier", id)
	}
	return sp, nil
}

// ListSuppliers returns suppliers matching q ordered by id. Search matches
// name and region; Status accepts "active" or "inactive".
func (s *Store) ListSuppliers(ctx context.Context, q model.ListQuery) ([]model.Supplier, error) {
	q = q.Normalized()

	var f filter
	f.search(q.Search, "name", "region")
	switch q.Status {
	case "active":
		f.add("active = TRUE")
	case "inactive":
		f.add("active = FALSE")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM suppliers %s ORDER BY id`, supplierColumns, f.where()), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Supplier
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// GetSupplier returns one supplier or model.ErrNotFound.
func (s *Store) GetSupplier(ctx context.Context, id int64) (model.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return getSupplier(ctx, s.db, id)
}

// CreateSupplier inserts sp and returns the stored row.
func (s *Store) CreateSupplier(ctx context.Context, sp model.Supplier) (model.Supplier, error) {
	sp.Name = strings.TrimSpace(sp.Name)
	if err := sp.Validate(); err != nil {
		return model.Supplier{}, err
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (name, region, phone, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`, sp.Name, sp.Region, sp.Phone, sp.Active, sp.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return model.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return getSupplier(ctx, s.db, id)
}

// UpdateSupplier overwrites the editable fields of an existing supplier.
func (s *Store) UpdateSupplier(ctx context.Context, sp model.Supplier) (model.Supplier, error) {
	sp.Name = strings.TrimSpace(sp.Name)
	if err := sp.Validate(); err != nil {
		return model.Supplier{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getSupplier(ctx, s.db, sp.ID); err != nil {
		return model.Supplier{}, err
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET name = ?, region = ?, phone = ?, active = ?
		WHERE id = ?`, sp.Name, sp.Region, sp.Phone, sp.Active, sp.ID); err != nil {
		return model.Supplier{}, fmt.Errorf("update supplier %d: %w", sp.ID, err)
	}
	return getSupplier(ctx, s.db, sp.ID)
}

// SetSupplierActive toggles whether the supplier accepts new deliveries.
func (s *Store) SetSupplierActive(ctx context.Context, id int64, active bool) (model.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getSupplier(ctx, s.db, id); err != nil {
		return model.Supplier{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE suppliers SET active = ? WHERE id = ?`, active, id); err != nil {
		return model.Supplier{}, fmt.Errorf("update supplier %d: %w", id, err)
	}
	return getSupplier(ctx, s.db, id)
}

// DeleteSupplier removes a supplier that has no animals on record.
func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if _, err := getSupplier(ctx, s.db, id); err != nil {
		return err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM animals WHERE supplier_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("supplier %d has %d animals: %w", id, n, model.ErrConflict)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	return nil
}
