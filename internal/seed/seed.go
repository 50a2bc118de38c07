// Package seed loads supplier and animal fixtures from YAML.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yardline/yardline/internal/model"
)

//go:embed default.yml
var defaultFixture []byte

// Fixture is the root of a seed file.
type Fixture struct {
	Suppliers []SupplierFixture `yaml:"suppliers"`
}

// SupplierFixture is one supplier and the animals it delivered.
type SupplierFixture struct {
	Name    string          `yaml:"name"`
	Region  string          `yaml:"region"`
	Phone   string          `yaml:"phone"`
	Active  *bool           `yaml:"active"`
	Animals []AnimalFixture `yaml:"animals"`
}

// AnimalFixture describes one arrival. Status may be received, lairage or
// rejected.
type AnimalFixture struct {
	Tag          string          `yaml:"tag"`
	Species      string          `yaml:"species"`
	Breed        string          `yaml:"breed"`
	Sex          string          `yaml:"sex"`
	LiveWeightKg decimal.Decimal `yaml:"live_weight_kg"`
	Status       string          `yaml:"status"`
}

// Result counts what Apply did.
type Result struct {
	Suppliers int
	Animals   int
	Skipped   int
}

// Load decodes a fixture, rejecting unknown fields.
func Load(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	return f, nil
}

// Default returns the built-in demo fixture.
func Default() Fixture {
	f, err := Load(strings.NewReader(string(defaultFixture)))
	if err != nil {
		panic(err)
	}
	return f
}

// Apply writes the fixture through b. Suppliers are matched by name and
// animals by tag, so applying the same fixture twice only adds what is
// missing.
func Apply(ctx context.Context, b model.Backend, f Fixture) (Result, error) {
	var res Result
	for _, sf := range f.Suppliers {
		sp, created, err := ensureSupplier(ctx, b, sf)
		if err != nil {
			return res, err
		}
		if created {
			res.Suppliers++
		}

		for _, af := range sf.Animals {
			a, err := b.CreateAnimal(ctx, model.Animal{
				TagNumber:    af.Tag,
				Species:      af.Species,
				Breed:        af.Breed,
				Sex:          af.Sex,
				LiveWeightKg: af.LiveWeightKg,
				SupplierID:   sp.ID,
			})
			if errors.Is(err, model.ErrConflict) {
				res.Skipped++
				continue
			}
			if err != nil {
				return res, fmt.Errorf("seed: animal %s: %w", af.Tag, err)
			}
			res.Animals++

			status := model.AnimalStatus(strings.ToLower(af.Status))
			if status == "" || status == model.StatusReceived {
				continue
			}
			if _, err := b.SetAnimalStatus(ctx, a.ID, status); err != nil {
				return res, fmt.Errorf("seed: animal %s status %s: %w", af.Tag, status, err)
			}
		}
	}
	return res, nil
}

func ensureSupplier(ctx context.Context, b model.Backend, sf SupplierFixture) (model.Supplier, bool, error) {
	existing, err := b.ListSuppliers(ctx, model.ListQuery{Search: sf.Name})
	if err != nil {
		return model.Supplier{}, false, fmt.Errorf("seed: list suppliers: %w", err)
	}
	for _, sp := range existing {
		if strings.EqualFold(sp.Name, sf.Name) {
			return sp, false, nil
		}
	}

	active := true
	if sf.Active != nil {
		active = *sf.Active
	}
	sp, err := b.CreateSupplier(ctx, model.Supplier{Name: sf.Name, Region: sf.Region, Phone: sf.Phone, Active: active})
	if err != nil {
		return model.Supplier{}, false, fmt.Errorf("seed: supplier %s: %w", sf.Name, err)
	}
	return sp, true, nil
}
