package model

import "context"

// AnimalStore provides CRUD and lifecycle operations on animals.
type AnimalStore interface {
	ListAnimals(ctx context.Context, q ListQuery) ([]Animal, error)
	GetAnimal(ctx context.Context, id int64) (Animal, error)
	CreateAnimal(ctx context.Context, a Animal) (Animal, error)
	UpdateAnimal(ctx context.Context, a Animal) (Animal, error)
	DeleteAnimal(ctx context.Context, id int64) error
	SetAnimalStatus(ctx context.Context, id int64, status AnimalStatus) (Animal, error)
	SlaughterAnimal(ctx context.Context, in SlaughterInput) (Carcass, error)
}

// SupplierStore provides CRUD operations on suppliers.
type SupplierStore interface {
	ListSuppliers(ctx context.Context, q ListQuery) ([]Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
	SetSupplierActive(ctx context.Context, id int64, active bool) (Supplier, error)
}

// CarcassStore provides read and inspection operations on carcasses.
type CarcassStore interface {
	ListCarcasses(ctx context.Context, q ListQuery) ([]Carcass, error)
	GetCarcass(ctx context.Context, publicID string) (Carcass, error)
	SetCarcassCondemned(ctx context.Context, publicID string, condemned bool) (Carcass, error)
	DeleteCarcass(ctx context.Context, publicID string) error
}

// StatsQuerier provides aggregate read queries.
type StatsQuerier interface {
	DailyThroughput(ctx context.Context, days int) ([]DailyThroughput, error)
	RowCounts(ctx context.Context) (map[string]int64, error)
}

// Backend is the full contract served by the store and both transports.
type Backend interface {
	AnimalStore
	SupplierStore
	CarcassStore
	StatsQuerier
}
