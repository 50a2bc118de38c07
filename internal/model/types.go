package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AnimalStatus is the intake lifecycle state of an animal.
type AnimalStatus string

const (
	StatusReceived    AnimalStatus = "received"
	StatusLairage     AnimalStatus = "lairage"
	StatusSlaughtered AnimalStatus = "slaughtered"
	StatusRejected    AnimalStatus = "rejected"
)

// AnimalStatuses lists every status in lifecycle order.
var AnimalStatuses = []AnimalStatus{StatusReceived, StatusLairage, StatusSlaughtered, StatusRejected}

// Valid reports whether s is a known status.
func (s AnimalStatus) Valid() bool {
	for _, v := range AnimalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Final reports whether no further transition is allowed.
func (s AnimalStatus) Final() bool {
	return s == StatusSlaughtered || s == StatusRejected
}

// Animal is one head of livestock received from a supplier.
type Animal struct {
	ID           int64           `json:"id"`
	TagNumber    string          `json:"tag_number"`
	Species      string          `json:"species"`
	Breed        string          `json:"breed"`
	Sex          string          `json:"sex"`
	LiveWeightKg decimal.Decimal `json:"live_weight_kg"`
	SupplierID   int64           `json:"supplier_id"`
	Status       AnimalStatus    `json:"status"`
	ArrivedAt    time.Time       `json:"arrived_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Supplier is a farm or dealer delivering animals.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Carcass is the record produced when an animal is slaughtered.
// It is addressed by its public identifier rather than a numeric id.
type Carcass struct {
	PublicID       string          `json:"public_id"`
	AnimalID       int64           `json:"animal_id"`
	TagNumber      string          `json:"tag_number"`
	Species        string          `json:"species"`
	HotWeightKg    decimal.Decimal `json:"hot_weight_kg"`
	Grade          string          `json:"grade"`
	Condemned      bool            `json:"condemned"`
	InspectionNote string          `json:"inspection_note"`
	SlaughteredAt  time.Time       `json:"slaughtered_at"`
}

// YieldPercent returns hot weight as a percentage of the given live weight,
// rounded to one decimal. A non-positive live weight yields zero.
func (c Carcass) YieldPercent(liveWeight decimal.Decimal) decimal.Decimal {
	if !liveWeight.IsPositive() {
		return decimal.Zero
	}
	return c.HotWeightKg.Div(liveWeight).Mul(decimal.NewFromInt(100)).Round(1)
}

// SlaughterInput carries the data recorded at the kill floor.
type SlaughterInput struct {
	AnimalID       int64           `json:"animal_id"`
	HotWeightKg    decimal.Decimal `json:"hot_weight_kg"`
	Grade          string          `json:"grade"`
	InspectionNote string          `json:"inspection_note"`
}

// ListQuery is the filter argument shared by every list data source.
// Zero values mean "no filter".
type ListQuery struct {
	Search     string `json:"search,omitempty"`
	Status     string `json:"status,omitempty"`
	SupplierID int64  `json:"supplier_id,omitempty"`
}

// Normalized returns q with surrounding whitespace removed.
func (q ListQuery) Normalized() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	return q
}

// Empty reports whether q filters nothing.
func (q ListQuery) Empty() bool {
	n := q.Normalized()
	return n.Search == "" && n.Status == "" && n.SupplierID == 0
}

// DailyThroughput is the number of head slaughtered per species on one day.
type DailyThroughput struct {
	Day     time.Time `json:"day"`
	Species string    `json:"species"`
	Head    int64     `json:"head"`
}
