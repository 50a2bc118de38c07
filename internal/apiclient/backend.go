package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yardline/yardline/internal/model"
)

type animalBody struct {
	TagNumber    string `json:"tag_number"`
	Species      string `json:"species"`
	Breed        string `json:"breed"`
	Sex          string `json:"sex,omitempty"`
	LiveWeightKg string `json:"live_weight_kg"`
	SupplierID   int64  `json:"supplier_id"`
	ArrivedAt    any    `json:"arrived_at,omitempty"`
}

func toAnimalBody(a model.Animal) animalBody {
	b := animalBody{
		TagNumber:    a.TagNumber,
		Species:      a.Species,
		Breed:        a.Breed,
		Sex:          a.Sex,
		LiveWeightKg: a.LiveWeightKg.String(),
		SupplierID:   a.SupplierID,
	}
	if !a.ArrivedAt.IsZero() {
		b.ArrivedAt = a.ArrivedAt
	}
	return b
}

type supplierBody struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

func toSupplierBody(s model.Supplier) supplierBody {
	return supplierBody{Name: s.Name, Region: s.Region, Phone: s.Phone, Active: s.Active}
}

func (c *Client) ListAnimals(ctx context.Context, q model.ListQuery) ([]model.Animal, error) {
	var p page[model.Animal]
	err := c.do(ctx, http.MethodGet, listPath("/api/animals", q), nil, &p)
	return p.Items, err
}

func (c *Client) GetAnimal(ctx context.Context, id int64) (model.Animal, error) {
	var a model.Animal
	err := c.do(ctx, http.MethodGet, idPath("/api/animals", id), nil, &a)
	return a, err
}

func (c *Client) CreateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	var out model.Animal
	err := c.do(ctx, http.MethodPost, "/api/animals", toAnimalBody(a), &out)
	return out, err
}

func (c *Client) UpdateAnimal(ctx context.Context, a model.Animal) (model.Animal, error) {
	var out model.Animal
	err := c.do(ctx, http.MethodPut, idPath("/api/animals", a.ID), toAnimalBody(a), &out)
	return out, err
}

func (c *Client) DeleteAnimal(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/animals", id), nil, nil)
}

func (c *Client) SetAnimalStatus(ctx context.Context, id int64, status model.AnimalStatus) (model.Animal, error) {
	var out model.Animal
	err := c.do(ctx, http.MethodPatch, idPath("/api/animals", id)+"/status", map[string]string{"status": string(status)}, &out)
	return out, err
}

func (c *Client) SlaughterAnimal(ctx context.Context, in model.SlaughterInput) (model.Carcass, error) {
	var out model.Carcass
	body := map[string]string{
		"hot_weight_kg":   in.HotWeightKg.String(),
		"grade":           in.Grade,
		"inspection_note": in.InspectionNote,
	}
	err := c.do(ctx, http.MethodPost, idPath("/api/animals", in.AnimalID)+"/slaughter", body, &out)
	return out, err
}

func (c *Client) ListSuppliers(ctx context.Context, q model.ListQuery) ([]model.Supplier, error) {
	var p page[model.Supplier]
	err := c.do(ctx, http.MethodGet, listPath("/api/suppliers", q), nil, &p)
	return p.Items, err
}

func (c *Client) GetSupplier(ctx context.Context, id int64) (model.Supplier, error) {
	var s model.Supplier
	err := c.do(ctx, http.MethodGet, idPath("/api/suppliers", id), nil, &s)
	return s, err
}

func (c *Client) CreateSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	var out model.Supplier
	err := c.do(ctx, http.MethodPost, "/api/suppliers", toSupplierBody(s), &out)
	return out, err
}

func (c *Client) UpdateSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	var out model.Supplier
	err := c.do(ctx, http.MethodPut, idPath("/api/suppliers", s.ID), toSupplierBody(s), &out)
	return out, err
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/suppliers", id), nil, nil)
}

func (c *Client) SetSupplierActive(ctx context.Context, id int64, active bool) (model.Supplier, error) {
	var out model.Supplier
	err := c.do(ctx, http.MethodPatch, idPath("/api/suppliers", id)+"/active", map[string]bool{"active": active}, &out)
	return out, err
}

func carcassPath(publicID string) string {
	return "/api/carcasses/" + url.PathEscape(publicID)
}

func (c *Client) ListCarcasses(ctx context.Context, q model.ListQuery) ([]model.Carcass, error) {
	var p page[model.Carcass]
	err := c.do(ctx, http.MethodGet, listPath("/api/carcasses", q), nil, &p)
	return p.Items, err
}

func (c *Client) GetCarcass(ctx context.Context, publicID string) (model.Carcass, error) {
	var out model.Carcass
	err := c.do(ctx, http.MethodGet, carcassPath(publicID), nil, &out)
	return out, err
}

func (c *Client) SetCarcassCondemned(ctx context.Context, publicID string, condemned bool) (model.Carcass, error) {
	var out model.Carcass
	err := c.do(ctx, http.MethodPatch, carcassPath(publicID)+"/condemn", map[string]bool{"condemned": condemned}, &out)
	return out, err
}

func (c *Client) DeleteCarcass(ctx context.Context, publicID string) error {
	return c.do(ctx, http.MethodDelete, carcassPath(publicID), nil, nil)
}

func (c *Client) DailyThroughput(ctx context.Context, days int) ([]model.DailyThroughput, error) {
	path := "/api/stats/throughput"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var p page[model.DailyThroughput]
	err := c.do(ctx, http.MethodGet, path, nil, &p)
	return p.Items, err
}

func (c *Client) RowCounts(ctx context.Context) (map[string]int64, error) {
	var h struct {
		RowCounts map[string]int64 `json:"row_counts"`
	}
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h)
	return h.RowCounts, err
}
