package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yardline/yardline/internal/model"
)

type animalRequest struct {
	TagNumber    string     `json:"tag_number" validate:"required,max=32"`
	Species      string     `json:"species" validate:"required,max=32"`
	Breed        string     `json:"breed" validate:"max=64"`
	Sex          string     `json:"sex" validate:"omitempty,oneof=male female castrate"`
	LiveWeightKg string     `json:"live_weight_kg" validate:"required,numeric"`
	SupplierID   int64      `json:"supplier_id" validate:"required,gt=0"`
	ArrivedAt    *time.Time `json:"arrived_at"`
}

type supplierRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Region string `json:"region" validate:"max=60"`
	Phone  string `json:"phone" validate:"omitempty,max=32"`
	Active *bool  `json:"active"`
}

type slaughterRequest struct {
	HotWeightKg    string `json:"hot_weight_kg" validate:"required,numeric"`
	Grade          string `json:"grade" validate:"required,oneof=E U R O P"`
	InspectionNote string `json:"inspection_note" validate:"max=500"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=lairage rejected"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type condemnRequest struct {
	Condemned *bool `json:"condemned" validate:"required"`
}

// bind decodes and validates the JSON body, writing a 400 on failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": describeValidation(err)})
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// writeError maps backend sentinels onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalid):
		status = http.StatusBadRequest
	default:
		c.Error(err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func listQuery(c *gin.Context) (model.ListQuery, bool) {
	q := model.ListQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}
	if v := c.Query("supplier_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier_id"})
			return q, false
		}
		q.SupplierID = id
	}
	return q.Normalized(), true
}

func (r animalRequest) toAnimal() model.Animal {
	a := model.Animal{
		TagNumber:    strings.TrimSpace(r.TagNumber),
		Species:      strings.TrimSpace(r.Species),
		Breed:        strings.TrimSpace(r.Breed),
		Sex:          r.Sex,
		LiveWeightKg: decimal.RequireFromString(r.LiveWeightKg),
		SupplierID:   r.SupplierID,
	}
	if r.ArrivedAt != nil {
		a.ArrivedAt = r.ArrivedAt.UTC()
	}
	return a
}

func (s *Server) listAnimals(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	list, err := s.backend.ListAnimals(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(list), "total": len(list)})
}

func (s *Server) getAnimal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	a, err := s.backend.GetAnimal(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) createAnimal(c *gin.Context) {
	var req animalRequest
	if !s.bind(c, &req) {
		return
	}
	a, err := s.backend.CreateAnimal(c.Request.Context(), req.toAnimal())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) updateAnimal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req animalRequest
	if !s.bind(c, &req) {
		return
	}
	in := req.toAnimal()
	in.ID = id
	a, err := s.backend.UpdateAnimal(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) deleteAnimal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.backend.DeleteAnimal(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setAnimalStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !s.bind(c, &req) {
		return
	}
	a, err := s.backend.SetAnimalStatus(c.Request.Context(), id, model.AnimalStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) slaughterAnimal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req slaughterRequest
	if !s.bind(c, &req) {
		return
	}
	carcass, err := s.backend.SlaughterAnimal(c.Request.Context(), model.SlaughterInput{
		AnimalID:       id,
		HotWeightKg:    decimal.RequireFromString(req.HotWeightKg),
		Grade:          req.Grade,
		InspectionNote: strings.TrimSpace(req.InspectionNote),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carcass)
}

func (r supplierRequest) toSupplier() model.Supplier {
	sp := model.Supplier{
		Name:   strings.TrimSpace(r.Name),
		Region: strings.TrimSpace(r.Region),
		Phone:  strings.TrimSpace(r.Phone),
		Active: true,
	}
	if r.Active != nil {
		sp.Active = *r.Active
	}
	return sp
}

func (s *Server) listSuppliers(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	list, err := s.backend.ListSuppliers(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(list), "total": len(list)})
}

func (s *Server) getSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sp, err := s.backend.GetSupplier(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) createSupplier(c *gin.Context) {
	var req supplierRequest
	if !s.bind(c, &req) {
		return
	}
	sp, err := s.backend.CreateSupplier(c.Request.Context(), req.toSupplier())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

func (s *Server) updateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req supplierRequest
	if !s.bind(c, &req) {
		return
	}
	in := req.toSupplier()
	in.ID = id
	sp, err := s.backend.UpdateSupplier(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) deleteSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.backend.DeleteSupplier(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setSupplierActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req activeRequest
	if !s.bind(c, &req) {
		return
	}
	sp, err := s.backend.SetSupplierActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (s *Server) listCarcasses(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	list, err := s.backend.ListCarcasses(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(list), "total": len(list)})
}

func (s *Server) getCarcass(c *gin.Context) {
	carcass, err := s.backend.GetCarcass(c.Request.Context(), c.Param("publicID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, carcass)
}

func (s *Server) deleteCarcass(c *gin.Context) {
	if err := s.backend.DeleteCarcass(c.Request.Context(), c.Param("publicID")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) condemnCarcass(c *gin.Context) {
	var req condemnRequest
	if !s.bind(c, &req) {
		return
	}
	carcass, err := s.backend.SetCarcassCondemned(c.Request.Context(), c.Param("publicID"), *req.Condemned)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, carcass)
}

func (s *Server) throughput(c *gin.Context) {
	days := model.DefaultThroughputDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > model.MaxThroughputDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("days must be 1..%d", model.MaxThroughputDays)})
			return
		}
		days = n
	}
	rows, err := s.backend.DailyThroughput(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "items": nonNil(rows)})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
